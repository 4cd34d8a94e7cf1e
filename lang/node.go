package lang

//go:generate go tool stringer --type Kind --trimprefix Kind --output kind_string.go

import (
	"strconv"

	"github.com/ardnew/cose/lang/arena"
)

// Kind identifies the variant of a semantic [Node].
type Kind int

// Node kinds.
const (
	KindAssociation Kind = iota
	KindReference
	KindPrefixReference
	KindMarker
	KindText
)

// Node is a semantic node stored in the arena. The set of implementations is
// closed: [Association], [Reference], [PrefixReference], [Marker] and [Text].
type Node interface {
	Kind() Kind
	node()
}

// Scope is an optional arena index naming the lexical parent of a node.
// The zero value is [NoScope].
type Scope struct {
	idx arena.Index
	set bool
}

// NoScope is the scope of top-level nodes.
var NoScope = Scope{}

// ScopeAt returns the scope rooted at the node with index i.
func ScopeAt(i arena.Index) Scope {
	return Scope{idx: i, set: true}
}

// Index returns the parent index and whether the scope is set.
func (s Scope) Index() (arena.Index, bool) {
	return s.idx, s.set
}

// IsSet reports whether the scope names a parent.
func (s Scope) IsSet() bool {
	return s.set
}

// String returns the parent index, or "none".
func (s Scope) String() string {
	if !s.set {
		return "none"
	}

	return strconv.Itoa(int(s.idx))
}

// Association binds a list of keys to a list of values. Keys are scoped to
// the association's own parent; values are scoped to the association.
type Association struct {
	Parent Scope
	Keys   []arena.Index
	Values []arena.Index
}

// Reference is one step of a chained reference "A>B>C". Associations holds
// the indices produced by the previous step, Keys those of the current one.
type Reference struct {
	Parent       Scope
	Associations []arena.Index
	Keys         []arena.Index
}

// PrefixReference is the shorthand ">X", resolved against the enclosing
// scope.
type PrefixReference struct {
	Parent Scope
	Keys   []arena.Index
}

// Marker is the distinguished literal "@".
type Marker struct{}

// Text is a literal text with its escapes decoded.
type Text struct {
	Value string
}

// openAssociation occupies an association's slot between allocation and the
// moment its children are built. No completed build leaves one behind.
type openAssociation struct {
	Parent Scope
}

func (Association) Kind() Kind     { return KindAssociation }
func (Reference) Kind() Kind       { return KindReference }
func (PrefixReference) Kind() Kind { return KindPrefixReference }
func (Marker) Kind() Kind          { return KindMarker }
func (Text) Kind() Kind            { return KindText }
func (openAssociation) Kind() Kind { return KindAssociation }

func (Association) node()     {}
func (Reference) node()       {}
func (PrefixReference) node() {}
func (Marker) node()          {}
func (Text) node()            {}
func (openAssociation) node() {}

// ParentOf returns the parent recorded in n, if its variant records one.
func ParentOf(n Node) (Scope, bool) {
	switch v := n.(type) {
	case Association:
		return v.Parent, true
	case Reference:
		return v.Parent, true
	case PrefixReference:
		return v.Parent, true
	case openAssociation:
		return v.Parent, true
	}

	return NoScope, false
}

// Children returns every index referenced by n in order.
func Children(n Node) []arena.Index {
	switch v := n.(type) {
	case Association:
		return append(append([]arena.Index(nil), v.Keys...), v.Values...)
	case Reference:
		return append(append([]arena.Index(nil), v.Associations...), v.Keys...)
	case PrefixReference:
		return append([]arena.Index(nil), v.Keys...)
	}

	return nil
}
