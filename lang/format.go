package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/cose/lang/arena"
)

// Style decorates the label printed for a node of the given kind.
// A nil Style leaves labels unchanged.
type Style func(kind Kind, label string) string

func (a Association) String() string {
	return "Association { parent: " + a.Parent.String() +
		", keys: " + indexList(a.Keys) +
		", values: " + indexList(a.Values) + " }"
}

func (r Reference) String() string {
	return "Reference { parent: " + r.Parent.String() +
		", associations: " + indexList(r.Associations) +
		", keys: " + indexList(r.Keys) + " }"
}

func (p PrefixReference) String() string {
	return "PrefixReference { parent: " + p.Parent.String() +
		", keys: " + indexList(p.Keys) + " }"
}

func (Marker) String() string { return "Marker" }

func (t Text) String() string { return "Text(" + strconv.Quote(t.Value) + ")" }

func (o openAssociation) String() string {
	return "Association { parent: " + o.Parent.String() + ", <open> }"
}

func indexList(idx []arena.Index) string {
	parts := make([]string, len(idx))
	for i, x := range idx {
		parts[i] = strconv.Itoa(int(x))
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatBounds writes one line per start or end event of every node, in
// document order.
func (d *Document) FormatBounds(w io.Writer) error {
	for b := range d.Bounds() {
		var err error

		if b.Start {
			_, err = fmt.Fprintf(w, "%2d starts at %d: %v\n",
				b.Index, b.Pos, d.Node(b.Index))
		} else {
			_, err = fmt.Fprintf(w, "%2d ends at %d\n", b.Index, b.Pos)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// FormatTree writes an indented outline of every unit's top-level nodes and
// their descendants. Each level is indented by indent spaces.
func (d *Document) FormatTree(w io.Writer, indent int, style Style) error {
	if indent <= 0 {
		indent = 2
	}

	if style == nil {
		style = func(_ Kind, label string) string { return label }
	}

	tw := treeWriter{doc: d, w: w, indent: indent, style: style}

	for _, u := range d.units {
		if err := tw.unit(u); err != nil {
			return err
		}
	}

	return nil
}

// FormatUnit writes the outline of a single unit in the layout of
// [Document.FormatTree].
func (d *Document) FormatUnit(w io.Writer, u Unit, indent int, style Style) error {
	if indent <= 0 {
		indent = 2
	}

	if style == nil {
		style = func(_ Kind, label string) string { return label }
	}

	return treeWriter{doc: d, w: w, indent: indent, style: style}.unit(u)
}

type treeWriter struct {
	doc    *Document
	w      io.Writer
	style  Style
	indent int
}

func (t treeWriter) unit(u Unit) error {
	if _, err := fmt.Fprintf(t.w, "%s %s\n", u.Name, u.Span()); err != nil {
		return err
	}

	for _, i := range u.Top {
		if err := t.node(i, 1); err != nil {
			return err
		}
	}

	return nil
}

func (t treeWriter) line(depth int, text string) error {
	_, err := fmt.Fprintln(t.w, strings.Repeat(" ", depth*t.indent)+text)

	return err
}

func (t treeWriter) node(i arena.Index, depth int) error {
	n := t.doc.Node(i)

	label := t.style(n.Kind(), n.Kind().String()) +
		" #" + strconv.Itoa(int(i)) + " " + t.doc.Span(i).String()

	switch v := n.(type) {
	case Text:
		label += " " + strconv.Quote(v.Value)
	case Association:
		return t.group(label, depth, "keys", v.Keys, "values", v.Values)
	case Reference:
		return t.group(label, depth, "associations", v.Associations, "keys", v.Keys)
	case PrefixReference:
		return t.group(label, depth, "keys", v.Keys)
	}

	return t.line(depth, label)
}

// group writes label followed by named lists of children, given as
// alternating name and []arena.Index arguments.
func (t treeWriter) group(label string, depth int, lists ...any) error {
	if err := t.line(depth, label); err != nil {
		return err
	}

	for k := 0; k+1 < len(lists); k += 2 {
		name, _ := lists[k].(string)
		children, _ := lists[k+1].([]arena.Index)

		if len(children) == 0 {
			continue
		}

		if err := t.line(depth+1, name+":"); err != nil {
			return err
		}

		for _, c := range children {
			if err := t.node(c, depth+2); err != nil {
				return err
			}
		}
	}

	return nil
}

// Record is the flat, serializable view of one node.
type Record struct {
	Kind         string `json:"kind"                   yaml:"kind"`
	Unit         string `json:"unit"                   yaml:"unit"`
	Text         string `json:"text,omitempty"         yaml:"text,omitempty"`
	Keys         []int  `json:"keys,omitempty"         yaml:"keys,omitempty,flow"`
	Values       []int  `json:"values,omitempty"       yaml:"values,omitempty,flow"`
	Associations []int  `json:"associations,omitempty" yaml:"associations,omitempty,flow"`
	Index        int    `json:"index"                  yaml:"index"`
	Start        int    `json:"start"                  yaml:"start"`
	End          int    `json:"end"                    yaml:"end"`
	Parent       int    `json:"parent"                 yaml:"parent"` // -1 when unscoped
	Depth        int    `json:"depth"                  yaml:"depth"`
}

// Record returns the flat view of node i.
func (d *Document) Record(i arena.Index) Record {
	n := d.Node(i)
	span := d.Span(i)

	r := Record{
		Kind:   n.Kind().String(),
		Index:  int(i),
		Start:  span.Start,
		End:    span.End,
		Parent: -1,
		Depth:  d.Depth(i),
	}

	if p, ok := d.Scope(i).Index(); ok {
		r.Parent = int(p)
	}

	if u, ok := d.UnitAt(span.Start); ok {
		r.Unit = u.Name
	}

	switch v := n.(type) {
	case Association:
		r.Keys, r.Values = ints(v.Keys), ints(v.Values)
	case Reference:
		r.Associations, r.Keys = ints(v.Associations), ints(v.Keys)
	case PrefixReference:
		r.Keys = ints(v.Keys)
	case Text:
		r.Text = v.Value
	}

	return r
}

// ToRecords returns the records of every node in index order.
func (d *Document) ToRecords() []Record {
	records := make([]Record, 0, d.Len())
	for i := range d.All() {
		records = append(records, d.Record(i))
	}

	return records
}

func ints(idx []arena.Index) []int {
	out := make([]int, len(idx))
	for i, x := range idx {
		out[i] = int(x)
	}

	return out
}

type export struct {
	Units []Unit   `json:"units" yaml:"units"`
	Nodes []Record `json:"nodes" yaml:"nodes"`
}

func (d *Document) export() export {
	return export{Units: d.Units(), Nodes: d.ToRecords()}
}

// FormatJSON writes the document's units and node records as JSON.
func (d *Document) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(d.export(), "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(d.export())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the document's units and node records as YAML.
func (d *Document) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, d.export(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
