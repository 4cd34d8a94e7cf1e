package repl

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/cose/lang"
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedMatchStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("4")).
				Bold(true)
)

var kindStyles = map[lang.Kind]lipgloss.Style{
	lang.KindAssociation:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	lang.KindReference:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	lang.KindPrefixReference: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	lang.KindMarker:          lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	lang.KindText:            lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
}

// KindStyle colors a node label by the kind of node it names. It satisfies
// [lang.Style].
func KindStyle(kind lang.Kind, label string) string {
	s, ok := kindStyles[kind]
	if !ok {
		return label
	}

	return s.Render(label)
}
