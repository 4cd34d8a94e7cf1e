// Package repl implements the interactive cose session. Each line submitted
// in build mode is built as a new unit of one session document; control mode
// inspects that document.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
)

// unitBuiltMsg is sent when the editor produced a new unit.
type unitBuiltMsg struct{ unit lang.Unit }

// editCancelledMsg is sent when the user left the editor empty.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a syntax
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-syntax error.
type editErrorMsg struct{ err error }

const (
	buildPrompt = "➜ "
	ctrlPrompt  = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help             Print this cruft
  list             List the units built so far
  tree             Print the node outline of every unit
  bounds           Print the start/end traversal of the arena
  find PATTERN     Fuzzy-search text values
  select FILTER    Print nodes whose records match FILTER
  edit             Compose a multi-line unit in $EDITOR
  clear            Clear screen
  quit             Exit REPL

Usage:
  Type notation and press Enter to build it as a new unit
  Completions of known text values appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between build and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeBuild inputMode = iota
	modeCtrl
)

// formatCommand formats the echo line of submitted input.
func formatCommand(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(buildPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	doc          *lang.Document
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	seq          int           // number of units built in this session
	quitting     bool
	mode         inputMode
	buildText    string
	buildCursor  int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL on doc, which may already hold units. History is kept
// in cacheDir, or in memory only when cacheDir is empty.
func Run(
	ctx context.Context,
	doc *lang.Document,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if doc == nil {
		return ErrNoDocument
	}

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("unit_count", len(doc.Units())),
	)

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, doc, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	doc *lang.Document,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(buildPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		doc:        doc,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		seq:        len(doc.Units()),
		mode:       modeBuild,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(buildPrompt) - 2

		return m, nil

	case unitBuiltMsg:
		return m, tea.Println(m.renderUnit(msg.unit))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type notation to build or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case m.mode == modeBuild:
		b.WriteString(hintFor(input, m.input.Position()).render())
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(+1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(+1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(+1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeBuild {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeBuild), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space is a "breaking" key while tab-cycling.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows) edits without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, starting a cycle if none is active.
// A single candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m

	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + n) % n

	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. Deletions and
// cursor movement pass false so editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	mode := m.mode

	m.buildText, m.buildCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Append(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl submit",
		slog.Int("mode", int(mode)),
		slog.String("input", input),
	)

	echo := tea.Println(formatCommand(mode, input))

	if mode == modeCtrl {
		var cmd tea.Cmd

		m, cmd = m.executeCommand(input)

		return m, tea.Sequence(echo, cmd)
	}

	unit, err := m.buildUnit(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(renderError(err)))
	}

	return m, tea.Sequence(echo, tea.Println(m.renderUnit(unit)))
}

// buildUnit builds source as the next unit of the session document.
func (m *model) buildUnit(source string) (lang.Unit, error) {
	unit, err := m.doc.ParseString(m.ctxFunc(), m.nextUnitName(), source)
	if err != nil {
		m.logger.TraceContext(m.ctxFunc(), "repl build failed", slog.Any("error", err))

		return lang.Unit{}, err
	}

	m.seq++

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl unit built",
		slog.String("unit", unit.Name),
		slog.Int("origin", unit.Origin),
		slog.Int("nodes", m.doc.Len()),
	)

	return unit, nil
}

func (m model) nextUnitName() string {
	return "repl:" + strconv.Itoa(m.seq+1)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.String("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "l", "list":
		return m, tea.Println(m.listUnits())

	case "t", "tree":
		return m, tea.Println(m.render(func(b *strings.Builder) error {
			return m.doc.FormatTree(b, 2, KindStyle)
		}))

	case "b", "bounds":
		return m, tea.Println(m.render(func(b *strings.Builder) error {
			return m.doc.FormatBounds(b)
		}))

	case "f", "find":
		return m, tea.Println(m.find(args))

	case "s", "select":
		return m, tea.Println(m.selectNodes(args))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, m.edit()

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editUnitCommand{
		doc:     m.doc,
		name:    m.nextUnitName(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.unit == nil {
			return editCancelledMsg{}
		}

		return unitBuiltMsg{unit: *cmd.unit}
	})
}

// historyStep moves through history by dir. With sameMode, entries of the
// other mode are skipped; otherwise the input switches to the entry's mode.
// Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, preserving each mode's pending input.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeBuild {
		m.buildText, m.buildCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeBuild {
		m.input.Prompt = promptStyle.Render(buildPrompt)
		m.input.SetValue(m.buildText)
		m.input.SetCursor(m.buildCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}

func (m model) listUnits() string {
	units := m.doc.Units()
	if len(units) == 0 {
		return hintStyle.Render("  (no units)")
	}

	var b strings.Builder

	for _, u := range units {
		fmt.Fprintf(&b, "  %s %s\n", u.Name,
			hintStyle.Render(fmt.Sprintf("%s %d top", u.Span(), len(u.Top))))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) find(pattern string) string {
	if pattern == "" {
		return errorStyle.Render("usage: find PATTERN")
	}

	found := m.doc.Find(pattern)
	if len(found) == 0 {
		return hintStyle.Render("  (no matches)")
	}

	var b strings.Builder

	for _, f := range found {
		unit, _ := m.doc.UnitOf(f.Index)
		match := fuzzy.Match{Str: f.Text, MatchedIndexes: f.Matched}

		fmt.Fprintf(&b, "  %s %s\n", renderCandidate(match, false),
			hintStyle.Render(fmt.Sprintf("#%d %s %s", f.Index, unit.Name, m.doc.Span(f.Index))))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) selectNodes(filter string) string {
	if filter == "" {
		return errorStyle.Render("usage: select FILTER")
	}

	selected, err := m.doc.Select(m.ctxFunc(), filter)
	if err != nil {
		return renderError(err)
	}

	if len(selected) == 0 {
		return hintStyle.Render("  (no matches)")
	}

	var b strings.Builder

	for _, i := range selected {
		n := m.doc.Node(i)
		fmt.Fprintf(&b, "  %s %s %v\n",
			KindStyle(n.Kind(), "#"+strconv.Itoa(int(i))),
			hintStyle.Render(m.doc.Span(i).String()), n)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m model) renderUnit(u lang.Unit) string {
	return m.render(func(b *strings.Builder) error {
		return m.doc.FormatUnit(b, u, 2, KindStyle)
	})
}

// render runs a document formatter into a string for printing above the
// input line.
func (m model) render(format func(*strings.Builder) error) string {
	if m.doc.Len() == 0 {
		return hintStyle.Render("  (empty document)")
	}

	var b strings.Builder
	if err := format(&b); err != nil {
		return renderError(err)
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderError formats err, with a source snippet for syntax errors.
func renderError(err error) string {
	out := errorStyle.Render("error: " + err.Error())

	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		if snippet := synErr.Snippet(); snippet != "" {
			out += "\n" + hintStyle.Render(strings.TrimRight(snippet, "\n"))
		}
	}

	return out
}
