// Package tui is the terminal catalog: browse, search, drag to reorder and
// the password-gated admin actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChoisMath/edutech/pkg/catalog"
	"github.com/ChoisMath/edutech/pkg/client"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modePassword
	modeDetail
)

var categoryCycle = []catalog.Category{catalog.CategoryAll, catalog.CategorySubject, catalog.CategoryKeyword}

type Options struct {
	// ExportDir receives downloaded workbooks. Defaults to the working directory.
	ExportDir string
	Now       func() time.Time
}

// Model drives a catalog.App from the keyboard. While a request is in flight
// the model is busy: it draws from the last grid and ignores everything but quit.
type Model struct {
	app     *catalog.App
	dragger *KeyDragger
	ctx     context.Context

	search   textinput.Model
	password textinput.Model

	mode    mode
	pending action
	cursor  int
	grid    catalog.Grid
	query   catalog.Query
	dragOn  bool
	busy    bool
	status  string
	failed  bool
	width   int

	exportDir string
	now       func() time.Time
}

// New builds the model. dragger must be the Dragger the app was created with.
func New(ctx context.Context, app *catalog.App, dragger *KeyDragger, opts Options) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name, summary, subjects, keywords"

	password := textinput.New()
	password.Prompt = "password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return Model{
		app:       app,
		dragger:   dragger,
		ctx:       ctx,
		search:    search,
		password:  password,
		busy:      true,
		status:    "Loading cards...",
		query:     app.Query(),
		exportDir: opts.ExportDir,
		now:       opts.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.run(actionLoad, "", 0)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		return m.handleDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.mode {
		case modeSearch:
			return m.handleSearchKey(msg)
		case modePassword:
			return m.handlePasswordKey(msg)
		case modeDetail:
			return m.handleDetailKey(msg)
		}
		return m.handleBrowseKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	// Cursor blinks and other input ticks go to whichever input has focus.
	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modePassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) handleDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.failed = msg.err != nil
	var reloadErr *catalog.ReloadError
	switch {
	case errors.As(msg.err, &reloadErr):
		// The change went through; only the refresh did not.
		m.status = reloadErr.Error() + " (press r to reload)"
	case msg.err != nil:
		m.status = fmt.Sprintf("%s failed: %s", msg.action, msg.err.Error())
	default:
		m.status = msg.info
	}
	m.refresh()
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	caps := m.app.Capabilities()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "tab":
		m.app.SetCategory(nextCategory(m.app.Query().Category))
		m.refresh()
	case "m":
		q := m.app.Query()
		if q.Mode == catalog.MatchAny {
			q.Mode = catalog.MatchAll
		} else {
			q.Mode = catalog.MatchAny
		}
		m.app.SetQuery(q)
		m.refresh()
	case "enter":
		if len(m.grid.Tiles) > 0 {
			m.mode = modeDetail
		}
	case "r":
		return m.start(actionLoad, "")
	case "D":
		if err := m.app.ToggleDragMode(); err != nil {
			m.setError(err)
		} else if m.app.Reorder().Enabled() {
			m.setInfo("Drag mode: J/K or shift+arrows move the card, s saves, esc cancels")
		} else {
			m.setInfo("Drag mode off, order discarded")
		}
		m.refresh()
	case "J", "shift+down":
		m.moveTile(1)
	case "K", "shift+up":
		m.moveTile(-1)
	case "esc":
		if m.app.Reorder().Enabled() {
			m.app.Reorder().Disable()
			m.setInfo("Drag mode off, order discarded")
			m.refresh()
		}
	case "s":
		if !m.app.Reorder().Enabled() {
			m.setError(errors.New("turn on drag mode with D first"))
			break
		}
		return m.prompt(actionSaveOrder)
	case "x":
		if !caps.CanDelete {
			m.setError(catalog.ErrNotPermitted)
			break
		}
		if len(m.grid.Tiles) == 0 {
			break
		}
		return m.prompt(actionDelete)
	case "e":
		if !caps.SeesHidden() {
			m.setError(catalog.ErrNotPermitted)
			break
		}
		return m.prompt(actionExport)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.app.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

func (m Model) handlePasswordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.password.Reset()
		m.password.Blur()
		m.setInfo(m.pending.String() + " cancelled")
		return m, nil
	case tea.KeyEnter:
		pw := m.password.Value()
		m.mode = modeBrowse
		m.password.Reset()
		m.password.Blur()
		return m.start(m.pending, pw)
	}

	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "enter", "backspace":
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) prompt(a action) (tea.Model, tea.Cmd) {
	m.pending = a
	m.mode = modePassword
	m.password.Reset()
	cmd := m.password.Focus()
	return m, cmd
}

// start marks the model busy and hands the request to a command.
func (m Model) start(a action, password string) (tea.Model, tea.Cmd) {
	var id int64
	if a == actionDelete {
		tile, ok := m.selected()
		if !ok {
			return m, nil
		}
		id = tile.ID
	}
	m.busy = true
	m.failed = false
	m.status = "Working: " + a.String() + "..."
	return m, m.run(a, password, id)
}

// run performs the request off the event loop. The app is not touched by the
// model until the resulting actionDoneMsg arrives.
func (m Model) run(a action, password string, id int64) tea.Cmd {
	app, ctx := m.app, m.ctx
	exportDir, now := m.exportDir, m.now

	return func() tea.Msg {
		switch a {
		case actionSaveOrder:
			if err := app.SaveOrder(ctx, password); err != nil {
				return actionDoneMsg{action: a, err: err}
			}
			return actionDoneMsg{action: a, info: "Card order updated successfully"}

		case actionDelete:
			if err := app.Delete(ctx, id, password); err != nil {
				return actionDoneMsg{action: a, err: err}
			}
			return actionDoneMsg{action: a, info: "Card deleted successfully"}

		case actionExport:
			data, err := app.Export(ctx, password)
			if err != nil {
				return actionDoneMsg{action: a, err: err}
			}
			path := filepath.Join(exportDir, client.ExportFilename(now()))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return actionDoneMsg{action: a, err: err}
			}
			return actionDoneMsg{action: a, info: fmt.Sprintf("Saved %s (%d bytes)", path, len(data))}

		default:
			if err := app.Load(ctx); err != nil {
				return actionDoneMsg{action: a, err: err}
			}
			return actionDoneMsg{action: a, info: fmt.Sprintf("Loaded %d cards", app.Store().Len())}
		}
	}
}

// refresh snapshots everything View draws, so View never reads the app while
// a command is using it.
func (m *Model) refresh() {
	m.grid = m.app.Grid()
	m.query = m.app.Query()
	m.dragOn = m.app.Reorder().Enabled()
	if m.cursor >= len(m.grid.Tiles) {
		m.cursor = len(m.grid.Tiles) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.grid.Tiles) == 0 && m.mode == modeDetail {
		m.mode = modeBrowse
	}
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next >= 0 && next < len(m.grid.Tiles) {
		m.cursor = next
	}
}

func (m *Model) moveTile(delta int) {
	if !m.app.Reorder().Enabled() {
		m.setError(errors.New("turn on drag mode with D first"))
		return
	}
	if to, ok := m.dragger.Move(m.cursor, delta); ok {
		m.cursor = to
		m.refresh()
	}
}

func (m Model) selected() (catalog.Tile, bool) {
	if m.cursor < 0 || m.cursor >= len(m.grid.Tiles) {
		return catalog.Tile{}, false
	}
	return m.grid.Tiles[m.cursor], true
}

func (m *Model) setError(err error) {
	m.failed = true
	m.status = err.Error()
}

func (m *Model) setInfo(s string) {
	m.failed = false
	m.status = s
}

func nextCategory(c catalog.Category) catalog.Category {
	for i, cat := range categoryCycle {
		if cat == c {
			return categoryCycle[(i+1)%len(categoryCycle)]
		}
	}
	return catalog.CategoryAll
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("EduTech Cards"))
	fmt.Fprintf(&b, "  %d shown  category=%s  match=%s", len(m.grid.Tiles), m.query.Category, m.query.Mode)
	if m.dragOn {
		b.WriteString("  " + DragModeStyle.Render("DRAG"))
	}
	b.WriteString("\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.mode == modeDetail {
		if tile, ok := m.selected(); ok {
			b.WriteString(renderDetail(tile))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.renderGrid())
	}

	if m.mode == modePassword {
		b.WriteString(PromptStyle.Render(m.pending.String() + "\n" + m.password.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.failed:
		b.WriteString(ErrorStyle.Render(m.status))
	case m.status != "":
		b.WriteString(SuccessStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(helpLine(m.app.Capabilities(), m.mode)))
	return b.String()
}

func (m Model) renderGrid() string {
	if m.grid.Empty {
		return HiddenStyle.Render("No cards match.") + "\n"
	}

	var b strings.Builder
	for i, t := range m.grid.Tiles {
		marker := "  "
		if i == m.cursor {
			marker = CursorStyle.Render("> ")
		}
		b.WriteString(marker)
		if t.Draggable {
			b.WriteString(HandleStyle.Render("⋮⋮ "))
		}
		title := t.Title
		if i == m.cursor {
			title = CursorStyle.Render(title)
		}
		b.WriteString(title)
		if t.Hidden {
			b.WriteString(" " + HiddenStyle.Render("[hidden]"))
		}
		if tags := renderTags(t); tags != "" {
			b.WriteString("  " + tags)
		}
		b.WriteString("\n")
		for _, line := range clampSummary(t.Summary, m.summaryWidth()) {
			b.WriteString("    " + SummaryStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

func renderTags(t catalog.Tile) string {
	var parts []string
	for _, s := range t.Subjects.Shown {
		parts = append(parts, SubjectStyle.Render(s))
	}
	if t.Subjects.Overflow > 0 {
		parts = append(parts, SubjectStyle.Render(fmt.Sprintf("+%d", t.Subjects.Overflow)))
	}
	for _, k := range t.Keywords.Shown {
		parts = append(parts, KeywordStyle.Render("#"+k))
	}
	if t.Keywords.Overflow > 0 {
		parts = append(parts, KeywordStyle.Render(fmt.Sprintf("+%d", t.Keywords.Overflow)))
	}
	return strings.Join(parts, " ")
}

func renderDetail(t catalog.Tile) string {
	c := t.Card
	rows := [][2]string{
		{"Name", c.WebpageName},
		{"URL", c.URL},
		{"Subjects", strings.Join(c.UsefulSubjects, ", ")},
		{"Keywords", strings.Join(c.Keyword, ", ")},
		{"Summary", t.Summary},
		{"Educational meaning", c.EducationalMeaning},
		{"AI summary", c.AISummary},
		{"Thumbnail", t.Thumbnail},
	}
	var b strings.Builder
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		b.WriteString(LabelStyle.Render(r[0]) + ValueStyle.Render(r[1]) + "\n")
	}
	if t.Hidden {
		b.WriteString(HiddenStyle.Render("hidden from the public listing") + "\n")
	}
	return DetailStyle.Render(strings.TrimRight(b.String(), "\n"))
}

const summaryLines = 3

// summaryWidth is the room left for a summary after its indent.
func (m Model) summaryWidth() int {
	if m.width == 0 {
		return 76
	}
	return max(m.width-4, 20)
}

// clampSummary wraps s to width cells and keeps at most summaryLines lines,
// ending the last kept line with an ellipsis when text was cut.
func clampSummary(s string, width int) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(s)
	var lines []string
	for _, l := range strings.Split(wrapped, "\n") {
		lines = append(lines, strings.TrimRight(l, " "))
	}
	if len(lines) <= summaryLines {
		return lines
	}
	lines = lines[:summaryLines]
	last := []rune(lines[summaryLines-1])
	for len(last) > 0 && lipgloss.Width(string(last))+1 > width {
		last = last[:len(last)-1]
	}
	lines[summaryLines-1] = strings.TrimRight(string(last), " ") + "…"
	return lines
}

func helpLine(caps catalog.Capabilities, md mode) string {
	switch md {
	case modeSearch:
		return "type to filter • enter/esc done"
	case modePassword:
		return "enter submit • esc cancel"
	case modeDetail:
		return "esc back • q quit"
	}
	help := "j/k move • / search • tab category • m match mode • enter details • r reload"
	if caps.CanReorder {
		help += " • D drag • J/K move card • s save order"
	}
	if caps.CanDelete {
		help += " • x delete"
	}
	if caps.SeesHidden() {
		help += " • e export"
	}
	return help + " • q quit"
}
