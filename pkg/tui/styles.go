package tui

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	CursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	HandleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	HiddenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	SubjectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	KeywordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	SummaryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	HelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LabelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(20)
	ValueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DragModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("214")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	DetailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)
