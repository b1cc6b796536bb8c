package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
	Amber     = lipgloss.Color("#E5A00D")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	SlateDark = lipgloss.Color("#1F2937")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)
)

// Card borders by live drag direction.
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(1, 3)

	CardKeepStyle = CardStyle.
			BorderForeground(Green)

	CardDeleteStyle = CardStyle.
			BorderForeground(Red)
)

var (
	KeepBadge = lipgloss.NewStyle().
			Foreground(Green).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Green).
			Bold(true).
			Padding(0, 1).
			Render("KEEP")

	DeleteBadge = lipgloss.NewStyle().
			Foreground(Red).
			Border(lipgloss.NormalBorder()).
			BorderForeground(Red).
			Bold(true).
			Padding(0, 1).
			Render("DELETE")
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark).
			Padding(0, 1)
)
