package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			PaddingLeft(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	cardSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	cardImageStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	labelFocusedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	toastSuccessStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().Foreground(colorPrimary)
)
