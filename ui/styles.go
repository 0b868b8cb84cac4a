package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Panel border style
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	// Modal frame shared by the help and export dialogs
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 3)

	TitleStyle   = lipgloss.NewStyle().Bold(true)
	CommandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	FocusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
)
