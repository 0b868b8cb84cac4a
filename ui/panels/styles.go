package panels

import "github.com/charmbracelet/lipgloss"

var (
	DimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	LabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	AccentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	HeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)

	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	handleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	qualityColors = map[string]lipgloss.Color{
		"LOW":    lipgloss.Color("243"),
		"MEDIUM": lipgloss.Color("214"),
		"HIGH":   lipgloss.Color("46"),
	}
)

// segmentColors cycles per segment so overlapping segments stay apart.
var segmentColors = []lipgloss.Color{
	lipgloss.Color("34"),
	lipgloss.Color("33"),
	lipgloss.Color("170"),
	lipgloss.Color("166"),
	lipgloss.Color("37"),
}

func segmentColor(i int) lipgloss.Color {
	return segmentColors[i%len(segmentColors)]
}
