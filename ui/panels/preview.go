package panels

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"lazytrim/segment"
)

// PreviewSource supplies the rendered frame for the preview panel.
type PreviewSource interface {
	CurrentFrame() string
	IsPlaying() bool
	Position() time.Duration
}

type Preview struct {
	source PreviewSource
}

func NewPreview(source PreviewSource) *Preview {
	return &Preview{source: source}
}

func (p *Preview) Render(width, height int) string {
	frame := p.source.CurrentFrame()
	if frame == "" {
		frame = "Press SPACE to play"
		if p.source.IsPlaying() {
			frame = "Loading..."
		} else if pos := p.source.Position(); pos > 0 {
			frame = "No frame at " + segment.FormatTime(pos)
		}
		frame = DimStyle.Render(frame)
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(frame)
}
