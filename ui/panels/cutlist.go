package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lazytrim/segment"
	"lazytrim/video"
)

// VideoInfo supplies the static video details shown above the cut list.
type VideoInfo interface {
	Properties() *video.Properties
	Quality() video.Quality
}

// CutList shows the video properties and the segments that will be
// exported, with the selected segment highlighted.
type CutList struct {
	info     VideoInfo
	segments *segment.List
	selected string
}

func NewCutList(info VideoInfo, segments *segment.List) *CutList {
	return &CutList{info: info, segments: segments}
}

func (c *CutList) SetSelected(id string) {
	c.selected = id
}

func (c *CutList) Render(width, height int) string {
	var lines []string
	labelStyle := LabelStyle.Width(11)
	addLine := func(label, value string) {
		lines = append(lines, labelStyle.Render(label)+value)
	}

	if props := c.info.Properties(); props != nil {
		addLine("Resolution", props.Resolution())
		addLine("Codec", props.Codec)
		addLine("FPS", props.FormattedFPS())
		addLine("Bitrate", props.FormattedBitrate())
		addLine("Size", props.FormattedFileSize())
		addLine("Duration", segment.FormatTime(props.Duration))
	}
	quality := c.info.Quality()
	addLine("Quality", lipgloss.NewStyle().Foreground(qualityColors[quality.String()]).Render(quality.String()))
	lines = append(lines, "")

	segs := c.segments.List()
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("Segments (%d)", len(segs))))
	if len(segs) == 0 {
		lines = append(lines, DimStyle.Render("none yet, press a to add"))
		return c.fit(lines, width, height)
	}

	footer := []string{"", labelStyle.Render("Total") + segment.FormatTime(c.segments.TotalDuration())}
	if props := c.info.Properties(); props != nil {
		footer = append(footer, labelStyle.Render("Est. Size")+props.EstimateSize(c.segments.TotalDuration()))
	}

	// two lines per entry; scroll so the selection stays in view
	room := max(1, (height-len(lines)-len(footer))/2)
	first := 0
	for i, s := range segs {
		if s.ID == c.selected && i >= room {
			first = i - room + 1
		}
	}
	last := min(len(segs), first+room)
	for i := first; i < last; i++ {
		lines = append(lines, c.entry(i, segs[i])...)
	}
	if last < len(segs) {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("  +%d more", len(segs)-last)))
	}

	return c.fit(append(lines, footer...), width, height)
}

func (c *CutList) entry(i int, s segment.Segment) []string {
	marker := "  "
	number := lipgloss.NewStyle().Foreground(segmentColor(i)).Render(fmt.Sprintf("#%d", i+1))
	span := segment.FormatTime(s.Start) + "-" + segment.FormatTime(s.End)
	if s.ID == c.selected {
		marker = selectedStyle.Render("> ")
		span = selectedStyle.Render(span)
	}
	return []string{
		marker + number + " " + span,
		"    " + DimStyle.Render("length "+segment.FormatTime(s.Length())),
	}
}

func (c *CutList) fit(lines []string, width, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Render(strings.Join(lines, "\n"))
}
