package panels

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"lazytrim/segment"
	"lazytrim/timeline"
)

// Rows of the timeline panel, top to bottom. The model hit-tests the mouse
// against the same rows.
const (
	RowStatus = iota
	RowLabels
	RowTicks
	RowThumbs
	RowSegments = RowThumbs + ThumbRows
	RowPlayhead = RowSegments + 1
	RowHelp     = RowPlayhead + 1

	TimelineRows = RowHelp + 1
	// BarInset is the gap between the panel edge and the first bar cell.
	BarInset = 1
)

// Playback is the player state the timeline shows.
type Playback interface {
	Position() time.Duration
	Duration() time.Duration
	IsPlaying() bool
	IsMuted() bool
}

type Timeline struct {
	playback Playback
	segments *segment.List
	editor   *timeline.Editor
	thumbs   *ThumbStrip
	selected string
	status   string
	help     string
}

func NewTimeline(playback Playback, segments *segment.List, editor *timeline.Editor, thumbs *ThumbStrip) *Timeline {
	return &Timeline{
		playback: playback,
		segments: segments,
		editor:   editor,
		thumbs:   thumbs,
	}
}

func (t *Timeline) SetSelected(id string) { t.selected = id }
func (t *Timeline) SetStatus(s string)    { t.status = s }
func (t *Timeline) SetHelp(h string)      { t.help = h }

func (t *Timeline) Render(width, height int) string {
	m := t.editor.Mapper()
	pos := t.playback.Position()
	inset := strings.Repeat(" ", BarInset)

	labels, ticks := rulerRows(m, pos)
	lines := []string{t.statusLine(m, pos), inset + labels, inset + ticks}
	for _, row := range t.thumbs.Rows(m) {
		lines = append(lines, inset+row)
	}

	dragged, handle, dragging := t.editor.DraggedSegment()
	if !dragging {
		dragged = ""
	}
	lines = append(lines,
		inset+segmentRow(m, t.segments.List(), t.selected, dragged, handle),
		inset+playheadRow(m, pos),
		" "+t.help,
	)

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(strings.Join(lines, "\n"))
}

func (t *Timeline) statusLine(m timeline.Mapper, pos time.Duration) string {
	playIcon := "▶ "
	if t.playback.IsPlaying() {
		playIcon = "❚❚"
	}
	muteIcon := "))"
	if t.playback.IsMuted() {
		muteIcon = "×)"
	}

	line := fmt.Sprintf(" %s %s / %s  %s", playIcon,
		segment.FormatTime(pos), segment.FormatTime(t.playback.Duration()), muteIcon)
	if m.Zoom > timeline.MinZoom {
		line += DimStyle.Render(fmt.Sprintf("  zoom %.1fx", m.Zoom))
	}
	if n := t.segments.Len(); n > 0 {
		line += DimStyle.Render(fmt.Sprintf("  [%d cut · %s]", n, segment.FormatTime(t.segments.TotalDuration())))
	}
	if t.status != "" {
		line += "  " + AccentStyle.Render(t.status)
	}
	return line
}

// rulerRows draws marker labels and tick marks for the visible range. The
// playhead is marked on the tick row.
func rulerRows(m timeline.Mapper, pos time.Duration) (string, string) {
	width := int(m.Width)
	if width <= 0 {
		return "", ""
	}
	labels := []rune(strings.Repeat(" ", width))
	ticks := make([]string, width)
	for i := range ticks {
		ticks[i] = DimStyle.Render("─")
	}

	free := 0
	for _, at := range timeline.Markers(m.Duration, m.Zoom) {
		col := m.Column(at)
		if col < 0 || col >= width {
			continue
		}
		ticks[col] = LabelStyle.Render("┬")
		label := markerLabel(at)
		if col < free || col+len(label) > width {
			continue
		}
		copy(labels[col:], []rune(label))
		free = col + len(label) + 1
	}

	if m.Duration > 0 && m.Visible(pos) {
		ticks[m.Column(pos)] = playheadStyle.Render("┃")
	}
	return LabelStyle.Render(string(labels)), strings.Join(ticks, "")
}

// markerLabel is a compact ruler label: M:SS, or H:MM:SS past an hour.
func markerLabel(t time.Duration) string {
	s := int(t / time.Second)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// segmentRow draws each segment as a colored bar with [ and ] handles.
// Later segments are drawn over earlier ones, matching hit testing.
func segmentRow(m timeline.Mapper, segs []segment.Segment, selected, dragged string, handle timeline.Handle) string {
	width := int(m.Width)
	if width <= 0 {
		return ""
	}
	cells := make([]string, width)
	for i := range cells {
		cells[i] = " "
	}
	if m.Duration <= 0 {
		return strings.Join(cells, "")
	}

	for i, s := range segs {
		first, last := timeline.SegmentColumns(m, s)
		if last < 0 || first >= width {
			continue
		}
		color := segmentColor(i)
		body := lipgloss.NewStyle().Foreground(color)
		edge := handleStyle.Background(color)
		if s.ID == selected {
			edge = edge.Foreground(selectedStyle.GetForeground())
		}

		for col := max(first, 0); col <= min(last, width-1); col++ {
			cells[col] = body.Render("█")
		}
		if first == last {
			cells[first] = edge.Render("|")
			continue
		}
		if first >= 0 {
			cells[first] = edge.Reverse(s.ID == dragged && handle == timeline.HandleStart).Render("[")
		}
		if last < width {
			cells[last] = edge.Reverse(s.ID == dragged && handle == timeline.HandleEnd).Render("]")
		}
	}
	return strings.Join(cells, "")
}

// playheadRow marks the playhead with ▲, or an arrow at the edge when it is
// scrolled out of view. Played time is drawn as a line.
func playheadRow(m timeline.Mapper, pos time.Duration) string {
	width := int(m.Width)
	if width <= 0 {
		return ""
	}
	if m.Duration <= 0 {
		return strings.Repeat(" ", width)
	}

	col := m.Column(pos)
	switch {
	case col < 0:
		return playheadStyle.Render("◀") + strings.Repeat(" ", width-1)
	case col >= width:
		return DimStyle.Render(strings.Repeat("━", width-1)) + playheadStyle.Render("▶")
	}
	return DimStyle.Render(strings.Repeat("━", col)) +
		playheadStyle.Render("▲") +
		strings.Repeat(" ", width-col-1)
}
