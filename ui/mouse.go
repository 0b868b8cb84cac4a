package ui

import (
	"math"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"lazytrim/timeline"
	"lazytrim/ui/panels"
)

// handleMouse routes pointer input over the timeline bar to the editor.
// Positions are passed as cell centers so a click maps to the time under
// the middle of the cell.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	dims := CalculatePanelDimensions(m.width, m.height)
	row := msg.Y - dims.TimelineTop
	x := float64(msg.X) + 0.5

	switch msg.Action {
	case tea.MouseActionMotion:
		m.editor.Move(x)
		return m, nil
	case tea.MouseActionRelease:
		m.release(x)
		return m, nil
	}

	if row < panels.RowLabels || row > panels.RowPlayhead {
		return m, nil
	}
	inBar := msg.X >= dims.BarLeft && msg.X < dims.BarLeft+dims.BarWidth

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		ticks := 1
		if msg.Button == tea.MouseButtonWheelDown {
			ticks = -1
		}
		if msg.Ctrl || msg.Alt {
			// wheel down scrolls forward
			m.editor.Wheel(-ticks, x, timeline.WheelPan)
		} else {
			m.editor.Wheel(ticks, x, timeline.WheelZoom)
		}
	case tea.MouseButtonWheelLeft:
		m.editor.Wheel(-1, x, timeline.WheelPan)
	case tea.MouseButtonWheelRight:
		m.editor.Wheel(1, x, timeline.WheelPan)

	case tea.MouseButtonMiddle:
		if inBar {
			m.editor.Press(timeline.ButtonMiddle, x, timeline.Target{Kind: timeline.TargetBackground})
		}
	case tea.MouseButtonLeft:
		if !inBar {
			return m, nil
		}
		target := m.hitTest(row, x)
		if target.Kind == timeline.TargetSegment {
			m.selected = target.SegmentID
			m.dragSnapshot = m.segments.List()
		}
		m.editor.Press(timeline.ButtonLeft, x, target)
	}
	return m, nil
}

// hitTest decides what a left press on the bar grabbed: a segment part on
// the segment row, the playhead on the playhead or tick rows, else the
// background.
func (m Model) hitTest(row int, x float64) timeline.Target {
	mp := m.editor.Mapper()
	switch row {
	case panels.RowSegments:
		if t, ok := timeline.HitSegment(mp, m.segments.List(), x); ok {
			return t
		}
	case panels.RowPlayhead, panels.RowTicks:
		col := math.Floor(x - mp.Left)
		playhead := float64(mp.Column(m.player.Position()))
		if math.Abs(col-playhead) <= 1 {
			return timeline.Target{Kind: timeline.TargetPlayhead}
		}
	}
	return timeline.Target{Kind: timeline.TargetBackground}
}

// release ends the gesture and records an undo step when a segment drag
// changed anything.
func (m *Model) release(x float64) {
	dragging := m.editor.Gesture() == timeline.GestureDraggingSegment
	m.editor.Release(x)
	if !dragging || m.dragSnapshot == nil {
		return
	}
	if !slices.Equal(m.dragSnapshot, m.segments.List()) {
		m.pushUndo(m.dragSnapshot)
	}
	m.dragSnapshot = nil
}
