package ui

import "lazytrim/ui/panels"

// Layout constants
const (
	minPanelWidth  = 10
	minPanelHeight = 5
	// Border (2) + padding (1 left + 1 right) = 4 horizontal overhead per panel
	horizontalOverhead = 4
	// Border (2) vertical overhead per panel
	verticalOverhead = 2
	// Timeline fixed height: its content rows plus the border
	timelineFixedHeight = panels.TimelineRows + verticalOverhead
	// Cut list panel fixed width
	cutListFixedWidth = 34
	// Screen offset of panel content from the panel's top-left corner
	contentOffsetX = 2
	contentOffsetY = 1
)

// PanelDimensions holds the calculated dimensions for all panels
// Layout: Preview + Cut list (top row, horizontal split) + Timeline (bottom, fixed height)
type PanelDimensions struct {
	// Total panel dimensions (for lipgloss Width/Height)
	PreviewWidth   int
	PreviewHeight  int
	CutListWidth   int
	CutListHeight  int
	TimelineWidth  int
	TimelineHeight int
	// Content dimensions (what gets passed to panel Render)
	PreviewContentWidth   int
	PreviewContentHeight  int
	CutListContentWidth   int
	CutListContentHeight  int
	TimelineContentWidth  int
	TimelineContentHeight int
	// Screen position of the first timeline content row and of the first
	// bar cell, and the bar width in cells
	TimelineTop int
	BarLeft     int
	BarWidth    int
}

// CalculatePanelDimensions calculates panel dimensions based on terminal size
func CalculatePanelDimensions(termWidth, termHeight int) PanelDimensions {
	// Timeline has fixed height, top row takes the rest
	timelineHeight := timelineFixedHeight
	topRowHeight := max(0, termHeight-timelineHeight)

	// Cut list has fixed width, preview takes the rest
	cutListWidth := cutListFixedWidth
	previewWidth := max(0, termWidth-cutListWidth)

	timelineContentWidth := max(0, termWidth-horizontalOverhead)

	return PanelDimensions{
		PreviewWidth:          previewWidth,
		PreviewHeight:         topRowHeight,
		CutListWidth:          cutListWidth,
		CutListHeight:         topRowHeight,
		TimelineWidth:         termWidth,
		TimelineHeight:        timelineHeight,
		PreviewContentWidth:   max(0, previewWidth-horizontalOverhead),
		PreviewContentHeight:  max(0, topRowHeight-verticalOverhead),
		CutListContentWidth:   max(0, cutListWidth-horizontalOverhead),
		CutListContentHeight:  max(0, topRowHeight-verticalOverhead),
		TimelineContentWidth:  timelineContentWidth,
		TimelineContentHeight: panels.TimelineRows,
		TimelineTop:           topRowHeight + contentOffsetY,
		BarLeft:               contentOffsetX + panels.BarInset,
		BarWidth:              max(0, timelineContentWidth-2*panels.BarInset),
	}
}
