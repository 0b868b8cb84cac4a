package ui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lazytrim/logging"
	"lazytrim/segment"
	"lazytrim/thumbnail"
	"lazytrim/timeline"
	"lazytrim/ui/panels"
	"lazytrim/video"
)

const (
	statusTimeout = 3 * time.Second
	maxUndo       = 100
)

// Player is the playback handle the editor drives. *video.Player satisfies
// it; it doubles as the shared thumbnail frame source.
type Player interface {
	thumbnail.FrameSource
	panels.PreviewSource
	Path() string
	Properties() *video.Properties
	FrameDuration() time.Duration
	SetSize(width, height int)
	Toggle() error
	Quality() video.Quality
	CycleQuality() video.Quality
	ToggleMute()
	IsMuted() bool
	Close()
}

type Exporter interface {
	Export(ctx context.Context, opts video.ExportOptions, progress chan<- float64) ([]string, error)
}

type Options struct {
	// Generator captures the thumbnail strip. Nil disables thumbnails.
	Generator *thumbnail.Generator
	// Thumbs is the frame source for thumbnails; nil shares the player.
	Thumbs        thumbnail.FrameSource
	ThumbDelay    time.Duration
	Exporter      Exporter
	ExportWorkers int
	Logger        *slog.Logger
}

type TickMsg time.Time

type statusClearMsg struct{ seq int }

type Model struct {
	width  int
	height int
	ready  bool

	player   Player
	logger   *slog.Logger
	segments *segment.List
	viewport *timeline.Viewport
	editor   *timeline.Editor

	preview  *panels.Preview
	cutList  *panels.CutList
	timeline *panels.Timeline
	thumbs   *panels.ThumbStrip
	help     help.Model

	selected     string
	previewMode  bool
	previewEnd   time.Duration
	status       string
	statusSeq    int
	undoStack    [][]segment.Segment
	dragSnapshot []segment.Segment

	showHelpModal bool

	// Vim-style input
	repeatCount int

	gen         *thumbnail.Generator
	thumbSource thumbnail.FrameSource
	thumbDelay  time.Duration
	thumbEpoch  uint64
	thumbCancel context.CancelFunc

	exporter Exporter
	workers  int
	export   exportForm
}

func NewModel(player Player, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Thumbs == nil {
		opts.Thumbs = player
	}
	if opts.Exporter == nil {
		opts.Exporter = video.NewExporter("", opts.Logger)
	}

	segments := segment.NewList(player.Duration())
	viewport := timeline.NewViewport(0)
	editor := timeline.NewEditor(segments, viewport, player)
	thumbs := panels.NewThumbStrip()

	return Model{
		player:      player,
		logger:      logging.WithComponent(opts.Logger, "ui"),
		segments:    segments,
		viewport:    viewport,
		editor:      editor,
		preview:     panels.NewPreview(player),
		cutList:     panels.NewCutList(player, segments),
		timeline:    panels.NewTimeline(player, segments, editor, thumbs),
		thumbs:      thumbs,
		help:        help.New(),
		gen:         opts.Generator,
		thumbSource: opts.Thumbs,
		thumbDelay:  opts.ThumbDelay,
		exporter:    opts.Exporter,
		workers:     opts.ExportWorkers,
		export:      newExportForm(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.thumbsAfter(m.thumbDelay))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// setStatus shows msg on the timeline until statusTimeout passes or another
// status replaces it.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusSeq++
	m.status = msg
	seq := m.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ExportProgressMsg, ExportDoneMsg:
		return m.updateExport(msg)

	case thumbsStartMsg:
		return m.startThumbs()

	case thumbsDoneMsg:
		return m.finishThumbs(msg)

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		dims := CalculatePanelDimensions(m.width, m.height)
		m.player.SetSize(dims.PreviewContentWidth, dims.PreviewContentHeight)
		m.viewport.SetWidth(float64(dims.BarWidth))
		m.editor.SetLeft(float64(dims.BarLeft))
		m.help.Width = dims.TimelineContentWidth - 1
		return m, nil

	case TickMsg:
		if m.previewMode {
			if !m.player.IsPlaying() {
				m.previewMode = false
			} else if m.player.Position() >= m.previewEnd {
				m.player.Pause()
				m.previewMode = false
			}
		}
		if m.player.IsPlaying() && m.editor.Gesture() == timeline.GestureIdle {
			m.revealPlayhead()
		}
		return m, tickCmd()

	case tea.MouseMsg:
		if m.showHelpModal || m.export.show {
			return m, nil
		}
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.showHelpModal {
			return m.handleHelpModalKey(msg)
		}
		if m.export.show {
			return m.handleExportModalKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.export.running {
		var cmd tea.Cmd
		m.export.spinner, cmd = m.export.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' || s == "0" && m.repeatCount > 0 {
		m.repeatCount = m.repeatCount*10 + int(s[0]-'0')
		return m, nil
	}
	n := max(1, m.repeatCount)
	m.repeatCount = 0

	pos := m.player.Position()
	switch {
	case key.Matches(msg, keys.Quit):
		m.shutdown()
		return m, tea.Quit

	case key.Matches(msg, keys.Play):
		m.previewMode = false
		if err := m.player.Toggle(); err != nil {
			m.logger.Warn("toggle playback", "err", err)
			return m, m.setStatus("Playback failed")
		}

	case key.Matches(msg, keys.Back):
		m.seek(pos - time.Duration(n)*time.Second)
	case key.Matches(msg, keys.Forward):
		m.seek(pos + time.Duration(n)*time.Second)
	case key.Matches(msg, keys.BackFast):
		m.seek(pos - time.Duration(n*5)*time.Second)
	case key.Matches(msg, keys.ForwardFast):
		m.seek(pos + time.Duration(n*5)*time.Second)
	case key.Matches(msg, keys.PrevFrame):
		m.seek(pos - time.Duration(n)*m.player.FrameDuration())
	case key.Matches(msg, keys.NextFrame):
		m.seek(pos + time.Duration(n)*m.player.FrameDuration())
	case key.Matches(msg, keys.Start):
		m.seek(0)
	case key.Matches(msg, keys.End):
		m.seek(m.player.Duration())

	case key.Matches(msg, keys.Add):
		return m, m.addSegment(pos)
	case key.Matches(msg, keys.Remove):
		return m, m.removeSelected()
	case key.Matches(msg, keys.SetStart):
		return m, m.setSelectedBound(pos, true)
	case key.Matches(msg, keys.SetEnd):
		return m, m.setSelectedBound(pos, false)
	case key.Matches(msg, keys.Next):
		m.moveSelection(n)
	case key.Matches(msg, keys.Prev):
		m.moveSelection(-n)
	case key.Matches(msg, keys.Jump):
		if s, ok := m.segments.Get(m.selected); ok {
			m.seek(s.Start)
		}
	case key.Matches(msg, keys.Preview):
		return m, m.previewSelected()
	case key.Matches(msg, keys.Undo):
		return m, m.undo()

	case key.Matches(msg, keys.ZoomIn):
		m.viewport.ZoomAt(n, m.playheadX())
	case key.Matches(msg, keys.ZoomOut):
		m.viewport.ZoomAt(-n, m.playheadX())
	case key.Matches(msg, keys.ZoomReset):
		m.viewport.Reset()
	case key.Matches(msg, keys.PanLeft):
		m.viewport.Pan(-n)
	case key.Matches(msg, keys.PanRight):
		m.viewport.Pan(n)

	case key.Matches(msg, keys.Export):
		if m.segments.Len() == 0 {
			return m, m.setStatus("Add a segment first (a)")
		}
		m.openExport()
	case key.Matches(msg, keys.Mute):
		m.player.ToggleMute()
	case key.Matches(msg, keys.Quality):
		m.player.CycleQuality()
	case key.Matches(msg, keys.Cancel):
		m.editor.Cancel()
		if m.previewMode {
			m.previewMode = false
			m.player.Pause()
		}
	case key.Matches(msg, keys.Help):
		m.showHelpModal = true
	}
	return m, nil
}

func (m *Model) shutdown() {
	if m.thumbCancel != nil {
		m.thumbCancel()
	}
	if m.export.cancel != nil {
		m.export.cancel()
	}
	m.player.Close()
}

// seek moves the playhead and scrolls the timeline to keep it in view.
func (m *Model) seek(t time.Duration) {
	m.player.Seek(max(0, min(t, m.player.Duration())))
	m.revealPlayhead()
}

func (m *Model) revealPlayhead() {
	dur := m.player.Duration()
	if dur <= 0 || m.viewport.Zoom() <= timeline.MinZoom {
		return
	}
	mp := m.viewport.Mapper(dur, 0)
	m.viewport.Reveal(float64(m.player.Position()) / float64(dur) * mp.ContentWidth())
}

// playheadX is the playhead position relative to the bar, the anchor for
// keyboard zoom.
func (m *Model) playheadX() float64 {
	mp := m.editor.Mapper()
	return mp.TimeToPixel(m.player.Position()) - mp.Left
}

func (m *Model) pushUndo(snapshot []segment.Segment) {
	m.undoStack = append(m.undoStack, snapshot)
	if len(m.undoStack) > maxUndo {
		m.undoStack = m.undoStack[1:]
	}
}

func (m *Model) undo() tea.Cmd {
	if len(m.undoStack) == 0 {
		return m.setStatus("Nothing to undo")
	}
	last := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.segments.Restore(last)
	if _, ok := m.segments.Get(m.selected); !ok {
		m.selected = ""
		if segs := m.segments.List(); len(segs) > 0 {
			m.selected = segs[len(segs)-1].ID
		}
	}
	return nil
}

func (m *Model) addSegment(pos time.Duration) tea.Cmd {
	snapshot := m.segments.List()
	id, err := m.segments.Add(pos)
	if err != nil {
		m.logger.Debug("add segment", "err", err)
		return m.setStatus("Video too short for a segment")
	}
	m.pushUndo(snapshot)
	m.selected = id
	return m.setStatus(fmt.Sprintf("Added segment #%d", m.segments.Len()))
}

func (m *Model) removeSelected() tea.Cmd {
	segs := m.segments.List()
	i := m.selectedIndex(segs)
	if i < 0 {
		return nil
	}
	m.pushUndo(segs)
	m.segments.Remove(m.selected)
	m.selected = ""
	if rest := m.segments.List(); len(rest) > 0 {
		m.selected = rest[min(i, len(rest)-1)].ID
	}
	return m.setStatus(fmt.Sprintf("Removed segment #%d", i+1))
}

// setSelectedBound moves the start or end of the selected segment to pos.
func (m *Model) setSelectedBound(pos time.Duration, start bool) tea.Cmd {
	s, ok := m.segments.Get(m.selected)
	if !ok {
		return m.setStatus("No segment selected")
	}
	if start && pos >= s.End {
		return m.setStatus("Start must be before the end")
	}
	if !start && pos <= s.Start {
		return m.setStatus("End must be after the start")
	}

	snapshot := m.segments.List()
	var err error
	if start {
		err = m.segments.SetStartAt(s.ID, pos)
	} else {
		err = m.segments.SetEndAt(s.ID, pos)
	}
	if err != nil {
		m.logger.Warn("set segment bound", "id", s.ID, "err", err)
		return nil
	}
	m.pushUndo(snapshot)
	return nil
}

func (m *Model) selectedIndex(segs []segment.Segment) int {
	return slices.IndexFunc(segs, func(s segment.Segment) bool { return s.ID == m.selected })
}

func (m *Model) moveSelection(delta int) {
	segs := m.segments.List()
	if len(segs) == 0 {
		return
	}
	i := m.selectedIndex(segs)
	if i < 0 {
		i = 0
		if delta < 0 {
			i = len(segs) - 1
		}
	} else {
		i = ((i+delta)%len(segs) + len(segs)) % len(segs)
	}
	m.selected = segs[i].ID
}

// previewSelected plays the selected segment and stops at its end.
func (m *Model) previewSelected() tea.Cmd {
	s, ok := m.segments.Get(m.selected)
	if !ok {
		return m.setStatus("No segment selected")
	}
	m.player.Pause()
	m.seek(s.Start)
	if err := m.player.Play(); err != nil {
		m.logger.Warn("preview segment", "err", err)
		return m.setStatus("Playback failed")
	}
	m.previewMode = true
	m.previewEnd = s.End
	return nil
}

func renderPanel(content, title string, width, height int) string {
	innerWidth := width - 2
	innerHeight := height - 2

	inner := content
	if strings.TrimSpace(title) != "" {
		inner = title + "\n" + content
	}
	lines := strings.Split(inner, "\n")
	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	paddedContent := strings.Join(lines[:innerHeight], "\n")

	return BorderStyle.
		Width(innerWidth).
		Height(innerHeight).
		Render(paddedContent)
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	dims := CalculatePanelDimensions(m.width, m.height)

	if dims.PreviewContentWidth < minPanelWidth || dims.PreviewContentHeight < minPanelHeight {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Terminal too small")
	}

	previewContent := m.preview.Render(dims.PreviewContentWidth, dims.PreviewContentHeight)
	previewPanel := renderPanel(previewContent, "", dims.PreviewWidth, dims.PreviewHeight)

	m.cutList.SetSelected(m.selected)
	cutListContent := m.cutList.Render(dims.CutListContentWidth, dims.CutListContentHeight)
	cutListPanel := renderPanel(cutListContent, "", dims.CutListWidth, dims.CutListHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, previewPanel, cutListPanel)

	m.timeline.SetSelected(m.selected)
	m.timeline.SetStatus(m.status)
	m.timeline.SetHelp(m.footerHelp())
	timelineContent := m.timeline.Render(dims.TimelineContentWidth, dims.TimelineContentHeight)
	timelinePanel := renderPanel(timelineContent, "", dims.TimelineWidth, dims.TimelineHeight)

	base := lipgloss.JoinVertical(lipgloss.Left, topRow, timelinePanel)

	if m.showHelpModal {
		return m.renderHelpModal()
	}
	if m.export.show {
		return m.renderExportModal()
	}
	return base
}

func (m Model) footerHelp() string {
	if m.repeatCount > 0 {
		return fmt.Sprintf("%dx", m.repeatCount)
	}
	bindings := keys.ShortHelp()
	if m.selected != "" {
		bindings = keys.editingHelp()
	}
	return m.help.ShortHelpView(bindings)
}

func (m Model) handleHelpModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q", "enter", " ":
		m.showHelpModal = false
	}
	return m, nil
}

func (m Model) renderHelpModal() string {
	h := m.help
	h.ShowAll = true
	content := TitleStyle.Render("Help") + "\n\n" +
		h.FullHelpView(keys.FullHelp()) + "\n\n" +
		"Mouse: click to seek, drag [ ] to resize, drag a segment to move it,\n" +
		"drag the ▲ to scrub, wheel to zoom, ctrl+wheel or middle drag to pan.\n" +
		"Counts work before motions, e.g. 5l, 10., 2H.\n\n" +
		"[?] or [Esc] to close"

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, ModalStyle.Render(content))
}
