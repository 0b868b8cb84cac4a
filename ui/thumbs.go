package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lazytrim/thumbnail"
)

type thumbsStartMsg struct{}

type thumbsDoneMsg struct {
	strip thumbnail.Strip
	err   error
}

func (m Model) thumbsAfter(delay time.Duration) tea.Cmd {
	if m.gen == nil {
		return nil
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return thumbsStartMsg{}
	})
}

// startThumbs runs the generator once per loaded video, as soon as the bar
// has a width.
func (m Model) startThumbs() (tea.Model, tea.Cmd) {
	if m.gen == nil || m.thumbs.Ready() || m.player.Duration() <= 0 {
		return m, nil
	}
	width := int(m.viewport.Width())
	if width <= 0 {
		return m, m.thumbsAfter(m.thumbDelay)
	}

	if m.thumbCancel != nil {
		m.thumbCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.thumbCancel = cancel
	m.thumbEpoch = m.gen.Begin()
	m.thumbs.SetLoading(true)

	gen, src, epoch := m.gen, m.thumbSource, m.thumbEpoch
	return m, func() tea.Msg {
		strip, err := gen.Generate(ctx, epoch, src, width)
		return thumbsDoneMsg{strip: strip, err: err}
	}
}

func (m Model) finishThumbs(msg thumbsDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, thumbnail.ErrInFlight):
		return m, m.thumbsAfter(m.thumbDelay)
	case msg.strip.Epoch != m.thumbEpoch || m.gen.Stale(msg.strip.Epoch):
		m.logger.Debug("dropping stale thumbnails", "epoch", msg.strip.Epoch)
		return m, nil
	}

	m.thumbCancel = nil
	switch {
	case errors.Is(msg.err, thumbnail.ErrSourceUnavailable):
		m.logger.Debug("thumbnails skipped", "err", msg.err)
		m.thumbs.SetLoading(false)
	case msg.err != nil:
		m.logger.Warn("thumbnails stopped", "err", msg.err, "captured", msg.strip.Captured())
		m.thumbs.SetLoading(false)
	default:
		m.logger.Info("thumbnails ready", "frames", len(msg.strip.Frames), "captured", msg.strip.Captured())
		m.thumbs.Set(msg.strip)
	}
	return m, nil
}
