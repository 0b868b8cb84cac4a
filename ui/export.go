package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lazytrim/video"
)

type ExportDoneMsg struct {
	Outputs []string
	Err     error
}

type ExportProgressMsg float64

const (
	fieldMode = iota
	fieldFilename
	fieldAspect
	fieldCount
)

// exportForm is the state of the export modal.
type exportForm struct {
	show     bool
	merge    bool
	filename string
	aspect   int // index into video.AspectRatioOptions
	focus    int

	running      bool
	progress     float64
	progressChan <-chan float64
	cancel       context.CancelFunc
	spinner      spinner.Model
	bar          progress.Model
}

func newExportForm() exportForm {
	return exportForm{
		merge:   true,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

func (m *Model) openExport() {
	m.export.show = true
	m.export.filename = ""
	m.export.aspect = 0
	m.export.focus = fieldMode
	m.export.merge = true
}

func (m Model) exportOptions() video.ExportOptions {
	props := m.player.Properties()
	return video.ExportOptions{
		Input:       m.player.Path(),
		Segments:    m.segments.Spans(),
		Merge:       m.export.merge,
		Name:        m.export.filename,
		AspectRatio: video.AspectRatioOptions[m.export.aspect].Ratio,
		Width:       props.Width,
		Height:      props.Height,
		Workers:     m.workers,
	}
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	progressChan := make(chan float64, 100)
	m.export.running = true
	m.export.progress = 0
	m.export.progressChan = progressChan
	m.export.cancel = cancel

	opts := m.exportOptions()
	exporter, logger := m.exporter, m.logger
	logger.Info("export started", "segments", len(opts.Segments), "merge", opts.Merge)
	return m, tea.Batch(
		func() tea.Msg {
			outputs, err := exporter.Export(ctx, opts, progressChan)
			return ExportDoneMsg{Outputs: outputs, Err: err}
		},
		listenProgress(progressChan),
		m.export.spinner.Tick,
	)
}

func listenProgress(ch <-chan float64) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return ExportProgressMsg(p)
	}
}

func (m Model) updateExport(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ExportProgressMsg:
		m.export.progress = float64(msg)
		if m.export.progressChan != nil {
			return m, listenProgress(m.export.progressChan)
		}

	case ExportDoneMsg:
		if m.export.cancel != nil {
			m.export.cancel()
		}
		m.export.running = false
		m.export.show = false
		m.export.progress = 0
		m.export.progressChan = nil
		m.export.cancel = nil

		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.logger.Info("export cancelled")
			return m, m.setStatus("Export cancelled")
		case msg.Err != nil:
			m.logger.Error("export failed", "err", msg.Err)
			return m, m.setStatus("Export failed")
		}
		names := make([]string, len(msg.Outputs))
		for i, out := range msg.Outputs {
			names[i] = filepath.Base(out)
		}
		m.logger.Info("export done", "outputs", msg.Outputs)
		return m, m.setStatus("Exported: " + strings.Join(names, ", "))
	}
	return m, nil
}

func (m Model) handleExportModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.export
	if f.running {
		if msg.Type == tea.KeyEsc && f.cancel != nil {
			f.cancel()
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		f.show = false
		return m, nil
	case tea.KeyEnter:
		return m.startExport()
	case tea.KeyUp, tea.KeyShiftTab:
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		return m, nil
	case tea.KeyDown, tea.KeyTab:
		f.focus = (f.focus + 1) % fieldCount
		return m, nil
	case tea.KeyLeft:
		f.change(-1)
		return m, nil
	case tea.KeyRight:
		f.change(1)
		return m, nil
	case tea.KeyBackspace:
		if f.focus == fieldFilename && len(f.filename) > 0 {
			r := []rune(f.filename)
			f.filename = string(r[:len(r)-1])
		}
		return m, nil
	}

	if f.focus == fieldFilename {
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			f.filename += string(msg.Runes)
		}
		return m, nil
	}

	// Vim-style navigation aliases outside the text field
	switch msg.String() {
	case "j":
		f.focus = (f.focus + 1) % fieldCount
	case "k":
		f.focus = (f.focus + fieldCount - 1) % fieldCount
	case "h":
		f.change(-1)
	case "l":
		f.change(1)
	}
	return m, nil
}

// change steps the focused choice field.
func (f *exportForm) change(delta int) {
	switch f.focus {
	case fieldMode:
		f.merge = !f.merge
	case fieldAspect:
		n := len(video.AspectRatioOptions)
		f.aspect = ((f.aspect+delta)%n + n) % n
	}
}

func (m Model) renderExportModal() string {
	f := m.export
	opts := m.exportOptions()
	ffmpegCmd := CommandStyle.Render(video.BuildFFmpegCommand(opts))

	var content string
	if f.running {
		title := TitleStyle.Render(f.spinner.View() + " Exporting...")
		content = fmt.Sprintf("%s\n\n%s\n\n%s\n\n[esc]: cancel", title, f.bar.ViewAs(f.progress), ffmpegCmd)
	} else {
		indicator := func(field int) string {
			if f.focus == field {
				return FocusStyle.Render("> ")
			}
			return "  "
		}

		mode := choices([]string{"Merge into one file", "One file per segment"}, boolIndex(!f.merge))
		labels := make([]string, len(video.AspectRatioOptions))
		for i, opt := range video.AspectRatioOptions {
			labels[i] = opt.Label
		}
		ratio := choices(labels, f.aspect)

		filename := f.filename
		if f.focus == fieldFilename {
			filename += "_"
		} else if filename == "" {
			filename = "(auto)"
		}

		outputs := video.OutputNames(opts.Input, opts.Name, len(opts.Segments), opts.Merge)
		target := filepath.Base(outputs[0])
		if len(outputs) > 1 {
			target += fmt.Sprintf(" ... %s", filepath.Base(outputs[len(outputs)-1]))
		}

		title := TitleStyle.Render(fmt.Sprintf("Export %d segment(s)", len(opts.Segments)))
		content = fmt.Sprintf(`%s

%sMode:     %s

%sFilename: %s

%sAspect:   %s

Writes    %s

%s

[up/down or j/k]: switch field
[left/right or h/l]: change choice
[enter]: export       [esc]: cancel`,
			title,
			indicator(fieldMode), mode,
			indicator(fieldFilename), filename,
			indicator(fieldAspect), ratio,
			target, ffmpegCmd)
	}

	modal := ModalStyle.Width(75).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func choices(labels []string, selected int) string {
	var b strings.Builder
	for i, label := range labels {
		if i == selected {
			b.WriteString("[" + label + "] ")
		} else {
			b.WriteString(" " + label + "  ")
		}
	}
	return b.String()
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
