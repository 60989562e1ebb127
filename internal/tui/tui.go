// Package tui provides a Bubble Tea terminal user interface for imagegrid.
package tui

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/imagegrid/internal/config"
	"github.com/handiism/imagegrid/internal/download"
	"github.com/handiism/imagegrid/internal/http"
	"github.com/handiism/imagegrid/internal/model"
	"github.com/handiism/imagegrid/internal/notify"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF6B6B")).
			Padding(0, 1)
)

const cellWidth = 4

// Grid is the part of download.Manager the UI drives.
type Grid interface {
	DownloadImages(ctx context.Context, count int, onDone func(error)) (*download.Batch, error)
	AddNewImage(ctx context.Context, onDone func(error)) (*download.Batch, error)
	ClearImages()
	Snapshot() []model.ImageRecord
	Pending() int
}

// Subscriber registers change callbacks, as notify.Notifier does.
type Subscriber interface {
	Subscribe(fn func(notify.Signal), signals ...notify.Signal) (unsubscribe func())
}

type keyMap struct {
	Add     key.Binding
	Reload  key.Binding
	Prev    key.Binding
	Next    key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Reload, k.Prev, k.Next, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Reload},
		{k.Prev, k.Next},
		{k.Dismiss, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Add:     key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a/+", "add image")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload all")),
	Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
	Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss alert")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type cell struct {
	status model.LoadStatus
	color  lipgloss.Color
	empty  bool // downloaded but undecodable
}

// Message types
type (
	// signalMsg carries a change notification into the update loop.
	signalMsg notify.Signal

	// batchDoneMsg is sent when a batch callback fires.
	batchDoneMsg struct {
		Err error
	}

	// startFailedMsg is sent when a batch could not be started.
	startFailedMsg struct {
		Err error
	}
)

// Model is the Bubble Tea model for the image grid.
type Model struct {
	grid     Grid
	settings *config.Settings

	signals     chan notify.Signal
	results     chan error
	unsubscribe func()

	ctx    context.Context
	cancel context.CancelFunc

	cells   []cell
	pending int
	page    int
	alert   string

	spinner spinner.Model
	help    help.Model

	width  int
	height int
}

// NewModel creates a grid model bound to grid and subscribed to sub.
func NewModel(grid Grid, sub Subscriber, settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = dimStyle

	signals := make(chan notify.Signal, 2)
	obs := notify.NewChannelObserver(signals)

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		grid:        grid,
		settings:    settings,
		signals:     signals,
		results:     make(chan error, 8),
		unsubscribe: sub.Subscribe(obs.OnSignal),
		ctx:         ctx,
		cancel:      cancel,
		spinner:     sp,
		help:        help.New(),
	}
}

// Init starts the initial load and the listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForSignal(),
		m.waitForResult(),
		func() tea.Msg {
			if err := m.load(m.settings.InitialImageCount); err != nil {
				return startFailedMsg{Err: err}
			}
			return nil
		},
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.stop()
			return m, tea.Quit

		case key.Matches(msg, keys.Add):
			if _, err := m.grid.AddNewImage(m.ctx, m.report); err != nil {
				m.alert = http.Describe(err)
			}
			m.refresh()

		case key.Matches(msg, keys.Reload):
			m.grid.ClearImages()
			m.page = 0
			if err := m.load(m.settings.InitialImageCount); err != nil {
				m.alert = http.Describe(err)
			}
			m.refresh()

		case key.Matches(msg, keys.Prev):
			if m.page > 0 {
				m.page--
			}

		case key.Matches(msg, keys.Next):
			if m.page < m.pageCount()-1 {
				m.page++
			}

		case key.Matches(msg, keys.Dismiss):
			m.alert = ""

		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case signalMsg:
		m.refresh()
		return m, m.waitForSignal()

	case startFailedMsg:
		m.alert = http.Describe(msg.Err)
		return m, nil

	case batchDoneMsg:
		if msg.Err != nil {
			m.alert = http.Describe(msg.Err)
		}
		m.refresh()
		return m, m.waitForResult()
	}

	return m, nil
}

// load starts a batch of count fetches.
func (m Model) load(count int) error {
	_, err := m.grid.DownloadImages(m.ctx, count, m.report)
	return err
}

// report is the batch callback; it runs on a manager goroutine.
func (m Model) report(err error) {
	select {
	case m.results <- err:
	case <-m.ctx.Done():
	}
}

func (m Model) waitForSignal() tea.Cmd {
	return func() tea.Msg {
		select {
		case sig := <-m.signals:
			return signalMsg(sig)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-m.results:
			return batchDoneMsg{Err: err}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) stop() {
	m.cancel()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// refresh rebuilds the cells from a fresh snapshot.
func (m *Model) refresh() {
	snap := m.grid.Snapshot()
	cells := make([]cell, len(snap))
	for i, rec := range snap {
		c := cell{status: rec.Status}
		if rec.Status == model.StatusDownloaded {
			if rec.HasPayload() {
				c.color = averageColor(rec.Image)
			} else {
				c.empty = true
			}
		}
		cells[i] = c
	}
	m.cells = cells
	m.pending = m.grid.Pending()

	if last := m.pageCount() - 1; m.page > last {
		m.page = last
	}
}

func (m Model) pageCount() int {
	size := m.settings.PageSize()
	total := len(m.cells) + m.pending
	if size < 1 || total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("imagegrid"))
	b.WriteString("\n")

	failed := 0
	for _, c := range m.cells {
		if c.status == model.StatusFailed {
			failed++
		}
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Images: %d | Loading: %d | Failed: %d | Page %d/%d",
		len(m.cells), m.pending, failed, m.page+1, m.pageCount(),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderPage())
	b.WriteString("\n")

	if m.alert != "" {
		b.WriteString(alertStyle.Render(errorStyle.Render("✗ " + m.alert)))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) renderPage() string {
	cols := m.settings.Grid.Columns
	size := m.settings.PageSize()
	start := m.page * size

	var b strings.Builder
	for i := 0; i < size; i++ {
		idx := start + i
		switch {
		case idx < len(m.cells):
			b.WriteString(m.renderCell(m.cells[idx]))
		case idx < len(m.cells)+m.pending:
			b.WriteString(pad(m.spinner.View()))
		default:
			b.WriteString(strings.Repeat(" ", cellWidth))
		}
		if (i+1)%cols == 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderCell(c cell) string {
	switch {
	case c.status == model.StatusFailed:
		return pad(errorStyle.Render("✗"))
	case c.empty:
		return pad(dimStyle.Render("?"))
	default:
		block := strings.Repeat("█", cellWidth-1)
		return lipgloss.NewStyle().Foreground(c.color).Render(block) + " "
	}
}

func pad(s string) string {
	return lipgloss.NewStyle().Width(cellWidth).Render(s)
}

// averageColor samples img on a coarse lattice and returns the mean color.
func averageColor(img image.Image) lipgloss.Color {
	bounds := img.Bounds()
	step := max(1, bounds.Dx()/16, bounds.Dy()/16)

	var r, g, bl, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r/n, g/n, bl/n))
}

// Run starts the TUI application.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
