package tui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/imagegrid/internal/config"
	"github.com/handiism/imagegrid/internal/download"
	"github.com/handiism/imagegrid/internal/http"
	"github.com/handiism/imagegrid/internal/model"
	"github.com/handiism/imagegrid/internal/notify"
)

type fakeGrid struct {
	records  []model.ImageRecord
	pending  int
	requests []int
	cleared  int
	startErr error
}

func (g *fakeGrid) DownloadImages(_ context.Context, count int, _ func(error)) (*download.Batch, error) {
	if g.startErr != nil {
		return nil, g.startErr
	}
	g.requests = append(g.requests, count)
	g.pending += count
	return nil, nil
}

func (g *fakeGrid) AddNewImage(ctx context.Context, onDone func(error)) (*download.Batch, error) {
	return g.DownloadImages(ctx, 1, onDone)
}

func (g *fakeGrid) ClearImages() {
	g.cleared++
	g.records = nil
}

func (g *fakeGrid) Snapshot() []model.ImageRecord {
	return append([]model.ImageRecord(nil), g.records...)
}

func (g *fakeGrid) Pending() int { return g.pending }

type fakeSubscriber struct {
	fns          []func(notify.Signal)
	unsubscribed bool
}

func (s *fakeSubscriber) Subscribe(fn func(notify.Signal), _ ...notify.Signal) func() {
	s.fns = append(s.fns, fn)
	return func() { s.unsubscribed = true }
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.InitialImageCount = 4
	s.Grid.Columns = 2
	s.Grid.Rows = 2
	return s
}

func downloaded(c color.Color) model.ImageRecord {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	rec := model.NewImageRecord("b")
	rec.Settle(img, "png", 64)
	return rec
}

func failed() model.ImageRecord {
	rec := model.NewImageRecord("b")
	rec.Fail(http.ErrInvalidResponse)
	return rec
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestAverageColor(t *testing.T) {
	rec := downloaded(color.RGBA{R: 0x10, G: 0x80, B: 0xff, A: 0xff})
	if got, want := averageColor(rec.Image), lipgloss.Color("#1080ff"); got != want {
		t.Errorf("averageColor() = %q, want %q", got, want)
	}
}

func TestModel_Subscribes(t *testing.T) {
	sub := &fakeSubscriber{}
	m := NewModel(&fakeGrid{}, sub, testSettings())

	if len(sub.fns) != 1 {
		t.Fatalf("NewModel should subscribe once, got %d", len(sub.fns))
	}

	sub.fns[0](notify.SignalContentChanged)
	select {
	case sig := <-m.signals:
		if sig != notify.SignalContentChanged {
			t.Errorf("forwarded %v, want %v", sig, notify.SignalContentChanged)
		}
	default:
		t.Fatal("signal was not forwarded to the model channel")
	}

	m = update(t, m, keyPress("q"))
	if !sub.unsubscribed {
		t.Error("quitting should unsubscribe")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel the model context")
	}
}

func TestModel_AddAndReload(t *testing.T) {
	grid := &fakeGrid{records: []model.ImageRecord{failed()}}
	m := NewModel(grid, &fakeSubscriber{}, testSettings())

	m = update(t, m, keyPress("+"))
	m = update(t, m, keyPress("a"))
	if len(grid.requests) != 2 || grid.requests[0] != 1 || grid.requests[1] != 1 {
		t.Fatalf("add requests = %v, want [1 1]", grid.requests)
	}
	if m.pending != 2 {
		t.Errorf("pending = %d, want 2", m.pending)
	}

	m = update(t, m, keyPress("r"))
	if grid.cleared != 1 {
		t.Errorf("reload should clear once, cleared %d", grid.cleared)
	}
	if last := grid.requests[len(grid.requests)-1]; last != 4 {
		t.Errorf("reload requested %d images, want 4", last)
	}
	if len(m.cells) != 0 {
		t.Errorf("cells after reload = %d, want 0", len(m.cells))
	}
}

func TestModel_Paging(t *testing.T) {
	grid := &fakeGrid{}
	for i := 0; i < 9; i++ {
		grid.records = append(grid.records, downloaded(color.White))
	}
	m := NewModel(grid, &fakeSubscriber{}, testSettings())
	m = update(t, m, signalMsg(notify.SignalContentChanged))

	if got := m.pageCount(); got != 3 {
		t.Fatalf("pageCount() = %d, want 3", got)
	}

	m = update(t, m, keyPress("left"))
	if m.page != 0 {
		t.Errorf("page = %d after left on first page, want 0", m.page)
	}
	for i := 0; i < 5; i++ {
		m = update(t, m, keyPress("right"))
	}
	if m.page != 2 {
		t.Errorf("page = %d after paging past the end, want 2", m.page)
	}

	grid.records = grid.records[:2]
	m = update(t, m, signalMsg(notify.SignalContentChanged))
	if m.page != 0 {
		t.Errorf("page = %d after the collection shrank, want 0", m.page)
	}
}

func TestModel_Alert(t *testing.T) {
	m := NewModel(&fakeGrid{}, &fakeSubscriber{}, testSettings())

	m = update(t, m, batchDoneMsg{Err: http.ErrUnableToComplete})
	if m.alert != http.Describe(http.ErrUnableToComplete) {
		t.Errorf("alert = %q", m.alert)
	}
	if !strings.Contains(m.View(), "Unable to complete your request") {
		t.Error("View() should show the alert")
	}

	m = update(t, m, keyPress("esc"))
	if m.alert != "" {
		t.Errorf("alert = %q after esc, want empty", m.alert)
	}

	m = update(t, m, batchDoneMsg{})
	if m.alert != "" {
		t.Errorf("a successful batch should not raise an alert, got %q", m.alert)
	}
}

func TestModel_StartFailure(t *testing.T) {
	grid := &fakeGrid{startErr: download.ErrInvalidCount}
	m := NewModel(grid, &fakeSubscriber{}, testSettings())

	m = update(t, m, keyPress("a"))
	if m.alert == "" {
		t.Error("a batch that cannot start should raise an alert")
	}

	m = update(t, m, startFailedMsg{Err: errors.New("boom")})
	if m.alert != "boom" {
		t.Errorf("alert = %q, want %q", m.alert, "boom")
	}
}

func TestModel_ViewCounts(t *testing.T) {
	grid := &fakeGrid{
		records: []model.ImageRecord{downloaded(color.Black), failed()},
		pending: 1,
	}
	m := NewModel(grid, &fakeSubscriber{}, testSettings())
	m = update(t, m, signalMsg(notify.SignalItemAdded))

	view := m.View()
	if !strings.Contains(view, "Images: 2 | Loading: 1 | Failed: 1 | Page 1/1") {
		t.Errorf("unexpected status line in view:\n%s", view)
	}
	if !strings.Contains(view, "✗") {
		t.Error("failed cell should render a cross")
	}
}
