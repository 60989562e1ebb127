package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/imagegrid/internal/model"
	"github.com/handiism/imagegrid/internal/notify"
	"github.com/handiism/imagegrid/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent is the default number of fetches run in parallel.
const DefaultMaxConcurrent = 10

// ErrInvalidCount is returned by DownloadImages when count is below 1.
var ErrInvalidCount = errors.New("image count must be at least 1")

// ImageFetcher fetches one image and returns its settled record.
//
// *ioutils.ImageService implements ImageFetcher.
type ImageFetcher interface {
	FetchOne(ctx context.Context, batchID string) (model.ImageRecord, error)
}

// Publisher receives change signals. *notify.Notifier implements Publisher.
type Publisher interface {
	Publish(sig notify.Signal)
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxConcurrent sets how many fetches run in parallel across a batch.
func WithMaxConcurrent(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxConcurrent = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTracer sets the tracer used for batch and fetch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// Manager coordinates image downloads into the shared store.
type Manager struct {
	store    *store.ImageStore
	images   ImageFetcher
	notifier Publisher

	maxConcurrent int
	logger        *slog.Logger
	tracer        trace.Tracer

	pending atomic.Int64

	mu     sync.Mutex
	active int
	idle   *sync.Cond
}

// NewManager creates a new download Manager writing into images.
// notifier may be nil if nobody listens for changes.
func NewManager(images *store.ImageStore, fetcher ImageFetcher, notifier Publisher, opts ...Option) *Manager {
	if notifier == nil {
		notifier = discard{}
	}
	m := &Manager{
		store:         images,
		images:        fetcher,
		notifier:      notifier,
		maxConcurrent: DefaultMaxConcurrent,
		logger:        slog.Default(),
		tracer:        otel.Tracer("imagegrid/download"),
	}
	m.idle = sync.NewCond(&m.mu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DownloadImages starts a batch of count concurrent fetches and returns
// without waiting for them.
//
// Each fetch, once settled, is appended to the store, followed by
// SignalItemAdded and then SignalContentChanged. A failed fetch does not
// stop the others. When all count fetches have settled, onDone is called
// exactly once with the first error observed in the batch, or nil.
//
// Cancelling ctx does not abort the batch; ctx only carries values such as
// the trace parent.
//
// Returns ErrInvalidCount, without calling onDone, if count < 1.
func (m *Manager) DownloadImages(ctx context.Context, count int, onDone func(error)) (*Batch, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	b := newBatch(uuid.NewString(), count)
	m.pending.Add(int64(count))

	m.mu.Lock()
	m.active++
	m.mu.Unlock()

	m.logger.Debug("batch started", "batch", b.ID, "count", count)

	go m.runBatch(context.WithoutCancel(ctx), b, onDone)
	return b, nil
}

// AddNewImage starts a batch of one fetch.
func (m *Manager) AddNewImage(ctx context.Context, onDone func(error)) (*Batch, error) {
	return m.DownloadImages(ctx, 1, onDone)
}

// ClearImages empties the store and publishes SignalContentChanged.
//
// Batches in flight are neither cancelled nor waited for; their remaining
// fetches keep appending to the emptied store.
func (m *Manager) ClearImages() {
	n := m.store.Clear()
	m.logger.Info("images cleared", "dropped", n, "pending", m.Pending())
	m.notifier.Publish(notify.SignalContentChanged)
}

// Snapshot returns a copy of the image collection.
func (m *Manager) Snapshot() []model.ImageRecord {
	return m.store.Snapshot()
}

// Pending returns the number of fetches that have not settled yet, across
// all batches.
func (m *Manager) Pending() int {
	return int(m.pending.Load())
}

// Wait blocks until every batch started so far has fired its callback.
// It must not be called from inside a batch callback.
func (m *Manager) Wait() {
	m.mu.Lock()
	for m.active > 0 {
		m.idle.Wait()
	}
	m.mu.Unlock()
}

func (m *Manager) runBatch(ctx context.Context, b *Batch, onDone func(error)) {
	err := m.settleBatch(ctx, b)

	if onDone != nil {
		onDone(err)
	}
	b.finish()

	m.mu.Lock()
	m.active--
	if m.active == 0 {
		m.idle.Broadcast()
	}
	m.mu.Unlock()
}

// settleBatch runs every fetch of b on the worker pool and returns the
// first error once all of them have settled.
func (m *Manager) settleBatch(ctx context.Context, b *Batch) error {
	ctx, span := m.tracer.Start(ctx, "Manager.DownloadImages", trace.WithAttributes(
		attribute.String("batch.id", b.ID),
		attribute.Int("batch.count", b.Count),
	))
	defer span.End()

	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.maxConcurrent)

	for i := 0; i < b.Count; i++ {
		g.Go(func() error {
			m.fetch(ctx, b)
			return nil // Continue with other fetches
		})
	}
	_ = g.Wait()

	err := b.firstErr
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.logger.Warn("batch finished with errors", "batch", b.ID, "count", b.Count, "error", err, "elapsed", time.Since(start))
	} else {
		m.logger.Info("batch finished", "batch", b.ID, "count", b.Count, "elapsed", time.Since(start))
	}
	return err
}

func (m *Manager) fetch(ctx context.Context, b *Batch) {
	ctx, span := m.tracer.Start(ctx, "Manager.fetch", trace.WithAttributes(
		attribute.String("batch.id", b.ID),
	))
	defer span.End()

	rec, err := m.images.FetchOne(ctx, b.ID)
	if err != nil {
		rec.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if b.recordError(err) {
			m.logger.Warn("fetch failed", "batch", b.ID, "record", rec.ID, "error", err)
		} else {
			m.logger.Debug("fetch failed, batch already has an error", "batch", b.ID, "record", rec.ID, "error", err)
		}
	}
	span.SetAttributes(
		attribute.String("record.id", rec.ID),
		attribute.String("record.status", rec.Status.String()),
	)

	m.store.Append(rec)
	m.notifier.Publish(notify.SignalItemAdded)

	b.settleOne()
	m.pending.Add(-1)
	m.notifier.Publish(notify.SignalContentChanged)
}

type discard struct{}

func (discard) Publish(notify.Signal) {}
