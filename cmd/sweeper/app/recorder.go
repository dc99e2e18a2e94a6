package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-kulish/handheld-spectrum/internal/spectrum"
	"github.com/roman-kulish/handheld-spectrum/internal/storage"
)

const (
	maxBatchSize    = 100
	eventBufferSize = 256
)

type eventKind int

const (
	eventSessionStarted eventKind = iota
	eventSessionStopped
	eventPass
	eventListen
)

type event struct {
	kind   eventKind
	at     time.Time
	config spectrum.SweepConfig
	pass   spectrum.PassReport
	listen spectrum.ListenReport
}

// WithMaxBatchSize sets the maximum number of passes stored within a single
// database transaction.
func WithMaxBatchSize(size int) func(*Recorder) {
	return func(r *Recorder) {
		if size > 0 {
			r.maxBatchSize = size
		}
	}
}

// WithRecorderLogger sets the logger used for storage errors.
func WithRecorderLogger(logger *slog.Logger) func(*Recorder) {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// Recorder writes engine activity into a capture store. Every engine session
// becomes a storage session. The engine side never blocks: events go through
// a buffered channel and are dropped when the writer falls behind.
type Recorder struct {
	store  storage.Store
	device string
	logger *slog.Logger

	maxBatchSize int

	events  chan event
	dropped atomic.Uint64
	now     func() time.Time

	// owned by the writer goroutine
	sessionID int64
	pending   []storage.Pass

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRecorder creates a Recorder. Start must be called before events are
// written out.
func NewRecorder(store storage.Store, device string, options ...func(*Recorder)) *Recorder {
	r := Recorder{
		store:        store,
		device:       device,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBatchSize: maxBatchSize,
		events:       make(chan event, eventBufferSize),
		now:          time.Now,
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Start launches the writer goroutine. Store calls outlive ctx cancellation so
// the last batch is still written when the host shuts down.
func (r *Recorder) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.handleEvents(ctx)
	}()
}

// Close stops accepting events and waits for the pending ones to be stored.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.events)
	})
	r.wg.Wait()
}

// Dropped reports the number of events discarded because the buffer was full.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *Recorder) SessionStarted(cfg spectrum.SweepConfig) {
	r.send(event{kind: eventSessionStarted, config: cfg})
}

func (r *Recorder) SessionStopped() {
	r.send(event{kind: eventSessionStopped})
}

func (r *Recorder) PassCompleted(report spectrum.PassReport) {
	r.send(event{kind: eventPass, pass: report})
}

func (r *Recorder) Listened(report spectrum.ListenReport) {
	r.send(event{kind: eventListen, listen: report})
}

func (r *Recorder) send(e event) {
	e.at = r.now().UTC()
	select {
	case r.events <- e:
	default:
		r.dropped.Add(1)
	}
}

func (r *Recorder) handleEvents(ctx context.Context) {
	for e := range r.events {
		if err := r.handleEvent(ctx, e); err != nil {
			r.logger.Error(err.Error())
		}
	}

	if err := r.flush(ctx); err != nil {
		r.logger.Error(err.Error())
	}
	if n := r.dropped.Load(); n > 0 {
		r.logger.Warn("recorder dropped events", slog.Uint64("count", n))
	}
}

func (r *Recorder) handleEvent(ctx context.Context, e event) error {
	switch e.kind {
	case eventSessionStarted:
		if err := r.flush(ctx); err != nil {
			return err
		}

		id, err := r.store.CreateSession(ctx, r.device, e.config)
		if err != nil {
			r.sessionID = 0
			return fmt.Errorf("creating session: %w", err)
		}
		r.sessionID = id
		r.logger.Debug("recording session", slog.Int64("session", id))

	case eventSessionStopped:
		err := r.flush(ctx)
		r.sessionID = 0
		return err

	case eventPass:
		if r.sessionID == 0 {
			return nil
		}
		r.pending = append(r.pending, storage.NewPass(e.at, e.pass))
		if len(r.pending) >= r.maxBatchSize {
			return r.flush(ctx)
		}

	case eventListen:
		if r.sessionID == 0 {
			return nil
		}
		if err := r.store.StoreListen(ctx, r.sessionID, storage.NewListen(e.at, e.listen)); err != nil {
			return fmt.Errorf("storing listen: %w", err)
		}
	}

	return nil
}

func (r *Recorder) flush(ctx context.Context) error {
	if len(r.pending) == 0 || r.sessionID == 0 {
		r.pending = r.pending[:0]
		return nil
	}
	defer func() {
		r.pending = r.pending[:0]
	}()

	for chunk := range slices.Chunk(r.pending, r.maxBatchSize) {
		if err := r.store.StorePasses(ctx, r.sessionID, chunk); err != nil {
			return fmt.Errorf("storing passes: %w", err)
		}
	}

	return nil
}

var _ spectrum.Observer = (*Recorder)(nil)
