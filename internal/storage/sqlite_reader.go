package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ReaderOption configures a PassReader with filtering criteria.
type ReaderOption func(*PassReader)

// WithStartTime excludes passes recorded before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *PassReader) {
		t = t.UTC()
		r.startTime = &t
	}
}

// WithEndTime excludes passes recorded after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *PassReader) {
		t = t.UTC()
		r.endTime = &t
	}
}

// WithTimeRange sets both start and end time filters.
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(r *PassReader) {
		WithStartTime(startTime)(r)
		WithEndTime(endTime)(r)
	}
}

// WithCompleteOnly excludes passes aborted by a key press.
func WithCompleteOnly() ReaderOption {
	return func(r *PassReader) {
		r.completeOnly = true
	}
}

// PassReader iterates the stored passes of a session in time order.
type PassReader struct {
	db        *sql.DB
	sessionID int64
	session   *Session

	startTime    *time.Time
	endTime      *time.Time
	completeOnly bool

	current *Pass
	rows    *sql.Rows
	err     error
}

func newPassReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*PassReader, error) {
	r := &PassReader{
		db:        db,
		sessionID: sessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return r, nil
}

func (r *PassReader) init(ctx context.Context) error {
	if r.db == nil {
		return errors.New("database connection required")
	}
	if r.sessionID <= 0 {
		return errors.New("session ID required")
	}
	if r.startTime != nil && r.endTime != nil && r.startTime.After(*r.endTime) {
		return fmt.Errorf("start time %s is after end time %s", r.startTime, r.endTime)
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: r.loadSession},
		{msg: "initializing query", fn: r.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (r *PassReader) loadSession(ctx context.Context) (err error) {
	r.session, err = loadSession(ctx, r.db, r.sessionID)
	return
}

func (r *PassReader) initQuery(ctx context.Context) (err error) {
	r.rows, err = r.db.QueryContext(ctx, selectPassesSQL,
		r.sessionID,
		r.startTime, r.startTime,
		r.endTime, r.endTime,
		r.completeOnly,
	)
	return
}

// Session returns the session being read.
func (r *PassReader) Session() *Session {
	return r.session
}

// Next advances to the next pass. It returns false when the passes are
// exhausted, the context is done or an error occurred; check Error.
func (r *PassReader) Next(ctx context.Context) bool {
	if r.err != nil || r.rows == nil {
		return false
	}

	select {
	case <-ctx.Done():
		r.err = ctx.Err()
		return false
	default:
	}

	if !r.rows.Next() {
		r.current = nil
		return false
	}

	var p Pass
	err := r.rows.Scan(
		&p.Timestamp,
		&p.CenterFrequency,
		&p.SpanStart,
		&p.ScanStep,
		&p.BandwidthMultiplier,
		&p.Measured,
		&p.Aborted,
		&p.PeakFrequency,
		&p.PeakRSSI,
		&p.PeakIndex,
		&p.Bins,
	)
	if err != nil {
		r.err = fmt.Errorf("scanning pass: %w", err)
		return false
	}

	r.current = &p
	return true
}

// Current returns the pass Next advanced to.
func (r *PassReader) Current() *Pass {
	return r.current
}

func (r *PassReader) Error() error {
	if r.err != nil {
		return r.err
	}
	if r.rows != nil {
		return r.rows.Err()
	}
	return nil
}

func (r *PassReader) Close() error {
	if r.rows != nil {
		err := r.rows.Close()
		r.current = nil
		r.rows = nil
		return err
	}
	return nil
}
