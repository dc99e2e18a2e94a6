package storage

import (
	"context"
)

// Store records analyzer activity: one session per activation, the sweep
// passes it ran and the listen dwells it made.
type Store interface {
	// CreateSession starts a new capture session and returns its identifier.
	// config can be a string, []byte or any JSON serializable value.
	CreateSession(ctx context.Context, device string, config any) (sessionID int64, err error)

	// Session returns a session by its identifier.
	Session(ctx context.Context, id int64) (*Session, error)

	// Sessions returns all sessions ordered by start time.
	Sessions(ctx context.Context) ([]*Session, error)

	// StorePasses saves passes of a session in a single transaction.
	StorePasses(ctx context.Context, sessionID int64, passes []Pass) error

	// StoreListen saves a listen dwell.
	StoreListen(ctx context.Context, sessionID int64, l Listen) error

	// ReadPasses returns a reader over the passes of a session in time order.
	// The reader must be closed after use.
	ReadPasses(ctx context.Context, sessionID int64, opts ...ReaderOption) (*PassReader, error)

	// Listens returns the listen dwells of a session in time order.
	Listens(ctx context.Context, sessionID int64) ([]Listen, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
