package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// sqliteMaxVariables is the default SQLITE_MAX_VARIABLE_NUMBER of the
	// bundled SQLite.
	sqliteMaxVariables = 32766

	passColumns           = 12
	maxPassesPerStatement = sqliteMaxVariables / passColumns
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewSqliteStore creates a store backed by the Sqlite database at dbPath.
// Connections are opened lazily; the schema is created with the first write.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, device string, config any) (sessionID int64, err error) {
	configData, err := toConfigData(config)
	if err != nil {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, time.Now().UTC(), device, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}
	return loadSession(ctx, db, id)
}

func loadSession(ctx context.Context, db *sql.DB, id int64) (session *Session, err error) {
	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess Session
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&sess.ID, &sess.StartTime, &sess.Device, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	sess.Config = fromConfigData(config)

	return &sess, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess Session
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.Device, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sess.Config = fromConfigData(config)
		sessions = append(sessions, &sess)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating sessions: %w", err)
	}
	return
}

func (s *SqliteStore) StorePasses(ctx context.Context, sessionID int64, passes []Pass) (err error) {
	if len(passes) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for chunk := range slices.Chunk(passes, maxPassesPerStatement) {
		if err = insertPasses(ctx, tx, sessionID, chunk); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// insertPasses writes passes with a single multi-row INSERT.
func insertPasses(ctx context.Context, tx *sql.Tx, sessionID int64, passes []Pass) error {
	values := make([]any, 0, len(passes)*passColumns)

	var sb strings.Builder
	sb.WriteString(insertPassSQL)

	for i, p := range passes {
		values = append(values,
			sessionID,
			p.Timestamp.UTC(),
			p.CenterFrequency,
			p.SpanStart,
			p.ScanStep,
			p.BandwidthMultiplier,
			p.Measured,
			p.Aborted,
			p.PeakFrequency,
			p.PeakRSSI,
			p.PeakIndex,
			p.Bins,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(insertPassValuesSQL)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting passes: %w", err)
	}
	return nil
}

func (s *SqliteStore) StoreListen(ctx context.Context, sessionID int64, l Listen) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	if _, err = db.ExecContext(ctx, insertListenSQL, sessionID, l.Timestamp.UTC(), l.Frequency, l.RSSI, l.Retuned); err != nil {
		return fmt.Errorf("inserting listen: %w", err)
	}
	return nil
}

// ReadPasses creates a PassReader over the passes of a session, optionally
// restricted to a time range or to complete passes only.
//
// The returned reader must be closed after use to release database resources.
// Each reader instance should only be used from a single goroutine.
func (s *SqliteStore) ReadPasses(ctx context.Context, sessionID int64, opts ...ReaderOption) (*PassReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newPassReader(ctx, db, sessionID, opts...)
}

func (s *SqliteStore) Listens(ctx context.Context, sessionID int64) (listens []Listen, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectListensSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying listens: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var l Listen
		if err = rows.Scan(&l.Timestamp, &l.Frequency, &l.RSSI, &l.Retuned); err != nil {
			err = fmt.Errorf("scanning listen: %w", err)
			return
		}
		listens = append(listens, l)
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating listens: %w", err)
	}
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
