package perfdata

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultDirPerm = 0o755

	// Immediate transactions take the write lock up front so concurrent
	// appenders wait on the busy timeout instead of failing on lock upgrade.
	dsnParams = "?_journal=WAL&_busy_timeout=5000&_txlock=immediate"
)

// Store is an append-only performance dataset in a sqlite file. It holds no
// open handle: every call opens the file, does its work and closes it again,
// so several processes can share one store over the lifetime of a run.
type Store struct {
	path   string
	logger logger.Logger
}

func NewStore(path string, log logger.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New().New(ErrInvalidPath)
	}
	if log == nil {
		log = logger.Default()
	}

	return &Store{path: path, logger: log}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Append adds records to the dataset, creating the file and the dataset on
// first use. An empty batch does not touch the filesystem.
func (s *Store) Append(ctx context.Context, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	errFactory := errors.New()

	for _, rec := range records {
		if len(rec.Operation) > MaxOperationBytes {
			return errFactory.WithData(ErrInvalidRecord, struct {
				Operation string
				Bytes     int
			}{
				Operation: rec.Operation,
				Bytes:     len(rec.Operation),
			})
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), defaultDirPerm); err != nil {
		return errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  s.path,
			Error: err.Error(),
		})
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(db); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := EnsureSchema(ctx, db, s.logger); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		s.rollback(tx)
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Operation, rec.TimeSec, rec.MemoryMB, rec.Counts); err != nil {
			s.logger.Error().Err(err).Str("operation", rec.Operation).Msg("Failed to execute insert")
			s.rollback(tx)
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	s.logger.Debug().
		Str("path", s.path).
		Int("records", len(records)).
		Msg("Appended performance records")

	return nil
}

// ReadAll returns every record in append order. A store whose dataset has
// not been created yet reads as empty.
func (s *Store) ReadAll(ctx context.Context) (records []Record, err error) {
	errFactory := errors.New()

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errFactory.Wrap(ErrStoreNotFound, err).WithData(s.path)
		}
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := s.close(db); cerr != nil && err == nil {
			err = cerr
		}
	}()

	exists, err := TableExists(ctx, db, TableName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, selectRecordsSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Operation, &rec.TimeSec, &rec.MemoryMB, &rec.Counts); err != nil {
			return nil, errFactory.Wrap(ErrStorageAccess, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrStorageAccess, err)
	}

	return records, nil
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", s.path+dsnParams)
	if err != nil {
		return nil, errors.New().WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	return db, nil
}

func (s *Store) close(db *sql.DB) error {
	if err := db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	return nil
}

func (s *Store) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Error().Err(err).Msg("Failed to roll back transaction")
	}
}
