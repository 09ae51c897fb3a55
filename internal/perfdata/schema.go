package perfdata

import (
	"context"
	"database/sql"

	"codeberg.org/mutker/perfmon/internal/errors"
	"codeberg.org/mutker/perfmon/internal/logger"
)

const (
	SchemaVersion = 1

	createTablesSQL = `
	   CREATE TABLE IF NOT EXISTS schema_versions (
	       version     INTEGER PRIMARY KEY,
	       applied_at  TEXT NOT NULL
	   );
	   CREATE TABLE IF NOT EXISTS performance_data (
	       operation TEXT    NOT NULL CHECK (length(CAST(operation AS BLOB)) <= 50),
	       time_sec  REAL    NOT NULL,
	       memory_mb REAL    NOT NULL,
	       counts    INTEGER NOT NULL CHECK (typeof(counts) = 'integer')
	   );`

	insertRecordSQL = `
    INSERT INTO performance_data (
        operation, time_sec, memory_mb, counts
    ) VALUES (?, ?, ?, ?)`

	selectRecordsSQL = `
    SELECT operation, time_sec, memory_mb, counts
    FROM performance_data
    ORDER BY rowid`
)

// EnsureSchema creates the dataset on first use and rejects stores written
// with a different schema version. Existing rows are never touched.
func EnsureSchema(ctx context.Context, db *sql.DB, log logger.Logger) error {
	errFactory := errors.New()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				log.Debug().Err(err).Msg("Failed to rollback schema transaction")
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, createTablesSQL); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{
			Phase: "create_tables",
			Error: err.Error(),
		})
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT OR IGNORE INTO schema_versions (version, applied_at)
        SELECT ?, datetime('now')
        WHERE NOT EXISTS (SELECT 1 FROM schema_versions)
    `, SchemaVersion); err != nil {
		return errFactory.WithData(ErrSchemaInitFailed, struct {
			Phase string
			Error string
		}{
			Phase: "record_version",
			Error: err.Error(),
		})
	}

	version, err := schemaVersion(ctx, tx)
	if err != nil {
		return err
	}
	if version != SchemaVersion {
		return errFactory.WithData(ErrSchemaMismatch, struct {
			Found    int
			Expected int
		}{
			Found:    version,
			Expected: SchemaVersion,
		})
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrSchemaInitFailed, err)
	}
	committed = true

	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func schemaVersion(ctx context.Context, q queryRower) (int, error) {
	var version int
	err := q.QueryRowContext(ctx, `
        SELECT version
        FROM schema_versions
        ORDER BY version DESC
        LIMIT 1
    `).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Error string
		}{
			Phase: "get_version",
			Error: err.Error(),
		})
	}

	return version, nil
}

// TableExists checks if a table exists
func TableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM sqlite_master
            WHERE type='table' AND name=?
        )
    `, tableName).Scan(&exists)
	if err != nil {
		return false, errors.New().WithData(ErrSchemaValidationFailed, struct {
			Phase string
			Table string
			Error string
		}{
			Phase: "check_table_exists",
			Table: tableName,
			Error: err.Error(),
		})
	}
	return exists, nil
}
