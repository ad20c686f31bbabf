package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrEthical07/fantasy11/internal/logging"
)

// SQLiteBackendConfig holds configuration for the file-backed session backend.
type SQLiteBackendConfig struct {
	// Path is the filesystem path of the database file.
	Path string `env:"PATH" default:""`
	// Profile scopes the keys so several logins can share one file.
	Profile string `env:"PROFILE" default:"default"`
}

// SQLiteBackend persists the session pair in a local SQLite file. It is the durable
// analogue of browser local storage for command-line and desktop clients.
type SQLiteBackend struct {
	db        *sql.DB
	profile   string
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLiteBackend opens (creating if needed) the database at cfg.Path.
func OpenSQLiteBackend(cfg SQLiteBackendConfig) (*SQLiteBackend, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%w: empty sqlite path", ErrStorageUnavailable)
	}

	log := logging.GetLogger("session.sqlite_backend").With(
		logging.Group("db", "path", cfg.Path),
	)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	// One connection keeps readers from seeing a half-committed pair and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteBackend{
		db:        db,
		profile:   normalizeProfile(cfg.Profile),
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_kv (
			profile    TEXT    NOT NULL,
			key        TEXT    NOT NULL,
			value      TEXT    NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (profile, key)
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func (b *SQLiteBackend) Available() bool {
	return b != nil && b.db != nil
}

func (b *SQLiteBackend) GetAll(ctx context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(keys)+1)
	args = append(args, b.profile)
	for _, k := range keys {
		args = append(args, k)
	}

	query := "SELECT key, value FROM session_kv WHERE profile = ? AND key IN (?" +
		strings.Repeat(", ?", len(keys)-1) + ")"

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorageUnavailable, err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorageUnavailable, err)
	}

	return out, nil
}

func (b *SQLiteBackend) SetAll(ctx context.Context, values map[string]string) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	return b.inTx(ctx, func(tx *sql.Tx) error {
		return b.upsert(ctx, tx, values)
	})
}

func (b *SQLiteBackend) SetAllIf(ctx context.Context, guardKey, guardValue string, values map[string]string) (bool, error) {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	applied := false
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := b.guardHolds(ctx, tx, guardKey, guardValue)
		if err != nil || !ok {
			return err
		}
		if err := b.upsert(ctx, tx, values); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (b *SQLiteBackend) DeleteAll(ctx context.Context, keys ...string) error {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	return b.inTx(ctx, func(tx *sql.Tx) error {
		return b.deleteKeys(ctx, tx, keys)
	})
}

func (b *SQLiteBackend) DeleteAllIf(ctx context.Context, guardKey, guardValue string, keys ...string) (bool, error) {
	b.writeLock.Lock()
	defer b.writeLock.Unlock()

	applied := false
	err := b.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := b.guardHolds(ctx, tx, guardKey, guardValue)
		if err != nil || !ok {
			return err
		}
		if err := b.deleteKeys(ctx, tx, keys); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (b *SQLiteBackend) guardHolds(ctx context.Context, tx *sql.Tx, key, want string) (bool, error) {
	var current string
	err := tx.QueryRowContext(ctx,
		"SELECT value FROM session_kv WHERE profile = ? AND key = ?", b.profile, key,
	).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	return current == want, nil
}

func (b *SQLiteBackend) upsert(ctx context.Context, tx *sql.Tx, values map[string]string) error {
	now := time.Now().Unix()
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_kv (profile, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (profile, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, b.profile, k, v, now); err != nil {
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}
	return nil
}

func (b *SQLiteBackend) deleteKeys(ctx context.Context, tx *sql.Tx, keys []string) error {
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM session_kv WHERE profile = ? AND key = ?", b.profile, k,
		); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

func (b *SQLiteBackend) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrStorageUnavailable, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		b.log.WarnContext(ctx, "session write rolled back", "err", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Close releases the database handle.
func (b *SQLiteBackend) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
