package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
)

type Adapter struct {
	common.SQLStore
}

func New() *Adapter {
	return &Adapter{
		SQLStore: common.SQLStore{
			Dialect: common.Dialect{
				Placeholder:       squirrel.Question,
				Quote:             common.QuoteDouble,
				SavepointSQL:      "SAVEPOINT %s",
				RollbackSQL:       "ROLLBACK TO SAVEPOINT %s",
				ReleaseSQL:        "RELEASE SAVEPOINT %s",
				IsUniqueViolation: isUniqueViolation,
			},
		},
	}
}

func (s *Adapter) Provider() string { return "sqlite" }

// Connect opens the database file with foreign keys enforced. WAL lets the
// value cache read committed tables while a table transaction is open.
// In-memory databases are rejected: every pooled connection would see its
// own empty database.
func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if isInMemory(dbPath) {
		return fmt.Errorf("in-memory SQLite databases are not supported, use a database file: %s", url)
	}
	params := "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
	if strings.Contains(dbPath, "?") {
		dbPath += "&" + params
	} else {
		dbPath += "?" + params
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.DB = db
	return nil
}

func (s *Adapter) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func isInMemory(dbPath string) bool {
	path, query, _ := strings.Cut(dbPath, "?")
	path = strings.TrimPrefix(path, "file:")
	return path == ":memory:" || strings.Contains(query, "mode=memory")
}

func isUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	return sqErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
