package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/database/mysql"
	"github.com/Lumos-Labs-HQ/rowseed/internal/database/postgres"
	"github.com/Lumos-Labs-HQ/rowseed/internal/database/sqlite"
	"github.com/Lumos-Labs-HQ/rowseed/internal/database/sqlserver"
)

// SupportedProviders lists the provider names NewAdapter accepts.
var SupportedProviders = []string{"postgresql", "mysql", "sqlite", "sqlserver"}

// ConnectionError reports a failure to reach the data store. Target is the
// connection URL with any password removed.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == common.ErrConnection
}

func NewAdapter(provider string) (DatabaseAdapter, error) {
	switch NormalizeProvider(provider) {
	case "postgresql":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite":
		return sqlite.New(), nil
	case "sqlserver":
		return sqlserver.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %q", provider)
	}
}

// NormalizeProvider maps provider aliases to their canonical name. Unknown
// names are returned lower-cased.
func NormalizeProvider(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "postgres", "postgresql", "pg":
		return "postgresql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "sqlserver", "mssql":
		return "sqlserver"
	default:
		return p
	}
}

// DetectProvider infers the provider from a connection URL. It returns an
// empty string when the URL matches no known scheme.
func DetectProvider(dbURL string) string {
	lower := strings.ToLower(strings.TrimSpace(dbURL))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return "postgresql"
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"
	case strings.HasPrefix(lower, "sqlserver://"):
		return "sqlserver"
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"):
		return "sqlite"
	}

	path := lower
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") || strings.HasSuffix(path, ".sqlite3") {
		return "sqlite"
	}
	return ""
}

// Open creates the adapter for provider, connects and pings. When provider is
// empty it is detected from dbURL. Failures to reach the database are
// returned as *ConnectionError.
func Open(ctx context.Context, provider, dbURL string) (DatabaseAdapter, error) {
	if provider == "" {
		provider = DetectProvider(dbURL)
		if provider == "" {
			return nil, fmt.Errorf("cannot detect database provider from %s; use --provider", Redact(dbURL))
		}
	}

	adapter, err := NewAdapter(provider)
	if err != nil {
		return nil, err
	}

	if err := adapter.Connect(ctx, dbURL); err != nil {
		return nil, &ConnectionError{Target: Redact(dbURL), Err: err}
	}
	if err := adapter.Ping(ctx); err != nil {
		adapter.Close()
		return nil, &ConnectionError{Target: Redact(dbURL), Err: err}
	}
	return adapter, nil
}

// Redact hides the password in a connection URL. Strings that do not parse as
// URLs with a host, such as SQLite paths, are returned unchanged.
func Redact(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil || u.Host == "" {
		return dbURL
	}
	return u.Redacted()
}

// IsConnectionError reports whether err came from failing to reach the database.
func IsConnectionError(err error) bool {
	return errors.Is(err, common.ErrConnection)
}
