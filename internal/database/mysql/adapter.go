package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

const duplicateEntryErrno = 1062

// Adapter talks to MySQL through database/sql. Counting, projection, cleanup
// and transactions come from the embedded SQLStore.
type Adapter struct {
	common.SQLStore
}

func New() *Adapter {
	return &Adapter{
		SQLStore: common.SQLStore{
			Dialect: common.Dialect{
				Placeholder:       squirrel.Question,
				Quote:             common.QuoteBacktick,
				SavepointSQL:      "SAVEPOINT %s",
				RollbackSQL:       "ROLLBACK TO SAVEPOINT %s",
				ReleaseSQL:        "RELEASE SAVEPOINT %s",
				IsUniqueViolation: isUniqueViolation,
			},
		},
	}
}

func (m *Adapter) Provider() string { return "mysql" }

func (m *Adapter) Connect(ctx context.Context, url string) error {
	dsn, err := toDSN(url)
	if err != nil {
		return err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.DB = db
	return nil
}

// toDSN accepts either a go-sql-driver DSN or a mysql:// URL and returns a
// DSN with parseTime enabled so sampled DATE and DATETIME values come back as
// time.Time.
func toDSN(url string) (string, error) {
	dsn := url
	if strings.HasPrefix(url, "mysql://") {
		dsn = strings.TrimPrefix(url, "mysql://")

		atIndex := strings.LastIndex(dsn, "@")
		if atIndex > 0 {
			credentials := dsn[:atIndex]
			remainder := dsn[atIndex+1:]

			slashIndex := strings.Index(remainder, "/")
			if slashIndex > 0 {
				hostPort := remainder[:slashIndex]
				dbAndParams := remainder[slashIndex+1:]

				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=REQUIRED", "tls=skip-verify")
				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=DISABLED", "tls=false")
				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=VERIFY_CA", "tls=true")
				dbAndParams = strings.ReplaceAll(dbAndParams, "ssl-mode=VERIFY_IDENTITY", "tls=true")
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=require", "tls=skip-verify")
				dbAndParams = strings.ReplaceAll(dbAndParams, "sslmode=disable", "tls=false")

				dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
			}
		}
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func (m *Adapter) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.DB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == duplicateEntryErrno
}
