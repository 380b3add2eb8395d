package sqlserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	mssql "github.com/microsoft/go-mssqldb"
)

// SQL Server error numbers for duplicate key rows.
const (
	errDuplicateKeyConstraint = 2627
	errDuplicateKeyIndex      = 2601
)

type Adapter struct {
	common.SQLStore
}

// New returns a SQL Server adapter. SQL Server has no RELEASE SAVEPOINT; a
// savepoint lives until the transaction ends.
func New() *Adapter {
	return &Adapter{
		SQLStore: common.SQLStore{
			Dialect: common.Dialect{
				Placeholder:       squirrel.AtP,
				Quote:             common.QuoteBracket,
				SavepointSQL:      "SAVE TRANSACTION %s",
				RollbackSQL:       "ROLLBACK TRANSACTION %s",
				IsUniqueViolation: isUniqueViolation,
			},
		},
	}
}

func (a *Adapter) Provider() string { return "sqlserver" }

func (a *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("sqlserver", url)
	if err != nil {
		return fmt.Errorf("failed to open SQL Server connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	a.DB = db
	return nil
}

func (a *Adapter) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func (a *Adapter) Ping(ctx context.Context) error {
	return a.DB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var number int32
	var msErr mssql.Error
	var msErrPtr *mssql.Error
	switch {
	case errors.As(err, &msErr):
		number = msErr.Number
	case errors.As(err, &msErrPtr):
		number = msErrPtr.Number
	default:
		return false
	}
	return number == errDuplicateKeyConstraint || number == errDuplicateKeyIndex
}
