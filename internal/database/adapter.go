package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

// ErrUniqueViolation is returned by Tx.InsertRow when a row collides with a
// unique or primary key constraint.
var ErrUniqueViolation = common.ErrUniqueViolation

type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error
	Provider() string

	// Schema introspection
	GetAllTableNames(ctx context.Context) ([]string, error)
	GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error)
	GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error)

	// Data access
	CountRows(ctx context.Context, tableName string) (int, error)
	SelectColumns(ctx context.Context, tableName string, columns []string) ([][]interface{}, error)
	DeleteAll(ctx context.Context, tableName string) error
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a table-level transaction. InsertRow wraps each row in a savepoint;
// a row that fails is rolled back on its own and the transaction stays usable.
type Tx = common.Tx
