package seeder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaDiscovery marks introspection failures and inconsistent
	// metadata. The run stops before any row is generated.
	ErrSchemaDiscovery = errors.New("schema discovery failed")

	// ErrUnsupportedColumnType marks a column whose type has no generator.
	ErrUnsupportedColumnType = errors.New("unsupported column type")

	// ErrEmptyReferencedTable marks a cross-table foreign key whose referenced
	// table has no rows to sample.
	ErrEmptyReferencedTable = errors.New("referenced table is empty")
)

type SchemaDiscoveryError struct {
	Table string // empty when the failure is not tied to one table
	Err   error
}

func (e *SchemaDiscoveryError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%v: %v", ErrSchemaDiscovery, e.Err)
	}
	return fmt.Sprintf("%v for table %s: %v", ErrSchemaDiscovery, e.Table, e.Err)
}

func (e *SchemaDiscoveryError) Unwrap() error { return e.Err }

func (e *SchemaDiscoveryError) Is(target error) bool { return target == ErrSchemaDiscovery }

type UnsupportedColumnTypeError struct {
	Table  string
	Column string
	DBType string
}

func (e *UnsupportedColumnTypeError) Error() string {
	return fmt.Sprintf("%v %q for column %s.%s", ErrUnsupportedColumnType, e.DBType, e.Table, e.Column)
}

func (e *UnsupportedColumnTypeError) Is(target error) bool { return target == ErrUnsupportedColumnType }

type EmptyReferencedTableError struct {
	Table    string
	RefTable string
	Columns  []string
}

func (e *EmptyReferencedTableError) Error() string {
	return fmt.Sprintf("%v: %s(%s) references %s, which has no rows",
		ErrEmptyReferencedTable, e.Table, strings.Join(e.Columns, ", "), e.RefTable)
}

func (e *EmptyReferencedTableError) Is(target error) bool { return target == ErrEmptyReferencedTable }
