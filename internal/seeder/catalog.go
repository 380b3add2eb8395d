package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

// Catalog is the schema introspection side of a database adapter.
type Catalog interface {
	GetAllTableNames(ctx context.Context) ([]string, error)
	GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error)
	GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error)
}

// Discover snapshots every table except the ignored ones, sorted by name.
// Foreign keys into ignored or unknown tables are kept. Any introspection
// failure or inconsistent metadata is returned as *SchemaDiscoveryError.
func Discover(ctx context.Context, catalog Catalog, ignore []string) ([]*types.Table, error) {
	names, err := catalog.GetAllTableNames(ctx)
	if err != nil {
		return nil, &SchemaDiscoveryError{Err: err}
	}
	names = slices.Clone(names)
	slices.Sort(names)
	names = slices.Compact(names)

	tables := make([]*types.Table, 0, len(names))
	for _, name := range names {
		if slices.Contains(ignore, name) {
			continue
		}

		columns, err := catalog.GetTableColumns(ctx, name)
		if err != nil {
			return nil, &SchemaDiscoveryError{Table: name, Err: err}
		}
		fks, err := catalog.GetForeignKeys(ctx, name)
		if err != nil {
			return nil, &SchemaDiscoveryError{Table: name, Err: err}
		}

		table := &types.Table{Name: name, Columns: columns, ForeignKeys: fks}
		if err := validateTable(table); err != nil {
			return nil, &SchemaDiscoveryError{Table: name, Err: err}
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// validateTable checks the metadata and tags each foreign key by whether it
// points back at its own table.
func validateTable(t *types.Table) error {
	if len(t.Columns) == 0 {
		return errors.New("table has no insertable columns")
	}

	for i := range t.ForeignKeys {
		fk := &t.ForeignKeys[i]
		if fk.RefTable == "" {
			return fmt.Errorf("foreign key %s has no referenced table", fk.Name)
		}
		if len(fk.Columns) == 0 {
			return fmt.Errorf("foreign key %s has no columns", fk.Name)
		}
		if len(fk.Columns) != len(fk.RefColumns) {
			return fmt.Errorf("foreign key %s maps %d columns to %d referenced columns",
				fk.Name, len(fk.Columns), len(fk.RefColumns))
		}
		for i, col := range fk.Columns {
			if _, ok := t.Column(col); !ok {
				return fmt.Errorf("foreign key %s uses unknown column %s", fk.Name, col)
			}
			if fk.RefColumns[i] == "" {
				return fmt.Errorf("foreign key %s has an unnamed referenced column", fk.Name)
			}
		}

		if fk.RefTable == t.Name {
			fk.Kind = types.SelfReference
		} else {
			fk.Kind = types.CrossTable
		}
	}
	return nil
}
