package seeder

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

// RowGenerator assembles one row per call. Cross-table foreign keys take the
// values of a randomly chosen existing row of the referenced table;
// self-references are left NULL; every other column gets a random value.
type RowGenerator struct {
	cache     *ValueCache
	generator *DataGenerator
}

func NewRowGenerator(cache *ValueCache, generator *DataGenerator) *RowGenerator {
	return &RowGenerator{cache: cache, generator: generator}
}

func (r *RowGenerator) GenerateRow(ctx context.Context, table *types.Table) (types.Row, error) {
	row := make(types.Row, len(table.Columns))
	resolved := make(map[string]bool)

	for _, fk := range table.ForeignKeys {
		switch fk.Kind {
		case types.SelfReference:
			for _, col := range fk.Columns {
				if !resolved[col] {
					row[col] = nil
					resolved[col] = true
				}
			}

		case types.CrossTable:
			values, err := r.sampleReference(ctx, table.Name, fk)
			if err != nil {
				return nil, err
			}
			for i, col := range fk.Columns {
				if !resolved[col] {
					row[col] = values[i]
					resolved[col] = true
				}
			}

		default:
			return nil, fmt.Errorf("foreign key %s on %s has unknown kind %d", fk.Name, table.Name, fk.Kind)
		}
	}

	for _, col := range table.Columns {
		if resolved[col.Name] {
			continue
		}

		value, err := r.generator.Generate(col)
		if err != nil {
			var unsupported *UnsupportedColumnTypeError
			if errors.As(err, &unsupported) {
				unsupported.Table = table.Name
			}
			return nil, err
		}
		row[col.Name] = value
	}

	return row, nil
}

func (r *RowGenerator) sampleReference(ctx context.Context, tableName string, fk types.ForeignKey) ([]interface{}, error) {
	n, err := r.cache.RowCount(ctx, fk.RefTable)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows in %s: %w", fk.RefTable, err)
	}
	if n == 0 {
		return nil, &EmptyReferencedTableError{Table: tableName, RefTable: fk.RefTable, Columns: fk.Columns}
	}

	offset := 0
	if n > 1 {
		offset = r.generator.rand.Intn(n)
	}

	values, err := r.cache.SampleRow(ctx, fk.RefTable, fk.RefColumns, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s for %s: %w", fk.RefTable, tableName, err)
	}
	if len(values) != len(fk.Columns) {
		return nil, fmt.Errorf("sample of %s returned %d values for %d columns", fk.RefTable, len(values), len(fk.Columns))
	}
	return values, nil
}
