package common

import "github.com/Lumos-Labs-HQ/rowseed/internal/types"

// ForeignKeyCollector groups the one-row-per-column output of catalog queries
// into ForeignKeys. Constraints keep the order they were first seen in and
// columns keep the order they were added in.
type ForeignKeyCollector struct {
	table  string
	order  []string
	byName map[string]*types.ForeignKey
}

func NewForeignKeyCollector(table string) *ForeignKeyCollector {
	return &ForeignKeyCollector{
		table:  table,
		byName: make(map[string]*types.ForeignKey),
	}
}

func (c *ForeignKeyCollector) Add(name, refTable, column, refColumn string) {
	fk, ok := c.byName[name]
	if !ok {
		kind := types.CrossTable
		if refTable == c.table {
			kind = types.SelfReference
		}
		fk = &types.ForeignKey{Name: name, Kind: kind, RefTable: refTable}
		c.byName[name] = fk
		c.order = append(c.order, name)
	}
	fk.Columns = append(fk.Columns, column)
	fk.RefColumns = append(fk.RefColumns, refColumn)
}

func (c *ForeignKeyCollector) ForeignKeys() []types.ForeignKey {
	fks := make([]types.ForeignKey, 0, len(c.order))
	for _, name := range c.order {
		fks = append(fks, *c.byName[name])
	}
	return fks
}
