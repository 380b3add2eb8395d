package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

var fixedNow = time.Date(2024, time.March, 15, 13, 45, 30, 0, time.UTC)

func testGenerator(seed int64) *DataGenerator {
	return NewDataGeneratorWithSource(rand.New(rand.NewSource(seed)), func() time.Time { return fixedNow })
}

type fakeTable struct {
	columns []types.Column
	fks     []types.ForeignKey
	unique  []string // single-column unique constraints
	rows    []types.Row
}

// fakeAdapter is an in-memory DatabaseAdapter. Transactions buffer rows until
// Commit.
type fakeAdapter struct {
	tables map[string]*fakeTable

	countCalls  map[string]int
	selectCalls map[string]int
	deleted     []string
	commits     []string
	rollbacks   int

	insertErr   error // returned by every InsertRow when set
	catalogErr  error
	failOnTable string // InsertRow fails for this table only
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		tables:      make(map[string]*fakeTable),
		countCalls:  make(map[string]int),
		selectCalls: make(map[string]int),
	}
}

func (f *fakeAdapter) addTable(name string, columns []types.Column, fks ...types.ForeignKey) *fakeTable {
	t := &fakeTable{columns: columns, fks: fks}
	f.tables[name] = t
	return t
}

func (f *fakeAdapter) Connect(ctx context.Context, url string) error { return nil }
func (f *fakeAdapter) Close() error                                  { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error                { return nil }
func (f *fakeAdapter) Provider() string                              { return "fake" }

func (f *fakeAdapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	names := make([]string, 0, len(f.tables))
	for name := range f.tables {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeAdapter) GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error) {
	t, ok := f.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("no table %s", tableName)
	}
	return slices.Clone(t.columns), nil
}

func (f *fakeAdapter) GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	t, ok := f.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("no table %s", tableName)
	}
	return slices.Clone(t.fks), nil
}

func (f *fakeAdapter) CountRows(ctx context.Context, tableName string) (int, error) {
	f.countCalls[tableName]++
	t, ok := f.tables[tableName]
	if !ok {
		return 0, fmt.Errorf("no table %s", tableName)
	}
	return len(t.rows), nil
}

func (f *fakeAdapter) SelectColumns(ctx context.Context, tableName string, columns []string) ([][]interface{}, error) {
	f.selectCalls[tableName]++
	t, ok := f.tables[tableName]
	if !ok {
		return nil, fmt.Errorf("no table %s", tableName)
	}
	tuples := make([][]interface{}, len(t.rows))
	for i, row := range t.rows {
		tuples[i] = row.Values(columns)
	}
	return tuples, nil
}

func (f *fakeAdapter) DeleteAll(ctx context.Context, tableName string) error {
	f.deleted = append(f.deleted, tableName)
	f.tables[tableName].rows = nil
	return nil
}

func (f *fakeAdapter) Begin(ctx context.Context) (database.Tx, error) {
	return &fakeTx{adapter: f, pending: make(map[string][]types.Row)}, nil
}

// values returns the committed rows of table as tuples in column order.
func (f *fakeAdapter) values(table string) [][]interface{} {
	t := f.tables[table]
	out := make([][]interface{}, len(t.rows))
	for i, row := range t.rows {
		out[i] = row.Values(columnNames(t.columns))
	}
	return out
}

func columnNames(cols []types.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

type fakeTx struct {
	adapter *fakeAdapter
	pending map[string][]types.Row
	order   []string
}

func (tx *fakeTx) InsertRow(ctx context.Context, tableName string, columns []string, values []interface{}) error {
	if tx.adapter.insertErr != nil {
		return tx.adapter.insertErr
	}
	if tx.adapter.failOnTable == tableName {
		return fmt.Errorf("insert into %s: disk full", tableName)
	}

	t := tx.adapter.tables[tableName]
	row := make(types.Row, len(columns))
	for i, c := range columns {
		row[c] = values[i]
	}

	existing := append(slices.Clone(t.rows), tx.pending[tableName]...)
	for _, col := range t.unique {
		for _, other := range existing {
			if other[col] == row[col] {
				return fmt.Errorf("%w: duplicate %s.%s", database.ErrUniqueViolation, tableName, col)
			}
		}
	}

	if _, ok := tx.pending[tableName]; !ok {
		tx.order = append(tx.order, tableName)
	}
	tx.pending[tableName] = append(tx.pending[tableName], row)
	return nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	for _, name := range tx.order {
		t := tx.adapter.tables[name]
		t.rows = append(t.rows, tx.pending[name]...)
		tx.adapter.commits = append(tx.adapter.commits, name)
	}
	tx.pending = nil
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.adapter.rollbacks++
	tx.pending = nil
	return nil
}

func intCol(name string) types.Column {
	return types.Column{Name: name, Type: types.Integer, DBType: "integer", Nullable: true}
}

func pkCol(name string) types.Column {
	return types.Column{Name: name, Type: types.Integer, DBType: "integer", IsPrimary: true}
}

func strCol(name string, maxLength int) types.Column {
	return types.Column{Name: name, Type: types.String, DBType: fmt.Sprintf("varchar(%d)", maxLength), MaxLength: maxLength, Nullable: true}
}

func foreignKey(name, refTable string, columns, refColumns []string) types.ForeignKey {
	return types.ForeignKey{Name: name, RefTable: refTable, Columns: columns, RefColumns: refColumns}
}
