package seeder

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Querier is the read side of the data store the cache draws from.
type Querier interface {
	CountRows(ctx context.Context, tableName string) (int, error)
	SelectColumns(ctx context.Context, tableName string, columns []string) ([][]interface{}, error)
}

type sampleEntry struct {
	columns []string
	tuples  [][]interface{}
}

// ValueCache memoizes row counts and column projections of referenced tables
// for one run.
//
// Entries are captured on first use and never refreshed. Rows inserted into a
// table after its count or a projection was cached are invisible to later
// lookups, so foreign key values are only drawn from rows that existed when
// the table was first sampled.
type ValueCache struct {
	querier Querier
	logger  *zap.Logger

	counts  map[string]int
	samples map[string][]*sampleEntry // by table, then compared on columns
}

func NewValueCache(querier Querier, logger *zap.Logger) *ValueCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValueCache{
		querier: querier,
		logger:  logger,
		counts:  make(map[string]int),
		samples: make(map[string][]*sampleEntry),
	}
}

// RowCount returns the number of rows in table, querying only the first time.
func (c *ValueCache) RowCount(ctx context.Context, table string) (int, error) {
	if n, ok := c.counts[table]; ok {
		return n, nil
	}

	n, err := c.querier.CountRows(ctx, table)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("cached row count", zap.String("table", table), zap.Int("rows", n))
	c.counts[table] = n
	return n, nil
}

// SampleRow returns a copy of the tuple at offset in the projection of
// columns over table. The projection is read once per (table, columns) key.
func (c *ValueCache) SampleRow(ctx context.Context, table string, columns []string, offset int) ([]interface{}, error) {
	entry, err := c.entry(ctx, table, columns)
	if err != nil {
		return nil, err
	}

	if offset < 0 || offset >= len(entry.tuples) {
		return nil, fmt.Errorf("offset %d out of range for %s (%d cached rows)", offset, table, len(entry.tuples))
	}
	return slices.Clone(entry.tuples[offset]), nil
}

func (c *ValueCache) entry(ctx context.Context, table string, columns []string) (*sampleEntry, error) {
	for _, e := range c.samples[table] {
		if slices.Equal(e.columns, columns) {
			return e, nil
		}
	}

	tuples, err := c.querier.SelectColumns(ctx, table, columns)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cached column values",
		zap.String("table", table),
		zap.Strings("columns", columns),
		zap.Int("rows", len(tuples)))

	e := &sampleEntry{columns: slices.Clone(columns), tuples: tuples}
	c.samples[table] = append(c.samples[table], e)
	return e, nil
}
