package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

type Seeder struct {
	adapter    database.DatabaseAdapter
	seedConfig SeedConfig
	generator  *DataGenerator
	logger     *zap.Logger
	now        func() time.Time
}

func NewSeeder(adapter database.DatabaseAdapter, seedConfig SeedConfig, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		adapter:    adapter,
		seedConfig: seedConfig,
		generator:  NewDataGenerator(),
		logger:     logger,
		now:        time.Now,
	}
}

// Plan is the schema snapshot and table order for one run.
type Plan struct {
	Tables []*types.Table
	Order  []string
	Cycles []string // tables placed without ordering guarantees
}

func (p *Plan) table(name string) *types.Table {
	for _, t := range p.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Plan discovers the schema and computes the insertion order.
func (s *Seeder) Plan(ctx context.Context) (*Plan, error) {
	tables, err := Discover(ctx, s.adapter, s.seedConfig.Ignore)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	edges := BuildEdges(tables)

	return &Plan{
		Tables: tables,
		Order:  Order(names, edges),
		Cycles: Cycles(names, edges),
	}, nil
}

// Run wipes and reseeds every non-ignored table. Each table is seeded in its
// own transaction; a failure rolls back only the table being seeded and ends
// the run. The returned summary covers every table processed, including the
// one that failed.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.seedConfig.Count < 1 {
		return nil, fmt.Errorf("row count must be at least 1, got %d", s.seedConfig.Count)
	}

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	summary := &Summary{
		RunID:     runID,
		Provider:  s.adapter.Provider(),
		StartedAt: s.now(),
	}
	defer func() { summary.FinishedAt = s.now() }()

	s.say(color.Cyan, "🔍 Reading schema...")
	plan, err := s.Plan(ctx)
	if err != nil {
		return summary, err
	}
	summary.Order = plan.Order
	summary.Cycles = plan.Cycles

	if len(plan.Tables) == 0 {
		color.Yellow("⚠️  No tables found")
		return summary, nil
	}

	logger.Info("computed insertion order",
		zap.Strings("order", plan.Order),
		zap.Strings("cycles", plan.Cycles))
	s.say(color.Green, "📊 Found %d tables", len(plan.Tables))
	s.say(color.Cyan, "📋 Insertion order: %s", strings.Join(plan.Order, " → "))

	if len(plan.Cycles) > 0 {
		color.Yellow("⚠️  Circular foreign keys between %s; these tables are seeded in no particular order",
			strings.Join(plan.Cycles, ", "))
	}
	warnNullSelfReferences(plan.Tables)

	if !s.seedConfig.NoClean {
		if err := s.Clean(ctx, plan.Order); err != nil {
			return summary, err
		}
	}

	rows := NewRowGenerator(NewValueCache(s.adapter, logger), s.generator)
	for _, name := range plan.Order {
		table := plan.table(name)
		ts, err := s.seedTable(ctx, logger, rows, table)
		summary.Tables = append(summary.Tables, ts)
		if err != nil {
			return summary, err
		}
	}

	s.say(color.Green, "✅ Seeding completed")
	return summary, nil
}

// Clean deletes every row of the given tables in reverse order, so
// dependents go before the tables they reference.
func (s *Seeder) Clean(ctx context.Context, order []string) error {
	for _, name := range slices.Backward(order) {
		s.say(color.Cyan, "🧹 Deleting rows from %s", name)
		if err := s.adapter.DeleteAll(ctx, name); err != nil {
			return fmt.Errorf("failed to clean table %s: %w", name, err)
		}
	}
	return nil
}

func (s *Seeder) seedTable(ctx context.Context, logger *zap.Logger, rows *RowGenerator, table *types.Table) (TableSummary, error) {
	ts := TableSummary{Table: table.Name}
	s.say(color.Cyan, "📝 Seeding %s (%d rows)...", table.Name, s.seedConfig.Count)

	tx, err := s.adapter.Begin(ctx)
	if err != nil {
		return ts, fmt.Errorf("failed to seed table %s: %w", table.Name, err)
	}

	columns := table.ColumnNames()
	for i := 0; i < s.seedConfig.Count; i++ {
		row, err := rows.GenerateRow(ctx, table)
		if err != nil {
			return ts, rollback(ctx, tx, table.Name, err)
		}

		ts.Attempted++
		if err := tx.InsertRow(ctx, table.Name, columns, row.Values(columns)); err != nil {
			if errors.Is(err, database.ErrUniqueViolation) {
				ts.Skipped++
				logger.Debug("skipped duplicate row", zap.String("table", table.Name), zap.Error(err))
				continue
			}
			return ts, rollback(ctx, tx, table.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ts, rollback(ctx, tx, table.Name, fmt.Errorf("commit: %w", err))
	}

	logger.Info("seeded table",
		zap.String("table", table.Name),
		zap.Int("attempted", ts.Attempted),
		zap.Int("skipped", ts.Skipped))
	if ts.Skipped > 0 {
		s.say(color.Yellow, "  ⚠️  %s: skipped %d duplicate rows", table.Name, ts.Skipped)
	}
	s.say(color.Green, "  ✅ %s seeded (%d rows)", table.Name, ts.Inserted())
	return ts, nil
}

func rollback(ctx context.Context, tx database.Tx, table string, cause error) error {
	if rbErr := tx.Rollback(ctx); rbErr != nil {
		return fmt.Errorf("failed to seed table %s and rollback failed: %v (original: %w)", table, rbErr, cause)
	}
	return fmt.Errorf("failed to seed table %s: %w", table, cause)
}

// warnNullSelfReferences flags self-referencing columns declared NOT NULL;
// those inserts fail since self-references are always left NULL.
func warnNullSelfReferences(tables []*types.Table) {
	for _, t := range tables {
		var cols []string
		for _, fk := range t.ForeignKeys {
			if !fk.IsSelf() {
				continue
			}
			for _, name := range fk.Columns {
				if col, ok := t.Column(name); ok && !col.Nullable && !slices.Contains(cols, name) {
					cols = append(cols, name)
				}
			}
		}
		if len(cols) > 0 {
			color.Yellow("⚠️  %s references itself through NOT NULL column(s) %s; they are left NULL and inserts may fail",
				t.Name, strings.Join(cols, ", "))
		}
	}
}

func (s *Seeder) say(printf func(format string, a ...interface{}), format string, args ...interface{}) {
	if !s.seedConfig.Verbose {
		return
	}
	printf("[%s] "+format, append([]interface{}{s.now().Format("15:04:05")}, args...)...)
}
