package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Provider() string { return "postgresql" }

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	// Seeding runs on one goroutine; a second connection covers the cache
	// reads issued while a table transaction is open.
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func quote(name string) string {
	return pq.QuoteIdentifier(name)
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return quoted
}

func (p *Adapter) CountRows(ctx context.Context, tableName string) (int, error) {
	query, args, err := p.qb.Select("COUNT(*)").From(quote(tableName)).ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}
	return int(n), nil
}

func (p *Adapter) SelectColumns(ctx context.Context, tableName string, columns []string) ([][]interface{}, error) {
	quoted := quoteAll(columns)
	query, args, err := p.qb.Select(quoted...).From(quote(tableName)).OrderBy(quoted...).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s from %s: %w", strings.Join(columns, ", "), tableName, err)
	}
	defer rows.Close()

	var result [][]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

func (p *Adapter) DeleteAll(ctx context.Context, tableName string) error {
	query, args, err := p.qb.Delete(quote(tableName)).ToSql()
	if err != nil {
		return err
	}
	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", tableName, err)
	}
	return nil
}

func (p *Adapter) Begin(ctx context.Context) (common.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, qb: p.qb}, nil
}

// Tx inserts each row through a nested pgx transaction, which pgx issues as
// a SAVEPOINT on the outer one.
type Tx struct {
	tx pgx.Tx
	qb squirrel.StatementBuilderType
}

func (t *Tx) InsertRow(ctx context.Context, tableName string, columns []string, values []interface{}) error {
	query, args, err := t.qb.
		Insert(quote(tableName)).
		Columns(quoteAll(columns)...).
		Values(values...).
		ToSql()
	if err != nil {
		return err
	}

	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if _, err := sp.Exec(ctx, query, args...); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("insert failed and savepoint rollback failed: %v (original: %w)", rbErr, err)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrUniqueViolation, err)
		}
		return fmt.Errorf("failed to insert into %s: %w", tableName, err)
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
