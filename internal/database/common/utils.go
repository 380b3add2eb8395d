package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
)

var (
	// ErrUniqueViolation is returned by Tx.InsertRow when the row collides with
	// a primary key or unique constraint. The row has already been rolled back.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrConnection marks failures to reach the data store.
	ErrConnection = errors.New("connection error")
)

// Pre-compiled pattern for declared types such as VARCHAR(255), numeric(10, 2)
// or tinyint(1) unsigned
var declaredTypeRegex = regexp.MustCompile(`^\s*([^(]+?)\s*(?:\(\s*(\d+)\s*(?:,\s*\d+\s*)?\).*)?$`)

var typeModifiers = map[string]bool{"unsigned": true, "signed": true, "zerofill": true}

// ParseDeclaredType splits a declared column type into its lower-cased base
// name and the first size argument, if any. Sign and zerofill modifiers are
// dropped from the base name.
func ParseDeclaredType(declared string) (string, int) {
	m := declaredTypeRegex.FindStringSubmatch(declared)
	if m == nil {
		return strings.ToLower(strings.TrimSpace(declared)), 0
	}

	words := strings.Fields(strings.ToLower(m[1]))
	for len(words) > 1 && typeModifiers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	base := strings.Join(words, " ")

	size := 0
	if m[2] != "" {
		size, _ = strconv.Atoi(m[2])
	}
	return base, size
}

// Dialect captures the per-database SQL differences the shared store needs.
type Dialect struct {
	Placeholder squirrel.PlaceholderFormat
	Quote       func(string) string

	SavepointSQL string // fmt pattern taking the savepoint name
	RollbackSQL  string
	ReleaseSQL   string // empty when the database has no RELEASE

	IsUniqueViolation func(error) bool
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

func (d Dialect) quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.Quote(n)
	}
	return quoted
}

func QuoteDouble(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func QuoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func QuoteBracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// SQLStore implements row counting, projection, cleanup and transactions on
// top of database/sql for adapters whose driver speaks it.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func (s *SQLStore) CountRows(ctx context.Context, table string) (int, error) {
	query, args, err := s.Dialect.builder().Select("COUNT(*)").From(s.Dialect.Quote(table)).ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

// SelectColumns returns every row's values for columns, ordered by those
// columns so repeated reads see the same sequence.
func (s *SQLStore) SelectColumns(ctx context.Context, table string, columns []string) ([][]interface{}, error) {
	quoted := s.Dialect.quoteAll(columns)
	query, args, err := s.Dialect.builder().
		Select(quoted...).
		From(s.Dialect.Quote(table)).
		OrderBy(quoted...).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s from %s: %w", strings.Join(columns, ", "), table, err)
	}
	defer rows.Close()

	return ScanTuples(rows, len(columns))
}

func (s *SQLStore) DeleteAll(ctx context.Context, table string) error {
	query, args, err := s.Dialect.builder().Delete(s.Dialect.Quote(table)).ToSql()
	if err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}

func (s *SQLStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &SQLTx{tx: tx, dialect: s.Dialect}, nil
}

// ScanTuples reads rows of the given width into positional tuples. Text
// returned as []byte is converted to string; binary columns keep their bytes
// so sampled keys still match the referenced rows.
func ScanTuples(rows *sql.Rows, width int) ([][]interface{}, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	binary := make([]bool, width)
	for i := 0; i < width && i < len(columnTypes); i++ {
		binary[i] = isBinaryType(columnTypes[i].DatabaseTypeName())
	}

	var result [][]interface{}
	for rows.Next() {
		values := make([]interface{}, width)
		valuePtrs := make([]interface{}, width)
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok && !binary[i] {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// isBinaryType reports whether a driver type name denotes raw bytes. An empty
// name means the driver could not tell (SQLite values without a declared
// type), and those bytes are left alone too.
func isBinaryType(name string) bool {
	name = strings.ToUpper(name)
	if name == "" || name == "BYTEA" {
		return true
	}
	return strings.Contains(name, "BLOB") ||
		strings.Contains(name, "BINARY") ||
		strings.Contains(name, "IMAGE")
}

// Tx is implemented by every adapter's table-level transaction.
type Tx interface {
	InsertRow(ctx context.Context, tableName string, columns []string, values []interface{}) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

const savepointName = "rowseed_row"

// SQLTx is a table-level transaction; every InsertRow runs inside its own
// savepoint so one failed row does not abort the rows before it.
type SQLTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *SQLTx) InsertRow(ctx context.Context, table string, columns []string, values []interface{}) error {
	query, args, err := t.dialect.builder().
		Insert(t.dialect.Quote(table)).
		Columns(t.dialect.quoteAll(columns)...).
		Values(values...).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, fmt.Sprintf(t.dialect.SavepointSQL, savepointName)); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, fmt.Sprintf(t.dialect.RollbackSQL, savepointName)); rbErr != nil {
			return fmt.Errorf("insert failed and savepoint rollback failed: %v (original: %w)", rbErr, err)
		}
		if relErr := t.release(ctx); relErr != nil {
			return relErr
		}
		if t.dialect.IsUniqueViolation != nil && t.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return t.release(ctx)
}

func (t *SQLTx) release(ctx context.Context) error {
	if t.dialect.ReleaseSQL == "" {
		return nil
	}
	if _, err := t.tx.ExecContext(ctx, fmt.Sprintf(t.dialect.ReleaseSQL, savepointName)); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *SQLTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *SQLTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
