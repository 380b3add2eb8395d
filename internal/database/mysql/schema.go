package mysql

import (
	"context"
	"strings"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func (m *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// GetTableColumns skips VIRTUAL and STORED generated columns, which reject
// explicit values.
func (m *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error) {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT column_name, column_type, is_nullable, column_key, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, columnType, isNullable, columnKey, extra string
		if err := rows.Scan(&name, &columnType, &isNullable, &columnKey, &extra); err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToUpper(extra), "GENERATED") && !strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") {
			continue
		}

		col := classify(columnType)
		col.Name = name
		col.Nullable = isNullable == "YES"
		col.IsPrimary = columnKey == "PRI"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (m *Adapter) GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	rows, err := m.DB.QueryContext(ctx, `
		SELECT constraint_name, referenced_table_name, column_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position
	`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collector := common.NewForeignKeyCollector(tableName)
	for rows.Next() {
		var name, refTable, column, refColumn string
		if err := rows.Scan(&name, &refTable, &column, &refColumn); err != nil {
			return nil, err
		}
		collector.Add(name, refTable, column, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collector.ForeignKeys(), nil
}

// classify maps a full column_type such as "varchar(40)" or "tinyint(1)".
// Only VARCHAR and CHAR carry a length; TEXT columns get the default.
func classify(columnType string) types.Column {
	col := types.Column{DBType: columnType}
	base, size := common.ParseDeclaredType(columnType)

	switch base {
	case "tinyint":
		if size == 1 {
			col.Type = types.Boolean
		} else {
			col.Type, col.Width = types.Integer, types.WidthNarrow
		}
	case "bool", "boolean":
		col.Type = types.Boolean
	case "smallint":
		col.Type, col.Width = types.Integer, types.WidthSmall
	case "mediumint":
		col.Type, col.Width = types.Integer, types.WidthMedium
	case "int", "integer", "bigint":
		col.Type = types.Integer
	case "varchar", "char":
		col.Type, col.MaxLength = types.String, size
	case "tinytext", "text", "mediumtext", "longtext":
		col.Type = types.String
	case "date":
		col.Type = types.Date
	case "datetime", "timestamp":
		col.Type = types.DateTime
	case "time":
		col.Type = types.Time
	case "tinyblob", "blob", "mediumblob", "longblob", "binary", "varbinary":
		col.Type = types.Blob
	default:
		col.Type = types.Unknown
	}
	return col
}
