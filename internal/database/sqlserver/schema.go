package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func (a *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := a.DB.QueryContext(ctx, `
	SET NOCOUNT ON;
	SELECT t.name
	FROM sys.tables t
	WHERE t.schema_id = SCHEMA_ID()
	  AND t.is_ms_shipped = 0
	ORDER BY t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetTableColumns leaves out identity and computed columns, which cannot take
// explicit values without extra session settings.
func (a *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error) {
	rows, err := a.DB.QueryContext(ctx, `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS data_type,
	    c.max_length,
	    c.is_nullable,
	    CASE WHEN pk.column_id IS NOT NULL THEN 1 ELSE 0 END AS is_primary_key,
	    c.is_identity,
	    c.is_computed
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	LEFT JOIN (
	    SELECT ic.object_id, ic.column_id
	    FROM sys.index_columns ic
	    INNER JOIN sys.indexes i ON ic.object_id = i.object_id AND ic.index_id = i.index_id
	    WHERE i.is_primary_key = 1
	) pk ON c.object_id = pk.object_id AND c.column_id = pk.column_id
	WHERE c.object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + N'.' + QUOTENAME(@table))
	ORDER BY c.column_id
	`, sql.Named("table", tableName))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, dataType string
		var maxLength int64
		var isNullable, isIdentity, isComputed bool
		var isPrimary int
		if err := rows.Scan(&name, &dataType, &maxLength, &isNullable, &isPrimary, &isIdentity, &isComputed); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		if isIdentity || isComputed {
			continue
		}

		col := classify(dataType, int(maxLength))
		col.Name = name
		col.Nullable = isNullable
		col.IsPrimary = isPrimary == 1
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	return columns, nil
}

func (a *Adapter) GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	rows, err := a.DB.QueryContext(ctx, `
	SET NOCOUNT ON;
	SELECT
	    fk.name AS constraint_name,
	    OBJECT_NAME(fk.referenced_object_id) AS target_table,
	    COL_NAME(fkc.parent_object_id, fkc.parent_column_id) AS source_column,
	    COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) AS target_column
	FROM sys.foreign_keys fk
	INNER JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
	WHERE fk.parent_object_id = OBJECT_ID(QUOTENAME(SCHEMA_NAME()) + N'.' + QUOTENAME(@table))
	ORDER BY fk.name, fkc.constraint_column_id
	`, sql.Named("table", tableName))
	if err != nil {
		return nil, fmt.Errorf("query foreign keys: %w", err)
	}
	defer rows.Close()

	collector := common.NewForeignKeyCollector(tableName)
	for rows.Next() {
		var name, refTable, column, refColumn string
		if err := rows.Scan(&name, &refTable, &column, &refColumn); err != nil {
			return nil, fmt.Errorf("scan foreign key row: %w", err)
		}
		collector.Add(name, refTable, column, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign key rows: %w", err)
	}
	return collector.ForeignKeys(), nil
}

// classify maps a sys.types name. maxLength is in bytes as sys.columns
// reports it; -1 marks MAX.
func classify(dataType string, maxLength int) types.Column {
	col := types.Column{DBType: dataType}
	switch strings.ToLower(dataType) {
	case "tinyint":
		col.Type, col.Width = types.Integer, types.WidthNarrow
	case "smallint":
		col.Type, col.Width = types.Integer, types.WidthSmall
	case "int", "bigint":
		col.Type = types.Integer
	case "varchar", "char":
		col.Type = types.String
		if maxLength > 0 {
			col.MaxLength = maxLength
		}
	case "nvarchar", "nchar":
		col.Type = types.String
		if maxLength > 0 {
			col.MaxLength = maxLength / 2
		}
	case "text", "ntext":
		col.Type = types.String
	case "date":
		col.Type = types.Date
	case "datetime", "datetime2", "smalldatetime", "datetimeoffset":
		col.Type = types.DateTime
	case "bit":
		col.Type = types.Boolean
	case "time":
		col.Type = types.Time
	case "binary", "varbinary", "image":
		col.Type = types.Blob
	default:
		col.Type = types.Unknown
	}
	return col
}
