package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func (s *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
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

type columnInfo struct {
	name     string
	declared string
	notNull  bool
	pk       int
}

func (s *Adapter) tableInfo(ctx context.Context, tableName string) ([]columnInfo, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	var infos []columnInfo
	for rows.Next() {
		var info columnInfo
		var notNull int
		if err := rows.Scan(&info.name, &info.declared, &notNull, &info.pk); err != nil {
			return nil, err
		}
		info.notNull = notNull != 0
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error) {
	infos, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	columns := make([]types.Column, 0, len(infos))
	for _, info := range infos {
		col := classify(info.declared)
		col.Name = info.name
		col.Nullable = !info.notNull
		col.IsPrimary = info.pk > 0
		columns = append(columns, col)
	}
	return columns, nil
}

// GetForeignKeys groups PRAGMA foreign_key_list rows by constraint id. A
// reference declared without columns points at the parent's primary key.
func (s *Adapter) GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, seq, "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, tableName)
	if err != nil {
		return nil, err
	}

	type fkRow struct {
		id, seq  int
		refTable string
		from     string
		to       sql.NullString
	}
	var fkRows []fkRow
	for rows.Next() {
		var r fkRow
		if err := rows.Scan(&r.id, &r.seq, &r.refTable, &r.from, &r.to); err != nil {
			rows.Close()
			return nil, err
		}
		fkRows = append(fkRows, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	collector := common.NewForeignKeyCollector(tableName)
	parentKeys := make(map[string][]string)
	for _, r := range fkRows {
		refColumn := r.to.String
		if !r.to.Valid || refColumn == "" {
			pk, ok := parentKeys[r.refTable]
			if !ok {
				pk, err = s.primaryKey(ctx, r.refTable)
				if err != nil {
					return nil, err
				}
				parentKeys[r.refTable] = pk
			}
			if r.seq < len(pk) {
				refColumn = pk[r.seq]
			}
		}
		collector.Add(fmt.Sprintf("fk_%s_%d", tableName, r.id), r.refTable, r.from, refColumn)
	}
	return collector.ForeignKeys(), nil
}

func (s *Adapter) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	infos, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	var pkInfos []columnInfo
	for _, info := range infos {
		if info.pk > 0 {
			pkInfos = append(pkInfos, info)
		}
	}
	sort.Slice(pkInfos, func(i, j int) bool { return pkInfos[i].pk < pkInfos[j].pk })

	names := make([]string, len(pkInfos))
	for i, info := range pkInfos {
		names[i] = info.name
	}
	return names, nil
}

// classify maps a declared SQLite column type. SQLite accepts any type name,
// so the common spellings from other dialects are recognised too.
func classify(declared string) types.Column {
	col := types.Column{DBType: declared}
	base, size := common.ParseDeclaredType(declared)

	switch base {
	case "tinyint":
		if size == 1 {
			col.Type = types.Boolean
		} else {
			col.Type, col.Width = types.Integer, types.WidthNarrow
		}
	case "smallint", "int2":
		col.Type, col.Width = types.Integer, types.WidthSmall
	case "mediumint":
		col.Type, col.Width = types.Integer, types.WidthMedium
	case "int", "integer", "bigint", "int4", "int8":
		col.Type = types.Integer
	case "varchar", "char", "character", "character varying", "varying character",
		"nvarchar", "nchar", "native character":
		col.Type, col.MaxLength = types.String, size
	case "text", "clob", "string":
		col.Type = types.String
	case "date":
		col.Type = types.Date
	case "datetime", "timestamp":
		col.Type = types.DateTime
	case "time":
		col.Type = types.Time
	case "boolean", "bool":
		col.Type = types.Boolean
	case "blob":
		col.Type = types.Blob
	default:
		col.Type = types.Unknown
	}
	return col
}
