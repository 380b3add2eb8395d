package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lumos-Labs-HQ/rowseed/internal/database/common"
	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func (p *Adapter) GetAllTableNames(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name::text
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// GetTableColumns returns the insertable columns of tableName in declaration
// order. Generated columns and GENERATED ALWAYS identities are left out since
// they cannot be given explicit values.
func (p *Adapter) GetTableColumns(ctx context.Context, tableName string) ([]types.Column, error) {
	primary, err := p.primaryKeyColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT
			c.column_name::text,
			c.udt_name::text,
			COALESCE(c.character_maximum_length::int, 0),
			c.is_nullable::text,
			COALESCE(c.is_generated::text, 'NEVER'),
			COALESCE(c.identity_generation::text, '')
		FROM information_schema.columns c
		WHERE c.table_schema = current_schema()
		  AND c.table_name = $1
		ORDER BY c.ordinal_position
	`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []types.Column
	for rows.Next() {
		var name, udtName, isNullable, isGenerated, identity string
		var maxLength int32
		if err := rows.Scan(&name, &udtName, &maxLength, &isNullable, &isGenerated, &identity); err != nil {
			return nil, err
		}
		if isGenerated == "ALWAYS" || identity == "ALWAYS" {
			continue
		}

		col := classify(udtName, int(maxLength))
		col.Name = name
		col.Nullable = isNullable == "YES"
		col.IsPrimary = primary[name]
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (p *Adapter) primaryKeyColumns(ctx context.Context, tableName string) (map[string]bool, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT kcu.column_name::text
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		 AND tc.table_name = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = current_schema()
		  AND tc.table_name = $1
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key of %s: %w", tableName, err)
	}
	defer rows.Close()

	pk := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk[name] = true
	}
	return pk, rows.Err()
}

// GetForeignKeys reads pg_constraint directly; UNNEST WITH ORDINALITY keeps
// local and referenced columns of composite keys paired.
func (p *Adapter) GetForeignKeys(ctx context.Context, tableName string) ([]types.ForeignKey, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT
			con.conname::text,
			tgt_table.relname::text,
			src_attr.attname::text,
			tgt_attr.attname::text
		FROM pg_constraint con
		JOIN pg_class src_table ON con.conrelid = src_table.oid
		JOIN pg_namespace ns ON src_table.relnamespace = ns.oid
		CROSS JOIN LATERAL UNNEST(con.conkey, con.confkey) WITH ORDINALITY AS cols(src_col, tgt_col, ord)
		JOIN pg_attribute src_attr ON src_attr.attrelid = src_table.oid AND src_attr.attnum = cols.src_col
		JOIN pg_class tgt_table ON con.confrelid = tgt_table.oid
		JOIN pg_attribute tgt_attr ON tgt_attr.attrelid = tgt_table.oid AND tgt_attr.attnum = cols.tgt_col
		WHERE con.contype = 'f'
		  AND ns.nspname = current_schema()
		  AND src_table.relname = $1
		ORDER BY con.conname, cols.ord
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

func classify(udtName string, maxLength int) types.Column {
	col := types.Column{DBType: udtName}
	switch strings.ToLower(udtName) {
	case "int2":
		col.Type, col.Width = types.Integer, types.WidthSmall
	case "int4", "int8":
		col.Type = types.Integer
	case "varchar", "bpchar", "text":
		col.Type, col.MaxLength = types.String, maxLength
	case "date":
		col.Type = types.Date
	case "timestamp", "timestamptz":
		col.Type = types.DateTime
	case "bool":
		col.Type = types.Boolean
	case "time", "timetz":
		col.Type = types.Time
	case "bytea":
		col.Type = types.Blob
	default:
		col.Type = types.Unknown
	}
	return col
}
