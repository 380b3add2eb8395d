package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func TestParseDeclaredType(t *testing.T) {
	tests := []struct {
		declared string
		base     string
		size     int
	}{
		{"VARCHAR(255)", "varchar", 255},
		{"varchar( 40 )", "varchar", 40},
		{"numeric(10, 2)", "numeric", 10},
		{"tinyint(1)", "tinyint", 1},
		{"tinyint(1) unsigned", "tinyint", 1},
		{"int unsigned", "int", 0},
		{"INT(11) UNSIGNED ZEROFILL", "int", 11},
		{"character varying(255)", "character varying", 255},
		{"double precision", "double precision", 0},
		{"  bigint  ", "bigint", 0},
		{"TEXT", "text", 0},
		{"unsigned", "unsigned", 0},
		{"", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			base, size := ParseDeclaredType(tt.declared)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestQuoteHelpers(t *testing.T) {
	assert.Equal(t, `"order"`, QuoteDouble("order"))
	assert.Equal(t, `"a""b"`, QuoteDouble(`a"b`))
	assert.Equal(t, "`order`", QuoteBacktick("order"))
	assert.Equal(t, "`a``b`", QuoteBacktick("a`b"))
	assert.Equal(t, "[order]", QuoteBracket("order"))
	assert.Equal(t, "[a]]b]", QuoteBracket("a]b"))
}

func TestForeignKeyCollector(t *testing.T) {
	c := NewForeignKeyCollector("stores")
	c.Add("stores_region_fk", "regions", "region_country", "country")
	c.Add("stores_parent_fk", "stores", "parent_id", "id")
	c.Add("stores_region_fk", "regions", "region_code", "code")

	assert.Equal(t, []types.ForeignKey{
		{
			Name:       "stores_region_fk",
			Kind:       types.CrossTable,
			RefTable:   "regions",
			Columns:    []string{"region_country", "region_code"},
			RefColumns: []string{"country", "code"},
		},
		{
			Name:       "stores_parent_fk",
			Kind:       types.SelfReference,
			RefTable:   "stores",
			Columns:    []string{"parent_id"},
			RefColumns: []string{"id"},
		},
	}, c.ForeignKeys())
}

func TestForeignKeyCollectorEmpty(t *testing.T) {
	assert.Empty(t, NewForeignKeyCollector("t").ForeignKeys())
}

func TestIsBinaryType(t *testing.T) {
	for _, name := range []string{"BLOB", "blob", "MEDIUMBLOB", "VARBINARY", "BINARY", "IMAGE", "BYTEA", ""} {
		assert.True(t, isBinaryType(name), name)
	}
	for _, name := range []string{"TEXT", "VARCHAR", "NVARCHAR", "CHAR", "DECIMAL", "INTEGER", "DATETIME"} {
		assert.False(t, isBinaryType(name), name)
	}
}
