package seeder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

func generateN(t *testing.T, g *DataGenerator, col types.Column, n int) []interface{} {
	t.Helper()
	values := make([]interface{}, n)
	for i := range values {
		v, err := g.Generate(col)
		require.NoError(t, err)
		values[i] = v
	}
	return values
}

func TestGenerateIntegerWidths(t *testing.T) {
	tests := []struct {
		name  string
		width types.IntWidth
		max   int64
	}{
		{"narrow", types.WidthNarrow, 127},
		{"small", types.WidthSmall, 32767},
		{"medium", types.WidthMedium, 8388607},
		{"standard", types.WidthStandard, 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := types.Column{Name: "n", Type: types.Integer, Width: tt.width}
			for _, v := range generateN(t, testGenerator(1), col, 500) {
				n, ok := v.(int64)
				require.True(t, ok, "got %T", v)
				assert.GreaterOrEqual(t, n, int64(0))
				assert.LessOrEqual(t, n, tt.max)
			}
		})
	}
}

func TestGenerateString(t *testing.T) {
	g := testGenerator(2)

	for _, v := range generateN(t, g, strCol("name", 12), 50) {
		s, ok := v.(string)
		require.True(t, ok)
		assert.Len(t, s, 12)
		assert.Regexp(t, `^[a-zA-Z0-9]+$`, s)
	}

	unbounded := types.Column{Name: "body", Type: types.String, DBType: "text"}
	for _, v := range generateN(t, g, unbounded, 20) {
		assert.Len(t, v, 1)
	}
}

func TestGenerateDate(t *testing.T) {
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	oldest := today.AddDate(0, 0, -365)

	col := types.Column{Name: "born_on", Type: types.Date}
	for _, v := range generateN(t, testGenerator(3), col, 200) {
		d, ok := v.(time.Time)
		require.True(t, ok)
		assert.Equal(t, time.UTC, d.Location())
		assert.Zero(t, d.Hour())
		assert.Zero(t, d.Minute())
		assert.Zero(t, d.Second())
		assert.False(t, d.After(today), "%s after %s", d, today)
		assert.False(t, d.Before(oldest), "%s before %s", d, oldest)
	}
}

func TestGenerateDateTime(t *testing.T) {
	oldest := fixedNow.AddDate(0, 0, -365)

	col := types.Column{Name: "created_at", Type: types.DateTime}
	for _, v := range generateN(t, testGenerator(4), col, 200) {
		ts, ok := v.(time.Time)
		require.True(t, ok)
		assert.False(t, ts.After(fixedNow))
		assert.False(t, ts.Before(oldest))
	}
}

func TestGenerateBoolean(t *testing.T) {
	col := types.Column{Name: "active", Type: types.Boolean}
	seen := map[bool]int{}
	for _, v := range generateN(t, testGenerator(5), col, 200) {
		b, ok := v.(bool)
		require.True(t, ok)
		seen[b]++
	}
	assert.Positive(t, seen[true])
	assert.Positive(t, seen[false])
}

func TestGenerateTime(t *testing.T) {
	col := types.Column{Name: "opens_at", Type: types.Time}
	for _, v := range generateN(t, testGenerator(6), col, 100) {
		s, ok := v.(string)
		require.True(t, ok)
		_, err := time.Parse("15:04:05", s)
		assert.NoError(t, err, s)
	}
}

func TestGenerateBlob(t *testing.T) {
	col := types.Column{Name: "payload", Type: types.Blob}
	values := generateN(t, testGenerator(7), col, 2)

	first, ok := values[0].([]byte)
	require.True(t, ok)
	assert.Len(t, first, 1024)
	assert.NotEqual(t, values[0], values[1])
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	col := strCol("name", 16)
	assert.Equal(t, generateN(t, testGenerator(9), col, 5), generateN(t, testGenerator(9), col, 5))
}

func TestGenerateUnsupportedType(t *testing.T) {
	col := types.Column{Name: "shape", Type: types.Unknown, DBType: "polygon"}

	_, err := testGenerator(8).Generate(col)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedColumnType)

	var unsupported *UnsupportedColumnTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "shape", unsupported.Column)
	assert.Equal(t, "polygon", unsupported.DBType)
	assert.Empty(t, unsupported.Table)
}
