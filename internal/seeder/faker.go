package seeder

import (
	"math"
	"math/rand"
	"time"

	"github.com/Lumos-Labs-HQ/rowseed/internal/types"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	maxNarrowInt = 127
	maxSmallInt  = 32767
	maxMediumInt = 8388607
	maxAgeDays   = 365
	secondsInDay = 86400
	blobSize     = 1024
)

// DataGenerator produces one random value per column from the column's
// semantic type. Values carry no meaning beyond fitting the declared domain.
type DataGenerator struct {
	rand *rand.Rand
	now  func() time.Time
}

func NewDataGenerator() *DataGenerator {
	return NewDataGeneratorWithSource(rand.New(rand.NewSource(time.Now().UnixNano())), time.Now)
}

// NewDataGeneratorWithSource uses rng for randomness and now as the clock.
func NewDataGeneratorWithSource(rng *rand.Rand, now func() time.Time) *DataGenerator {
	if now == nil {
		now = time.Now
	}
	return &DataGenerator{rand: rng, now: now}
}

// Generate returns a value for col. Columns of an unsupported type yield an
// *UnsupportedColumnTypeError without a table name; callers fill it in.
func (g *DataGenerator) Generate(col types.Column) (interface{}, error) {
	switch col.Type {
	case types.Integer:
		return g.generateInt(col.Width), nil
	case types.String:
		length := col.MaxLength
		if length <= 0 {
			length = 1
		}
		return g.generateString(length), nil
	case types.Date:
		return g.generateDate(), nil
	case types.DateTime:
		return g.generateTimestamp(), nil
	case types.Boolean:
		return g.rand.Intn(2) == 1, nil
	case types.Time:
		return g.generateTimeOfDay(), nil
	case types.Blob:
		return g.generateBlob(), nil
	default:
		return nil, &UnsupportedColumnTypeError{Column: col.Name, DBType: col.DBType}
	}
}

func (g *DataGenerator) generateInt(width types.IntWidth) int64 {
	switch width {
	case types.WidthNarrow:
		return int64(g.rand.Intn(maxNarrowInt + 1))
	case types.WidthSmall:
		return int64(g.rand.Intn(maxSmallInt + 1))
	case types.WidthMedium:
		return int64(g.rand.Intn(maxMediumInt + 1))
	default:
		return int64(g.rand.Int63n(math.MaxInt32 + 1))
	}
}

func (g *DataGenerator) generateString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[g.rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

// generateDate returns midnight UTC of a day up to a year before today.
func (g *DataGenerator) generateDate() time.Time {
	now := g.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -g.rand.Intn(maxAgeDays+1))
}

func (g *DataGenerator) generateTimestamp() time.Time {
	return g.now().AddDate(0, 0, -g.rand.Intn(maxAgeDays+1))
}

func (g *DataGenerator) generateTimeOfDay() string {
	offset := time.Duration(g.rand.Intn(secondsInDay)) * time.Second
	return g.now().Add(-offset).Format("15:04:05")
}

func (g *DataGenerator) generateBlob() []byte {
	b := make([]byte, blobSize)
	g.rand.Read(b)
	return b
}
