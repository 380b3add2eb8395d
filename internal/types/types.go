package types

// SemanticType is the abstract value category of a column, independent of how
// the database stores it.
type SemanticType int

const (
	Unknown SemanticType = iota
	Integer
	String
	Date
	DateTime
	Boolean
	Time
	Blob
)

func (t SemanticType) String() string {
	switch t {
	case Integer:
		return "integer"
	case String:
		return "string"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Boolean:
		return "boolean"
	case Time:
		return "time"
	case Blob:
		return "blob"
	default:
		return "unknown"
	}
}

// IntWidth is the storage width hint for integer columns.
type IntWidth int

const (
	WidthStandard IntWidth = iota
	WidthNarrow            // single byte (tinyint)
	WidthSmall             // two bytes (smallint)
	WidthMedium            // three bytes (mediumint)
)

type Column struct {
	Name      string
	Type      SemanticType
	DBType    string // declared type as reported by the database
	Width     IntWidth
	MaxLength int // 0 when the database reports none
	Nullable  bool
	IsPrimary bool
}

// FKKind tags a foreign key as pointing at its own table or another one.
type FKKind int

const (
	CrossTable FKKind = iota
	SelfReference
)

type ForeignKey struct {
	Name       string
	Kind       FKKind
	RefTable   string
	Columns    []string // local columns, positionally matching RefColumns
	RefColumns []string
}

func (fk ForeignKey) IsSelf() bool {
	return fk.Kind == SelfReference
}

type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// ColumnNames returns the table's column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Edge points from a referenced table to the table that depends on it.
type Edge struct {
	From string
	To   string
}

// Row maps column name to the value to insert.
type Row map[string]interface{}

// Values returns the row's values in the given column order.
func (r Row) Values(columns []string) []interface{} {
	vals := make([]interface{}, len(columns))
	for i, c := range columns {
		vals[i] = r[c]
	}
	return vals
}
