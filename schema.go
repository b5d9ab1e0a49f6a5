package framez

// Kind identifies the cell type of a column.
type Kind uint8

// Column cell types.
const (
	// Float64 cells hold numeric values; NaN marks a missing observation.
	Float64 Kind = iota

	// String cells hold opaque keys, typically used for grouping.
	String
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Field describes one column of a schema: a name and a cell kind.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the explicit, ordered description of a stream's tabular shape.
// It is computed once when a facade is constructed and threaded immutably
// through every derived facade; it never holds accumulated data.
//
// Every batch arriving on a stream must carry exactly this column set, in
// this order. Violations surface as a ShapeError.
type Schema struct {
	fields []Field
}

// NewSchema creates a schema from an ordered list of fields.
func NewSchema(fields ...Field) Schema {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Schema{fields: fs}
}

// Len returns the number of columns.
func (s Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the ordered field list.
func (s Schema) Fields() []Field {
	fs := make([]Field, len(s.fields))
	copy(fs, s.fields)
	return fs
}

// Columns returns the ordered column names.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.Name
	}
	return cols
}

// Field looks up a field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Equal reports whether two schemas have the same columns, kinds, and order.
func (s Schema) Equal(other Schema) bool {
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i, f := range s.fields {
		if other.fields[i] != f {
			return false
		}
	}
	return true
}

// Numeric returns the projection of the schema onto its Float64 columns,
// preserving order. Aggregation verbs that only make sense on numbers
// (sum, mean, rolling statistics) derive their output schema from this.
func (s Schema) Numeric() Schema {
	var fs []Field
	for _, f := range s.fields {
		if f.Kind == Float64 {
			fs = append(fs, f)
		}
	}
	return Schema{fields: fs}
}

// NumericColumns returns the ordered names of the Float64 columns.
func (s Schema) NumericColumns() []string {
	return s.Numeric().Columns()
}

// Validate checks a frame against the schema: same column names, kinds,
// and order. It returns a ShapeError on mismatch and never mutates state,
// so a rejected batch leaves every accumulator untouched.
func (s Schema) Validate(f *Frame) error {
	if f == nil {
		return &ShapeError{Want: s.Columns()}
	}
	got := f.Schema()
	if !s.Equal(got) {
		return &ShapeError{Want: s.Columns(), Got: got.Columns()}
	}
	return nil
}

// validateSeries checks a series against a single field contract.
func validateSeries(want Field, s *Series) error {
	if s == nil || s.name != want.Name || s.kind != want.Kind {
		got := []string{}
		if s != nil {
			got = []string{s.name}
		}
		return &ShapeError{Want: []string{want.Name}, Got: got}
	}
	return nil
}
