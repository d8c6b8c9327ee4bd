// Package dataset loads the HR attrition CSV into a typed in-memory
// table and provides the feature classification, encoding and
// train/test splitting steps of the analysis pipeline.
package dataset

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/pkg/errors"
)

// Kind is the inferred value type of a column.
type Kind int

const (
	// KindInt marks an integer-valued column.
	KindInt Kind = iota
	// KindFloat marks a float-valued column.
	KindFloat
	// KindString marks an object-typed (string-valued) column.
	KindString
)

// String returns the kind name as reported in summaries.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "object"
	default:
		return "unknown"
	}
}

// Column is a single named column. Numeric columns carry their values in
// Floats; object-typed columns keep the raw strings. After encoding, an
// object column holds integer codes in Floats and its kind becomes
// KindInt while Strings retains the original values.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

// clone returns a deep copy of the column.
func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64(nil), c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string(nil), c.Strings...)
	}
	return out
}

// Table is an ordered collection of columns sharing one row count.
// The loaded table is never mutated in place; encoding operates on a
// clone so the original remains available for reporting.
type Table struct {
	cols  []*Column
	index map[string]int
	nRows int
}

// Load reads the CSV at path into a Table. Column order is preserved and
// kinds are inferred from content (int, then float, else object). A
// missing file or malformed CSV is fatal for the run.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: failed to parse %s", path)
	}
	if len(records) < 2 {
		return nil, errors.NewValueError("dataset.Load", "file has no data rows")
	}

	header := records[0]
	rows := records[1:]
	t := &Table{
		cols:  make([]*Column, 0, len(header)),
		index: make(map[string]int, len(header)),
		nRows: len(rows),
	}

	for j, name := range header {
		if _, dup := t.index[name]; dup {
			return nil, errors.NewSchemaError("dataset.Load", "duplicate column name", []string{name})
		}
		raw := make([]string, len(rows))
		for i, rec := range rows {
			if j >= len(rec) {
				return nil, errors.NewValueError("dataset.Load", "ragged row: fewer fields than header columns")
			}
			raw[i] = rec[j]
		}
		t.cols = append(t.cols, inferColumn(name, raw))
		t.index[name] = j
	}

	return t, nil
}

// inferColumn types a raw column as int, float or object. Empty cells in
// numeric columns become NaN so the missing-value audit can count them.
func inferColumn(name string, raw []string) *Column {
	isInt, isFloat := true, true
	for _, s := range raw {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			isFloat = false
		}
		if !isInt && !isFloat {
			break
		}
	}

	if isInt || isFloat {
		vals := make([]float64, len(raw))
		for i, s := range raw {
			if s == "" {
				vals[i] = math.NaN()
				continue
			}
			v, _ := strconv.ParseFloat(s, 64)
			vals[i] = v
		}
		kind := KindFloat
		if isInt {
			kind = KindInt
		}
		return &Column{Name: name, Kind: kind, Floats: vals}
	}
	return &Column{Name: name, Kind: KindString, Strings: append([]string(nil), raw...)}
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.nRows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in their original order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewSchemaError("dataset.Column", "column not found", []string{name})
	}
	return t.cols[i], nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.index)),
		nRows: t.nRows,
	}
	for i, c := range t.cols {
		out.cols[i] = c.clone()
		out.index[c.Name] = i
	}
	return out
}

// Drop returns a copy of the table without the named columns. Unknown
// names are an error so a schema typo cannot pass silently.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, errors.NewSchemaError("dataset.Drop", "column not found", []string{n})
		}
		drop[n] = true
	}
	out := &Table{
		index: make(map[string]int),
		nRows: t.nRows,
	}
	for _, c := range t.cols {
		if drop[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.clone())
	}
	return out, nil
}

// Select returns a copy of the table containing only the named columns,
// in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{
		index: make(map[string]int, len(names)),
		nRows: t.nRows,
	}
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		out.index[n] = len(out.cols)
		out.cols = append(out.cols, c.clone())
	}
	return out, nil
}

// Matrix exports all columns as a dense numeric matrix in column order.
// Object-typed columns must be encoded first.
func (t *Table) Matrix() (*mat.Dense, error) {
	if t.nRows == 0 || len(t.cols) == 0 {
		return nil, errors.NewModelError("dataset.Matrix", "empty table", errors.ErrEmptyData)
	}
	for _, c := range t.cols {
		if c.Kind == KindString {
			return nil, errors.NewValueError("dataset.Matrix",
				"column '"+c.Name+"' is object-typed; encode it before exporting a matrix")
		}
	}
	out := mat.NewDense(t.nRows, len(t.cols), nil)
	for j, c := range t.cols {
		for i := 0; i < t.nRows; i++ {
			out.Set(i, j, c.Floats[i])
		}
	}
	return out, nil
}

// AuditMissing counts missing entries per column and emits a
// MissingValueWarning for each affected column. The HR dataset is
// expected to be complete; the audit verifies that rather than
// enforcing it.
func (t *Table) AuditMissing() map[string]int {
	missing := make(map[string]int)
	for _, c := range t.cols {
		n := 0
		switch c.Kind {
		case KindString:
			for _, s := range c.Strings {
				if s == "" {
					n++
				}
			}
		default:
			for _, v := range c.Floats {
				if math.IsNaN(v) {
					n++
				}
			}
		}
		if n > 0 {
			missing[c.Name] = n
			errors.Warn(errors.NewMissingValueWarning(c.Name, n))
		}
	}
	return missing
}
