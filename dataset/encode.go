package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/core/model"
	"github.com/peopleml/attrition/pkg/errors"
)

// LabelEncoder maps the distinct string values of one column to integer
// codes assigned in first-seen order. The vocabulary is stable within a
// run but is not guaranteed stable across edits of the input file.
type LabelEncoder struct {
	state *model.StateManager

	// Classes holds the vocabulary in code order: Classes[code] = value.
	Classes []string

	codes map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{state: model.NewStateManager()}
}

// Fit learns the vocabulary from values.
func (e *LabelEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty column", errors.ErrEmptyData)
	}
	e.Classes = nil
	e.codes = make(map[string]int)
	for _, v := range values {
		if _, ok := e.codes[v]; !ok {
			e.codes[v] = len(e.Classes)
			e.Classes = append(e.Classes, v)
		}
	}
	e.state.SetDimensions(1, len(values))
	e.state.SetFitted()
	return nil
}

// Transform encodes values with the fitted vocabulary. A value outside
// the vocabulary is an error, not a new code.
func (e *LabelEncoder) Transform(values []string) ([]float64, error) {
	if err := e.state.RequireFitted("LabelEncoder", "Transform"); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		code, ok := e.codes[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", "unseen category '"+v+"'")
		}
		out[i] = float64(code)
	}
	return out, nil
}

// FitTransform fits the vocabulary and encodes values in one pass.
func (e *LabelEncoder) FitTransform(values []string) ([]float64, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// EncodeColumns label-encodes the named object columns on a working copy
// of t. The input table is left untouched for reporting; the returned
// encoders expose each column's vocabulary.
func EncodeColumns(t *Table, names []string) (*Table, map[string]*LabelEncoder, error) {
	out := t.Clone()
	encoders := make(map[string]*LabelEncoder, len(names))
	for _, name := range names {
		col, err := out.Column(name)
		if err != nil {
			return nil, nil, err
		}
		if col.Kind != KindString {
			return nil, nil, errors.NewValueError("dataset.EncodeColumns",
				"column '"+name+"' is not object-typed")
		}
		enc := NewLabelEncoder()
		codes, err := enc.FitTransform(col.Strings)
		if err != nil {
			return nil, nil, err
		}
		col.Floats = codes
		col.Kind = KindInt
		encoders[name] = enc
	}
	return out, encoders, nil
}

// EncodeTarget recodes a binary string column into a 0/1 column vector
// with the named positive class mapped to 1. The recoding is a
// deterministic bijection fixed by the caller's convention: the original
// GLM script maps "No" to 1 while the classifier script maps "Yes" to 1,
// and both remain expressible here.
func EncodeTarget(col *Column, positiveLabel string) (*mat.Dense, error) {
	if col.Kind != KindString {
		return nil, errors.NewValueError("dataset.EncodeTarget",
			"target column '"+col.Name+"' is not object-typed")
	}
	distinct := make(map[string]bool)
	seen := false
	for _, v := range col.Strings {
		distinct[v] = true
		if v == positiveLabel {
			seen = true
		}
	}
	if len(distinct) != 2 {
		return nil, errors.NewValidationError("target", "column is not binary", col.Name)
	}
	if !seen {
		return nil, errors.NewValidationError("positiveLabel", "label not present in target column", positiveLabel)
	}

	y := mat.NewDense(len(col.Strings), 1, nil)
	for i, v := range col.Strings {
		if v == positiveLabel {
			y.Set(i, 0, 1)
		}
	}
	return y, nil
}
