package dataset

import (
	"sort"

	"github.com/peopleml/attrition/pkg/errors"
)

// ResponseColumn is the binary outcome variable of the HR dataset.
const ResponseColumn = "Attrition"

// DeclaredCategorical lists the integer-coded columns that the dataset
// documentation declares as ordinal/categorical factors. The source
// metadata fixes this set; it is not inferred from content.
var DeclaredCategorical = []string{
	"Education",
	"EnvironmentSatisfaction",
	"JobInvolvement",
	"JobLevel",
	"JobSatisfaction",
	"PerformanceRating",
	"RelationshipSatisfaction",
	"StockOptionLevel",
	"WorkLifeBalance",
}

// GLMPredictors are the three numeric predictors of the binomial GLM path.
var GLMPredictors = []string{"Age", "YearsSinceLastPromotion", "DistanceFromHome"}

// FeatureClassification partitions the predictor columns into
// object-typed, declared-categorical and numerical sets. The three sets
// are disjoint and their union is the full column set minus the response.
type FeatureClassification struct {
	Object    []string
	Declared  []string
	Numerical []string
}

// ClassifyFeatures partitions the columns of t using the declared
// categorical whitelist. The response column is excluded from every set.
// An overlap between the object-typed and declared sets means the
// declared metadata disagrees with the file content; that classification
// is invalid and is surfaced as a SchemaError rather than corrected.
func ClassifyFeatures(t *Table, declared []string, response string) (*FeatureClassification, error) {
	if !t.HasColumn(response) {
		return nil, errors.NewSchemaError("dataset.ClassifyFeatures", "response column absent", []string{response})
	}

	declaredSet := make(map[string]bool, len(declared))
	for _, name := range declared {
		if !t.HasColumn(name) {
			return nil, errors.NewSchemaError("dataset.ClassifyFeatures", "declared categorical column absent", []string{name})
		}
		declaredSet[name] = true
	}

	fc := &FeatureClassification{}
	var overlap []string
	for _, name := range t.ColumnNames() {
		if name == response {
			continue
		}
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		isObject := col.Kind == KindString
		switch {
		case isObject && declaredSet[name]:
			overlap = append(overlap, name)
		case isObject:
			fc.Object = append(fc.Object, name)
		case declaredSet[name]:
			fc.Declared = append(fc.Declared, name)
		default:
			fc.Numerical = append(fc.Numerical, name)
		}
	}

	if len(overlap) > 0 {
		sort.Strings(overlap)
		return nil, errors.NewSchemaError("dataset.ClassifyFeatures",
			"object-typed and declared categorical sets overlap", overlap)
	}
	return fc, nil
}
