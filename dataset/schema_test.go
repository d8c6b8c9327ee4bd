package dataset

import (
	"sort"
	"testing"

	"github.com/peopleml/attrition/pkg/errors"
)

func TestClassifyFeatures(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	fc, err := ClassifyFeatures(table, DeclaredCategorical, ResponseColumn)
	if err != nil {
		t.Fatalf("ClassifyFeatures() error = %v", err)
	}

	// The three sets must be pairwise disjoint.
	seen := make(map[string]string)
	for _, set := range []struct {
		name string
		cols []string
	}{
		{name: "object", cols: fc.Object},
		{name: "declared", cols: fc.Declared},
		{name: "numerical", cols: fc.Numerical},
	} {
		for _, col := range set.cols {
			if prev, dup := seen[col]; dup {
				t.Errorf("column %s appears in both %s and %s sets", col, prev, set.name)
			}
			seen[col] = set.name
		}
	}

	// Their union must be the full column set minus the response.
	if len(seen) != table.NumCols()-1 {
		t.Errorf("classified %d columns, want %d", len(seen), table.NumCols()-1)
	}
	if _, ok := seen[ResponseColumn]; ok {
		t.Error("response column must not be classified as a feature")
	}

	wantDeclared := append([]string(nil), DeclaredCategorical...)
	gotDeclared := append([]string(nil), fc.Declared...)
	sort.Strings(wantDeclared)
	sort.Strings(gotDeclared)
	if len(gotDeclared) != len(wantDeclared) {
		t.Fatalf("declared set size = %d, want %d", len(gotDeclared), len(wantDeclared))
	}
	for i := range wantDeclared {
		if gotDeclared[i] != wantDeclared[i] {
			t.Errorf("declared[%d] = %s, want %s", i, gotDeclared[i], wantDeclared[i])
		}
	}
}

func TestClassifyFeaturesOverlap(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Declaring a string-valued column as categorical makes the object and
	// declared sets intersect; that is invalid, not correctable.
	declared := append([]string{"Gender"}, DeclaredCategorical...)
	_, err = ClassifyFeatures(table, declared, ResponseColumn)
	if err == nil {
		t.Fatal("ClassifyFeatures() should report overlapping sets")
	}
	var se *errors.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(se.Columns) != 1 || se.Columns[0] != "Gender" {
		t.Errorf("SchemaError columns = %v, want [Gender]", se.Columns)
	}
}

func TestClassifyFeaturesMissingResponse(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	dropped, err := table.Drop(ResponseColumn)
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if _, err := ClassifyFeatures(dropped, DeclaredCategorical, ResponseColumn); err == nil {
		t.Error("ClassifyFeatures() without the response column should fail")
	}
}
