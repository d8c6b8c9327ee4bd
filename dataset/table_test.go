package dataset

import (
	"path/filepath"
	"testing"
)

const sampleCSV = "testdata/attrition_sample.csv"

func TestLoad(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if table.NumRows() != 24 {
		t.Errorf("NumRows() = %d, want 24", table.NumRows())
	}
	if table.NumCols() != 35 {
		t.Errorf("NumCols() = %d, want 35", table.NumCols())
	}

	kinds := []struct {
		column string
		want   Kind
	}{
		{column: "Age", want: KindInt},
		{column: "Attrition", want: KindString},
		{column: "BusinessTravel", want: KindString},
		{column: "DistanceFromHome", want: KindInt},
		{column: "MonthlyIncome", want: KindInt},
	}
	for _, tt := range kinds {
		col, err := table.Column(tt.column)
		if err != nil {
			t.Fatalf("Column(%s) error = %v", tt.column, err)
		}
		if col.Kind != tt.want {
			t.Errorf("column %s inferred as %v, want %v", tt.column, col.Kind, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no_such_file.csv"))
	if err == nil {
		t.Fatal("Load() on a missing file should fail")
	}
}

func TestAuditMissingCleanDataset(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if missing := table.AuditMissing(); len(missing) != 0 {
		t.Errorf("AuditMissing() = %v, want no missing values", missing)
	}
}

func TestMatrixRejectsObjectColumns(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := table.Matrix(); err == nil {
		t.Error("Matrix() should fail while object-typed columns are unencoded")
	}

	numeric, err := table.Select("Age", "DistanceFromHome", "YearsSinceLastPromotion")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	X, err := numeric.Matrix()
	if err != nil {
		t.Fatalf("Matrix() on numeric columns error = %v", err)
	}
	r, c := X.Dims()
	if r != 24 || c != 3 {
		t.Errorf("Matrix() dims = (%d, %d), want (24, 3)", r, c)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	clone := table.Clone()
	col, err := clone.Column("Age")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	col.Floats[0] = -1

	orig, _ := table.Column("Age")
	if orig.Floats[0] == -1 {
		t.Error("mutating a clone leaked into the original table")
	}
}

func TestDropUnknownColumn(t *testing.T) {
	table, err := Load(sampleCSV)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := table.Drop("NoSuchColumn"); err == nil {
		t.Error("Drop() of an unknown column should fail")
	}

	reduced, err := table.Drop("Attrition", "Over18")
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if reduced.NumCols() != 33 {
		t.Errorf("NumCols() after Drop = %d, want 33", reduced.NumCols())
	}
	if table.NumCols() != 35 {
		t.Error("Drop() mutated the source table")
	}
}
