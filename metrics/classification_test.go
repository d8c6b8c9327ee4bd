package metrics

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func colVec(vals ...float64) *mat.Dense {
	return mat.NewDense(len(vals), 1, vals)
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.Dense
		yPred   *mat.Dense
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: colVec(0, 1, 1, 0),
			yPred: colVec(0, 1, 1, 0),
			want:  1,
		},
		{
			name:  "three of four",
			yTrue: colVec(0, 1, 1, 0),
			yPred: colVec(0, 1, 0, 0),
			want:  0.75,
		},
		{
			name:  "none correct",
			yTrue: colVec(0, 0),
			yPred: colVec(1, 1),
			want:  0,
		},
		{
			name:    "length mismatch",
			yTrue:   colVec(0, 1),
			yPred:   colVec(0, 1, 1),
			wantErr: true,
		},
		{
			name:    "empty",
			yTrue:   mat.NewDense(1, 1, nil),
			yPred:   mat.NewDense(1, 2, nil),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := colVec(0, 0, 0, 1, 1, 1, 1, 0)
	yPred := colVec(0, 1, 0, 1, 0, 1, 1, 0)

	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	if cm.TrueNegatives() != 3 {
		t.Errorf("TN = %d, want 3", cm.TrueNegatives())
	}
	if cm.FalsePositives() != 1 {
		t.Errorf("FP = %d, want 1", cm.FalsePositives())
	}
	if cm.FalseNegatives() != 1 {
		t.Errorf("FN = %d, want 1", cm.FalseNegatives())
	}
	if cm.TruePositives() != 3 {
		t.Errorf("TP = %d, want 3", cm.TruePositives())
	}

	n, _ := yTrue.Dims()
	if cm.Total() != n {
		t.Errorf("Total() = %d, want %d", cm.Total(), n)
	}
}

func TestConfusionMatrixAccuracyMatchesAccuracy(t *testing.T) {
	yTrue := colVec(0, 1, 1, 0, 1, 0, 0, 1, 1, 0)
	yPred := colVec(0, 1, 0, 0, 1, 1, 0, 1, 0, 0)

	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy() error = %v", err)
	}
	if math.Abs(cm.Accuracy()-acc) > 1e-12 {
		t.Errorf("matrix accuracy %v differs from direct accuracy %v", cm.Accuracy(), acc)
	}
}

func TestConfusionMatrixRejectsNonBinary(t *testing.T) {
	_, err := NewConfusionMatrix(colVec(0, 2), colVec(0, 1))
	if err == nil {
		t.Error("expected an error for labels outside {0, 1}")
	}
}

func TestConfusionMatrixString(t *testing.T) {
	cm, err := NewConfusionMatrix(colVec(0, 1), colVec(1, 1))
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}
	s := cm.String()
	if !strings.Contains(s, "actual 0") || !strings.Contains(s, "pred 1") {
		t.Errorf("String() missing headers:\n%s", s)
	}
}

func TestBinarizeProba(t *testing.T) {
	p := colVec(0.1, 0.5, 0.51, 0.9)

	got, err := BinarizeProba(p, 0.5, 1, 0)
	if err != nil {
		t.Fatalf("BinarizeProba() error = %v", err)
	}
	want := []float64{0, 0, 1, 1}
	for i, w := range want {
		if got.At(i, 0) != w {
			t.Errorf("row %d = %v, want %v", i, got.At(i, 0), w)
		}
	}

	// Custom label values, as used when recoding "No" to 1.
	got, err = BinarizeProba(p, 0.5, 0, 1)
	if err != nil {
		t.Fatalf("BinarizeProba() error = %v", err)
	}
	for i, w := range want {
		if got.At(i, 0) != 1-w {
			t.Errorf("inverted row %d = %v, want %v", i, got.At(i, 0), 1-w)
		}
	}

	if _, err := BinarizeProba(p, 1.5, 1, 0); err == nil {
		t.Error("expected an error for threshold outside [0, 1]")
	}
	if _, err := BinarizeProba(mat.NewDense(2, 2, nil), 0.5, 1, 0); err == nil {
		t.Error("expected an error for a non-column input")
	}
}
