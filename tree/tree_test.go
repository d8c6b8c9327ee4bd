package tree

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// newSeparable builds a 2D dataset split cleanly on the first feature.
func newSeparable() (*mat.Dense, *mat.Dense) {
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%5))
		if i >= n/2 {
			y.Set(i, 0, 1)
		}
	}
	return X, y
}

func TestDecisionTreeFitPredict(t *testing.T) {
	for _, criterion := range []string{"gini", "entropy"} {
		t.Run(criterion, func(t *testing.T) {
			X, y := newSeparable()
			clf := NewDecisionTreeClassifier(WithCriterion(criterion))
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit() error = %v", err)
			}

			preds, err := clf.Predict(X)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			n, _ := preds.Dims()
			for i := 0; i < n; i++ {
				if preds.At(i, 0) != y.At(i, 0) {
					t.Fatalf("row %d predicted %v, want %v", i, preds.At(i, 0), y.At(i, 0))
				}
			}
		})
	}
}

func TestDecisionTreePredictProba(t *testing.T) {
	X, y := newSeparable()
	clf := NewDecisionTreeClassifier()
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probas, err := clf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	n, c := probas.Dims()
	if c != 2 {
		t.Fatalf("PredictProba columns = %d, want 2", c)
	}
	for i := 0; i < n; i++ {
		sum := probas.At(i, 0) + probas.At(i, 1)
		if sum < 0.999 || sum > 1.001 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, sum)
		}
	}
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	X, y := newSeparable()
	// Depth 1 still resolves a single-threshold dataset.
	clf := NewDecisionTreeClassifier(WithMaxDepth(1), WithCriterion("entropy"))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	preds, err := clf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	correct := 0
	n, _ := preds.Dims()
	for i := 0; i < n; i++ {
		if preds.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	if correct != n {
		t.Errorf("depth-1 stump got %d/%d on a single-threshold dataset", correct, n)
	}
}

func TestDecisionTreeValidation(t *testing.T) {
	X, y := newSeparable()

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "unfitted Predict",
			run: func() error {
				_, err := NewDecisionTreeClassifier().Predict(X)
				return err
			},
		},
		{
			name: "bad criterion",
			run: func() error {
				return NewDecisionTreeClassifier(WithCriterion("logloss")).Fit(X, y)
			},
		},
		{
			name: "row mismatch",
			run: func() error {
				return NewDecisionTreeClassifier().Fit(X, mat.NewDense(3, 1, nil))
			},
		},
		{
			name: "feature mismatch at predict",
			run: func() error {
				clf := NewDecisionTreeClassifier()
				if err := clf.Fit(X, y); err != nil {
					return nil
				}
				_, err := clf.Predict(mat.NewDense(2, 5, nil))
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestImpurityHelpers(t *testing.T) {
	tests := []struct {
		name        string
		counts      []int
		wantGini    float64
		wantEntropy float64
	}{
		{name: "pure", counts: []int{10, 0}, wantGini: 0, wantEntropy: 0},
		{name: "balanced", counts: []int{5, 5}, wantGini: 0.5, wantEntropy: 1},
		{name: "empty", counts: []int{0, 0}, wantGini: 0, wantEntropy: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := giniFromCounts(tt.counts); absDiff(got, tt.wantGini) > 1e-12 {
				t.Errorf("gini = %v, want %v", got, tt.wantGini)
			}
			if got := entropyFromCounts(tt.counts); absDiff(got, tt.wantEntropy) > 1e-12 {
				t.Errorf("entropy = %v, want %v", got, tt.wantEntropy)
			}
		})
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
