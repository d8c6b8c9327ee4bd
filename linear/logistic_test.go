package linear

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLassoLogisticRegressionFit(t *testing.T) {
	X, y := newDoseResponse()

	lr := NewLassoLogisticRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	// The dose-response fixture is 70% predictable from the threshold.
	if score < 0.7 {
		t.Errorf("training accuracy = %v, want >= 0.7", score)
	}

	coef := lr.Coef()
	if len(coef) != 1 {
		t.Fatalf("got %d coefficients, want 1", len(coef))
	}
	if coef[0] <= 0 {
		t.Errorf("slope = %v, want positive", coef[0])
	}
}

func TestLassoLogisticRegressionSparsity(t *testing.T) {
	X, y := newDoseResponse()

	// A heavy penalty shrinks every coefficient to exactly zero.
	lr := NewLassoLogisticRegression(WithLassoC(1e-4))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if lr.NNonZero() != 0 {
		t.Errorf("NNonZero() = %d under heavy penalty, want 0", lr.NNonZero())
	}

	// Weak penalty keeps the informative coefficient.
	lr = NewLassoLogisticRegression(WithLassoC(100))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if lr.NNonZero() != 1 {
		t.Errorf("NNonZero() = %d under weak penalty, want 1", lr.NNonZero())
	}
}

func TestLassoLogisticRegressionPredictProba(t *testing.T) {
	X, y := newDoseResponse()
	lr := NewLassoLogisticRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	probs, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	n, c := probs.Dims()
	if n != 100 || c != 1 {
		t.Fatalf("PredictProba dims = (%d, %d), want (100, 1)", n, c)
	}
	for i := 0; i < n; i++ {
		p := probs.At(i, 0)
		if p <= 0 || p >= 1 {
			t.Fatalf("probability out of (0, 1): %v", p)
		}
	}

	labels, err := lr.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < n; i++ {
		v := labels.At(i, 0)
		if v != 0 && v != 1 {
			t.Fatalf("label out of {0, 1}: %v", v)
		}
	}
}

func TestLassoLogisticRegressionValidation(t *testing.T) {
	X, y := newDoseResponse()

	tests := []struct {
		name string
		run  func() error
	}{
		{
			name: "unfitted Predict",
			run: func() error {
				_, err := NewLassoLogisticRegression().Predict(X)
				return err
			},
		},
		{
			name: "negative C",
			run: func() error {
				return NewLassoLogisticRegression(WithLassoC(-1)).Fit(X, y)
			},
		},
		{
			name: "row mismatch",
			run: func() error {
				return NewLassoLogisticRegression().Fit(X, mat.NewDense(3, 1, nil))
			},
		},
		{
			name: "feature mismatch at predict",
			run: func() error {
				lr := NewLassoLogisticRegression()
				if err := lr.Fit(X, y); err != nil {
					return nil
				}
				_, err := lr.PredictProba(mat.NewDense(5, 3, nil))
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
