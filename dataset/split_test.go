package dataset

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// newSplitFixture builds an X whose single column holds the row index,
// so partitions can be checked for disjointness and completeness.
func newSplitFixture(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, float64(i%2))
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		fraction float64
		wantTest int
	}{
		{name: "80/20 on full dataset size", n: 1470, fraction: 0.2, wantTest: 294},
		{name: "75/25 on full dataset size", n: 1470, fraction: 0.25, wantTest: 368},
		{name: "small table", n: 24, fraction: 0.2, wantTest: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X, y := newSplitFixture(tt.n)
			XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, tt.fraction, 0)
			if err != nil {
				t.Fatalf("TrainTestSplit() error = %v", err)
			}

			rTest, _ := XTest.Dims()
			rTrain, _ := XTrain.Dims()
			if rTest != tt.wantTest {
				t.Errorf("test rows = %d, want %d", rTest, tt.wantTest)
			}
			if rTrain+rTest != tt.n {
				t.Errorf("train+test = %d, want %d", rTrain+rTest, tt.n)
			}
			if ry, _ := yTrain.Dims(); ry != rTrain {
				t.Errorf("yTrain rows = %d, want %d", ry, rTrain)
			}
			if ry, _ := yTest.Dims(); ry != rTest {
				t.Errorf("yTest rows = %d, want %d", ry, rTest)
			}
		})
	}
}

func TestTrainTestSplitDisjoint(t *testing.T) {
	X, y := newSplitFixture(100)
	XTrain, XTest, _, _, err := TrainTestSplit(X, y, 0.2, 42)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	seen := make(map[int]bool)
	for _, m := range []*mat.Dense{XTrain, XTest} {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			id := int(m.At(i, 0))
			if seen[id] {
				t.Fatalf("row %d appears in both partitions", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 100 {
		t.Errorf("partitions cover %d rows, want 100", len(seen))
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := newSplitFixture(200)

	_, XTest1, _, _, err := TrainTestSplit(X, y, 0.25, 0)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}
	_, XTest2, _, _, err := TrainTestSplit(X, y, 0.25, 0)
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	if !mat.Equal(XTest1, XTest2) {
		t.Error("same seed and fraction must reproduce the same partition")
	}
}

func TestTrainTestSplitInvalidInputs(t *testing.T) {
	X, y := newSplitFixture(10)
	yBad := mat.NewDense(7, 1, nil)

	tests := []struct {
		name     string
		y        mat.Matrix
		fraction float64
	}{
		{name: "row mismatch", y: yBad, fraction: 0.2},
		{name: "fraction zero", y: y, fraction: 0},
		{name: "fraction one", y: y, fraction: 1},
		{name: "fraction NaN", y: y, fraction: math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, _, err := TrainTestSplit(X, tt.y, tt.fraction, 0); err == nil {
				t.Error("TrainTestSplit() should fail")
			}
		})
	}
}
