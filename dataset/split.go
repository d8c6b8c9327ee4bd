package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/pkg/errors"
)

// TrainTestSplit partitions X and y into disjoint train and test sets.
// The test partition holds round(fraction*N) rows drawn by a seeded
// permutation, so the same (seed, fraction, N) always yields the same
// partition.
func TrainTestSplit(X, y mat.Matrix, fraction float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, p := X.Dims()
	ny, cy := y.Dims()

	if n == 0 {
		return nil, nil, nil, nil, errors.NewModelError("dataset.TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if ny != n {
		return nil, nil, nil, nil, errors.NewDimensionError("dataset.TrainTestSplit", n, ny, 0)
	}
	if cy != 1 {
		return nil, nil, nil, nil, errors.NewValueError("dataset.TrainTestSplit", "y must be a column vector")
	}
	if math.IsNaN(fraction) || fraction <= 0 || fraction >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("fraction", "must be in (0, 1)", fraction)
	}

	nTest := int(math.Round(fraction * float64(n)))
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, errors.NewValidationError("fraction", "produces an empty partition", fraction)
	}
	nTrain := n - nTest

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	XTest = mat.NewDense(nTest, p, nil)
	yTest = mat.NewDense(nTest, 1, nil)
	XTrain = mat.NewDense(nTrain, p, nil)
	yTrain = mat.NewDense(nTrain, 1, nil)

	for i, src := range perm {
		if i < nTest {
			for j := 0; j < p; j++ {
				XTest.Set(i, j, X.At(src, j))
			}
			yTest.Set(i, 0, y.At(src, 0))
			continue
		}
		row := i - nTest
		for j := 0; j < p; j++ {
			XTrain.Set(row, j, X.At(src, j))
		}
		yTrain.Set(row, 0, y.At(src, 0))
	}

	return XTrain, XTest, yTrain, yTest, nil
}
