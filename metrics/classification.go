// Package metrics provides the classification metrics reported by the
// attrition analysis: accuracy and the binary confusion matrix.
package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/pkg/errors"
)

// Accuracy returns the fraction of rows where yTrue and yPred agree.
// Both arguments are column vectors of class labels.
func Accuracy(yTrue, yPred mat.Matrix) (float64, error) {
	n, c := yTrue.Dims()
	np, cp := yPred.Dims()
	if c != 1 || cp != 1 {
		return 0, errors.NewValueError("Accuracy", "inputs must be column vectors")
	}
	if n != np {
		return 0, errors.NewDimensionError("Accuracy", n, np, 0)
	}
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty input")
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix is a 2x2 contingency table for binary labels in
// {0, 1}. Rows index the actual class and columns the predicted class,
// with index 0 the negative class.
type ConfusionMatrix struct {
	Counts [2][2]int
}

// NewConfusionMatrix tabulates yTrue against yPred. Labels outside
// {0, 1} are rejected.
func NewConfusionMatrix(yTrue, yPred mat.Matrix) (*ConfusionMatrix, error) {
	n, c := yTrue.Dims()
	np, cp := yPred.Dims()
	if c != 1 || cp != 1 {
		return nil, errors.NewValueError("ConfusionMatrix", "inputs must be column vectors")
	}
	if n != np {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, np, 0)
	}
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty input")
	}

	cm := &ConfusionMatrix{}
	for i := 0; i < n; i++ {
		a := yTrue.At(i, 0)
		p := yPred.At(i, 0)
		if (a != 0 && a != 1) || (p != 0 && p != 1) {
			return nil, errors.NewValueError("ConfusionMatrix",
				fmt.Sprintf("labels must be 0 or 1, got actual=%v predicted=%v at row %d", a, p, i))
		}
		cm.Counts[int(a)][int(p)]++
	}
	return cm, nil
}

// Total returns the number of observations tabulated.
func (cm *ConfusionMatrix) Total() int {
	return cm.Counts[0][0] + cm.Counts[0][1] + cm.Counts[1][0] + cm.Counts[1][1]
}

// Accuracy returns (TN + TP) / total, matching Accuracy on the same
// label vectors.
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := cm.Total()
	if total == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("accuracy", "an empty confusion matrix", 0))
		return 0
	}
	return float64(cm.Counts[0][0]+cm.Counts[1][1]) / float64(total)
}

// TruePositives returns the count of actual-positive, predicted-positive rows.
func (cm *ConfusionMatrix) TruePositives() int { return cm.Counts[1][1] }

// TrueNegatives returns the count of actual-negative, predicted-negative rows.
func (cm *ConfusionMatrix) TrueNegatives() int { return cm.Counts[0][0] }

// FalsePositives returns the count of actual-negative, predicted-positive rows.
func (cm *ConfusionMatrix) FalsePositives() int { return cm.Counts[0][1] }

// FalseNegatives returns the count of actual-positive, predicted-negative rows.
func (cm *ConfusionMatrix) FalseNegatives() int { return cm.Counts[1][0] }

// String renders the table with actual classes as rows.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%10s %10s %10s\n", "", "pred 0", "pred 1")
	fmt.Fprintf(&b, "%10s %10d %10d\n", "actual 0", cm.Counts[0][0], cm.Counts[0][1])
	fmt.Fprintf(&b, "%10s %10d %10d", "actual 1", cm.Counts[1][0], cm.Counts[1][1])
	return b.String()
}

// BinarizeProba maps each probability in the column vector p to the
// label above when p > threshold and below otherwise.
func BinarizeProba(p mat.Matrix, threshold, above, below float64) (*mat.Dense, error) {
	n, c := p.Dims()
	if c != 1 {
		return nil, errors.NewValueError("BinarizeProba", "probabilities must be a column vector")
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.NewValidationError("threshold", "must be in [0, 1]", threshold)
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		if p.At(i, 0) > threshold {
			out.Set(i, 0, above)
		} else {
			out.Set(i, 0, below)
		}
	}
	return out, nil
}
