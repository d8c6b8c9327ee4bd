// Package ensemble implements the bagged tree ensemble used by the
// attrition classifier path.
package ensemble

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/core/model"
	"github.com/peopleml/attrition/core/parallel"
	"github.com/peopleml/attrition/pkg/errors"
	"github.com/peopleml/attrition/tree"
)

// RandomForestClassifier bags seeded decision trees over bootstrap
// samples and predicts by majority vote. Defaults match the analysis:
// 100 estimators, entropy splitting, seed 0.
type RandomForestClassifier struct {
	state *model.StateManager

	nEstimators int
	maxDepth    int
	criterion   string
	maxFeatures int // 0 means floor(sqrt(p))
	bootstrap   bool
	randomState int64

	trees   []*tree.DecisionTreeClassifier
	classes []int
}

// RandomForestOption is a functional option for RandomForestClassifier.
type RandomForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.nEstimators = n }
}

// WithForestMaxDepth limits the depth of each tree.
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.maxDepth = d }
}

// WithForestCriterion selects the impurity criterion for all trees.
func WithForestCriterion(c string) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.criterion = c }
}

// WithForestMaxFeatures sets the per-split feature sample size.
func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.maxFeatures = k }
}

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.bootstrap = b }
}

// WithForestRandomState seeds bootstrap sampling and split selection.
// Tree i derives its own seed as randomState+i, so the whole ensemble is
// reproducible from one value.
func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForestClassifier) { rf.randomState = seed }
}

// NewRandomForestClassifier initializes the forest with the analysis
// defaults.
func NewRandomForestClassifier(opts ...RandomForestOption) *RandomForestClassifier {
	rf := &RandomForestClassifier{
		state:       model.NewStateManager(),
		nEstimators: 100,
		criterion:   "entropy",
		bootstrap:   true,
		randomState: 0,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest on X (n x p) and integer class labels in the
// column vector y. Trees are fit in parallel; each tree draws its
// bootstrap sample from its own derived seed.
func (rf *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ny, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("RandomForestClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if ny != n {
		return errors.NewDimensionError("RandomForestClassifier.Fit", n, ny, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector")
	}
	if rf.nEstimators <= 0 {
		return errors.NewValidationError("nEstimators", "must be positive", rf.nEstimators)
	}

	maxFeatures := rf.maxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Floor(math.Sqrt(float64(p))))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	rf.trees = make([]*tree.DecisionTreeClassifier, rf.nEstimators)
	errs := make([]error, rf.nEstimators)

	parallel.Parallelize(rf.nEstimators, func(start, end int) {
		for k := start; k < end; k++ {
			treeSeed := rf.randomState + int64(k)
			rnd := rand.New(rand.NewSource(treeSeed))

			idx := make([]int, n)
			for j := 0; j < n; j++ {
				if rf.bootstrap {
					idx[j] = rnd.Intn(n)
				} else {
					idx[j] = j
				}
			}

			t := tree.NewDecisionTreeClassifier(
				tree.WithMaxDepth(rf.maxDepth),
				tree.WithCriterion(rf.criterion),
				tree.WithMaxFeatures(maxFeatures),
				tree.WithRandomState(treeSeed),
			)
			if err := t.FitIndices(X, y, idx); err != nil {
				errs[k] = err
				return
			}
			rf.trees[k] = t
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	rf.classes = rf.trees[0].Classes()
	rf.state.SetDimensions(p, n)
	rf.state.SetFitted()
	return nil
}

// Classes returns the class labels in the order used by the vote.
func (rf *RandomForestClassifier) Classes() []int {
	return append([]int(nil), rf.classes...)
}

// Predict returns the majority vote of all trees for each row of X.
func (rf *RandomForestClassifier) Predict(X mat.Matrix) (*mat.Dense, error) {
	if err := rf.state.RequireFitted("RandomForestClassifier", "Predict"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	nf, _ := rf.state.GetDimensions()
	if p != nf {
		return nil, errors.NewDimensionError("RandomForestClassifier.Predict", nf, p, 1)
	}

	votes := make([][]int, n)
	for i := range votes {
		votes[i] = make([]int, len(rf.classes))
	}

	preds := make([]*mat.Dense, len(rf.trees))
	errs := make([]error, len(rf.trees))
	parallel.Parallelize(len(rf.trees), func(start, end int) {
		for k := start; k < end; k++ {
			preds[k], errs[k] = rf.trees[k].Predict(X)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	classIdx := make(map[int]int, len(rf.classes))
	for c, lab := range rf.classes {
		classIdx[lab] = c
	}
	for _, p := range preds {
		for i := 0; i < n; i++ {
			votes[i][classIdx[int(p.At(i, 0))]]++
		}
	}

	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		best := 0
		for c := 1; c < len(rf.classes); c++ {
			if votes[i][c] > votes[i][best] {
				best = c
			}
		}
		out.Set(i, 0, float64(rf.classes[best]))
	}
	return out, nil
}

// Score returns the mean accuracy of Predict against y.
func (rf *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	preds, err := rf.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := preds.Dims()
	ny, _ := y.Dims()
	if ny != n {
		return 0, errors.NewDimensionError("RandomForestClassifier.Score", n, ny, 0)
	}
	correct := 0
	for i := 0; i < n; i++ {
		if preds.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
