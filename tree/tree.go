// Package tree implements a CART decision tree classifier with entropy
// or gini splitting, the base learner of the random forest ensemble.
package tree

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/core/model"
	"github.com/peopleml/attrition/pkg/errors"
)

// DecisionTreeClassifier is a CART-style classifier over numeric
// features. Categorical features are expected as integer codes.
type DecisionTreeClassifier struct {
	state *model.StateManager

	maxDepth        int // 0 means no depth limit
	minSamplesSplit int
	minSamplesLeaf  int
	criterion       string // "gini" or "entropy"
	maxFeatures     int    // 0 means use all features
	randomState     int64

	root    *node
	classes []int
}

// node is one tree node; leaves carry the class distribution.
type node struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *node
	right     *node

	n      int
	probas []float64
}

// Option is a functional option for DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithMaxDepth limits the tree depth (root depth is 0).
func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.maxDepth = d } }

// WithMinSamplesSplit sets the minimum samples required to attempt a split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesLeaf = n }
}

// WithCriterion selects the impurity criterion, "gini" or "entropy".
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.criterion = c } }

// WithMaxFeatures samples this many features at each split.
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeClassifier) { t.maxFeatures = k } }

// WithRandomState seeds the feature subsampling.
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.randomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with sensible defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
		criterion:       "gini",
		randomState:     0,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Classes returns the class labels in first-seen order.
func (t *DecisionTreeClassifier) Classes() []int {
	return append([]int(nil), t.classes...)
}

// Fit grows the tree on X (n x p) and integer class labels in the
// column vector y.
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	n, p := X.Dims()
	ny, cy := y.Dims()

	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if ny != n {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", n, ny, 0)
	}
	if cy != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}
	if t.criterion != "gini" && t.criterion != "entropy" {
		return errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", t.criterion)
	}

	rows, labels := matrixToRows(X, y)
	return t.fitRows(rows, labels, identityIndices(n), p)
}

// FitIndices grows the tree on the given sample indices of X, so a
// bootstrap caller can reuse the backing data without copying rows.
func (t *DecisionTreeClassifier) FitIndices(X, y mat.Matrix, idx []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(idx) == 0 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "empty sample index set")
	}
	rows, labels := matrixToRows(X, y)
	return t.fitRows(rows, labels, append([]int(nil), idx...), p)
}

func (t *DecisionTreeClassifier) fitRows(X [][]float64, y []int, idx []int, p int) error {
	// Class list in first-seen order over the full label set, so every
	// bootstrap tree of an ensemble shares the same proba layout.
	classMap := map[int]int{}
	t.classes = nil
	for _, lab := range y {
		if _, ok := classMap[lab]; !ok {
			classMap[lab] = len(t.classes)
			t.classes = append(t.classes, lab)
		}
	}

	rnd := rand.New(rand.NewSource(t.randomState))
	impurity := giniFromCounts
	if t.criterion == "entropy" {
		impurity = entropyFromCounts
	}

	t.root = t.buildNode(X, y, classMap, idx, 0, p, impurity, rnd)
	t.state.SetDimensions(p, len(idx))
	t.state.SetFitted()
	return nil
}

func (t *DecisionTreeClassifier) buildNode(X [][]float64, y []int, classMap map[int]int, idx []int, depth, p int, impurity func([]int) float64, rnd *rand.Rand) *node {
	nd := &node{n: len(idx)}

	counts := make([]int, len(t.classes))
	for _, ii := range idx {
		counts[classMap[y[ii]]]++
	}

	if isPure(counts) || len(idx) < t.minSamplesSplit {
		return makeLeaf(nd, counts)
	}
	if t.maxDepth > 0 && depth >= t.maxDepth {
		return makeLeaf(nd, counts)
	}

	featIndices := identityIndices(p)
	if t.maxFeatures > 0 && t.maxFeatures < p {
		rnd.Shuffle(p, func(a, b int) {
			featIndices[a], featIndices[b] = featIndices[b], featIndices[a]
		})
		featIndices = featIndices[:t.maxFeatures]
	}

	parentImpurity := impurity(counts)
	best := splitResult{feature: -1}

	for _, f := range featIndices {
		if res := t.bestSplitForFeature(X, y, classMap, idx, f, parentImpurity, impurity); res.gain > best.gain {
			best = res
		}
	}

	if best.feature < 0 || best.gain <= 0 {
		return makeLeaf(nd, counts)
	}

	nd.feature = best.feature
	nd.threshold = best.threshold
	nd.left = t.buildNode(X, y, classMap, best.leftIdx, depth+1, p, impurity, rnd)
	nd.right = t.buildNode(X, y, classMap, best.rightIdx, depth+1, p, impurity, rnd)
	return nd
}

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	leftIdx   []int
	rightIdx  []int
}

type valueIndex struct {
	v float64
	i int
}

// bestSplitForFeature scans the midpoints between consecutive distinct
// values of feature f for the split with the highest impurity gain.
func (t *DecisionTreeClassifier) bestSplitForFeature(X [][]float64, y []int, classMap map[int]int, idx []int, f int, parentImpurity float64, impurity func([]int) float64) splitResult {
	best := splitResult{feature: -1}

	ordered := make([]valueIndex, len(idx))
	for k, ii := range idx {
		ordered[k] = valueIndex{v: X[ii][f], i: ii}
	}
	sort.Slice(ordered, func(a, b int) bool { return ordered[a].v < ordered[b].v })

	total := len(ordered)
	leftCounts := make([]int, len(t.classes))
	rightCounts := make([]int, len(t.classes))
	for _, vi := range ordered {
		rightCounts[classMap[y[vi.i]]]++
	}

	for s := 1; s < total; s++ {
		ci := classMap[y[ordered[s-1].i]]
		leftCounts[ci]++
		rightCounts[ci]--

		if ordered[s].v == ordered[s-1].v {
			continue
		}
		if s < t.minSamplesLeaf || total-s < t.minSamplesLeaf {
			continue
		}

		weighted := (float64(s)/float64(total))*impurity(leftCounts) +
			(float64(total-s)/float64(total))*impurity(rightCounts)
		gain := parentImpurity - weighted
		if gain > best.gain {
			best = splitResult{
				gain:      gain,
				feature:   f,
				threshold: (ordered[s-1].v + ordered[s].v) / 2,
			}
			best.leftIdx = make([]int, s)
			best.rightIdx = make([]int, total-s)
			for k := 0; k < s; k++ {
				best.leftIdx[k] = ordered[k].i
			}
			for k := s; k < total; k++ {
				best.rightIdx[k-s] = ordered[k].i
			}
		}
	}
	return best
}

func makeLeaf(nd *node, counts []int) *node {
	nd.isLeaf = true
	nd.probas = countsToProbas(counts)
	return nd
}

// Predict returns the majority-class label for each row of X.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (*mat.Dense, error) {
	probas, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	n, _ := probas.Dims()
	out := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, float64(t.classes[argmaxRow(probas, i)]))
	}
	return out, nil
}

// PredictProba returns the per-class probability distribution for each
// row of X, columns ordered as Classes().
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if err := t.state.RequireFitted("DecisionTreeClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	nf, _ := t.state.GetDimensions()
	if p != nf {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", nf, p, 1)
	}

	out := mat.NewDense(n, len(t.classes), nil)
	row := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row[j] = X.At(i, j)
		}
		nd := t.root
		for !nd.isLeaf {
			if row[nd.feature] <= nd.threshold {
				nd = nd.left
			} else {
				nd = nd.right
			}
		}
		for c, pr := range nd.probas {
			out.Set(i, c, pr)
		}
	}
	return out, nil
}

func matrixToRows(X, y mat.Matrix) ([][]float64, []int) {
	n, p := X.Dims()
	rows := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, p)
		for j := 0; j < p; j++ {
			rows[i][j] = X.At(i, j)
		}
		labels[i] = int(y.At(i, 0))
	}
	return rows, labels
}

func identityIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func giniFromCounts(counts []int) float64 {
	var n float64
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	var n float64
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	probas := make([]float64, len(counts))
	if total == 0 {
		return probas
	}
	for i, c := range counts {
		probas[i] = float64(c) / float64(total)
	}
	return probas
}

func argmaxRow(m mat.Matrix, row int) int {
	_, cols := m.Dims()
	best := 0
	for c := 1; c < cols; c++ {
		if m.At(row, c) > m.At(row, best) {
			best = c
		}
	}
	return best
}
