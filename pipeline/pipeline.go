// Package pipeline orchestrates the two attrition analysis paths: the
// inferential binomial GLM over three numeric predictors and the
// predictive classifier comparison over the encoded feature set.
package pipeline

import (
	"log/slog"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/peopleml/attrition/dataset"
	"github.com/peopleml/attrition/ensemble"
	"github.com/peopleml/attrition/figures"
	"github.com/peopleml/attrition/linear"
	"github.com/peopleml/attrition/metrics"
	"github.com/peopleml/attrition/pkg/errors"
	applog "github.com/peopleml/attrition/pkg/log"
)

// Config holds the tunable parameters of a pipeline run.
type Config struct {
	// DataPath is the HR attrition CSV to analyze.
	DataPath string

	// Seed drives every random operation of a run: splits, bootstrap
	// sampling and feature subsampling.
	Seed int64

	// Threshold is the probability cutoff for binarizing GLM predictions.
	Threshold float64

	// GLMTestFraction is the held-out fraction for scoring the GLM. The
	// inferential fit itself uses all rows.
	GLMTestFraction float64

	// ClassifierTestFraction is the test fraction of the classifier split.
	ClassifierTestFraction float64

	// LassoC is the inverse regularization strength of the L1 logistic
	// regression.
	LassoC float64

	// NEstimators is the number of trees in the random forest.
	NEstimators int

	// FiguresDir, when non-empty, receives the rendered PNG figures.
	FiguresDir string
}

// DefaultConfig returns the parameters of the original analysis:
// seed 0, threshold 0.5, GLM holdout 0.25, classifier split 0.2,
// C=1.0 and 100 trees.
func DefaultConfig() Config {
	return Config{
		Seed:                   0,
		Threshold:              0.5,
		GLMTestFraction:        0.25,
		ClassifierTestFraction: 0.2,
		LassoC:                 1.0,
		NEstimators:            100,
	}
}

func (c Config) validate() error {
	if c.DataPath == "" {
		return errors.NewValidationError("DataPath", "must not be empty", c.DataPath)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.NewValidationError("Threshold", "must be in [0, 1]", c.Threshold)
	}
	return nil
}

// GLMResult is the outcome of the inferential path.
type GLMResult struct {
	// Coefficients is the fitted summary table, intercept first.
	Coefficients []linear.Coefficient

	// Summary is the rendered coefficient table.
	Summary string

	// PredictedStay and PredictedLeave count the binarized full-data
	// predictions. The GLM codes "No" (stays) as 1, so a predicted
	// positive means the model expects the employee to stay.
	PredictedStay  int
	PredictedLeave int

	// TrainAccuracy is the full-data accuracy at the threshold.
	TrainAccuracy float64

	// HoldoutAccuracy scores a refit on the complementary split against
	// the held-out fraction.
	HoldoutAccuracy float64
}

// RunGLM executes the inferential path: fit the binomial GLM on the
// full dataset, report its coefficient table, binarize the fitted
// probabilities at the configured threshold, and score a held-out
// refit for reference.
func RunGLM(cfg Config) (*GLMResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	t, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded",
		slog.String(applog.DatasetPathKey, cfg.DataPath),
		slog.Int(applog.RowsKey, t.NumRows()),
		slog.Int(applog.ColumnsKey, t.NumCols()))
	t.AuditMissing()

	predictors, err := t.Select(dataset.GLMPredictors...)
	if err != nil {
		return nil, err
	}
	X, err := predictors.Matrix()
	if err != nil {
		return nil, err
	}

	target, err := t.Column(dataset.ResponseColumn)
	if err != nil {
		return nil, err
	}
	// Staying is the modeled event on this path.
	y, err := dataset.EncodeTarget(target, "No")
	if err != nil {
		return nil, err
	}

	glm := linear.NewBinomialGLM(linear.WithGLMFeatureNames(dataset.GLMPredictors...))
	if err := glm.Fit(X, y); err != nil {
		return nil, err
	}
	slog.Info("model fitted",
		slog.String(applog.ModelNameKey, "BinomialGLM"),
		slog.String(applog.OperationKey, "fit"),
		slog.Int64(applog.DurationMsKey, time.Since(start).Milliseconds()))

	res := &GLMResult{}
	if res.Coefficients, err = glm.Coefficients(); err != nil {
		return nil, err
	}
	if res.Summary, err = glm.Summary(); err != nil {
		return nil, err
	}

	probs, err := glm.PredictProba(X)
	if err != nil {
		return nil, err
	}
	labels, err := metrics.BinarizeProba(probs, cfg.Threshold, 1, 0)
	if err != nil {
		return nil, err
	}
	n, _ := labels.Dims()
	for i := 0; i < n; i++ {
		if labels.At(i, 0) == 1 {
			res.PredictedStay++
		} else {
			res.PredictedLeave++
		}
	}
	if res.TrainAccuracy, err = metrics.Accuracy(y, labels); err != nil {
		return nil, err
	}

	if res.HoldoutAccuracy, err = glmHoldout(X, y, cfg); err != nil {
		return nil, err
	}
	slog.Info("evaluation complete",
		slog.String(applog.ModelNameKey, "BinomialGLM"),
		slog.Float64(applog.ThresholdKey, cfg.Threshold),
		slog.Float64(applog.AccuracyKey, res.TrainAccuracy))

	if cfg.FiguresDir != "" {
		if err := renderGLMFigures(t, res.Coefficients, cfg.FiguresDir); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// glmHoldout refits on the train partition and scores the held-out rows.
func glmHoldout(X, y mat.Matrix, cfg Config) (float64, error) {
	XTrain, XTest, yTrain, yTest, err := dataset.TrainTestSplit(X, y, cfg.GLMTestFraction, cfg.Seed)
	if err != nil {
		return 0, err
	}
	slog.Info("dataset split",
		slog.String(applog.OperationKey, "split"),
		slog.Float64(applog.FractionKey, cfg.GLMTestFraction),
		slog.Int64(applog.SeedKey, cfg.Seed))

	glm := linear.NewBinomialGLM()
	if err := glm.Fit(XTrain, yTrain); err != nil {
		return 0, err
	}
	probs, err := glm.PredictProba(XTest)
	if err != nil {
		return 0, err
	}
	labels, err := metrics.BinarizeProba(probs, cfg.Threshold, 1, 0)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(yTest, labels)
}

func renderGLMFigures(t *dataset.Table, coefs []linear.Coefficient, dir string) error {
	target, err := t.Column(dataset.ResponseColumn)
	if err != nil {
		return err
	}
	for _, name := range dataset.GLMPredictors {
		col, err := t.Column(name)
		if err != nil {
			return err
		}
		out := filepath.Join(dir, "hist_"+name+".png")
		if err := figures.Histogram(col.Floats, 15, name, name, out); err != nil {
			return err
		}
		// One histogram per attrition group shows the distribution shift.
		for _, label := range []string{"Yes", "No"} {
			var group []float64
			for i, v := range target.Strings {
				if v == label {
					group = append(group, col.Floats[i])
				}
			}
			if len(group) == 0 {
				continue
			}
			out := filepath.Join(dir, "hist_"+name+"_attrition_"+label+".png")
			title := name + " (Attrition = " + label + ")"
			if err := figures.Histogram(group, 15, title, name, out); err != nil {
				return err
			}
		}
	}
	return figures.CoefficientBars(coefs, "Attrition GLM coefficients", filepath.Join(dir, "glm_coefficients.png"))
}

// ClassifierResult is the outcome of the predictive path.
type ClassifierResult struct {
	// Features is the validated feature classification of the input.
	Features *dataset.FeatureClassification

	// TrainRows and TestRows record the split sizes.
	TrainRows int
	TestRows  int

	// LassoAccuracy is the L1 logistic regression test accuracy.
	LassoAccuracy float64

	// LassoNonZero counts the surviving lasso coefficients.
	LassoNonZero int

	// LassoErr records a failed lasso fit. The other variant still runs.
	LassoErr error

	// ForestAccuracy is the random forest test accuracy.
	ForestAccuracy float64

	// ForestConfusion tabulates the forest test predictions.
	ForestConfusion *metrics.ConfusionMatrix

	// ForestErr records a failed forest fit. The other variant still runs.
	ForestErr error
}

// RunClassifiers executes the predictive path: classify and encode the
// features, split once, then fit the lasso logistic regression and the
// random forest on the same partition so their accuracies compare
// directly. A failed fit is recorded on the result and does not stop
// the other variant; shared-stage failures abort the run.
func RunClassifiers(cfg Config) (*ClassifierResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	t, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset loaded",
		slog.String(applog.DatasetPathKey, cfg.DataPath),
		slog.Int(applog.RowsKey, t.NumRows()),
		slog.Int(applog.ColumnsKey, t.NumCols()))
	t.AuditMissing()

	fc, err := dataset.ClassifyFeatures(t, dataset.DeclaredCategorical, dataset.ResponseColumn)
	if err != nil {
		return nil, err
	}

	target, err := t.Column(dataset.ResponseColumn)
	if err != nil {
		return nil, err
	}
	// Leaving is the modeled event on this path.
	y, err := dataset.EncodeTarget(target, "Yes")
	if err != nil {
		return nil, err
	}

	encoded, _, err := dataset.EncodeColumns(t, fc.Object)
	if err != nil {
		return nil, err
	}
	features, err := encoded.Drop(dataset.ResponseColumn)
	if err != nil {
		return nil, err
	}
	X, err := features.Matrix()
	if err != nil {
		return nil, err
	}

	XTrain, XTest, yTrain, yTest, err := dataset.TrainTestSplit(X, y, cfg.ClassifierTestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	slog.Info("dataset split",
		slog.String(applog.OperationKey, "split"),
		slog.Float64(applog.FractionKey, cfg.ClassifierTestFraction),
		slog.Int64(applog.SeedKey, cfg.Seed))

	res := &ClassifierResult{Features: fc}
	res.TrainRows, _ = XTrain.Dims()
	res.TestRows, _ = XTest.Dims()

	res.LassoErr = runLasso(cfg, res, XTrain, XTest, yTrain, yTest)
	if res.LassoErr != nil {
		slog.Error("model variant failed",
			slog.String(applog.ModelNameKey, "LassoLogisticRegression"),
			applog.ErrAttr(res.LassoErr))
	}

	res.ForestErr = runForest(cfg, res, XTrain, XTest, yTrain, yTest)
	if res.ForestErr != nil {
		slog.Error("model variant failed",
			slog.String(applog.ModelNameKey, "RandomForestClassifier"),
			applog.ErrAttr(res.ForestErr))
	}

	return res, nil
}

func runLasso(cfg Config, res *ClassifierResult, XTrain, XTest, yTrain, yTest mat.Matrix) error {
	start := time.Now()
	lasso := linear.NewLassoLogisticRegression(linear.WithLassoC(cfg.LassoC))
	if err := lasso.Fit(XTrain, yTrain); err != nil {
		return err
	}
	acc, err := lasso.Score(XTest, yTest)
	if err != nil {
		return err
	}
	res.LassoAccuracy = acc
	res.LassoNonZero = lasso.NNonZero()
	slog.Info("model evaluated",
		slog.String(applog.ModelNameKey, "LassoLogisticRegression"),
		slog.Float64(applog.AccuracyKey, acc),
		slog.Int64(applog.DurationMsKey, time.Since(start).Milliseconds()))
	return nil
}

func runForest(cfg Config, res *ClassifierResult, XTrain, XTest, yTrain, yTest mat.Matrix) error {
	start := time.Now()
	forest := ensemble.NewRandomForestClassifier(
		ensemble.WithNEstimators(cfg.NEstimators),
		ensemble.WithForestRandomState(cfg.Seed),
	)
	if err := forest.Fit(XTrain, yTrain); err != nil {
		return err
	}
	preds, err := forest.Predict(XTest)
	if err != nil {
		return err
	}
	if res.ForestAccuracy, err = metrics.Accuracy(yTest, preds); err != nil {
		return err
	}
	if res.ForestConfusion, err = metrics.NewConfusionMatrix(yTest, preds); err != nil {
		return err
	}
	slog.Info("model evaluated",
		slog.String(applog.ModelNameKey, "RandomForestClassifier"),
		slog.Float64(applog.AccuracyKey, res.ForestAccuracy),
		slog.Int64(applog.DurationMsKey, time.Since(start).Milliseconds()))
	return nil
}
