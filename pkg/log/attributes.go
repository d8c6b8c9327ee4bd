package log

// Standard attribute keys for the analysis pipeline. Hierarchical names
// keep the structured output filterable by concern.
const (
	// DatasetPathKey is the source CSV path.
	DatasetPathKey = "dataset.path"

	// RowsKey is the number of rows in a table or partition.
	RowsKey = "dataset.rows"

	// ColumnsKey is the number of columns in a table.
	ColumnsKey = "dataset.columns"

	// ModelNameKey identifies the model variant.
	// Examples: "BinomialGLM", "LassoLogisticRegression", "RandomForestClassifier"
	ModelNameKey = "model.name"

	// OperationKey specifies the pipeline operation being performed.
	// Standard values: "load", "encode", "split", "fit", "predict", "score"
	OperationKey = "ml.operation"

	// SeedKey is the random seed driving a deterministic operation.
	SeedKey = "split.seed"

	// FractionKey is the test fraction used by the splitter.
	FractionKey = "split.fraction"

	// ThresholdKey is the probability cutoff used by the evaluator.
	ThresholdKey = "eval.threshold"

	// AccuracyKey carries a computed accuracy ratio.
	AccuracyKey = "metric.accuracy"

	// DurationMsKey carries an operation duration in milliseconds.
	DurationMsKey = "duration.ms"
)
