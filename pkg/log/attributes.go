// Standard attribute keys for structured logging of factor-model operations.
//
// Using these keys keeps log output consistent across packages and enables
// filtering on hierarchical names (e.g. "data.samples", "ml.operation").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the transform or estimator type.
	// Examples: "FactorExtractor", "Standardizer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "svd", "preprocessing", "metrics"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of rows in the frame being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of factor columns being processed.
	FeaturesKey = "data.features"

	// ComponentsKey indicates the number of retained SVD components.
	ComponentsKey = "svd.components"
)

// Performance metrics.
const (
	// DurationMsKey records elapsed operation time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// VarianceExplainedKey records the fraction of variance captured by the
	// retained components.
	VarianceExplainedKey = "svd.variance_explained"
)
