// Package constants provides shared constants for the instax-forecast application.
package constants

// Feature names in the order the scaler and model were fitted on.
const (
	// FeatureDiscount is the discount amount in IDR.
	FeatureDiscount = "discount"

	// FeatureMonth is the sales month, 1 through 12.
	FeatureMonth = "month"

	// FeatureCount is the width of a feature vector.
	FeatureCount = 2
)

// Input domain constants
const (
	// MinMonth is January
	MinMonth = 1

	// MaxMonth is December
	MaxMonth = 12

	// DefaultMaxDiscount is the upper bound the input form accepts (IDR)
	DefaultMaxDiscount = 1000000.0

	// DiscountStep is the increment used by the discount input widget (IDR)
	DiscountStep = 1000.0

	// DecimalPrecision is the precision for displaying raw predictions (2 decimal places)
	DecimalPrecision = 100
)

// Artifact format constants
const (
	// ScalerFormat identifies a scaler artifact document
	ScalerFormat = "instax-scaler"

	// ModelFormat identifies a predictor artifact document
	ModelFormat = "instax-model"

	// ArtifactVersion is the only artifact schema version understood by this build
	ArtifactVersion = 1

	// DefaultScalerFile is the default scaler artifact path
	DefaultScalerFile = "scaler.json"

	// DefaultModelFile is the default predictor artifact path
	DefaultModelFile = "instax_model.json"
)

// Rounding policy constants
const (
	// RoundingRound rounds half away from zero
	RoundingRound = "round"

	// RoundingHalfEven rounds half to even
	RoundingHalfEven = "half-even"

	// RoundingTruncate truncates toward zero
	RoundingTruncate = "truncate"

	// DefaultRounding is the display policy used when none is configured
	DefaultRounding = RoundingRound
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// DefaultLocale is the locale used for number formatting
	DefaultLocale = "en"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "INSTAX"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultReadTimeoutSeconds bounds reading a request
	DefaultReadTimeoutSeconds = 10

	// DefaultWriteTimeoutSeconds bounds writing a response
	DefaultWriteTimeoutSeconds = 10

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown
	DefaultShutdownTimeoutSeconds = 5
)

// Log file rotation defaults
const (
	// DefaultLogMaxSizeMB is the size at which the log file is rotated
	DefaultLogMaxSizeMB = 50

	// DefaultLogMaxBackups is the number of rotated files kept
	DefaultLogMaxBackups = 3

	// DefaultLogMaxAgeDays is the age after which rotated files are removed
	DefaultLogMaxAgeDays = 28
)

// Report confidence thresholds
const (
	// ConfidenceHighThreshold marks a high-confidence prediction
	ConfidenceHighThreshold = 3.0

	// ConfidenceMediumThreshold marks a medium-confidence prediction
	ConfidenceMediumThreshold = 2.0
)
