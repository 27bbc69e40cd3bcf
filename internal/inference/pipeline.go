// Package inference turns a raw discount and month into a predicted quantity
// by running them through a fitted scaler and a fitted model.
package inference

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/iwvelando/instax-forecast/internal/artifact"
	"github.com/iwvelando/instax-forecast/pkg/mathutil"
)

// Scaler normalizes raw feature rows.
type Scaler interface {
	Transform(x mat.Matrix) (*mat.Dense, error)
	NumFeatures() int
	Info() artifact.Info
}

// Predictor maps normalized feature rows to predictions.
type Predictor interface {
	Predict(x mat.Matrix) ([]float64, error)
	NumFeatures() int
	Info() artifact.Info
}

// Options configures a Pipeline.
type Options struct {
	ScalerPath  string
	ModelPath   string
	Rounding    mathutil.RoundingPolicy
	MaxDiscount float64
}

// Result is the outcome of one prediction.
type Result struct {
	Features  FeatureVector           `json:"features"`
	Scaled    []float64               `json:"scaled"`
	Raw       float64                 `json:"raw"`
	Quantity  int64                   `json:"quantity"`
	Truncated int64                   `json:"truncated"`
	Rounding  mathutil.RoundingPolicy `json:"rounding"`
}

// ModelInfo describes the loaded artifacts.
type ModelInfo struct {
	Scaler   artifact.Info           `json:"scaler"`
	Model    artifact.Info           `json:"model"`
	Features []string                `json:"features"`
	Rounding mathutil.RoundingPolicy `json:"rounding"`
}

// Pipeline holds a scaler and a predictor for the life of the process. It is
// never modified after construction and is safe for concurrent use.
type Pipeline struct {
	logger      *zap.Logger
	scaler      Scaler
	model       Predictor
	rounding    mathutil.RoundingPolicy
	maxDiscount float64
}

// LoadArtifacts reads the scaler and model documents. Errors wrap
// ErrArtifactNotFound or ErrArtifactCorrupt.
func LoadArtifacts(scalerPath, modelPath string) (*artifact.Scaler, artifact.Model, error) {
	scaler, err := artifact.LoadScaler(scalerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load scaler: %w", err)
	}
	if err := checkFeatureOrder(scalerPath, scaler.FeatureNames()); err != nil {
		return nil, nil, err
	}

	model, err := artifact.LoadModel(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load model: %w", err)
	}
	if err := checkFeatureOrder(modelPath, model.FeatureNames()); err != nil {
		return nil, nil, err
	}

	return scaler, model, nil
}

func checkFeatureOrder(path string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	if !slices.Equal(names, FeatureNames()) {
		return fmt.Errorf("%w: %s: fitted on features %v, expected %v", ErrArtifactCorrupt, path, names, FeatureNames())
	}
	return nil
}

// Load reads both artifacts and returns the pipeline that owns them. It is the
// one-time initialization step; callers share the returned pointer.
func Load(logger *zap.Logger, opts Options) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	scaler, model, err := LoadArtifacts(opts.ScalerPath, opts.ModelPath)
	if err != nil {
		return nil, err
	}
	if scaler.NumFeatures() != model.NumFeatures() {
		return nil, fmt.Errorf("%w: scaler has %d features but model expects %d",
			ErrArtifactCorrupt, scaler.NumFeatures(), model.NumFeatures())
	}

	p := New(logger, scaler, model, opts)
	logger.Info("artifacts loaded",
		zap.String("op", "inference.Load"),
		zap.String("scaler", opts.ScalerPath),
		zap.String("scalerKind", scaler.Info().Kind),
		zap.String("model", opts.ModelPath),
		zap.String("modelKind", model.Info().Kind),
		zap.String("rounding", string(p.rounding)),
	)
	return p, nil
}

// New builds a pipeline around artifacts that are already in memory.
func New(logger *zap.Logger, scaler Scaler, model Predictor, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	rounding := opts.Rounding
	if rounding == "" {
		rounding = mathutil.Round
	}
	return &Pipeline{
		logger:      logger,
		scaler:      scaler,
		model:       model,
		rounding:    rounding,
		maxDiscount: opts.MaxDiscount,
	}
}

// Info returns the loaded artifact metadata.
func (p *Pipeline) Info() ModelInfo {
	return ModelInfo{
		Scaler:   p.scaler.Info(),
		Model:    p.model.Info(),
		Features: FeatureNames(),
		Rounding: p.rounding,
	}
}

// MaxDiscount returns the configured upper discount bound, or 0 when unbounded.
func (p *Pipeline) MaxDiscount() float64 {
	return p.maxDiscount
}

// Predict validates the inputs, scales them and runs the model. Errors wrap
// ErrInvalidInput, ErrTransform or ErrPrediction.
func (p *Pipeline) Predict(discount float64, month int) (Result, error) {
	features := FeatureVector{Discount: discount, Month: month}
	if err := features.Validate(p.maxDiscount); err != nil {
		return Result{}, err
	}

	scaled, err := p.transform(features)
	if err != nil {
		return Result{}, err
	}

	raw, err := p.predict(scaled)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Features:  features,
		Scaled:    mat.Row(nil, 0, scaled),
		Raw:       raw,
		Quantity:  p.rounding.Apply(raw),
		Truncated: mathutil.Truncate.Apply(raw),
		Rounding:  p.rounding,
	}

	p.logger.Debug("prediction computed",
		zap.String("op", "inference.Predict"),
		zap.Float64("discount", discount),
		zap.Int("month", month),
		zap.Float64("raw", raw),
		zap.Int64("quantity", result.Quantity),
	)
	return result, nil
}

// transform runs the scaler and converts any fault inside it into ErrTransform.
func (p *Pipeline) transform(features FeatureVector) (scaled *mat.Dense, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: scaler panicked: %v", ErrTransform, r)
		}
	}()

	scaled, err = p.scaler.Transform(features.Matrix())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransform, err)
	}
	if rows, cols := scaled.Dims(); rows != 1 || cols != len(features.Values()) {
		return nil, fmt.Errorf("%w: scaler returned a %dx%d matrix", ErrTransform, rows, cols)
	}
	return scaled, nil
}

// predict runs the model and converts any fault inside it, including a panic,
// into ErrPrediction.
func (p *Pipeline) predict(scaled *mat.Dense) (raw float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: model panicked: %v", ErrPrediction, r)
		}
	}()

	predictions, err := p.model.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	if len(predictions) != 1 {
		return 0, fmt.Errorf("%w: expected 1 prediction, got %d", ErrPrediction, len(predictions))
	}
	if !mathutil.IsFinite(predictions[0]) {
		return 0, fmt.Errorf("%w: model returned %v", ErrPrediction, predictions[0])
	}
	return predictions[0], nil
}

// IsUserError reports whether err is the caller's to correct.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
