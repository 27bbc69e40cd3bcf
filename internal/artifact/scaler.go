package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// Scaler kinds.
const (
	KindStandard = "standard"
	KindMinMax   = "minmax"
)

type scalerDocument struct {
	Metadata `yaml:",inline"`
	Mean     []float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Scale    []float64 `json:"scale" yaml:"scale"`
	Min      []float64 `json:"min,omitempty" yaml:"min,omitempty"`
}

// Scaler is a fitted per-feature affine transform. It is immutable once built
// and safe for concurrent use.
type Scaler struct {
	meta  Metadata
	path  string
	mean  []float64
	scale []float64
	min   []float64
}

// NewStandardScaler builds a scaler computing (x - mean) / scale per feature.
// A zero scale leaves the centred value unscaled.
func NewStandardScaler(mean, scale []float64) (*Scaler, error) {
	doc := scalerDocument{
		Metadata: Metadata{Format: constants.ScalerFormat, Version: constants.ArtifactVersion, Kind: KindStandard},
		Mean:     mean,
		Scale:    scale,
	}
	return newScaler(doc, "")
}

// NewMinMaxScaler builds a scaler computing x * scale + min per feature.
func NewMinMaxScaler(mins, scale []float64) (*Scaler, error) {
	doc := scalerDocument{
		Metadata: Metadata{Format: constants.ScalerFormat, Version: constants.ArtifactVersion, Kind: KindMinMax},
		Min:      mins,
		Scale:    scale,
	}
	return newScaler(doc, "")
}

// LoadScaler reads a scaler document from path.
func LoadScaler(path string) (*Scaler, error) {
	var doc scalerDocument
	if err := readDocument(path, &doc); err != nil {
		return nil, err
	}
	s, err := newScaler(doc, path)
	if err != nil {
		return nil, corrupt(path, err)
	}
	return s, nil
}

func newScaler(doc scalerDocument, path string) (*Scaler, error) {
	width := len(doc.Scale)
	if width == 0 {
		return nil, fmt.Errorf("scaler has no features")
	}
	if err := doc.check(constants.ScalerFormat, width); err != nil {
		return nil, err
	}
	if err := checkFinite("scale", doc.Scale...); err != nil {
		return nil, err
	}

	s := &Scaler{meta: doc.Metadata, path: path, scale: append([]float64(nil), doc.Scale...)}
	switch doc.Kind {
	case KindStandard:
		if len(doc.Mean) != width {
			return nil, fmt.Errorf("standard scaler has %d means for %d scales", len(doc.Mean), width)
		}
		if err := checkFinite("mean", doc.Mean...); err != nil {
			return nil, err
		}
		s.mean = append([]float64(nil), doc.Mean...)
		for i, v := range s.scale {
			if v == 0 {
				s.scale[i] = 1
			}
		}
	case KindMinMax:
		if len(doc.Min) != width {
			return nil, fmt.Errorf("minmax scaler has %d minimums for %d scales", len(doc.Min), width)
		}
		if err := checkFinite("min", doc.Min...); err != nil {
			return nil, err
		}
		s.min = append([]float64(nil), doc.Min...)
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", doc.Kind)
	}
	return s, nil
}

// NumFeatures returns the number of columns the scaler accepts.
func (s *Scaler) NumFeatures() int {
	return len(s.scale)
}

// FeatureNames returns the fitted feature order, if the document recorded it.
func (s *Scaler) FeatureNames() []string {
	return append([]string(nil), s.meta.Features...)
}

// Info describes the scaler.
func (s *Scaler) Info() Info {
	return s.meta.info(s.path)
}

// Transform returns a new matrix holding the scaled rows of x.
func (s *Scaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if cols != s.NumFeatures() {
		return nil, fmt.Errorf("%w: scaler expects %d features, got %d", ErrFeatureMismatch, s.NumFeatures(), cols)
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, j int, v float64) float64 {
		if s.meta.Kind == KindMinMax {
			return v*s.scale[j] + s.min[j]
		}
		return (v - s.mean[j]) / s.scale[j]
	}, x)
	return out, nil
}
