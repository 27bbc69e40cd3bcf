package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/datetime"
)

// FeatureVector is one row of model input.
type FeatureVector struct {
	Discount float64 `json:"discount"`
	Month    int     `json:"month"`
}

// FeatureNames returns the fitted feature order.
func FeatureNames() []string {
	return []string{constants.FeatureDiscount, constants.FeatureMonth}
}

// Values returns the features in fitted order. Reordering this slice requires
// refitting the artifacts.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Discount, float64(f.Month)}
}

// Matrix returns the vector as a 1xN matrix.
func (f FeatureVector) Matrix() *mat.Dense {
	values := f.Values()
	return mat.NewDense(1, len(values), values)
}

// Validate checks the vector against its domain. maxDiscount <= 0 disables
// the upper discount bound.
func (f FeatureVector) Validate(maxDiscount float64) error {
	if math.IsNaN(f.Discount) || math.IsInf(f.Discount, 0) {
		return fmt.Errorf("%w: discount must be a finite number", ErrInvalidInput)
	}
	if f.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative, got %g", ErrInvalidInput, f.Discount)
	}
	if maxDiscount > 0 && f.Discount > maxDiscount {
		return fmt.Errorf("%w: discount must not exceed %g, got %g", ErrInvalidInput, maxDiscount, f.Discount)
	}
	if !datetime.ValidMonth(f.Month) {
		return fmt.Errorf("%w: month must be between %d and %d, got %d",
			ErrInvalidInput, constants.MinMonth, constants.MaxMonth, f.Month)
	}
	return nil
}
