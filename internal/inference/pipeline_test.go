package inference

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/iwvelando/instax-forecast/internal/artifact"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/mathutil"
	"github.com/iwvelando/instax-forecast/pkg/testutil"
)

type countingScaler struct {
	calls int
	width int
	err   error
	panic bool
}

func (s *countingScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	s.calls++
	if s.panic {
		panic("scaler exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return mat.DenseCopyOf(x), nil
}

func (s *countingScaler) NumFeatures() int    { return s.width }
func (s *countingScaler) Info() artifact.Info { return artifact.Info{Kind: "fake"} }

type stubPredictor struct {
	calls  int
	values []float64
	err    error
	panic  bool
}

func (m *stubPredictor) Predict(mat.Matrix) ([]float64, error) {
	m.calls++
	if m.panic {
		panic("model exploded")
	}
	return m.values, m.err
}

func (m *stubPredictor) NumFeatures() int    { return 2 }
func (m *stubPredictor) Info() artifact.Info { return artifact.Info{Kind: "stub"} }

func loadFixturePipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()

	opts.ScalerPath, opts.ModelPath = testutil.WriteArtifacts(t)
	p, err := Load(zap.NewNop(), opts)
	require.NoError(t, err)
	return p
}

func TestPredictScenarios(t *testing.T) {
	p := loadFixturePipeline(t, Options{})

	tests := []struct {
		name     string
		discount float64
		month    int
	}{
		{name: "no discount in December", discount: 0, month: 12},
		{name: "large discount in June", discount: 50000, month: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Predict(tt.discount, tt.month)
			require.NoError(t, err)

			assert.InDelta(t, testutil.ExpectedLinear(tt.discount, tt.month), result.Raw, 1e-9)
			assert.Equal(t, int64(math.Round(result.Raw)), result.Quantity)
			assert.Equal(t, int64(math.Trunc(result.Raw)), result.Truncated)
			assert.Equal(t, mathutil.Round, result.Rounding)
			assert.Equal(t, FeatureVector{Discount: tt.discount, Month: tt.month}, result.Features)
			assert.Len(t, result.Scaled, constants.FeatureCount)
		})
	}
}

func TestPredictFiniteOverInputDomain(t *testing.T) {
	p := loadFixturePipeline(t, Options{MaxDiscount: constants.DefaultMaxDiscount})

	for discount := 0.0; discount <= 1000000; discount += 12500 {
		for month := 1; month <= 12; month++ {
			result, err := p.Predict(discount, month)
			require.NoError(t, err, "discount=%v month=%d", discount, month)
			require.True(t, mathutil.IsFinite(result.Raw), "discount=%v month=%d raw=%v", discount, month, result.Raw)
		}
	}
}

func TestPredictIdempotent(t *testing.T) {
	p := loadFixturePipeline(t, Options{})

	first, err := p.Predict(30000, 11)
	require.NoError(t, err)
	second, err := p.Predict(30000, 11)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFeatureOrderMatters(t *testing.T) {
	scalerPath, modelPath := testutil.WriteArtifacts(t)
	scaler, model, err := LoadArtifacts(scalerPath, modelPath)
	require.NoError(t, err)

	p := New(zap.NewNop(), scaler, model, Options{})
	result, err := p.Predict(0, 12)
	require.NoError(t, err)

	swapped, err := scaler.Transform(mat.NewDense(1, 2, []float64{12, 0}))
	require.NoError(t, err)
	predictions, err := model.Predict(swapped)
	require.NoError(t, err)

	assert.NotEqual(t, result.Raw, predictions[0])
	assert.Equal(t, []float64{0, 12}, result.Features.Values())
}

func TestPredictInvalidInputSkipsArtifacts(t *testing.T) {
	tests := []struct {
		name     string
		discount float64
		month    int
	}{
		{name: "negative discount", discount: -1, month: 6},
		{name: "NaN discount", discount: math.NaN(), month: 6},
		{name: "infinite discount", discount: math.Inf(1), month: 6},
		{name: "discount above maximum", discount: 1000001, month: 6},
		{name: "month zero", discount: 0, month: 0},
		{name: "month thirteen", discount: 0, month: 13},
		{name: "negative month", discount: 0, month: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaler := &countingScaler{width: 2}
			model := &stubPredictor{values: []float64{1}}
			p := New(nil, scaler, model, Options{MaxDiscount: constants.DefaultMaxDiscount})

			_, err := p.Predict(tt.discount, tt.month)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.True(t, IsUserError(err))
			assert.Zero(t, scaler.calls)
			assert.Zero(t, model.calls)
		})
	}
}

func TestPredictWithoutMaxDiscount(t *testing.T) {
	p := New(nil, &countingScaler{width: 2}, &stubPredictor{values: []float64{5}}, Options{})

	result, err := p.Predict(5e9, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Quantity)
}

func TestPredictTransformError(t *testing.T) {
	scalerPath := testutil.WriteFile(t, t.TempDir(), "scaler.json",
		`{"format":"instax-scaler","version":1,"kind":"standard","mean":[0,0,0],"scale":[1,1,1]}`)
	scaler, err := artifact.LoadScaler(scalerPath)
	require.NoError(t, err)

	model := &stubPredictor{values: []float64{1}}
	p := New(nil, scaler, model, Options{})

	_, err = p.Predict(100, 3)
	assert.ErrorIs(t, err, ErrTransform)
	assert.ErrorIs(t, err, artifact.ErrFeatureMismatch)
	assert.False(t, IsUserError(err))
	assert.Zero(t, model.calls)
}

func TestPredictScalerPanic(t *testing.T) {
	p := New(nil, &countingScaler{width: 2, panic: true}, &stubPredictor{values: []float64{1}}, Options{})

	_, err := p.Predict(100, 3)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestPredictPredictionErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *stubPredictor
	}{
		{name: "model error", model: &stubPredictor{err: errors.New("boom")}},
		{name: "model panic", model: &stubPredictor{panic: true}},
		{name: "no predictions", model: &stubPredictor{values: []float64{}}},
		{name: "too many predictions", model: &stubPredictor{values: []float64{1, 2}}},
		{name: "NaN prediction", model: &stubPredictor{values: []float64{math.NaN()}}},
		{name: "infinite prediction", model: &stubPredictor{values: []float64{math.Inf(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(nil, &countingScaler{width: 2}, tt.model, Options{})

			_, err := p.Predict(1000, 7)
			assert.ErrorIs(t, err, ErrPrediction)
			assert.False(t, IsUserError(err))
		})
	}

	// One failed request leaves the pipeline usable.
	model := &stubPredictor{panic: true}
	p := New(nil, &countingScaler{width: 2}, model, Options{})
	_, err := p.Predict(1000, 7)
	require.ErrorIs(t, err, ErrPrediction)
	model.panic = false
	model.values = []float64{2.5}
	result, err := p.Predict(1000, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Quantity)
}

func TestPredictRoundingPolicies(t *testing.T) {
	tests := []struct {
		policy   mathutil.RoundingPolicy
		raw      float64
		expected int64
	}{
		{mathutil.Round, 2.5, 3},
		{mathutil.HalfEven, 2.5, 2},
		{mathutil.Truncate, 2.99, 2},
		{"", 2.5, 3},
	}

	for _, tt := range tests {
		p := New(nil, &countingScaler{width: 2}, &stubPredictor{values: []float64{tt.raw}}, Options{Rounding: tt.policy})
		result, err := p.Predict(0, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result.Quantity, "policy %q", tt.policy)
		assert.Equal(t, int64(math.Trunc(tt.raw)), result.Truncated)
	}
}

func TestLoadArtifactsNotFound(t *testing.T) {
	scalerPath, modelPath := testutil.WriteArtifacts(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	_, _, err := LoadArtifacts(missing, modelPath)
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, _, err = LoadArtifacts(scalerPath, missing)
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = Load(zap.NewNop(), Options{ScalerPath: scalerPath, ModelPath: missing})
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoadArtifactsCorrupt(t *testing.T) {
	scalerPath, modelPath := testutil.WriteArtifacts(t)
	dir := t.TempDir()

	garbage := testutil.WriteFile(t, dir, "garbage.json", "not an artifact")
	_, _, err := LoadArtifacts(garbage, modelPath)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
	_, _, err = LoadArtifacts(scalerPath, garbage)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)

	reordered := testutil.WriteFile(t, dir, "reordered.json",
		`{"format":"instax-scaler","version":1,"kind":"standard","features":["month","discount"],"mean":[6.5,25000],"scale":[3.45,30000]}`)
	_, _, err = LoadArtifacts(reordered, modelPath)
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestLoadArityMismatch(t *testing.T) {
	_, modelPath := testutil.WriteArtifacts(t)
	scalerPath := testutil.WriteFile(t, t.TempDir(), "scaler.json",
		`{"format":"instax-scaler","version":1,"kind":"standard","mean":[0,0,0],"scale":[1,1,1]}`)

	_, err := Load(zap.NewNop(), Options{ScalerPath: scalerPath, ModelPath: modelPath})
	assert.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestLoadTreeModel(t *testing.T) {
	scalerPath, _ := testutil.WriteArtifacts(t)
	modelPath := testutil.WriteFile(t, t.TempDir(), "tree.yaml", testutil.TreeModelYAML)

	p, err := Load(zap.NewNop(), Options{ScalerPath: scalerPath, ModelPath: modelPath, Rounding: mathutil.Truncate})
	require.NoError(t, err)

	result, err := p.Predict(50000, 6)
	require.NoError(t, err)
	assert.Equal(t, 4.5, result.Raw)
	assert.Equal(t, int64(4), result.Quantity)

	result, err = p.Predict(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.25, result.Raw)
}

func TestPipelineInfo(t *testing.T) {
	p := loadFixturePipeline(t, Options{Rounding: mathutil.HalfEven, MaxDiscount: 500})

	info := p.Info()
	assert.Equal(t, artifact.KindStandard, info.Scaler.Kind)
	assert.Equal(t, artifact.KindLinear, info.Model.Kind)
	assert.Equal(t, "LinearRegression", info.Model.Name)
	assert.Equal(t, []string{"discount", "month"}, info.Features)
	assert.Equal(t, mathutil.HalfEven, info.Rounding)
	assert.Equal(t, 500.0, p.MaxDiscount())
}
