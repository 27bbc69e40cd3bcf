package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/iwvelando/instax-forecast/pkg/constants"
)

// Model kinds.
const (
	KindLinear = "linear"
	KindTree   = "tree"
)

// Model is a fitted predictor over scaled features.
type Model interface {
	// Predict returns one prediction per row of x.
	Predict(x mat.Matrix) ([]float64, error)
	NumFeatures() int
	FeatureNames() []string
	Info() Info
}

type modelHeader struct {
	Metadata `yaml:",inline"`
}

type linearDocument struct {
	Metadata     `yaml:",inline"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
}

type treeDocument struct {
	Metadata    `yaml:",inline"`
	NumFeatures int        `json:"n_features,omitempty" yaml:"n_features,omitempty"`
	Nodes       []TreeNode `json:"nodes" yaml:"nodes"`
}

// LoadModel reads a predictor document from path and builds the model its
// kind names.
func LoadModel(path string) (Model, error) {
	data, err := readBytes(path)
	if err != nil {
		return nil, err
	}

	var header modelHeader
	if err := decode(path, data, &header); err != nil {
		return nil, err
	}

	switch header.Kind {
	case KindLinear:
		var doc linearDocument
		if err := decode(path, data, &doc); err != nil {
			return nil, err
		}
		m, err := newLinearModel(doc, path)
		if err != nil {
			return nil, corrupt(path, err)
		}
		return m, nil
	case KindTree:
		var doc treeDocument
		if err := decode(path, data, &doc); err != nil {
			return nil, err
		}
		m, err := newTreeModel(doc, path)
		if err != nil {
			return nil, corrupt(path, err)
		}
		return m, nil
	default:
		return nil, corrupt(path, fmt.Errorf("unsupported model kind %q", header.Kind))
	}
}

// LinearModel computes intercept + coefficients . x for each row.
type LinearModel struct {
	meta      Metadata
	path      string
	coef      *mat.VecDense
	intercept float64
}

// NewLinearModel builds a linear model from fitted coefficients.
func NewLinearModel(coefficients []float64, intercept float64) (*LinearModel, error) {
	return newLinearModel(linearDocument{
		Metadata:     Metadata{Format: constants.ModelFormat, Version: constants.ArtifactVersion, Kind: KindLinear},
		Coefficients: coefficients,
		Intercept:    intercept,
	}, "")
}

func newLinearModel(doc linearDocument, path string) (*LinearModel, error) {
	width := len(doc.Coefficients)
	if width == 0 {
		return nil, fmt.Errorf("linear model has no coefficients")
	}
	if err := doc.check(constants.ModelFormat, width); err != nil {
		return nil, err
	}
	if err := checkFinite("coefficients", doc.Coefficients...); err != nil {
		return nil, err
	}
	if err := checkFinite("intercept", doc.Intercept); err != nil {
		return nil, err
	}
	coef := mat.NewVecDense(width, append([]float64(nil), doc.Coefficients...))
	return &LinearModel{meta: doc.Metadata, path: path, coef: coef, intercept: doc.Intercept}, nil
}

// NumFeatures returns the number of coefficients.
func (m *LinearModel) NumFeatures() int { return m.coef.Len() }

// FeatureNames returns the fitted feature order, if recorded.
func (m *LinearModel) FeatureNames() []string { return append([]string(nil), m.meta.Features...) }

// Info describes the model.
func (m *LinearModel) Info() Info { return m.meta.info(m.path) }

// Predict implements Model.
func (m *LinearModel) Predict(x mat.Matrix) ([]float64, error) {
	rows, cols := x.Dims()
	if cols != m.NumFeatures() {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", ErrFeatureMismatch, m.NumFeatures(), cols)
	}

	var out mat.VecDense
	out.MulVec(x, m.coef)
	predictions := make([]float64, rows)
	for i := range predictions {
		predictions[i] = out.AtVec(i) + m.intercept
	}
	return predictions, nil
}

// TreeNode is one node of a fitted regression tree. Internal nodes send a row
// left when row[Feature] <= Threshold; leaves carry the predicted Value.
type TreeNode struct {
	Feature   int     `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Value     float64 `json:"value" yaml:"value"`
	Leaf      bool    `json:"leaf" yaml:"leaf"`
}

// TreeModel is a regression tree stored as a flat node array rooted at index 0.
type TreeModel struct {
	meta  Metadata
	path  string
	width int
	nodes []TreeNode
}

// NewTreeModel builds a regression tree over width features.
func NewTreeModel(width int, nodes []TreeNode) (*TreeModel, error) {
	return newTreeModel(treeDocument{
		Metadata:    Metadata{Format: constants.ModelFormat, Version: constants.ArtifactVersion, Kind: KindTree},
		NumFeatures: width,
		Nodes:       nodes,
	}, "")
}

func newTreeModel(doc treeDocument, path string) (*TreeModel, error) {
	width := doc.NumFeatures
	if width == 0 {
		width = len(doc.Features)
	}
	if width <= 0 {
		return nil, fmt.Errorf("tree model must declare n_features or features")
	}
	if err := doc.check(constants.ModelFormat, width); err != nil {
		return nil, err
	}
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("tree model has no nodes")
	}

	// Children must sit after their parent, which rules out cycles.
	for i, node := range doc.Nodes {
		if node.Leaf {
			if err := checkFinite(fmt.Sprintf("node %d value", i), node.Value); err != nil {
				return nil, err
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= width {
			return nil, fmt.Errorf("node %d splits on feature %d of %d", i, node.Feature, width)
		}
		if err := checkFinite(fmt.Sprintf("node %d threshold", i), node.Threshold); err != nil {
			return nil, err
		}
		for _, child := range []int{node.Left, node.Right} {
			if child <= i || child >= len(doc.Nodes) {
				return nil, fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}

	return &TreeModel{
		meta:  doc.Metadata,
		path:  path,
		width: width,
		nodes: append([]TreeNode(nil), doc.Nodes...),
	}, nil
}

// NumFeatures returns the declared feature count.
func (m *TreeModel) NumFeatures() int { return m.width }

// FeatureNames returns the fitted feature order, if recorded.
func (m *TreeModel) FeatureNames() []string { return append([]string(nil), m.meta.Features...) }

// Info describes the model.
func (m *TreeModel) Info() Info { return m.meta.info(m.path) }

// Predict implements Model.
func (m *TreeModel) Predict(x mat.Matrix) ([]float64, error) {
	rows, cols := x.Dims()
	if cols != m.width {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", ErrFeatureMismatch, m.width, cols)
	}

	predictions := make([]float64, rows)
	for r := 0; r < rows; r++ {
		idx := 0
		for !m.nodes[idx].Leaf {
			node := m.nodes[idx]
			if x.At(r, node.Feature) <= node.Threshold {
				idx = node.Left
			} else {
				idx = node.Right
			}
		}
		predictions[r] = m.nodes[idx].Value
	}
	return predictions, nil
}
