// Package testutil provides artifact fixtures and helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture parameters. A standard scaler followed by a linear model, so
// expected predictions can be computed by hand:
//
//	y = Intercept + CoefDiscount*(discount-MeanDiscount)/ScaleDiscount
//	              + CoefMonth*(month-MeanMonth)/ScaleMonth
const (
	MeanDiscount  = 25000.0
	ScaleDiscount = 30000.0
	MeanMonth     = 6.5
	ScaleMonth    = 3.45
	CoefDiscount  = 0.8
	CoefMonth     = 0.3
	Intercept     = 2.4
)

// ScalerJSON is a standard scaler document over (discount, month).
const ScalerJSON = `{
  "format": "instax-scaler",
  "version": 1,
  "kind": "standard",
  "features": ["discount", "month"],
  "mean": [25000, 6.5],
  "scale": [30000, 3.45]
}`

// LinearModelJSON is a linear model document over the scaled features.
const LinearModelJSON = `{
  "format": "instax-model",
  "version": 1,
  "kind": "linear",
  "name": "LinearRegression",
  "author": "Data Team",
  "created": "2025-12-29",
  "features": ["discount", "month"],
  "coefficients": [0.8, 0.3],
  "intercept": 2.4
}`

// TreeModelYAML is a depth-two regression tree over the scaled features.
const TreeModelYAML = `format: instax-model
version: 1
kind: tree
name: DecisionTreeRegressor
features: [discount, month]
nodes:
  - {feature: 0, threshold: 0.0, left: 1, right: 2}
  - {feature: 1, threshold: 0.5, left: 3, right: 4}
  - {leaf: true, value: 4.5}
  - {leaf: true, value: 1.25}
  - {leaf: true, value: 2.75}
`

// ExpectedLinear computes the fixture pipeline's raw prediction.
func ExpectedLinear(discount float64, month int) float64 {
	return Intercept +
		CoefDiscount*(discount-MeanDiscount)/ScaleDiscount +
		CoefMonth*(float64(month)-MeanMonth)/ScaleMonth
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteArtifacts writes the scaler and linear model fixtures into a temporary
// directory and returns their paths.
func WriteArtifacts(t testing.TB) (scalerPath, modelPath string) {
	t.Helper()

	dir := t.TempDir()
	return WriteFile(t, dir, "scaler.json", ScalerJSON), WriteFile(t, dir, "instax_model.json", LinearModelJSON)
}
