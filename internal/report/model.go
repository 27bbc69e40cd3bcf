package report

import (
	"strings"

	"github.com/iwvelando/instax-forecast/internal/inference"
)

// ModelPanel is the model information sidebar.
type ModelPanel struct {
	Algorithm string   `json:"algorithm"`
	Scaler    string   `json:"scaler"`
	Inputs    string   `json:"inputs"`
	Output    string   `json:"output"`
	Author    string   `json:"author,omitempty"`
	Created   string   `json:"created,omitempty"`
	Features  []string `json:"features"`
	Rounding  string   `json:"rounding"`
}

// DescribeModel builds the sidebar from the loaded artifact metadata.
func DescribeModel(info inference.ModelInfo) ModelPanel {
	return ModelPanel{
		Algorithm: describe(info.Model.Name, info.Model.Kind),
		Scaler:    describe(info.Scaler.Name, info.Scaler.Kind),
		Inputs:    "discount amount / sales month",
		Output:    "expected units sold",
		Author:    info.Model.Author,
		Created:   info.Model.Created,
		Features:  info.Features,
		Rounding:  string(info.Rounding),
	}
}

func describe(name, kind string) string {
	if name == "" {
		return kind
	}
	if kind == "" || strings.EqualFold(name, kind) {
		return name
	}
	return name + " (" + kind + ")"
}
