// Package report turns a prediction result into the text blocks shown by the
// web page and the CLI: headline, input echo, detail table, confidence tier,
// insights, interpretation guide and footer.
package report

import (
	"slices"

	"github.com/iwvelando/instax-forecast/internal/inference"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/datetime"
	"github.com/iwvelando/instax-forecast/pkg/format"
)

// Confidence is a coarse tier derived from the size of the raw prediction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Row is one label/value pair of a table.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Report is the rendered form of one prediction.
type Report struct {
	Headline   string                  `json:"headline"`
	Quantity   int64                   `json:"quantity"`
	Raw        float64                 `json:"raw"`
	Truncated  int64                   `json:"truncated"`
	Rounding   string                  `json:"rounding"`
	Inputs     []Row                   `json:"inputs"`
	Summary    string                  `json:"summary"`
	Confidence Confidence              `json:"confidence"`
	Stars      string                  `json:"stars"`
	Details    []Row                   `json:"details"`
	Insights   []string                `json:"insights"`
	Guide      []string                `json:"guide"`
	Footer     []string                `json:"footer"`
	Features   inference.FeatureVector `json:"features"`
}

var guide = []string{
	"A larger discount tends to increase sales.",
	"Seasonality such as the year-end holidays and the summer break affects sales.",
	"Predictions are based on past sales patterns.",
}

var footer = []string{
	"This is a machine learning based sales forecast.",
	"Predictions are for reference only and may differ from actual sales.",
}

// Guide returns the interpretation guide printed under the detail table.
func Guide() []string {
	return slices.Clone(guide)
}

// Footer returns the disclaimer shown at the bottom of every report.
func Footer() []string {
	return slices.Clone(footer)
}

// ConfidenceOf classifies a raw prediction.
func ConfidenceOf(raw float64) Confidence {
	switch {
	case raw >= constants.ConfidenceHighThreshold:
		return ConfidenceHigh
	case raw >= constants.ConfidenceMediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Stars returns the star rating shown next to a confidence tier.
func (c Confidence) Stars() string {
	switch c {
	case ConfidenceHigh:
		return "★★★"
	case ConfidenceMedium:
		return "★★"
	default:
		return "★"
	}
}

// DiscountInsight describes the effect of the applied discount.
func DiscountInsight(pr *format.Printer, discount float64) []string {
	if discount > 0 {
		return []string{
			"Discount of " + pr.Rupiah(discount) + " applied.",
			"The discount is expected to lift sales.",
		}
	}
	return []string{
		"No discount applied.",
		"Applying a discount may increase sales further.",
	}
}

// SeasonalInsight describes the demand expected in month.
func SeasonalInsight(month int) string {
	switch datetime.SeasonOf(month) {
	case datetime.SeasonSummer:
		return "Summer season: camera demand may be high."
	case datetime.SeasonYearEnd:
		return "Year-end season: gift demand may be high."
	default:
		return datetime.MonthName(month) + " is an average sales month."
	}
}

// Build renders result with pr's number formatting.
func Build(pr *format.Printer, result inference.Result) Report {
	features := result.Features
	monthName := datetime.MonthName(features.Month)
	confidence := ConfidenceOf(result.Raw)

	r := Report{
		Headline:  "Expected sales: about " + pr.Units(result.Quantity),
		Quantity:  result.Quantity,
		Raw:       result.Raw,
		Truncated: result.Truncated,
		Rounding:  string(result.Rounding),
		Features:  features,
		Inputs: []Row{
			{Label: "Discount", Value: pr.Rupiah(features.Discount)},
			{Label: "Month", Value: pr.Sprintf("%d (%s)", features.Month, monthName)},
		},
		Summary:    pr.Sprintf("%s -> %s", pr.Decimal(result.Raw), pr.Units(result.Quantity)),
		Confidence: confidence,
		Stars:      confidence.Stars(),
		Details: []Row{
			{Label: "Discount", Value: pr.Rupiah(features.Discount)},
			{Label: "Sales month", Value: monthName},
			{Label: "Predicted sales (exact)", Value: pr.Decimal(result.Raw)},
			{Label: "Predicted sales (" + string(result.Rounding) + ")", Value: pr.Units(result.Quantity)},
			{Label: "Predicted sales (truncated)", Value: pr.Units(result.Truncated)},
		},
		Guide:  Guide(),
		Footer: Footer(),
	}

	r.Insights = append(DiscountInsight(pr, features.Discount), SeasonalInsight(features.Month))
	return r
}
