// Package output provides utilities for formatting and displaying prediction results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/instax-forecast/internal/report"
	"github.com/iwvelando/instax-forecast/pkg/constants"
	"github.com/iwvelando/instax-forecast/pkg/mathutil"
	"github.com/iwvelando/instax-forecast/pkg/validation"
)

// csvHeader names the CSV columns in output order.
var csvHeader = []string{"discount", "month", "raw", "quantity", "truncated", "rounding", "confidence"}

// Write renders rep in the named output format.
func Write(w io.Writer, format string, rep report.Report, panel report.ModelPanel) error {
	if err := validation.ValidateOutputFormat(format); err != nil {
		return err
	}
	if format == constants.OutputFormatCSV {
		return CsvFormat(w, rep)
	}
	return PrettyFormat(w, rep, panel)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, rep report.Report, panel report.ModelPanel) error {
	var b strings.Builder

	fmt.Fprintf(&b, "--- %s ---\n", rep.Headline)
	fmt.Fprintf(&b, "Confidence: %s %s\n\n", rep.Confidence, rep.Stars)

	b.WriteString("Inputs\n")
	for _, row := range rep.Inputs {
		fmt.Fprintf(&b, "  - %s: %s\n", row.Label, row.Value)
	}
	fmt.Fprintf(&b, "  - Prediction: %s\n\n", rep.Summary)

	width := 0
	for _, row := range rep.Details {
		width = max(width, len(row.Label))
	}
	fmt.Fprintf(&b, "%-*s | %s\n", width, "Item", "Value")
	fmt.Fprintf(&b, "%s | %s\n", strings.Repeat("_", width), strings.Repeat("_", 5))
	for _, row := range rep.Details {
		fmt.Fprintf(&b, "%-*s | %s\n", width, row.Label, row.Value)
	}

	b.WriteString("\nInsights\n")
	for _, insight := range rep.Insights {
		fmt.Fprintf(&b, "  * %s\n", insight)
	}

	b.WriteString("\nInterpretation guide\n")
	for _, line := range rep.Guide {
		fmt.Fprintf(&b, "  - %s\n", line)
	}

	fmt.Fprintf(&b, "\nModel: %s, scaler: %s, rounding: %s\n", panel.Algorithm, panel.Scaler, panel.Rounding)
	if panel.Author != "" || panel.Created != "" {
		fmt.Fprintf(&b, "Author: %s, created: %s\n", panel.Author, panel.Created)
	}

	b.WriteString("\n")
	for _, line := range rep.Footer {
		fmt.Fprintf(&b, "%s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, rep report.Report) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		csvHeader,
		{
			strconv.FormatFloat(rep.Features.Discount, 'f', -1, 64),
			strconv.Itoa(rep.Features.Month),
			strconv.FormatFloat(mathutil.RoundTo2(rep.Raw), 'f', -1, 64),
			strconv.FormatInt(rep.Quantity, 10),
			strconv.FormatInt(rep.Truncated, 10),
			rep.Rounding,
			string(rep.Confidence),
		},
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
