package datetime

import (
	"testing"
	"time"
)

func TestCurrentMonth(t *testing.T) {
	fixed := time.Date(2025, time.December, 29, 10, 0, 0, 0, time.UTC)
	if got := CurrentMonth(fixed); got != 12 {
		t.Errorf("CurrentMonth() = %d, expected 12", got)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
		wantErr  bool
	}{
		{name: "Numeric", input: "6", expected: 6},
		{name: "Zero padded", input: "06", expected: 6},
		{name: "Surrounding spaces", input: " 12 ", expected: 12},
		{name: "Full name", input: "June", expected: 6},
		{name: "Abbreviation", input: "dec", expected: 12},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Thirteen", input: "13", wantErr: true},
		{name: "Negative", input: "-1", wantErr: true},
		{name: "Empty", input: "", wantErr: true},
		{name: "Too short to be a name", input: "ju", wantErr: true},
		{name: "Garbage", input: "summer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonth(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("ParseMonth(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(1); got != "January" {
		t.Errorf("MonthName(1) = %q", got)
	}
	if got := MonthName(13); got != "" {
		t.Errorf("MonthName(13) = %q, expected empty", got)
	}
}

func TestSeasonOf(t *testing.T) {
	expected := map[int]Season{
		1: SeasonRegular, 2: SeasonRegular, 3: SeasonRegular, 4: SeasonRegular,
		5: SeasonSummer, 6: SeasonSummer, 7: SeasonSummer, 8: SeasonSummer,
		9: SeasonRegular, 10: SeasonRegular,
		11: SeasonYearEnd, 12: SeasonYearEnd,
	}
	for month, season := range expected {
		if got := SeasonOf(month); got != season {
			t.Errorf("SeasonOf(%d) = %s, expected %s", month, got, season)
		}
	}
}
