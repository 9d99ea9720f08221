package services

import (
	"testing"

	"costconsole/locales"
)

func TestFormatAmount_Values(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "0"},
		{"small integer", 5, "5"},
		{"with decimals", 42.50, "42.5"},
		{"thousands", 1234.56, "1,234.56"},
		{"millions", 1234567, "1,234,567"},
		{"four decimals", 0.12345, "0.1235"},
		{"negative", -2500.5, "-2,500.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(locales.English, tt.input)
			if got != tt.expect {
				t.Errorf("FormatAmount(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestTrimDecimal(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{3, "3"},
		{12.50, "12.5"},
		{0.001, "0.001"},
		{1e7, "10000000"},
	}
	for _, tt := range tests {
		if got := TrimDecimal(tt.input); got != tt.expect {
			t.Errorf("TrimDecimal(%v) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestFormatRatePercent(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{0, ""},
		{0.85, "85"},
		{0.07, "7"},
		{0.125, "12.5"},
		{1, "100"},
	}
	for _, tt := range tests {
		if got := FormatRatePercent(tt.input); got != tt.expect {
			t.Errorf("FormatRatePercent(%v) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestWithUnit(t *testing.T) {
	if got := WithUnit("7.85", "g/cm3"); got != "7.85 g/cm3" {
		t.Errorf("got %q", got)
	}
	if got := WithUnit("7.85", ""); got != "7.85" {
		t.Errorf("got %q", got)
	}
	if got := WithUnit("", "g/cm3"); got != "" {
		t.Errorf("got %q", got)
	}
}
