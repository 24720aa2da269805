package sla

import (
	"math"

	"github.com/spec-kit/case-workflow/internal/domain"
)

// Mode selects how compliance is computed.
type Mode string

const (
	ModeExact       Mode = "exact"
	ModeApproximate Mode = "approximate"
)

// Thresholds maps category keys to the maximum resolution time in minutes.
type Thresholds struct {
	DefaultMinutes int            `yaml:"default_minutes"`
	PerCategory    map[string]int `yaml:"categories"`
}

// For returns the threshold for category. Lookup is an exact key match;
// anything not configured gets the default.
func (t Thresholds) For(category string) int {
	if minutes, ok := t.PerCategory[category]; ok {
		return minutes
	}
	return t.DefaultMinutes
}

// Calculator computes SLA compliance percentages. It holds no mutable state.
type Calculator struct {
	thresholds Thresholds
}

// NewCalculator builds a calculator over the given thresholds.
func NewCalculator(thresholds Thresholds) *Calculator {
	return &Calculator{thresholds: thresholds}
}

// Threshold exposes the resolved threshold for category.
func (c *Calculator) Threshold(category string) int {
	return c.thresholds.For(category)
}

// Exact computes compliance over per-case resolution times. Cases without a
// closure timestamp are ignored.
func (c *Calculator) Exact(category string, cases []domain.Case) float64 {
	durations := make([]float64, 0, len(cases))
	for i := range cases {
		if minutes, ok := cases[i].ResolutionMinutes(); ok {
			durations = append(durations, minutes)
		}
	}
	return Compliance(durations, c.thresholds.For(category))
}

// Approximate applies the same rule to daily average resolution samples,
// for when only batch KPI snapshots are available.
func (c *Calculator) Approximate(category string, samples []domain.DailyResolutionStat) float64 {
	averages := make([]float64, 0, len(samples))
	for _, s := range samples {
		averages = append(averages, s.AverageMinutes)
	}
	return Compliance(averages, c.thresholds.For(category))
}

// Compliance returns 100 * count(d <= threshold) / count(d), rounded to one
// decimal. An empty input yields 0.
func Compliance(durationsMinutes []float64, thresholdMinutes int) float64 {
	if len(durationsMinutes) == 0 {
		return 0
	}
	within := 0
	for _, d := range durationsMinutes {
		if d <= float64(thresholdMinutes) {
			within++
		}
	}
	return roundOneDecimal(100 * float64(within) / float64(len(durationsMinutes)))
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
