package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func evaluated(control, challenger Metrics, metric TargetMetric, minSample int64, target int) Result {
	exp := &Experiment{
		ID:               "test",
		Active:           true,
		TargetMetric:     metric,
		MinSampleSize:    minSample,
		ConfidenceTarget: target,
		Variants: []Variant{
			{ID: "control", Weight: 50, IsControl: true, Metrics: control},
			{ID: "challenger", Weight: 50, Metrics: challenger},
		},
	}
	return CalculateResults(exp)
}

func TestIdenticalRatesNeverDeclareWinner(t *testing.T) {
	res := evaluated(
		Metrics{Impressions: 1000, Conversions: 50},
		Metrics{Impressions: 1000, Conversions: 50},
		MetricConversionRate, 100, 95,
	)

	assert.Empty(t, res.WinnerVariantID)
	assert.Equal(t, 0, res.ConfidencePercent)
	assert.False(t, res.Significant)
	assert.Equal(t, ActionContinue, res.RecommendedAction)
	assert.Equal(t, 0.0, res.ImprovementPercent)
}

// Control p1=0.05 n1=1000 vs challenger p2=0.08 n2=1000: z ≈ 2.47, which
// maps to the 98% confidence bucket.
func TestKnownSignificanceCase(t *testing.T) {
	res := evaluated(
		Metrics{Impressions: 1000, Conversions: 50},
		Metrics{Impressions: 1000, Conversions: 80},
		MetricConversionRate, 100, 95,
	)

	assert.Equal(t, 98, res.ConfidencePercent)
	assert.True(t, res.Significant)
	assert.Equal(t, "challenger", res.WinnerVariantID)
	assert.Equal(t, ActionDeclareWinner, res.RecommendedAction)
	assert.InDelta(t, 60.0, res.ImprovementPercent, 0.001)
}

func TestConfidenceTargetGatesVerdict(t *testing.T) {
	// Same data but a 99% target: confident at 98%, yet not enough.
	res := evaluated(
		Metrics{Impressions: 1000, Conversions: 50},
		Metrics{Impressions: 1000, Conversions: 80},
		MetricConversionRate, 100, 99,
	)

	assert.Equal(t, 98, res.ConfidencePercent)
	assert.False(t, res.Significant)
	assert.Equal(t, ActionContinue, res.RecommendedAction)
	assert.Empty(t, res.WinnerVariantID)
}

func TestInsufficientSampleStillSurfacesImprovement(t *testing.T) {
	res := evaluated(
		Metrics{Impressions: 40, Conversions: 2},
		Metrics{Impressions: 40, Conversions: 4},
		MetricConversionRate, 1000, 95,
	)

	assert.Equal(t, 0, res.ConfidencePercent)
	assert.False(t, res.Significant)
	assert.Equal(t, ActionContinue, res.RecommendedAction)
	assert.InDelta(t, 100.0, res.ImprovementPercent, 0.001)
}

func TestControlLeadingRecommendsContinue(t *testing.T) {
	res := evaluated(
		Metrics{Impressions: 1000, Conversions: 100},
		Metrics{Impressions: 1000, Conversions: 50},
		MetricConversionRate, 100, 95,
	)

	assert.Empty(t, res.WinnerVariantID)
	assert.Equal(t, 0, res.ConfidencePercent)
	assert.Equal(t, ActionContinue, res.RecommendedAction)
	assert.InDelta(t, -50.0, res.ImprovementPercent, 0.001)
}

func TestZeroSampleVariantsAreSafe(t *testing.T) {
	res := evaluated(Metrics{}, Metrics{}, MetricConversionRate, 100, 95)

	assert.Equal(t, ActionContinue, res.RecommendedAction)
	assert.Equal(t, 0.0, res.ControlRate)
	assert.Equal(t, 0.0, res.ChallengerRate)
	assert.NotPanics(t, func() {
		CalculateResults(&Experiment{ID: "empty"})
	})
}

func TestRateDenominatorsPerMetric(t *testing.T) {
	m := Metrics{Impressions: 200, Conversions: 20, Clicks: 50, EngagementSeconds: 12000}

	tests := []struct {
		metric TargetMetric
		want   float64
	}{
		{MetricConversionRate, 0.1},    // 20/200
		{MetricClickThroughRate, 0.25}, // 50/200
		{MetricFormCompletion, 0.4},    // 20/50
		{MetricTimeOnPage, 0.1},        // (12000/200)/600
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			assert.InDelta(t, tt.want, Rate(m, tt.metric), 0.0001)
		})
	}

	// Per-impression engagement means beyond the ceiling clamp to 1.
	long := Metrics{Impressions: 10, EngagementSeconds: 100000}
	assert.Equal(t, 1.0, Rate(long, MetricTimeOnPage))
}

func TestFormCompletionGatesOnClicks(t *testing.T) {
	// Plenty of impressions, too few clicks: the form-completion sample is
	// the click count, so no verdict yet.
	res := evaluated(
		Metrics{Impressions: 5000, Clicks: 40, Conversions: 10},
		Metrics{Impressions: 5000, Clicks: 40, Conversions: 20},
		MetricFormCompletion, 100, 95,
	)

	assert.False(t, res.Significant)
	assert.Equal(t, ActionContinue, res.RecommendedAction)
}

func TestRequiredSampleSize(t *testing.T) {
	// Base 5% rate, 50% relative lift, 95/80: the standard two-proportion
	// power formula gives ceil(1466.06) = 1467 per variant.
	assert.Equal(t, int64(1467), RequiredSampleSize(0.05, 0.5, 95, 80))

	// Smaller effects need more traffic.
	assert.Greater(t,
		RequiredSampleSize(0.05, 0.1, 95, 80),
		RequiredSampleSize(0.05, 0.5, 95, 80),
	)

	// Out-of-domain inputs are advisory zeros, not panics.
	assert.Equal(t, int64(0), RequiredSampleSize(0, 0.5, 95, 80))
	assert.Equal(t, int64(0), RequiredSampleSize(0.05, 0, 95, 80))
	assert.Equal(t, int64(0), RequiredSampleSize(1.2, 0.5, 95, 80))
}
