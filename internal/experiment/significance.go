package experiment

import "math"

// Action is the recommended next step after evaluating an experiment.
type Action string

const (
	ActionContinue      Action = "continue"
	ActionDeclareWinner Action = "declare_winner"
)

// Result is a statistical projection over the current variant counters.
// It is recomputed on demand and never persisted as authoritative.
type Result struct {
	WinnerVariantID    string  `json:"winner_variant_id,omitempty"`
	ConfidencePercent  int     `json:"confidence_percent"`
	ImprovementPercent float64 `json:"improvement_percent"`
	Significant        bool    `json:"significant"`
	RecommendedAction  Action  `json:"recommended_action"`
	ControlRate        float64 `json:"control_rate"`
	ChallengerRate     float64 `json:"challenger_rate"`
}

// engagementCeiling bounds the time_on_page rate so the per-impression
// mean stays a proportion the z-test machinery can digest.
const engagementCeiling = 600.0

// Rate derives a variant's metric-specific rate. The denominator changes
// per metric: form completion is measured against clicks, everything else
// against impressions. Zero-sample variants are rate 0, never NaN.
func Rate(m Metrics, metric TargetMetric) float64 {
	switch metric {
	case MetricClickThroughRate:
		if m.Impressions == 0 {
			return 0
		}
		return float64(m.Clicks) / float64(m.Impressions)
	case MetricTimeOnPage:
		if m.Impressions == 0 {
			return 0
		}
		mean := m.EngagementSeconds / float64(m.Impressions)
		if mean > engagementCeiling {
			mean = engagementCeiling
		}
		return mean / engagementCeiling
	case MetricFormCompletion:
		if m.Clicks == 0 {
			return 0
		}
		return float64(m.Conversions) / float64(m.Clicks)
	default: // conversion_rate
		if m.Impressions == 0 {
			return 0
		}
		return float64(m.Conversions) / float64(m.Impressions)
	}
}

// sampleSize returns the denominator count backing a variant's rate.
func sampleSize(m Metrics, metric TargetMetric) int64 {
	if metric == MetricFormCompletion {
		return m.Clicks
	}
	return m.Impressions
}

// CalculateResults compares the control against the best challenger and
// decides whether the experiment has reached a verdict. It is pure and
// total: insufficient data yields a well-formed "keep going" result.
func CalculateResults(exp *Experiment) Result {
	out := Result{RecommendedAction: ActionContinue}

	control := exp.Control()
	if control == nil {
		return out
	}
	out.ControlRate = Rate(control.Metrics, exp.TargetMetric)

	var challenger *Variant
	bestRate := math.Inf(-1)
	for i := range exp.Variants {
		v := &exp.Variants[i]
		if v.ID == control.ID {
			continue
		}
		if r := Rate(v.Metrics, exp.TargetMetric); r > bestRate {
			bestRate = r
			challenger = v
		}
	}
	if challenger == nil {
		return out
	}

	p1 := out.ControlRate
	p2 := Rate(challenger.Metrics, exp.TargetMetric)
	out.ChallengerRate = p2
	if p1 > 0 {
		out.ImprovementPercent = (p2 - p1) / p1 * 100
	}

	// Control leading (or tied) means there is nothing to declare.
	if p2 <= p1 {
		return out
	}

	n1 := sampleSize(control.Metrics, exp.TargetMetric)
	n2 := sampleSize(challenger.Metrics, exp.TargetMetric)
	if n1 < exp.MinSampleSize || n2 < exp.MinSampleSize {
		// Not mature yet; the raw improvement stays visible.
		return out
	}

	// Standard error from the challenger's rate variance.
	se := math.Sqrt(p2 * (1 - p2) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 {
		return out
	}
	z := (p2 - p1) / se

	out.ConfidencePercent = confidenceFromZ(math.Abs(z))
	if out.ConfidencePercent > 0 && out.ConfidencePercent >= exp.ConfidenceTarget {
		out.Significant = true
		out.WinnerVariantID = challenger.ID
		out.RecommendedAction = ActionDeclareWinner
	}

	return out
}

// confidenceFromZ maps |z| onto a discrete confidence level via fixed
// critical-value thresholds.
func confidenceFromZ(z float64) int {
	switch {
	case z >= 2.58:
		return 99
	case z >= 2.33:
		return 98
	case z >= 1.96:
		return 95
	case z >= 1.65:
		return 90
	case z >= 1.28:
		return 80
	default:
		return 0
	}
}

// z-scores for alpha/2 at the supported confidence levels and for beta at
// the supported power levels.
var (
	zAlpha = map[int]float64{80: 1.28, 90: 1.645, 95: 1.96, 98: 2.33, 99: 2.58}
	zBeta  = map[int]float64{80: 0.84, 85: 1.04, 90: 1.28, 95: 1.645}
)

// RequiredSampleSize estimates the per-variant sample needed to detect a
// relative lift of minDetectableEffect over baseRate with the given
// confidence and power. Advisory only; verdicts are gated on
// MinSampleSize, not on this figure.
func RequiredSampleSize(baseRate, minDetectableEffect float64, confidenceLevel, power int) int64 {
	if baseRate <= 0 || baseRate >= 1 || minDetectableEffect <= 0 {
		return 0
	}

	za, ok := zAlpha[confidenceLevel]
	if !ok {
		za = zAlpha[95]
	}
	zb, ok := zBeta[power]
	if !ok {
		zb = zBeta[80]
	}

	p1 := baseRate
	p2 := baseRate * (1 + minDetectableEffect)
	if p2 >= 1 {
		p2 = 0.999
	}

	delta := p2 - p1
	variance := p1*(1-p1) + p2*(1-p2)
	n := (za + zb) * (za + zb) * variance / (delta * delta)
	return int64(math.Ceil(n))
}
