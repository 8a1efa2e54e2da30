// Package leadscore ranks prospective customers from their accumulated
// behavior profile. Scoring is a pure function of the profile snapshot:
// six capped sub-scores combine into a weighted overall score, a tier, a
// recommended next action, and human-readable reasoning.
package leadscore

import "fmt"

// Tier is the coarse triage bucket derived from the overall score.
type Tier string

const (
	TierHot     Tier = "hot"
	TierWarm    Tier = "warm"
	TierCold    Tier = "cold"
	TierNurture Tier = "nurture"
)

// LeadScore is the full scoring output for one profile snapshot. It has no
// lifecycle of its own; recompute it whenever the profile changes.
type LeadScore struct {
	Demographic float64 `json:"demographic"`
	Behavioral  float64 `json:"behavioral"`
	Engagement  float64 `json:"engagement"`
	Intent      float64 `json:"intent"`
	Fit         float64 `json:"fit"`
	Urgency     float64 `json:"urgency"`

	Overall        float64  `json:"overall"`
	Tier           Tier     `json:"tier"`
	Priority       int      `json:"priority"`
	NextBestAction string   `json:"next_best_action"`
	Reasoning      []string `json:"reasoning"`
}

// Weights blends the six sub-scores into the overall score. They must sum
// to 1.0.
type Weights struct {
	Demographic float64 `yaml:"demographic"`
	Behavioral  float64 `yaml:"behavioral"`
	Engagement  float64 `yaml:"engagement"`
	Intent      float64 `yaml:"intent"`
	Fit         float64 `yaml:"fit"`
	Urgency     float64 `yaml:"urgency"`
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{
		Demographic: 0.20,
		Behavioral:  0.25,
		Engagement:  0.20,
		Intent:      0.15,
		Fit:         0.10,
		Urgency:     0.10,
	}
}

// Validate checks the weights sum to 1.0 within floating-point tolerance.
func (w Weights) Validate() error {
	sum := w.Demographic + w.Behavioral + w.Engagement + w.Intent + w.Fit + w.Urgency
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("leadscore: weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// Tiers holds the lower bounds of the hot, warm, and cold tiers. Scores
// below Cold fall into nurture. Bounds are inclusive on the lower edge
// and must be strictly decreasing.
type Tiers struct {
	Hot  float64 `yaml:"hot"`
	Warm float64 `yaml:"warm"`
	Cold float64 `yaml:"cold"`
}

// DefaultTiers returns the standard 80/60/40 thresholds.
func DefaultTiers() Tiers {
	return Tiers{Hot: 80, Warm: 60, Cold: 40}
}

// Validate checks the thresholds are strictly decreasing.
func (t Tiers) Validate() error {
	if !(t.Hot > t.Warm && t.Warm > t.Cold && t.Cold > 0) {
		return fmt.Errorf("leadscore: tier thresholds must be strictly decreasing, got %.1f/%.1f/%.1f",
			t.Hot, t.Warm, t.Cold)
	}
	return nil
}

// classify maps an overall score onto a tier.
func (t Tiers) classify(overall float64) Tier {
	switch {
	case overall >= t.Hot:
		return TierHot
	case overall >= t.Warm:
		return TierWarm
	case overall >= t.Cold:
		return TierCold
	default:
		return TierNurture
	}
}

var tierPriority = map[Tier]int{
	TierHot:     1,
	TierWarm:    2,
	TierCold:    3,
	TierNurture: 4,
}
