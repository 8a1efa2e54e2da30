// Package experiment implements deterministic A/B test bucketing, outcome
// tracking, and statistical evaluation. Assignments are sticky: a visitor
// keeps their variant for the life of the experiment.
package experiment

import "time"

// TargetMetric selects which counters an experiment is judged on.
type TargetMetric string

const (
	MetricConversionRate   TargetMetric = "conversion_rate"
	MetricClickThroughRate TargetMetric = "click_through_rate"
	MetricTimeOnPage       TargetMetric = "time_on_page"
	MetricFormCompletion   TargetMetric = "form_completion"
)

// Metrics are monotonically non-decreasing counters accumulated per
// variant for the lifetime of the experiment.
type Metrics struct {
	Impressions       int64   `json:"impressions" yaml:"impressions"`
	Conversions       int64   `json:"conversions" yaml:"conversions"`
	Clicks            int64   `json:"clicks" yaml:"clicks"`
	EngagementSeconds float64 `json:"engagement_seconds" yaml:"engagement_seconds"`
}

// Variant is one alternative configuration under test.
type Variant struct {
	ID        string                 `json:"id" yaml:"id"`
	Weight    int                    `json:"weight" yaml:"weight"`
	IsControl bool                   `json:"is_control" yaml:"is_control"`
	Payload   map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Metrics   Metrics                `json:"metrics" yaml:"-"`
}

// Experiment is a named test with weighted variants. Weights need not sum
// to 100; they are normalized by total weight at assignment time.
type Experiment struct {
	ID               string       `json:"id" yaml:"id"`
	Name             string       `json:"name,omitempty" yaml:"name,omitempty"`
	Active           bool         `json:"active" yaml:"active"`
	TargetMetric     TargetMetric `json:"target_metric" yaml:"target_metric"`
	MinSampleSize    int64        `json:"min_sample_size" yaml:"min_sample_size"`
	ConfidenceTarget int          `json:"confidence_target" yaml:"confidence_target"`
	Variants         []Variant    `json:"variants" yaml:"variants"`
}

// Control returns the control variant, or the first variant when none is
// flagged. Returns nil only for an experiment with no variants.
func (e *Experiment) Control() *Variant {
	for i := range e.Variants {
		if e.Variants[i].IsControl {
			return &e.Variants[i]
		}
	}
	if len(e.Variants) > 0 {
		return &e.Variants[0]
	}
	return nil
}

// Variant returns the variant with the given id, or nil.
func (e *Experiment) Variant(id string) *Variant {
	for i := range e.Variants {
		if e.Variants[i].ID == id {
			return &e.Variants[i]
		}
	}
	return nil
}

func (e *Experiment) totalWeight() int {
	total := 0
	for _, v := range e.Variants {
		if v.Weight > 0 {
			total += v.Weight
		}
	}
	return total
}

// Assignment records which variant a visitor was bucketed into. One per
// (visitor, experiment) pair, immutable once written.
type Assignment struct {
	ExperimentID string    `json:"experiment_id"`
	VariantID    string    `json:"variant_id"`
	AssignedAt   time.Time `json:"assigned_at"`
}
