package leadscore

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brightline/growth-engine/internal/event"
)

// Scorer computes lead scores under a fixed weight and tier configuration.
type Scorer struct {
	weights Weights
	tiers   Tiers
}

// NewScorer validates the configuration and returns a scorer.
func NewScorer(weights Weights, tiers Tiers) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if err := tiers.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: weights, tiers: tiers}, nil
}

// NewDefaultScorer returns a scorer with the standard weights and tiers.
func NewDefaultScorer() *Scorer {
	s, _ := NewScorer(DefaultWeights(), DefaultTiers())
	return s
}

// Score derives the full lead score from a profile snapshot. It is pure
// and deterministic: the same profile and clock always produce an
// identical result.
func (s *Scorer) Score(p *event.Profile, now time.Time) LeadScore {
	out := LeadScore{
		Demographic: demographicScore(p),
		Behavioral:  behavioralScore(p, now),
		Engagement:  engagementScore(p, now),
		Intent:      intentScore(p, now),
		Fit:         fitScore(p),
		Urgency:     urgencyScore(p, now),
	}

	out.Overall = out.Demographic*s.weights.Demographic +
		out.Behavioral*s.weights.Behavioral +
		out.Engagement*s.weights.Engagement +
		out.Intent*s.weights.Intent +
		out.Fit*s.weights.Fit +
		out.Urgency*s.weights.Urgency

	out.Tier = s.tiers.classify(out.Overall)
	out.Priority = tierPriority[out.Tier]
	out.NextBestAction = nextBestAction(out.Tier, p)
	out.Reasoning = buildReasoning(out)

	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// demographicScore sums the four firmographic table lookups.
func demographicScore(p *event.Profile) float64 {
	score := lookup(industryFit, p.Industry) +
		lookup(employeeFit, p.EmployeeCount) +
		lookup(budgetFit, p.Budget) +
		lookup(timelineDemographic, p.Timeline)
	return clamp(score, 0, 100)
}

// behavioralScore rewards visit frequency, dwell time, page depth, and
// content diversity.
func behavioralScore(p *event.Profile, now time.Time) float64 {
	days := p.DaysSinceFirstTouch(now)
	frequency := math.Min(float64(p.SessionCount)/days*30, 30)

	var dwell float64
	if p.SessionCount > 0 {
		avgSession := p.TotalTimeSeconds / float64(p.SessionCount)
		// Sigmoid centered on a 180s average session.
		dwell = 30 / (1 + math.Exp(-(avgSession-180)/60))
	}

	sessions := math.Max(float64(p.SessionCount), 1)
	depth := math.Min(float64(p.PageViewCount)/sessions*4, 20)
	diversity := math.Min(float64(len(p.ContentConsumed))*4, 20)

	return clamp(frequency+dwell+depth+diversity, 0, 100)
}

// engagementScore sums conversion-event weights plus recency and
// multi-device bonuses.
func engagementScore(p *event.Profile, now time.Time) float64 {
	var score float64
	for _, evt := range p.ConversionEvents {
		score += conversionWeights[evt]
	}

	// Recency decays linearly to zero by 15 days since last activity.
	if !p.LastActivity.IsZero() {
		days := p.DaysSinceLastActivity(now)
		score += math.Max(0, 15*(1-days/15))
	}

	if len(p.DeviceTypes) >= 2 {
		score += 10
	}

	return clamp(score, 0, 100)
}

// intentScore counts high-intent content plus timeline, pain-point, and
// recent high-value action bonuses.
func intentScore(p *event.Profile, now time.Time) float64 {
	var categories float64
	for _, c := range p.ContentConsumed {
		if highIntentContent[c] {
			categories++
		}
	}
	score := math.Min(categories*12, 40)

	score += lookup(timelineIntent, p.Timeline)
	score += math.Min(float64(len(p.PainPoints))*8, 20)

	if p.DaysSinceLastActivity(now) <= 3 {
		for _, evt := range highValueEvents {
			if p.HasConversion(evt) {
				score += 15
				break
			}
		}
	}

	return clamp(score, 0, 100)
}

// fitScore starts neutral at 50 and adjusts for industry benchmark
// deviation, size sweet spot, budget, and traffic-source quality.
func fitScore(p *event.Profile) float64 {
	score := 50.0
	score += (lookup(industryBenchmark, p.Industry) - 50) * 0.5
	score += lookup(sweetSpotBonus, p.EmployeeCount)
	score += lookup(budgetBonus, p.Budget)
	score += lookup(sourceQuality, p.Source)
	return clamp(score, 0, 100)
}

// urgencyScore measures how hot the lead is right now.
func urgencyScore(p *event.Profile, now time.Time) float64 {
	score := lookup(timelineUrgency, p.Timeline)

	if !p.LastActivity.IsZero() && p.DaysSinceLastActivity(now) <= 3 {
		score += 25
	}
	if consumedCompetitiveContent(p) {
		score += 20
	}
	// Touchpoint density: more than one session per day on average.
	if float64(p.SessionCount)/p.DaysSinceFirstTouch(now) > 1 {
		score += 20
	}

	return clamp(score, 0, 100)
}

func consumedCompetitiveContent(p *event.Profile) bool {
	for _, content := range p.ContentConsumed {
		for _, kw := range competitiveKeywords {
			if strings.Contains(content, kw) {
				return true
			}
		}
	}
	return false
}

// nextBestAction is a total decision table over tier and the presence of
// specific conversion events; every tier has a fallback action.
func nextBestAction(tier Tier, p *event.Profile) string {
	switch tier {
	case TierHot:
		switch {
		case p.HasConversion(event.TypeMeetingScheduled):
			return "Follow up on the scheduled meeting"
		case p.HasConversion(event.TypeContactForm):
			return "Schedule an immediate sales call"
		case p.HasConversion(event.TypeDemoRequest):
			return "Deliver the requested demo within 24 hours"
		default:
			return "Begin direct outreach"
		}
	case TierWarm:
		switch {
		case p.HasConversion(event.TypeROICalculator):
			return "Send a tailored ROI summary"
		case p.HasConversion(event.TypeEmailCapture):
			return "Enroll in the mid-funnel email sequence"
		default:
			return "Send a personalized case study"
		}
	case TierCold:
		if p.HasConversion(event.TypeEmailCapture) {
			return "Continue automated nurture emails"
		}
		return "Add to the monthly newsletter"
	default:
		return "Keep in the low-touch nurture pool"
	}
}

// buildReasoning produces explanation bullets from sub-score threshold
// crossings. Purely informational; never feeds back into the score.
func buildReasoning(score LeadScore) []string {
	var reasons []string

	add := func(value float64, strong, weak string) {
		if value > 75 {
			reasons = append(reasons, strong)
		} else if value < 40 {
			reasons = append(reasons, weak)
		}
	}

	add(score.Demographic,
		"Strong demographic match with the target customer profile",
		"Demographic profile falls outside the core target market")
	add(score.Behavioral,
		"Heavy site usage indicates serious research activity",
		"Light browsing behavior so far")
	add(score.Engagement,
		"High engagement across conversion touchpoints",
		"Few meaningful engagement actions recorded")
	add(score.Intent,
		"Content consumption signals active purchase intent",
		"Little high-intent content consumed yet")
	add(score.Fit,
		"Excellent fit with the ideal customer profile",
		"Weak fit with the ideal customer profile")
	add(score.Urgency,
		"Buying signals suggest a near-term decision",
		"No near-term urgency detected")

	reasons = append(reasons,
		fmt.Sprintf("Overall score %.1f places this lead in the %s tier", score.Overall, score.Tier))

	return reasons
}
