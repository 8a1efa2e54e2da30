package leadscore

import (
	"fmt"
	"sort"
	"time"

	"github.com/brightline/growth-engine/internal/event"
)

// Insight kinds and urgencies.
const (
	InsightOpportunity    = "opportunity"
	InsightRisk           = "risk"
	InsightRecommendation = "recommendation"

	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// Insight is a narrative observation derived from a scored profile.
type Insight struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Confidence int    `json:"confidence"`
	Actionable bool   `json:"actionable"`
	Urgency    string `json:"urgency"`
}

var urgencyRank = map[string]int{
	UrgencyHigh:   0,
	UrgencyMedium: 1,
	UrgencyLow:    2,
}

// GenerateInsights evaluates independent rules against a profile and its
// score. Rules do not suppress one another; results are ordered by
// urgency, stably, so rule order breaks ties.
func GenerateInsights(p *event.Profile, score LeadScore, now time.Time) []Insight {
	var insights []Insight

	if score.Tier == TierHot && score.Urgency > 60 {
		insights = append(insights, Insight{
			Type:       InsightOpportunity,
			Message:    "Hot lead showing strong urgency signals; contact within 24 hours",
			Confidence: 90,
			Actionable: true,
			Urgency:    UrgencyHigh,
		})
	}

	if score.Overall > 60 && p.DaysSinceLastActivity(now) > 7 {
		insights = append(insights, Insight{
			Type: InsightRisk,
			Message: fmt.Sprintf("Qualified lead has been inactive for %.0f days and may be going cold",
				p.DaysSinceLastActivity(now)),
			Confidence: 75,
			Actionable: true,
			Urgency:    UrgencyMedium,
		})
	}

	if score.Engagement > 70 && score.Intent < 40 {
		insights = append(insights, Insight{
			Type:       InsightOpportunity,
			Message:    "Highly engaged but low purchase intent; nurture with solution-focused content",
			Confidence: 70,
			Actionable: true,
			Urgency:    UrgencyLow,
		})
	}

	if score.Fit < 40 && score.Overall >= 50 {
		insights = append(insights, Insight{
			Type:       InsightRisk,
			Message:    "Active lead is a weak fit for the ideal customer profile; qualify before investing sales time",
			Confidence: 65,
			Actionable: false,
			Urgency:    UrgencyLow,
		})
	}

	if p.SessionCount >= 5 && len(p.ConversionEvents) == 0 {
		insights = append(insights, Insight{
			Type:       InsightRecommendation,
			Message:    "Repeat visitor has never converted; offer a low-friction call to action",
			Confidence: 70,
			Actionable: true,
			Urgency:    UrgencyMedium,
		})
	}

	if consumedCompetitiveContent(p) {
		insights = append(insights, Insight{
			Type:       InsightOpportunity,
			Message:    "Lead is researching competitors; lead with differentiation material",
			Confidence: 80,
			Actionable: true,
			Urgency:    UrgencyMedium,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return urgencyRank[insights[i].Urgency] < urgencyRank[insights[j].Urgency]
	})

	return insights
}
