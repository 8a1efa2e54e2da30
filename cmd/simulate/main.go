// Command simulate runs a synthetic traffic session against the in-memory
// store: it registers a 50/50 experiment, pushes N visitors through
// assignment with biased conversion rates, and prints the assignment
// distribution, the significance verdict, and a lead-tier histogram.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/brightline/growth-engine/internal/event"
	"github.com/brightline/growth-engine/internal/experiment"
	"github.com/brightline/growth-engine/internal/leadscore"
	"github.com/brightline/growth-engine/internal/store"
)

func main() {
	visitors := flag.Int("visitors", 2000, "number of synthetic visitors")
	controlRate := flag.Float64("control-rate", 0.05, "control conversion rate")
	challengerRate := flag.Float64("challenger-rate", 0.08, "challenger conversion rate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	engine := experiment.NewEngine(store.NewMemory())
	exp := &experiment.Experiment{
		ID:               "hero-cta",
		Name:             "Hero call to action",
		Active:           true,
		TargetMetric:     experiment.MetricConversionRate,
		MinSampleSize:    100,
		ConfidenceTarget: 95,
		Variants: []experiment.Variant{
			{ID: "control", Weight: 50, IsControl: true},
			{ID: "challenger", Weight: 50},
		},
	}
	if err := engine.Register(ctx, exp); err != nil {
		log.Fatalf("register experiment: %v", err)
	}

	rates := map[string]float64{
		"control":    *controlRate,
		"challenger": *challengerRate,
	}

	assigned := map[string]int{}
	tiers := map[leadscore.Tier]int{}
	scorer := leadscore.NewDefaultScorer()
	now := time.Now().UTC()

	for i := 0; i < *visitors; i++ {
		visitorID := fmt.Sprintf("visitor-%04d", i)

		variant := engine.Assign(ctx, visitorID, exp.ID)
		if variant == nil {
			log.Fatalf("no variant for %s", visitorID)
		}
		assigned[variant.ID]++

		converted := rng.Float64() < rates[variant.ID]
		if converted {
			engine.RecordConversion(ctx, visitorID, exp.ID, 1)
		}

		profile := syntheticProfile(rng, converted, now)
		score := scorer.Score(profile, now)
		tiers[score.Tier]++
	}

	fmt.Printf("Assignment distribution (%d visitors):\n", *visitors)
	for _, id := range []string{"control", "challenger"} {
		fmt.Printf("  %-10s %5d (%.1f%%)\n", id, assigned[id],
			100*float64(assigned[id])/float64(*visitors))
	}

	result, err := engine.Results(ctx, exp.ID)
	if err != nil {
		log.Fatalf("results: %v", err)
	}
	fmt.Printf("\nSignificance:\n")
	fmt.Printf("  control rate     %.4f\n", result.ControlRate)
	fmt.Printf("  challenger rate  %.4f\n", result.ChallengerRate)
	fmt.Printf("  improvement      %.1f%%\n", result.ImprovementPercent)
	fmt.Printf("  confidence       %d%%\n", result.ConfidencePercent)
	fmt.Printf("  verdict          %s", result.RecommendedAction)
	if result.Significant {
		fmt.Printf(" (winner: %s)", result.WinnerVariantID)
	}
	fmt.Println()

	fmt.Printf("\nLead tiers:\n")
	for _, tier := range []leadscore.Tier{
		leadscore.TierHot, leadscore.TierWarm, leadscore.TierCold, leadscore.TierNurture,
	} {
		fmt.Printf("  %-8s %5d\n", tier, tiers[tier])
	}
}

// syntheticProfile fabricates a plausible visitor history. Converted
// visitors skew toward engaged, well-qualified leads.
func syntheticProfile(rng *rand.Rand, converted bool, now time.Time) *event.Profile {
	industries := []string{"technology", "finance", "healthcare", "retail", "other"}
	sizes := []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}
	budgets := []string{"under_10k", "10k_50k", "50k_100k", "100k_plus"}
	timelines := []string{"exploring", "3_6_months", "1_3_months", "immediate"}
	sources := []string{"organic", "paid", "referral", "direct", "social"}

	sessions := 1 + rng.Intn(6)
	p := &event.Profile{
		SessionCount:     sessions,
		TotalTimeSeconds: float64(sessions) * (60 + rng.Float64()*400),
		PageViewCount:    sessions * (1 + rng.Intn(6)),
		FirstTouch:       now.Add(-time.Duration(1+rng.Intn(20)) * 24 * time.Hour),
		LastActivity:     now.Add(-time.Duration(rng.Intn(96)) * time.Hour),
		Industry:         industries[rng.Intn(len(industries))],
		EmployeeCount:    sizes[rng.Intn(len(sizes))],
		Budget:           budgets[rng.Intn(len(budgets))],
		Timeline:         timelines[rng.Intn(len(timelines))],
		Source:           sources[rng.Intn(len(sources))],
	}

	content := []string{"blog", "pricing", "case_studies", "demo", "comparison"}
	for _, c := range content[:1+rng.Intn(len(content)-1)] {
		p.ContentConsumed = append(p.ContentConsumed, c)
	}

	if converted {
		p.ConversionEvents = append(p.ConversionEvents, event.TypeEmailCapture)
		if rng.Float64() < 0.4 {
			p.ConversionEvents = append(p.ConversionEvents, event.TypeDemoRequest)
		}
		if rng.Float64() < 0.2 {
			p.ConversionEvents = append(p.ConversionEvents, event.TypeContactForm)
		}
		p.Timeline = timelines[1+rng.Intn(len(timelines)-1)]
		p.LastActivity = now.Add(-time.Duration(rng.Intn(24)) * time.Hour)
	}

	return p
}
