package leadscore

import "github.com/brightline/growth-engine/internal/event"

// Lookup tables for the sub-scores. Every table has an explicit default so
// a missing or unrecognized attribute lands in the lowest bucket instead
// of failing.

const tableDefault = "other"

func lookup(table map[string]float64, key string) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return table[tableDefault]
}

// Industry fit toward a consulting practice's target verticals.
var industryFit = map[string]float64{
	"technology":            25,
	"finance":               22,
	"healthcare":            20,
	"professional_services": 20,
	"manufacturing":         18,
	"retail":                14,
	"education":             10,
	tableDefault:            5,
}

// Company-size bracket, by employee count.
var employeeFit = map[string]float64{
	"1-10":       10,
	"11-50":      18,
	"51-200":     25,
	"201-1000":   22,
	"1000+":      15,
	tableDefault: 5,
}

// Budget bracket.
var budgetFit = map[string]float64{
	"under_10k":  8,
	"10k_50k":    16,
	"50k_100k":   22,
	"100k_plus":  25,
	tableDefault: 5,
}

// Timeline contributions. Strictly increasing from exploring to immediate
// in every table that uses them.
var (
	timelineDemographic = map[string]float64{
		"immediate":  25,
		"1_3_months": 20,
		"3_6_months": 14,
		"exploring":  8,
		tableDefault: 4,
	}
	timelineIntent = map[string]float64{
		"immediate":  25,
		"1_3_months": 15,
		"3_6_months": 8,
		"exploring":  3,
		tableDefault: 0,
	}
	timelineUrgency = map[string]float64{
		"immediate":  35,
		"1_3_months": 20,
		"3_6_months": 10,
		"exploring":  4,
		tableDefault: 0,
	}
)

// Conversion-event weights, strictly increasing by commercial value.
var conversionWeights = map[string]float64{
	event.TypeEmailCapture:     8,
	event.TypeROICalculator:    12,
	event.TypeDemoRequest:      18,
	event.TypeContactForm:      22,
	event.TypePhoneCall:        26,
	event.TypeMeetingScheduled: 30,
}

// highValueEvents mark a lead as sales-ready when recent.
var highValueEvents = []string{
	event.TypeDemoRequest,
	event.TypeContactForm,
	event.TypePhoneCall,
	event.TypeMeetingScheduled,
}

// Content categories signalling purchase intent.
var highIntentContent = map[string]bool{
	"pricing":        true,
	"case_studies":   true,
	"demo":           true,
	"roi_calculator": true,
	"comparison":     true,
	"implementation": true,
}

// Substrings marking competitive-research content.
var competitiveKeywords = []string{"comparison", "alternative", "vs", "versus", "switching"}

// Expected fit benchmark per industry; 50 is neutral.
var industryBenchmark = map[string]float64{
	"technology":            70,
	"finance":               65,
	"professional_services": 66,
	"healthcare":            62,
	"manufacturing":         58,
	"retail":                50,
	tableDefault:            40,
}

// Traffic-source quality bonus for the fit score.
var sourceQuality = map[string]float64{
	"referral":   12,
	"organic":    8,
	"direct":     6,
	"paid":       4,
	"social":     2,
	tableDefault: 0,
}

// Company-size sweet spot bonus for the fit score.
var sweetSpotBonus = map[string]float64{
	"51-200":     15,
	"11-50":      8,
	"201-1000":   8,
	tableDefault: 0,
}

// Budget bonus for the fit score.
var budgetBonus = map[string]float64{
	"100k_plus":  15,
	"50k_100k":   12,
	"10k_50k":    6,
	tableDefault: 0,
}
