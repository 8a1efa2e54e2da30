package event

import (
	"sort"
	"time"
)

// Profile accumulates a visitor's behavioral history. Counters and sets
// grow monotonically; nothing is removed mid-session. Sets are kept as
// sorted unique slices so the persisted JSON is deterministic.
type Profile struct {
	SessionCount     int       `json:"session_count"`
	TotalTimeSeconds float64   `json:"total_time_seconds"`
	PageViewCount    int       `json:"page_view_count"`
	ContentConsumed  []string  `json:"content_consumed,omitempty"`
	ConversionEvents []string  `json:"conversion_events,omitempty"`
	DeviceTypes      []string  `json:"device_types,omitempty"`
	PainPoints       []string  `json:"pain_points,omitempty"`
	FirstTouch       time.Time `json:"first_touch"`
	LastActivity     time.Time `json:"last_activity"`

	// Firmographic attributes, captured from form events when present.
	// Empty string means unknown; scoring treats unknown as the lowest
	// bucket.
	Industry      string `json:"industry,omitempty"`
	EmployeeCount string `json:"employee_count,omitempty"`
	Budget        string `json:"budget,omitempty"`
	Timeline      string `json:"timeline,omitempty"`
	Source        string `json:"source,omitempty"`
}

// Apply folds a single event into the profile. Unknown event types still
// advance the activity timestamp; they are facts, just not scored ones.
func (p *Profile) Apply(evt Event) {
	if p.FirstTouch.IsZero() || evt.Timestamp.Before(p.FirstTouch) {
		p.FirstTouch = evt.Timestamp
	}
	if evt.Timestamp.After(p.LastActivity) {
		p.LastActivity = evt.Timestamp
	}

	switch evt.Type {
	case TypeSessionStart:
		p.SessionCount++
		if device := evt.String("deviceType", ""); device != "" {
			p.DeviceTypes = addToSet(p.DeviceTypes, device)
		}
		if p.Source == "" {
			p.Source = evt.String("source", "")
		}

	case TypePageView:
		p.PageViewCount++
		if category := evt.String("contentCategory", ""); category != "" {
			p.ContentConsumed = addToSet(p.ContentConsumed, category)
		}

	case TypeHeartbeat:
		p.TotalTimeSeconds += evt.Float("durationSeconds", 0)
	}

	if evt.IsConversion() {
		p.ConversionEvents = append(p.ConversionEvents, evt.Type)
	}

	// Forms and calculators self-report firmographics; later answers win.
	if v := evt.String("industry", ""); v != "" {
		p.Industry = v
	}
	if v := evt.String("employeeCount", ""); v != "" {
		p.EmployeeCount = v
	}
	if v := evt.String("budget", ""); v != "" {
		p.Budget = v
	}
	if v := evt.String("timeline", ""); v != "" {
		p.Timeline = v
	}
	if v := evt.String("painPoint", ""); v != "" {
		p.PainPoints = addToSet(p.PainPoints, v)
	}
}

// HasConversion reports whether the named conversion event has occurred.
func (p *Profile) HasConversion(eventType string) bool {
	for _, e := range p.ConversionEvents {
		if e == eventType {
			return true
		}
	}
	return false
}

// DaysSinceFirstTouch returns whole-plus-fractional days since the first
// recorded event, with a floor of one day so frequency ratios stay finite.
func (p *Profile) DaysSinceFirstTouch(now time.Time) float64 {
	if p.FirstTouch.IsZero() {
		return 1
	}
	days := now.Sub(p.FirstTouch).Hours() / 24
	if days < 1 {
		return 1
	}
	return days
}

// DaysSinceLastActivity returns days since the most recent event.
func (p *Profile) DaysSinceLastActivity(now time.Time) float64 {
	if p.LastActivity.IsZero() {
		return 0
	}
	days := now.Sub(p.LastActivity).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

func addToSet(set []string, val string) []string {
	i := sort.SearchStrings(set, val)
	if i < len(set) && set[i] == val {
		return set
	}
	set = append(set, "")
	copy(set[i+1:], set[i:])
	set[i] = val
	return set
}
