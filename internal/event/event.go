// Package event defines the raw behavioral facts the engine consumes and
// the visitor behavior profile they accumulate into. Events arrive from UI
// callbacks; the engine does not care about transport.
package event

import "time"

// Behavioral event types.
const (
	TypeSessionStart = "session_start"
	TypePageView     = "page_view"
	TypeScrollDepth  = "scroll_depth"
	TypeClick        = "click"
	TypeHeartbeat    = "session_heartbeat"
)

// Conversion event types, ordered by commercial value.
const (
	TypeEmailCapture     = "email_capture"
	TypeROICalculator    = "roi_calculator"
	TypeDemoRequest      = "demo_request"
	TypeContactForm      = "contact_form"
	TypePhoneCall        = "phone_call"
	TypeMeetingScheduled = "meeting_scheduled"
)

// conversionTypes is the set of event types that count as conversions.
var conversionTypes = map[string]bool{
	TypeEmailCapture:     true,
	TypeROICalculator:    true,
	TypeDemoRequest:      true,
	TypeContactForm:      true,
	TypePhoneCall:        true,
	TypeMeetingScheduled: true,
}

// Event is a single behavioral fact from a visiting session.
type Event struct {
	Type      string                 `json:"event_type"`
	Data      map[string]interface{} `json:"event_data,omitempty"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
}

// IsConversion reports whether the event type counts as a conversion.
func (e Event) IsConversion() bool {
	return conversionTypes[e.Type]
}

// String returns the string value stored under key, or fallback when the
// key is absent or holds a different type.
func (e Event) String(key, fallback string) string {
	if v, ok := e.Data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// Float returns the numeric value stored under key, or fallback. Integer
// values are widened; JSON numbers always decode as float64.
func (e Event) Float(key string, fallback float64) float64 {
	if v, ok := e.Data[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return fallback
}

// Bool returns the boolean value stored under key, or fallback.
func (e Event) Bool(key string, fallback bool) bool {
	if v, ok := e.Data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}
