package anticheat

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a category of suspicious behavior.
type EventType string

const (
	EventTabSwitch        EventType = "tab_switch"
	EventCopyPaste        EventType = "copy_paste"
	EventScreenshot       EventType = "screenshot"
	EventTimeout          EventType = "timeout"
	EventRapidClick       EventType = "rapid_click"
	EventMinimizedTooLong EventType = "minimized_too_long"
	EventNavigatedAway    EventType = "navigated_away"
)

// Severity ranks how strongly an event suggests cheating.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Event is a single detected suspicious behavior during a test attempt.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Severity  Severity          `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
}

func newEvent(t EventType, sev Severity, details map[string]string) Event {
	return Event{
		ID:        uuid.New(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Severity:  sev,
		Details:   details,
	}
}
