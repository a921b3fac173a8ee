package domain

import "time"

// SchemaVersion of the NDJSON session records
const SchemaVersion = 1

// SessionStart is emitted when a new analytics session begins
type SessionStart struct {
	Type          string `json:"type"`                          // "session_start"
	SchemaVersion int    `json:"schemaVersion"`                 // 1
	Alert         string `json:"alert,omitempty"`               // "SESSION_REPLACED" when a previous session was active
	SessionID     string `json:"session_id"`                    // Opaque session id
	PreviousID    string `json:"previous_session_id,omitempty"` // Session that was replaced
	Timestamp     string `json:"timestamp"`                     // ISO8601 timestamp
}

// SessionEnd is emitted when an analytics session ends
type SessionEnd struct {
	Type          string         `json:"type"`          // "session_end"
	SchemaVersion int            `json:"schemaVersion"` // 1
	SessionID     string         `json:"session_id"`    // Session that ended
	Summary       SessionSummary `json:"summary"`       // Summary of the session
	Timestamp     string         `json:"timestamp"`     // ISO8601 timestamp
}

// SessionSummary contains statistics about a completed session
type SessionSummary struct {
	TotalEvents  int `json:"total_events"`
	ScreenEvents int `json:"screen_events"`
}

// NewSessionStart creates a new SessionStart record
func NewSessionStart(sessionID, previousID string, now time.Time) *SessionStart {
	s := &SessionStart{
		Type:          "session_start",
		SchemaVersion: SchemaVersion,
		SessionID:     sessionID,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
	if previousID != "" {
		s.Alert = "SESSION_REPLACED"
		s.PreviousID = previousID
	}
	return s
}

// NewSessionEnd creates a new SessionEnd record summarizing events
func NewSessionEnd(sessionID string, events []Event, now time.Time) *SessionEnd {
	summary := SessionSummary{TotalEvents: len(events)}
	for _, e := range events {
		if e.Name == ScreenTimeEvent {
			summary.ScreenEvents++
		}
	}
	return &SessionEnd{
		Type:          "session_end",
		SchemaVersion: SchemaVersion,
		SessionID:     sessionID,
		Summary:       summary,
		Timestamp:     now.UTC().Format(time.RFC3339),
	}
}
