// Package output renders command results as NDJSON for agents or as styled
// text for people.
package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/vburojevic/trk/internal/domain"
)

// SchemaVersion of every NDJSON record
const SchemaVersion = 1

// OrderedProperties marshals to a JSON object that keeps insertion order
type OrderedProperties domain.Properties

func (p OrderedProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(prop.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Result is the outcome of a successful operation
type Result struct {
	Type          string `json:"type"` // "result"
	SchemaVersion int    `json:"schemaVersion"`
	Op            string `json:"op"`
	Message       string `json:"message"`
	SessionID     string `json:"session_id,omitempty"`
}

// Error is a failed operation
type Error struct {
	Type          string `json:"type"` // "error"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// Event is one tracked event
type Event struct {
	Type          string            `json:"type"` // "event"
	SchemaVersion int               `json:"schemaVersion"`
	Index         int               `json:"index"`
	Name          string            `json:"name"`
	Properties    OrderedProperties `json:"properties"`
}

// Session reports the active session
type Session struct {
	Type          string   `json:"type"` // "session"
	SchemaVersion int      `json:"schemaVersion"`
	Active        bool     `json:"active"`
	SessionID     string   `json:"session_id,omitempty"`
	Screens       []string `json:"screens,omitempty"`
}

// Blob carries the raw persisted event blob
type Blob struct {
	Type          string `json:"type"` // "blob"
	SchemaVersion int    `json:"schemaVersion"`
	Blob          string `json:"blob"`
}

// NDJSONWriter writes one JSON object per line
type NDJSONWriter struct {
	encoder *json.Encoder
}

// NewNDJSONWriter creates a writer on w
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &NDJSONWriter{encoder: enc}
}

// Write encodes any record
func (w *NDJSONWriter) Write(v interface{}) error {
	return w.encoder.Encode(v)
}

// WriteResult writes a success record
func (w *NDJSONWriter) WriteResult(op, message, sessionID string) error {
	return w.Write(&Result{
		Type:          "result",
		SchemaVersion: SchemaVersion,
		Op:            op,
		Message:       message,
		SessionID:     sessionID,
	})
}

// WriteError writes an error record
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	e := &Error{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		e.Hint = hint[0]
	}
	return w.Write(e)
}

// WriteEvents writes one record per event
func (w *NDJSONWriter) WriteEvents(events []domain.Event) error {
	for i, e := range events {
		err := w.Write(&Event{
			Type:          "event",
			SchemaVersion: SchemaVersion,
			Index:         i,
			Name:          e.Name,
			Properties:    OrderedProperties(e.Properties),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteSession writes the active session state
func (w *NDJSONWriter) WriteSession(id string, active bool, screens []string) error {
	return w.Write(&Session{
		Type:          "session",
		SchemaVersion: SchemaVersion,
		Active:        active,
		SessionID:     id,
		Screens:       screens,
	})
}

// WriteBlob writes the raw blob
func (w *NDJSONWriter) WriteBlob(blob string) error {
	return w.Write(&Blob{Type: "blob", SchemaVersion: SchemaVersion, Blob: blob})
}
