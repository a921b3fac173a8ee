package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/vburojevic/trk/internal/codec"
	"github.com/vburojevic/trk/internal/domain"
	"github.com/vburojevic/trk/internal/output"
)

// StartCmd starts a session
type StartCmd struct {
	ID string `help:"Session id (default: random UUID)"`
}

// Run executes the start command
func (c *StartCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	previous, _ := m.CurrentSession()
	id, err := m.StartSession(c.ID)
	if err != nil {
		return outputError(globals, err)
	}
	if globals.Quiet {
		return nil
	}

	rec := domain.NewSessionStart(id, previous, time.Now())
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).Write(rec)
	}
	return output.NewTextWriter(globals.Stdout).WriteSessionStart(rec)
}

// EndCmd ends the active session
type EndCmd struct{}

// Run executes the end command
func (c *EndCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	id, _ := m.CurrentSession()
	events := m.Events()

	msg, err := m.EndSession()
	if err != nil {
		return outputError(globals, err)
	}
	if globals.Quiet {
		return nil
	}

	rec := domain.NewSessionEnd(id, events, time.Now())
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).Write(rec)
	}
	return output.NewTextWriter(globals.Stdout).WriteSessionEnd(msg, rec)
}

// TrackCmd tracks a named event
type TrackCmd struct {
	Name  string   `arg:"" help:"Event name"`
	Props []string `arg:"" optional:"" help:"Properties as KEY=VALUE"`
}

// Run executes the track command
func (c *TrackCmd) Run(globals *Globals) error {
	props, err := parseProps(c.Props)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_PROPERTY", err.Error(), "use KEY=VALUE")
	}
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	msg, err := m.TrackEvent(domain.Event{Name: c.Name, Properties: props})
	if err != nil {
		return outputError(globals, err)
	}
	id, _ := m.CurrentSession()
	return globals.emitResult("track", msg, id)
}

// parseProps turns KEY=VALUE arguments into ordered properties
func parseProps(args []string) (domain.Properties, error) {
	var props domain.Properties
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q", arg)
		}
		props.Set(key, value)
	}
	return props, nil
}

// ScreenCmd groups screen timing commands
type ScreenCmd struct {
	Start ScreenStartCmd `cmd:"" help:"Start timing a screen"`
	End   ScreenEndCmd   `cmd:"" help:"Stop timing a screen and track a ScreenTime event"`
}

// ScreenStartCmd starts a screen timer
type ScreenStartCmd struct {
	Name string `arg:"" help:"Screen name"`
}

// Run executes the screen start command
func (c *ScreenStartCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	msg, err := m.StartScreenTracking(c.Name)
	if err != nil {
		return outputError(globals, err)
	}
	id, _ := m.CurrentSession()
	return globals.emitResult("screen_start", msg, id)
}

// ScreenEndCmd ends a screen timer
type ScreenEndCmd struct {
	Name string `arg:"" help:"Screen name"`
}

// Run executes the screen end command
func (c *ScreenEndCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	msg, err := m.EndScreenTracking(c.Name)
	if err != nil {
		return outputError(globals, err)
	}
	id, _ := m.CurrentSession()
	return globals.emitResult("screen_end", msg, id)
}

// SessionCmd shows the active session
type SessionCmd struct{}

// Run executes the session command
func (c *SessionCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	id, active := m.CurrentSession()
	screens := m.ActiveScreens()
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteSession(id, active, screens)
	}
	return output.NewTextWriter(globals.Stdout).WriteSession(id, active, screens)
}

// EventsCmd lists the session's events
type EventsCmd struct{}

// Run executes the events command
func (c *EventsCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	return globals.emitEvents(m.Events())
}

// BlobCmd prints the persisted blob
type BlobCmd struct{}

// Run executes the blob command
func (c *BlobCmd) Run(globals *Globals) error {
	m, err := globals.Manager()
	if err != nil {
		return err
	}
	blob, err := m.PersistedBlob()
	if err != nil {
		return outputError(globals, err)
	}
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteBlob(blob)
	}
	return output.NewTextWriter(globals.Stdout).WriteBlob(blob)
}

// DecodeCmd decodes an arbitrary blob
type DecodeCmd struct {
	Blob string `arg:"" help:"Encoded blob, e.g. 'Click:a=1;View:b=2'"`
}

// Run executes the decode command
func (c *DecodeCmd) Run(globals *Globals) error {
	return globals.emitEvents(codec.New(globals.Logger()).Decode(c.Blob))
}

func (g *Globals) emitResult(op, message, sessionID string) error {
	if g.Quiet {
		return nil
	}
	if g.Format == "ndjson" {
		return output.NewNDJSONWriter(g.Stdout).WriteResult(op, message, sessionID)
	}
	return output.NewTextWriter(g.Stdout).WriteResult(message)
}

func (g *Globals) emitEvents(events []domain.Event) error {
	if g.Format == "ndjson" {
		return output.NewNDJSONWriter(g.Stdout).WriteEvents(events)
	}
	return output.NewTextWriter(g.Stdout).WriteEvents(events)
}
