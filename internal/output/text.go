package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/trk/internal/domain"
)

// TextWriter renders human-readable output. Colors are only emitted when w
// is a terminal.
type TextWriter struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
	title   lipgloss.Style
}

// NewTextWriter creates a text writer on w
func NewTextWriter(w io.Writer) *TextWriter {
	r := lipgloss.NewRenderer(w)
	return &TextWriter{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		title:   r.NewStyle().Bold(true),
	}
}

// WriteResult prints a success line
func (t *TextWriter) WriteResult(message string) error {
	_, err := fmt.Fprintln(t.w, t.success.Render("✓")+" "+message)
	return err
}

// WriteError prints an error line
func (t *TextWriter) WriteError(code, message string, hint ...string) error {
	line := t.failure.Render(fmt.Sprintf("Error [%s]:", code)) + " " + message
	if len(hint) > 0 && hint[0] != "" {
		line += t.muted.Render(fmt.Sprintf(" (hint: %s)", hint[0]))
	}
	_, err := fmt.Fprintln(t.w, line)
	return err
}

// WriteEvents prints events as a table
func (t *TextWriter) WriteEvents(events []domain.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(t.w, t.muted.Render("No events tracked yet."))
		return err
	}

	table := tablewriter.NewWriter(t.w)
	table.Header("#", "Event", "Properties")
	for i, e := range events {
		props := make([]string, 0, len(e.Properties))
		for _, p := range e.Properties {
			props = append(props, p.Key+": "+p.Value)
		}
		if err := table.Append([]string{strconv.Itoa(i + 1), e.Name, strings.Join(props, "\n")}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteSession prints the active session
func (t *TextWriter) WriteSession(id string, active bool, screens []string) error {
	if !active {
		_, err := fmt.Fprintln(t.w, t.muted.Render("No active session"))
		return err
	}
	if _, err := fmt.Fprintf(t.w, "%s %s\n", t.title.Render("Session:"), id); err != nil {
		return err
	}
	if len(screens) > 0 {
		_, err := fmt.Fprintf(t.w, "%s %s\n", t.title.Render("Timing screens:"), strings.Join(screens, ", "))
		return err
	}
	return nil
}

// WriteBlob prints the raw blob, or a placeholder when empty
func (t *TextWriter) WriteBlob(blob string) error {
	if blob == "" {
		_, err := fmt.Fprintln(t.w, t.muted.Render("(empty)"))
		return err
	}
	_, err := fmt.Fprintln(t.w, blob)
	return err
}

// WriteSessionStart prints a session start banner
func (t *TextWriter) WriteSessionStart(s *domain.SessionStart) error {
	line := t.success.Render("✓") + " Session started: " + s.SessionID
	if s.PreviousID != "" {
		line += t.muted.Render(" (replaced " + s.PreviousID + ")")
	}
	_, err := fmt.Fprintln(t.w, line)
	return err
}

// WriteSessionEnd prints a session end summary
func (t *TextWriter) WriteSessionEnd(message string, s *domain.SessionEnd) error {
	_, err := fmt.Fprintf(t.w, "%s %s %s\n",
		t.success.Render("✓"),
		message,
		t.muted.Render(fmt.Sprintf("(%d events, %d screen)", s.Summary.TotalEvents, s.Summary.ScreenEvents)),
	)
	return err
}
