package cli

import (
	"errors"

	"github.com/vburojevic/trk/internal/kv"
	"github.com/vburojevic/trk/internal/output"
	"github.com/vburojevic/trk/internal/tracker"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so agents always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		output.NewTextWriter(globals.Stderr).WriteError(code, message, hint...)
	}
	return errors.New(message)
}

// outputError maps a core error to its stable code and emits it
func outputError(globals *Globals, err error) error {
	code, hint := errorCode(err)
	return outputErrorCommon(globals, code, err.Error(), hint)
}

func errorCode(err error) (code, hint string) {
	switch {
	case errors.Is(err, tracker.ErrNoActiveSession):
		return "NO_ACTIVE_SESSION", "run 'trk start' first"
	case errors.Is(err, tracker.ErrScreenTrackingNotStarted):
		return "SCREEN_TRACKING_NOT_STARTED", "start and end screens within one 'trk shell'"
	case errors.Is(err, tracker.ErrInvalidEvent):
		return "INVALID_EVENT", ""
	case errors.Is(err, tracker.ErrPersist), errors.Is(err, kv.ErrUnknownBackend):
		return "STORE_FAILED", ""
	default:
		return "STORE_FAILED", "check --store and --store-path"
	}
}
