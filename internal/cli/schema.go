package cli

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaCmd outputs JSON Schema for trk output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (result,error,event,session,blob,session_start,session_end). Default: all"`
}

var schemaTypes = []string{"result", "error", "event", "session", "blob", "session_start", "session_end"}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	if globals.Format == "text" && len(c.Type) == 0 {
		c.outputTextHelp(globals)
		return nil
	}

	schemas := map[string]interface{}{
		"result":        resultSchema(),
		"error":         errorSchema(),
		"event":         eventSchema(),
		"session":       sessionSchema(),
		"blob":          blobSchema(),
		"session_start": sessionStartSchema(),
		"session_end":   sessionEndSchema(),
	}

	// Determine which schemas to output
	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}

	output := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "trk Output Schemas",
		"description": "JSON Schema definitions for all trk NDJSON output types",
		"definitions": map[string]interface{}{},
	}

	defs := output["definitions"].(map[string]interface{})
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	encoder := json.NewEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func typeConst(name string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "const": name}
}

func schemaVersionProp() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "const": 1}
}

func resultSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Result",
		"description": "Successful outcome of a mutating operation",
		"properties": map[string]interface{}{
			"type":          typeConst("result"),
			"schemaVersion": schemaVersionProp(),
			"op": map[string]interface{}{
				"type": "string",
				"enum": []string{"track", "screen_start", "screen_end"},
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable outcome; render it, do not parse it",
			},
			"session_id": map[string]interface{}{"type": "string"},
		},
		"required": []string{"type", "op", "message"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "Failed operation",
		"properties": map[string]interface{}{
			"type":          typeConst("error"),
			"schemaVersion": schemaVersionProp(),
			"code": map[string]interface{}{
				"type": "string",
				"enum": []string{
					"NO_ACTIVE_SESSION",
					"SCREEN_TRACKING_NOT_STARTED",
					"INVALID_EVENT",
					"INVALID_PROPERTY",
					"INVALID_FLAGS",
					"STORE_FAILED",
					"UNKNOWN_COMMAND",
				},
			},
			"message": map[string]interface{}{
				"type":        "string",
				"description": "Human-readable error description",
			},
			"hint": map[string]interface{}{"type": "string"},
		},
		"required": []string{"type", "code", "message"},
	}
}

func eventSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Event",
		"description": "A tracked analytics event",
		"properties": map[string]interface{}{
			"type":          typeConst("event"),
			"schemaVersion": schemaVersionProp(),
			"index":         map[string]interface{}{"type": "integer", "minimum": 0},
			"name":          map[string]interface{}{"type": "string", "minLength": 1},
			"properties": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": map[string]interface{}{"type": "string"},
				"description":          "Properties in insertion order",
			},
		},
		"required": []string{"type", "index", "name", "properties"},
	}
}

func sessionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Session",
		"properties": map[string]interface{}{
			"type":          typeConst("session"),
			"schemaVersion": schemaVersionProp(),
			"active":        map[string]interface{}{"type": "boolean"},
			"session_id":    map[string]interface{}{"type": "string"},
			"screens": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"type", "active"},
	}
}

func blobSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Blob",
		"properties": map[string]interface{}{
			"type":          typeConst("blob"),
			"schemaVersion": schemaVersionProp(),
			"blob": map[string]interface{}{
				"type":        "string",
				"description": "name:key=value,key=value;name:...",
			},
		},
		"required": []string{"type", "blob"},
	}
}

func sessionStartSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Session Start",
		"properties": map[string]interface{}{
			"type":                typeConst("session_start"),
			"schemaVersion":       schemaVersionProp(),
			"alert":               map[string]interface{}{"type": "string", "enum": []string{"SESSION_REPLACED"}},
			"session_id":          map[string]interface{}{"type": "string"},
			"previous_session_id": map[string]interface{}{"type": "string"},
			"timestamp":           map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "session_id", "timestamp"},
	}
}

func sessionEndSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":  "object",
		"title": "Session End",
		"properties": map[string]interface{}{
			"type":          typeConst("session_end"),
			"schemaVersion": schemaVersionProp(),
			"session_id":    map[string]interface{}{"type": "string"},
			"summary": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"total_events":  map[string]interface{}{"type": "integer"},
					"screen_events": map[string]interface{}{"type": "integer"},
				},
			},
			"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
		},
		"required": []string{"type", "session_id", "summary", "timestamp"},
	}
}

// Helper to output a quick reference
func (c *SchemaCmd) outputTextHelp(globals *Globals) {
	fmt.Fprintln(globals.Stdout, "trk Output Types:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "  result        - Successful track/screen operation")
	fmt.Fprintln(globals.Stdout, "  error         - Failed operation with a stable code")
	fmt.Fprintln(globals.Stdout, "  event         - Tracked event")
	fmt.Fprintln(globals.Stdout, "  session       - Active session state")
	fmt.Fprintln(globals.Stdout, "  blob          - Raw persisted blob")
	fmt.Fprintln(globals.Stdout, "  session_start - Session started")
	fmt.Fprintln(globals.Stdout, "  session_end   - Session ended with summary")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Use --format ndjson for JSON Schema, --type to filter: trk schema --type event,error")
}
