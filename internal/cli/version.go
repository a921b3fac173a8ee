package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/trk/internal/output"
)

// VersionCmd shows version and install information
type VersionCmd struct{}

// VersionOutput represents the NDJSON output for version information
type VersionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	GoInstall     string `json:"go_install"`
}

const goInstallCmd = "go install github.com/vburojevic/trk/cmd/trk@latest"

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(VersionOutput{
			Type:          "version",
			SchemaVersion: output.SchemaVersion,
			Version:       Version,
			Commit:        Commit,
			GoInstall:     goInstallCmd,
		})
	}

	fmt.Fprintf(globals.Stdout, "trk %s (%s)\n", Version, Commit)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "To upgrade via Go:")
	fmt.Fprintf(globals.Stdout, "  %s\n", goInstallCmd)
	return nil
}
