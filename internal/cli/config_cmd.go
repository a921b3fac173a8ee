package cli

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vburojevic/trk/internal/config"
	"github.com/vburojevic/trk/internal/output"
)

// ConfigCmd groups configuration commands
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show effective configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show the loaded config file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file"`
}

// ConfigShowCmd prints the effective configuration
type ConfigShowCmd struct{}

type configOutput struct {
	Type          string              `json:"type"`
	SchemaVersion int                 `json:"schemaVersion"`
	Format        string              `json:"format"`
	Quiet         bool                `json:"quiet"`
	Verbose       bool                `json:"verbose"`
	Store         config.StoreConfig  `json:"store"`
	Events        config.EventsConfig `json:"events"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	store := config.StoreConfig{Backend: globals.Store, Path: globals.StorePath, Format: globals.StoreFormat}

	if globals.Format == "ndjson" {
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(configOutput{
			Type:          "config",
			SchemaVersion: output.SchemaVersion,
			Format:        globals.Format,
			Quiet:         globals.Quiet,
			Verbose:       globals.Verbose,
			Store:         store,
			Events:        cfg.Events,
		})
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", globals.Format)
	fmt.Fprintf(globals.Stdout, "  quiet:   %v\n", globals.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %v\n", globals.Verbose)
	fmt.Fprintln(globals.Stdout, "Store:")
	fmt.Fprintf(globals.Stdout, "  backend: %s\n", store.Backend)
	fmt.Fprintf(globals.Stdout, "  path:    %s\n", displayPath(store.Path))
	fmt.Fprintf(globals.Stdout, "  format:  %s\n", store.Format)
	fmt.Fprintln(globals.Stdout, "Events:")
	fmt.Fprintf(globals.Stdout, "  time_layout: %s\n", cfg.Events.TimeLayout)
	return nil
}

func displayPath(p string) string {
	if p == "" {
		return "(default ~/.trk)"
	}
	return p
}

// ConfigPathCmd prints the config file in use
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()
	if globals.Format == "ndjson" {
		return json.NewEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		})
	}
	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found (using defaults)")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample config file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return err
	}
	fmt.Fprintln(globals.Stdout, "# trk configuration file")
	fmt.Fprintln(globals.Stdout, "# Place at ~/.config/trk/trk.yaml, ~/trk.yaml or ./trk.yaml")
	fmt.Fprintln(globals.Stdout, "# Environment overrides: TRK_FORMAT, TRK_STORE_BACKEND, TRK_STORE_PATH, TRK_STORE_FORMAT, TRK_TIME_LAYOUT")
	_, err = globals.Stdout.Write(data)
	return err
}
