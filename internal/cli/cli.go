// Package cli implements the trk command tree on top of the tracker.
package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/vburojevic/trk/internal/config"
	"github.com/vburojevic/trk/internal/kv"
	"github.com/vburojevic/trk/internal/tracker"
)

// Build information, set via -ldflags
var (
	Version = "dev"
	Commit  = "none"
)

// CLI is the root command model
type CLI struct {
	Format      string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format (ndjson or text)"`
	Quiet       bool   `short:"q" help:"Suppress success output"`
	Verbose     bool   `short:"v" help:"Emit debug logs to stderr"`
	Store       string `default:"${config_store}" enum:"memory,file,sqlite" help:"Persistence backend"`
	StorePath   string `default:"${config_store_path}" help:"Store location (default: ~/.trk/prefs.<ext>)"`
	StoreFormat string `default:"${config_store_format}" enum:"json,plist" help:"Encoding of the file backend"`

	SessionCmds `embed:""`

	Shell   ShellCmd   `cmd:"" help:"Interactive shell sharing one session manager (needed for screen timing)"`
	Decode  DecodeCmd  `cmd:"" help:"Decode an event blob without touching the store"`
	Config  ConfigCmd  `cmd:"" help:"Show or generate configuration"`
	Schema  SchemaCmd  `cmd:"" help:"Output JSON Schema for NDJSON records"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// SessionCmds are the commands available both on the command line and in
// the shell
type SessionCmds struct {
	Start   StartCmd   `cmd:"" help:"Start a new session, discarding the current events"`
	End     EndCmd     `cmd:"" help:"End the active session"`
	Track   TrackCmd   `cmd:"" help:"Track an event with KEY=VALUE properties"`
	Screen  ScreenCmd  `cmd:"" help:"Start or end screen dwell timing"`
	Session SessionCmd `cmd:"" help:"Show the active session"`
	Events  EventsCmd  `cmd:"" help:"List events of the session"`
	Blob    BlobCmd    `cmd:"" help:"Print the raw persisted event blob"`
}

// KongVars feeds configuration defaults into flag defaults
func KongVars(cfg *config.Config) kong.Vars {
	storeFormat := cfg.Store.Format
	if storeFormat == "" {
		storeFormat = "json"
	}
	return kong.Vars{
		"config_format":       cfg.Format,
		"config_store":        cfg.Store.Backend,
		"config_store_path":   cfg.Store.Path,
		"config_store_format": storeFormat,
	}
}

// Globals carries parsed global flags and lazily opened resources
type Globals struct {
	Format      string
	Quiet       bool
	Verbose     bool
	Store       string
	StorePath   string
	StoreFormat string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config

	manager *tracker.Manager
	closer  io.Closer
	logger  *zap.Logger
}

// NewGlobalsWithConfig creates Globals from parsed flags with config fallbacks
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:      c.Format,
		Quiet:       c.Quiet || cfg.Quiet,
		Verbose:     c.Verbose || cfg.Verbose,
		Store:       c.Store,
		StorePath:   c.StorePath,
		StoreFormat: c.StoreFormat,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Config:      cfg,
	}
	if g.Format == "" {
		g.Format = cfg.Format
	}
	if g.Store == "" {
		g.Store = cfg.Store.Backend
	}
	if g.StoreFormat == "" {
		g.StoreFormat = cfg.Store.Format
	}
	return g
}

// Logger returns the debug logger, a no-op unless --verbose is set
func (g *Globals) Logger() *zap.Logger {
	if g.logger == nil {
		g.logger = newLogger(g)
	}
	return g.logger
}

// Manager opens the configured store and session manager on first use
func (g *Globals) Manager() (*tracker.Manager, error) {
	if g.manager != nil {
		return g.manager, nil
	}
	if err := validateFlags(g); err != nil {
		return nil, err
	}

	store, closer, err := kv.Open(config.StoreConfig{
		Backend: g.Store,
		Path:    g.StorePath,
		Format:  g.StoreFormat,
	})
	if err != nil {
		return nil, outputError(g, err)
	}

	layout := config.DefaultTimeLayout
	if g.Config != nil && g.Config.Events.TimeLayout != "" {
		layout = g.Config.Events.TimeLayout
	}
	m, err := tracker.New(store,
		tracker.WithLogger(g.Logger()),
		tracker.WithTimeLayout(layout),
	)
	if err != nil {
		closer.Close()
		return nil, outputError(g, err)
	}

	g.manager = m
	g.closer = closer
	return m, nil
}

// Close releases the store and flushes logs
func (g *Globals) Close() error {
	if g.logger != nil {
		g.logger.Sync()
	}
	if g.closer != nil {
		err := g.closer.Close()
		g.closer = nil
		return err
	}
	return nil
}
