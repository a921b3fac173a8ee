package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"
)

// ShellCmd reads session commands line by line against one manager, so
// screen timers survive between commands
type ShellCmd struct{}

type shellGrammar struct {
	SessionCmds `embed:""`
}

const shellHelp = `Commands:
  start [--id ID]           Start a new session
  end                       End the active session
  track NAME [KEY=VALUE...] Track an event
  screen start NAME         Start timing a screen
  screen end NAME           Stop timing a screen
  session                   Show the active session
  events                    List events
  blob                      Print the persisted blob
  help                      Show this help
  exit                      Leave the shell`

// Run executes the shell command
func (c *ShellCmd) Run(globals *Globals) error {
	if _, err := globals.Manager(); err != nil {
		return err
	}

	interactive := false
	if f, ok := globals.Stdin.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	reader := bufio.NewReader(globals.Stdin)
	for {
		if interactive {
			fmt.Fprint(globals.Stderr, "trk> ")
		}
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if raw == "" && err == io.EOF {
			return nil
		}

		line := strings.TrimSpace(raw)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case line == "exit" || line == "quit":
			return nil
		case line == "help" || line == "?":
			fmt.Fprintln(globals.Stdout, shellHelp)
		default:
			// Failures are already reported by the command; keep reading.
			c.runLine(globals, strings.Fields(line))
		}

		if err == io.EOF {
			return nil
		}
	}
}

func (c *ShellCmd) runLine(globals *Globals, args []string) error {
	var grammar shellGrammar
	parser, err := kong.New(&grammar,
		kong.Name("trk"),
		kong.Writers(globals.Stdout, globals.Stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return outputErrorCommon(globals, "UNKNOWN_COMMAND", err.Error(), "type 'help' for commands")
	}
	return kctx.Run(globals)
}
