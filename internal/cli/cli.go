package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vectorlab/vectograph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("vectograph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Vectograph - A node-graph compiler and evaluation runtime.

Usage:
  vectograph [options] [DOC_PATH]

Arguments:
  DOC_PATH
    Path to a .vg.hcl document describing a node network.

Options:
`)
		flagSet.PrintDefaults()
	}

	docFlag := flagSet.String("doc", "", "Path to the graph document.")
	dFlag := flagSet.String("d", "", "Path to the graph document (shorthand).")
	watchFlag := flagSet.Bool("watch", false, "Watch the document and recompile incrementally on change.")
	bridgePortFlag := flagSet.Int("bridge-port", 0, "Port for the editor bridge WebSocket server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *docFlag != "" {
		path = *docFlag
	} else if *dFlag != "" {
		path = *dFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Document path determined.", "path", path)

	if path == "" {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *bridgePortFlag < 0 || *bridgePortFlag > 65535 {
		return nil, false, &ExitError{Code: 2, Message: "invalid bridge-port: must be between 0 and 65535"}
	}
	slog.Debug("CLI parameter validation complete.")

	config := &app.Config{
		DocPath:    path,
		Watch:      *watchFlag,
		BridgePort: *bridgePortFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
