package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/scopbatch/internal/app"
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

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("scopbatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
scopbatch - builds the polyhedral code generator once and runs it over
every *.clay.scop test case under a directory tree.

Usage:
  scopbatch [options] [ROOT]

Arguments:
  ROOT
    Directory searched recursively for test cases. Defaults to ".".

Options:
`)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", "", "Directory containing the test cases.")
	rFlag := flagSet.String("r", "", "Directory containing the test cases (shorthand).")
	configFlag := flagSet.String("config", "", "Path to an HCL harness file.")
	cFlag := flagSet.String("c", "", "Path to an HCL harness file (shorthand).")
	workersFlag := flagSet.Int("workers", 0, "Number of concurrent generator invocations. 0 uses one per CPU.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Timeout for each generator invocation, e.g. 60s. 0 keeps the configured value.")
	buildTimeoutFlag := flagSet.Duration("build-timeout", 0, "Timeout for the generator build, e.g. 10m. 0 keeps the configured value.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected at most one ROOT argument, got %d", flagSet.NArg())}
	}

	root := firstNonEmpty(*rootFlag, *rFlag, flagSet.Arg(0), ".")
	configPath := firstNonEmpty(*configFlag, *cFlag)
	slog.Debug("Test root determined.", "root", root, "config", configPath)

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
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Root:            root,
		ConfigPath:      configPath,
		Workers:         *workersFlag,
		Timeout:         *timeoutFlag,
		BuildTimeout:    *buildTimeoutFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
