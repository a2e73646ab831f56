package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pdrpinto/gridwalk/internal/app"
)

// Environment variables that supply flag defaults.
const (
	envScenario  = "GRIDWALK_SCENARIO"
	envUI        = "GRIDWALK_UI"
	envAddr      = "GRIDWALK_ADDR"
	envTick      = "GRIDWALK_TICK"
	envMaxTicks  = "GRIDWALK_MAX_TICKS"
	envLogLevel  = "GRIDWALK_LOG_LEVEL"
	envLogFormat = "GRIDWALK_LOG_FORMAT"
	envLogFile   = "GRIDWALK_LOG_FILE"
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

func usageError(err error) *ExitError {
	return &ExitError{Code: 2, Message: err.Error()}
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, false, usageError(fmt.Errorf("failed to load .env: %w", err))
	}

	defaults, err := envDefaults()
	if err != nil {
		return nil, false, usageError(err)
	}

	flagSet := flag.NewFlagSet("gridwalk", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gridwalk - agents walking a walled grid with A*, one move per turn.

Usage:
  gridwalk [options] [SCENARIO_PATH]

Arguments:
  SCENARIO_PATH
    Optional HCL scenario file. Without one a 25x25 grid with four agents is used.

Options:
`)
		flagSet.PrintDefaults()
	}

	scenarioFlag := flagSet.String("scenario", defaults.ScenarioPath, "Path to an HCL scenario file.")
	uiFlag := flagSet.String("ui", defaults.UI, "User interface. Options: 'terminal', 'web' or 'headless'.")
	addrFlag := flagSet.String("addr", defaults.Addr, "Listen address for the web UI.")
	tickFlag := flagSet.Duration("tick", defaults.TickInterval, "Delay between ticks in the terminal UI.")
	maxTicksFlag := flagSet.Int("max-ticks", defaults.MaxTicks, "Headless tick limit. 0 runs until every agent arrives or nobody can move.")
	logFormatFlag := flagSet.String("log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFileFlag := flagSet.String("log-file", defaults.LogFile, "Write logs to this file instead of standard output.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError(err)
	}
	slog.Debug("Arguments parsed successfully.")

	path := *scenarioFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "at most one scenario path may be given"}
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

	config, err := app.NewConfig(app.Config{
		ScenarioPath: path,
		UI:           strings.ToLower(*uiFlag),
		Addr:         *addrFlag,
		TickInterval: *tickFlag,
		MaxTicks:     *maxTicksFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		LogFile:      *logFileFlag,
	})
	if err != nil {
		return nil, false, usageError(err)
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// envDefaults reads flag defaults from the environment.
func envDefaults() (app.Config, error) {
	cfg := app.Config{
		ScenarioPath: os.Getenv(envScenario),
		UI:           getEnvWithDefault(envUI, app.UITerminal),
		Addr:         getEnvWithDefault(envAddr, ":8080"),
		TickInterval: 100 * time.Millisecond,
		LogFormat:    getEnvWithDefault(envLogFormat, "text"),
		LogLevel:     getEnvWithDefault(envLogLevel, "info"),
		LogFile:      os.Getenv(envLogFile),
	}

	if value, ok := os.LookupEnv(envTick); ok {
		tick, err := time.ParseDuration(value)
		if err != nil {
			return app.Config{}, fmt.Errorf("%s must be a duration: %w", envTick, err)
		}
		cfg.TickInterval = tick
	}
	if value, ok := os.LookupEnv(envMaxTicks); ok {
		maxTicks, err := strconv.Atoi(value)
		if err != nil {
			return app.Config{}, fmt.Errorf("%s must be an integer: %w", envMaxTicks, err)
		}
		cfg.MaxTicks = maxTicks
	}
	return cfg, nil
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
