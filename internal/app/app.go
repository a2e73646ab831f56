package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
	"github.com/pdrpinto/gridwalk/internal/scenario"
)

// App encapsulates the application's configuration, logger and the
// simulation it will run.
type App struct {
	config     *Config
	logger     *slog.Logger
	runID      uuid.UUID
	simulation gridwalk.Config
	logFile    *os.File

	// newScreen opens the terminal for the terminal UI.
	newScreen func() (tcell.Screen, error)
}

// NewApp builds the logger and loads the scenario. Logs go to cfg.LogFile when
// set; otherwise to outW, except in the terminal UI where the screen owns the
// output and logs are discarded.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logW := outW
	var logFile *os.File
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logW, logFile = f, f
	case cfg.UI == UITerminal:
		logW = io.Discard
	}

	runID := uuid.New()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID.String())
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	simulation := gridwalk.DefaultConfig()
	if cfg.ScenarioPath != "" {
		loaded, err := scenario.LoadFile(ctx, cfg.ScenarioPath)
		if err != nil {
			if logFile != nil {
				_ = logFile.Close()
			}
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		simulation = loaded
	}
	logger.Debug("Simulation configured.",
		"scenario", cfg.ScenarioPath,
		"rows", simulation.Rows,
		"cols", simulation.Cols,
		"agents", simulation.TotalAgents(),
	)

	return &App{
		config:     cfg,
		logger:     logger,
		runID:      runID,
		simulation: simulation,
		logFile:    logFile,
		newScreen:  tcell.NewScreen,
	}, nil
}

// RunID identifies this run in every log record.
func (a *App) RunID() uuid.UUID { return a.runID }

// Simulation returns the loaded simulation config.
func (a *App) Simulation() gridwalk.Config { return a.simulation }

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}
