package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
	"github.com/pdrpinto/gridwalk/internal/tui"
	"github.com/pdrpinto/gridwalk/internal/vizapi"
)

// Run executes the configured UI until it finishes or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Info("Starting simulation.", "ui", a.config.UI, "agents", a.simulation.TotalAgents())

	switch a.config.UI {
	case UIWeb:
		if a.config.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		server, err := vizapi.NewServer(a.simulation, a.logger)
		if err != nil {
			return fmt.Errorf("failed to build simulation: %w", err)
		}
		return server.Run(ctx, a.config.Addr)

	case UITerminal:
		scheduler, err := gridwalk.NewSimulation(a.simulation)
		if err != nil {
			return fmt.Errorf("failed to build simulation: %w", err)
		}
		screen, err := a.newScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		return tui.Run(ctx, screen, scheduler, a.config.TickInterval)

	default:
		scheduler, err := gridwalk.NewSimulation(a.simulation)
		if err != nil {
			return fmt.Errorf("failed to build simulation: %w", err)
		}
		summary, err := runHeadless(ctx, scheduler, a.config.MaxTicks)
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		a.logger.Info("Simulation finished.",
			"reason", summary.Reason,
			"ticks", summary.Ticks,
			"arrived", summary.Arrived,
			"agents", summary.Agents,
		)
		return nil
	}
}
