// Package vizapi serves simulation state as JSON for browser visualizers.
package vizapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
)

const shutdownTimeout = 5 * time.Second

// Server owns one simulation and at most one step-by-step search over it.
type Server struct {
	mu        sync.Mutex
	base      gridwalk.Config
	scheduler *gridwalk.Scheduler
	stepper   *gridwalk.Stepper
	logger    *slog.Logger
}

// NewServer builds the simulation described by cfg. cfg also supplies the
// defaults for POST /v1/init.
func NewServer(cfg gridwalk.Config, logger *slog.Logger) (*Server, error) {
	scheduler, err := gridwalk.NewSimulation(cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{base: cfg, scheduler: scheduler, logger: logger}, nil
}

// Scheduler returns the simulation currently served.
func (s *Server) Scheduler() *gridwalk.Scheduler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler
}

// Engine returns the gin engine with every route registered.
func (s *Server) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	s.Register(engine.Group("/v1"))
	return engine
}

// Register mounts the visualizer routes on route.
func (s *Server) Register(route *gin.RouterGroup) {
	route.POST("/init", s.handleInit)
	route.POST("/tick", s.handleTick)
	route.GET("/snapshot", s.handleSnapshot)
	route.POST("/search", s.handleSearch)
	route.POST("/search/next", s.handleSearchNext)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Engine()}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Visualizer API listening.", "addr", addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down visualizer API.")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), s.logger))
		c.Next()
		s.logger.Debug("Request served.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// initRequest overrides fields of the server's base config. Absent fields
// keep the base value.
type initRequest struct {
	Rows    *int     `form:"rows"`
	Cols    *int     `form:"cols"`
	Density *float64 `form:"density"`
	Agents  *int     `form:"agents"`
	Seed    *int64   `form:"seed"`
	Avoid   *bool    `form:"avoid"`
}

func (r initRequest) apply(cfg gridwalk.Config) gridwalk.Config {
	if r.Rows != nil {
		cfg.Rows = *r.Rows
	}
	if r.Cols != nil {
		cfg.Cols = *r.Cols
	}
	if r.Density != nil {
		cfg.WallProbability = *r.Density
	}
	if r.Agents != nil {
		cfg.AgentCount = *r.Agents
	}
	if r.Seed != nil {
		cfg.Seed = *r.Seed
	}
	if r.Avoid != nil {
		cfg.AvoidOccupied = *r.Avoid
	}
	// Pinned agents belong to the scenario's grid; a resized grid draws all
	// positions at random.
	if r.Rows != nil || r.Cols != nil {
		cfg.Agents = nil
	}
	return cfg
}

// handleInit replaces the simulation with a new one and drops any search.
func (s *Server) handleInit(c *gin.Context) {
	var request initRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := request.apply(s.base)
	scheduler, err := gridwalk.NewSimulation(cfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.scheduler = scheduler
	s.stepper = nil

	ctxlog.FromContext(c.Request.Context()).Info("Simulation reinitialized.",
		"rows", cfg.Rows,
		"cols", cfg.Cols,
		"wall_probability", cfg.WallProbability,
		"agents", cfg.TotalAgents(),
		"seed", cfg.Seed,
	)
	c.JSON(http.StatusOK, gin.H{"ok": true, "rows": cfg.Rows, "cols": cfg.Cols, "agents": scheduler.AgentCount()})
}

// tickResponse is one turn plus the state it left behind.
type tickResponse struct {
	Report   gridwalk.TickReport `json:"report"`
	Snapshot gridwalk.Snapshot   `json:"snapshot"`
}

func (s *Server) handleTick(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.scheduler.Tick(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gridwalk.ErrStopped) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tickResponse{Report: report, Snapshot: s.scheduler.Snapshot()})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.scheduler.Snapshot())
}

// handleSearch starts a step-by-step search for one agent's next route. The
// search runs on a copy of the grid; the simulation is not affected.
func (s *Server) handleSearch(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("agent"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent query parameter must be an integer"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stepper, err := s.scheduler.SearchStepper(gridwalk.AgentID(id))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, gridwalk.ErrUnknownAgent) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.stepper = stepper
	c.JSON(http.StatusOK, gin.H{"ok": true, "agent": id})
}

func (s *Server) handleSearchNext(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stepper == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "search not started"})
		return
	}
	c.JSON(http.StatusOK, s.stepper.Step())
}
