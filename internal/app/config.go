package app

import (
	"errors"
	"fmt"
	"time"
)

// User interfaces the binary can drive.
const (
	UITerminal = "terminal"
	UIWeb      = "web"
	UIHeadless = "headless"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenarioPath string // optional HCL scenario; defaults apply when empty
	UI           string
	Addr         string // listen address for the web UI

	TickInterval time.Duration // delay between ticks in the terminal UI
	MaxTicks     int           // headless bound; 0 runs until all arrive or nobody can move

	LogFormat string
	LogLevel  string
	LogFile   string // log destination; empty means the app's output writer
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	switch cfg.UI {
	case UITerminal, UIWeb, UIHeadless:
	default:
		errs = append(errs, fmt.Errorf("unknown ui %q: must be %q, %q or %q", cfg.UI, UITerminal, UIWeb, UIHeadless))
	}
	if cfg.UI == UIWeb && cfg.Addr == "" {
		errs = append(errs, errors.New("web ui needs a listen address"))
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick interval must be positive, got %v", cfg.TickInterval))
	}
	if cfg.MaxTicks < 0 {
		errs = append(errs, fmt.Errorf("max ticks must not be negative, got %d", cfg.MaxTicks))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
