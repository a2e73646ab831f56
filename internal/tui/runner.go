package tui

import (
	"context"
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
)

const helpText = "[space] pause  [n] step  [q] quit"

// Run drives scheduler from a ticker and draws every tick until the user
// quits or ctx is done. screen must be initialized; Run finalizes it.
//
// Keys: q, Esc or Ctrl-C stop the scheduler; space pauses; n runs one tick.
func Run(ctx context.Context, screen tcell.Screen, scheduler *gridwalk.Scheduler, interval time.Duration) error {
	defer screen.Fini()
	logger := ctxlog.FromContext(ctx)
	renderer := NewRenderer(screen)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(screen, eventChan, done)

	paused := false
	status := func() string {
		if paused {
			return "paused  " + helpText
		}
		return helpText
	}
	tick := func() error {
		report, err := scheduler.Tick(ctx)
		if err != nil {
			return err
		}
		logger.Debug("Tick drawn.", "turn", report.Turn, "agent", report.Agent, "outcome", report.Outcome)
		renderer.Draw(scheduler.Snapshot(), status())
		return nil
	}

	renderer.Draw(scheduler.Snapshot(), status())
	for {
		select {
		case <-ctx.Done():
			scheduler.Stop()
			return nil

		case ev := <-eventChan:
			switch command(ev) {
			case commandQuit:
				scheduler.Stop()
				logger.Info("Terminal session ended by user.", "turn", scheduler.Turn())
				return nil
			case commandPause:
				paused = !paused
				renderer.Draw(scheduler.Snapshot(), status())
			case commandStep:
				if err := tick(); err != nil {
					return ignoreStopped(err)
				}
			case commandRedraw:
				screen.Sync()
				renderer.Draw(scheduler.Snapshot(), status())
			}

		case <-ticker.C:
			if paused {
				continue
			}
			if err := tick(); err != nil {
				return ignoreStopped(err)
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done is
// closed.
func pollEvents(screen tcell.Screen, eventChan chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		select {
		case eventChan <- ev:
		case <-done:
			return
		}
	}
}

type keyCommand int

const (
	commandNone keyCommand = iota
	commandQuit
	commandPause
	commandStep
	commandRedraw
)

// command maps a terminal event to what the runner should do.
func command(ev tcell.Event) keyCommand {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return commandQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return commandQuit
			case ' ':
				return commandPause
			case 'n', 'N':
				return commandStep
			}
		}
	case *tcell.EventResize:
		return commandRedraw
	}
	return commandNone
}

func ignoreStopped(err error) error {
	if errors.Is(err, gridwalk.ErrStopped) {
		return nil
	}
	return err
}
