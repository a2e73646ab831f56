package app

import (
	"context"

	"github.com/pdrpinto/gridwalk"
	"github.com/pdrpinto/gridwalk/internal/ctxlog"
)

// StopReason says why a headless run ended.
type StopReason string

const (
	StopAllArrived StopReason = "all_arrived"
	StopStuck      StopReason = "stuck"
	StopMaxTicks   StopReason = "max_ticks"
	StopCanceled   StopReason = "canceled"
)

// Summary is the outcome of a headless run.
type Summary struct {
	Reason  StopReason
	Ticks   int
	Arrived int
	Agents  int
}

// runHeadless ticks scheduler as fast as possible. It stops when every agent
// has arrived, when a full round passes without anyone moving (the state can
// no longer change), after maxTicks ticks when maxTicks > 0, or when ctx is
// done. The scheduler is stopped on return.
func runHeadless(ctx context.Context, scheduler *gridwalk.Scheduler, maxTicks int) (Summary, error) {
	logger := ctxlog.FromContext(ctx)
	defer scheduler.Stop()

	agents := scheduler.AgentCount()
	idle := 0
	reason := StopCanceled
loop:
	for {
		switch {
		case scheduler.AllArrived():
			reason = StopAllArrived
			break loop
		case ctx.Err() != nil:
			reason = StopCanceled
			break loop
		case maxTicks > 0 && scheduler.Turn() >= maxTicks:
			reason = StopMaxTicks
			break loop
		}

		report, err := scheduler.Tick(ctx)
		if err != nil {
			return Summary{}, err
		}
		if report.Outcome == gridwalk.OutcomeMoved {
			idle = 0
		} else {
			idle++
		}
		if idle >= agents {
			logger.Debug("No agent moved for a full round.", "turn", report.Turn)
			reason = StopStuck
			break loop
		}
	}

	arrived := 0
	for _, agent := range scheduler.Snapshot().Agents {
		if agent.Arrived {
			arrived++
		}
	}
	return Summary{Reason: reason, Ticks: scheduler.Turn(), Arrived: arrived, Agents: agents}, nil
}
