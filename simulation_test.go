package gridwalk

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(p Pos) *Pos { return &p }

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	require.NoError(t, valid.Validate())

	cases := map[string]struct {
		mutate     func(*Config)
		outOfRange bool
	}{
		"zero rows":           {mutate: func(c *Config) { c.Rows = 0 }},
		"negative cols":       {mutate: func(c *Config) { c.Cols = -3 }},
		"density":             {mutate: func(c *Config) { c.WallProbability = 2 }},
		"negative agents":     {mutate: func(c *Config) { c.AgentCount = -1 }},
		"too many agents":     {mutate: func(c *Config) { c.Rows, c.Cols, c.AgentCount = 2, 2, 5 }},
		"start out of bounds": {mutate: func(c *Config) { c.Agents = []AgentSpec{{Start: ptr(pos(25, 0))}} }, outOfRange: true},
		"destination out of bounds": {
			mutate:     func(c *Config) { c.Agents = []AgentSpec{{Destination: ptr(pos(0, -1))}} },
			outOfRange: true,
		},
		"shared start": {mutate: func(c *Config) {
			c.Agents = []AgentSpec{{Start: ptr(pos(1, 1))}, {Start: ptr(pos(1, 1))}}
		}},
		"shared destination": {mutate: func(c *Config) {
			c.Agents = []AgentSpec{{Destination: ptr(pos(1, 1))}, {Destination: ptr(pos(1, 1))}}
		}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)
			if tc.outOfRange {
				require.ErrorIs(t, err, ErrOutOfBounds)
			}
			_, err = NewSimulation(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Config{Rows: 0, Cols: 5, WallProbability: -1, AgentCount: -2}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
	assert.Contains(t, err.Error(), "wall probability")
	assert.Contains(t, err.Error(), "agent count")
}

func TestNewSimulation_Deterministic(t *testing.T) {
	a, err := NewSimulation(DefaultConfig())
	require.NoError(t, err)
	b, err := NewSimulation(DefaultConfig())
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 40; i++ {
		ra, err := a.Tick(ctx)
		require.NoError(t, err)
		rb, err := b.Tick(ctx)
		require.NoError(t, err)
		require.Equal(t, ra, rb, "tick %d", i)
	}
	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Errorf("same seed diverged (-a +b):\n%s", diff)
	}
}

func TestNewSimulation_PlacesAgents(t *testing.T) {
	cfg := Config{Rows: 3, Cols: 3, WallProbability: 0.5, Seed: 8, AgentCount: 9, AvoidOccupied: true}
	scheduler, err := NewSimulation(cfg)
	require.NoError(t, err)

	snap := scheduler.Snapshot()
	require.Len(t, snap.Agents, 9)
	starts := make(map[Pos]bool)
	destinations := make(map[Pos]bool)
	for i, agent := range snap.Agents {
		assert.Equal(t, AgentID(i+1), agent.ID)
		assert.False(t, starts[agent.Position], "start %v reused", agent.Position)
		assert.False(t, destinations[agent.Destination], "destination %v reused", agent.Destination)
		starts[agent.Position] = true
		destinations[agent.Destination] = true

		cell, _ := snap.At(agent.Position)
		assert.False(t, cell.Wall)
		cell, _ = snap.At(agent.Destination)
		assert.False(t, cell.Wall)
	}
	assert.Equal(t, "agent-1", snap.Agents[0].Name)
	require.NoError(t, scheduler.CheckOccupancy())
}

func TestNewSimulation_DesignatedCellsAreCleared(t *testing.T) {
	cfg := Config{
		Rows: 4, Cols: 4, WallProbability: 1, Seed: 2, AgentCount: 1,
		Agents: []AgentSpec{{Name: "pinned", Start: ptr(pos(0, 0)), Destination: ptr(pos(3, 3))}},
	}
	scheduler, err := NewSimulation(cfg)
	require.NoError(t, err)

	snap := scheduler.Snapshot()
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, "pinned", snap.Agents[0].Name)
	assert.Equal(t, pos(0, 0), snap.Agents[0].Position)
	start, _ := snap.At(pos(0, 0))
	goal, _ := snap.At(pos(3, 3))
	assert.False(t, start.Wall)
	assert.False(t, goal.Wall)

	// Everything else is wall, so the walk is hopeless but not an error.
	report, err := scheduler.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeHeld, report.Outcome)
}

func TestNewSimulation_MixesPinnedAndRandomAgents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AgentCount = 3
	cfg.Agents = []AgentSpec{{Start: ptr(pos(5, 5))}}
	scheduler, err := NewSimulation(cfg)
	require.NoError(t, err)

	snap := scheduler.Snapshot()
	require.Len(t, snap.Agents, 3)
	assert.Equal(t, pos(5, 5), snap.Agents[0].Position)
	for _, agent := range snap.Agents[1:] {
		assert.NotEqual(t, pos(5, 5), agent.Position)
	}
}
