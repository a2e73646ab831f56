package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridwalk"
)

// MockScreen is a minimal mock for tcell.Screen that records drawn runes and
// feeds queued events to PollEvent.
type MockScreen struct {
	tcell.Screen

	mu       sync.Mutex
	contents map[[2]int]rune
	shows    int
	events   chan tcell.Event
	finished chan struct{}
	once     sync.Once
}

func newMockScreen() *MockScreen {
	return &MockScreen{
		contents: make(map[[2]int]rune),
		events:   make(chan tcell.Event, 16),
		finished: make(chan struct{}),
	}
}

func (m *MockScreen) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents = make(map[[2]int]rune)
}

func (m *MockScreen) Show() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shows++
}

func (m *MockScreen) Sync() {}

func (m *MockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[[2]int{x, y}] = mainc
}

func (m *MockScreen) PollEvent() tcell.Event {
	select {
	case ev := <-m.events:
		return ev
	case <-m.finished:
		return nil
	}
}

func (m *MockScreen) Fini() { m.once.Do(func() { close(m.finished) }) }

func (m *MockScreen) runeAt(x, y int) rune {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contents[[2]int{x, y}]
}

func (m *MockScreen) line(y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		if r := m.runeAt(x, y); r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newScheduler(t *testing.T) *gridwalk.Scheduler {
	t.Helper()
	start := gridwalk.Pos{Col: 0, Row: 0}
	destination := gridwalk.Pos{Col: 3, Row: 2}
	scheduler, err := gridwalk.NewSimulation(gridwalk.Config{
		Rows: 3, Cols: 4, WallProbability: 0, Seed: 1, AgentCount: 1,
		Agents: []gridwalk.AgentSpec{{Name: "a", Start: &start, Destination: &destination}},
	})
	require.NoError(t, err)
	return scheduler
}

func TestAgentGlyph(t *testing.T) {
	assert.Equal(t, '1', AgentGlyph(1))
	assert.Equal(t, '9', AgentGlyph(9))
	assert.Equal(t, 'a', AgentGlyph(10))
	assert.Equal(t, 'z', AgentGlyph(35))
}

func TestRenderer_DrawsCellsAndStatus(t *testing.T) {
	screen := newMockScreen()
	scheduler := newScheduler(t)

	NewRenderer(screen).Draw(scheduler.Snapshot(), "ready")

	assert.Equal(t, '1', screen.runeAt(0, 0))
	assert.Equal(t, glyphDestination, screen.runeAt(3*cellWidth, 2))
	assert.Equal(t, glyphGround, screen.runeAt(1*cellWidth, 1))
	assert.Equal(t, "turn 0  arrived 0/1  ready", screen.line(4, 40))
	assert.Equal(t, 1, screen.shows)
}

func TestRenderer_DrawsRouteAfterTick(t *testing.T) {
	screen := newMockScreen()
	scheduler := newScheduler(t)
	report, err := scheduler.Tick(context.Background())
	require.NoError(t, err)

	NewRenderer(screen).Draw(scheduler.Snapshot(), "")

	// The route's interior cells (not the agent, not the destination) are dotted.
	for _, p := range report.Route[2 : len(report.Route)-1] {
		assert.Equal(t, glyphRoute, screen.runeAt(p.Col*cellWidth, p.Row), "cell %v", p)
	}
	assert.Equal(t, '1', screen.runeAt(report.To.Col*cellWidth, report.To.Row))
}

func TestCommand(t *testing.T) {
	assert.Equal(t, commandQuit, command(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.Equal(t, commandQuit, command(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
	assert.Equal(t, commandQuit, command(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.Equal(t, commandPause, command(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)))
	assert.Equal(t, commandStep, command(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)))
	assert.Equal(t, commandRedraw, command(tcell.NewEventResize(80, 24)))
	assert.Equal(t, commandNone, command(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}

func TestRun_StepThenQuit(t *testing.T) {
	screen := newMockScreen()
	scheduler := newScheduler(t)

	screen.events <- tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)
	screen.events <- tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), screen, scheduler, time.Hour) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after quit")
	}
	assert.Equal(t, 1, scheduler.Turn())
	assert.Equal(t, gridwalk.StateStopped, scheduler.State())
}

func TestRun_TicksUntilContextDone(t *testing.T) {
	screen := newMockScreen()
	scheduler := newScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, screen, scheduler, time.Millisecond) }()

	require.Eventually(t, func() bool { return scheduler.Turn() >= 3 }, 5*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, gridwalk.StateStopped, scheduler.State())
}

func TestPollEvents_ExitsWhenNobodyReads(t *testing.T) {
	screen := newMockScreen()
	for i := 0; i < 3; i++ {
		screen.events <- tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)
	}
	eventChan := make(chan tcell.Event) // never read
	done := make(chan struct{})

	exited := make(chan struct{})
	go func() {
		pollEvents(screen, eventChan, done)
		close(exited)
	}()
	close(done)

	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("pollEvents blocked after done was closed")
	}
}
