// Package gridwalk simulates several agents walking a shared obstacle grid
// toward their own destinations.
//
// It exposes three layers:
//
//   - Grid and Search: a 4-connected cell grid and an A* search over it.
//   - Stepper: iterate a search one expansion at a time to drive UIs or debugging tools.
//   - Agent and Scheduler: turn-based movement where one agent replans and
//     advances a single cell per tick.
//
// Search state (costs, back-pointers, open/closed tags) lives on the grid's
// cells and must be cleared with Grid.ResetSearchState between searches; the
// Scheduler does this before every turn.
package gridwalk
