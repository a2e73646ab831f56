// Package scenario loads simulation configuration from HCL files into the
// format-agnostic gridwalk.Config.
//
// A scenario file looks like:
//
//	grid {
//	  rows             = 25
//	  cols             = 25
//	  wall_probability = 0.25
//	  seed             = 42
//	}
//
//	agents         = 4
//	avoid_occupied = true
//
//	agent "scout" {
//	  start       = [0, 0]
//	  destination = [cols - 1, rows - 1]
//	}
//
// Agent positions are [col, row] expressions that may refer to the grid's
// rows and cols. Anything left out falls back to gridwalk.DefaultConfig.
package scenario
