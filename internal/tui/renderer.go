// Package tui draws simulation snapshots on a terminal with tcell and turns
// key presses into scheduler commands.
package tui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/pdrpinto/gridwalk"
)

// cellWidth is the number of terminal columns per grid cell; two keeps cells
// roughly square.
const cellWidth = 2

var (
	rgbGround      = tcell.NewRGBColor(144, 238, 144) // light green
	rgbRoute       = tcell.NewRGBColor(100, 200, 255) // blue
	rgbWall        = tcell.NewRGBColor(92, 64, 51)    // brown
	rgbAgent       = tcell.NewRGBColor(255, 165, 0)   // orange
	rgbDestination = tcell.NewRGBColor(255, 182, 193) // light pink

	styleGround      = tcell.StyleDefault.Background(rgbGround).Foreground(tcell.ColorBlack)
	styleRoute       = tcell.StyleDefault.Background(rgbRoute).Foreground(tcell.ColorBlack)
	styleWall        = tcell.StyleDefault.Background(rgbWall).Foreground(rgbWall)
	styleAgent       = tcell.StyleDefault.Background(rgbAgent).Foreground(tcell.ColorBlack).Bold(true)
	styleDestination = tcell.StyleDefault.Background(rgbDestination).Foreground(tcell.ColorBlack)
	styleStatus      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Glyphs drawn in the first column of each cell.
const (
	glyphWall        = '#'
	glyphGround      = ' '
	glyphRoute       = '.'
	glyphDestination = '*'
)

// Renderer draws snapshots onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
}

// NewRenderer creates a renderer for screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// AgentGlyph is the character an agent is drawn with: 1-9, then a-z.
func AgentGlyph(id gridwalk.AgentID) rune {
	s := strconv.FormatInt(int64(id)%36, 36)
	return rune(s[0])
}

// Draw renders the grid with a status line underneath and shows the frame.
func (r *Renderer) Draw(snap gridwalk.Snapshot, status string) {
	r.screen.Clear()

	for _, cell := range snap.Cells {
		glyph, style := cellLook(cell)
		x, y := cell.Col*cellWidth, cell.Row
		r.screen.SetContent(x, y, glyph, nil, style)
		for dx := 1; dx < cellWidth; dx++ {
			r.screen.SetContent(x+dx, y, ' ', nil, style)
		}
	}

	arrived := 0
	for _, agent := range snap.Agents {
		if agent.Arrived {
			arrived++
		}
	}
	line := fmt.Sprintf("turn %d  arrived %d/%d  %s", snap.Turn, arrived, len(snap.Agents), status)
	r.drawText(0, snap.Rows+1, line, styleStatus)

	r.screen.Show()
}

func cellLook(cell gridwalk.CellView) (rune, tcell.Style) {
	switch {
	case cell.Occupant != gridwalk.NoAgent:
		return AgentGlyph(cell.Occupant), styleAgent
	case cell.Wall:
		return glyphWall, styleWall
	case cell.Destination:
		return glyphDestination, styleDestination
	case cell.OnRoute:
		return glyphRoute, styleRoute
	default:
		return glyphGround, styleGround
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
