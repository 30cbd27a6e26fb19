package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/urilens/internal/detect/hover"
	"github.com/dshills/urilens/internal/preview"
)

// maxURICells bounds the URI excerpt shown in the popup.
const maxURICells = 48

// popup is a bordered preview box anchored to a cell.
type popup struct {
	req     hover.Request
	lines   []string
	anchorX int
	anchorY int

	// box geometry, border included
	x, y, w, h int
}

func newPopup(req hover.Request, anchorX, anchorY, screenW, rows int) *popup {
	lines := preview.Build(req).Lines()
	lines = append(lines, truncate(req.URI, maxURICells))

	inner := 0
	for _, l := range lines {
		inner = max(inner, uniseg.StringWidth(l))
	}
	inner = min(inner, max(screenW-4, 1))

	p := &popup{
		req:     req,
		lines:   lines,
		anchorX: anchorX,
		anchorY: anchorY,
		w:       inner + 4,
		h:       len(lines) + 2,
	}

	p.x = anchorX
	if p.x+p.w > screenW {
		p.x = max(screenW-p.w, 0)
	}
	p.y = anchorY + 1
	if p.y+p.h > rows && anchorY-p.h >= 0 {
		p.y = anchorY - p.h
	}
	return p
}

// truncate shortens s to at most cells cells, marking the cut.
func truncate(s string, cells int) string {
	if uniseg.StringWidth(s) <= cells {
		return s
	}
	out := make([]byte, 0, cells+3)
	used := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var width int
		cluster, rest, width, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+width > cells-1 {
			break
		}
		out = append(out, cluster...)
		used += width
	}
	return string(out) + "…"
}

// near reports whether (x, y) is within one cell of the anchor.
func (p *popup) near(x, y int) bool {
	dx, dy := x-p.anchorX, y-p.anchorY
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

func (p *popup) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.w && y >= p.y && y < p.y+p.h
}

func (p *popup) draw(s tcell.Screen, styles Styles) {
	for row := 0; row < p.h; row++ {
		for col := 0; col < p.w; col++ {
			r := ' '
			style := styles.Popup
			switch {
			case row == 0 && col == 0:
				r, style = '┌', styles.Border
			case row == 0 && col == p.w-1:
				r, style = '┐', styles.Border
			case row == p.h-1 && col == 0:
				r, style = '└', styles.Border
			case row == p.h-1 && col == p.w-1:
				r, style = '┘', styles.Border
			case row == 0 || row == p.h-1:
				r, style = '─', styles.Border
			case col == 0 || col == p.w-1:
				r, style = '│', styles.Border
			}
			s.SetContent(p.x+col, p.y+row, r, nil, style)
		}
	}
	for i, l := range p.lines {
		drawString(s, p.x+2, p.y+1+i, p.w-4, l, styles.Popup)
	}
}

// drawString draws s from (x, y), clipped to width cells.
func drawString(scr tcell.Screen, x, y, width int, s string, style tcell.Style) {
	col := 0
	state := -1
	for s != "" {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if col+w > width {
			return
		}
		runes := []rune(cluster)
		scr.SetContent(x+col, y, runes[0], runes[1:], style)
		col += max(w, 1)
	}
}
