package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles holds the styles used to draw a view.
type Styles struct {
	Text   tcell.Style
	Gutter tcell.Style
	Region tcell.Style
	Popup  tcell.Style
	Border tcell.Style
	Status tcell.Style
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// NewStyles derives the view styles from the region highlight colour.
// Regions get the colour as an underlined foreground with no fill; the
// popup uses a dark blend of it as background.
func NewStyles(highlight colorful.Color) Styles {
	black := colorful.Color{R: 0, G: 0, B: 0}
	white := colorful.Color{R: 1, G: 1, B: 1}

	popupBg := highlight.BlendLab(black, 0.75)
	popupFg := highlight.BlendLab(white, 0.8)

	return Styles{
		Text:   tcell.StyleDefault,
		Gutter: tcell.StyleDefault.Foreground(toTcell(highlight.BlendLab(black, 0.3))),
		Region: tcell.StyleDefault.Foreground(toTcell(highlight)).Underline(true),
		Popup:  tcell.StyleDefault.Background(toTcell(popupBg)).Foreground(toTcell(popupFg)),
		Border: tcell.StyleDefault.Background(toTcell(popupBg)).Foreground(toTcell(highlight)),
		Status: tcell.StyleDefault.Reverse(true),
	}
}
