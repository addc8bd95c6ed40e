package histogram

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

var (
	plotBackground = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}
	plotAxis       = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	plotBar        = color.NRGBA{R: 0x8c, G: 0xd0, B: 0x5a, A: 0xff}
)

const plotMargin = 8.0

// Render draws the histogram as a bar chart of width x height pixels with
// bars scaled to the tallest bin.
func Render(hist [Bins]int, width, height int) image.Image {
	if width < 32 {
		width = 32
	}
	if height < 32 {
		height = 32
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(plotBackground)
	dc.Clear()

	peak := 0
	for _, c := range hist {
		peak = max(peak, c)
	}

	left, bottom := plotMargin, float64(height)-plotMargin
	plotW := float64(width) - 2*plotMargin
	plotH := float64(height) - 2*plotMargin

	if peak > 0 {
		barW := plotW / Bins
		dc.SetColor(plotBar)
		for v, c := range hist {
			if c == 0 {
				continue
			}
			h := float64(c) / float64(peak) * plotH
			dc.DrawRectangle(left+float64(v)*barW, bottom-h, max(barW, 1), h)
		}
		dc.Fill()
	}

	dc.SetColor(plotAxis)
	dc.SetLineWidth(1)
	dc.DrawLine(left, bottom, left+plotW, bottom)
	dc.DrawLine(left, bottom, left, bottom-plotH)
	dc.Stroke()

	return dc.Image()
}
