package render

import (
	"image"
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/image/draw"
)

// HalfBlock draws an image on a terminal screen using the upper half block
// (▀) with fg=top pixel and bg=bottom pixel, so each cell shows two image
// rows.
type HalfBlock struct {
	Image image.Image
}

// Draw implements uv.Drawable. The image's top-left pixel lands on the
// area's top-left cell; anything beyond either edge is skipped.
func (h HalfBlock) Draw(scr uv.Screen, area uv.Rectangle) {
	b := h.Image.Bounds()

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := b.Min.Y + (row-area.Min.Y)*2
		if topY >= b.Max.Y {
			break
		}
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := b.Min.X + col - area.Min.X
			if x >= b.Max.X {
				break
			}

			var bot color.Color
			if botY < b.Max.Y {
				bot = h.Image.At(x, botY)
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: h.Image.At(x, topY),
					Bg: bot,
				},
			})
		}
	}
}

// FitImage scales img to fit within cols x rows half-block cells while
// keeping its aspect ratio.
func FitImage(img image.Image, cols, rows int) *image.RGBA {
	b := img.Bounds()
	maxW, maxH := cols, rows*2
	w, h := b.Dx(), b.Dy()

	if w*maxH > h*maxW {
		h = max(1, h*maxW/w)
		w = maxW
	} else {
		w = max(1, w*maxH/h)
		h = maxH
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
