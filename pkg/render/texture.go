package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"golang.org/x/image/draw"

	"github.com/taigrr/softraster/pkg/math3d"
)

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapClamp  WrapMode = iota // Clamp to edge
	WrapRepeat                 // Tile the texture
)

func (m WrapMode) String() string {
	switch m {
	case WrapClamp:
		return "clamp"
	case WrapRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("WrapMode(%d)", int(m))
	}
}

// ParseWrapMode converts "clamp" or "repeat" to a WrapMode.
func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "clamp", "":
		return WrapClamp, nil
	case "repeat":
		return WrapRepeat, nil
	default:
		return 0, fmt.Errorf("unknown wrap mode %q", s)
	}
}

// Texture holds an RGBA8 image for nearest-neighbor sampling. Row 0 is the
// top of the image.
type Texture struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major pixel data
	WrapU  WrapMode     // Horizontal wrap mode
	WrapV  WrapMode     // Vertical wrap mode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// LoadTexture loads a texture from a PNG, JPEG, TGA, BMP, TIFF or binary
// PPM file. TGA files must carry the .tga extension.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, format, err := DecodeImage(f, path)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	Logger().Debug("texture loaded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	return TextureFromImage(img), nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for i := range tex.Pixels {
		p := rgba.Pix[i*4 : i*4+4]
		tex.Pixels[i] = color.RGBA{p[0], p[1], p[2], p[3]}
	}
	return tex
}

// NewSolidTexture creates a 1x1 texture of a single color.
func NewSolidTexture(c color.RGBA) *Texture {
	tex := NewTexture(1, 1)
	tex.Pixels[0] = c
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// Texel returns the texel at (floor(W*u), floor(H*v)) with channels scaled
// to [0,1]. v is not flipped; v=0 addresses the top row.
func (t *Texture) Texel(uv math3d.Vec2) math3d.Vec4 {
	if t.Width == 0 || t.Height == 0 {
		return math3d.Vec4{}
	}
	x := wrapIndex(uv.X, t.Width, t.WrapU)
	y := wrapIndex(uv.Y, t.Height, t.WrapV)
	c := t.Pixels[y*t.Width+x]
	return math3d.V4(float64(c.R), float64(c.G), float64(c.B), float64(c.A)).Scale(1.0 / 255)
}

// wrapIndex maps a texture coordinate to a texel index in [0, size).
// NaN maps to 0.
func wrapIndex(coord float64, size int, mode WrapMode) int {
	f := math.Floor(coord * float64(size))
	switch mode {
	case WrapRepeat:
		f = math.Mod(f, float64(size))
		if f < 0 {
			f += float64(size)
		}
	default:
		f = math.Max(0, math.Min(float64(size-1), f))
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(f)
}
