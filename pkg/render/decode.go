package render

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned by DecodeImage for input that matches no
// supported signature and is not named as a TGA file.
var ErrUnknownFormat = errors.New("unknown image format")

type imageFormat struct {
	name   string
	magic  string
	decode func(io.Reader) (image.Image, error)
}

// The tga package registers itself with image.RegisterFormat under an empty
// signature, which matches any input, so image.Decode is not used here.
var imageFormats = []imageFormat{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"bmp", "BM", bmp.Decode},
	{"tiff", "II*\x00", tiff.Decode},
	{"tiff", "MM\x00*", tiff.Decode},
	{"ppm", "P6", DecodePPM},
}

// DecodeImage decodes PNG, JPEG, BMP, TIFF or binary PPM data by its
// signature. TGA has none, so it is chosen by the .tga extension of name.
// It returns the format name alongside the image.
func DecodeImage(r io.Reader, name string) (image.Image, string, error) {
	br := bufio.NewReader(r)
	for _, f := range imageFormats {
		head, err := br.Peek(len(f.magic))
		if err != nil || string(head) != f.magic {
			continue
		}
		img, err := f.decode(br)
		return img, f.name, err
	}

	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := tga.Decode(br)
		return img, "tga", err
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}
