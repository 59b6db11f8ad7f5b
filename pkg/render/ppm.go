package render

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
)

// ErrNotPPM is returned when decoding input that is not a binary P6 pixmap.
var ErrNotPPM = errors.New("not a P6 ppm")

// WritePPM writes the framebuffer as a binary P6 pixmap with maxval 255.
// Pixels are emitted in storage order.
func (fb *Framebuffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return err
	}

	buf := make([]byte, 0, fb.Width*3)
	for row := range fb.Height {
		buf = buf[:0]
		for _, c := range fb.color[row*fb.Width : (row+1)*fb.Width] {
			buf = append(buf, c.R, c.G, c.B)
		}
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

type ppmHeader struct {
	width, height, maxval int
}

// readPPMHeader reads the magic number, dimensions and maxval, leaving br
// positioned at the first pixel byte.
func readPPMHeader(br *bufio.Reader) (ppmHeader, error) {
	var h ppmHeader

	magic := make([]byte, 2)
	if _, err := io.ReadFull(br, magic); err != nil || string(magic) != "P6" {
		return h, ErrNotPPM
	}

	fields := [3]*int{&h.width, &h.height, &h.maxval}
	for i, dst := range fields {
		tok, err := ppmToken(br)
		if err != nil {
			return h, fmt.Errorf("%w: header field %d: %w", ErrNotPPM, i, err)
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 {
			return h, fmt.Errorf("%w: bad header value %q", ErrNotPPM, tok)
		}
		*dst = n
	}
	if h.maxval > 255 {
		return h, fmt.Errorf("%w: 16-bit maxval %d unsupported", ErrNotPPM, h.maxval)
	}
	return h, nil
}

// ppmToken skips whitespace and comments, reads one token and consumes the
// single whitespace byte that ends it.
func ppmToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if len(tok) > 0 && err == io.EOF {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case b == '#' && len(tok) == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case isPPMSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func isPPMSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// DecodePPMConfig returns the dimensions of a P6 pixmap.
func DecodePPMConfig(r io.Reader) (image.Config, error) {
	h, err := readPPMHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodePPM decodes a P6 pixmap into an image.RGBA. Samples are rescaled
// to 0-255 when maxval is smaller.
func DecodePPM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readPPMHeader(br)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	row := make([]byte, h.width*3)
	for y := range h.height {
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, fmt.Errorf("ppm row %d: %w", y, err)
		}
		for x := range h.width {
			o := img.PixOffset(x, y)
			for c := range 3 {
				img.Pix[o+c] = uint8(min(int(row[x*3+c])*255/h.maxval, 255))
			}
			img.Pix[o+3] = 255
		}
	}
	return img, nil
}
