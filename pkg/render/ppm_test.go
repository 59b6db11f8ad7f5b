package render

import (
	"bytes"
	"errors"
	"image/color"
	"strings"
	"testing"
)

func TestPPMRoundTrip(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	red, blue := Color{255, 0, 0}, Color{0, 0, 255}
	if err := fb.WritePixel(0, 0, 1, red); err != nil {
		t.Fatal(err)
	}
	if err := fb.WritePixel(2, 1, 1, blue); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := fb.WritePPM(&buf); err != nil {
		t.Fatalf("WritePPM: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("P6\n3 2\n255\n")) {
		t.Fatalf("header = %q", buf.Bytes()[:11])
	}
	if got, want := buf.Len(), len("P6\n3 2\n255\n")+3*2*3; got != want {
		t.Fatalf("size = %d, want %d", got, want)
	}

	img, format, err := DecodeImage(&buf, "frame.ppm")
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if format != "ppm" {
		t.Errorf("format = %q, want ppm", format)
	}

	// Logical y=0 is the last image row.
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{2, 0, color.RGBA{0, 0, 255, 255}},
		{1, 1, color.RGBA{0, 0, 0, 255}},
	}
	for _, tc := range tests {
		if got := color.RGBAModel.Convert(img.At(tc.x, tc.y)); got != tc.want {
			t.Errorf("image (%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}

	// Every pixel matches the framebuffer after flipping.
	for x := range 3 {
		for y := range 2 {
			c := fb.Pixel(x, y)
			want := color.RGBA{c.R, c.G, c.B, 255}
			if got := color.RGBAModel.Convert(img.At(x, 1-y)); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDecodePPMHeader(t *testing.T) {
	src := "P6 # comment\n2 1\n# another\n15\n" + string([]byte{15, 0, 0, 0, 15, 0})
	img, err := DecodePPM(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodePPM: %v", err)
	}
	if got := img.At(0, 0).(color.RGBA); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel 0 = %v, want rescaled red", got)
	}

	cfg, err := DecodePPMConfig(strings.NewReader(src))
	if err != nil || cfg.Width != 2 || cfg.Height != 1 {
		t.Errorf("DecodePPMConfig = %+v, %v", cfg, err)
	}
}

func TestDecodePPMErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"ascii pixmap", "P3\n1 1\n255\n0 0 0\n"},
		{"bad size", "P6\nx 1\n255\n"},
		{"16 bit", "P6\n1 1\n65535\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodePPM(strings.NewReader(tc.src)); !errors.Is(err, ErrNotPPM) {
				t.Errorf("err = %v, want ErrNotPPM", err)
			}
		})
	}

	if _, err := DecodePPM(strings.NewReader("P6\n2 2\n255\nabc")); err == nil {
		t.Error("truncated pixel data should fail")
	}
}
