package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/term"

	"github.com/taigrr/softraster/pkg/render"
)

// showImage displays img in the terminal using half-block cells until a
// key is pressed or ctx is done. It does nothing when stdout is not a
// terminal.
func showImage(ctx context.Context, img image.Image) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		slog.Warn("preview skipped: stdout is not a terminal")
		return nil
	}

	t := uv.DefaultTerminal()

	width, height, err := t.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := t.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	t.EnterAltScreen()
	t.HideCursor()
	t.Resize(width, height)

	defer func() {
		t.ExitAltScreen()
		t.ShowCursor()
		t.Shutdown(context.Background())
	}()

	t.Draw(render.HalfBlock{Image: render.FitImage(img, width, height)})
	if err := t.Display(); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-t.Events():
			if !ok {
				return nil
			}
			if _, ok := ev.(uv.KeyPressEvent); ok {
				return nil
			}
		}
	}
}
