package telemetry

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/hajimehoshi/ebiten/v2"
)

// Capture copies the pixels of img. Only valid while the game loop runs,
// typically from Draw.
func Capture(img *ebiten.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	img.ReadPixels(rgba.Pix)
	return rgba
}

// EncodeWebP writes img as a lossless WebP. The encoder ignores writer
// errors, so the image is encoded in memory first.
func EncodeWebP(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveScreenshot writes img as a lossless WebP named after t into dir and
// returns the file path.
func SaveScreenshot(dir string, img image.Image, t time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("telemetry: creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, "screenshot-"+t.Format("20060102-150405.000")+".webp")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("telemetry: creating %s: %w", path, err)
	}

	err = EncodeWebP(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("telemetry: writing %s: %w", path, err)
	}
	return path, nil
}
