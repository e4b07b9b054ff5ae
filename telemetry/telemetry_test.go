package telemetry

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/webp"
)

func TestRecorderWritesHeaderOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorderWriter(&buf)

	for i := 1; i <= 3; i++ {
		s := FrameSample{Frame: i, Level: "meadow", FrameMS: float64(i), Entities: 4, Bodies: 2}
		if err := r.Record(s); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3:\n%s", len(lines), buf.String())
	}
	if lines[0] != "frame,level,frame_ms,update_ms,entities,bodies" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "2,meadow,2,") {
		t.Fatalf("row = %q", lines[2])
	}
	if got := r.Summary().Frames; got != 3 {
		t.Fatalf("summary frames = %d, want 3", got)
	}
}

func TestNilRecorder(t *testing.T) {
	r, err := NewRecorder("")
	if err != nil || r != nil {
		t.Fatalf("NewRecorder(\"\") = %v, %v; want nil, nil", r, err)
	}
	if err := r.Record(FrameSample{}); err != nil {
		t.Fatalf("nil Record: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestRecorderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "frames.csv")
	r, err := NewRecorder(path)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if err := r.Record(FrameSample{Frame: 1, FrameMS: 16}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "1,,16,") {
		t.Fatalf("csv = %q", data)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("empty summary = %+v", got)
	}

	one := Summarize([]float64{16})
	if one.Frames != 1 || one.MeanMS != 16 || one.StdDev != 0 || one.MaxMS != 16 {
		t.Fatalf("single summary = %+v", one)
	}

	ms := make([]float64, 100)
	for i := range ms {
		ms[len(ms)-1-i] = float64(i + 1)
	}
	s := Summarize(ms)
	if s.Frames != 100 || s.MeanMS != 50.5 || s.MaxMS != 100 {
		t.Fatalf("summary = %+v", s)
	}
	if s.P95MS < 94 || s.P95MS > 96 {
		t.Fatalf("p95 = %v, want about 95", s.P95MS)
	}
	if math.Abs(s.StdDev-29.0115) > 1e-3 {
		t.Fatalf("stddev = %v, want 29.0115", s.StdDev)
	}
	if ms[0] != 100 {
		t.Fatalf("Summarize reordered its input")
	}
}

func TestSaveScreenshot(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 60), B: 90, A: 255})
		}
	}

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	path, err := SaveScreenshot(t.TempDir(), img, at)
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if filepath.Base(path) != "screenshot-20240506-070809.000.webp" {
		t.Fatalf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	decoded, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("webp.Decode: %v", err)
	}
	if decoded.Bounds().Dx() != 6 || decoded.Bounds().Dy() != 4 {
		t.Fatalf("decoded bounds = %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(5, 3).RGBA()
	if r>>8 != 200 || g>>8 != 180 || b>>8 != 90 {
		t.Fatalf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeWebPReportsWriteError(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if err := EncodeWebP(failingWriter{}, img); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("EncodeWebP error = %v, want the write error", err)
	}
}

func TestSaveScreenshotFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	_, err := SaveScreenshot(dir, image.NewRGBA(image.Rect(0, 0, 0, 0)), time.Unix(0, 0))
	if err == nil {
		t.Fatalf("SaveScreenshot accepted an empty image")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed screenshot left %d files behind", len(entries))
	}
}
