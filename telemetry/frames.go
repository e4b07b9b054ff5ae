package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"
)

// FrameSample is one row of the per-frame CSV.
type FrameSample struct {
	Frame    int     `csv:"frame"`
	Level    string  `csv:"level"`
	FrameMS  float64 `csv:"frame_ms"`
	UpdateMS float64 `csv:"update_ms"`
	Entities int     `csv:"entities"`
	Bodies   int     `csv:"bodies"`
}

// Recorder appends frame samples to a CSV stream and keeps the frame times
// for the end of run summary. A nil *Recorder records nothing.
type Recorder struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
	frameMS       []float64
}

// NewRecorder creates path (and its directory). An empty path disables
// recording and returns nil.
func NewRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("telemetry: creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating %s: %w", path, err)
	}
	r := NewRecorderWriter(f)
	r.closer = f
	return r, nil
}

func NewRecorderWriter(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

func (r *Recorder) Record(s FrameSample) error {
	if r == nil {
		return nil
	}
	r.frameMS = append(r.frameMS, s.FrameMS)

	records := []FrameSample{s}
	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("telemetry: writing frame: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("telemetry: writing frame: %w", err)
	}
	return nil
}

func (r *Recorder) Summary() Summary {
	if r == nil {
		return Summary{}
	}
	return Summarize(r.frameMS)
}

func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Summary describes frame times in milliseconds.
type Summary struct {
	Frames int
	MeanMS float64
	StdDev float64
	P95MS  float64
	MaxMS  float64
}

func Summarize(frameMS []float64) Summary {
	if len(frameMS) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), frameMS...)
	sort.Float64s(sorted)

	s := Summary{
		Frames: len(sorted),
		MeanMS: stat.Mean(sorted, nil),
		P95MS:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
		MaxMS:  sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d frames, mean %.2fms, stddev %.2fms, p95 %.2fms, max %.2fms",
		s.Frames, s.MeanMS, s.StdDev, s.P95MS, s.MaxMS)
}
