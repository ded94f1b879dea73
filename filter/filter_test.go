/*
DESCRIPTION
  filter_test.go contains tests and benchmarks for the filter implementations.

AUTHORS
  Ella Pietraroia <ella@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"testing"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/flow"
	"github.com/ausocean/utils/logging"
)

type dumbWriteCloser struct{}

func (d *dumbWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (d *dumbWriteCloser) Close() error                { return nil }

// recorder keeps every frame written to it.
type recorder struct{ frames [][]byte }

func (r *recorder) Write(p []byte) (int, error) {
	r.frames = append(r.frames, append([]byte(nil), p...))
	return len(p), nil
}
func (r *recorder) Close() error { return nil }

// frame returns a JPEG of a smooth texture moved right by shift pixels.
func frame(t testing.TB, shift float64) []byte {
	const size = 64
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx, fy := float64(x)-shift, float64(y)
			v := 0.5 + 0.2*math.Sin(0.35*fx) + 0.2*math.Cos(0.3*fy) + 0.05*math.Sin(0.2*(fx+fy))
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(255 * v))})
		}
	}
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100})
	if err != nil {
		t.Fatalf("could not encode frame: %v", err)
	}
	return buf.Bytes()
}

func testConfig(t testing.TB, l logging.Logger) config.Config {
	cfg := config.Config{
		Logger:          l,
		WindowSize:      9,
		MotionThreshold: 0.3,
		MotionPixels:    200,
		Estimators:      []uint{config.EstimatorLucasKanade},
	}
	err := cfg.Validate()
	if err != nil {
		t.Fatalf("config struct is bad: %v", err)
	}
	return cfg
}

func TestFlow(t *testing.T) {
	still, moved := frame(t, 0), frame(t, 1)

	dst := &recorder{}
	f := NewFlow(dst, testConfig(t, (*logging.TestLogger)(t)))
	defer f.Close()

	// The first frame is only a reference, the second has no motion, the
	// third moved and the fourth is still again.
	for i, p := range [][]byte{still, still, moved, moved} {
		n, err := f.Write(p)
		if err != nil {
			t.Fatalf("frame %d: cannot write to flow filter: %v", i, err)
		}
		if n != len(p) {
			t.Errorf("frame %d: unexpected write count: got %d, want %d", i, n, len(p))
		}
	}

	if len(dst.frames) != 1 {
		t.Fatalf("unexpected number of frames passed: got %d, want 1", len(dst.frames))
	}
	if !bytes.Equal(dst.frames[0], moved) {
		t.Error("passed frame is not the moved frame")
	}
}

func TestFlowBadFrame(t *testing.T) {
	f := NewFlow(&dumbWriteCloser{}, testConfig(t, (*logging.TestLogger)(t)))
	_, err := f.Write([]byte("not a jpeg"))
	if err == nil {
		t.Error("expected error for undecodable frame")
	}
}

func TestMoved(t *testing.T) {
	field := flow.NewField(1, 4)
	field.Set(0, 0, 1, 0)
	field.Set(0, 1, 0.2, 0.2)
	field.Set(0, 2, 3, 4)
	field.Set(0, 3, 3, 4)
	field.Valid = []bool{true, true, true, false}

	if got := moved(field, 0.5); got != 2 {
		t.Errorf("unexpected motion count: got %d, want 2", got)
	}
}

func TestNoOp(t *testing.T) {
	dst := &recorder{}
	f := NewNoOp(dst)
	_, err := f.Write([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("cannot write to no-op filter: %v", err)
	}
	if len(dst.frames) != 1 || !bytes.Equal(dst.frames[0], []byte{1, 2, 3}) {
		t.Errorf("unexpected output: %v", dst.frames)
	}
}

func BenchmarkFlow(b *testing.B) {
	testPackets := [][]byte{frame(b, 0), frame(b, 0.5), frame(b, 1), frame(b, 1)}
	cfg := testConfig(b, logging.New(logging.Debug, &bytes.Buffer{}, true))

	f := NewFlow(&dumbWriteCloser{}, cfg)
	for n := 0; n < b.N; n++ {
		for _, x := range testPackets {
			_, err := f.Write(x)
			if err != nil {
				b.Fatalf("cannot write to flow filter: %v#", err)
			}
		}
	}

	b.Log("Frames: ", len(testPackets))
}
