/*
DESCRIPTION
  lucaskanade_test.go tests the Lucas-Kanade estimator.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"errors"
	"math"
	"testing"
)

// pattern is a smooth texture with gradient in both directions everywhere
// a 25x25 window can be placed.
func pattern(x, y float64) float64 {
	return 0.5 + 0.2*math.Sin(0.35*x) + 0.2*math.Cos(0.3*y) + 0.05*math.Sin(0.2*(x+y))
}

// translated returns a frame pair of pattern moved by (u, v) pixels.
func translated(rows, cols int, u, v float64) (prev, curr *Plane) {
	prev = planeFrom(rows, cols, func(r, c int) float64 { return pattern(float64(c), float64(r)) })
	curr = planeFrom(rows, cols, func(r, c int) float64 { return pattern(float64(c)-u, float64(r)-v) })
	return prev, curr
}

func TestLucasKanadeTranslation(t *testing.T) {
	tests := []struct {
		u, v float64
	}{
		{u: 0.5, v: -0.25},
		{u: -0.3, v: 0.4},
		{u: 0, v: 0},
	}

	const (
		rows, cols = 64, 64
		border     = 16
		tol        = 0.15
	)

	lk := NewLucasKanade(testConfig(t))
	for _, test := range tests {
		prev, curr := translated(rows, cols, test.u, test.v)
		g, err := NewGradients(prev, curr)
		if err != nil {
			t.Fatalf("could not compute gradients: %v", err)
		}

		f, err := lk.Estimate(g)
		if err != nil {
			t.Fatalf("did not expect error: %v", err)
		}

		for r := border; r < rows-border; r++ {
			for c := border; c < cols-border; c++ {
				if !f.IsValid(r, c) {
					t.Fatalf("(%d, %d) unexpectedly flagged invalid", r, c)
				}
				u, v := f.At(r, c)
				if !approx(u, test.u, tol) || !approx(v, test.v, tol) {
					t.Fatalf("flow at (%d, %d) = (%v, %v), want (%v, %v)", r, c, u, v, test.u, test.v)
				}
			}
		}
	}
}

func TestLucasKanadeUniform(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		prev, curr float64
	}{
		{name: "static", rows: 10, cols: 12, prev: 0.5, curr: 0.5},
		{name: "brightening", rows: 10, cols: 12, prev: 0.2, curr: 0.7},
		{name: "flat 3x3", rows: 3, cols: 3, prev: 0.4, curr: 0.4},
	}

	lk := NewLucasKanade(testConfig(t))
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g, err := NewGradients(uniform(test.rows, test.cols, test.prev), uniform(test.rows, test.cols, test.curr))
			if err != nil {
				t.Fatalf("could not compute gradients: %v", err)
			}

			f, err := lk.Estimate(g)
			if err != nil {
				t.Fatalf("did not expect error: %v", err)
			}
			for i, x := range f.UV {
				if x != 0 {
					t.Fatalf("flow component %d = %v, want 0", i, x)
				}
			}
			if f.Invalid() != test.rows*test.cols {
				t.Errorf("got %d invalid pixels, want %d", f.Invalid(), test.rows*test.cols)
			}
		})
	}
}

func TestLucasKanadeAperture(t *testing.T) {
	// Vertical stripes constrain only the horizontal component, so every
	// window is degenerate.
	prev := planeFrom(20, 20, func(r, c int) float64 { return 0.5 + 0.3*math.Sin(0.5*float64(c)) })
	curr := planeFrom(20, 20, func(r, c int) float64 { return 0.5 + 0.3*math.Sin(0.5*(float64(c)-0.5)) })
	g, err := NewGradients(prev, curr)
	if err != nil {
		t.Fatalf("could not compute gradients: %v", err)
	}

	f, err := NewLucasKanade(testConfig(t)).Estimate(g)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if f.Invalid() != 20*20 {
		t.Errorf("got %d invalid pixels, want %d", f.Invalid(), 20*20)
	}
}

func TestLucasKanadeDefaults(t *testing.T) {
	c := testConfig(t)
	c.WindowSize = 4
	c.EigenThreshold = -1
	lk := NewLucasKanade(c)
	if lk.window != defaultWindowSize || lk.thresh != defaultEigenThreshold {
		t.Errorf("got window %d threshold %v, want defaults", lk.window, lk.thresh)
	}
}

func TestLucasKanadeNonFiniteThreshold(t *testing.T) {
	for _, thresh := range []float64{math.NaN(), math.Inf(1)} {
		c := testConfig(t)
		c.EigenThreshold = thresh
		lk := NewLucasKanade(c)
		if lk.thresh != defaultEigenThreshold {
			t.Errorf("got threshold %v for %v, want default", lk.thresh, thresh)
		}
	}
}

func TestLucasKanadeShapeMismatch(t *testing.T) {
	g := &Gradients{Ix: NewPlane(4, 4), Iy: NewPlane(4, 4), It: NewPlane(3, 4)}
	_, err := NewLucasKanade(testConfig(t)).Estimate(g)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}
