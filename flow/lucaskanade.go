/*
DESCRIPTION
  lucaskanade.go provides the Lucas-Kanade estimator. Flow is assumed
  constant within a square window around each pixel and found by solving
  the 2x2 normal equations of the brightness constancy constraint over the
  window. Windows whose structure tensor has a small eigenvalue do not
  constrain the flow (the aperture problem) and are flagged invalid.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/utils/logging"
)

const (
	defaultWindowSize     = 25
	defaultEigenThreshold = 0.01
)

// windowSums holds the window aggregates of the gradient products.
type windowSums struct {
	xx, yy, xy, xt, yt *Plane
}

// LucasKanade is a windowed least squares flow estimator.
type LucasKanade struct {
	log     logging.Logger
	window  int
	thresh  float64
	workers int
}

// NewLucasKanade returns a pointer to a new LucasKanade estimator.
func NewLucasKanade(c config.Config) *LucasKanade {
	// Validate parameters.
	if c.WindowSize == 0 || c.WindowSize%2 == 0 {
		c.LogInvalidField("WindowSize", defaultWindowSize)
		c.WindowSize = defaultWindowSize
	}
	if !config.Positive(c.EigenThreshold) {
		c.LogInvalidField("EigenThreshold", defaultEigenThreshold)
		c.EigenThreshold = defaultEigenThreshold
	}
	if c.Workers == 0 {
		c.Workers = uint(runtime.NumCPU())
	}

	return &LucasKanade{
		log:     c.Logger,
		window:  int(c.WindowSize),
		thresh:  c.EigenThreshold,
		workers: int(c.Workers),
	}
}

// Estimate returns the Lucas-Kanade flow for the gradients g. Pixels whose
// window is degenerate are flagged invalid in the returned field's Valid
// mask and have zero flow.
func (lk *LucasKanade) Estimate(g *Gradients) (*Field, error) {
	s := g.Shape()
	for _, p := range []*Plane{g.Iy, g.It} {
		err := checkShape("lucas-kanade", s, p.Shape())
		if err != nil {
			return nil, err
		}
	}

	sums := lk.aggregate(g)

	f := NewField(s.Rows, s.Cols)
	f.Valid = make([]bool, s.Rows*s.Cols)
	parallelRows(s.Rows, lk.workers, func(r0, r1 int) {
		lk.solve(sums, f, r0, r1)
	})

	lk.log.Debug("lucas-kanade flow estimated", "rows", s.Rows, "cols", s.Cols, "invalid", f.Invalid())
	return f, nil
}

// aggregate box filters the five gradient products. Each product is
// filtered in its own goroutine.
func (lk *LucasKanade) aggregate(g *Gradients) *windowSums {
	rows, cols := g.Ix.Rows, g.Ix.Cols
	products := [5]func(i int) float64{
		func(i int) float64 { return g.Ix.Pix[i] * g.Ix.Pix[i] },
		func(i int) float64 { return g.Iy.Pix[i] * g.Iy.Pix[i] },
		func(i int) float64 { return g.Ix.Pix[i] * g.Iy.Pix[i] },
		func(i int) float64 { return g.Ix.Pix[i] * g.It.Pix[i] },
		func(i int) float64 { return g.Iy.Pix[i] * g.It.Pix[i] },
	}

	var out [5]*Plane
	var wg sync.WaitGroup
	for k, prod := range products {
		wg.Add(1)
		go func(k int, prod func(int) float64) {
			defer wg.Done()
			p := NewPlane(rows, cols)
			for i := range p.Pix {
				p.Pix[i] = prod(i)
			}
			out[k] = NewPlane(rows, cols)
			boxFilter(out[k], p, lk.window)
		}(k, prod)
	}
	wg.Wait()

	return &windowSums{xx: out[0], yy: out[1], xy: out[2], xt: out[3], yt: out[4]}
}

// solve solves the normal equations for rows [r0, r1).
func (lk *LucasKanade) solve(s *windowSums, f *Field, r0, r1 int) {
	var (
		a    = mat.NewSymDense(2, nil)
		b    = mat.NewVecDense(2, nil)
		x    = mat.NewVecDense(2, nil)
		eig  mat.EigenSym
		chol mat.Cholesky
		vals = make([]float64, 2)
	)

	for i := r0 * f.Cols; i < r1*f.Cols; i++ {
		a.SetSym(0, 0, s.xx.Pix[i])
		a.SetSym(0, 1, s.xy.Pix[i])
		a.SetSym(1, 1, s.yy.Pix[i])

		// Eigenvalues are returned in ascending order.
		if !eig.Factorize(a, false) {
			continue
		}
		if low := eig.Values(vals)[0]; !(low >= lk.thresh) {
			continue
		}
		if !chol.Factorize(a) {
			continue
		}

		b.SetVec(0, -s.xt.Pix[i])
		b.SetVec(1, -s.yt.Pix[i])
		err := chol.SolveVecTo(x, b)
		if err != nil {
			continue
		}

		f.UV[2*i] = x.AtVec(0)
		f.UV[2*i+1] = x.AtVec(1)
		f.Valid[i] = true
	}
}
