/*
DESCRIPTION
  hornschunck.go provides the Horn-Schunck estimator, which finds a globally
  smooth flow field by iterative relaxation of the brightness constancy and
  smoothness terms.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"math"
	"runtime"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/utils/logging"
)

const (
	defaultAlpha    = 1.0
	defaultEpsilon  = 0.002
	defaultMaxIters = 200
)

// Convergence describes how a Horn-Schunck estimate terminated.
type Convergence struct {
	Iterations int  // Number of iterations performed.
	Converged  bool // False if the iteration budget was exhausted.
}

// HornSchunck is a global variational flow estimator.
type HornSchunck struct {
	log      logging.Logger
	alpha2   float64
	eps      float64
	maxIters int
	workers  int
}

// NewHornSchunck returns a pointer to a new HornSchunck estimator.
func NewHornSchunck(c config.Config) *HornSchunck {
	// Validate parameters.
	if !config.Positive(c.Alpha) {
		c.LogInvalidField("Alpha", defaultAlpha)
		c.Alpha = defaultAlpha
	}
	if !config.Positive(c.Epsilon) {
		c.LogInvalidField("Epsilon", defaultEpsilon)
		c.Epsilon = defaultEpsilon
	}
	if c.MaxIters == 0 {
		c.LogInvalidField("MaxIters", defaultMaxIters)
		c.MaxIters = defaultMaxIters
	}
	if c.Workers == 0 {
		c.Workers = uint(runtime.NumCPU())
	}

	return &HornSchunck{
		log:      c.Logger,
		alpha2:   c.Alpha * c.Alpha,
		eps:      c.Epsilon,
		maxIters: int(c.MaxIters),
		workers:  int(c.Workers),
	}
}

// Estimate returns the Horn-Schunck flow for the gradients g. Exhausting the
// iteration budget is not an error; the latest estimate is returned and
// reported as not converged.
func (hs *HornSchunck) Estimate(g *Gradients) (*Field, Convergence, error) {
	s := g.Shape()
	for _, p := range []*Plane{g.Iy, g.It} {
		err := checkShape("horn-schunck", s, p.Shape())
		if err != nil {
			return nil, Convergence{}, err
		}
	}

	var (
		u    = NewPlane(s.Rows, s.Cols)
		v    = NewPlane(s.Rows, s.Cols)
		uAvg = NewPlane(s.Rows, s.Cols)
		vAvg = NewPlane(s.Rows, s.Cols)
		conv Convergence
	)

	// The denominator does not change between iterations.
	den := make([]float64, len(u.Pix))
	for i := range den {
		den[i] = hs.alpha2 + g.Ix.Pix[i]*g.Ix.Pix[i] + g.Iy.Pix[i]*g.Iy.Pix[i]
	}

	for conv.Iterations < hs.maxIters {
		conv.Iterations++

		// Averages need all of the previous iteration's field.
		neighbourAverage(uAvg, u, hs.workers)
		neighbourAverage(vAvg, v, hs.workers)

		parallelRows(s.Rows, hs.workers, func(r0, r1 int) {
			for i := r0 * s.Cols; i < r1*s.Cols; i++ {
				ix, iy := g.Ix.Pix[i], g.Iy.Pix[i]
				d := (ix*uAvg.Pix[i] + iy*vAvg.Pix[i] + g.It.Pix[i]) / den[i]
				u.Pix[i] = uAvg.Pix[i] - ix*d
				v.Pix[i] = vAvg.Pix[i] - iy*d
			}
		})

		if settled(u, uAvg, v, vAvg, hs.eps) {
			conv.Converged = true
			break
		}
	}

	f := NewField(s.Rows, s.Cols)
	for i := range u.Pix {
		f.UV[2*i] = u.Pix[i]
		f.UV[2*i+1] = v.Pix[i]
	}

	hs.log.Debug("horn-schunck flow estimated", "iterations", conv.Iterations, "converged", conv.Converged)
	return f, conv, nil
}

// settled accumulates |u-uAvg| + |v-vAvg| in row-major order and reports
// false as soon as the running sum exceeds eps. A sum that never exceeds
// eps, including one that is NaN, settles.
func settled(u, uAvg, v, vAvg *Plane, eps float64) bool {
	var sum float64
	for i := range u.Pix {
		sum += math.Abs(u.Pix[i]-uAvg.Pix[i]) + math.Abs(v.Pix[i]-vAvg.Pix[i])
		if sum > eps {
			return false
		}
	}
	return true
}
