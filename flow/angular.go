/*
DESCRIPTION
  angular.go provides evaluation of estimated flow against ground truth. The
  angular error lifts each flow vector (u, v) to the 3D direction (u, v, 1)
  and measures the angle between the estimated and true directions.

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

	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/utils/logging"
)

const defaultUnknownFlowThresh = 1000

// AngularError returns the average angular error in radians between est and
// gt over all pixels, and the per pixel error map.
func AngularError(est, gt *Field) (float64, *Plane, error) {
	err := checkShape("angular error", gt.Shape(), est.Shape())
	if err != nil {
		return 0, nil, err
	}

	m := NewPlane(gt.Rows, gt.Cols)
	for i := range m.Pix {
		m.Pix[i] = angle(est.UV[2*i], est.UV[2*i+1], gt.UV[2*i], gt.UV[2*i+1])
	}
	return stat.Mean(m.Pix, nil), m, nil
}

// EndpointError returns the average Euclidean distance between est and gt
// over all pixels, and the per pixel error map.
func EndpointError(est, gt *Field) (float64, *Plane, error) {
	err := checkShape("endpoint error", gt.Shape(), est.Shape())
	if err != nil {
		return 0, nil, err
	}

	m := NewPlane(gt.Rows, gt.Cols)
	for i := range m.Pix {
		m.Pix[i] = math.Hypot(est.UV[2*i]-gt.UV[2*i], est.UV[2*i+1]-gt.UV[2*i+1])
	}
	return stat.Mean(m.Pix, nil), m, nil
}

// angle returns the angle between (u, v, 1) and (ug, vg, 1). The cosine is
// clamped to [-1, 1] so rounding cannot take it outside the domain of acos.
func angle(u, v, ug, vg float64) float64 {
	cos := (ug*u + vg*v + 1) / math.Sqrt((ug*ug+vg*vg+1)*(u*u+v*v+1))
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

// Evaluator computes angular error while skipping pixels that cannot be
// scored: ground truth marked unknown, and estimates flagged invalid.
type Evaluator struct {
	log     logging.Logger
	unknown float64
}

// NewEvaluator returns a pointer to a new Evaluator.
func NewEvaluator(c config.Config) *Evaluator {
	if !config.Positive(c.UnknownFlowThresh) {
		c.LogInvalidField("UnknownFlowThresh", defaultUnknownFlowThresh)
		c.UnknownFlowThresh = defaultUnknownFlowThresh
	}
	return &Evaluator{log: c.Logger, unknown: c.UnknownFlowThresh}
}

// Known reports whether the ground truth vector (u, v) is known.
func (e *Evaluator) Known(u, v float64) bool {
	return math.Abs(u) <= e.unknown && math.Abs(v) <= e.unknown
}

// AngularError returns the average angular error in radians over the pixels
// that can be scored, and the per pixel error map in which skipped pixels
// are NaN. If no pixel can be scored the average is NaN.
func (e *Evaluator) AngularError(est, gt *Field) (float64, *Plane, error) {
	err := checkShape("angular error", gt.Shape(), est.Shape())
	if err != nil {
		return 0, nil, err
	}

	m := NewPlane(gt.Rows, gt.Cols)
	scored := make([]float64, 0, len(m.Pix))
	for i := range m.Pix {
		ug, vg := gt.UV[2*i], gt.UV[2*i+1]
		if !e.Known(ug, vg) || (est.Valid != nil && !est.Valid[i]) {
			m.Pix[i] = math.NaN()
			continue
		}
		m.Pix[i] = angle(est.UV[2*i], est.UV[2*i+1], ug, vg)
		scored = append(scored, m.Pix[i])
	}

	if len(scored) == 0 {
		e.log.Warning("no pixels could be scored", "rows", gt.Rows, "cols", gt.Cols)
		return math.NaN(), m, nil
	}
	e.log.Debug("angular error evaluated", "scored", len(scored), "skipped", len(m.Pix)-len(scored))
	return stat.Mean(scored, nil), m, nil
}
