/*
DESCRIPTION
  sequencer.go holds the two most recent frames of a sequence and runs the
  configured estimators on each new frame pair.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"fmt"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/utils/logging"
)

// Result holds the estimates for one frame pair. Fields for estimators that
// are not configured are nil.
type Result struct {
	Gradients   *Gradients
	LucasKanade *Field
	HornSchunck *Field
	Convergence Convergence // Horn-Schunck termination.
}

// Sequencer estimates flow between consecutive frames. It keeps only the
// previous and current frame. A Sequencer is not safe for concurrent use.
type Sequencer struct {
	log  logging.Logger
	prev *Plane
	curr *Plane
	lk   *LucasKanade
	hs   *HornSchunck
	n    uint // Frame counter.
}

// NewSequencer returns a pointer to a new Sequencer running the estimators
// named in c.Estimators.
func NewSequencer(c config.Config) *Sequencer {
	if len(c.Estimators) == 0 {
		c.LogInvalidField("Estimators", "LucasKanade,HornSchunck")
		c.Estimators = []uint{config.EstimatorLucasKanade, config.EstimatorHornSchunck}
	}

	s := &Sequencer{log: c.Logger}
	if c.Uses(config.EstimatorLucasKanade) {
		s.lk = NewLucasKanade(c)
	}
	if c.Uses(config.EstimatorHornSchunck) {
		s.hs = NewHornSchunck(c)
	}
	return s
}

// Next makes f the current frame, discarding the oldest held frame. It
// reports whether a frame pair is available.
func (s *Sequencer) Next(f *Plane) bool {
	s.prev, s.curr = s.curr, f
	s.n++
	return s.prev != nil
}

// Estimate adds f to the sequence and returns the estimates for the pair
// formed with the previous frame. The Result is nil for the first frame.
// A frame whose shape differs from the previous frame yields a *ShapeError;
// it is still kept so that the next pair can be estimated.
func (s *Sequencer) Estimate(f *Plane) (*Result, error) {
	if !s.Next(f) {
		s.log.Debug("waiting for second frame")
		return nil, nil
	}

	g, err := NewGradients(s.prev, s.curr)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", s.n, err)
	}

	res := &Result{Gradients: g}
	if s.lk != nil {
		res.LucasKanade, err = s.lk.Estimate(g)
		if err != nil {
			return nil, fmt.Errorf("frame %d: could not estimate lucas-kanade flow: %w", s.n, err)
		}
	}
	if s.hs != nil {
		res.HornSchunck, res.Convergence, err = s.hs.Estimate(g)
		if err != nil {
			return nil, fmt.Errorf("frame %d: could not estimate horn-schunck flow: %w", s.n, err)
		}
		if !res.Convergence.Converged {
			s.log.Info("horn-schunck did not converge", "frame", s.n, "iterations", res.Convergence.Iterations)
		}
	}
	return res, nil
}

// Reset discards the held frames.
func (s *Sequencer) Reset() {
	s.prev, s.curr = nil, nil
	s.n = 0
}
