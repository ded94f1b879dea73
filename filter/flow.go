/*
DESCRIPTION
  A filter that detects motion and discards frames without motion. The
  filter estimates dense optical flow between consecutive frames and counts
  the pixels that moved further than a threshold.

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
	"fmt"
	"image/jpeg"
	"io"
	"math"
	"sync"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/flow"
	"github.com/ausocean/opticflow/render"
	"github.com/ausocean/utils/logging"
)

const (
	defaultFlowThreshold = 0.5 // Pixels of displacement.
	defaultFlowPixels    = 1000
)

// Flow is a filter that provides motion detection via optical flow. Motion is
// measured with the first configured estimator.
type Flow struct {
	debugging debugWindows
	dst       io.WriteCloser
	log       logging.Logger
	seq       *flow.Sequencer
	thresh    float64
	pix       uint
	mu        sync.Mutex
}

// NewFlow returns a pointer to a new Flow filter struct.
func NewFlow(dst io.WriteCloser, c config.Config) *Flow {
	// Validate parameters.
	if !config.Positive(c.MotionThreshold) {
		c.LogInvalidField("MotionThreshold", defaultFlowThreshold)
		c.MotionThreshold = defaultFlowThreshold
	}

	if c.MotionPixels <= 0 {
		c.LogInvalidField("MotionPixels", defaultFlowPixels)
		c.MotionPixels = defaultFlowPixels
	}

	if len(c.Estimators) == 0 {
		c.LogInvalidField("Estimators", "LucasKanade")
		c.Estimators = []uint{config.EstimatorLucasKanade}
	}
	c.Estimators = c.Estimators[:1]

	return &Flow{
		dst:       dst,
		log:       c.Logger,
		seq:       flow.NewSequencer(c),
		thresh:    c.MotionThreshold,
		pix:       c.MotionPixels,
		debugging: newWindows("FLOW"),
	}
}

// Implements io.Closer.
func (f *Flow) Close() error {
	return f.debugging.close()
}

// Implements io.Writer.
// Write applies the motion filter to the video stream. Only frames with motion
// are written to the destination encoder, frames without are discarded.
func (f *Flow) Write(p []byte) (int, error) {
	// Decode MJPEG.
	img, err := jpeg.Decode(bytes.NewReader(p))
	if err != nil {
		return 0, fmt.Errorf("image can't be decoded: %w", err)
	}

	f.mu.Lock()
	res, err := f.seq.Estimate(flow.FrameFromImage(img))
	f.mu.Unlock()
	if err != nil {
		// The frame is still held, so the stream recovers at the next frame.
		f.log.Warning("could not estimate flow", "error", err.Error())
		return len(p), nil
	}

	// First frame only becomes the reference.
	if res == nil {
		return len(p), nil
	}

	field := res.LucasKanade
	if field == nil {
		field = res.HornSchunck
	}
	motion := moved(field, f.thresh)

	// Draw debug information.
	f.debugging.show(img, render.Flow(field), motion >= f.pix, fmt.Sprintf("Motion: %d", motion), fmt.Sprintf("Pix: %d", f.pix))

	// If there are not enough motion pixels then discard the frame.
	if motion < f.pix {
		return len(p), nil
	}

	f.log.Debug("motion detected", "pixels", motion)
	return f.dst.Write(p)
}

// moved returns the number of valid vectors in field with magnitude above
// thresh.
func moved(field *flow.Field, thresh float64) uint {
	var n uint
	for r := 0; r < field.Rows; r++ {
		for c := 0; c < field.Cols; c++ {
			if field.IsValid(r, c) && math.Hypot(field.At(r, c)) > thresh {
				n++
			}
		}
	}
	return n
}
