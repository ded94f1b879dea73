/*
DESCRIPTION
  runner.go provides the main loop of opticflow, estimating and evaluating
  flow for each frame pair and writing the results.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/opticflow/codec/flo"
	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/device"
	"github.com/ausocean/opticflow/flow"
	"github.com/ausocean/opticflow/render"
	"github.com/ausocean/utils/logging"
)

// runner estimates flow over a frame sequence.
type runner struct {
	log  logging.Logger
	cfg  config.Config
	seq  *flow.Sequencer
	eval *flow.Evaluator

	gt   *flow.Field // Ground truth shared by all pairs, if GroundTruthPath is a file.
	prev string      // Source of the previous frame.

	pairs  int // Frame pairs estimated.
	failed int // Frames that could not be read or estimated.
}

func newRunner(l logging.Logger, c config.Config) (*runner, error) {
	r := &runner{
		log:  l,
		cfg:  c,
		seq:  flow.NewSequencer(c),
		eval: flow.NewEvaluator(c),
	}

	if c.GroundTruthPath != "" {
		fi, err := os.Stat(c.GroundTruthPath)
		if err != nil {
			return nil, fmt.Errorf("could not stat ground truth: %w", err)
		}
		if !fi.IsDir() {
			r.gt, err = flo.Load(c.GroundTruthPath)
			if err != nil {
				return nil, err
			}
		}
	}

	if c.OutputPath != "" {
		err := os.MkdirAll(c.OutputPath, 0o755)
		if err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}
	return r, nil
}

// run processes frames from src until it is exhausted. Frames that cannot be
// read are logged and skipped.
func (r *runner) run(src device.FrameSource) {
	for {
		f, err := src.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			r.log.Warning(pkg+"skipping frame", "source", src.Name(), "error", err.Error())
			r.failed++
			continue
		}
		r.process(f)
	}
}

// process estimates flow between the previous frame and f.
func (r *runner) process(f *device.Frame) {
	prev := r.prev
	r.prev = f.Source

	res, err := r.seq.Estimate(f.Plane)
	if err != nil {
		r.log.Error(pkg+"could not estimate flow", "frame", f.Source, "error", err.Error())
		r.failed++
		return
	}
	if res == nil {
		return
	}
	r.pairs++

	name := strings.TrimSuffix(filepath.Base(prev), filepath.Ext(prev))
	gt := r.groundTruth(name)

	for _, e := range []struct {
		name  string
		field *flow.Field
	}{
		{"lucas_kanade", res.LucasKanade},
		{"horn_schunck", res.HornSchunck},
	} {
		if e.field == nil {
			continue
		}
		kv := []interface{}{"pair", name, "estimator", e.name, "invalid", e.field.Invalid()}
		if e.field == res.HornSchunck {
			kv = append(kv, "iterations", res.Convergence.Iterations, "converged", res.Convergence.Converged)
		}

		var errs *flow.Plane
		if gt != nil {
			var aae float64
			aae, errs, err = r.eval.AngularError(e.field, gt)
			if err != nil {
				r.log.Warning(pkg+"could not evaluate flow", "pair", name, "estimator", e.name, "error", err.Error())
			} else {
				kv = append(kv, "aae", aae)
			}
		}
		r.log.Info(pkg+"estimated flow", kv...)

		r.write(name+"_"+e.name, e.field, errs)
	}
}

// groundTruth returns the ground truth for the pair starting at the frame
// called name, or nil if there is none.
func (r *runner) groundTruth(name string) *flow.Field {
	if r.gt != nil || r.cfg.GroundTruthPath == "" {
		return r.gt
	}
	gt, err := flo.Load(filepath.Join(r.cfg.GroundTruthPath, name+".flo"))
	switch {
	case errors.Is(err, flo.ErrFileNotFound):
		r.log.Debug("no ground truth", "pair", name)
		return nil
	case err != nil:
		r.log.Warning(pkg+"could not load ground truth", "pair", name, "error", err.Error())
		return nil
	}
	return gt
}

// write saves a field, its visualisations and its error map, if any, to the
// output directory.
func (r *runner) write(base string, f *flow.Field, errs *flow.Plane) {
	if r.cfg.OutputPath == "" {
		return
	}
	path := func(suffix string) string { return filepath.Join(r.cfg.OutputPath, base+suffix) }

	err := flo.Save(path(".flo"), f)
	if err != nil {
		r.log.Error(pkg+"could not save flow", "error", err.Error())
	}
	err = render.WritePNG(path("_flow.png"), render.Flow(f))
	if err != nil {
		r.log.Error(pkg+"could not save flow image", "error", err.Error())
	}
	err = render.WritePNG(path("_magnitude.png"), render.Magnitude(f))
	if err != nil {
		r.log.Error(pkg+"could not save magnitude image", "error", err.Error())
	}
	if errs != nil {
		err = render.SaveErrorMap(path("_aae.png"), errs, base+" angular error")
		if err != nil {
			r.log.Error(pkg+"could not save error map", "error", err.Error())
		}
	}
}
