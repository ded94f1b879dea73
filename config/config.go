/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the optical flow
// estimators, the flow motion filter and the opticflow command.
package config

import (
	"github.com/ausocean/utils/logging"
)

// The flow estimators.
const (
	EstimatorLucasKanade = iota
	EstimatorHornSchunck
)

// Config provides parameters relevant to optical flow estimation. A config
// is passed by value to each estimator constructor; there is no package level
// state. Default values for these fields are defined in variables.go.
type Config struct {
	// Alpha is the Horn-Schunck smoothness weight. Larger values favour a
	// smoother field over fidelity to the brightness constraint.
	Alpha float64

	// EigenThreshold is the minimum smaller eigenvalue of the Lucas-Kanade
	// structure tensor for a window to be considered textured enough. Pixels
	// below it are flagged invalid and given zero flow.
	EigenThreshold float64

	Epsilon    float64 // Horn-Schunck stopping criterion on the accumulated update difference.
	Estimators []uint  // Estimators to run for each frame pair.

	// GroundTruthPath is the directory holding .flo ground truth files named
	// after their frames, or a single .flo file.
	GroundTruthPath string

	// InputPath is the directory or comma separated list of image files that
	// frames are read from.
	InputPath string

	// Logger holds an implementation of the Logger interface. This must be
	// set for the estimators to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	MaxIters        uint    // Maximum number of Horn-Schunck iterations.
	MotionPixels    uint    // Number of pixels with flow above MotionThreshold needed for a frame to be considered moving.
	MotionThreshold float64 // Flow magnitude in pixels that is considered motion.
	OutputPath      string  // Directory that visualisations are written to. Empty disables output.
	Suppress        bool    // Holds logger suppression state.

	// UnknownFlowThresh is the component magnitude above which a ground
	// truth vector is treated as unknown.
	UnknownFlowThresh float64

	Watch      bool // If true, InputPath is watched for new frames after the existing ones are consumed.
	WindowSize uint // Side of the square Lucas-Kanade window; must be odd.
	Workers    uint // Number of goroutines used for per-pixel work.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// Uses reports whether estimator e is among the configured estimators.
func (c *Config) Uses(e uint) bool {
	for _, v := range c.Estimators {
		if v == e {
			return true
		}
	}
	return false
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
