/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAlpha             = "Alpha"
	KeyEigenThreshold    = "EigenThreshold"
	KeyEpsilon           = "Epsilon"
	KeyEstimators        = "Estimators"
	KeyGroundTruthPath   = "GroundTruthPath"
	KeyInputPath         = "InputPath"
	KeyLogging           = "logging"
	KeyMaxIters          = "MaxIters"
	KeyMotionPixels      = "MotionPixels"
	KeyMotionThreshold   = "MotionThreshold"
	KeyOutputPath        = "OutputPath"
	KeySuppress          = "Suppress"
	KeyUnknownFlowThresh = "UnknownFlowThresh"
	KeyWatch             = "Watch"
	KeyWindowSize        = "WindowSize"
	KeyWorkers           = "Workers"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultVerbosity = logging.Error

	// Lucas-Kanade defaults.
	defaultWindowSize     = 25
	defaultEigenThreshold = 0.01

	// Horn-Schunck defaults.
	defaultEpsilon  = 0.002
	defaultMaxIters = 200
	defaultAlpha    = 1.0

	// Evaluation defaults.
	defaultUnknownFlowThresh = 1000

	// Motion filter defaults.
	defaultMotionThreshold = 0.5
	defaultMotionPixels    = 1000
)

// Variables describes the variables that can be used for opticflow control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyAlpha,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Alpha = parseFloat(KeyAlpha, v, c) },
		Validate: func(c *Config) {
			if !Positive(c.Alpha) {
				c.LogInvalidField(KeyAlpha, defaultAlpha)
				c.Alpha = defaultAlpha
			}
		},
	},
	{
		Name:   KeyEigenThreshold,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.EigenThreshold = parseFloat(KeyEigenThreshold, v, c) },
		Validate: func(c *Config) {
			if !Positive(c.EigenThreshold) {
				c.LogInvalidField(KeyEigenThreshold, defaultEigenThreshold)
				c.EigenThreshold = defaultEigenThreshold
			}
		},
	},
	{
		Name:   KeyEpsilon,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Epsilon = parseFloat(KeyEpsilon, v, c) },
		Validate: func(c *Config) {
			if !Positive(c.Epsilon) {
				c.LogInvalidField(KeyEpsilon, defaultEpsilon)
				c.Epsilon = defaultEpsilon
			}
		},
	},
	{
		Name: KeyEstimators,
		Type: "enums:LucasKanade,HornSchunck",
		Update: func(c *Config, v string) {
			estimators := strings.Split(strings.Replace(v, " ", "", -1), ",")
			m := map[string]uint{"LucasKanade": EstimatorLucasKanade, "HornSchunck": EstimatorHornSchunck}
			c.Estimators = make([]uint, 0, len(estimators))
			for _, e := range estimators {
				_v, ok := m[e]
				if !ok {
					c.Logger.Warning("invalid Estimators param", "value", e)
					continue
				}
				c.Estimators = append(c.Estimators, _v)
			}
		},
		Validate: func(c *Config) {
			if len(c.Estimators) == 0 {
				c.LogInvalidField(KeyEstimators, "LucasKanade,HornSchunck")
				c.Estimators = []uint{EstimatorLucasKanade, EstimatorHornSchunck}
			}
		},
	},
	{
		Name:   KeyGroundTruthPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.GroundTruthPath = v },
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyMaxIters,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MaxIters = parseUint(KeyMaxIters, v, c) },
		Validate: func(c *Config) {
			c.MaxIters = lessThanOrEqual(KeyMaxIters, c.MaxIters, 0, c, defaultMaxIters)
		},
	},
	{
		Name:   KeyMotionPixels,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionPixels = parseUint(KeyMotionPixels, v, c) },
		Validate: func(c *Config) {
			c.MotionPixels = lessThanOrEqual(KeyMotionPixels, c.MotionPixels, 0, c, defaultMotionPixels)
		},
	},
	{
		Name:   KeyMotionThreshold,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MotionThreshold = parseFloat(KeyMotionThreshold, v, c) },
		Validate: func(c *Config) {
			if !Positive(c.MotionThreshold) {
				c.LogInvalidField(KeyMotionThreshold, defaultMotionThreshold)
				c.MotionThreshold = defaultMotionThreshold
			}
		},
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
	{
		Name:   KeyUnknownFlowThresh,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.UnknownFlowThresh = parseFloat(KeyUnknownFlowThresh, v, c) },
		Validate: func(c *Config) {
			if !Positive(c.UnknownFlowThresh) {
				c.LogInvalidField(KeyUnknownFlowThresh, defaultUnknownFlowThresh)
				c.UnknownFlowThresh = defaultUnknownFlowThresh
			}
		},
	},
	{
		Name:   KeyWatch,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Watch = parseBool(KeyWatch, v, c) },
	},
	{
		Name:   KeyWindowSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.WindowSize = parseUint(KeyWindowSize, v, c) },
		Validate: func(c *Config) {
			if c.WindowSize == 0 || c.WindowSize%2 == 0 {
				c.LogInvalidField(KeyWindowSize, defaultWindowSize)
				c.WindowSize = defaultWindowSize
			}
		},
	},
	{
		Name:   KeyWorkers,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Workers = parseUint(KeyWorkers, v, c) },
		Validate: func(c *Config) {
			c.Workers = lessThanOrEqual(KeyWorkers, c.Workers, 0, c, uint(runtime.NumCPU()))
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

// Positive reports whether v is a finite number greater than zero.
func Positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
