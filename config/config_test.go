/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate and Update).

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
	"math"
	"runtime"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:            dl,
		Alpha:             defaultAlpha,
		EigenThreshold:    defaultEigenThreshold,
		Epsilon:           defaultEpsilon,
		Estimators:        []uint{EstimatorLucasKanade, EstimatorHornSchunck},
		MaxIters:          defaultMaxIters,
		MotionPixels:      defaultMotionPixels,
		MotionThreshold:   defaultMotionThreshold,
		UnknownFlowThresh: defaultUnknownFlowThresh,
		WindowSize:        defaultWindowSize,
		Workers:           uint(runtime.NumCPU()),
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateEvenWindow(t *testing.T) {
	tests := []struct {
		in   uint
		want uint
	}{
		{in: 0, want: defaultWindowSize},
		{in: 1, want: 1},
		{in: 4, want: defaultWindowSize},
		{in: 15, want: 15},
	}

	for i, test := range tests {
		c := Config{Logger: &dumbLogger{}, WindowSize: test.in}
		c.Validate()
		if c.WindowSize != test.want {
			t.Errorf("did not get expected window size for test %d\ngot: %d\nwant: %d", i, c.WindowSize, test.want)
		}
	}
}

func TestValidateNonFinite(t *testing.T) {
	tests := []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "0", "-1"}

	for _, in := range tests {
		c := Config{Logger: &dumbLogger{}}
		c.Update(map[string]string{
			KeyAlpha:             in,
			KeyEigenThreshold:    in,
			KeyEpsilon:           in,
			KeyMotionThreshold:   in,
			KeyUnknownFlowThresh: in,
		})
		err := c.Validate()
		if err != nil {
			t.Fatalf("did not expect error for %q: %v", in, err)
		}

		got := []float64{c.Alpha, c.EigenThreshold, c.Epsilon, c.MotionThreshold, c.UnknownFlowThresh}
		want := []float64{defaultAlpha, defaultEigenThreshold, defaultEpsilon, defaultMotionThreshold, defaultUnknownFlowThresh}
		if !cmp.Equal(got, want) {
			t.Errorf("did not get defaults for %q\ngot: %v\nwant: %v", in, got, want)
		}
	}
}

func TestPositive(t *testing.T) {
	tests := []struct {
		in   float64
		want bool
	}{
		{in: 1, want: true},
		{in: math.SmallestNonzeroFloat64, want: true},
		{in: math.MaxFloat64, want: true},
		{in: 0, want: false},
		{in: -1, want: false},
		{in: math.NaN(), want: false},
		{in: math.Inf(1), want: false},
		{in: math.Inf(-1), want: false},
	}

	for i, test := range tests {
		if got := Positive(test.in); got != test.want {
			t.Errorf("unexpected result for test %d (%v)\ngot: %v\nwant: %v", i, test.in, got, test.want)
		}
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"Alpha":             "0.5",
		"EigenThreshold":    "0.02",
		"Epsilon":           "0.001",
		"Estimators":        "HornSchunck",
		"GroundTruthPath":   "/gt",
		"InputPath":         "/frames",
		"logging":           "Debug",
		"MaxIters":          "50",
		"MotionPixels":      "100",
		"MotionThreshold":   "1.5",
		"OutputPath":        "/out",
		"Suppress":          "true",
		"UnknownFlowThresh": "500",
		"Watch":             "true",
		"WindowSize":        "15",
		"Workers":           "3",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:            dl,
		Alpha:             0.5,
		EigenThreshold:    0.02,
		Epsilon:           0.001,
		Estimators:        []uint{EstimatorHornSchunck},
		GroundTruthPath:   "/gt",
		InputPath:         "/frames",
		LogLevel:          logging.Debug,
		MaxIters:          50,
		MotionPixels:      100,
		MotionThreshold:   1.5,
		OutputPath:        "/out",
		Suppress:          true,
		UnknownFlowThresh: 500,
		Watch:             true,
		WindowSize:        15,
		Workers:           3,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestUses(t *testing.T) {
	c := Config{Logger: &dumbLogger{}}
	c.Update(map[string]string{KeyEstimators: "LucasKanade, Bogus"})
	if !c.Uses(EstimatorLucasKanade) {
		t.Error("expected LucasKanade to be used")
	}
	if c.Uses(EstimatorHornSchunck) {
		t.Error("did not expect HornSchunck to be used")
	}
}
