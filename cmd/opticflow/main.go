/*
DESCRIPTION
  opticflow estimates dense optical flow between consecutive frames of an
  image sequence, evaluates it against ground truth when available and writes
  visualisations of the results.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// opticflow is a command line driver for the flow package.
//
// Usage:
//
//	opticflow -in frames/ -gt truth/ -out results/ [Key=Value ...]
//	opticflow -in stream.mjpeg -out results/ [Key=Value ...]
//
// An MJPEG input is run through the optical flow motion filter and the frames
// with motion are written to results/motion.mjpeg.
//
// Trailing Key=Value arguments set any of the configuration variables, e.g.
// WindowSize=15 Estimators=HornSchunck logging=Debug.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/device"
	"github.com/ausocean/opticflow/device/file"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "opticflow.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

// Misc constants.
const (
	profilePath = "opticflow.prof"
	pkg         = "opticflow: "
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		inPath      = flag.String("in", "", "frame directory or comma separated list of frame files")
		gtPath      = flag.String("gt", "", "ground truth directory, or a single .flo file")
		outPath     = flag.String("out", "", "directory to write flow files and images to")
		watch       = flag.Bool("watch", false, "watch the input directory for new frames")
		logFile     = flag.String("log", logPath, "path of the log file")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logFile,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()

	// Create logger that we call methods on to log, which in turn writes to the
	// lumberjack logger and stderr.
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting opticflow", "version", version)

	// If opticflow has been built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	vars, err := parseVars(flag.Args())
	if err != nil {
		log.Fatal(pkg+"could not parse variables", "error", err.Error())
	}

	// Flags override any equivalent variables.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			vars[config.KeyInputPath] = *inPath
		case "gt":
			vars[config.KeyGroundTruthPath] = *gtPath
		case "out":
			vars[config.KeyOutputPath] = *outPath
		case "watch":
			vars[config.KeyWatch] = fmt.Sprint(*watch)
		}
	})

	cfg := config.Config{Logger: log, LogLevel: logVerbosity, Suppress: logSuppress}
	cfg.Update(vars)
	err = cfg.Validate()
	if err != nil {
		log.Fatal(pkg+"bad config", "error", err.Error())
	}
	applyLogConfig(log, cfg)

	if cfg.InputPath == "" {
		log.Fatal(pkg + "no input, use -in or InputPath")
	}

	if isMJPEG(cfg.InputPath) {
		n, err := detectMotion(log, cfg)
		if err != nil {
			log.Fatal(pkg+"motion detection failed", "error", err.Error())
		}
		log.Info("finished", "moving frames", n)
		return
	}

	src, err := newSource(log, cfg)
	if err != nil {
		log.Fatal(pkg+"could not create frame source", "error", err.Error())
	}

	// Close the source on interrupt so that the main loop ends cleanly.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Info("interrupted, stopping")
		src.Close()
	}()

	r, err := newRunner(log, cfg)
	if err != nil {
		log.Fatal(pkg+"could not initialise", "error", err.Error())
	}

	log.Debug("beginning main loop")
	r.run(src)
	src.Close()
	log.Info("finished", "pairs", r.pairs, "failed", r.failed)
}

// newSource returns the FrameSource described by c. With c.Watch set, the
// frames already in the input directory are followed by those that appear
// in it later.
func newSource(l logging.Logger, c config.Config) (device.FrameSource, error) {
	if !c.Watch {
		paths, err := file.Paths(c.InputPath)
		if err != nil {
			return nil, err
		}
		s := file.New(l, paths)
		l.Info("reading frames", "count", s.Len())
		return s, nil
	}

	// Start watching before listing so no frame can be missed in between.
	w, err := file.NewWatcher(l, c.InputPath)
	if err != nil {
		return nil, err
	}
	// A watched directory may start out empty.
	paths, err := file.Paths(c.InputPath)
	if err != nil && !errors.Is(err, file.ErrNoFrames) {
		w.Close()
		return nil, err
	}
	w.Seen(paths...)
	s := file.New(l, paths)
	l.Info("reading frames then watching for more", "count", s.Len(), "dir", c.InputPath)
	return device.NewChain(s, w), nil
}

// applyLogConfig sets the level and repeated message suppression of l from c.
func applyLogConfig(l *logging.JSONLogger, c config.Config) {
	// SetSuppress rebuilds the logger at its initial level, so it goes first.
	l.SetSuppress(c.Suppress)
	l.SetLevel(c.LogLevel)
}

// parseVars parses Key=Value arguments into a variable map.
func parseVars(args []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected Key=Value, got %q", a)
		}
		vars[k] = v
	}
	return vars, nil
}

// profile opens a file to hold CPU profiling metrics and then starts the
// CPU profiler.
func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
