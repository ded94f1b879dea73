/*
DESCRIPTION
  motion.go provides motion detection over MJPEG input using the optical flow
  motion filter.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ausocean/opticflow/codec/mjpeg"
	"github.com/ausocean/opticflow/config"
	"github.com/ausocean/opticflow/filter"
	"github.com/ausocean/utils/logging"
)

// motionFile is the name of the MJPEG file moving frames are written to.
const motionFile = "motion.mjpeg"

// isMJPEG reports whether path names an MJPEG stream.
func isMJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mjpeg", ".mjpg":
		return true
	}
	return false
}

// counter is an io.WriteCloser counting the writes passed to it.
type counter struct {
	dst io.WriteCloser
	n   int
}

func (c *counter) Write(p []byte) (int, error) {
	c.n++
	return c.dst.Write(p)
}

func (c *counter) Close() error { return c.dst.Close() }

// detectMotion passes the frames of the MJPEG stream at c.InputPath through
// the flow motion filter. Frames with motion are written to motionFile in
// c.OutputPath, if set. It returns the number of frames with motion.
func detectMotion(l logging.Logger, c config.Config) (int, error) {
	in, err := os.Open(c.InputPath)
	if err != nil {
		return 0, fmt.Errorf("could not open input: %w", err)
	}
	defer in.Close()

	// Without an output path moving frames are only counted.
	var dst io.WriteCloser = filter.NewNoOp(io.Discard)
	if c.OutputPath != "" {
		err = os.MkdirAll(c.OutputPath, 0o755)
		if err != nil {
			return 0, fmt.Errorf("could not create output directory: %w", err)
		}
		dst, err = os.Create(filepath.Join(c.OutputPath, motionFile))
		if err != nil {
			return 0, fmt.Errorf("could not create output: %w", err)
		}
	}
	out := &counter{dst: dst}

	var f filter.Filter = filter.NewFlow(out, c)
	err = mjpeg.Lex(f, in, l)
	if err != nil {
		f.Close()
		out.Close()
		return out.n, fmt.Errorf("could not lex input: %w", err)
	}

	err = f.Close()
	if err != nil {
		out.Close()
		return out.n, fmt.Errorf("could not close filter: %w", err)
	}
	return out.n, out.Close()
}
