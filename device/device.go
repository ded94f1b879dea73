/*
DESCRIPTION
  device.go provides FrameSource, an interface that describes a source of
  grayscale frames for optical flow estimation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides an interface and implementations for sources from
// which an ordered sequence of frames can be obtained.
package device

import (
	"fmt"
	"io"
	"sync"

	"github.com/ausocean/opticflow/flow"
)

// Frame is a single frame obtained from a FrameSource.
type Frame struct {
	// Source identifies where the frame came from, e.g. its file path. It is
	// used to locate matching ground truth.
	Source string

	*flow.Plane
}

// FrameSource describes a source of frames, in order. Next returns io.EOF
// once the source is exhausted or has been closed.
type FrameSource interface {
	// Name returns the name of the FrameSource.
	Name() string

	// Next returns the next frame. It may block until one is available.
	Next() (*Frame, error)

	// Close releases any resources held by the FrameSource. Next calls after
	// Close return io.EOF.
	Close() error
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multiple errors during validation of FrameSource inputs.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// Chain is a FrameSource that returns the frames of each of its sources in
// turn, moving to the next source when one returns io.EOF.
type Chain struct {
	mu     sync.Mutex
	srcs   []FrameSource
	all    []FrameSource
	closed bool
}

// NewChain returns a Chain over srcs.
func NewChain(srcs ...FrameSource) *Chain {
	return &Chain{srcs: srcs, all: srcs}
}

// Name returns the name of Chain i.e. "Chain".
func (c *Chain) Name() string { return "Chain" }

// Next returns the next frame from the current source.
func (c *Chain) Next() (*Frame, error) {
	for {
		c.mu.Lock()
		if c.closed || len(c.srcs) == 0 {
			c.mu.Unlock()
			return nil, io.EOF
		}
		s := c.srcs[0]
		c.mu.Unlock()

		f, err := s.Next()
		if err != io.EOF {
			return f, err
		}

		c.mu.Lock()
		if len(c.srcs) != 0 && c.srcs[0] == s {
			c.srcs = c.srcs[1:]
		}
		c.mu.Unlock()
	}
}

// Close closes every source of the chain.
func (c *Chain) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	var errs MultiError
	for _, s := range c.all {
		err := s.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("could not close %s: %w", s.Name(), err))
		}
	}
	if len(errs) != 0 {
		return errs
	}
	return nil
}
