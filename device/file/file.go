/*
DESCRIPTION
  file.go provides an implementation of the FrameSource interface for an
  ordered sequence of image files.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides FrameSource implementations for image files.
package file

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"

	"github.com/ausocean/opticflow/device"
	"github.com/ausocean/opticflow/flow"
	"github.com/ausocean/utils/logging"
)

// ErrNoFrames is returned by Paths when input names no image files.
var ErrNoFrames = errors.New("no input frames")

// Extensions of the image files recognised as frames.
var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// IsImage reports whether path has a recognised image extension.
func IsImage(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Paths resolves input into an ordered list of frame paths. If input is a
// directory its image files are returned in lexical order; otherwise input is
// treated as a comma separated list of files, in the given order. Either
// way, ErrNoFrames is returned if no frames are found.
func Paths(input string) ([]string, error) {
	fi, err := os.Stat(input)
	if err == nil && fi.IsDir() {
		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("could not read directory: %w", err)
		}
		var paths []string
		for _, e := range entries {
			if e.IsDir() || !IsImage(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(input, e.Name()))
		}
		if len(paths) == 0 {
			return nil, ErrNoFrames
		}
		sort.Strings(paths)
		return paths, nil
	}

	var (
		paths []string
		errs  device.MultiError
	)
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		_, err := os.Stat(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		paths = append(paths, p)
	}
	if len(errs) != 0 {
		return nil, errs
	}
	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	return paths, nil
}

// Load decodes the image at path into a grayscale frame.
func Load(path string) (*flow.Plane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode frame %s: %w", path, err)
	}
	return flow.FrameFromImage(img), nil
}

// Sequence is an implementation of the FrameSource interface for an ordered
// list of image files.
type Sequence struct {
	log    logging.Logger
	paths  []string
	next   int
	closed bool
	mu     sync.Mutex
}

// New returns a new Sequence over paths.
func New(l logging.Logger, paths []string) *Sequence {
	return &Sequence{log: l, paths: paths}
}

// Name returns the name of the device.
func (s *Sequence) Name() string {
	return "File"
}

// Len returns the number of frames in the sequence.
func (s *Sequence) Len() int { return len(s.paths) }

// Next decodes and returns the next frame of the sequence, or io.EOF once all
// frames have been returned. A frame that cannot be decoded is returned as an
// error; the following call moves on to the next file.
func (s *Sequence) Next() (*device.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.next >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.next]
	s.next++
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.log.Debug("read frame", "path", path, "rows", p.Rows, "cols", p.Cols)
	return &device.Frame{Source: path, Plane: p}, nil
}

// Close ends the sequence such that any further calls to Next return io.EOF.
func (s *Sequence) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
