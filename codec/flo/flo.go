/*
NAME
  flo.go

DESCRIPTION
  flo.go provides decoding and encoding of the Middlebury .flo optical flow
  format used for ground truth.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flo reads and writes .flo optical flow files.
//
// The format is little-endian:
//
//	offset  type       meaning
//	0       float32    magic, 202021.25
//	4       int32      width W
//	8       int32      height H
//	12      float32s   W*H*2 values, row-major, (u, v) interleaved
package flo

import (
	"bufio"
	"encoding/binary"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/opticflow/flow"
)

// Magic is the first value of every .flo file. Read as float32 it is
// 202021.25; read as bytes it is "PIEH".
const Magic float32 = 202021.25

const (
	headerSize = 12
	valueSize  = 4       // Bytes per float32.
	maxDim     = 1 << 16 // Largest accepted width or height.
	chunkSize  = 1 << 16 // Bytes read at a time; a multiple of valueSize.
)

// Errors returned by Decode and Load.
var (
	ErrFileNotFound  = errors.New("flo file not found")
	ErrInvalidFormat = errors.New("invalid flo format")

	// ErrTruncatedData is returned when the payload holds fewer values than
	// the header declares. It also matches ErrInvalidFormat under errors.Is.
	ErrTruncatedData error = truncatedError{}
)

type truncatedError struct{}

func (truncatedError) Error() string { return "truncated flo data" }

func (truncatedError) Is(target error) bool { return target == ErrInvalidFormat }

// Load decodes the .flo file at path.
func Load(path string) (*flow.Field, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && fi.IsDir()) {
		return nil, errors.Wrapf(ErrFileNotFound, "could not load %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not stat %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	field, err := Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return field, nil
}

// Decode reads one .flo encoded field from r.
func Decode(r io.Reader) (*flow.Field, error) {
	var hdr [headerSize]byte
	n, err := io.ReadFull(r, hdr[:])
	if n < valueSize {
		return nil, errors.Wrap(ErrInvalidFormat, "missing magic number")
	}
	magic := math.Float32frombits(binary.LittleEndian.Uint32(hdr[0:4]))
	switch {
	case magic != Magic:
		return nil, errors.Wrapf(ErrInvalidFormat, "bad magic number %v", magic)
	case err != nil:
		return nil, errors.Wrap(ErrTruncatedData, "incomplete header")
	}

	w := int(int32(binary.LittleEndian.Uint32(hdr[4:8])))
	h := int(int32(binary.LittleEndian.Uint32(hdr[8:12])))
	if w <= 0 || h <= 0 || w > maxDim || h > maxDim {
		return nil, errors.Wrapf(ErrInvalidFormat, "bad dimensions %dx%d", w, h)
	}

	// Read in chunks so that a lying header cannot cause a large allocation.
	want := 2 * w * h
	uv := make([]float64, 0, min(want, chunkSize/valueSize))
	buf := make([]byte, chunkSize)
	for len(uv) < want {
		b := buf[:min(len(buf), (want-len(uv))*valueSize)]
		n, err := io.ReadFull(r, b)
		for i := 0; i+valueSize <= n; i += valueSize {
			uv = append(uv, float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i:]))))
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrTruncatedData, "got %d of %d values", len(uv), want)
		}
		if err != nil {
			return nil, errors.Wrap(err, "could not read flow values")
		}
	}

	return &flow.Field{Rows: h, Cols: w, UV: uv}, nil
}

// Encode writes f to w in .flo format. Values are stored as float32.
func Encode(w io.Writer, f *flow.Field) error {
	if f.Rows <= 0 || f.Cols <= 0 || f.Rows > maxDim || f.Cols > maxDim {
		return errors.Errorf("cannot encode field of shape %v", f.Shape())
	}
	if len(f.UV) != 2*f.Rows*f.Cols {
		return errors.Errorf("field of shape %v holds %d values", f.Shape(), len(f.UV))
	}

	bw := bufio.NewWriter(w)
	var b [valueSize]byte
	put := func(v uint32) error {
		binary.LittleEndian.PutUint32(b[:], v)
		_, err := bw.Write(b[:])
		return err
	}

	for _, v := range []uint32{math.Float32bits(Magic), uint32(int32(f.Cols)), uint32(int32(f.Rows))} {
		err := put(v)
		if err != nil {
			return errors.Wrap(err, "could not write header")
		}
	}
	for _, v := range f.UV {
		err := put(math.Float32bits(float32(v)))
		if err != nil {
			return errors.Wrap(err, "could not write flow values")
		}
	}
	return errors.Wrap(bw.Flush(), "could not flush flow values")
}

// Save writes f to a .flo file at path, replacing any existing file.
func Save(path string, f *flow.Field) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	err = Encode(file, f)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "could not encode %s", path)
	}
	return errors.Wrapf(file.Close(), "could not close %s", path)
}
