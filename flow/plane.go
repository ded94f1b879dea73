/*
DESCRIPTION
  plane.go provides the dense row-major arrays used by the flow estimators:
  Plane for scalar data such as frames, gradients and error maps, and Field
  for 2D flow vectors.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flow provides dense optical flow estimation between two grayscale
// frames using the Lucas-Kanade and Horn-Schunck methods, and evaluation of
// estimated flow against ground truth using the average angular error.
package flow

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrShapeMismatch is returned when arrays of differing dimensions are
// combined in one computation.
var ErrShapeMismatch = errors.New("shape mismatch")

// Shape holds the dimensions of a dense array.
type Shape struct{ Rows, Cols int }

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }

// ShapeError describes a shape mismatch with the shapes involved.
type ShapeError struct {
	Op   string
	Want Shape
	Got  Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %v: want %v, got %v", e.Op, ErrShapeMismatch, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }

// checkShape returns a *ShapeError if got differs from want.
func checkShape(op string, want, got Shape) error {
	if want != got {
		return &ShapeError{Op: op, Want: want, Got: got}
	}
	return nil
}

// Plane is a rows x cols array of scalars stored contiguously in row-major
// order.
type Plane struct {
	Rows, Cols int
	Pix        []float64
}

// NewPlane returns a zeroed rows x cols plane.
func NewPlane(rows, cols int) *Plane {
	return &Plane{Rows: rows, Cols: cols, Pix: make([]float64, rows*cols)}
}

// Shape returns the dimensions of p.
func (p *Plane) Shape() Shape { return Shape{p.Rows, p.Cols} }

// At returns the value at row r, column c.
func (p *Plane) At(r, c int) float64 { return p.Pix[r*p.Cols+c] }

// Set sets the value at row r, column c.
func (p *Plane) Set(r, c int, v float64) { p.Pix[r*p.Cols+c] = v }

// NewFrame returns a frame built from 8 bit intensities in row-major order,
// normalised to [0,1].
func NewFrame(rows, cols int, b []byte) (*Plane, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", rows, cols)
	}
	if len(b) != rows*cols {
		return nil, fmt.Errorf("frame data length %d does not match %dx%d", len(b), rows, cols)
	}
	p := NewPlane(rows, cols)
	for i, v := range b {
		p.Pix[i] = float64(v) / 255
	}
	return p, nil
}

// FrameFromImage converts img to grayscale and returns it as a frame
// normalised to [0,1].
func FrameFromImage(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dy(), b.Dx())
	if g, ok := img.(*image.Gray); ok {
		for r := 0; r < p.Rows; r++ {
			row := g.Pix[r*g.Stride : r*g.Stride+p.Cols]
			for c, v := range row {
				p.Pix[r*p.Cols+c] = float64(v) / 255
			}
		}
		return p
	}
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+c, b.Min.Y+r)).(color.Gray)
			p.Pix[r*p.Cols+c] = float64(g.Y) / 255
		}
	}
	return p
}

// Field is a rows x cols array of flow vectors (u, v). U is the horizontal
// (column) displacement and V the vertical (row) displacement in pixels.
// Vectors are stored interleaved in row-major order, as in the .flo format.
type Field struct {
	Rows, Cols int
	UV         []float64

	// Valid flags pixels whose estimate is trustworthy. A nil Valid means
	// every pixel is valid.
	Valid []bool
}

// NewField returns a zeroed rows x cols field with no validity mask.
func NewField(rows, cols int) *Field {
	return &Field{Rows: rows, Cols: cols, UV: make([]float64, 2*rows*cols)}
}

// Shape returns the dimensions of f.
func (f *Field) Shape() Shape { return Shape{f.Rows, f.Cols} }

// At returns the flow vector at row r, column c.
func (f *Field) At(r, c int) (u, v float64) {
	i := 2 * (r*f.Cols + c)
	return f.UV[i], f.UV[i+1]
}

// Set sets the flow vector at row r, column c.
func (f *Field) Set(r, c int, u, v float64) {
	i := 2 * (r*f.Cols + c)
	f.UV[i], f.UV[i+1] = u, v
}

// IsValid reports whether the estimate at row r, column c is valid.
func (f *Field) IsValid(r, c int) bool {
	return f.Valid == nil || f.Valid[r*f.Cols+c]
}

// Invalid returns the number of pixels flagged invalid.
func (f *Field) Invalid() int {
	var n int
	for _, ok := range f.Valid {
		if !ok {
			n++
		}
	}
	return n
}

// Magnitude returns the per pixel flow magnitude.
func (f *Field) Magnitude() *Plane {
	p := NewPlane(f.Rows, f.Cols)
	for i := range p.Pix {
		p.Pix[i] = math.Hypot(f.UV[2*i], f.UV[2*i+1])
	}
	return p
}
