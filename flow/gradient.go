/*
DESCRIPTION
  gradient.go computes the spatial gradients of the previous frame and the
  temporal difference between two frames, the inputs to both estimators
  under the linearised brightness constancy constraint Ix*u + Iy*v + It = 0.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import "fmt"

// sobelScale normalises the 3x3 Sobel kernel so that gradients are in
// intensity per pixel and estimated flow is in pixels.
const sobelScale = 1.0 / 8

// Gradients holds the derivatives for one frame pair.
type Gradients struct {
	Ix, Iy *Plane // Spatial derivatives of the previous frame.
	It     *Plane // Current frame minus previous frame.
}

// NewGradients returns the gradients for the frame pair prev, curr.
// The spatial derivatives come from prev only.
func NewGradients(prev, curr *Plane) (*Gradients, error) {
	err := checkShape("gradients", prev.Shape(), curr.Shape())
	if err != nil {
		return nil, err
	}

	ix, iy, err := sobel(prev)
	if err != nil {
		return nil, fmt.Errorf("could not compute spatial gradients: %w", err)
	}

	it := NewPlane(prev.Rows, prev.Cols)
	for i := range it.Pix {
		it.Pix[i] = curr.Pix[i] - prev.Pix[i]
	}
	return &Gradients{Ix: ix, Iy: iy, It: it}, nil
}

// Shape returns the dimensions of the gradient planes.
func (g *Gradients) Shape() Shape { return g.Ix.Shape() }
