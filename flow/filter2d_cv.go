//go:build withcv
// +build withcv

/*
DESCRIPTION
  filter2d_cv.go provides the neighbourhood operators using OpenCV through
  gocv: box filtering for window sums and the four neighbour average used by
  Horn-Schunck.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"image"

	"gocv.io/x/gocv"
)

// toMat copies p into a new single channel float64 Mat.
func toMat(p *Plane) gocv.Mat {
	m := gocv.NewMatWithSize(p.Rows, p.Cols, gocv.MatTypeCV64F)
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			m.SetDoubleAt(r, c, p.At(r, c))
		}
	}
	return m
}

// filter2D correlates src with kernel using cv::filter2D and a reflect-101
// border, writing the result to dst.
func filter2D(dst, src *Plane, kernel gocv.Mat) {
	in := toMat(src)
	defer in.Close()
	out := gocv.NewMat()
	defer out.Close()

	gocv.Filter2D(in, &out, gocv.MatTypeCV64F, kernel, image.Pt(-1, -1), 0, gocv.BorderReflect101)
	for r := 0; r < dst.Rows; r++ {
		for c := 0; c < dst.Cols; c++ {
			dst.Set(r, c, out.GetDoubleAt(r, c))
		}
	}
}

// boxFilter writes to dst the sum of src over the size x size window centred
// on each pixel. size must be odd.
func boxFilter(dst, src *Plane, size int) {
	ones := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1, 0, 0, 0), size, size, gocv.MatTypeCV64F)
	defer ones.Close()
	filter2D(dst, src, ones)
}

// neighbourAverage writes to dst the mean of the four edge neighbours of each
// pixel of src. OpenCV parallelises internally so workers is unused.
func neighbourAverage(dst, src *Plane, workers int) {
	k := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 3, 3, gocv.MatTypeCV64F)
	defer k.Close()
	for _, p := range []image.Point{{1, 0}, {0, 1}, {2, 1}, {1, 2}} {
		k.SetDoubleAt(p.Y, p.X, 0.25)
	}
	filter2D(dst, src, k)
}
