//go:build withcv
// +build withcv

/*
DESCRIPTION
  sobel_cv.go provides the 3x3 Sobel operator using OpenCV through gocv.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"errors"

	"gocv.io/x/gocv"
)

// sobel returns the horizontal and vertical derivatives of src using
// cv::Sobel with a 3x3 kernel scaled by sobelScale.
func sobel(src *Plane) (ix, iy *Plane, err error) {
	img := gocv.NewMatWithSize(src.Rows, src.Cols, gocv.MatTypeCV32F)
	defer img.Close()
	for r := 0; r < src.Rows; r++ {
		for c := 0; c < src.Cols; c++ {
			img.SetFloatAt(r, c, float32(src.At(r, c)))
		}
	}

	dx := gocv.NewMat()
	defer dx.Close()
	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(img, &dx, gocv.MatTypeCV32F, 1, 0, 3, sobelScale, 0, gocv.BorderReflect101)
	gocv.Sobel(img, &dy, gocv.MatTypeCV32F, 0, 1, 3, sobelScale, 0, gocv.BorderReflect101)
	if dx.Empty() || dy.Empty() {
		return nil, nil, errors.New("sobel produced empty result")
	}

	ix = NewPlane(src.Rows, src.Cols)
	iy = NewPlane(src.Rows, src.Cols)
	for r := 0; r < src.Rows; r++ {
		for c := 0; c < src.Cols; c++ {
			ix.Set(r, c, float64(dx.GetFloatAt(r, c)))
			iy.Set(r, c, float64(dy.GetFloatAt(r, c)))
		}
	}
	return ix, iy, nil
}
