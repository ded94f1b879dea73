//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  sobel.go provides a pure Go 3x3 Sobel operator for builds without OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

// sobel returns the horizontal and vertical derivatives of src using the
// separable 3x3 Sobel kernel scaled by sobelScale.
func sobel(src *Plane) (ix, iy *Plane, err error) {
	rows, cols := src.Rows, src.Cols
	diff := make([]float64, rows*cols)   // [-1 0 1] along rows.
	smooth := make([]float64, rows*cols) // [1 2 1] along rows.
	for r := 0; r < rows; r++ {
		row := src.Pix[r*cols : (r+1)*cols]
		for c := 0; c < cols; c++ {
			left := row[reflect101(c-1, cols)]
			right := row[reflect101(c+1, cols)]
			diff[r*cols+c] = right - left
			smooth[r*cols+c] = left + 2*row[c] + right
		}
	}

	ix = NewPlane(rows, cols)
	iy = NewPlane(rows, cols)
	for r := 0; r < rows; r++ {
		up := reflect101(r-1, rows) * cols
		down := reflect101(r+1, rows) * cols
		for c := 0; c < cols; c++ {
			i := r*cols + c
			ix.Pix[i] = sobelScale * (diff[up+c] + 2*diff[i] + diff[down+c])
			iy.Pix[i] = sobelScale * (smooth[down+c] - smooth[up+c])
		}
	}
	return ix, iy, nil
}
