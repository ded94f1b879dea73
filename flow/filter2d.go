//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  filter2d.go provides pure Go neighbourhood operators for builds without
  OpenCV: box filtering for window sums and the four neighbour average used
  by Horn-Schunck.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

// boxFilter writes to dst the sum of src over the size x size window centred
// on each pixel. The filter is applied separably with running sums so the
// cost does not depend on the window size. size must be odd.
func boxFilter(dst, src *Plane, size int) {
	rows, cols := src.Rows, src.Cols
	h := size / 2
	tmp := make([]float64, rows*cols)

	// Horizontal pass.
	for r := 0; r < rows; r++ {
		row := src.Pix[r*cols : (r+1)*cols]
		var s float64
		for k := -h; k <= h; k++ {
			s += row[reflect101(k, cols)]
		}
		out := tmp[r*cols : (r+1)*cols]
		out[0] = s
		for c := 1; c < cols; c++ {
			s += row[reflect101(c+h, cols)] - row[reflect101(c-h-1, cols)]
			out[c] = s
		}
	}

	// Vertical pass.
	for c := 0; c < cols; c++ {
		var s float64
		for k := -h; k <= h; k++ {
			s += tmp[reflect101(k, rows)*cols+c]
		}
		dst.Pix[c] = s
		for r := 1; r < rows; r++ {
			s += tmp[reflect101(r+h, rows)*cols+c] - tmp[reflect101(r-h-1, rows)*cols+c]
			dst.Pix[r*cols+c] = s
		}
	}
}

// neighbourAverage writes to dst the mean of the four edge neighbours of each
// pixel of src, splitting the rows between workers.
func neighbourAverage(dst, src *Plane, workers int) {
	parallelRows(src.Rows, workers, func(r0, r1 int) {
		neighbourAverageRows(dst, src, r0, r1)
	})
}

// neighbourAverageRows is neighbourAverage for rows [r0, r1).
func neighbourAverageRows(dst, src *Plane, r0, r1 int) {
	rows, cols := src.Rows, src.Cols
	for r := r0; r < r1; r++ {
		up := reflect101(r-1, rows) * cols
		down := reflect101(r+1, rows) * cols
		for c := 0; c < cols; c++ {
			left := reflect101(c-1, cols)
			right := reflect101(c+1, cols)
			dst.Pix[r*cols+c] = 0.25 * (src.Pix[up+c] + src.Pix[down+c] + src.Pix[r*cols+left] + src.Pix[r*cols+right])
		}
	}
}
