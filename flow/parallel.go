/*
DESCRIPTION
  parallel.go provides border reflection and the row band parallelism
  shared by the estimators. Borders are handled by reflection about the edge
  pixel (e.g. gfedcb|abcdefgh|gfedcba), matching OpenCV's default border.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import "sync"

// reflect101 maps index i onto [0, n) by reflecting about the first and last
// elements without repeating them.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// parallelRows splits [0, rows) into at most workers contiguous bands and
// calls fn for each band in its own goroutine, returning once all are done.
func parallelRows(rows, workers int, fn func(r0, r1 int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		fn(0, rows)
		return
	}

	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for r0 := 0; r0 < rows; r0 += band {
		r1 := r0 + band
		if r1 > rows {
			r1 = rows
		}
		wg.Add(1)
		go func(r0, r1 int) {
			defer wg.Done()
			fn(r0, r1)
		}(r0, r1)
	}
	wg.Wait()
}
