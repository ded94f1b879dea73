//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  debug.go provides windows showing the input and the flow estimated by the
  motion filter.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// debugWindows is used for displaying debug information for the motion filters.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the motion filter.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{
			gocv.NewWindow(name + ": Video"),
			gocv.NewWindow(name + ": Flow"),
		},
	}
}

// show displays debug information for the motion filters.
func (d *debugWindows) show(img, flowImg image.Image, motion bool, text ...string) {
	drkRed := color.RGBA{191, 0, 0, 0}

	im, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return
	}
	defer im.Close()
	fl, err := gocv.ImageToMatRGB(flowImg)
	if err != nil {
		return
	}
	defer fl.Close()

	// Draw debugging text.
	if motion {
		text = append(text, "Motion Detected")
	}
	for i, str := range text {
		gocv.PutText(&im, str, image.Pt(32, 32*(i+1)), gocv.FontHersheyPlain, 2.0, drkRed, 2)
	}

	// Display windows.
	d.windows[0].IMShow(im)
	d.windows[1].IMShow(fl)
	d.windows[0].WaitKey(1)
}
