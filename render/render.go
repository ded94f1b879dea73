/*
DESCRIPTION
  render.go provides visualisations of flow fields and error maps.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package render turns flow fields into images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/opticflow/flow"
)

// UnknownFlow is the component magnitude at or above which a vector is
// treated as unknown when rendering. It follows the .flo convention.
const UnknownFlow = 1e9

// Flow returns a colour wheel rendering of f. Hue gives the direction of the
// vector and saturation its magnitude relative to the largest known magnitude
// in f. Unknown and invalid vectors are black.
func Flow(f *flow.Field) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Cols, f.Rows))

	known := func(r, c int) bool {
		u, v := f.At(r, c)
		return f.IsValid(r, c) && !math.IsNaN(u) && !math.IsNaN(v) &&
			math.Abs(u) < UnknownFlow && math.Abs(v) < UnknownFlow
	}

	var max float64
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			if known(r, c) {
				max = math.Max(max, math.Hypot(f.At(r, c)))
			}
		}
	}

	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			if !known(r, c) {
				img.SetRGBA(c, r, color.RGBA{A: 0xff})
				continue
			}
			u, v := f.At(r, c)
			var s float64
			if max > 0 {
				s = math.Hypot(u, v) / max
			}
			h := math.Atan2(v, u) * 180 / math.Pi
			if h < 0 {
				h += 360
			}
			R, G, B := colorful.Hsv(h, s, 1).RGB255()
			img.SetRGBA(c, r, color.RGBA{R: R, G: G, B: B, A: 0xff})
		}
	}
	return img
}

// Magnitude returns the magnitude of f as a grayscale image, min-max
// normalised to the full 8 bit range. Non-finite magnitudes are black.
func Magnitude(f *flow.Field) *image.Gray {
	m := f.Magnitude()
	img := image.NewGray(image.Rect(0, 0, m.Cols, m.Rows))

	finite := make([]float64, 0, len(m.Pix))
	for _, v := range m.Pix {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return img
	}
	lo, hi := floats.Min(finite), floats.Max(finite)
	if hi == lo {
		return img
	}

	for i, v := range m.Pix {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		img.Pix[i] = uint8(math.Round(255 * (v - lo) / (hi - lo)))
	}
	return img
}

// WritePNG encodes img as a PNG file at path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return f.Close()
}

// grid adapts a plane to plotter.GridXYZ with column c at x = c and row r at
// y = r.
type grid struct{ p *flow.Plane }

func (g grid) Dims() (c, r int) { return g.p.Cols, g.p.Rows }
func (g grid) Z(c, r int) float64 { return g.p.At(r, c) }
func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }

// ErrorMap returns a heat map plot of a per-pixel error plane, such as the
// angular error map. NaN entries are left blank. Row 0 is drawn at the top.
func ErrorMap(errs *flow.Plane, title string) (*plot.Plot, error) {
	if errs.Rows == 0 || errs.Cols == 0 {
		return nil, fmt.Errorf("empty error map")
	}

	finite := make([]float64, 0, len(errs.Pix))
	for _, v := range errs.Pix {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	lo, hi := 0.0, 1.0
	if len(finite) != 0 {
		lo, hi = floats.Min(finite), floats.Max(finite)
		if hi == lo {
			hi = lo + 1
		}
	}

	h := plotter.NewHeatMap(grid{errs}, palette.Heat(16, 1))
	h.Min, h.Max = lo, hi
	h.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(h)
	return p, nil
}

// SaveErrorMap renders an error map to path. The image format is chosen
// from the path extension.
func SaveErrorMap(path string, errs *flow.Plane, title string) error {
	p, err := ErrorMap(errs, title)
	if err != nil {
		return err
	}
	err = p.Save(8*vg.Inch, 8*vg.Inch*vg.Length(errs.Rows)/vg.Length(errs.Cols), path)
	if err != nil {
		return fmt.Errorf("could not save error map: %w", err)
	}
	return nil
}
