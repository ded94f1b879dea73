/*
DESCRIPTION
  angular_test.go tests the flow error metrics.

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
	"math"
	"math/rand"
	"testing"
)

// fieldOf returns a 1 x n field holding the given vectors.
func fieldOf(uv ...float64) *Field {
	return &Field{Rows: 1, Cols: len(uv) / 2, UV: uv}
}

func TestAngularErrorIdentical(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for _, scale := range []float64{0, 1e-3, 1, 50, 1e6} {
		f := NewField(7, 9)
		for i := range f.UV {
			f.UV[i] = scale * (2*rnd.Float64() - 1)
		}

		aae, m, err := AngularError(f, f)
		if err != nil {
			t.Fatalf("did not expect error: %v", err)
		}
		if math.IsNaN(aae) || aae > 1e-6 {
			t.Errorf("scale %v: got AAE %v for identical fields, want 0", scale, aae)
		}
		for i, a := range m.Pix {
			if math.IsNaN(a) {
				t.Fatalf("scale %v: NaN error at pixel %d", scale, i)
			}
		}
	}
}

func TestAngularErrorValues(t *testing.T) {
	tests := []struct {
		name    string
		est, gt *Field
		want    float64
	}{
		{name: "zero against unit", est: fieldOf(1, 0), gt: fieldOf(0, 0), want: math.Pi / 4},
		{name: "unit against zero", est: fieldOf(0, 0), gt: fieldOf(1, 0), want: math.Pi / 4},
		{name: "opposite", est: fieldOf(1, 1), gt: fieldOf(-1, -1), want: math.Acos(-1.0 / 3)},
		{name: "orthogonal", est: fieldOf(0, 2), gt: fieldOf(2, 0), want: math.Acos(1.0 / 5)},
		{name: "mean of two", est: fieldOf(1, 0, 0, 0), gt: fieldOf(0, 0, 0, 0), want: math.Pi / 8},
	}

	for _, test := range tests {
		got, _, err := AngularError(test.est, test.gt)
		if err != nil {
			t.Fatalf("%s: did not expect error: %v", test.name, err)
		}
		if !approx(got, test.want, 1e-12) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestAngularErrorMap(t *testing.T) {
	est := &Field{Rows: 2, Cols: 2, UV: []float64{0, 0, 1, 0, 0, 0, 0, 0}}
	gt := NewField(2, 2)
	_, m, err := AngularError(est, gt)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if m.Rows != 2 || m.Cols != 2 {
		t.Fatalf("error map has shape %v, want 2x2", m.Shape())
	}
	if !approx(m.At(0, 1), math.Pi/4, 1e-12) || m.At(1, 1) != 0 {
		t.Errorf("unexpected error map %v", m.Pix)
	}
}

func TestAngularErrorShapeMismatch(t *testing.T) {
	_, _, err := AngularError(NewField(2, 3), NewField(3, 2))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	_, _, err = EndpointError(NewField(2, 3), NewField(3, 2))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestEndpointError(t *testing.T) {
	got, _, err := EndpointError(fieldOf(3, 4, 1, 1), fieldOf(0, 0, 1, 1))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if got != 2.5 {
		t.Errorf("got %v, want 2.5", got)
	}
}

func TestEvaluator(t *testing.T) {
	e := NewEvaluator(testConfig(t))

	est := fieldOf(1, 0, 1, 0, 1, 0)
	est.Valid = []bool{true, true, false}
	gt := fieldOf(0, 0, 1e9, 0, 0, 0)

	aae, m, err := e.AngularError(est, gt)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !approx(aae, math.Pi/4, 1e-12) {
		t.Errorf("got AAE %v, want %v", aae, math.Pi/4)
	}
	if !approx(m.Pix[0], math.Pi/4, 1e-12) || !math.IsNaN(m.Pix[1]) || !math.IsNaN(m.Pix[2]) {
		t.Errorf("unexpected error map %v", m.Pix)
	}

	// Nothing can be scored.
	aae, _, err = e.AngularError(fieldOf(0, 0), fieldOf(2000, 0))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if !math.IsNaN(aae) {
		t.Errorf("got AAE %v, want NaN", aae)
	}
}
