package primitive

import (
	"math"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

func TestSizeVec(t *testing.T) {
	tests := []struct {
		name string
		size Size
		want v3.Vec
	}{
		{"unset", nil, v3.Vec{X: 2, Y: 2, Z: 2}},
		{"one entry", Size{5}, v3.Vec{X: 5, Y: 2, Z: 2}},
		{"three entries", Size{5, 10, 15}, v3.Vec{X: 5, Y: 10, Z: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.Vec(); got != tt.want {
				t.Errorf("Vec() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSizeUnmarshal(t *testing.T) {
	tests := []struct {
		doc     string
		want    v3.Vec
		wantErr bool
	}{
		{"size: 10", v3.Vec{X: 10, Y: 10, Z: 10}, false},
		{"size: [5, 10, 15]", v3.Vec{X: 5, Y: 10, Z: 15}, false},
		{"size: [5]", v3.Vec{X: 5, Y: 2, Z: 2}, false},
		{"name: x", v3.Vec{X: 2, Y: 2, Z: 2}, false},
		{"size: [1, 2, 3, 4]", v3.Vec{}, true},
		{"size: {x: 1}", v3.Vec{}, true},
		{"size: big", v3.Vec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			var op CubeOperation
			err := yaml.Unmarshal([]byte(tt.doc), &op)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got size %v", op.Size)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := op.Size.Vec(); got != tt.want {
				t.Errorf("size = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCornersCenterAndSize(t *testing.T) {
	var op CubeOperation
	if err := yaml.Unmarshal([]byte("size: 10\ncenter: [10, 20, 30]\n"), &op); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	box, err := op.Box()
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	c := box.Corners()
	if c[0] != (v3.Vec{X: 5, Y: 10, Z: 25}) {
		t.Errorf("corner 0 = %v, want (5, 10, 25)", c[0])
	}
	if c[6] != (v3.Vec{X: 15, Y: 30, Z: 35}) {
		t.Errorf("corner 6 = %v, want (15, 30, 35)", c[6])
	}
	want := [8][3]float64{
		{5, 10, 25}, {15, 10, 25}, {15, 30, 25}, {5, 30, 25},
		{5, 10, 35}, {15, 10, 35}, {15, 30, 35}, {5, 30, 35},
	}
	for i, w := range want {
		if c[i] != (v3.Vec{X: w[0], Y: w[1], Z: w[2]}) {
			t.Errorf("corner %d = %v, want %v", i, c[i], w)
		}
	}
}

func TestCornersDefaultCube(t *testing.T) {
	box, err := CubeOperation{}.Box()
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	c := box.Corners()
	if c[0] != (v3.Vec{X: -1, Y: -1, Z: -1}) || c[6] != (v3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("default cube corners = %v", c)
	}
}

func TestNegativeSizeUsesMagnitude(t *testing.T) {
	op := CubeOperation{Size: Size{-10, 4, -6}, Center: []float64{10, 20, 30}}
	box, err := op.Box()
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	if box.Size != (v3.Vec{X: 10, Y: 4, Z: 6}) {
		t.Errorf("size = %v", box.Size)
	}
	c := box.Corners()
	if c[0] != (v3.Vec{X: 5, Y: 18, Z: 27}) || c[6] != (v3.Vec{X: 15, Y: 22, Z: 33}) {
		t.Errorf("corners 0 and 6 = %v %v", c[0], c[6])
	}
}

func TestCornersRotated(t *testing.T) {
	op := CubeOperation{Size: Size{2, 2, 2}, Center: []float64{1, 0, 0}, Rotation: []float64{0, 0, 90}}
	box, err := op.Box()
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	c := box.Corners()
	// A quarter turn about Z maps (-1,-1,-1) around the center to (+1,-1,-1).
	want := v3.Vec{X: 2, Y: -1, Z: -1}
	if d := c[0].Sub(want).Length(); d > 1e-12 {
		t.Errorf("corner 0 = %v, want %v", c[0], want)
	}
	for i := range c {
		r := c[i].Sub(box.Center).Length()
		if math.Abs(r-math.Sqrt(3)) > 1e-12 {
			t.Errorf("corner %d at distance %v from center", i, r)
		}
	}
}

func TestBoxErrors(t *testing.T) {
	tests := []struct {
		name string
		op   CubeOperation
	}{
		{"short center", CubeOperation{Center: []float64{1, 2}}},
		{"long rotation", CubeOperation{Rotation: []float64{1, 2, 3, 4}}},
		{"nan size", CubeOperation{Size: Size{math.NaN()}}},
		{"infinite size", CubeOperation{Size: Size{1, math.Inf(1), 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.op.Box(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeStream(t *testing.T) {
	src := `size: 10
center: [10, 20, 30]
---
name: plate
size: [100, 50, 2]
---
rotation: [0, 0, 45]
`
	ops, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(ops) != 3 {
		t.Fatalf("got %d operations, want 3", len(ops))
	}
	names := []string{ops[0].Name, ops[1].Name, ops[2].Name}
	if names[0] != "cube" || names[1] != "plate" || names[2] != "cube-3" {
		t.Errorf("names = %v", names)
	}
	if got := ops[1].Size.Vec(); got != (v3.Vec{X: 100, Y: 50, Z: 2}) {
		t.Errorf("plate size = %v", got)
	}

	_, err = Decode(strings.NewReader("size: [1, 2, 3, 4]\n"))
	if err == nil {
		t.Error("expected error for 4-entry size")
	}
}
