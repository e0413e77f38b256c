package model

import (
	"encoding/json"
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestResolveRect(t *testing.T) {
	fp, ok := NewRect(50, 30).Resolve()
	if !ok {
		t.Fatal("rect should be a known kind")
	}
	if fp.Width != 100 || fp.Height != 60 || fp.Area != 6000 {
		t.Errorf("expected 100x60 area 6000, got %+v", fp)
	}
}

func TestResolveRectNegativeHalves(t *testing.T) {
	fp, _ := NewRect(-50, -30).Resolve()
	if fp.Width != 100 || fp.Height != 60 || fp.Area != 6000 {
		t.Errorf("expected absolute footprint, got %+v", fp)
	}
}

func TestResolveCircle(t *testing.T) {
	fp, ok := NewCircle(10).Resolve()
	if !ok {
		t.Fatal("circle should be a known kind")
	}
	if fp.Width != 20 || fp.Height != 20 {
		t.Errorf("expected 20x20 bbox, got %vx%v", fp.Width, fp.Height)
	}
	if !near(fp.Area, math.Pi*100) {
		t.Errorf("expected area %v, got %v", math.Pi*100, fp.Area)
	}
}

func TestResolvePolyShoelace(t *testing.T) {
	square := NewPoly(Outline{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	fp, ok := square.Resolve()
	if !ok {
		t.Fatal("poly should be a known kind")
	}
	if fp.Area != 100 || fp.Width != 10 || fp.Height != 10 {
		t.Errorf("expected 10x10 area 100, got %+v", fp)
	}

	// Clockwise winding gives the same area.
	cw := NewPoly(Outline{{0, 10}, {10, 10}, {10, 0}, {0, 0}})
	if fp2, _ := cw.Resolve(); fp2.Area != 100 {
		t.Errorf("expected clockwise area 100, got %v", fp2.Area)
	}

	tri := NewPoly(Outline{{0, 0}, {40, 0}, {0, 30}})
	if fp3, _ := tri.Resolve(); fp3.Area != 600 || fp3.Width != 40 || fp3.Height != 30 {
		t.Errorf("expected triangle 40x30 area 600, got %+v", fp3)
	}
}

func TestResolveDegeneratePoly(t *testing.T) {
	for _, pts := range []Outline{nil, {{1, 1}}, {{0, 0}, {10, 5}}} {
		fp, ok := NewPoly(pts).Resolve()
		if !ok {
			t.Errorf("degenerate poly should still be known")
		}
		if fp != (Footprint{}) {
			t.Errorf("expected zero footprint for %d points, got %+v", len(pts), fp)
		}
	}
}

func TestResolveUnknownKind(t *testing.T) {
	fp, ok := Geometry{Kind: "spline"}.Resolve()
	if ok {
		t.Error("unknown kind should report ok=false")
	}
	if fp != (Footprint{}) {
		t.Errorf("expected zero footprint, got %+v", fp)
	}
}

func TestRotate90Rect(t *testing.T) {
	r := NewRect(50, 20).Rotate90()
	if r.HalfWidth != 20 || r.HalfHeight != 50 {
		t.Errorf("expected swapped halves, got %+v", r)
	}
}

func TestRotate90PolyFirstQuadrant(t *testing.T) {
	g := NewPoly(Outline{{0, 0}, {100, 0}, {100, 40}, {0, 40}})
	r := g.Rotate90()

	min, _ := r.Points.BoundingBox()
	if !near(min.X, 0) || !near(min.Y, 0) {
		t.Errorf("rotated polygon should start at origin, min=%+v", min)
	}
	fp, _ := r.Resolve()
	if !near(fp.Width, 40) || !near(fp.Height, 100) {
		t.Errorf("expected 40x100 after rotation, got %vx%v", fp.Width, fp.Height)
	}
	if !near(fp.Area, 4000) {
		t.Errorf("rotation must preserve area, got %v", fp.Area)
	}
	// Input is untouched.
	if g.Points[1].X != 100 || g.Points[1].Y != 0 {
		t.Errorf("Rotate90 mutated its input: %+v", g.Points)
	}
}

func TestRotate90TwiceSwapsBack(t *testing.T) {
	shapes := []Geometry{
		NewRect(30, 70),
		NewCircle(12),
		NewPoly(Outline{{0, 0}, {80, 0}, {60, 25}, {5, 25}}),
	}
	for _, g := range shapes {
		fp, _ := g.Resolve()
		twice, _ := g.Rotate90().Rotate90().Resolve()
		if !near(fp.Width, twice.Width) || !near(fp.Height, twice.Height) || !near(fp.Area, twice.Area) {
			t.Errorf("%s: double rotation changed footprint %+v -> %+v", g.Kind, fp, twice)
		}
	}
}

func TestGeometryJSONTags(t *testing.T) {
	var g Geometry
	if err := json.Unmarshal([]byte(`{"type":"rect","halfW":10,"halfH":5}`), &g); err != nil {
		t.Fatal(err)
	}
	if g.Kind != KindRect || g.HalfWidth != 10 || g.HalfHeight != 5 {
		t.Errorf("unexpected rect decode: %+v", g)
	}

	if err := json.Unmarshal([]byte(`{"type":"poly","pts":[{"x":0,"y":0},{"x":3,"y":0},{"x":0,"y":4}]}`), &g); err != nil {
		t.Fatal(err)
	}
	if fp, _ := g.Resolve(); fp.Area != 6 {
		t.Errorf("expected poly area 6, got %v", fp.Area)
	}
}

func TestParseGrain(t *testing.T) {
	tests := []struct {
		in   string
		want Grain
		ok   bool
	}{
		{"x", GrainHorizontal, true},
		{"H", GrainHorizontal, true},
		{"horizontal", GrainHorizontal, true},
		{"y", GrainVertical, true},
		{"Vertical", GrainVertical, true},
		{"", GrainUnspecified, true},
		{"diagonal", GrainUnspecified, false},
	}
	for _, tt := range tests {
		got, ok := ParseGrain(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseGrain(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewPieceComputesFootprint(t *testing.T) {
	p := NewPiece("m1", "Back", NewRect(100, 150), 0)
	if p.RepeatCount != 1 {
		t.Errorf("repeat should be coerced to 1, got %d", p.RepeatCount)
	}
	if p.BBoxWidthMM != 200 || p.BBoxHeightMM != 300 || p.NetAreaMM2 != 60000 {
		t.Errorf("unexpected footprint: %+v", p)
	}
	if len(p.ID) != 8 {
		t.Errorf("expected 8-char ID, got %q", p.ID)
	}
}
