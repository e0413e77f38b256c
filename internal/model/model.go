package model

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Grain represents the grain direction constraint for a piece.
type Grain int

const (
	GrainUnspecified Grain = iota // No grain arrow on the piece
	GrainVertical                 // Grain runs along the height (fabric length)
	GrainHorizontal               // Grain runs along the width (fabric width)
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "Horizontal"
	case GrainVertical:
		return "Vertical"
	default:
		return "Unspecified"
	}
}

// ParseGrain converts a grain axis string from a pattern file to a Grain value.
// It returns the grain and whether the string was recognized.
func ParseGrain(s string) (Grain, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "h", "horizontal":
		return GrainHorizontal, true
	case "y", "v", "vertical":
		return GrainVertical, true
	case "", "none", "-":
		return GrainUnspecified, true
	default:
		return GrainUnspecified, false
	}
}

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area computes the absolute polygon area with the shoelace formula.
// Outlines with fewer than 3 points have zero area.
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(sum) / 2
}

// GeometryKind is the declared primitive type of a piece shape.
type GeometryKind string

const (
	KindRect   GeometryKind = "rect"
	KindCircle GeometryKind = "circle"
	KindPoly   GeometryKind = "poly"
)

// Geometry is the shape descriptor of a piece. Only the fields belonging to
// Kind are meaningful; any other Kind resolves to an empty footprint.
type Geometry struct {
	Kind       GeometryKind `json:"type"`
	HalfWidth  float64      `json:"halfW,omitempty"`
	HalfHeight float64      `json:"halfH,omitempty"`
	Radius     float64      `json:"radius,omitempty"`
	Points     Outline      `json:"pts,omitempty"`
}

// NewRect returns a rectangle geometry from its half extents.
func NewRect(halfW, halfH float64) Geometry {
	return Geometry{Kind: KindRect, HalfWidth: halfW, HalfHeight: halfH}
}

// NewCircle returns a circle geometry.
func NewCircle(radius float64) Geometry {
	return Geometry{Kind: KindCircle, Radius: radius}
}

// NewPoly returns a polygon geometry holding a copy of pts.
func NewPoly(pts Outline) Geometry {
	cp := make(Outline, len(pts))
	copy(cp, pts)
	return Geometry{Kind: KindPoly, Points: cp}
}

// Footprint is the net area and axis-aligned bounding box of a geometry.
type Footprint struct {
	Area   float64 `json:"area_mm2"`
	Width  float64 `json:"width_mm"`
	Height float64 `json:"height_mm"`
}

// Resolve computes the net area and bounding box of the geometry.
// The boolean is false for unknown kinds, which resolve to a zero footprint.
func (g Geometry) Resolve() (Footprint, bool) {
	switch g.Kind {
	case KindRect:
		w := math.Abs(g.HalfWidth * 2)
		h := math.Abs(g.HalfHeight * 2)
		return Footprint{Area: w * h, Width: w, Height: h}, true
	case KindCircle:
		r := math.Abs(g.Radius)
		return Footprint{Area: math.Pi * r * r, Width: 2 * r, Height: 2 * r}, true
	case KindPoly:
		if len(g.Points) < 3 {
			return Footprint{}, true
		}
		min, max := g.Points.BoundingBox()
		return Footprint{
			Area:   g.Points.Area(),
			Width:  max.X - min.X,
			Height: max.Y - min.Y,
		}, true
	default:
		return Footprint{}, false
	}
}

// Rotate90 returns the geometry turned by a quarter turn. Rectangles swap
// their half extents; polygon vertices map (x, y) -> (y, -x) and are moved
// back into the first quadrant. Circles are returned unchanged.
func (g Geometry) Rotate90() Geometry {
	switch g.Kind {
	case KindRect:
		return NewRect(g.HalfHeight, g.HalfWidth)
	case KindPoly:
		if len(g.Points) == 0 {
			return NewPoly(nil)
		}
		rotated := make(Outline, len(g.Points))
		for i, p := range g.Points {
			rotated[i] = Point2D{X: p.Y, Y: -p.X}
		}
		min, _ := rotated.BoundingBox()
		return Geometry{Kind: KindPoly, Points: rotated.Translate(-min.X, -min.Y)}
	default:
		out := g
		if g.Points != nil {
			out.Points = append(Outline(nil), g.Points...)
		}
		return out
	}
}

// Mold is a pattern: the set of pieces defining one product shape.
type Mold struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	FormatVersion uint32 `json:"format_version"`
	Thumbnail     []byte `json:"thumbnail,omitempty"`
}

func NewMold(name string) Mold {
	return Mold{
		ID:   uuid.New().String()[:8],
		Name: name,
	}
}

// Piece is one cut shape within a mold, as persisted after import.
type Piece struct {
	ID            string   `json:"id"`
	MoldID        string   `json:"mold_id"`
	Name          string   `json:"name"`
	Geometry      Geometry `json:"geometry"`
	NetAreaMM2    float64  `json:"net_area_mm2"`
	BBoxWidthMM   float64  `json:"bbox_width_mm"`
	BBoxHeightMM  float64  `json:"bbox_height_mm"`
	RepeatCount   int      `json:"repeat_count"` // pieces needed per unit of product
	RotationFixed bool     `json:"rotation_fixed"`
	Grain         Grain    `json:"grain"`
}

func NewPiece(moldID, name string, geom Geometry, repeat int) Piece {
	fp, _ := geom.Resolve()
	if repeat < 1 {
		repeat = 1
	}
	return Piece{
		ID:           uuid.New().String()[:8],
		MoldID:       moldID,
		Name:         name,
		Geometry:     geom,
		NetAreaMM2:   fp.Area,
		BBoxWidthMM:  fp.Width,
		BBoxHeightMM: fp.Height,
		RepeatCount:  repeat,
	}
}
