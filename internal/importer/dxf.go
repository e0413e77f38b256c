package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// Segment counts used when flattening curves into polygon vertices.
const (
	dxfCircleSegments = 64
	dxfArcSegments    = 32
	dxfJoinTolerance  = 0.01 // mm
	dxfMinExtent      = 0.01 // mm
)

// edge is a straight piece of a cut line, used to join loose LINE and ARC
// entities into closed piece outlines.
type edge struct {
	a, b model.Point2D
}

// ImportDXF reads piece outlines from a DXF drawing exported by CAD pattern
// software. Every closed shape (LWPOLYLINE, CIRCLE, or a loop of LINEs and
// ARCs) becomes a polygon piece of moldID with a repeat count of 1 and free
// rotation, since DXF carries no grain information.
func ImportDXF(path, moldID string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var loops []model.Outline
	var edges []edge
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			loop := flattenPolyline(e)
			if len(loop) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			loops = append(loops, loop)
		case *entity.Circle:
			loops = append(loops, arcPoints(e.Center[0], e.Center[1], e.Radius, 0, 2*math.Pi, dxfCircleSegments, false))
		case *entity.Arc:
			start := e.Angle[0] * math.Pi / 180
			end := e.Angle[1] * math.Pi / 180
			if end <= start {
				end += 2 * math.Pi
			}
			pts := arcPoints(e.Circle.Center[0], e.Circle.Center[1], e.Circle.Radius, start, end, dxfArcSegments, true)
			for i := 1; i < len(pts); i++ {
				edges = append(edges, edge{a: pts[i-1], b: pts[i]})
			}
		case *entity.Line:
			edges = append(edges, edge{
				a: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				b: model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	closed, open := joinEdges(edges, dxfJoinTolerance)
	loops = append(loops, closed...)
	if open > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d open line chain(s) (grain lines, notches or darts)", open))
	}

	if len(loops) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	// Largest pieces first for a stable order across exports.
	sort.SliceStable(loops, func(i, j int) bool {
		return loops[i].Area() > loops[j].Area()
	})

	for i, loop := range loops {
		min, _ := loop.BoundingBox()
		geom := model.NewPoly(loop.Translate(-min.X, -min.Y))
		fp, _ := geom.Resolve()
		if fp.Width < dxfMinExtent || fp.Height < dxfMinExtent {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", fp.Width, fp.Height))
			continue
		}

		piece, warnings := BuildPiece(moldID, PieceSpec{
			Name:      fmt.Sprintf("DXF Piece %d", i+1),
			Qty:       1,
			Geom:      geom,
			GrainAxis: "none",
		})
		result.Warnings = append(result.Warnings, warnings...)
		result.Pieces = append(result.Pieces, piece)
	}

	return result
}

// flattenPolyline returns the vertices of an LWPOLYLINE, replacing bulged
// segments with interpolated arc points.
func flattenPolyline(lw *entity.LwPolyline) model.Outline {
	n := len(lw.Vertices)
	var out model.Outline
	for i := 0; i < n; i++ {
		p := model.Point2D{X: lw.Vertices[i][0], Y: lw.Vertices[i][1]}
		var bulge float64
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			out = append(out, p)
			continue
		}
		next := lw.Vertices[(i+1)%n]
		arc := bulgePoints(p, model.Point2D{X: next[0], Y: next[1]}, bulge)
		// The arc ends on the next vertex, which the loop adds itself.
		out = append(out, arc[:len(arc)-1]...)
	}
	return out
}

// bulgePoints interpolates the arc between p1 and p2 described by a DXF bulge
// (tan of a quarter of the included angle; positive is counter-clockwise).
func bulgePoints(p1, p2 model.Point2D, bulge float64) model.Outline {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}

	theta := 4 * math.Atan(bulge) // signed included angle
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Center lies on the chord's perpendicular bisector.
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	h := math.Sqrt(math.Max(radius*radius-chord*chord/4, 0))
	nx, ny := -dy/chord, dx/chord
	if (bulge > 0) != (math.Abs(theta) > math.Pi) {
		nx, ny = -nx, -ny
	}
	cx, cy := mx-nx*h, my-ny*h

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	pts := make(model.Outline, dxfArcSegments+1)
	for i := 0; i <= dxfArcSegments; i++ {
		a := start + theta*float64(i)/dxfArcSegments
		pts[i] = model.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)}
	}
	pts[dxfArcSegments] = p2
	return pts
}

// arcPoints samples a circle arc from start to end radians. When inclusive is
// false the end point is omitted, which closes full circles without a
// duplicate vertex.
func arcPoints(cx, cy, r, start, end float64, segments int, inclusive bool) model.Outline {
	count := segments
	if inclusive {
		count++
	}
	pts := make(model.Outline, count)
	for i := 0; i < count; i++ {
		a := start + (end-start)*float64(i)/float64(segments)
		pts[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// joinEdges walks loose edges end to end. Chains that return to their start
// are returned as loops without the repeated closing vertex; the rest are only
// counted in open.
func joinEdges(edges []edge, tol float64) (loops []model.Outline, open int) {
	used := make([]bool, len(edges))

	for start := range edges {
		if used[start] {
			continue
		}
		used[start] = true
		chain := model.Outline{edges[start].a, edges[start].b}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, e := range edges {
				if used[i] {
					continue
				}
				switch {
				case near(tail, e.a, tol):
					chain = append(chain, e.b)
				case near(tail, e.b, tol):
					chain = append(chain, e.a)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) < 4 || !near(chain[0], chain[len(chain)-1], tol) {
			open++
			continue
		}
		loops = append(loops, chain[:len(chain)-1])
	}
	return loops, open
}

func near(a, b model.Point2D, tol float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tol
}
