// Package engine computes material requirements: piece orientation for
// layout, row-based fabric yield estimates, and per-order aggregation of
// fabric and accessory consumption.
package engine

import (
	"strings"

	"github.com/piwi3910/MoldCut/internal/model"
)

// OrientationFlags are the rotation hints carried by a piece in a pattern file.
type OrientationFlags struct {
	CanRotate     bool
	FixedRotation bool
	AutoOrient    bool
	GrainAxis     string
	// Computed is true when area and bbox were derived from the geometry
	// rather than supplied by the pattern file.
	Computed bool
}

// Orientation is the result of resolving a piece's layout orientation.
type Orientation struct {
	Geometry      model.Geometry
	RotationFixed bool
	Rotated       bool // a quarter turn was baked into Geometry
}

// isHorizontalAxis reports whether a grain axis string points across the fabric.
func isHorizontalAxis(axis string) bool {
	switch strings.ToLower(strings.TrimSpace(axis)) {
	case "x", "h", "horizontal":
		return true
	}
	return false
}

// ResolveOrientation decides whether the piece must be turned before layout
// and whether the yield estimator may still rotate it.
//
// Auto-orient only applies when the footprint was computed from the geometry;
// pieces with a pre-supplied area skip it but still honor an explicit
// horizontal grain axis.
func ResolveOrientation(geom model.Geometry, fp model.Footprint, flags OrientationFlags) Orientation {
	rotate := false
	if flags.AutoOrient && flags.Computed && fp.Width > fp.Height {
		rotate = true
	}
	if isHorizontalAxis(flags.GrainAxis) {
		rotate = true
	}

	out := Orientation{Geometry: geom}
	if rotate {
		out.Geometry = geom.Rotate90()
		out.Rotated = true
		out.RotationFixed = true
	}
	if !flags.CanRotate || flags.FixedRotation {
		out.RotationFixed = true
	}
	return out
}
