package engine

import (
	"math"

	"github.com/piwi3910/MoldCut/internal/model"
)

// RowLayout describes laying identical pieces in rows across the fabric width.
type RowLayout struct {
	FitsPerRow int     `json:"fits_per_row"`
	Rows       int     `json:"rows"`
	LengthMM   float64 `json:"length_mm"`
}

// rowLayout lays totalPieces of size across x along in rows across fabricWidth.
// A zero-size piece still takes a full row slot. A row never holds more than
// totalPieces, which also keeps tiny pieces within int range.
func rowLayout(across, along float64, totalPieces int, fabricWidth float64) RowLayout {
	fits := 1
	if across > 0 {
		q := math.Min(math.Floor(fabricWidth/across), float64(max(totalPieces, 1)))
		if q > 1 {
			fits = int(q)
		}
	}
	rows := 0
	if totalPieces > 0 {
		rows = (totalPieces + fits - 1) / fits
	}
	return RowLayout{
		FitsPerRow: fits,
		Rows:       rows,
		LengthMM:   float64(rows) * along,
	}
}

// totalPieces returns the number of pieces to cut, coercing the repeat count to at least 1.
func totalPieces(repeat, qty int) int {
	if repeat < 1 {
		repeat = 1
	}
	if qty < 0 {
		qty = 0
	}
	return repeat * qty
}

func fabricWidthOrDefault(w float64) float64 {
	if w <= 0 {
		return model.DefaultFabricWidthMM
	}
	return w
}

// EstimateLinearMM returns the linear fabric length needed to cut repeat
// pieces per product for qty products, laying them in rows across the fabric.
// Unless the rotation is fixed, the transposed layout is also evaluated and
// the shorter of the two wins. This is a greedy upper bound, not a nesting.
func EstimateLinearMM(bboxW, bboxH float64, repeat, qty int, fabricWidthMM float64, rotationFixed bool) float64 {
	return CompareLayouts(bboxW, bboxH, repeat, qty, fabricWidthMM, rotationFixed).LengthMM()
}

// EstimatePiece is EstimateLinearMM for a stored piece.
func EstimatePiece(p model.Piece, qty int, fabricWidthMM float64) float64 {
	return EstimateLinearMM(p.BBoxWidthMM, p.BBoxHeightMM, p.RepeatCount, qty, fabricWidthMM, p.RotationFixed)
}
