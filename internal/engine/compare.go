package engine

import (
	"fmt"

	"github.com/piwi3910/MoldCut/internal/model"
)

// LayoutComparison holds both row layouts evaluated for one batch of pieces.
type LayoutComparison struct {
	Normal        RowLayout `json:"normal"`
	Rotated       RowLayout `json:"rotated"`
	RotationFixed bool      `json:"rotation_fixed"` // Rotated was not evaluated
	UseRotated    bool      `json:"use_rotated"`
}

// LengthMM returns the length of the chosen layout.
func (c LayoutComparison) LengthMM() float64 {
	if c.UseRotated {
		return c.Rotated.LengthMM
	}
	return c.Normal.LengthMM
}

// CompareLayouts evaluates the normal layout and, unless rotation is fixed,
// the transposed one. Ties keep the normal orientation.
func CompareLayouts(bboxW, bboxH float64, repeat, qty int, fabricWidthMM float64, rotationFixed bool) LayoutComparison {
	width := fabricWidthOrDefault(fabricWidthMM)
	total := totalPieces(repeat, qty)

	cmp := LayoutComparison{
		Normal:        rowLayout(bboxW, bboxH, total, width),
		RotationFixed: rotationFixed,
	}
	if rotationFixed {
		return cmp
	}
	cmp.Rotated = rowLayout(bboxH, bboxW, total, width)
	cmp.UseRotated = cmp.Rotated.LengthMM < cmp.Normal.LengthMM
	return cmp
}

// FabricScenario is a named fabric width to evaluate.
type FabricScenario struct {
	Name    string
	WidthMM float64
}

// FabricComparison holds the yield of a whole mold on one fabric width.
type FabricComparison struct {
	Scenario FabricScenario
	LengthMM float64
	Pieces   []LayoutComparison // in the order of the input pieces
}

// CompareFabricWidths lays out every piece of a mold for qty products on
// each scenario's fabric width. This answers what-if questions such as
// whether a wider roll saves enough length to be worth buying.
func CompareFabricWidths(scenarios []FabricScenario, pieces []model.Piece, qty int) []FabricComparison {
	results := make([]FabricComparison, 0, len(scenarios))

	for _, scenario := range scenarios {
		fc := FabricComparison{Scenario: scenario}
		for _, p := range pieces {
			cmp := CompareLayouts(p.BBoxWidthMM, p.BBoxHeightMM, p.RepeatCount, qty, scenario.WidthMM, p.RotationFixed)
			fc.Pieces = append(fc.Pieces, cmp)
			fc.LengthMM += cmp.LengthMM()
		}
		results = append(results, fc)
	}

	return results
}

// BuildDefaultScenarios generates the current width plus common roll widths.
func BuildDefaultScenarios(currentWidthMM float64) []FabricScenario {
	current := fabricWidthOrDefault(currentWidthMM)
	scenarios := []FabricScenario{
		{Name: "Current Width", WidthMM: current},
	}
	for _, w := range []float64{1400, 1500, 1600} {
		if w == current {
			continue
		}
		scenarios = append(scenarios, FabricScenario{
			Name:    fmt.Sprintf("Roll %.0fmm", w),
			WidthMM: w,
		})
	}
	return scenarios
}
