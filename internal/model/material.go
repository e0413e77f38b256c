package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultFabricWidthMM is used when a fabric carries no declared width.
const DefaultFabricWidthMM = 1500.0

// Unit is the stock-keeping unit of a material.
type Unit int

const (
	UnitOther Unit = iota // Unrecognized discrete unit, passed through unchanged
	UnitMillimeter
	UnitCentimeter
	UnitMeter
	UnitEach
	UnitKilogram
	UnitPair
)

func (u Unit) String() string {
	switch u {
	case UnitMillimeter:
		return "mm"
	case UnitCentimeter:
		return "cm"
	case UnitMeter:
		return "mt"
	case UnitEach:
		return "un"
	case UnitKilogram:
		return "kg"
	case UnitPair:
		return "par"
	default:
		return "other"
	}
}

// IsLength reports whether quantities in this unit are stored as millimeters.
func (u Unit) IsLength() bool {
	return u == UnitMillimeter || u == UnitCentimeter || u == UnitMeter
}

// factor is the multiplier from the display unit to the canonical unit.
func (u Unit) factor() float64 {
	switch u {
	case UnitMeter:
		return 1000
	case UnitCentimeter:
		return 10
	default:
		return 1
	}
}

// unitAliases maps accepted spellings (lowercase) to their unit.
var unitAliases = map[string]Unit{
	"mm": UnitMillimeter, "milimetro": UnitMillimeter, "milimetros": UnitMillimeter,
	"cm": UnitCentimeter, "centimetro": UnitCentimeter, "centimetros": UnitCentimeter,
	"mt": UnitMeter, "m": UnitMeter, "mts": UnitMeter, "metro": UnitMeter, "metros": UnitMeter,
	"un": UnitEach, "und": UnitEach, "unid": UnitEach, "pc": UnitEach, "pcs": UnitEach,
	"kg":  UnitKilogram,
	"par": UnitPair, "pares": UnitPair, "pr": UnitPair,
}

// ParseUnit normalizes a unit string from catalog data. Unrecognized strings
// return UnitOther and false.
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return UnitOther, false
	}
	return u, true
}

// Material is a fabric or accessory that can be consumed by production.
type Material struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Unit     Unit            `json:"unit"`
	IsFabric bool            `json:"is_fabric"`
	WidthMM  float64         `json:"width_mm,omitempty"` // fabrics only
	Cost     decimal.Decimal `json:"cost"`               // per display unit
}

func NewMaterial(name string, unit Unit) Material {
	return Material{
		ID:   uuid.New().String()[:8],
		Name: name,
		Unit: unit,
		Cost: decimal.Zero,
	}
}

func NewFabric(name string, widthMM float64) Material {
	m := NewMaterial(name, UnitMeter)
	m.IsFabric = true
	m.WidthMM = widthMM
	return m
}

// ToCanonical converts a quantity expressed in the material's display unit to
// the canonical storage unit (millimeters for length units).
func (m Material) ToCanonical(display float64) float64 {
	return display * m.Unit.factor()
}

// ToDisplay converts a canonical quantity back to the material's display unit.
func (m Material) ToDisplay(canonical float64) float64 {
	return canonical / m.Unit.factor()
}

// FabricWidth returns the declared width, or def when none is set.
func (m Material) FabricWidth(def float64) float64 {
	if m.WidthMM > 0 {
		return m.WidthMM
	}
	if def > 0 {
		return def
	}
	return DefaultFabricWidthMM
}

// Color is a named color variant of a material.
type Color struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

func NewColor(name, hex string) Color {
	if hex == "" {
		hex = "#FFFFFF"
	}
	return Color{
		ID:   uuid.New().String()[:8],
		Name: name,
		Hex:  hex,
	}
}
