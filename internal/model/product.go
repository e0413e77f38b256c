package model

import "github.com/google/uuid"

// FabricAssignment links a piece to the fabric it is cut from, with the stored
// consumption per unit of product in canonical units.
type FabricAssignment struct {
	PieceID     string  `json:"piece_id"`
	MaterialID  string  `json:"material_id"`
	ColorID     string  `json:"color_id,omitempty"`
	Consumption float64 `json:"consumption"`
}

// AccessoryAssignment is a trim BOM entry. Quantity is per unit of product in
// the display unit of the base material. OverrideMaterialID substitutes a
// different trim while the quantity still derives from this entry.
type AccessoryAssignment struct {
	ID                 string  `json:"id"`
	MaterialID         string  `json:"material_id"`
	ColorID            string  `json:"color_id,omitempty"`
	Quantity           float64 `json:"quantity"`
	OverrideMaterialID string  `json:"override_material_id,omitempty"`
}

func NewAccessoryAssignment(materialID, colorID string, qty float64) AccessoryAssignment {
	return AccessoryAssignment{
		ID:         uuid.New().String()[:8],
		MaterialID: materialID,
		ColorID:    colorID,
		Quantity:   qty,
	}
}

// ConsumptionEntry is one row of a product's cached fabric consumption,
// canonical units per unit of product.
type ConsumptionEntry struct {
	MaterialID string  `json:"material_id"`
	ColorID    string  `json:"color_id,omitempty"`
	Quantity   float64 `json:"quantity"`
}

// Product is a sellable SKU built from one mold.
type Product struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	SKU         string                `json:"sku,omitempty"`
	MoldID      string                `json:"mold_id"`
	Fabrics     []FabricAssignment    `json:"fabrics"`
	Accessories []AccessoryAssignment `json:"accessories"`
	Consumption []ConsumptionEntry    `json:"consumption,omitempty"`
}

func NewProduct(name, moldID string) Product {
	return Product{
		ID:          uuid.New().String()[:8],
		Name:        name,
		MoldID:      moldID,
		Fabrics:     []FabricAssignment{},
		Accessories: []AccessoryAssignment{},
	}
}

// Configured reports whether the product has any BOM data at all.
func (p Product) Configured() bool {
	return len(p.Fabrics) > 0 || len(p.Accessories) > 0 || len(p.Consumption) > 0
}

// PieceOverride chooses the fabric and color for one piece on an order line.
type PieceOverride struct {
	PieceID    string `json:"piece_id"`
	MaterialID string `json:"material_id,omitempty"`
	ColorID    string `json:"color_id,omitempty"`
}

// AccessoryOverride substitutes the material and/or color of one accessory
// BOM entry on an order line.
type AccessoryOverride struct {
	AssignmentID string `json:"assignment_id"`
	MaterialID   string `json:"material_id,omitempty"`
	ColorID      string `json:"color_id,omitempty"`
}

// OrderLine is a quantity of one product, optionally with per-piece fabric choices.
type OrderLine struct {
	ProductID          string              `json:"product_id"`
	Quantity           int                 `json:"quantity"`
	PieceOverrides     []PieceOverride     `json:"piece_overrides,omitempty"`
	AccessoryOverrides []AccessoryOverride `json:"accessory_overrides,omitempty"`
}

// FindAccessoryOverride returns the override for the given BOM entry, if any.
func (l OrderLine) FindAccessoryOverride(assignmentID string) (AccessoryOverride, bool) {
	for _, o := range l.AccessoryOverrides {
		if o.AssignmentID == assignmentID {
			return o, true
		}
	}
	return AccessoryOverride{}, false
}

// Order is a customer order made of product lines.
type Order struct {
	ID       string      `json:"id"`
	Customer string      `json:"customer"`
	Lines    []OrderLine `json:"lines"`
}

func NewOrder(customer string, lines ...OrderLine) Order {
	return Order{
		ID:       uuid.New().String()[:8],
		Customer: customer,
		Lines:    lines,
	}
}
