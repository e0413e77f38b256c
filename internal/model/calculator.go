package model

import "github.com/shopspring/decimal"

// MaterialLookup resolves materials by ID.
type MaterialLookup interface {
	Material(id string) (Material, bool)
}

// PurchaseLine is the purchasing view of one requirement.
type PurchaseLine struct {
	Key          RequirementKey  `json:"key"`
	MaterialName string          `json:"material_name"`
	Unit         Unit            `json:"unit"`
	Required     float64         `json:"required"`  // display units
	Available    float64         `json:"available"` // display units
	Shortfall    float64         `json:"shortfall"` // display units, never negative
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Cost         decimal.Decimal `json:"cost"` // shortfall x unit cost
}

// PurchaseEstimate holds the results of comparing requirements against stock.
type PurchaseEstimate struct {
	Lines     []PurchaseLine   `json:"lines"`
	TotalCost decimal.Decimal  `json:"total_cost"`
	Unknown   []RequirementKey `json:"unknown,omitempty"` // keys whose material is not in the catalog
}

// CalculatePurchaseEstimate converts a requirements report to display units,
// subtracts stock on hand and prices the shortfall at each material's cost.
func CalculatePurchaseEstimate(report RequirementsReport, inv Inventory, materials MaterialLookup) PurchaseEstimate {
	est := PurchaseEstimate{TotalCost: decimal.Zero}
	for _, key := range report.Keys() {
		m, ok := materials.Material(key.MaterialID)
		if !ok {
			est.Unknown = append(est.Unknown, key)
			continue
		}
		required := m.ToDisplay(report[key])
		available := m.ToDisplay(inv.Available(key))
		shortfall := required - available
		if shortfall < 0 {
			shortfall = 0
		}
		cost := m.Cost.Mul(decimal.NewFromFloat(shortfall)).Round(2)
		est.Lines = append(est.Lines, PurchaseLine{
			Key:          key,
			MaterialName: m.Name,
			Unit:         m.Unit,
			Required:     required,
			Available:    available,
			Shortfall:    shortfall,
			UnitCost:     m.Cost,
			Cost:         cost,
		})
		est.TotalCost = est.TotalCost.Add(cost)
	}
	return est
}

// ProductCost sums the material cost of one unit of product. Fabric
// consumption is canonical and converted to display units before pricing;
// accessory quantities are already in display units.
func ProductCost(p Product, materials MaterialLookup) decimal.Decimal {
	total := decimal.Zero
	for _, f := range p.Fabrics {
		m, ok := materials.Material(f.MaterialID)
		if !ok {
			continue
		}
		total = total.Add(m.Cost.Mul(decimal.NewFromFloat(m.ToDisplay(f.Consumption))))
	}
	for _, a := range p.Accessories {
		id := a.MaterialID
		if a.OverrideMaterialID != "" {
			id = a.OverrideMaterialID
		}
		m, ok := materials.Material(id)
		if !ok {
			continue
		}
		total = total.Add(m.Cost.Mul(decimal.NewFromFloat(a.Quantity)))
	}
	return total.Round(2)
}
