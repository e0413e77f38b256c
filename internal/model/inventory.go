package model

// StockEntry is the on-hand quantity of one material and color, in canonical units.
type StockEntry struct {
	MaterialID string  `json:"material_id"`
	ColorID    string  `json:"color_id,omitempty"`
	Quantity   float64 `json:"quantity"`
}

// Key returns the requirement key this entry is compared against.
func (e StockEntry) Key() RequirementKey {
	return RequirementKey{MaterialID: e.MaterialID, ColorID: e.ColorID}
}

// Inventory holds the stock on hand per material and color.
type Inventory struct {
	Stock []StockEntry `json:"stock"`
}

// DefaultInventory returns an empty inventory.
func DefaultInventory() Inventory {
	return Inventory{Stock: []StockEntry{}}
}

// Find returns a pointer to the entry for key, or nil.
func (inv *Inventory) Find(key RequirementKey) *StockEntry {
	for i := range inv.Stock {
		if inv.Stock[i].Key() == key {
			return &inv.Stock[i]
		}
	}
	return nil
}

// Available returns the canonical quantity on hand for key.
func (inv *Inventory) Available(key RequirementKey) float64 {
	if e := inv.Find(key); e != nil {
		return e.Quantity
	}
	return 0
}

// Receive records an incoming quantity typed in the material's display unit.
// The stored quantity is converted to canonical units.
func (inv *Inventory) Receive(m Material, colorID string, displayQty float64) {
	qty := m.ToCanonical(displayQty)
	key := RequirementKey{MaterialID: m.ID, ColorID: colorID}
	if e := inv.Find(key); e != nil {
		e.Quantity += qty
		return
	}
	inv.Stock = append(inv.Stock, StockEntry{MaterialID: m.ID, ColorID: colorID, Quantity: qty})
}

// Consume subtracts a canonical quantity, never going below zero.
// It returns the quantity actually taken.
func (inv *Inventory) Consume(key RequirementKey, qty float64) float64 {
	e := inv.Find(key)
	if e == nil || qty <= 0 {
		return 0
	}
	if qty > e.Quantity {
		qty = e.Quantity
	}
	e.Quantity -= qty
	return qty
}
