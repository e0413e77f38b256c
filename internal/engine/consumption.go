package engine

import "github.com/piwi3910/MoldCut/internal/model"

// BuildConsumption computes a product's fabric consumption cache: for each
// fabric assignment the yield for a batch of batchQty products is estimated
// and divided back to a per-unit figure. Entries are merged per
// (material, color) and returned in key order. Assignments whose piece or
// material is unknown are skipped.
func BuildConsumption(catalog Catalog, product model.Product, batchQty int, defaultWidthMM float64) []model.ConsumptionEntry {
	if batchQty < 1 {
		batchQty = 1
	}
	perUnit := model.NewRequirementsReport()
	for _, f := range product.Fabrics {
		piece, ok := catalog.Piece(f.PieceID)
		if !ok {
			continue
		}
		fabric, ok := catalog.Material(f.MaterialID)
		if !ok {
			continue
		}
		length := EstimatePiece(piece, batchQty, fabric.FabricWidth(defaultWidthMM))
		perUnit.Add(model.RequirementKey{MaterialID: fabric.ID, ColorID: f.ColorID}, length/float64(batchQty))
	}

	entries := make([]model.ConsumptionEntry, 0, len(perUnit))
	for _, k := range perUnit.Keys() {
		entries = append(entries, model.ConsumptionEntry{
			MaterialID: k.MaterialID,
			ColorID:    k.ColorID,
			Quantity:   perUnit[k],
		})
	}
	return entries
}
