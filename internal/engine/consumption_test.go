package engine

import (
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConsumption(t *testing.T) {
	tc := newTestCatalog()
	p := tc.product
	p.Fabrics = []model.FabricAssignment{
		{PieceID: tc.front.ID, MaterialID: tc.denim.ID, ColorID: "blue"},
		{PieceID: tc.pocket.ID, MaterialID: tc.denim.ID, ColorID: "blue"},
		{PieceID: "ghost", MaterialID: tc.denim.ID},
	}

	entries := BuildConsumption(tc.cat, p, 60, model.DefaultFabricWidthMM)
	require.Len(t, entries, 1)

	// front: 800mm for 60; pocket 100x100 x2 x60 = 120 pieces, 15 per row, 8 rows = 800mm
	assert.Equal(t, tc.denim.ID, entries[0].MaterialID)
	assert.InDelta(t, 1600.0/60, entries[0].Quantity, 1e-9)
}

func TestBuildConsumptionFeedsStandardPath(t *testing.T) {
	tc := newTestCatalog()
	p := tc.product
	p.Consumption = BuildConsumption(tc.cat, p, 60, model.DefaultFabricWidthMM)
	tc.cat.AddProduct(p)

	report := ComputeRequirements(tc.cat, []model.Order{model.NewOrder("c", line(p.ID, 60))})
	assert.InDelta(t, 800.0, report[model.RequirementKey{MaterialID: tc.denim.ID, ColorID: "blue"}], 1e-9)
}

func TestBuildConsumptionBatchCoerced(t *testing.T) {
	tc := newTestCatalog()
	entries := BuildConsumption(tc.cat, tc.product, 0, 0)
	require.Len(t, entries, 1)
	// One 200x100 piece: rotated layout gives 200, normal 100; the shorter wins.
	assert.InDelta(t, 100.0, entries[0].Quantity, 1e-9)
}
