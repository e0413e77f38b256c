package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCatalog() *model.Catalog {
	cat := model.NewCatalog()

	fabric := model.NewFabric("Denim", 1600)
	fabric.Cost = decimal.RequireFromString("12.50")
	zipper := model.NewMaterial("Zipper", model.UnitEach)
	cat.AddMaterial(fabric)
	cat.AddMaterial(zipper)

	blue := model.NewColor("Blue", "#0000FF")
	cat.AddColor(blue)

	mold := model.NewMold("Jacket")
	mold.FormatVersion = 3
	mold.Thumbnail = []byte{0x89, 'P', 'N', 'G'}
	cat.AddMold(mold)

	front := model.NewPiece(mold.ID, "Front", model.NewRect(100, 200), 2)
	front.RotationFixed = true
	front.Grain = model.GrainVertical
	sleeve := model.NewPiece(mold.ID, "Sleeve", model.NewPoly(model.Outline{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 25, Y: 80}}), 2)
	cat.ReplacePieces(mold.ID, []model.Piece{front, sleeve})

	p := model.NewProduct("Jacket Blue", mold.ID)
	p.SKU = "JK-001"
	p.Fabrics = append(p.Fabrics, model.FabricAssignment{PieceID: front.ID, MaterialID: fabric.ID, ColorID: blue.ID, Consumption: 900})
	p.Accessories = append(p.Accessories, model.NewAccessoryAssignment(zipper.ID, "", 1))
	p.Consumption = []model.ConsumptionEntry{{MaterialID: fabric.ID, ColorID: blue.ID, Quantity: 850}}
	cat.AddProduct(p)

	return cat
}

func TestSaveAndLoadCatalog(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	want := seedCatalog()

	require.NoError(t, s.SaveCatalog(ctx, want))
	got, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	assert.Len(t, got.Materials, 2)
	assert.Len(t, got.Colors, 1)
	assert.Len(t, got.Pieces, 2)

	for id, m := range want.Materials {
		loaded, ok := got.Material(id)
		require.True(t, ok)
		assert.Equal(t, m.Name, loaded.Name)
		assert.Equal(t, m.Unit, loaded.Unit)
		assert.Equal(t, m.IsFabric, loaded.IsFabric)
		assert.InDelta(t, m.WidthMM, loaded.WidthMM, 1e-9)
		assert.True(t, m.Cost.Equal(loaded.Cost), "cost %s != %s", m.Cost, loaded.Cost)
	}

	for id, mold := range want.Molds {
		loaded := got.Molds[id]
		assert.Equal(t, mold.FormatVersion, loaded.FormatVersion)
		assert.Equal(t, mold.Thumbnail, loaded.Thumbnail)
	}

	for id, p := range want.Pieces {
		loaded, ok := got.Piece(id)
		require.True(t, ok)
		assert.Equal(t, p, loaded)
	}

	for id, p := range want.Products {
		loaded, ok := got.Product(id)
		require.True(t, ok)
		assert.Equal(t, p.SKU, loaded.SKU)
		assert.Equal(t, p.Fabrics, loaded.Fabrics)
		assert.Equal(t, p.Accessories, loaded.Accessories)
		assert.Equal(t, p.Consumption, loaded.Consumption)
	}
}

func TestReplacePiecesRemovesOldSet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	mold := model.NewMold("Shirt")
	require.NoError(t, s.SaveMold(ctx, mold))
	first := []model.Piece{
		model.NewPiece(mold.ID, "A", model.NewRect(10, 10), 1),
		model.NewPiece(mold.ID, "B", model.NewRect(20, 10), 1),
	}
	require.NoError(t, s.ReplacePieces(ctx, mold.ID, first))

	second := []model.Piece{model.NewPiece(mold.ID, "C", model.NewCircle(30), 4)}
	require.NoError(t, s.ReplacePieces(ctx, mold.ID, second))

	cat, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	pieces := cat.MoldPieces(mold.ID)
	require.Len(t, pieces, 1)
	assert.Equal(t, "C", pieces[0].Name)
	assert.Equal(t, model.KindCircle, pieces[0].Geometry.Kind)
	assert.Equal(t, 4, pieces[0].RepeatCount)
}

func TestReplacePiecesUnknownMoldRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	err := s.ReplacePieces(ctx, "missing", []model.Piece{model.NewPiece("missing", "A", model.NewRect(1, 1), 1)})
	assert.Error(t, err)

	cat, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, cat.Pieces)
}

func TestSaveConsumptionReplacesCache(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	cat := seedCatalog()
	require.NoError(t, s.SaveCatalog(ctx, cat))

	var productID string
	for id := range cat.Products {
		productID = id
	}
	entries := []model.ConsumptionEntry{
		{MaterialID: "m1", Quantity: 100},
		{MaterialID: "m2", ColorID: "c1", Quantity: 250},
	}
	require.NoError(t, s.SaveConsumption(ctx, productID, entries))

	loaded, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	p, ok := loaded.Product(productID)
	require.True(t, ok)
	assert.Equal(t, entries, p.Consumption)
}

func TestSaveProductReplacesBOM(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := model.NewProduct("Tote", "mold1")
	p.Accessories = []model.AccessoryAssignment{
		model.NewAccessoryAssignment("a", "", 1),
		model.NewAccessoryAssignment("b", "", 2),
	}
	require.NoError(t, s.SaveProduct(ctx, p))

	p.Accessories = p.Accessories[:1]
	require.NoError(t, s.SaveProduct(ctx, p))

	cat, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	loaded, ok := cat.Product(p.ID)
	require.True(t, ok)
	assert.Len(t, loaded.Accessories, 1)
	assert.Empty(t, loaded.Fabrics)
}

func TestInventoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	inv, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, inv.Stock)

	fabric := model.NewFabric("Linen", 1400)
	inv.Receive(fabric, "c1", 2.5)
	require.NoError(t, s.SaveInventory(ctx, inv))

	loaded, err := s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2500.0, loaded.Available(model.RequirementKey{MaterialID: fabric.ID, ColorID: "c1"}), 1e-9)

	require.NoError(t, s.SaveInventory(ctx, model.DefaultInventory()))
	loaded, err = s.LoadInventory(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Stock)
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveColor(context.Background(), model.NewColor("Red", "#FF0000")))
	cat, err := s.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, cat.Colors, 1)
}
