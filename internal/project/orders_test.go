package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/MoldCut/internal/model"
)

func TestSaveAndLoadOrders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")

	orders := []model.Order{
		model.NewOrder("ACME", model.OrderLine{ProductID: "p1", Quantity: 10}),
		model.NewOrder("Globex", model.OrderLine{
			ProductID:      "p2",
			Quantity:       3,
			PieceOverrides: []model.PieceOverride{{PieceID: "front", MaterialID: "denim", ColorID: "blue"}},
		}),
	}
	if err := SaveOrders(path, orders); err != nil {
		t.Fatalf("SaveOrders failed: %v", err)
	}

	loaded, err := LoadOrders(path)
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(loaded))
	}
	if loaded[0].ID != orders[0].ID {
		t.Errorf("expected ID %s, got %s", orders[0].ID, loaded[0].ID)
	}
	if len(loaded[1].Lines[0].PieceOverrides) != 1 {
		t.Errorf("expected piece override to survive, got %+v", loaded[1].Lines[0])
	}
}

func TestLoadOrdersBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	data := `[{"customer":"ACME","lines":[{"product_id":"p1","quantity":2}]}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	orders, err := LoadOrders(path)
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].ID != "order-1" {
		t.Errorf("expected positional ID order-1, got %s", orders[0].ID)
	}
	if orders[0].Lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", orders[0].Lines[0].Quantity)
	}
}

func TestLoadOrdersInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrders(path); err == nil {
		t.Error("expected error for invalid order file")
	}
}
