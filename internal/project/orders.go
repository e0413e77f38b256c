package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/MoldCut/internal/model"
)

// OrderFile is a batch of orders as exchanged with the sales system.
type OrderFile struct {
	Orders []model.Order `json:"orders"`
}

// SaveOrders writes orders to a JSON file.
func SaveOrders(path string, orders []model.Order) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(OrderFile{Orders: orders}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadOrders reads an order file. Both {"orders":[...]} and a bare JSON array
// of orders are accepted. Orders without an ID get a positional one.
func LoadOrders(path string) ([]model.Order, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read order file: %w", err)
	}

	var orders []model.Order
	var file OrderFile
	if err := json.Unmarshal(data, &file); err == nil {
		orders = file.Orders
	} else if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("failed to parse order file: %w", err)
	}

	for i := range orders {
		if orders[i].ID == "" {
			orders[i].ID = fmt.Sprintf("order-%d", i+1)
		}
	}
	return orders, nil
}
