package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/MoldCut/internal/model"
)

// DefaultInventoryPath returns the default file path for the stock file.
// This is located at ~/.moldcut/inventory.json.
func DefaultInventoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".moldcut", "inventory.json"), nil
}

// SaveInventory writes the stock levels to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveInventory(path string, inv model.Inventory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadInventory reads stock levels from the specified JSON file.
// If the file does not exist, it returns an empty inventory and saves it.
func LoadInventory(path string) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			inv := model.DefaultInventory()
			if saveErr := SaveInventory(path, inv); saveErr != nil {
				return inv, saveErr
			}
			return inv, nil
		}
		return model.Inventory{}, err
	}
	var inv model.Inventory
	if err := json.Unmarshal(data, &inv); err != nil {
		return model.Inventory{}, err
	}
	if inv.Stock == nil {
		inv.Stock = []model.StockEntry{}
	}
	return inv, nil
}

// LoadOrCreateInventory loads the stock file from the default path.
func LoadOrCreateInventory() (model.Inventory, string, error) {
	path, err := DefaultInventoryPath()
	if err != nil {
		return model.DefaultInventory(), "", err
	}
	inv, err := LoadInventory(path)
	return inv, path, err
}

// ImportInventory reads a stock file and adds its quantities to existing.
// Entries for the same material and color are summed; negative quantities
// are skipped.
func ImportInventory(path string, existing model.Inventory) (model.Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Inventory
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	for _, e := range imported.Stock {
		if e.Quantity <= 0 {
			continue
		}
		if cur := existing.Find(e.Key()); cur != nil {
			cur.Quantity += e.Quantity
			continue
		}
		existing.Stock = append(existing.Stock, e)
	}
	return existing, nil
}
