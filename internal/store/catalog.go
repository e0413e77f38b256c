package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/shopspring/decimal"
)

// LoadCatalog reads every catalog entity into an in-memory arena. The
// aggregator works on the returned snapshot, never on the database.
func (s *Store) LoadCatalog(ctx context.Context) (*model.Catalog, error) {
	cat := model.NewCatalog()
	loaders := []struct {
		what string
		fn   func(context.Context, *model.Catalog) error
	}{
		{"materials", s.loadMaterials},
		{"colors", s.loadColors},
		{"molds", s.loadMolds},
		{"pieces", s.loadPieces},
		{"products", s.loadProducts},
	}
	for _, l := range loaders {
		if err := l.fn(ctx, cat); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.what, err)
		}
	}
	return cat, nil
}

func (s *Store) loadMaterials(ctx context.Context, cat *model.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, unit, is_fabric, width_mm, cost FROM materials`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.Material
		var unit int
		var cost string
		if err := rows.Scan(&m.ID, &m.Name, &unit, &m.IsFabric, &m.WidthMM, &cost); err != nil {
			return err
		}
		m.Unit = model.Unit(unit)
		if m.Cost, err = decimal.NewFromString(cost); err != nil {
			return fmt.Errorf("material %s has invalid cost %q: %w", m.ID, cost, err)
		}
		cat.AddMaterial(m)
	}
	return rows.Err()
}

func (s *Store) loadColors(ctx context.Context, cat *model.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, hex FROM colors`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Color
		if err := rows.Scan(&c.ID, &c.Name, &c.Hex); err != nil {
			return err
		}
		cat.AddColor(c)
	}
	return rows.Err()
}

func (s *Store) loadMolds(ctx context.Context, cat *model.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, format_version, thumbnail FROM molds`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.Mold
		if err := rows.Scan(&m.ID, &m.Name, &m.FormatVersion, &m.Thumbnail); err != nil {
			return err
		}
		cat.AddMold(m)
	}
	return rows.Err()
}

func (s *Store) loadPieces(ctx context.Context, cat *model.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, mold_id, name, geometry, net_area_mm2,
		bbox_width_mm, bbox_height_mm, repeat_count, rotation_fixed, grain FROM pieces`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Piece
		var geom string
		var grain int
		if err := rows.Scan(&p.ID, &p.MoldID, &p.Name, &geom, &p.NetAreaMM2,
			&p.BBoxWidthMM, &p.BBoxHeightMM, &p.RepeatCount, &p.RotationFixed, &grain); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(geom), &p.Geometry); err != nil {
			return fmt.Errorf("piece %s has invalid geometry: %w", p.ID, err)
		}
		p.Grain = model.Grain(grain)
		cat.Pieces[p.ID] = p
	}
	return rows.Err()
}

func (s *Store) loadProducts(ctx context.Context, cat *model.Catalog) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sku, mold_id FROM products`)
	if err != nil {
		return err
	}
	products := map[string]*model.Product{}
	for rows.Next() {
		p := model.Product{Fabrics: []model.FabricAssignment{}, Accessories: []model.AccessoryAssignment{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.MoldID); err != nil {
			rows.Close()
			return err
		}
		products[p.ID] = &p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	err = s.scanEach(ctx, `SELECT product_id, piece_id, material_id, color_id, consumption
		FROM product_fabrics ORDER BY rowid`, func(rows *sql.Rows) error {
		var productID string
		var f model.FabricAssignment
		if err := rows.Scan(&productID, &f.PieceID, &f.MaterialID, &f.ColorID, &f.Consumption); err != nil {
			return err
		}
		if p, ok := products[productID]; ok {
			p.Fabrics = append(p.Fabrics, f)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.scanEach(ctx, `SELECT id, product_id, material_id, color_id, quantity, override_material_id
		FROM product_accessories ORDER BY rowid`, func(rows *sql.Rows) error {
		var productID string
		var a model.AccessoryAssignment
		if err := rows.Scan(&a.ID, &productID, &a.MaterialID, &a.ColorID, &a.Quantity, &a.OverrideMaterialID); err != nil {
			return err
		}
		if p, ok := products[productID]; ok {
			p.Accessories = append(p.Accessories, a)
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = s.scanEach(ctx, `SELECT product_id, material_id, color_id, quantity
		FROM product_consumption ORDER BY rowid`, func(rows *sql.Rows) error {
		var productID string
		var c model.ConsumptionEntry
		if err := rows.Scan(&productID, &c.MaterialID, &c.ColorID, &c.Quantity); err != nil {
			return err
		}
		if p, ok := products[productID]; ok {
			p.Consumption = append(p.Consumption, c)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, p := range products {
		cat.AddProduct(*p)
	}
	return nil
}

func (s *Store) scanEach(ctx context.Context, query string, fn func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveCatalog writes every entity of cat. Pieces are replaced per mold.
func (s *Store) SaveCatalog(ctx context.Context, cat *model.Catalog) error {
	for _, m := range cat.Materials {
		if err := s.SaveMaterial(ctx, m); err != nil {
			return err
		}
	}
	for _, c := range cat.Colors {
		if err := s.SaveColor(ctx, c); err != nil {
			return err
		}
	}
	for _, m := range cat.Molds {
		if err := s.SaveMold(ctx, m); err != nil {
			return err
		}
		if err := s.ReplacePieces(ctx, m.ID, cat.MoldPieces(m.ID)); err != nil {
			return err
		}
	}
	for _, p := range cat.Products {
		if err := s.SaveProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// LoadInventory returns the stock table.
func (s *Store) LoadInventory(ctx context.Context) (model.Inventory, error) {
	inv := model.DefaultInventory()
	err := s.scanEach(ctx, `SELECT material_id, color_id, quantity FROM stock ORDER BY material_id, color_id`,
		func(rows *sql.Rows) error {
			var e model.StockEntry
			if err := rows.Scan(&e.MaterialID, &e.ColorID, &e.Quantity); err != nil {
				return err
			}
			inv.Stock = append(inv.Stock, e)
			return nil
		})
	if err != nil {
		return model.Inventory{}, fmt.Errorf("failed to load stock: %w", err)
	}
	return inv, nil
}

// SaveInventory replaces the stock table with inv.
func (s *Store) SaveInventory(ctx context.Context, inv model.Inventory) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stock`); err != nil {
			return err
		}
		for _, e := range inv.Stock {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR REPLACE INTO stock (material_id, color_id, quantity) VALUES (?, ?, ?)`,
				e.MaterialID, e.ColorID, e.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save stock: %w", err)
	}
	return nil
}
