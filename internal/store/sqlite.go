// Package store persists the catalog (materials, colors, molds, pieces,
// products and their BOMs) and stock levels in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/piwi3910/MoldCut/internal/model"
	"go.uber.org/zap"
)

// Store is a SQLite-backed catalog. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Use ":memory:" for a throwaway store.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty in-memory database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS materials (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			unit INTEGER NOT NULL,
			is_fabric INTEGER NOT NULL DEFAULT 0,
			width_mm REAL NOT NULL DEFAULT 0,
			cost TEXT NOT NULL DEFAULT '0'
		);`,
		`CREATE TABLE IF NOT EXISTS colors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			hex TEXT NOT NULL DEFAULT '#FFFFFF'
		);`,
		`CREATE TABLE IF NOT EXISTS molds (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			format_version INTEGER NOT NULL DEFAULT 0,
			thumbnail BLOB
		);`,
		`CREATE TABLE IF NOT EXISTS pieces (
			id TEXT PRIMARY KEY,
			mold_id TEXT NOT NULL REFERENCES molds(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			geometry TEXT NOT NULL,
			net_area_mm2 REAL NOT NULL,
			bbox_width_mm REAL NOT NULL,
			bbox_height_mm REAL NOT NULL,
			repeat_count INTEGER NOT NULL,
			rotation_fixed INTEGER NOT NULL,
			grain INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sku TEXT NOT NULL DEFAULT '',
			mold_id TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS product_fabrics (
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			piece_id TEXT NOT NULL,
			material_id TEXT NOT NULL,
			color_id TEXT NOT NULL DEFAULT '',
			consumption REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS product_accessories (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			material_id TEXT NOT NULL,
			color_id TEXT NOT NULL DEFAULT '',
			quantity REAL NOT NULL,
			override_material_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS product_consumption (
			product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			material_id TEXT NOT NULL,
			color_id TEXT NOT NULL DEFAULT '',
			quantity REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stock (
			material_id TEXT NOT NULL,
			color_id TEXT NOT NULL DEFAULT '',
			quantity REAL NOT NULL,
			PRIMARY KEY (material_id, color_id)
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveMaterial inserts or replaces a material.
func (s *Store) SaveMaterial(ctx context.Context, m model.Material) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO materials (id, name, unit, is_fabric, width_mm, cost) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, int(m.Unit), m.IsFabric, m.WidthMM, m.Cost.String())
	if err != nil {
		return fmt.Errorf("failed to save material %s: %w", m.ID, err)
	}
	return nil
}

// SaveColor inserts or replaces a color.
func (s *Store) SaveColor(ctx context.Context, c model.Color) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO colors (id, name, hex) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.Hex)
	if err != nil {
		return fmt.Errorf("failed to save color %s: %w", c.ID, err)
	}
	return nil
}

// SaveMold inserts or updates a mold without touching its pieces.
func (s *Store) SaveMold(ctx context.Context, m model.Mold) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO molds (id, name, format_version, thumbnail) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
		 format_version = excluded.format_version, thumbnail = excluded.thumbnail`,
		m.ID, m.Name, m.FormatVersion, m.Thumbnail)
	if err != nil {
		return fmt.Errorf("failed to save mold %s: %w", m.ID, err)
	}
	return nil
}

// ReplacePieces deletes every piece of the mold and inserts pieces in one
// transaction. A re-import always replaces the full set.
func (s *Store) ReplacePieces(ctx context.Context, moldID string, pieces []model.Piece) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pieces WHERE mold_id = ?`, moldID); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO pieces
			(id, mold_id, name, geometry, net_area_mm2, bbox_width_mm, bbox_height_mm, repeat_count, rotation_fixed, grain)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range pieces {
			geom, err := json.Marshal(p.Geometry)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, p.ID, moldID, p.Name, string(geom), p.NetAreaMM2,
				p.BBoxWidthMM, p.BBoxHeightMM, p.RepeatCount, p.RotationFixed, int(p.Grain)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace pieces of mold %s: %w", moldID, err)
	}
	s.logger.Info("pieces replaced", zap.String("mold", moldID), zap.Int("count", len(pieces)))
	return nil
}

// SaveProduct inserts or replaces a product together with its fabric and
// accessory BOM and consumption cache.
func (s *Store) SaveProduct(ctx context.Context, p model.Product) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (id, name, sku, mold_id) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET name = excluded.name, sku = excluded.sku, mold_id = excluded.mold_id`,
			p.ID, p.Name, p.SKU, p.MoldID); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM product_fabrics WHERE product_id = ?`,
			`DELETE FROM product_accessories WHERE product_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, p.ID); err != nil {
				return err
			}
		}
		for _, f := range p.Fabrics {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO product_fabrics (product_id, piece_id, material_id, color_id, consumption) VALUES (?, ?, ?, ?, ?)`,
				p.ID, f.PieceID, f.MaterialID, f.ColorID, f.Consumption); err != nil {
				return err
			}
		}
		for _, a := range p.Accessories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO product_accessories (id, product_id, material_id, color_id, quantity, override_material_id) VALUES (?, ?, ?, ?, ?, ?)`,
				a.ID, p.ID, a.MaterialID, a.ColorID, a.Quantity, a.OverrideMaterialID); err != nil {
				return err
			}
		}
		return replaceConsumption(ctx, tx, p.ID, p.Consumption)
	})
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}
	return nil
}

// SaveConsumption replaces a product's cached fabric consumption.
func (s *Store) SaveConsumption(ctx context.Context, productID string, entries []model.ConsumptionEntry) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return replaceConsumption(ctx, tx, productID, entries)
	})
	if err != nil {
		return fmt.Errorf("failed to save consumption of product %s: %w", productID, err)
	}
	return nil
}

func replaceConsumption(ctx context.Context, tx *sql.Tx, productID string, entries []model.ConsumptionEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_consumption WHERE product_id = ?`, productID); err != nil {
		return err
	}
	for _, c := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_consumption (product_id, material_id, color_id, quantity) VALUES (?, ?, ?, ?)`,
			productID, c.MaterialID, c.ColorID, c.Quantity); err != nil {
			return err
		}
	}
	return nil
}
