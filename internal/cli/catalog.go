package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/piwi3910/MoldCut/internal/engine"
	"github.com/piwi3910/MoldCut/internal/importer"
	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/piwi3910/MoldCut/internal/project"
	"go.uber.org/zap"
)

func (a *App) runImport(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import")
	db := fs.String("db", "", "catalog database path")
	moldID := fs.String("mold", "", "existing mold ID to re-import into (default: new mold)")
	name := fs.String("name", "", "mold name (default: file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: import needs exactly one pattern file", ErrUsage)
	}
	path := fs.Arg(0)

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	mold, ok := cat.Molds[*moldID]
	if !ok {
		if *moldID != "" {
			return fmt.Errorf("mold %s not found", *moldID)
		}
		mold = model.NewMold(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if *name != "" {
		mold.Name = *name
	}

	var pieces []model.Piece
	if strings.EqualFold(filepath.Ext(path), ".dxf") {
		res := importer.ImportDXF(path, mold.ID)
		a.printMessages(res.Errors, res.Warnings)
		if len(res.Errors) > 0 {
			return fmt.Errorf("DXF import of %s failed", path)
		}
		pieces = res.Pieces
	} else {
		res, err := importer.ImportPatternFile(path, mold.ID, importer.WithLogger(a.Logger))
		if err != nil {
			return err
		}
		a.printMessages(nil, res.Warnings)
		mold.FormatVersion = res.Version
		mold.Thumbnail = res.Thumbnail
		pieces = res.Pieces
	}

	if err := s.SaveMold(ctx, mold); err != nil {
		return err
	}
	if err := s.ReplacePieces(ctx, mold.ID, pieces); err != nil {
		return err
	}

	a.Config.AddRecentMold(path, maxRecentMolds)
	a.saveConfig()
	fmt.Fprintf(a.Out, "Imported %d pieces into mold %s (%s)\n", len(pieces), mold.ID, mold.Name)
	return nil
}

func (a *App) runMaterials(ctx context.Context, args []string) error {
	fs := a.newFlagSet("materials")
	db := fs.String("db", "", "catalog database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: materials needs exactly one CSV or Excel file", ErrUsage)
	}
	path := fs.Arg(0)

	var res importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		res = importer.ImportMaterialsExcel(path)
	default:
		res = importer.ImportMaterialsCSV(path)
	}
	a.printMessages(res.Errors, res.Warnings)
	if len(res.Materials) == 0 {
		return fmt.Errorf("no materials imported from %s", path)
	}

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	for _, m := range res.Materials {
		// Re-importing a sheet updates materials by name instead of duplicating them.
		if existing, ok := cat.FindMaterialByName(m.Name); ok {
			m.ID = existing.ID
		}
		if err := s.SaveMaterial(ctx, m); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.Out, "Imported %d materials (%d rows rejected)\n", len(res.Materials), len(res.Errors))
	return nil
}

func (a *App) runStock(ctx context.Context, args []string) error {
	fs := a.newFlagSet("stock")
	db := fs.String("db", "", "catalog database path")
	replace := fs.Bool("replace", false, "replace stock instead of adding to it")
	exportPath := fs.String("export", "", "also write the resulting stock to this JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: stock takes at most one inventory JSON file", ErrUsage)
	}

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	var inv model.Inventory
	if fs.NArg() == 0 {
		// Without a file the stock table is synced from the default stock file.
		var path string
		inv, path, err = project.LoadOrCreateInventory()
		if err != nil {
			return fmt.Errorf("failed to read inventory file: %w", err)
		}
		a.Logger.Info("stock synced from default file", zap.String("path", path))
	} else {
		inv = model.DefaultInventory()
		if !*replace {
			if inv, err = s.LoadInventory(ctx); err != nil {
				return err
			}
		}
		if inv, err = project.ImportInventory(fs.Arg(0), inv); err != nil {
			return fmt.Errorf("failed to read inventory file: %w", err)
		}
	}

	if err := s.SaveInventory(ctx, inv); err != nil {
		return err
	}
	if *exportPath != "" {
		if err := project.SaveInventory(*exportPath, inv); err != nil {
			return fmt.Errorf("failed to write inventory file: %w", err)
		}
	}
	fmt.Fprintf(a.Out, "Stock now holds %d entries\n", len(inv.Stock))
	return nil
}

func (a *App) runConsumption(ctx context.Context, args []string) error {
	fs := a.newFlagSet("consumption")
	db := fs.String("db", "", "catalog database path")
	productID := fs.String("product", "", "product ID (default: all products with fabrics)")
	batch := fs.Int("batch", 1, "batch size the per-unit consumption is estimated for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	var products []model.Product
	if *productID != "" {
		p, ok := cat.Product(*productID)
		if !ok {
			return fmt.Errorf("product %s not found", *productID)
		}
		products = append(products, p)
	} else {
		for _, p := range cat.Products {
			if len(p.Fabrics) > 0 {
				products = append(products, p)
			}
		}
	}

	for _, p := range products {
		entries := engine.BuildConsumption(cat, p, *batch, a.Config.FabricWidth())
		if err := s.SaveConsumption(ctx, p.ID, entries); err != nil {
			return err
		}
		a.Logger.Debug("consumption rebuilt", zap.String("product", p.ID), zap.Int("entries", len(entries)))
	}
	fmt.Fprintf(a.Out, "Rebuilt consumption for %d products (batch %d)\n", len(products), *batch)
	return nil
}

func (a *App) runProducts(ctx context.Context, args []string) error {
	fs := a.newFlagSet("products")
	db := fs.String("db", "", "catalog database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	products := make([]model.Product, 0, len(cat.Products))
	for _, p := range cat.Products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tSKU\tMold\tFabrics\tTrims\tUnit Cost\t")
	for _, p := range products {
		mold := p.MoldID
		if m, ok := cat.Molds[p.MoldID]; ok {
			mold = m.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t\n",
			p.ID, p.Name, p.SKU, mold, len(p.Fabrics), len(p.Accessories), model.ProductCost(p, cat).StringFixed(2))
	}
	return tw.Flush()
}
