package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/piwi3910/MoldCut/internal/engine"
	"github.com/piwi3910/MoldCut/internal/export"
	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/piwi3910/MoldCut/internal/project"
	"go.uber.org/zap"
)

// splitOrders cuts orders into at most n contiguous batches.
func splitOrders(orders []model.Order, n int) [][]model.Order {
	if n < 1 {
		n = 1
	}
	if n > len(orders) {
		n = len(orders)
	}
	batches := make([][]model.Order, 0, n)
	size := (len(orders) + n - 1) / max(n, 1)
	for start := 0; start < len(orders); start += size {
		end := min(start+size, len(orders))
		batches = append(batches, orders[start:end])
	}
	return batches
}

func (a *App) runReport(ctx context.Context, args []string) error {
	fs := a.newFlagSet("report")
	db := fs.String("db", "", "catalog database path")
	ordersPath := fs.String("orders", "", "orders JSON file")
	format := fs.String("format", "text", "output format: text, xlsx, pdf, msgpack")
	out := fs.String("out", "", "output file (default: requirements.<format> in the export directory)")
	title := fs.String("title", "Material Requirements", "report title")
	waste := fs.Float64("waste", 0, "fabric waste allowance in percent")
	workers := fs.Int("workers", 1, "aggregate orders on this many goroutines")
	consume := fs.Bool("consume", false, "deduct the requirements from stock after reporting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ordersPath == "" {
		return fmt.Errorf("%w: report needs -orders", ErrUsage)
	}

	orders, err := project.LoadOrders(*ordersPath)
	if err != nil {
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
	inv, err := s.LoadInventory(ctx)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithLogger(a.Logger),
		engine.WithDefaultFabricWidth(a.Config.FabricWidth()),
	}
	var res engine.AggregateResult
	if *workers > 1 && len(orders) > 1 {
		res = engine.AggregateParallel(cat, splitOrders(orders, *workers), opts...)
	} else {
		res = engine.NewAggregator(cat, opts...).AggregateDetailed(orders)
	}

	var summary model.WasteSummary
	res.Report, summary = model.ApplyWaste(res.Report, *waste, cat)
	for _, u := range res.Unresolved {
		a.Logger.Warn("order line unresolved",
			zap.String("order", u.OrderID), zap.String("product", u.ProductID), zap.String("reason", u.Reason))
	}

	data := export.NewReportData(*title, len(orders), res, inv, cat, *waste)
	a.Logger.Info("requirements aggregated",
		zap.Int("orders", len(orders)),
		zap.Int("keys", len(res.Report)),
		zap.Int("unresolved", len(res.Unresolved)),
		zap.Float64("waste_added_mm", summary.TotalAdded))

	if err := a.writeReport(*format, *out, res.Report, data); err != nil {
		return err
	}
	if !*consume {
		return nil
	}

	var taken float64
	for _, k := range res.Report.Keys() {
		taken += inv.Consume(k, res.Report[k])
	}
	if err := s.SaveInventory(ctx, inv); err != nil {
		return err
	}
	a.Logger.Info("stock consumed", zap.Float64("taken", taken))
	return nil
}

func (a *App) writeReport(format, out string, report model.RequirementsReport, data export.ReportData) error {
	switch format {
	case "text":
		if out == "" {
			return export.WriteText(a.Out, data)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		return export.WriteText(f, data)
	case "xlsx":
		return a.writeFile(export.ExportXLSX, a.outputPath(out, "requirements.xlsx"), data)
	case "pdf":
		return a.writeFile(export.ExportPDF, a.outputPath(out, "requirements.pdf"), data)
	case "msgpack":
		path := a.outputPath(out, "requirements.msgpack")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create snapshot file: %w", err)
		}
		defer f.Close()
		if err := export.EncodeSnapshot(f, report, data); err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "Wrote %s\n", path)
		return nil
	default:
		return fmt.Errorf("%w: unknown format %q", ErrUsage, format)
	}
}

func (a *App) writeFile(write func(string, export.ReportData) error, path string, data export.ReportData) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := write(path, data); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", path)
	return nil
}

func (a *App) runCompare(ctx context.Context, args []string) error {
	fs := a.newFlagSet("compare")
	db := fs.String("db", "", "catalog database path")
	moldID := fs.String("mold", "", "mold ID")
	qty := fs.Int("qty", 1, "number of products to cut")
	width := fs.Float64("width", 0, "current fabric width in mm (default: configured width)")
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
	mold, ok := cat.Molds[*moldID]
	if !ok {
		return fmt.Errorf("mold %q not found", *moldID)
	}
	pieces := cat.MoldPieces(mold.ID)
	if len(pieces) == 0 {
		return fmt.Errorf("mold %s has no pieces", mold.ID)
	}

	current := *width
	if current <= 0 {
		current = a.Config.FabricWidth()
	}
	results := engine.CompareFabricWidths(engine.BuildDefaultScenarios(current), pieces, *qty)

	fmt.Fprintf(a.Out, "%s, %d products\n", mold.Name, *qty)
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tWidth (mm)\tLength (m)\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.0f\t%.3f\t\n", r.Scenario.Name, r.Scenario.WidthMM, r.LengthMM/1000)
	}
	return tw.Flush()
}

func (a *App) runLabels(ctx context.Context, args []string) error {
	fs := a.newFlagSet("labels")
	db := fs.String("db", "", "catalog database path")
	moldID := fs.String("mold", "", "mold ID")
	qty := fs.Int("qty", 1, "number of products being cut")
	out := fs.String("out", "", "output PDF (default: labels-<mold>.pdf in the export directory)")
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
	mold, ok := cat.Molds[*moldID]
	if !ok {
		return fmt.Errorf("mold %q not found", *moldID)
	}

	path := a.outputPath(*out, fmt.Sprintf("labels-%s.pdf", mold.ID))
	if err := export.ExportLabels(path, mold, cat.MoldPieces(mold.ID), *qty); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", path)
	return nil
}

func (a *App) runBackup(ctx context.Context, args []string) error {
	fs := a.newFlagSet("backup")
	db := fs.String("db", "", "catalog database path")
	out := fs.String("out", "", "backup file (default: moldcut-backup.json in the export directory)")
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
	inv, err := s.LoadInventory(ctx)
	if err != nil {
		return err
	}

	path := a.outputPath(*out, "moldcut-backup.json")
	if err := project.ExportAllData(path, a.Config, inv, cat); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", path)
	return nil
}

func (a *App) runRestore(ctx context.Context, args []string) error {
	fs := a.newFlagSet("restore")
	db := fs.String("db", "", "catalog database path")
	withConfig := fs.Bool("config", false, "also restore the app config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: restore needs exactly one backup file", ErrUsage)
	}

	backup, err := project.ImportAllData(fs.Arg(0))
	if err != nil {
		return err
	}

	s, err := a.openStore(*db)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SaveCatalog(ctx, backup.Catalog); err != nil {
		return err
	}
	if err := s.SaveInventory(ctx, backup.Inventory); err != nil {
		return err
	}
	if *withConfig {
		a.Config = backup.Config
		a.saveConfig()
	}
	fmt.Fprintf(a.Out, "Restored %d materials, %d molds, %d products, %d stock entries\n",
		len(backup.Catalog.Materials), len(backup.Catalog.Molds), len(backup.Catalog.Products), len(backup.Inventory.Stock))
	return nil
}
