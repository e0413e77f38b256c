// Package export writes requirement reports and cutting-room labels to
// PDF, Excel and msgpack files.
package export

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/MoldCut/internal/engine"
	"github.com/piwi3910/MoldCut/internal/model"
)

// ReportData is everything a report output needs, already resolved against
// the catalog and stock.
type ReportData struct {
	Title        string
	GeneratedAt  time.Time
	Orders       int
	WastePercent float64
	Estimate     model.PurchaseEstimate
	Unresolved   []engine.Unresolved
	colors       map[string]string
}

// NewReportData prices the aggregated requirements against stock and the
// catalog. A waste allowance, if any, is expected to be applied to the report
// already; wastePercent is only shown.
func NewReportData(title string, orders int, res engine.AggregateResult, inv model.Inventory, cat *model.Catalog, wastePercent float64) ReportData {
	colors := make(map[string]string, len(cat.Colors))
	for id, c := range cat.Colors {
		colors[id] = c.Name
	}
	return ReportData{
		Title:        title,
		GeneratedAt:  time.Now().UTC(),
		Orders:       orders,
		WastePercent: wastePercent,
		Estimate:     model.CalculatePurchaseEstimate(res.Report, inv, cat),
		Unresolved:   res.Unresolved,
		colors:       colors,
	}
}

// ColorName returns the display name for a color ID, the ID itself when the
// color is unknown, or "-" for no color.
func (d ReportData) ColorName(id string) string {
	if id == "" {
		return "-"
	}
	if name, ok := d.colors[id]; ok {
		return name
	}
	return id
}

// WriteText writes the purchase report as an aligned plain-text table.
func WriteText(w io.Writer, data ReportData) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Material\tColor\tUnit\tRequired\tIn Stock\tTo Buy\tCost\t")
	for _, l := range data.Estimate.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t\n",
			l.MaterialName, data.ColorName(l.Key.ColorID), l.Unit, l.Required, l.Available, l.Shortfall, l.Cost.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t\t\tTotal\t%s\t\n", data.Estimate.TotalCost.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, k := range data.Estimate.Unknown {
		fmt.Fprintf(w, "warning: material %s is not in the catalog\n", k.MaterialID)
	}
	for _, u := range data.Unresolved {
		fmt.Fprintf(w, "warning: order %s, product %s: %s\n", u.OrderID, u.ProductID, u.Reason)
	}
	return nil
}
