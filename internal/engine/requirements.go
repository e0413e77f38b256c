package engine

import (
	"sync"

	"github.com/piwi3910/MoldCut/internal/model"
	"go.uber.org/zap"
)

// Catalog is the read-only view of catalog entities the aggregator needs.
// *model.Catalog satisfies it.
type Catalog interface {
	Material(id string) (model.Material, bool)
	Piece(id string) (model.Piece, bool)
	Product(id string) (model.Product, bool)
}

// Unresolved describes an order line, or part of one, that contributed
// nothing because catalog data was missing.
type Unresolved struct {
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// AggregateResult is a requirements report plus the lines that could not be
// fully resolved. Flagging them is left to the caller.
type AggregateResult struct {
	Report     model.RequirementsReport
	Unresolved []Unresolved
}

// Aggregator walks orders and accumulates fabric and accessory requirements.
// It never mutates the catalog and keeps no state between calls.
type Aggregator struct {
	catalog      Catalog
	logger       *zap.Logger
	defaultWidth float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for skipped lines.
func WithLogger(l *zap.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDefaultFabricWidth sets the width used for fabrics with no declared width.
func WithDefaultFabricWidth(mm float64) Option {
	return func(a *Aggregator) {
		if mm > 0 {
			a.defaultWidth = mm
		}
	}
}

func NewAggregator(catalog Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:      catalog,
		logger:       zap.NewNop(),
		defaultWidth: model.DefaultFabricWidthMM,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ComputeRequirements aggregates orders against catalog with default options.
func ComputeRequirements(catalog Catalog, orders []model.Order) model.RequirementsReport {
	return NewAggregator(catalog).Aggregate(orders)
}

// Aggregate returns the requirements report for orders.
func (a *Aggregator) Aggregate(orders []model.Order) model.RequirementsReport {
	return a.AggregateDetailed(orders).Report
}

// AggregateDetailed returns the report together with unresolved lines.
func (a *Aggregator) AggregateDetailed(orders []model.Order) AggregateResult {
	res := AggregateResult{Report: model.NewRequirementsReport()}
	for _, order := range orders {
		for _, line := range order.Lines {
			a.aggregateLine(order.ID, line, &res)
		}
	}
	return res
}

func (a *Aggregator) unresolved(res *AggregateResult, orderID, productID, reason string) {
	res.Unresolved = append(res.Unresolved, Unresolved{OrderID: orderID, ProductID: productID, Reason: reason})
	a.logger.Debug("order line contributes nothing",
		zap.String("order", orderID),
		zap.String("product", productID),
		zap.String("reason", reason))
}

func (a *Aggregator) aggregateLine(orderID string, line model.OrderLine, res *AggregateResult) {
	if line.Quantity <= 0 {
		return
	}
	product, ok := a.catalog.Product(line.ProductID)
	if !ok {
		a.unresolved(res, orderID, line.ProductID, "unknown product")
		return
	}
	if !product.Configured() && len(line.PieceOverrides) == 0 {
		a.unresolved(res, orderID, product.ID, "unconfigured product")
		return
	}

	// Piece overrides replace the product's standard fabrics entirely.
	if len(line.PieceOverrides) > 0 {
		a.dynamicFabrics(orderID, product, line, res)
	} else {
		a.standardFabrics(orderID, product, line, res)
	}
	a.accessories(orderID, product, line, res)
}

// dynamicFabrics estimates fabric length for every piece override from the
// stored piece bbox and the chosen fabric's width.
func (a *Aggregator) dynamicFabrics(orderID string, product model.Product, line model.OrderLine, res *AggregateResult) {
	for _, ov := range line.PieceOverrides {
		if ov.MaterialID == "" {
			continue
		}
		piece, ok := a.catalog.Piece(ov.PieceID)
		if !ok {
			a.unresolved(res, orderID, product.ID, "unknown piece "+ov.PieceID)
			continue
		}
		fabric, ok := a.catalog.Material(ov.MaterialID)
		if !ok {
			a.unresolved(res, orderID, product.ID, "unknown material "+ov.MaterialID)
			continue
		}
		length := EstimatePiece(piece, line.Quantity, fabric.FabricWidth(a.defaultWidth))
		res.Report.Add(model.RequirementKey{MaterialID: fabric.ID, ColorID: ov.ColorID}, length)
	}
}

// standardFabrics uses the product's consumption cache, or its fabric BOM
// when the cache is empty. Both hold canonical quantities per unit.
func (a *Aggregator) standardFabrics(orderID string, product model.Product, line model.OrderLine, res *AggregateResult) {
	qty := float64(line.Quantity)
	if len(product.Consumption) > 0 {
		for _, c := range product.Consumption {
			if _, ok := a.catalog.Material(c.MaterialID); !ok {
				a.unresolved(res, orderID, product.ID, "unknown material "+c.MaterialID)
				continue
			}
			res.Report.Add(model.RequirementKey{MaterialID: c.MaterialID, ColorID: c.ColorID}, c.Quantity*qty)
		}
		return
	}
	for _, f := range product.Fabrics {
		if _, ok := a.catalog.Material(f.MaterialID); !ok {
			a.unresolved(res, orderID, product.ID, "unknown material "+f.MaterialID)
			continue
		}
		res.Report.Add(model.RequirementKey{MaterialID: f.MaterialID, ColorID: f.ColorID}, f.Consumption*qty)
	}
}

// accessories converts each accessory BOM quantity to canonical units of the
// effective material and scales it by the line quantity.
func (a *Aggregator) accessories(orderID string, product model.Product, line model.OrderLine, res *AggregateResult) {
	for _, acc := range product.Accessories {
		materialID := acc.MaterialID
		if acc.OverrideMaterialID != "" {
			materialID = acc.OverrideMaterialID
		}
		colorID := acc.ColorID
		if ov, ok := line.FindAccessoryOverride(acc.ID); ok {
			if ov.MaterialID != "" {
				materialID = ov.MaterialID
			}
			if ov.ColorID != "" {
				colorID = ov.ColorID
			}
		}

		m, ok := a.catalog.Material(materialID)
		if !ok {
			a.unresolved(res, orderID, product.ID, "unknown material "+materialID)
			continue
		}
		if acc.Quantity < 0 {
			a.logger.Warn("negative accessory quantity ignored",
				zap.String("product", product.ID),
				zap.String("material", m.ID),
				zap.Float64("quantity", acc.Quantity))
			continue
		}
		res.Report.Add(model.RequirementKey{MaterialID: m.ID, ColorID: colorID}, m.ToCanonical(acc.Quantity)*float64(line.Quantity))
	}
}

// AggregateParallel aggregates each batch of orders on its own goroutine and
// returns the key-wise sum of the batch reports.
func AggregateParallel(catalog Catalog, batches [][]model.Order, opts ...Option) AggregateResult {
	results := make([]AggregateResult, len(batches))
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []model.Order) {
			defer wg.Done()
			results[i] = NewAggregator(catalog, opts...).AggregateDetailed(batch)
		}(i, batch)
	}
	wg.Wait()

	merged := AggregateResult{Report: model.NewRequirementsReport()}
	for _, r := range results {
		merged.Report.Merge(r.Report)
		merged.Unresolved = append(merged.Unresolved, r.Unresolved...)
	}
	return merged
}
