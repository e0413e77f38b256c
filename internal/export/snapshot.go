package export

import (
	"fmt"
	"io"
	"time"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion is the msgpack snapshot layout written by EncodeSnapshot.
const SnapshotVersion = 1

// SnapshotEntry is one requirement line in wire form. Quantities are
// canonical; cost fields are decimal strings.
type SnapshotEntry struct {
	MaterialID string  `msgpack:"material_id"`
	ColorID    string  `msgpack:"color_id,omitempty"`
	Quantity   float64 `msgpack:"quantity"`
	Shortfall  float64 `msgpack:"shortfall"` // display units
	Cost       string  `msgpack:"cost"`
}

// Snapshot is a compact, self-describing copy of a requirements run for the
// purchasing system.
type Snapshot struct {
	Version     int             `msgpack:"version"`
	GeneratedAt int64           `msgpack:"generated_at"` // unix seconds
	Orders      int             `msgpack:"orders"`
	TotalCost   string          `msgpack:"total_cost"`
	Entries     []SnapshotEntry `msgpack:"entries"`
	Unresolved  []string        `msgpack:"unresolved,omitempty"`
}

// NewSnapshot converts a requirements report and its report data to wire form.
// Entries follow the report's key order.
func NewSnapshot(report model.RequirementsReport, data ReportData) Snapshot {
	lines := make(map[model.RequirementKey]model.PurchaseLine, len(data.Estimate.Lines))
	for _, l := range data.Estimate.Lines {
		lines[l.Key] = l
	}

	s := Snapshot{
		Version:     SnapshotVersion,
		GeneratedAt: data.GeneratedAt.Unix(),
		Orders:      data.Orders,
		TotalCost:   data.Estimate.TotalCost.StringFixed(2),
	}
	for _, k := range report.Keys() {
		e := SnapshotEntry{MaterialID: k.MaterialID, ColorID: k.ColorID, Quantity: report[k], Cost: "0.00"}
		if l, ok := lines[k]; ok {
			e.Shortfall = l.Shortfall
			e.Cost = l.Cost.StringFixed(2)
		}
		s.Entries = append(s.Entries, e)
	}
	for _, u := range data.Unresolved {
		s.Unresolved = append(s.Unresolved, fmt.Sprintf("%s/%s: %s", u.OrderID, u.ProductID, u.Reason))
	}
	return s
}

// ToReport rebuilds the canonical requirements report from a snapshot.
func (s Snapshot) ToReport() model.RequirementsReport {
	r := model.NewRequirementsReport()
	for _, e := range s.Entries {
		r.Add(model.RequirementKey{MaterialID: e.MaterialID, ColorID: e.ColorID}, e.Quantity)
	}
	return r
}

// Time returns the generation time of the snapshot.
func (s Snapshot) Time() time.Time {
	return time.Unix(s.GeneratedAt, 0).UTC()
}

// EncodeSnapshot writes a msgpack snapshot of the report to w.
func EncodeSnapshot(w io.Writer, report model.RequirementsReport, data ReportData) error {
	s := NewSnapshot(report, data)
	if err := msgpack.NewEncoder(w).Encode(&s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return s, nil
}
