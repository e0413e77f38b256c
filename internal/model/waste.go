package model

// WasteSummary describes a waste allowance applied to a requirements report.
type WasteSummary struct {
	WastePercent float64                    `json:"waste_percent"` // e.g. 10 for 10%
	Added        map[RequirementKey]float64 `json:"-"`
	TotalAdded   float64                    `json:"total_added"` // canonical units, all keys
}

// ApplyWaste returns a copy of the report with every fabric requirement grown
// by wastePercent. Accessories are counted items and stay as they are.
// Materials unknown to the lookup are left unchanged. Non-positive percentages
// return an unchanged copy.
func ApplyWaste(r RequirementsReport, wastePercent float64, materials MaterialLookup) (RequirementsReport, WasteSummary) {
	out := NewRequirementsReport()
	summary := WasteSummary{WastePercent: wastePercent, Added: map[RequirementKey]float64{}}
	for k, v := range r {
		out.Add(k, v)
		if wastePercent <= 0 {
			continue
		}
		m, ok := materials.Material(k.MaterialID)
		if !ok || !m.IsFabric {
			continue
		}
		extra := v * wastePercent / 100
		out.Add(k, extra)
		summary.Added[k] = extra
		summary.TotalAdded += extra
	}
	return out, summary
}
