package model

import "sort"

// RequirementKey identifies one accumulated material requirement.
// An empty ColorID means the material is used without a color variant.
type RequirementKey struct {
	MaterialID string `json:"material_id" msgpack:"material_id"`
	ColorID    string `json:"color_id,omitempty" msgpack:"color_id,omitempty"`
}

// RequirementsReport accumulates canonical quantities per (material, color).
type RequirementsReport map[RequirementKey]float64

func NewRequirementsReport() RequirementsReport {
	return make(RequirementsReport)
}

// Add accumulates qty under key. Non-positive quantities are ignored so the
// report never holds negative values.
func (r RequirementsReport) Add(key RequirementKey, qty float64) {
	if qty <= 0 {
		return
	}
	r[key] += qty
}

// Merge adds every entry of other into r.
func (r RequirementsReport) Merge(other RequirementsReport) {
	for k, v := range other {
		r.Add(k, v)
	}
}

// Keys returns the report keys ordered by material then color.
func (r RequirementsReport) Keys() []RequirementKey {
	keys := make([]RequirementKey, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].MaterialID != keys[j].MaterialID {
			return keys[i].MaterialID < keys[j].MaterialID
		}
		return keys[i].ColorID < keys[j].ColorID
	})
	return keys
}

// Total returns the summed quantity of all entries for one material.
func (r RequirementsReport) Total(materialID string) float64 {
	var total float64
	for k, v := range r {
		if k.MaterialID == materialID {
			total += v
		}
	}
	return total
}

// MergeReports returns a new report holding the key-wise sum of all inputs.
func MergeReports(reports ...RequirementsReport) RequirementsReport {
	out := NewRequirementsReport()
	for _, r := range reports {
		out.Merge(r)
	}
	return out
}
