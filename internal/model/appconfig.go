package model

// AppConfig holds application-wide preferences and engine defaults.
type AppConfig struct {
	// Engine defaults
	DefaultFabricWidthMM float64 `json:"default_fabric_width_mm"` // used when a fabric has no width
	DatabasePath         string  `json:"database_path"`           // SQLite catalog; empty = ~/.moldcut/catalog.db
	ExportDir            string  `json:"export_dir"`              // default directory for reports and labels

	// Application preferences
	LogLevel    string   `json:"log_level"` // "debug", "info", "warn", "error"
	RecentMolds []string `json:"recent_molds"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultFabricWidthMM: DefaultFabricWidthMM,
		LogLevel:             "info",
		RecentMolds:          []string{},
	}
}

// FabricWidth returns the configured default fabric width, falling back to
// DefaultFabricWidthMM when unset.
func (c AppConfig) FabricWidth() float64 {
	if c.DefaultFabricWidthMM > 0 {
		return c.DefaultFabricWidthMM
	}
	return DefaultFabricWidthMM
}

// AddRecentMold records a mold path at the front of the recent list, keeping
// at most max entries without duplicates.
func (c *AppConfig) AddRecentMold(path string, max int) {
	out := []string{path}
	for _, p := range c.RecentMolds {
		if p != path {
			out = append(out, p)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	c.RecentMolds = out
}
