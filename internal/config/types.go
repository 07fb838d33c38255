package config

// Config is the full application configuration. It is decoded strictly:
// unknown keys fail the load so typos surface immediately instead of
// silently falling back to defaults.
type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Storage controls the optional persistence layer.
	//
	// Example:
	//
	//	"storage": { "driver": "sqlite", "path": "./agenda.db" }
	Storage *StorageConfig `json:"storage,omitempty"`

	Scheduler SchedulerConfig `json:"scheduler"`

	// Seed lists tasks applied on startup (and on every config reload)
	// through the ordinary upsert path, so re-applying is harmless.
	Seed []SeedEntry `json:"seed,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type SchedulerConfig struct {
	// StorageKey names the blob the engine state lives under. Distinct
	// keys over the same backend are fully independent schedules.
	// Empty means the engine default.
	StorageKey string `json:"storage_key,omitempty"`
}

// SeedEntry is one task definition in compact string form. Repeat and
// Policy use the string grammar parsed by internal/seed, e.g.
// "daily@09:00", "weekly:mon@10:30", "monthly:15@08:00",
// "once@2024-06-01T14:00" and "anytime", "window:0..180".
type SeedEntry struct {
	ID             string `json:"id,omitempty"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Instructions   string `json:"instructions,omitempty"`
	LinkedResource string `json:"linked_resource,omitempty"`
	Start          string `json:"start,omitempty"` // YYYY-MM-DD; required unless repeat is once
	End            string `json:"end,omitempty"`   // YYYY-MM-DD, exclusive
	Repeat         string `json:"repeat"`
	Policy         string `json:"policy,omitempty"` // default anytime
}
