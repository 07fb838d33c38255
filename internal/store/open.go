package store

import (
	"errors"
	"strings"

	"agenda/pkg/logx"
)

// Open initializes the configured driver.
// It returns (nil, nil) if persistence is disabled.
func Open(cfg Config, log logx.Logger) (KV, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown store driver: " + driver)
	}
}
