package config

import (
	"fmt"
	"strings"
	"time"
)

// Duration fields in the config are Go duration strings ("500ms",
// "5s", "1m"). Empty means unset; negatives are rejected because no
// timeout here can meaningfully be negative.

// ParseDurationField parses one duration field. field names the config
// path (e.g. "storage.busy_timeout") for error messages.
func ParseDurationField(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", field)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with def substituted
// when the field is unset or zero.
func ParseDurationOrDefault(field, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(field, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
