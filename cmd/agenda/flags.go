package main

import (
	"fmt"
	"strings"
)

// kvFlags collects repeated -data key=value pairs into a map.
type kvFlags struct {
	pairs map[string]any
}

func (f *kvFlags) String() string {
	if f == nil || len(f.pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(f.pairs))
	for k, v := range f.pairs {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (f *kvFlags) Set(raw string) error {
	k, v, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("invalid data %q (use key=value)", raw)
	}
	if f.pairs == nil {
		f.pairs = map[string]any{}
	}
	f.pairs[strings.TrimSpace(k)] = v
	return nil
}

func (f *kvFlags) Map() map[string]any {
	if len(f.pairs) == 0 {
		return nil
	}
	return f.pairs
}
