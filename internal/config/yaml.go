package config

import (
	"encoding/json"
	"fmt"

	yaml "go.yaml.in/yaml/v3"
)

// yamlToJSON re-encodes a YAML document as JSON so both config formats
// flow through the same strict decoder in Parse. Unknown-key rejection
// lives in one place that way instead of being duplicated per format.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	b, err := json.Marshal(stringKeys(doc))
	if err != nil {
		return nil, fmt.Errorf("yaml->json marshal: %w", err)
	}
	return b, nil
}

// stringKeys rewrites every map key to a string. yaml.v3 can yield
// map[any]any nodes, which encoding/json refuses to marshal.
func stringKeys(v any) any {
	switch node := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, val := range node {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]any:
		for k, val := range node {
			node[k] = stringKeys(val)
		}
		return node
	case []any:
		for i := range node {
			node[i] = stringKeys(node[i])
		}
		return node
	default:
		return v
	}
}
