// Package datautil provides helpers for shaping record-oriented data:
// nested map flattening, deep merges, record cleaning, grouping,
// sorting and CSV interchange.
package datautil

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
)

// DefaultSeparator joins nested keys in flattened maps.
const DefaultSeparator = "."

// FlattenMap collapses a nested map into a single level, joining key
// paths with sep. An empty sep falls back to DefaultSeparator. Nested
// non-map values are kept as-is.
func FlattenMap(m map[string]any, sep string) map[string]any {
	if sep == "" {
		sep = DefaultSeparator
	}
	out := make(map[string]any, len(m))
	flattenInto(out, "", m, sep)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any, sep string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + sep + k
		}
		if nested, ok := v.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, key, nested, sep)
			continue
		}
		out[key] = v
	}
}

// UnflattenMap rebuilds a nested map from keys joined with sep. The
// inverse of FlattenMap for maps whose leaf values are not themselves
// maps. Later keys overwrite earlier ones on conflict.
func UnflattenMap(m map[string]any, sep string) map[string]any {
	if sep == "" {
		sep = DefaultSeparator
	}
	out := make(map[string]any)
	for k, v := range m {
		parts := strings.Split(k, sep)
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return out
}

// MergeMaps deep-merges src into a copy of dst and returns the result.
// Values present in src win over dst; nested maps are merged
// recursively rather than replaced. Neither input is modified.
func MergeMaps(dst, src map[string]any) (map[string]any, error) {
	out := deepCopyMap(dst)
	if err := mergo.Map(&out, src, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge maps: %w", err)
	}
	return out, nil
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// FilterKeys returns a copy of m containing only the listed keys.
// Keys absent from m are ignored.
func FilterKeys(m map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// OmitKeys returns a copy of m without the listed keys.
func OmitKeys(m map[string]any, keys ...string) map[string]any {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, skip := drop[k]; !skip {
			out[k] = v
		}
	}
	return out
}

// MissingKeys reports which of the required keys are absent from m.
// Returns nil when all are present.
func MissingKeys(m map[string]any, required ...string) []string {
	var missing []string
	for _, k := range required {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// ExtractValues collects the value under key from each record,
// skipping records that lack the key.
func ExtractValues(records []map[string]any, key string) []any {
	out := make([]any, 0, len(records))
	for _, rec := range records {
		if v, ok := rec[key]; ok {
			out = append(out, v)
		}
	}
	return out
}
