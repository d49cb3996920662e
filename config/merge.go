package config

import "strings"

// MergeMaps deep-merges src into dst. Nested maps merge key by key; any other
// value in src replaces the one in dst.
func MergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				MergeMaps(existing, mv)
				continue
			}
		}
		dst[k] = v
	}
}

// FoldKeys returns a copy of m with every map key lowercased, including maps
// nested in slices. Sources disagree on case (env keys arrive lowercased,
// YAML keeps camelCase) and the binder matches case-insensitively, so keys
// are folded before merging to make later sources override earlier ones.
func FoldKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		k = strings.ToLower(k)
		v = foldValue(v)
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := out[k].(map[string]any); ok {
				MergeMaps(existing, mv)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func foldValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FoldKeys(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = foldValue(e)
		}
		return out
	default:
		return v
	}
}
