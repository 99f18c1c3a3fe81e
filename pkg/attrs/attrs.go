// Package attrs reads slog-style key/value lists ([k1, v1, k2, v2, ...]) so
// a log call's attributes can be reused as structured data.
package attrs

import "fmt"

// Extract returns the value following key when it has type T.
func Extract[T any](kv []any, key string) (T, bool) {
	var zero T
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok && k == key {
			v, ok := kv[i+1].(T)
			if !ok {
				return zero, false
			}
			return v, true
		}
	}
	return zero, false
}

// ExtractString returns the string value for key, or "".
func ExtractString(kv []any, key string) string {
	v, _ := Extract[string](kv, key)
	return v
}

// Strings renders every pair except the skipped keys with fmt.Sprint.
// Non-string keys and a trailing key without value are ignored.
func Strings(kv []any, skip ...string) map[string]string {
	out := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || contains(skip, k) {
			continue
		}
		out[k] = fmt.Sprint(kv[i+1])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
