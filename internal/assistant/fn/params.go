package fn

import (
	"time"
)

// Argument payloads arrive as generic JSON maps; these helpers extract
// loosely-typed values without panicking on whatever the model sends.

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func stringSliceParam(params map[string]any, key string) []string {
	raw, ok := params[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func boolParam(params map[string]any, key string) bool {
	v, _ := params[key].(bool)
	return v
}

// dateParam parses a YYYY-MM-DD value. The ok result is false when the key
// is present but unparseable.
func dateParam(params map[string]any, key string) (*time.Time, bool) {
	raw := stringParam(params, key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
