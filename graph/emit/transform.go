package emit

import (
	"math/rand"
	"strings"
)

// Filter transforms or drops a captured Event before it reaches a sink.
// Returning ok == false drops the event. Filters compose in the order
// they are listed on a Pipeline: include/exclude, then redact, then
// truncate, then sample.
type Filter func(Event) (Event, bool)

// IncludeTypes keeps only events whose Msg is in types.
func IncludeTypes(types ...string) Filter {
	allow := make(map[string]bool, len(types))
	for _, t := range types {
		allow[t] = true
	}
	return func(e Event) (Event, bool) {
		return e, allow[e.Msg]
	}
}

// ExcludeTypes drops events whose Msg is in types.
func ExcludeTypes(types ...string) Filter {
	deny := make(map[string]bool, len(types))
	for _, t := range types {
		deny[t] = true
	}
	return func(e Event) (Event, bool) {
		return e, !deny[e.Msg]
	}
}

// RedactKeys replaces the value of any Meta entry whose key matches one
// of the given substrings (case-insensitive) with "[redacted]". Typical
// patterns: "password", "api_key", "token", "secret".
func RedactKeys(patterns ...string) Filter {
	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
	}
	return func(e Event) (Event, bool) {
		if len(e.Meta) == 0 {
			return e, true
		}
		redacted := make(map[string]interface{}, len(e.Meta))
		for k, v := range e.Meta {
			lk := strings.ToLower(k)
			matched := false
			for _, p := range lowered {
				if strings.Contains(lk, p) {
					matched = true
					break
				}
			}
			if matched {
				redacted[k] = "[redacted]"
			} else {
				redacted[k] = v
			}
		}
		e.Meta = redacted
		return e, true
	}
}

// TruncateStrings caps every string value in Meta (and the Msg field
// itself is left untouched — it is a type tag, not content) at maxLen
// runes, appending an ellipsis marker when truncation occurs.
func TruncateStrings(maxLen int) Filter {
	if maxLen <= 0 {
		return func(e Event) (Event, bool) { return e, true }
	}
	return func(e Event) (Event, bool) {
		if len(e.Meta) == 0 {
			return e, true
		}
		truncated := make(map[string]interface{}, len(e.Meta))
		for k, v := range e.Meta {
			if s, ok := v.(string); ok {
				truncated[k] = truncateString(s, maxLen)
			} else {
				truncated[k] = v
			}
		}
		e.Meta = truncated
		return e, true
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "…[truncated]"
}

// Sample keeps each event with probability rate (0..1). rate >= 1 keeps
// everything; rate <= 0 drops everything. Used by the "production"
// preset to bound debug volume on high-traffic graphs.
func Sample(rate float64) Filter {
	return func(e Event) (Event, bool) {
		if rate >= 1 {
			return e, true
		}
		if rate <= 0 {
			return e, false
		}
		return e, rand.Float64() < rate
	}
}
