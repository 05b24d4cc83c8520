// Package extract pulls loosely formatted values out of user text and
// decoded model parameters.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

var codePattern = regexp.MustCompile(`(?i)(?:id[=: ]*|#)?(\d+)`)

// RestaurantCode returns the first digit run of text, optionally prefixed
// by "id", "id=", "id:" or "#".
func RestaurantCode(text string) (string, bool) {
	m := codePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Int coerces integral numbers and numeric strings to int.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	case float32:
		return Int(float64(n))
	case json.Number:
		return Int(n.String())
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Int(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// String returns v as text; numbers are formatted without a fraction when
// integral.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		if i, ok := Int(s); ok {
			return strconv.Itoa(i)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// Strings accepts a list of strings or a single string.
func Strings(v any) []string {
	switch s := v.(type) {
	case string:
		if t := strings.TrimSpace(s); t != "" {
			return []string{t}
		}
		return nil
	case []string:
		return append([]string(nil), s...)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if t := String(item); t != "" {
				out = append(out, t)
			}
		}
		return out
	default:
		return nil
	}
}
