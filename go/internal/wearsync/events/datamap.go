package events

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DataMap is the flat key-value body of a record. Getters never fail: a missing or
// malformed value yields the supplied default.
type DataMap map[string]any

// String returns the string stored at key, or def.
func (m DataMap) String(key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return def
	}
}

// Int returns the integer stored at key, or def.
func (m DataMap) Int(key string, def int) int {
	n, ok := m.number(key)
	if !ok || n > math.MaxInt32 || n < math.MinInt32 {
		return def
	}
	return int(n)
}

// Int64 returns the 64-bit integer stored at key, or def.
func (m DataMap) Int64(key string, def int64) int64 {
	n, ok := m.number(key)
	if !ok {
		return def
	}
	return n
}

// Bool returns the boolean stored at key, or def.
func (m DataMap) Bool(key string, def bool) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return def
		}
		return parsed
	default:
		return def
	}
}

func (m DataMap) number(key string) (int64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > 1<<62 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Clone returns a shallow copy of the map.
func (m DataMap) Clone() DataMap {
	out := make(DataMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
