package operation

import (
	"fmt"
	"maps"
	"math"
)

// Values maps port or parameter names to values.
type Values map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	maps.Copy(out, v)
	return out
}

// Float returns the named value as a float64, accepting any Go numeric kind.
func (v Values) Float(name string) (float64, error) {
	raw, ok := v[name]
	if !ok {
		return 0, fmt.Errorf("value %q not present", name)
	}
	f, err := AsFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", name, err)
	}
	return f, nil
}

// Bool returns the named value as a bool.
func (v Values) Bool(name string) (bool, error) {
	raw, ok := v[name]
	if !ok {
		return false, fmt.Errorf("value %q not present", name)
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("value %q: expected bool, got %T", name, raw)
	}
	return b, nil
}

// AsFloat converts a numeric value to float64.
func AsFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return math.NaN(), fmt.Errorf("expected a number, got %T", raw)
	}
}
