package redraw

import (
	"fmt"
	"math"
)

// The msgpack layer hands us loosely typed values: integers arrive as int64 or
// uint64 depending on their encoding, strings may arrive as raw bytes and maps
// may be keyed by any. The helpers below accept every representation and fail
// with a ParseError naming the primitive they wanted.

func toArray(v any) ([]any, error) {
	switch a := v.(type) {
	case []any:
		return a, nil
	case [][]any:
		out := make([]any, len(a))
		for i := range a {
			out[i] = a[i]
		}
		return out, nil
	default:
		return nil, newParseError(KindArray, v)
	}
}

// mapEntry is one key/value pair of a decoded map, in the order the map was
// iterated.
type mapEntry struct {
	Key   string
	Value any
}

func toMap(v any) ([]mapEntry, error) {
	switch m := v.(type) {
	case map[string]any:
		out := make([]mapEntry, 0, len(m))
		for k, val := range m {
			out = append(out, mapEntry{Key: k, Value: val})
		}
		return out, nil
	case map[any]any:
		out := make([]mapEntry, 0, len(m))
		for k, val := range m {
			key, err := toString(k)
			if err != nil {
				return nil, newParseError(KindMap, v)
			}
			out = append(out, mapEntry{Key: key, Value: val})
		}
		return out, nil
	default:
		return nil, newParseError(KindMap, v)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", newParseError(KindString, v)
	}
}

func toU64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case int64:
		if n >= 0 {
			return uint64(n), nil
		}
	case int32:
		if n >= 0 {
			return uint64(n), nil
		}
	case int16:
		if n >= 0 {
			return uint64(n), nil
		}
	case int8:
		if n >= 0 {
			return uint64(n), nil
		}
	case int:
		if n >= 0 {
			return uint64(n), nil
		}
	}
	return 0, newParseError(KindU64, v)
}

func toI64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n), nil
		}
	case uint32:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n), nil
		}
	}
	return 0, newParseError(KindI64, v)
}

func toF64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	if i, err := toI64(v); err == nil {
		return float64(i), nil
	}
	if u, err := toU64(v); err == nil {
		return float64(u), nil
	}
	return 0, newParseError(KindF64, v)
}

func toBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, newParseError(KindBool, v)
}

// extract checks that args holds exactly n positions.
func extract(args []any, n int) ([]any, error) {
	return extractRange(args, n, n)
}

// extractRange checks that args holds between required and total positions
// and pads the result with nil up to total so optional trailing positions can
// be bound by index.
func extractRange(args []any, required, total int) ([]any, error) {
	if len(args) < required || len(args) > total {
		return nil, formatError(arityDetail(required, total, len(args)), args)
	}
	if len(args) == total {
		return args, nil
	}
	out := make([]any, total)
	copy(out, args)
	return out, nil
}

func arityDetail(required, total, got int) string {
	if required == total {
		return fmt.Sprintf("(want %d arguments, got %d)", required, got)
	}
	return fmt.Sprintf("(want %d-%d arguments, got %d)", required, total, got)
}

func optionalU64(v any) (*uint64, error) {
	if v == nil {
		return nil, nil
	}
	n, err := toU64(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalString(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
