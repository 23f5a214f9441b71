package settings

import (
	"errors"
	"fmt"
	"math"
)

var ErrValueType = errors.New("setting value has the wrong type")

func typeError(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %v (%T)", ErrValueType, want, v, v)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	}
	if n, ok := asInt64(v); ok && n >= 0 {
		return uint64(n), true
	}
	return 0, false
}

func toUint64(v any) (uint64, error) {
	if n, ok := asUint64(v); ok {
		return n, nil
	}
	return 0, typeError("unsigned integer", v)
}

func toUint32(v any) (uint32, error) {
	n, ok := asUint64(v)
	if !ok || n > math.MaxUint32 {
		return 0, typeError("32-bit unsigned integer", v)
	}
	return uint32(n), nil
}

func toInt32(v any) (int32, error) {
	if n, ok := asInt64(v); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
		return int32(n), nil
	}
	if n, ok := asUint64(v); ok && n <= math.MaxInt32 {
		return int32(n), nil
	}
	return 0, typeError("32-bit integer", v)
}

// toFloat32 accepts integers as well; g:xvim_transparency = 1 is common.
func toFloat32(v any) (float32, error) {
	switch n := v.(type) {
	case float32:
		return n, nil
	case float64:
		return float32(n), nil
	}
	if n, ok := asInt64(v); ok {
		return float32(n), nil
	}
	if n, ok := asUint64(v); ok {
		return float32(n), nil
	}
	return 0, typeError("number", v)
}

// toBool follows vimscript truthiness for integers: v:true and 1 are both
// true.
func toBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if n, ok := asInt64(v); ok {
		return n != 0, nil
	}
	if n, ok := asUint64(v); ok {
		return n != 0, nil
	}
	return false, typeError("boolean", v)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", typeError("string", v)
}
