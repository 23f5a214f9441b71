package redraw

import (
	"errors"
	"fmt"
)

// ErrorKind names the shape a decoder expected when it met a raw value it
// could not convert.
type ErrorKind int

const (
	KindArray ErrorKind = iota
	KindMap
	KindString
	KindU64
	KindI64
	KindF64
	KindBool
	KindWindowAnchor
	KindFormat
)

func (k ErrorKind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindString:
		return "string"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindWindowAnchor:
		return "window anchor"
	case KindFormat:
		return "event"
	default:
		return "unknown"
	}
}

// ParseError reports a payload that does not match the shape a known event
// requires. Value holds the offending raw value.
type ParseError struct {
	Kind   ErrorKind
	Value  any
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid %s format %s: %v", e.Kind, e.Detail, e.Value)
	}
	return fmt.Sprintf("invalid %s format %v", e.Kind, e.Value)
}

// IsKind reports whether err is a ParseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *ParseError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == kind
}

func newParseError(kind ErrorKind, value any) *ParseError {
	return &ParseError{Kind: kind, Value: value}
}

func formatError(detail string, value any) *ParseError {
	return &ParseError{Kind: KindFormat, Value: value, Detail: detail}
}
