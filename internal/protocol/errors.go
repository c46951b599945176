package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies one RPC failure outcome.
type Kind int

const (
	// KindNull marks an internally-impossible state. It is a defect,
	// not an expected runtime condition.
	KindNull Kind = iota
	KindConnect
	KindNetwork
	KindDataParse
	KindAuth
	KindStatus
	KindInvalidURL
	KindAlreadyAttached
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindNetwork:
		return "network"
	case KindDataParse:
		return "data_parse"
	case KindAuth:
		return "auth"
	case KindStatus:
		return "status"
	case KindInvalidURL:
		return "invalid_url"
	case KindAlreadyAttached:
		return "already_attached"
	default:
		return "null"
	}
}

// Error is one typed failure surfaced to the immediate caller.
// Code is set for KindStatus only.
type Error struct {
	Kind Kind
	Msg  string
	Code int
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("protocol: daemon status %d", e.Code)
	case e.Err != nil:
		return fmt.Sprintf("protocol: %s: %s: %v", e.Kind, e.Msg, e.Err)
	default:
		return fmt.Sprintf("protocol: %s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed failure with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a typed failure around an underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// NewStatus builds a Status failure carrying the daemon's integer code.
func NewStatus(code int) *Error {
	return &Error{Kind: KindStatus, Code: code}
}

// KindOf extracts the failure kind from err. The second result is
// false when err carries no protocol classification.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return KindNull, false
}

// KindLabel is KindOf flattened for metric labels: "ok" for nil,
// "unclassified" for foreign errors.
func KindLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind, ok := KindOf(err); ok {
		return kind.String()
	}
	return "unclassified"
}

// StatusCode extracts the daemon status code from a KindStatus error.
func StatusCode(err error) (int, bool) {
	var pe *Error
	if errors.As(err, &pe) && pe.Kind == KindStatus {
		return pe.Code, true
	}
	return 0, false
}
