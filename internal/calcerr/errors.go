// Package calcerr defines the error taxonomy of the calculation engine.
//
// Every error the engine returns is deterministic and derived from its inputs
// alone. Callers branch on the kind with errors.Is against the sentinels, and
// RPC or HTTP layers can translate an error with status.FromError because
// *Error implements GRPCStatus.
package calcerr

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies an engine error.
type Kind int

const (
	// KindConfiguration is a registry or dataset misconfiguration detected at startup.
	KindConfiguration Kind = iota + 1
	// KindNotFound is an unknown methodology id or a missing grid emission factor.
	KindNotFound
	// KindValidation is one or more invalid calculation inputs.
	KindValidation
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid inputs")
)

// errorDomain is reported in ErrorInfo details.
const errorDomain = "carbon-credit-engine"

// Error is the concrete error type returned by the engine.
type Error struct {
	Kind    Kind
	Message string

	// Violations holds every validation message, in the order they were found.
	Violations []string

	// Resource and Available describe a failed lookup: what was looked up and
	// the identifiers that would have succeeded.
	Resource  string
	Available []string
}

// Error implements error.
func (e *Error) Error() string {
	return e.Message
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	}
	return false
}

// GRPCStatus maps the error onto a gRPC status with structured details.
func (e *Error) GRPCStatus() *status.Status {
	var st *status.Status
	switch e.Kind {
	case KindValidation:
		st = status.New(codes.InvalidArgument, e.Message)
		br := &errdetails.BadRequest{}
		for _, v := range e.Violations {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       violationField(v),
				Description: v,
			})
		}
		if withDetails, err := st.WithDetails(br); err == nil {
			return withDetails
		}
		return st
	case KindNotFound:
		st = status.New(codes.NotFound, e.Message)
		info := &errdetails.ErrorInfo{
			Reason: "NOT_FOUND",
			Domain: errorDomain,
			Metadata: map[string]string{
				"resource":  e.Resource,
				"available": strings.Join(e.Available, ","),
			},
		}
		if withDetails, err := st.WithDetails(info); err == nil {
			return withDetails
		}
		return st
	case KindConfiguration:
		return status.New(codes.FailedPrecondition, e.Message)
	default:
		return status.New(codes.Unknown, e.Message)
	}
}

// violationField extracts the leading input key of messages such as
// "generation_mwh is required". Messages that do not start with a key map to "".
func violationField(msg string) string {
	field, _, ok := strings.Cut(msg, " ")
	if !ok || strings.ToLower(field) != field || !strings.Contains(field, "_") {
		return ""
	}
	return field
}

// Configuration returns a configuration error.
func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a lookup error. message is the full human-readable text;
// available lists the identifiers the caller could use instead.
func NotFound(resource, message string, available []string) *Error {
	return &Error{
		Kind:      KindNotFound,
		Message:   message,
		Resource:  resource,
		Available: append([]string(nil), available...),
	}
}

// Validation returns a validation error for the given violations, or nil when
// there are none.
func Validation(violations []string) *Error {
	if len(violations) == 0 {
		return nil
	}
	return &Error{
		Kind:       KindValidation,
		Message:    "Invalid inputs: " + strings.Join(violations, "; "),
		Violations: append([]string(nil), violations...),
	}
}

// Violations returns the validation messages carried by err, if any.
func Violations(err error) []string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		return append([]string(nil), e.Violations...)
	}
	return nil
}

// KindOf reports the kind of err, or 0 when err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
