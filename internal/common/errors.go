package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDatabase     = errors.New("database error")
)

// NewAppError builds an AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorKind classifies an extraction failure.
type ErrorKind string

const (
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindUnsupportedType        ErrorKind = "UNSUPPORTED_TYPE"
	KindUpstreamFailure        ErrorKind = "UPSTREAM_FAILURE"
	KindSchemaViolation        ErrorKind = "SCHEMA_VIOLATION"
	KindRecognitionUnavailable ErrorKind = "RECOGNITION_UNAVAILABLE"
	KindExhausted              ErrorKind = "EXHAUSTED"
)

// Sentinels, one per kind; errors.Is(err, ErrSchemaViolation) matches any
// ExtractionError of that kind.
var (
	ErrNotFound               = &ExtractionError{Kind: KindNotFound, Message: "file not found"}
	ErrUnsupportedType        = &ExtractionError{Kind: KindUnsupportedType, Message: "unsupported file type"}
	ErrUpstreamFailure        = &ExtractionError{Kind: KindUpstreamFailure, Message: "upstream failure"}
	ErrSchemaViolation        = &ExtractionError{Kind: KindSchemaViolation, Message: "schema violation"}
	ErrRecognitionUnavailable = &ExtractionError{Kind: KindRecognitionUnavailable, Message: "no recognition backend"}
	ErrExhausted              = &ExtractionError{Kind: KindExhausted, Message: "all strategies failed"}
)

// ExtractionError is the typed outcome of a failed extraction step.
type ExtractionError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

// NewExtractionError builds an ExtractionError of kind for operation op.
func NewExtractionError(kind ErrorKind, op, message string, cause error) *ExtractionError {
	return &ExtractionError{Kind: kind, Op: op, Message: message, Err: cause}
}

func (e *ExtractionError) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches on kind so callers can compare against the sentinels.
func (e *ExtractionError) Is(target error) bool {
	var t *ExtractionError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or "" when err is not an ExtractionError.
func KindOf(err error) ErrorKind {
	var e *ExtractionError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInputError reports whether err must be surfaced without fallback.
func IsInputError(err error) bool {
	k := KindOf(err)
	return k == KindNotFound || k == KindUnsupportedType
}

// GRPCCode maps an error to the gRPC status code used by the health and
// admin surfaces.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return s.Code()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, ErrUnauthorized):
		return codes.Unauthenticated
	case errors.Is(err, ErrInvalidInput):
		return codes.InvalidArgument
	}
	switch KindOf(err) {
	case KindNotFound:
		return codes.NotFound
	case KindUnsupportedType:
		return codes.InvalidArgument
	case KindUpstreamFailure:
		return codes.Unavailable
	case KindSchemaViolation:
		return codes.DataLoss
	case KindRecognitionUnavailable:
		return codes.FailedPrecondition
	}
	return codes.Internal
}

// HTTPStatus maps an error to the status code returned by the upload API.
func HTTPStatus(err error) int {
	switch GRPCCode(err) {
	case codes.OK:
		return http.StatusOK
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// InvalidArgumentError wraps message in a gRPC InvalidArgument status.
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

