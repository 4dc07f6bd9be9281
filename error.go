package a2ui

import "fmt"

// ErrorType is the closed taxonomy of protocol-level errors produced by the
// envelope parser and surface store (spec §4.1, §4.4, §7).
type ErrorType string

const (
	ErrParse                     ErrorType = "parse_error"
	ErrUnknownComponent          ErrorType = "unknown_component"
	ErrUnknownMessageType        ErrorType = "unknown_message_type"
	ErrValidation                ErrorType = "validation_error"
	ErrVersionMismatch           ErrorType = "version_mismatch"
	ErrBinding                   ErrorType = "binding_error"
	ErrUnsupportedCatalog        ErrorType = "unsupported_catalog"
	ErrInlineCatalogNotSupported ErrorType = "inline_catalog_not_supported"
	ErrMissingCatalogID          ErrorType = "missing_catalog_id"
	ErrCatalogNotInCapabilities  ErrorType = "catalog_not_in_capabilities"
)

// ProtocolError is the structured error value every parsing/validation
// failure produces instead of panicking or returning a bare error string
// (spec §4.1 "the parser returns a structured error ... never throws").
//
// It also implements the standard `error` interface so it can be threaded
// through normal Go error-handling paths, while still carrying the
// machine-readable Type/Details that build_error (spec §4.4) serializes.
type ProtocolError struct {
	Type      ErrorType
	Message   string
	SurfaceID string
	Details   map[string]interface{}
}

func (e *ProtocolError) Error() string {
	if e.SurfaceID != "" {
		return fmt.Sprintf("%s: %s (surface %s)", e.Type, e.Message, e.SurfaceID)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewProtocolError builds a ProtocolError with an optional details map.
func NewProtocolError(t ErrorType, message string, surfaceID string, details map[string]interface{}) *ProtocolError {
	return &ProtocolError{Type: t, Message: message, SurfaceID: surfaceID, Details: details}
}
