// Package logx builds the structured logger used across this module.
//
// Grounded on the pack's zap usage
// (sanket-sapate-arc-core/apps/cdc-worker/cmd/worker/main.go,
// sanket-sapate-arc-core/apps/iam-service/cmd/api/main.go): zap.NewProduction
// for service binaries, zap.NewDevelopment for local/test runs, fields built
// with zap.String/zap.Error rather than formatted log lines. Superseding the
// teacher's stdlib atomic/logging per DESIGN.md's dropped-module note.
package logx

import "go.uber.org/zap"

// New builds a production logger, or a development logger (human-readable,
// debug-level) when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SurfaceID returns the structured field this module attaches to every log
// line scoped to one surface.
func SurfaceID(id string) zap.Field { return zap.String("surface_id", id) }

// EnvelopeKind returns the structured field for the wire envelope kind
// being processed.
func EnvelopeKind(kind string) zap.Field { return zap.String("envelope_kind", kind) }

// ProtocolVersion returns the structured field for the negotiated A2UI
// protocol version.
func ProtocolVersion(version string) zap.Field { return zap.String("protocol_version", version) }

// SessionID returns the structured field for the transport-level session
// or task id carrying a surface's events.
func SessionID(id string) zap.Field { return zap.String("session_id", id) }
