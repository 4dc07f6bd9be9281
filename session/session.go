// Package session implements the single entry point described in spec
// §3.6/§3.5: one mapping from surface id to surface plus a negotiated
// client-capabilities record, exposing apply_envelope and
// update_data_at_path.
//
// Grounded on the single-writer-per-connection shape of
// internal/broker/service.go's Connection/handleConnection (one goroutine
// owns a connection's mutable state; here one Session owns its surfaces),
// narrowed to the surface/catalog/envelope vocabulary built in the sibling
// packages.
package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/catalog"
	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/internal/logx"
	"github.com/tenzoki/a2ui-go/surface"
)

// Session owns every surface reachable in one connection's lifetime plus
// the capabilities negotiated once for it (spec §3.6).
type Session struct {
	mu           sync.Mutex
	store        *surface.Store
	registry     *catalog.Registry
	limits       config.Limits
	capabilities a2ui.ClientCapabilities
	log          *zap.Logger

	// surfaceVersion pins the protocol version for each surface id once its
	// first envelope has been applied (spec §4.1 "Version is ... pinned for
	// that surface; subsequent envelopes of the other version ... fail with
	// version_mismatch").
	surfaceVersion map[string]a2ui.ProtocolVersion
}

// New builds an empty session bound to the given catalog registry and
// structural limits.
func New(registry *catalog.Registry, limits config.Limits) *Session {
	return &Session{
		store:          surface.NewStore(limits),
		registry:       registry,
		limits:         limits,
		log:            zap.NewNop(),
		surfaceVersion: map[string]a2ui.ProtocolVersion{},
	}
}

// SetLogger attaches a structured logger; ApplyEnvelope failures are logged
// at warn level with the offending surface id, envelope kind, and protocol
// version (spec's ambient logging carried per DESIGN.md, independent of the
// spec's own Non-goals).
func (s *Session) SetLogger(log *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

// SetCapabilities negotiates the client capability record, attached to
// every outbound event henceforth (spec §3.5 "negotiated once per
// session").
func (s *Session) SetCapabilities(caps a2ui.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capabilities = caps
}

// Capabilities returns the negotiated client capabilities.
func (s *Session) Capabilities() a2ui.ClientCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities
}

// Store exposes the underlying surface store for read-side queries
// (rendering host, binding evaluator).
func (s *Session) Store() *surface.Store {
	return s.store
}

// Registry exposes the catalog registry bound to this session.
func (s *Session) Registry() *catalog.Registry {
	return s.registry
}

// Reset clears every surface but retains negotiated capabilities (spec
// §3.6 "reset clears surfaces but retains capabilities").
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = surface.NewStore(s.limits)
	s.surfaceVersion = map[string]a2ui.ProtocolVersion{}
}

// ApplyEnvelope applies one parsed envelope to this session's surfaces
// (spec §3.6 "entry point apply_envelope"). All mutations are serialized
// through s.mu (spec §4.3 "all mutations on one session are serialized").
func (s *Session) ApplyEnvelope(env *envelope.Envelope) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()

	if env.Kind == envelope.KindDeleteSurface {
		s.store.Delete(env.SurfaceID)
		delete(s.surfaceVersion, env.SurfaceID)
		return nil
	}
	if env.Kind == envelope.KindError {
		// Inbound error envelopes are observational; nothing to apply.
		return nil
	}

	if pinned, ok := s.surfaceVersion[env.SurfaceID]; ok && env.Version != "" && pinned != env.Version {
		s.log.Warn("version_mismatch",
			logx.SurfaceID(env.SurfaceID), logx.EnvelopeKind(string(env.Kind)),
			zap.String("pinned", string(pinned)), zap.String("received", string(env.Version)))
		return a2ui.NewProtocolError(a2ui.ErrVersionMismatch,
			"surface already pinned to a different protocol version", env.SurfaceID,
			map[string]interface{}{"pinned": string(pinned), "received": string(env.Version)})
	}

	surf := s.store.EnsureSurface(env.SurfaceID, env.Version)
	if env.Version != "" {
		s.surfaceVersion[env.SurfaceID] = env.Version
	}

	var perr *a2ui.ProtocolError
	switch env.Kind {
	case envelope.KindSurfaceUpdate, envelope.KindUpdateComponents:
		allow := func(t string) bool { return catalog.AllowedType(s.registry, surf.CatalogID, t) }
		perr = s.store.UpsertComponents(env.SurfaceID, env.Components, allow)

	case envelope.KindUpdateDataModel:
		perr = s.store.ReplaceDataModel(env.SurfaceID, env.DataValue, env.DataPath)

	case envelope.KindDataModelUpdate:
		if env.ContentsEntries != nil {
			perr = s.store.ApplyContents(env.SurfaceID, env.ContentsPath, env.ContentsEntries)
		} else {
			perr = s.store.ReplaceDataModel(env.SurfaceID, env.RootMerge, env.ContentsPath)
		}

	case envelope.KindBeginRendering:
		resolved, resolvePerr := catalog.Resolve(s.registry, env.Version, env.CatalogID, s.capabilities)
		if resolvePerr != nil {
			resolvePerr.SurfaceID = env.SurfaceID
			perr = resolvePerr
		} else {
			perr = s.store.MarkReady(env.SurfaceID, env.Root, resolved, surf.BroadcastDataModel)
		}

	case envelope.KindCreateSurface:
		resolved, resolvePerr := catalog.Resolve(s.registry, env.Version, env.CatalogID, s.capabilities)
		if resolvePerr != nil {
			resolvePerr.SurfaceID = env.SurfaceID
			perr = resolvePerr
		} else {
			perr = s.store.MarkReady(env.SurfaceID, env.Root, resolved, env.BroadcastDataModel)
		}

	default:
		perr = a2ui.NewProtocolError(a2ui.ErrUnknownMessageType, "envelope kind not applicable via ApplyEnvelope", env.SurfaceID, nil)
	}

	if perr != nil {
		s.log.Warn("apply_envelope failed",
			logx.SurfaceID(env.SurfaceID), logx.EnvelopeKind(string(env.Kind)),
			logx.ProtocolVersion(string(env.Version)), zap.String("error_type", string(perr.Type)))
	}
	return perr
}

// UpdateDataAtPath applies a local two-way-binding edit directly, without
// going through envelope parsing (spec §3.6 "update_data_at_path").
func (s *Session) UpdateDataAtPath(surfaceID, path string, value interface{}) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.WriteLocal(surfaceID, path, value)
}
