// Package surface implements the per-surface state machine: component
// storage, data-model mutation, and readiness tracking (spec §4.3).
//
// Grounded on the mutex-guarded-map concurrency shape of
// internal/broker/service.go's Service (topics/pipes/connections maps
// behind a single sync.RWMutex), narrowed here to one map of surfaces per
// store plus the structural limits in config.Limits.
package surface

import (
	"sync"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/internal/jsonptr"
)

// Surface holds the full state of one server-defined UI surface (spec §3.1,
// §3.2).
type Surface struct {
	ID                 string
	Version            a2ui.ProtocolVersion
	CatalogID          string
	RootID             string
	Ready              bool
	BroadcastDataModel bool
	Components         map[string]a2ui.Component
	DataModel          interface{}
}

func newSurface(id string, version a2ui.ProtocolVersion) *Surface {
	return &Surface{
		ID:         id,
		Version:    version,
		Components: map[string]a2ui.Component{},
		DataModel:  map[string]interface{}{},
	}
}

// Store owns every surface for one session. All mutating methods are
// serialized by mu (spec §4.3 "Concurrency: all mutations on one session
// are serialized (single-writer); readers observe a consistent snapshot per
// query").
type Store struct {
	mu       sync.RWMutex
	surfaces map[string]*Surface
	limits   config.Limits
}

// NewStore builds an empty surface store bound to the given structural
// limits (spec §6.5).
func NewStore(limits config.Limits) *Store {
	return &Store{surfaces: map[string]*Surface{}, limits: limits}
}

// EnsureSurface returns the surface for id, creating it (and pinning its
// protocol version) if this is the first envelope to reference it
// (spec §3.1 "the version is pinned and never changes").
func (s *Store) EnsureSurface(id string, version a2ui.ProtocolVersion) *Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.surfaces[id]; ok {
		return existing
	}
	surf := newSurface(id, version)
	s.surfaces[id] = surf
	return surf
}

// Get returns the surface for id, or nil if it does not exist.
func (s *Store) Get(id string) *Surface {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surfaces[id]
}

// Delete removes a surface; idempotent (spec §4.3 "delete(): removes
// surface; idempotent").
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surfaces, id)
}

// UpsertComponents inserts or replaces each component atomically, enforcing
// the total-count limit across the existing+incoming set and validating
// each component's type against allowedType (spec §4.3 rule 1, §8
// invariants 7-8).
//
// allowedType reports whether a component type is present in the resolved
// catalog's allowlist; it is supplied by the caller (the catalog package)
// rather than imported directly, to keep surface free of a dependency on
// catalog.
func (s *Store) UpsertComponents(surfaceID string, components []a2ui.Component, allowedType func(string) bool) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "surface does not exist", surfaceID, nil)
	}

	var offendingTypes []string
	seen := map[string]bool{}
	for _, c := range components {
		if allowedType != nil && !allowedType(c.Type) {
			if !seen[c.Type] {
				seen[c.Type] = true
				offendingTypes = append(offendingTypes, c.Type)
			}
		}
	}
	if len(offendingTypes) > 0 {
		return a2ui.NewProtocolError(a2ui.ErrUnknownComponent, "component type not in catalog", surfaceID,
			map[string]interface{}{"types": offendingTypes})
	}

	existingNew := 0
	for _, c := range components {
		if _, present := surf.Components[c.ID]; !present {
			existingNew++
		}
	}
	finalCount := len(surf.Components) + existingNew
	limit := s.limits.MaxComponents
	if limit == 0 {
		limit = a2ui.DefaultMaxComponents
	}
	if finalCount > limit {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "component count exceeds limit", surfaceID,
			map[string]interface{}{"count": finalCount, "limit": limit})
	}

	for _, c := range components {
		surf.Components[c.ID] = c
	}
	return nil
}

// ReplaceDataModel applies a v0.9-style update: value is written at the
// absolute pointer path (root when path is empty), using JSON Merge Patch
// semantics for map values and wholesale replacement for everything else
// (spec §4.3 rule 2, §9).
func (s *Store) ReplaceDataModel(surfaceID string, value interface{}, path string) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "surface does not exist", surfaceID, nil)
	}

	segs := jsonptr.Split(path)
	if len(segs) == 0 {
		surf.DataModel = jsonptr.MergePatch(surf.DataModel, value)
		return nil
	}

	current := jsonptr.Get(surf.DataModel, segs)
	merged := jsonptr.MergePatch(current, value)
	surf.DataModel = jsonptr.Set(surf.DataModel, segs, merged)
	return nil
}

// ApplyContents applies a v0.8 adjacency-list dataModelUpdate: each
// key/value pair is written under path, creating ancestor maps as needed
// (spec §4.3 rule 2 "in v0.8 applies the adjacency-list contents to the
// node at path, creating ancestors as empty maps where needed").
func (s *Store) ApplyContents(surfaceID string, path string, entries map[string]interface{}) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "surface does not exist", surfaceID, nil)
	}

	base := jsonptr.Split(path)
	for k, v := range entries {
		segs := append(append([]string{}, base...), k)
		surf.DataModel = jsonptr.Set(surf.DataModel, segs, v)
	}
	return nil
}

// MarkReady marks a surface ready, fixing its root id and resolved catalog
// (spec §4.3 "mark_ready(root_id, catalog_id?)").
func (s *Store) MarkReady(surfaceID, rootID, catalogID string, broadcastDataModel bool) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()

	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "surface does not exist", surfaceID, nil)
	}
	surf.RootID = rootID
	if catalogID != "" {
		surf.CatalogID = catalogID
	}
	surf.BroadcastDataModel = broadcastDataModel
	surf.Ready = true
	return nil
}

// Read performs a JSON-Pointer read against a surface's data model, used by
// the binding evaluator (spec §4.3 "read(path): JSON-Pointer read used by
// binding").
func (s *Store) Read(surfaceID, path string) interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return nil
	}
	return jsonptr.Get(surf.DataModel, jsonptr.Split(path))
}

// WriteLocal applies a two-way-binding edit (text input, checkbox, slider,
// date/time, choice) without involving the transport layer; the value is
// only sent to the server when an action fires (spec §4.3 "write_local").
func (s *Store) WriteLocal(surfaceID, path string, value interface{}) *a2ui.ProtocolError {
	s.mu.Lock()
	defer s.mu.Unlock()
	surf, ok := s.surfaces[surfaceID]
	if !ok {
		return a2ui.NewProtocolError(a2ui.ErrValidation, "surface does not exist", surfaceID, nil)
	}
	surf.DataModel = jsonptr.Set(surf.DataModel, jsonptr.Split(path), value)
	return nil
}

// Snapshot returns a new map, keyed by surface id, holding the data model
// of every surface with BroadcastDataModel set (spec §4.4 "data-model
// broadcast builder"). The data models themselves are not copied: each
// value is the surface's live data model.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]interface{}{}
	for id, surf := range s.surfaces {
		if surf.BroadcastDataModel {
			out[id] = surf.DataModel
		}
	}
	return out
}
