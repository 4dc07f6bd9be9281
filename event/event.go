// Package event builds version-correct outbound envelopes — userAction /
// action and error — plus the data-model broadcast snapshot that
// accompanies them (spec §4.4, §2 item 8).
//
// Grounded on the outbound/inbound symmetry of
// internal/envelope/envelope.go's NewEnvelope/NewReplyEnvelope pair: one
// constructor per outbound shape, returning a plain value ready to
// json.Marshal rather than a half-built struct the caller finishes filling
// in.
package event

import (
	"time"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/binding"
	"github.com/tenzoki/a2ui-go/surface"
)

// ActionRequest is the input to BuildAction: the action's name, the
// surface/component it fired from, and its unresolved source context (spec
// §4.4).
type ActionRequest struct {
	Name        string
	SurfaceID   string
	ComponentID string
	Context     map[string]a2ui.DynamicValue
	ScopePath   string
}

// nowISO8601 returns the current instant formatted per RFC 3339 in UTC,
// which A2UI's "ISO-8601 UTC" timestamp requirement is satisfied by.
func nowISO8601() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// BuildAction resolves req.Context against dataModel/req.ScopePath with the
// rules for version, then returns the wire envelope: {userAction: {...}}
// for v0.8, {action: {...}} for v0.9 (spec §4.4).
func BuildAction(version a2ui.ProtocolVersion, req ActionRequest, dataModel interface{}) map[string]interface{} {
	resolvedContext := map[string]interface{}{}
	for k, dv := range req.Context {
		resolvedContext[k] = binding.Resolve(dv, dataModel, req.ScopePath, version)
	}

	if version == a2ui.V0_8 {
		contextList := make([]map[string]interface{}, 0, len(resolvedContext))
		for k, v := range resolvedContext {
			contextList = append(contextList, map[string]interface{}{"key": k, "value": v})
		}
		return map[string]interface{}{
			"userAction": map[string]interface{}{
				"name":              req.Name,
				"surfaceId":         req.SurfaceID,
				"sourceComponentId": req.ComponentID,
				"timestamp":         nowISO8601(),
				"context":           contextList,
			},
		}
	}

	return map[string]interface{}{
		"action": map[string]interface{}{
			"name":              req.Name,
			"surfaceId":         req.SurfaceID,
			"sourceComponentId": req.ComponentID,
			"timestamp":         nowISO8601(),
			"context":           resolvedContext,
		},
	}
}

// ErrorRequest is the input to BuildError (spec §4.4 "build_error").
type ErrorRequest struct {
	Type      a2ui.ErrorType
	Message   string
	SurfaceID string
	Details   map[string]interface{}
}

// BuildError produces a single {error: {...}} envelope with a current
// timestamp.
func BuildError(req ErrorRequest) map[string]interface{} {
	inner := map[string]interface{}{
		"type":      string(req.Type),
		"message":   req.Message,
		"timestamp": nowISO8601(),
	}
	if req.SurfaceID != "" {
		inner["surfaceId"] = req.SurfaceID
	}
	if req.Details != nil {
		inner["details"] = req.Details
	}
	return map[string]interface{}{"error": inner}
}

// BroadcastSnapshot returns the data-model snapshot to attach to an
// outbound event for every surface with broadcast_data_model set (spec §2
// item 8, §4.4 preamble).
func BroadcastSnapshot(store *surface.Store) map[string]interface{} {
	return store.Snapshot()
}
