package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/config"
)

// knownKinds is the closed set of top-level keys a raw line may carry
// (spec §4.1 "exactly one top-level key drawn from").
var knownKinds = map[string]Kind{
	string(KindSurfaceUpdate):    KindSurfaceUpdate,
	string(KindUpdateComponents): KindUpdateComponents,
	string(KindDataModelUpdate):  KindDataModelUpdate,
	string(KindUpdateDataModel):  KindUpdateDataModel,
	string(KindBeginRendering):   KindBeginRendering,
	string(KindCreateSurface):    KindCreateSurface,
	string(KindDeleteSurface):    KindDeleteSurface,
	string(KindUserAction):       KindUserAction,
	string(KindAction):           KindAction,
	string(KindError):            KindError,
}

// Parse decodes one raw wire line into an Envelope. It never panics: every
// failure mode returns a *a2ui.ProtocolError of kind parse_error or
// validation_error, or missing_catalog_id for a createSurface without a
// catalogId (spec §4.1 "never throws").
func Parse(raw []byte, limits config.Limits) (*Envelope, *a2ui.ProtocolError) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, fmt.Sprintf("invalid JSON: %v", err), "", nil)
	}
	if len(outer) != 1 {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "envelope must have exactly one top-level key", "", nil)
	}

	var key string
	var payloadRaw json.RawMessage
	for k, v := range outer {
		key, payloadRaw = k, v
	}

	kind, ok := knownKinds[key]
	if !ok {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "unknown envelope key: "+key, "", nil)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, fmt.Sprintf("invalid payload for %s: %v", key, err), "", nil)
	}

	version, versioned := VersionOf(kind)

	env := &Envelope{Kind: kind, Version: version}

	surfaceID, _ := payload["surfaceId"].(string)
	env.SurfaceID = surfaceID

	switch kind {
	case KindSurfaceUpdate:
		return parseComponents(env, payload, limits, false)
	case KindUpdateComponents:
		return parseComponents(env, payload, limits, true)
	case KindDataModelUpdate:
		return parseDataModelUpdateV08(env, payload)
	case KindUpdateDataModel:
		return parseUpdateDataModelV09(env, payload)
	case KindBeginRendering:
		return parseBeginRendering(env, payload)
	case KindCreateSurface:
		return parseCreateSurface(env, payload)
	case KindDeleteSurface:
		if surfaceID == "" {
			return nil, a2ui.NewProtocolError(a2ui.ErrParse, "deleteSurface requires surfaceId", "", nil)
		}
		return env, nil
	case KindUserAction:
		return parseUserAction(env, payload)
	case KindAction:
		return parseAction(env, payload)
	case KindError:
		return parseError(env, payload)
	default:
		_ = versioned
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "unhandled kind: "+key, "", nil)
	}
}

func parseComponents(env *Envelope, payload map[string]interface{}, limits config.Limits, v09 bool) (*Envelope, *a2ui.ProtocolError) {
	if env.SurfaceID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, string(env.Kind)+" requires surfaceId", "", nil)
	}
	rawComponents, ok := payload["components"].([]interface{})
	if !ok {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, string(env.Kind)+" requires components[]", env.SurfaceID, nil)
	}
	if limits.MaxComponents > 0 && len(rawComponents) > limits.MaxComponents {
		return nil, a2ui.NewProtocolError(a2ui.ErrValidation, "component count exceeds limit", env.SurfaceID,
			map[string]interface{}{"count": len(rawComponents), "limit": limits.MaxComponents})
	}

	components := make([]a2ui.Component, 0, len(rawComponents))
	for _, rc := range rawComponents {
		entry, ok := rc.(map[string]interface{})
		if !ok {
			return nil, a2ui.NewProtocolError(a2ui.ErrParse, "component entry must be an object", env.SurfaceID, nil)
		}
		var c a2ui.Component
		var perr *a2ui.ProtocolError
		if v09 {
			c, perr = decodeComponentV09(entry, limits)
		} else {
			c, perr = decodeComponentV08(entry, limits)
		}
		if perr != nil {
			perr.SurfaceID = env.SurfaceID
			return nil, perr
		}
		components = append(components, c)
	}
	env.Components = components
	return env, nil
}

func parseDataModelUpdateV08(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	if env.SurfaceID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "dataModelUpdate requires surfaceId", "", nil)
	}
	path, _ := payload["path"].(string)
	env.ContentsPath = path

	if rawContents, ok := payload["contents"].([]interface{}); ok {
		entries := map[string]interface{}{}
		for _, rc := range rawContents {
			entry, ok := rc.(map[string]interface{})
			if !ok {
				continue
			}
			key, _ := entry["key"].(string)
			if key == "" {
				continue
			}
			for _, variant := range []string{"valueString", "valueNumber", "valueBoolean", "valueMap"} {
				if v, has := entry[variant]; has {
					entries[key] = v
					break
				}
			}
		}
		env.ContentsEntries = entries
		return env, nil
	}

	merge := map[string]interface{}{}
	for k, v := range payload {
		if k == "surfaceId" || k == "path" {
			continue
		}
		merge[k] = v
	}
	env.RootMerge = merge
	return env, nil
}

func parseUpdateDataModelV09(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	if env.SurfaceID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "updateDataModel requires surfaceId", "", nil)
	}
	value, has := payload["value"]
	if !has {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "updateDataModel requires value", env.SurfaceID, nil)
	}
	path, _ := payload["path"].(string)
	env.DataValue = value
	env.DataPath = path
	return env, nil
}

func parseBeginRendering(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	if env.SurfaceID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "beginRendering requires surfaceId", "", nil)
	}
	root, ok := payload["root"].(string)
	if !ok || root == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "beginRendering requires root", env.SurfaceID, nil)
	}
	env.Root = root
	env.CatalogID, _ = payload["catalogId"].(string)
	env.Styles = payload["styles"]
	return env, nil
}

func parseCreateSurface(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	if env.SurfaceID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "createSurface requires surfaceId", "", nil)
	}
	catalogID, ok := payload["catalogId"].(string)
	if !ok || catalogID == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrMissingCatalogID, "createSurface requires catalogId", env.SurfaceID, nil)
	}
	env.CatalogID = catalogID
	env.Root = "root"
	if bd, ok := payload["broadcastDataModel"].(bool); ok {
		env.BroadcastDataModel = bd
	}
	return env, nil
}

func parseUserAction(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	name, _ := payload["name"].(string)
	if env.SurfaceID == "" || name == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "userAction requires surfaceId and name", env.SurfaceID, nil)
	}
	env.ActionName = name
	env.ComponentID, _ = payload["sourceComponentId"].(string)
	env.Timestamp, _ = payload["timestamp"].(string)

	rawContext, _ := payload["context"].([]interface{})
	for _, rc := range rawContext {
		entry, ok := rc.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := entry["key"].(string)
		dv := decodeValueV08(entry["value"])
		env.Context = append(env.Context, ContextEntry{Key: key, Value: dv})
	}
	return env, nil
}

func parseAction(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	name, _ := payload["name"].(string)
	if env.SurfaceID == "" || name == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "action requires surfaceId and name", env.SurfaceID, nil)
	}
	env.ActionName = name
	env.ComponentID, _ = payload["sourceComponentId"].(string)
	env.Timestamp, _ = payload["timestamp"].(string)

	rawContext, _ := payload["context"].(map[string]interface{})
	for k, v := range rawContext {
		env.Context = append(env.Context, ContextEntry{Key: k, Value: decodeValueV09(v)})
	}
	return env, nil
}

func parseError(env *Envelope, payload map[string]interface{}) (*Envelope, *a2ui.ProtocolError) {
	inner := payload
	errType, _ := inner["type"].(string)
	errMsg, _ := inner["message"].(string)
	if errType == "" || errMsg == "" {
		return nil, a2ui.NewProtocolError(a2ui.ErrParse, "error requires type and message", "", nil)
	}
	env.ErrorType = a2ui.ErrorType(errType)
	env.ErrorMessage = errMsg
	env.SurfaceID, _ = inner["surfaceId"].(string)
	if details, ok := inner["details"].(map[string]interface{}); ok {
		env.ErrorDetails = details
	}
	return env, nil
}
