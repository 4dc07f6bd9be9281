package envelope

import (
	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/jsonptr"
)

// decodeValueV09 decodes one v0.9 property value. v0.9 carries literals as
// native JSON (spec §3.3), so only three wire shapes are distinguished from
// a plain literal: a "path" key, a "call" key, and a lone logic-operator
// key ("and"/"or"/"not"/"true"/"false").
func decodeValueV09(raw interface{}) a2ui.DynamicValue {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return a2ui.Literal(raw)
	}

	if path, ok := m["path"].(string); ok {
		var def *a2ui.DynamicValue
		if rawDef, has := m["default"]; has {
			d := decodeValueV09(rawDef)
			def = &d
		}
		return a2ui.PathValue(path, def)
	}

	if call, ok := m["call"].(string); ok {
		args := map[string]a2ui.DynamicValue{}
		if rawArgs, ok := m["args"].(map[string]interface{}); ok {
			for k, v := range rawArgs {
				args[k] = decodeValueV09(v)
			}
		}
		return a2ui.DynamicValue{Kind: a2ui.KindCall, Call: call, Args: args}
	}

	for _, op := range []string{"and", "or", "not"} {
		if rawOperands, ok := m[op]; ok {
			return a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: op, Operands: decodeOperands(rawOperands)}
		}
	}
	if v, ok := m["true"]; ok && len(m) == 1 {
		_ = v
		return a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "true"}
	}
	if v, ok := m["false"]; ok && len(m) == 1 {
		_ = v
		return a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "false"}
	}

	return a2ui.Literal(raw)
}

func decodeOperands(raw interface{}) []a2ui.DynamicValue {
	arr, ok := raw.([]interface{})
	if !ok {
		return []a2ui.DynamicValue{decodeValueV09(raw)}
	}
	out := make([]a2ui.DynamicValue, len(arr))
	for i, v := range arr {
		out[i] = decodeValueV09(v)
	}
	return out
}

// decodeValueV08 decodes one v0.8 property value: either a path reference
// or one of the wrapped-primitive literal forms (spec §4.2 rule 1).
func decodeValueV08(raw interface{}) a2ui.DynamicValue {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return a2ui.Literal(raw)
	}

	if path, ok := m["path"].(string); ok {
		var def *a2ui.DynamicValue
		if rawDef, has := m["default"]; has {
			d := decodeValueV08(rawDef)
			def = &d
		}
		return a2ui.PathValue(path, def)
	}

	for _, key := range []string{"literalString", "literalNumber", "literalBoolean", "literalArray"} {
		if v, has := m[key]; has {
			return a2ui.Literal(v)
		}
	}

	return a2ui.Literal(raw)
}

// decodeChildrenSpec recognizes the three wire shapes a children/content
// property can take (spec §3.4): a v0.8-wrapped explicit list, a bare
// v0.9 sequence of ids, or a template descriptor. Returns false when raw is
// none of these (i.e. it is an ordinary leaf property, not a children
// spec).
func decodeChildrenSpec(raw interface{}) (a2ui.ChildrenSpec, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		if list, ok := v["explicitList"].([]interface{}); ok {
			return a2ui.ChildrenSpec{Explicit: toStringSlice(list)}, true
		}
		path, hasPath := stringField(v, "path", "dataBinding")
		componentID, hasComponentID := v["componentId"].(string)
		if hasPath && hasComponentID {
			return a2ui.ChildrenSpec{Template: true, Path: path, ComponentID: componentID}, true
		}
		return a2ui.ChildrenSpec{}, false

	case []interface{}:
		if isStringSlice(v) {
			return a2ui.ChildrenSpec{Explicit: toStringSlice(v)}, true
		}
		return a2ui.ChildrenSpec{}, false

	default:
		return a2ui.ChildrenSpec{}, false
	}
}

func stringField(m map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			return v, true
		}
	}
	return "", false
}

func isStringSlice(v []interface{}) bool {
	for _, e := range v {
		if _, ok := e.(string); !ok {
			return false
		}
	}
	return true
}

func toStringSlice(v []interface{}) []string {
	out := make([]string, len(v))
	for i, e := range v {
		s, _ := e.(string)
		out[i] = s
	}
	return out
}

// pathSegmentCount returns how many JSON-Pointer segments path decomposes
// into, used to enforce max_path_segments (spec §4.1 limits table).
func pathSegmentCount(path string) int {
	return len(jsonptr.Split(path))
}
