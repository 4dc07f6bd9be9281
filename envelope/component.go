package envelope

import (
	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/config"
)

// decodeComponentV09 decodes one updateComponents entry: {id, component:
// <type name>, ...flat prop fields} (spec §4.1 updateComponents row).
func decodeComponentV09(entry map[string]interface{}, limits config.Limits) (a2ui.Component, *a2ui.ProtocolError) {
	id, _ := entry["id"].(string)
	typeName, _ := entry["component"].(string)
	if id == "" || typeName == "" {
		return a2ui.Component{}, a2ui.NewProtocolError(a2ui.ErrParse, "component entry requires id and component", "", nil)
	}

	c := a2ui.Component{ID: id, Type: typeName, Props: map[string]a2ui.Prop{}}
	for k, v := range entry {
		if k == "id" || k == "component" {
			continue
		}
		if k == "weight" {
			if w, ok := v.(float64); ok {
				c.Weight = &w
			}
			continue
		}
		if spec, ok := decodeChildrenSpec(v); ok {
			c.Props[k] = a2ui.Prop{Children: &spec}
			continue
		}
		dv := decodeValueV09(v)
		if perr := checkDepthAndPath(dv, limits); perr != nil {
			return a2ui.Component{}, perr
		}
		c.Props[k] = a2ui.Prop{Value: &dv}
	}
	return c, nil
}

// decodeComponentV08 decodes one surfaceUpdate entry: {id, component:
// {TypeName: {...props}}} (spec §4.1 surfaceUpdate row).
func decodeComponentV08(entry map[string]interface{}, limits config.Limits) (a2ui.Component, *a2ui.ProtocolError) {
	id, _ := entry["id"].(string)
	wrapper, _ := entry["component"].(map[string]interface{})
	if id == "" || len(wrapper) != 1 {
		return a2ui.Component{}, a2ui.NewProtocolError(a2ui.ErrParse, "component entry requires id and a single-key component wrapper", "", nil)
	}

	var typeName string
	var props map[string]interface{}
	for k, v := range wrapper {
		typeName = k
		props, _ = v.(map[string]interface{})
	}

	c := a2ui.Component{ID: id, Type: typeName, Props: map[string]a2ui.Prop{}}
	for k, v := range props {
		if k == "weight" {
			if w, ok := v.(float64); ok {
				c.Weight = &w
			}
			continue
		}
		if spec, ok := decodeChildrenSpec(v); ok {
			c.Props[k] = a2ui.Prop{Children: &spec}
			continue
		}
		dv := decodeValueV08(v)
		if perr := checkDepthAndPath(dv, limits); perr != nil {
			return a2ui.Component{}, perr
		}
		c.Props[k] = a2ui.Prop{Value: &dv}
	}
	return c, nil
}

// checkDepthAndPath enforces max_path_segments on any path value nested in
// dv, and a crude nesting-depth bound via the default-chain length (spec
// §4.1 limits table).
func checkDepthAndPath(dv a2ui.DynamicValue, limits config.Limits) *a2ui.ProtocolError {
	depth := 0
	cur := &dv
	for cur != nil {
		depth++
		if limits.MaxDepth > 0 && depth > limits.MaxDepth {
			return a2ui.NewProtocolError(a2ui.ErrValidation, "value nesting exceeds max depth", "",
				map[string]interface{}{"limit": limits.MaxDepth})
		}
		if cur.Kind == a2ui.KindPath {
			if limits.MaxPathSegments > 0 && pathSegmentCount(cur.Path) > limits.MaxPathSegments {
				return a2ui.NewProtocolError(a2ui.ErrValidation, "path exceeds max segments", "",
					map[string]interface{}{"limit": limits.MaxPathSegments})
			}
			cur = cur.Default
			continue
		}
		break
	}
	return nil
}
