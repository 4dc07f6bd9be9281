package binding

import (
	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/jsonptr"
)

// Instance is one expansion of a template child: the component id to
// render and the scope path its bindings resolve against.
type Instance struct {
	ComponentID string
	ScopePath   string
}

// ExpandTemplate enumerates the elements at spec.Path in dataModel and
// returns one Instance per element, each scoped to "<base>/<index>" (spec
// §3.4 "each instance receives a scope path of <base>/<index-or-key>").
// limit bounds template expansion per container (spec §4.1 limits table,
// §3.2 invariant (c)); exceeding it returns a validation_error carrying the
// offending count and limit, mirroring the component-count overflow shape
// in surface.Store.UpsertComponents.
func ExpandTemplate(spec a2ui.ChildrenSpec, dataModel interface{}, scopePath string, version a2ui.ProtocolVersion, limit int) ([]Instance, *a2ui.ProtocolError) {
	abs := ExpandPath(spec.Path, scopePath, version)
	node := jsonptr.Get(dataModel, jsonptr.Split(abs))

	var keys []string
	switch v := node.(type) {
	case []interface{}:
		for i := range v {
			keys = append(keys, itoa(i))
		}
	case map[string]interface{}:
		for k := range v {
			keys = append(keys, k)
		}
	default:
		return nil, nil
	}

	if limit > 0 && len(keys) > limit {
		return nil, a2ui.NewProtocolError(a2ui.ErrValidation, "template expansion exceeds limit", "",
			map[string]interface{}{"count": len(keys), "limit": limit})
	}

	instances := make([]Instance, 0, len(keys))
	for _, k := range keys {
		instances = append(instances, Instance{
			ComponentID: spec.ComponentID,
			ScopePath:   abs + "/" + k,
		})
	}
	return instances, nil
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	n := i
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
