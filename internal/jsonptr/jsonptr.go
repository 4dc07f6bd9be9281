// Package jsonptr implements RFC 6901 JSON-Pointer read/write over the
// generic JSON trees (map[string]interface{} / []interface{} / scalars)
// produced by encoding/json. It is the shared primitive underneath both the
// binding evaluator's path resolution and the surface store's data-model
// mutation, so the two never duplicate escape/segment handling.
package jsonptr

import "strings"

// Split decomposes a JSON Pointer into its unescaped segments. An empty or
// "/"-only pointer yields zero segments (root). A pointer not starting with
// "/" is treated as already a list of relative segments joined by "/"
// (callers route scope-relative paths through here too).
func Split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	raw := strings.Split(path, "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		segs[i] = unescape(s)
	}
	return segs
}

// Join re-escapes and joins segments into an absolute ("/"-prefixed) JSON
// Pointer.
func Join(segs []string) string {
	if len(segs) == 0 {
		return ""
	}
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = escape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

// Get walks segs under root, returning nil when any segment is missing
// (spec §4.2 rule 2: "Missing segments yield null").
func Get(root interface{}, segs []string) interface{} {
	cur := root
	for _, seg := range segs {
		switch node := cur.(type) {
		case map[string]interface{}:
			cur = node[seg]
		case []interface{}:
			idx, ok := parseIndex(seg, len(node))
			if !ok {
				return nil
			}
			cur = node[idx]
		default:
			return nil
		}
	}
	return cur
}

func parseIndex(seg string, length int) (int, bool) {
	if seg == "" {
		return 0, false
	}
	n := 0
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if n < 0 || n >= length {
		return 0, false
	}
	return n, true
}

// Set writes value at segs under root, creating intermediate maps for
// missing segments (spec §4.3 "creating ancestors as empty maps where
// needed"). An existing array encountered along the path is indexed into
// and mutated in place rather than coerced into a map, so a write through
// an index segment (e.g. "/items/0/n") never destroys sibling elements.
// Root must be a non-nil addressable tree; Set returns the (possibly new)
// root since the root itself may need to become a map.
func Set(root interface{}, segs []string, value interface{}) interface{} {
	if len(segs) == 0 {
		return value
	}
	return setNode(root, segs, value)
}

// setNode writes value at segs under node and returns the node to store in
// its parent's place: the same slice, mutated in place, when node is an
// array being indexed into; otherwise a map (node itself, if it already was
// one, or a freshly created one).
func setNode(node interface{}, segs []string, value interface{}) interface{} {
	seg, rest := segs[0], segs[1:]

	if arr, ok := node.([]interface{}); ok {
		if idx, ok := parseIndex(seg, len(arr)); ok {
			if len(rest) == 0 {
				arr[idx] = value
			} else {
				arr[idx] = setNode(arr[idx], rest, value)
			}
			return arr
		}
	}

	m, ok := node.(map[string]interface{})
	if !ok {
		m = map[string]interface{}{}
	}
	if len(rest) == 0 {
		m[seg] = value
	} else {
		m[seg] = setNode(m[seg], rest, value)
	}
	return m
}

// MergePatch applies RFC 7386 JSON Merge Patch semantics: merging two maps
// key-by-key (recursively), a null value deletes the key, and any
// non-map value (including arrays) wholesale-replaces the target
// (spec §9 "the source treats objects as merges but arrays as replacement").
func MergePatch(target, patch interface{}) interface{} {
	patchMap, ok := patch.(map[string]interface{})
	if !ok {
		return patch
	}
	targetMap, ok := target.(map[string]interface{})
	if !ok || targetMap == nil {
		targetMap = map[string]interface{}{}
	}
	result := make(map[string]interface{}, len(targetMap))
	for k, v := range targetMap {
		result[k] = v
	}
	for k, v := range patchMap {
		if v == nil {
			delete(result, k)
			continue
		}
		if sub, ok := v.(map[string]interface{}); ok {
			result[k] = MergePatch(result[k], sub)
		} else {
			result[k] = v
		}
	}
	return result
}
