// Package binding implements the dynamic-value resolver and v0.9
// function-call/logic-expression evaluator shared by rendering and action
// construction (spec §4.2).
//
// Grounded on the teacher's switch-dispatch idiom in
// internal/broker/service.go (handleRequest dispatching on a closed method
// set) applied here to a2ui.DynamicValueKind, and on internal/jsonptr for
// the actual path walk.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/internal/jsonptr"
)

// Resolve evaluates value against dataModel at scopePath and returns a plain
// JSON value (string/float64/bool/map/slice/nil). It never mutates
// dataModel or value (spec §4.2).
func Resolve(value a2ui.DynamicValue, dataModel interface{}, scopePath string, version a2ui.ProtocolVersion) interface{} {
	switch value.Kind {
	case a2ui.KindLiteral:
		return value.Literal

	case a2ui.KindPath:
		abs := ExpandPath(value.Path, scopePath, version)
		segs := jsonptr.Split(abs)
		result := jsonptr.Get(dataModel, segs)
		if result == nil && value.Default != nil {
			return Resolve(*value.Default, dataModel, scopePath, version)
		}
		return result

	case a2ui.KindCall:
		return resolveCall(value, dataModel, scopePath, version)

	case a2ui.KindLogic:
		return resolveLogic(value, dataModel, scopePath, version)

	default:
		return nil
	}
}

// ExpandPath returns the absolute JSON Pointer that a read or write-back of
// path under scopePath should target (spec §4.2 rule 2, rule 4).
//
// The v0.8/v0.9 divergence is deliberate and is the single most
// error-prone rule in the evaluator (spec §9 "the single most error-prone
// version difference"):
//   - v0.9: a leading "/" is always root-relative and scopePath is ignored;
//     a path with no leading "/" is scope-relative and scopePath is
//     prepended.
//   - v0.8: a leading "/" is scope-relative too, and is prepended with
//     scopePath whenever scopePath is non-empty (spec §9 pins this to the
//     "scoped" interpretation across both of the source's conflicting
//     behaviors).
func ExpandPath(path string, scopePath string, version a2ui.ProtocolVersion) string {
	hasLeadingSlash := strings.HasPrefix(path, "/")

	if version == a2ui.V0_9 {
		if hasLeadingSlash {
			return path
		}
		return joinScope(scopePath, path)
	}

	// v0.8
	if hasLeadingSlash {
		if scopePath == "" {
			return path
		}
		return scopePath + path
	}
	return joinScope(scopePath, path)
}

func joinScope(scopePath, relative string) string {
	if scopePath == "" {
		return "/" + relative
	}
	if relative == "" {
		return scopePath
	}
	return strings.TrimSuffix(scopePath, "/") + "/" + relative
}

// standardCalls is the closed set of v0.9 function-call names (spec §4.2
// rule 3). A call outside this set passes as true (fail-safe), never
// rejected, so a forward-compatible client doesn't get stuck on an unknown
// validation function.
var standardCalls = map[string]func(args map[string]interface{}) bool{
	"required": callRequired,
	"email":    callEmail,
	"regex":    callRegex,
	"length":   callLength,
	"numeric":  callNumeric,
}

func resolveCall(value a2ui.DynamicValue, dataModel interface{}, scopePath string, version a2ui.ProtocolVersion) interface{} {
	fn, ok := standardCalls[value.Call]
	if !ok {
		return true
	}
	args := make(map[string]interface{}, len(value.Args))
	for k, v := range value.Args {
		args[k] = Resolve(v, dataModel, scopePath, version)
	}
	return fn(args)
}

func callRequired(args map[string]interface{}) bool {
	v := args["value"]
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func callEmail(args map[string]interface{}) bool {
	s, ok := args["value"].(string)
	if !ok {
		return false
	}
	return emailPattern.MatchString(s)
}

func callRegex(args map[string]interface{}) bool {
	s, ok := args["value"].(string)
	if !ok {
		return false
	}
	pattern, ok := args["pattern"].(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func callLength(args map[string]interface{}) bool {
	s, ok := args["value"].(string)
	if !ok {
		return false
	}
	n := len([]rune(s))
	if min, ok := numericArg(args["min"]); ok && n < int(min) {
		return false
	}
	if max, ok := numericArg(args["max"]); ok && n > int(max) {
		return false
	}
	return true
}

func callNumeric(args map[string]interface{}) bool {
	switch v := args["value"].(type) {
	case float64:
		return true
	case string:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	default:
		_ = v
		return false
	}
}

func numericArg(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func resolveLogic(value a2ui.DynamicValue, dataModel interface{}, scopePath string, version a2ui.ProtocolVersion) interface{} {
	switch value.Logic {
	case "true":
		return true
	case "false":
		return false
	case "not":
		if len(value.Operands) == 0 {
			return true
		}
		return !truthy(Resolve(value.Operands[0], dataModel, scopePath, version))
	case "and":
		for _, op := range value.Operands {
			if !truthy(Resolve(op, dataModel, scopePath, version)) {
				return false
			}
		}
		return true
	case "or":
		for _, op := range value.Operands {
			if truthy(Resolve(op, dataModel, scopePath, version)) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func truthy(v interface{}) bool {
	b, ok := v.(bool)
	return ok && b
}

// EvaluateChecks resolves every check and returns the messages of the ones
// that fail (spec §4.2 "the evaluator reports the messages of all failing
// checks").
func EvaluateChecks(checks []a2ui.Check, dataModel interface{}, scopePath string, version a2ui.ProtocolVersion) []string {
	var failing []string
	for _, c := range checks {
		if !truthy(Resolve(c.Expr, dataModel, scopePath, version)) {
			msg := c.Message
			if msg == "" {
				msg = fmt.Sprintf("check failed: %s", c.Expr.Logic)
			}
			failing = append(failing, msg)
		}
	}
	return failing
}
