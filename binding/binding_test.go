package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/binding"
)

func TestResolveLiteral(t *testing.T) {
	v := a2ui.Literal("hello")
	assert.Equal(t, "hello", binding.Resolve(v, nil, "", a2ui.V0_9))
}

func TestResolvePathRootRelativeV09(t *testing.T) {
	dm := map[string]interface{}{"items": []interface{}{
		map[string]interface{}{"n": "a"},
	}}
	v := a2ui.PathValue("/items/0/n", nil)
	assert.Equal(t, "a", binding.Resolve(v, dm, "/items/0", a2ui.V0_9))
}

func TestResolvePathScopeRelativeBothVersions(t *testing.T) {
	dm := map[string]interface{}{"items": []interface{}{
		map[string]interface{}{"n": "a"},
	}}
	v := a2ui.PathValue("n", nil)
	assert.Equal(t, "a", binding.Resolve(v, dm, "/items/0", a2ui.V0_9))
	assert.Equal(t, "a", binding.Resolve(v, dm, "/items/0", a2ui.V0_8))
}

// TestV08ScopingQuirk is the single most error-prone rule in the evaluator
// (spec §4.2 rule 2, §9): a leading-"/" path in v0.8 is scope-relative
// when a non-empty scopePath is present, unlike v0.9 where it is always
// root-relative.
func TestV08ScopingQuirk(t *testing.T) {
	dm := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"label": "scoped"},
		},
		"label": "root",
	}
	v := a2ui.PathValue("/label", nil)

	// v0.9: absolute path ignores scopePath entirely.
	assert.Equal(t, "root", binding.Resolve(v, dm, "/items/0", a2ui.V0_9))

	// v0.8: absolute-looking path is prepended with scopePath when present.
	assert.Equal(t, "scoped", binding.Resolve(v, dm, "/items/0", a2ui.V0_8))

	// v0.8 with empty scopePath behaves like a genuine root path.
	assert.Equal(t, "root", binding.Resolve(v, dm, "", a2ui.V0_8))
}

func TestResolvePathMissingYieldsNil(t *testing.T) {
	dm := map[string]interface{}{}
	v := a2ui.PathValue("/missing", nil)
	assert.Nil(t, binding.Resolve(v, dm, "", a2ui.V0_9))
}

func TestResolvePathDefault(t *testing.T) {
	dm := map[string]interface{}{}
	def := a2ui.Literal("fallback")
	v := a2ui.PathValue("/missing", &def)
	assert.Equal(t, "fallback", binding.Resolve(v, dm, "", a2ui.V0_9))
}

func TestExpandPathInverseOfResolve(t *testing.T) {
	assert.Equal(t, "/items/0/n", binding.ExpandPath("n", "/items/0", a2ui.V0_9))
	assert.Equal(t, "/n", binding.ExpandPath("/n", "/items/0", a2ui.V0_9))
	assert.Equal(t, "/items/0/n", binding.ExpandPath("/n", "/items/0", a2ui.V0_8))
	assert.Equal(t, "/n", binding.ExpandPath("/n", "", a2ui.V0_8))
}

func TestResolveCallRequired(t *testing.T) {
	v := a2ui.DynamicValue{
		Kind: a2ui.KindCall,
		Call: "required",
		Args: map[string]a2ui.DynamicValue{"value": a2ui.Literal("")},
	}
	assert.Equal(t, false, binding.Resolve(v, nil, "", a2ui.V0_9))

	v.Args["value"] = a2ui.Literal("set")
	assert.Equal(t, true, binding.Resolve(v, nil, "", a2ui.V0_9))
}

func TestResolveCallUnknownPassesTrue(t *testing.T) {
	v := a2ui.DynamicValue{Kind: a2ui.KindCall, Call: "somethingFuture"}
	assert.Equal(t, true, binding.Resolve(v, nil, "", a2ui.V0_9))
}

func TestResolveCallEmail(t *testing.T) {
	ok := a2ui.DynamicValue{Kind: a2ui.KindCall, Call: "email", Args: map[string]a2ui.DynamicValue{
		"value": a2ui.Literal("a@b.com"),
	}}
	bad := a2ui.DynamicValue{Kind: a2ui.KindCall, Call: "email", Args: map[string]a2ui.DynamicValue{
		"value": a2ui.Literal("not-an-email"),
	}}
	assert.Equal(t, true, binding.Resolve(ok, nil, "", a2ui.V0_9))
	assert.Equal(t, false, binding.Resolve(bad, nil, "", a2ui.V0_9))
}

func TestResolveLogicAndOrNot(t *testing.T) {
	tru := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "true"}
	fal := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "false"}

	and := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "and", Operands: []a2ui.DynamicValue{tru, tru}}
	assert.Equal(t, true, binding.Resolve(and, nil, "", a2ui.V0_9))

	andFalse := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "and", Operands: []a2ui.DynamicValue{tru, fal}}
	assert.Equal(t, false, binding.Resolve(andFalse, nil, "", a2ui.V0_9))

	or := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "or", Operands: []a2ui.DynamicValue{fal, tru}}
	assert.Equal(t, true, binding.Resolve(or, nil, "", a2ui.V0_9))

	not := a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "not", Operands: []a2ui.DynamicValue{fal}}
	assert.Equal(t, true, binding.Resolve(not, nil, "", a2ui.V0_9))
}

func TestEvaluateChecksReportsAllFailingMessages(t *testing.T) {
	checks := []a2ui.Check{
		{Expr: a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "false"}, Message: "must be set"},
		{Expr: a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "true"}, Message: "always ok"},
		{Expr: a2ui.DynamicValue{Kind: a2ui.KindLogic, Logic: "false"}, Message: "must match pattern"},
	}
	failing := binding.EvaluateChecks(checks, nil, "", a2ui.V0_9)
	assert.ElementsMatch(t, []string{"must be set", "must match pattern"}, failing)
}
