package a2ui

// DynamicValue is a property value that may be resolved against a data
// model and scope path (spec §3.3). Exactly one of the Kind-selected fields
// is meaningful; the zero value is a JSON null literal.
//
// Modeled as a single struct with a Kind discriminator rather than an
// interface-typed union: the set of variants is closed (spec §9 "Polymorphism
// over message kinds"), and a struct keeps JSON marshal/unmarshal in the
// envelope parser straightforward without a custom UnmarshalJSON per variant
// combination.
type DynamicValue struct {
	Kind DynamicValueKind

	// Literal holds the value for Kind == KindLiteral: any JSON primitive,
	// array, or object, carried as native Go values (map[string]interface{},
	// []interface{}, string, float64, bool, nil).
	Literal interface{}

	// Path holds the JSON-Pointer path for Kind == KindPath.
	Path string
	// Default is an optional literal fallback used when Path resolves to
	// nothing under the data model's semantics (spec §3.3 "optionally
	// combined with a default literal"). Nil means "no default".
	Default *DynamicValue

	// Call holds the v0.9 function name for Kind == KindCall, e.g.
	// "required", "email", "regex", "length", "numeric".
	Call string
	// Args holds the named arguments to a function call, each itself a
	// dynamic value to be resolved before the function runs.
	Args map[string]DynamicValue

	// Logic holds the operator for Kind == KindLogic: "and", "or", "not",
	// "true", "false".
	Logic string
	// Operands holds the sub-expressions for "and"/"or"/"not". Unused for
	// "true"/"false".
	Operands []DynamicValue
}

// DynamicValueKind discriminates the DynamicValue union (spec §3.3).
type DynamicValueKind int

const (
	KindLiteral DynamicValueKind = iota
	KindPath
	KindCall
	KindLogic
)

// Literal builds a literal dynamic value.
func Literal(v interface{}) DynamicValue {
	return DynamicValue{Kind: KindLiteral, Literal: v}
}

// PathValue builds a path-reference dynamic value, optionally with a default.
func PathValue(path string, def *DynamicValue) DynamicValue {
	return DynamicValue{Kind: KindPath, Path: path, Default: def}
}

// Check is a v0.9 logic expression bundled with a human-readable message,
// used to disable interactive components until every check passes
// (spec §4.2 "Check rules").
type Check struct {
	Expr    DynamicValue
	Message string
}

// Component is one node in a surface's component graph (spec §3.2).
// Children are referenced by id, never by pointer (spec §9 "Reference
// cycles" — the graph is an arena+index structure keyed by id).
type Component struct {
	ID     string
	Type   string
	Weight *float64
	Props  map[string]Prop
}

// Prop is the value of one component property: either a dynamic value, or a
// structural children specification. At most one of Value/Children is set;
// a plain leaf property (text, color, …) only ever sets Value.
type Prop struct {
	Value    *DynamicValue
	Children *ChildrenSpec
}

// ChildrenSpec describes how a container component enumerates its children
// (spec §3.4): either an explicit ordered id list, or a template that
// instantiates one component per data-model element.
type ChildrenSpec struct {
	Explicit []string // non-nil for an explicit list (possibly empty)

	// Template fields; Template is true when this spec is a template rather
	// than an explicit list.
	Template    bool
	Path        string // JSON-Pointer to the array/object to enumerate
	ComponentID string // component id instantiated once per element
}

// ClientCapabilities is the negotiated capability set a client attaches to
// every outbound event (spec §3.5).
type ClientCapabilities struct {
	SupportedCatalogIDs []string
	InlineCatalogs      []CatalogDescriptor
}

// CatalogDescriptor is a client-supplied inline catalog definition: an id
// and the set of component type names it allows.
type CatalogDescriptor struct {
	ID    string
	Types []string
}
