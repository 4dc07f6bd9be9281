// Package envelope classifies and validates incoming A2UI wire envelopes
// into one closed set of kinds, and decodes their payloads into the shared
// a2ui vocabulary (spec §4.1).
//
// Grounded on internal/envelope/envelope.go in the teacher repo: a single
// wire-contract struct with a discriminating field, a NewX constructor per
// kind, and a Validate step that returns a structured error rather than
// panicking. The teacher's generic routing envelope (arbitrary
// MessageType/Payload) is narrowed here to the closed A2UI grammar; the
// "return a structured error, never throw" discipline carries over exactly.
package envelope

import "github.com/tenzoki/a2ui-go"

// Kind is the closed set of top-level envelope keys (spec §4.1).
type Kind string

const (
	KindSurfaceUpdate    Kind = "surfaceUpdate"    // v0.8
	KindUpdateComponents Kind = "updateComponents" // v0.9
	KindDataModelUpdate  Kind = "dataModelUpdate"  // v0.8
	KindUpdateDataModel  Kind = "updateDataModel"  // v0.9
	KindBeginRendering   Kind = "beginRendering"   // v0.8
	KindCreateSurface    Kind = "createSurface"    // v0.9
	KindDeleteSurface    Kind = "deleteSurface"    // common
	KindUserAction       Kind = "userAction"       // v0.8, outbound
	KindAction           Kind = "action"           // v0.9, outbound
	KindError            Kind = "error"            // common
)

// kindVersion maps a kind to the protocol version it belongs to, or "" for
// kinds shared by both (deleteSurface, error).
var kindVersion = map[Kind]a2ui.ProtocolVersion{
	KindSurfaceUpdate:    a2ui.V0_8,
	KindDataModelUpdate:  a2ui.V0_8,
	KindBeginRendering:   a2ui.V0_8,
	KindUserAction:       a2ui.V0_8,
	KindUpdateComponents: a2ui.V0_9,
	KindUpdateDataModel:  a2ui.V0_9,
	KindCreateSurface:    a2ui.V0_9,
	KindAction:           a2ui.V0_9,
}

// VersionOf returns the protocol version a kind belongs to, and false for
// the common kinds (deleteSurface, error) that exist in both.
func VersionOf(k Kind) (a2ui.ProtocolVersion, bool) {
	v, ok := kindVersion[k]
	return v, ok
}

// ContextEntry is one key/value pair of an outbound action's source
// context, resolved before emission (spec §4.4).
type ContextEntry struct {
	Key   string
	Value a2ui.DynamicValue
}

// Envelope is the fully decoded form of one parsed wire message, covering
// every kind in the closed set. Only the fields relevant to Kind are
// populated; the rest are zero.
type Envelope struct {
	Kind      Kind
	Version   a2ui.ProtocolVersion
	SurfaceID string

	// surfaceUpdate / updateComponents
	Components []a2ui.Component

	// dataModelUpdate (v0.8)
	ContentsPath    string
	ContentsEntries map[string]interface{}
	RootMerge       interface{} // set instead of ContentsEntries for a bare root-merge payload

	// updateDataModel (v0.9)
	DataValue interface{}
	DataPath  string

	// beginRendering / createSurface
	Root               string
	CatalogID          string
	Styles             interface{}
	BroadcastDataModel bool

	// userAction / action
	ActionName  string
	ComponentID string
	Timestamp   string
	Context     []ContextEntry

	// error
	ErrorType    a2ui.ErrorType
	ErrorMessage string
	ErrorDetails map[string]interface{}
}
