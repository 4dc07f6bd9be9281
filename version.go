// Package a2ui defines the wire-level vocabulary shared by every A2UI
// runtime package: protocol versions, MIME/extension identifiers, the
// component and surface data model, and the dynamic-value union used for
// property bindings.
//
// Grounded on the envelope-as-wire-contract style of
// internal/envelope/envelope.go in the teacher repo, narrowed from a generic
// routing envelope to the closed A2UI grammar in spec §3–§4.
package a2ui

// ProtocolVersion identifies which of the two supported A2UI wire dialects
// a surface speaks. Once a surface has applied its first envelope the
// version is pinned and never changes (spec §3.1).
type ProtocolVersion string

const (
	// V0_8 is the original envelope grammar (surfaceUpdate, dataModelUpdate,
	// beginRendering, userAction).
	V0_8 ProtocolVersion = "v0_8"
	// V0_9 is the current envelope grammar (createSurface, updateComponents,
	// updateDataModel, action) with native JSON literals and function/logic
	// expressions.
	V0_9 ProtocolVersion = "v0_9"
)

// IsValid reports whether v is one of the two supported protocol versions.
func (v ProtocolVersion) IsValid() bool {
	return v == V0_8 || v == V0_9
}

const (
	// MIMEType is the content type for A2UI envelopes carried as A2A
	// DataParts and HTTP bodies (spec §6.3).
	MIMEType = "application/json+a2ui"

	// ExtensionURIV0_8 is the A2A extension URI advertised by v0.8 agents.
	ExtensionURIV0_8 = "https://a2ui.org/a2a-extension/a2ui/v0.8"
	// ExtensionURIV0_9 is the A2A extension URI advertised by v0.9 agents.
	ExtensionURIV0_9 = "https://a2ui.org/a2a-extension/a2ui/v0.9"
)

// ExtensionURI returns the A2A extension URI for the given protocol version.
func ExtensionURI(v ProtocolVersion) string {
	if v == V0_8 {
		return ExtensionURIV0_8
	}
	return ExtensionURIV0_9
}

// Standard catalog identifiers (spec §4.5). v0.8 historically accumulated
// multiple aliases for the same standard catalog; v0.9 has exactly one.
const (
	StandardCatalogIDV0_8        = "standard"
	StandardCatalogIDV0_8AliasGM = "google.genmedia.standard" // legacy alias
	StandardCatalogIDV0_9        = "https://a2ui.org/catalogs/standard/v0.9"
)

// StandardCatalogAliasesV0_8 maps every known v0.8 alias to the canonical
// standard catalog id.
var StandardCatalogAliasesV0_8 = map[string]string{
	StandardCatalogIDV0_8:        StandardCatalogIDV0_8,
	StandardCatalogIDV0_8AliasGM: StandardCatalogIDV0_8,
}

// Default structural limits (spec §6.5). They hold the same values as
// config.Default(); surface.Store falls back to DefaultMaxComponents when
// its configured component limit is zero.
const (
	DefaultMaxComponents    = 1000
	DefaultMaxTemplateItems = 1000
	DefaultMaxDepth         = 64
	DefaultMaxPathSegments  = 32
)
