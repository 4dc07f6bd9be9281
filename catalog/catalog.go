// Package catalog implements the process-wide catalog registry and the
// per-version resolution/negotiation rules (spec §4.5).
//
// Grounded on other_examples/04e96308_jgindin-A2UI__samples-agent-adk-rizzcharts-go-catalog.go.go
// — the reference Go A2UI catalog loader: resolving a client's
// supported-catalog-ids/inline-catalogs against a known standard catalog id
// (and its legacy aliases), falling back to an explicit unsupported/missing
// outcome rather than guessing.
package catalog

import (
	"sort"
	"sync"

	"github.com/tenzoki/a2ui-go"
)

// Module is a registered catalog: an id and the component-type allowlist it
// exposes. Rendering itself is out of scope for this runtime (spec §1
// "the runtime validates against registered catalog descriptors but does
// not render widgets"), so Module carries only the validation surface.
type Module struct {
	ID    string
	Types []string
}

// Allows reports whether componentType is present in this module's
// allowlist.
func (m Module) Allows(componentType string) bool {
	for _, t := range m.Types {
		if t == componentType {
			return true
		}
	}
	return false
}

// Registry is the process-wide catalog-id -> Module map (spec §9 "the
// catalog registry is process-wide, copy-on-register, read-mostly;
// registration is idempotent").
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: map[string]Module{}}
}

// Register adds or idempotently replaces a module. The Types slice is
// copied so a caller mutating its original slice afterward cannot affect
// the registered module (copy-on-register).
func (r *Registry) Register(m Module) {
	typesCopy := make([]string, len(m.Types))
	copy(typesCopy, m.Types)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[m.ID] = Module{ID: m.ID, Types: typesCopy}
}

// Lookup returns the module registered under id, if any.
func (r *Registry) Lookup(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// IDs returns every registered catalog id, sorted, mainly for diagnostics
// and tests.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.modules))
	for id := range r.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve applies the per-version negotiation rules of spec §4.5 to a
// requested catalog id and the session's negotiated client capabilities.
// It returns the canonical resolved id (empty on error) and, when the
// requested id could not be honored, a ProtocolError describing why.
func Resolve(r *Registry, version a2ui.ProtocolVersion, catalogID string, caps a2ui.ClientCapabilities) (string, *a2ui.ProtocolError) {
	if version == a2ui.V0_9 {
		return resolveV09(r, catalogID)
	}
	return resolveV08(r, catalogID, caps)
}

func resolveV09(r *Registry, catalogID string) (string, *a2ui.ProtocolError) {
	if catalogID == "" {
		return "", a2ui.NewProtocolError(a2ui.ErrMissingCatalogID, "catalogId is mandatory in v0.9", "", nil)
	}
	if _, ok := r.Lookup(catalogID); ok {
		return catalogID, nil
	}
	return "", a2ui.NewProtocolError(a2ui.ErrUnsupportedCatalog, "unknown catalog id", "", map[string]interface{}{"catalogId": catalogID})
}

func resolveV08(r *Registry, catalogID string, caps a2ui.ClientCapabilities) (string, *a2ui.ProtocolError) {
	if catalogID == "" {
		return a2ui.StandardCatalogIDV0_8, nil
	}
	if canonical, isAlias := a2ui.StandardCatalogAliasesV0_8[catalogID]; isAlias {
		return canonical, nil
	}

	if _, ok := r.Lookup(catalogID); ok {
		if !advertised(caps.SupportedCatalogIDs, catalogID) {
			return "", a2ui.NewProtocolError(a2ui.ErrCatalogNotInCapabilities, "catalog not in client capabilities", "", map[string]interface{}{"catalogId": catalogID})
		}
		return catalogID, nil
	}

	if inlineDescriptor(caps.InlineCatalogs, catalogID) {
		return "", a2ui.NewProtocolError(a2ui.ErrInlineCatalogNotSupported, "inline catalogs are not rendered server-side", "", map[string]interface{}{"catalogId": catalogID})
	}

	return "", a2ui.NewProtocolError(a2ui.ErrUnsupportedCatalog, "unknown catalog id", "", map[string]interface{}{"catalogId": catalogID})
}

func advertised(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func inlineDescriptor(descs []a2ui.CatalogDescriptor, id string) bool {
	for _, d := range descs {
		if d.ID == id {
			return true
		}
	}
	return false
}

// AllowedType reports whether componentType validates against the resolved
// catalog. Validation is permissive for an unresolved catalog id (spec
// §4.5 "for unknown catalogs validation is permissive").
func AllowedType(r *Registry, resolvedCatalogID string, componentType string) bool {
	if resolvedCatalogID == "" {
		return true
	}
	m, ok := r.Lookup(resolvedCatalogID)
	if !ok {
		return true
	}
	return m.Allows(componentType)
}
