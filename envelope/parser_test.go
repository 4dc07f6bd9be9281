package envelope_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
)

func limits() config.Limits {
	return config.Default().Limits
}

func TestParseRejectsMultipleTopLevelKeys(t *testing.T) {
	_, err := envelope.Parse([]byte(`{"createSurface":{},"deleteSurface":{}}`), limits())
	require.NotNil(t, err)
	assert.Equal(t, a2ui.ErrParse, err.Type)
}

func TestParseRejectsUnknownKey(t *testing.T) {
	_, err := envelope.Parse([]byte(`{"notAKind":{}}`), limits())
	require.NotNil(t, err)
	assert.Equal(t, a2ui.ErrParse, err.Type)
}

func TestParseCreateSurfaceScenarioS1(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"createSurface":{"surfaceId":"s","catalogId":"std"}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, envelope.KindCreateSurface, env.Kind)
	assert.Equal(t, a2ui.V0_9, env.Version)
	assert.Equal(t, "s", env.SurfaceID)
	assert.Equal(t, "std", env.CatalogID)
	assert.Equal(t, "root", env.Root)
}

func TestParseCreateSurfaceMissingCatalogID(t *testing.T) {
	_, err := envelope.Parse([]byte(`{"createSurface":{"surfaceId":"s"}}`), limits())
	require.NotNil(t, err)
	assert.Equal(t, a2ui.ErrMissingCatalogID, err.Type)
}

func TestParseUpdateComponentsFlatProps(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"updateComponents":{"surfaceId":"s","components":[
		{"id":"root","component":"Text","text":"hi"}
	]}}`), limits())
	require.Nil(t, err)
	require.Len(t, env.Components, 1)
	c := env.Components[0]
	assert.Equal(t, "root", c.ID)
	assert.Equal(t, "Text", c.Type)
	require.Contains(t, c.Props, "text")
	assert.Equal(t, "hi", c.Props["text"].Value.Literal)
}

func TestParseUpdateComponentsWithPathBinding(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"updateComponents":{"surfaceId":"s","components":[
		{"id":"t","component":"Text","text":{"path":"/counter"}}
	]}}`), limits())
	require.Nil(t, err)
	require.Len(t, env.Components, 1)
	v := env.Components[0].Props["text"].Value
	assert.Equal(t, a2ui.KindPath, v.Kind)
	assert.Equal(t, "/counter", v.Path)
}

func TestParseSurfaceUpdateV08WrappedComponent(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"surfaceUpdate":{"surfaceId":"s","components":[
		{"id":"root","component":{"Text":{"text":{"literalString":"hi"}}}}
	]}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, a2ui.V0_8, env.Version)
	require.Len(t, env.Components, 1)
	c := env.Components[0]
	assert.Equal(t, "Text", c.Type)
	assert.Equal(t, "hi", c.Props["text"].Value.Literal)
}

func TestParseTooManyComponentsScenarioS6(t *testing.T) {
	components := make([]interface{}, 1001)
	for i := range components {
		components[i] = map[string]interface{}{"id": "c", "component": "Text"}
	}
	raw, _ := buildComponentsPayload("s", components)
	_, err := envelope.Parse(raw, limits())
	require.NotNil(t, err)
	assert.Equal(t, a2ui.ErrValidation, err.Type)
	assert.Equal(t, 1001, err.Details["count"])
	assert.Equal(t, 1000, err.Details["limit"])
}

func TestParseUpdateDataModelV09(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"updateDataModel":{"surfaceId":"s","value":{"a":1},"path":"/x"}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, "/x", env.DataPath)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, env.DataValue)
}

func TestParseDataModelUpdateV08ContentsAdjacencyList(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"dataModelUpdate":{"surfaceId":"s","contents":[
		{"key":"name","valueString":"Ada"},
		{"key":"age","valueNumber":30}
	]}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, "Ada", env.ContentsEntries["name"])
	assert.Equal(t, float64(30), env.ContentsEntries["age"])
}

func TestParseDeleteSurfaceRequiresID(t *testing.T) {
	_, err := envelope.Parse([]byte(`{"deleteSurface":{}}`), limits())
	require.NotNil(t, err)
	assert.Equal(t, a2ui.ErrParse, err.Type)
}

func TestParseUserActionV08Context(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"userAction":{"surfaceId":"s","name":"submit","sourceComponentId":"btn","context":[
		{"key":"email","value":{"literalString":"a@b.com"}}
	]}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, "submit", env.ActionName)
	require.Len(t, env.Context, 1)
	assert.Equal(t, "email", env.Context[0].Key)
	assert.Equal(t, "a@b.com", env.Context[0].Value.Literal)
}

func TestParseActionV09ContextMap(t *testing.T) {
	env, err := envelope.Parse([]byte(`{"action":{"surfaceId":"s","name":"submit","sourceComponentId":"btn","context":{
		"email":"a@b.com"
	}}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, "btn", env.ComponentID)
	require.Len(t, env.Context, 1)
	assert.Equal(t, "email", env.Context[0].Key)
	assert.Equal(t, "a@b.com", env.Context[0].Value.Literal)
}

func TestParseUnknownComponentScenarioS5IsCaughtDownstream(t *testing.T) {
	// The parser itself decodes any type name; unknown_component is raised by
	// surface.Store.UpsertComponents against the resolved catalog allowlist
	// (spec §4.3), not by the parser. This test only confirms the parser
	// passes the type name through unchanged.
	env, err := envelope.Parse([]byte(`{"updateComponents":{"surfaceId":"s","components":[
		{"id":"x","component":"UnknownWidget"}
	]}}`), limits())
	require.Nil(t, err)
	assert.Equal(t, "UnknownWidget", env.Components[0].Type)
}

func buildComponentsPayload(surfaceID string, components []interface{}) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"updateComponents": map[string]interface{}{
			"surfaceId":  surfaceID,
			"components": components,
		},
	})
}
