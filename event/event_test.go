package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/event"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/surface"
)

func TestBuildActionV09Shape(t *testing.T) {
	req := event.ActionRequest{
		Name:        "submit",
		SurfaceID:   "s",
		ComponentID: "btn",
		Context:     map[string]a2ui.DynamicValue{"email": a2ui.Literal("a@b.com")},
	}
	env := event.BuildAction(a2ui.V0_9, req, nil)
	action, ok := env["action"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "submit", action["name"])
	assert.Equal(t, "s", action["surfaceId"])
	assert.Equal(t, "btn", action["sourceComponentId"])
	assert.NotEmpty(t, action["timestamp"])

	ctx, ok := action["context"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a@b.com", ctx["email"])
}

func TestBuildActionV08Shape(t *testing.T) {
	req := event.ActionRequest{
		Name:        "submit",
		SurfaceID:   "s",
		ComponentID: "btn",
		Context:     map[string]a2ui.DynamicValue{"email": a2ui.Literal("a@b.com")},
	}
	env := event.BuildAction(a2ui.V0_8, req, nil)
	action, ok := env["userAction"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "submit", action["name"])
	assert.Equal(t, "btn", action["sourceComponentId"])

	ctxList, ok := action["context"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, ctxList, 1)
	assert.Equal(t, "email", ctxList[0]["key"])
	assert.Equal(t, "a@b.com", ctxList[0]["value"])
}

func TestBuildActionResolvesPathAgainstDataModel(t *testing.T) {
	dm := map[string]interface{}{"counter": float64(7)}
	req := event.ActionRequest{
		Name:      "increment",
		SurfaceID: "s",
		Context:   map[string]a2ui.DynamicValue{"current": a2ui.PathValue("/counter", nil)},
	}
	env := event.BuildAction(a2ui.V0_9, req, dm)
	action := env["action"].(map[string]interface{})
	ctx := action["context"].(map[string]interface{})
	assert.Equal(t, float64(7), ctx["current"])
}

func TestBuildErrorShape(t *testing.T) {
	env := event.BuildError(event.ErrorRequest{
		Type:      a2ui.ErrUnknownComponent,
		Message:   "bad type",
		SurfaceID: "s",
		Details:   map[string]interface{}{"types": []string{"UnknownWidget"}},
	})
	errBody, ok := env["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(a2ui.ErrUnknownComponent), errBody["type"])
	assert.Equal(t, "bad type", errBody["message"])
	assert.Equal(t, "s", errBody["surfaceId"])
	assert.NotEmpty(t, errBody["timestamp"])
}

func TestBroadcastSnapshotOnlyIncludesFlaggedSurfaces(t *testing.T) {
	store := surface.NewStore(config.Default().Limits)
	store.EnsureSurface("a", a2ui.V0_9)
	store.EnsureSurface("b", a2ui.V0_9)
	require.Nil(t, store.ReplaceDataModel("a", map[string]interface{}{"x": 1}, ""))
	require.Nil(t, store.MarkReady("a", "root", "std", true))
	require.Nil(t, store.MarkReady("b", "root", "std", false))

	snap := event.BroadcastSnapshot(store)
	assert.Contains(t, snap, "a")
	assert.NotContains(t, snap, "b")
}
