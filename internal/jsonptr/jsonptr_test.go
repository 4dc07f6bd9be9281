package jsonptr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitJoinRoundTrip(t *testing.T) {
	cases := []string{"/a/b/c", "/items/0/n", "/a~1b/c~0d", "a/b"}
	for _, c := range cases {
		segs := Split(c)
		require.NotEmpty(t, segs)
		assert.Equal(t, segs, Split(Join(segs)))
	}
}

func TestEscapeSequences(t *testing.T) {
	segs := Split("/a~1b/c~0d")
	assert.Equal(t, []string{"a/b", "c~d"}, segs)
	assert.Equal(t, "/a~1b/c~0d", Join(segs))
}

func TestGetMissingYieldsNil(t *testing.T) {
	root := map[string]interface{}{"a": map[string]interface{}{"b": 1}}
	assert.Nil(t, Get(root, Split("/a/missing")))
	assert.Nil(t, Get(root, Split("/missing/deeper")))
	assert.Equal(t, 1, Get(root, Split("/a/b")))
}

func TestGetArrayIndex(t *testing.T) {
	root := map[string]interface{}{"items": []interface{}{"x", "y", "z"}}
	assert.Equal(t, "y", Get(root, Split("/items/1")))
	assert.Nil(t, Get(root, Split("/items/99")))
	assert.Nil(t, Get(root, Split("/items/not-a-number")))
}

func TestSetWriteReadRoundTrip(t *testing.T) {
	var root interface{}
	root = Set(root, Split("/a/b/c"), "v")
	assert.Equal(t, "v", Get(root, Split("/a/b/c")))
}

func TestSetCreatesAncestors(t *testing.T) {
	root := map[string]interface{}{}
	root = Set(root, Split("/x/y/z"), 42).(map[string]interface{})
	assert.Equal(t, 42, Get(root, Split("/x/y/z")))
}

func TestSetThroughArrayIndexPreservesSiblings(t *testing.T) {
	root := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"n": "first"},
			map[string]interface{}{"n": "second"},
			map[string]interface{}{"n": "third"},
		},
	}
	root = Set(root, Split("/items/1/n"), "edited").(map[string]interface{})

	items := root["items"].([]interface{})
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].(map[string]interface{})["n"])
	assert.Equal(t, "edited", items[1].(map[string]interface{})["n"])
	assert.Equal(t, "third", items[2].(map[string]interface{})["n"])
	assert.Equal(t, "edited", Get(root, Split("/items/1/n")))
}

func TestMergePatchMapMerge(t *testing.T) {
	target := map[string]interface{}{"a": 1, "b": map[string]interface{}{"c": 2, "d": 3}}
	patch := map[string]interface{}{"b": map[string]interface{}{"c": 99, "d": nil}, "e": 5}
	result := MergePatch(target, patch).(map[string]interface{})
	assert.Equal(t, 1, result["a"])
	assert.Equal(t, 5, result["e"])
	b := result["b"].(map[string]interface{})
	assert.Equal(t, 99, b["c"])
	_, hasD := b["d"]
	assert.False(t, hasD)
}

func TestMergePatchArrayReplacesWholesale(t *testing.T) {
	target := map[string]interface{}{"items": []interface{}{1, 2, 3}}
	patch := map[string]interface{}{"items": []interface{}{9}}
	result := MergePatch(target, patch).(map[string]interface{})
	assert.Equal(t, []interface{}{9}, result["items"])
}
