package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContext_WithDoesNotMutateBase(t *testing.T) {
	src := map[string]any{"title": "Site", "lang": "en"}
	base := NewContext(src)
	src["title"] = "changed"

	page := base.With(map[string]any{"title": "Post", "is_post": true})

	require.Equal(t, map[string]any{"title": "Site", "lang": "en"}, base.Map())
	require.Equal(t, map[string]any{"title": "Post", "lang": "en", "is_post": true}, page.Map())
}

func TestContext_MapFlattensInnermostWins(t *testing.T) {
	ctx := NewContext(map[string]any{"a": 1, "b": 1}).
		With(map[string]any{"b": 2, "c": 2}).
		With(map[string]any{"c": 3})

	require.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, ctx.Map())

	m := ctx.Map()
	m["a"] = 99
	require.Equal(t, 1, ctx.Map()["a"])
}

func TestContext_SiblingsAreIndependent(t *testing.T) {
	base := NewContext(map[string]any{"x": 0})
	a := base.With(map[string]any{"x": "a"})
	b := base.With(map[string]any{"x": "b"})

	require.Equal(t, "a", a.Map()["x"])
	require.Equal(t, "b", b.Map()["x"])
	require.Equal(t, 0, base.Map()["x"])
}

func TestContext_ZeroValue(t *testing.T) {
	var ctx Context
	require.Empty(t, ctx.Map())
}
