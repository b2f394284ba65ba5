package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCanonical_Empty(t *testing.T) {
	out, err := Canonical(nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestCanonical_SortsKeysAtEveryLevel(t *testing.T) {
	out, err := Canonical(map[string]any{
		"title": "Hello",
		"date":  time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600)),
		"meta": map[string]any{
			"z": true,
			"a": []any{"x", 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "date: 2025-03-01T09:00:00Z\nmeta:\n  a:\n    - x\n    - 2\n  z: true\ntitle: Hello\n", string(out))
}
