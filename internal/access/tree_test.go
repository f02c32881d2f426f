package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeSetKeepsFirstPosition(t *testing.T) {
	tree := NewTree().Set("a", true).Set("b", false).Set("a", false)
	require.Equal(t, 2, tree.Len())
	entries := tree.resolved()
	require.Equal(t, "a", entries[0].key)
	require.Equal(t, false, entries[0].value)
	require.Equal(t, "b", entries[1].key)
}

func TestTreeResolvedStripsSelfSuffix(t *testing.T) {
	tree := NewTree().Set("foo:self", true).Set("bar", true)
	entries := tree.resolved()
	require.Equal(t, "foo", entries[0].key)
	require.Equal(t, "bar", entries[1].key)
}

func TestTreeUnmarshalPreservesKeyOrder(t *testing.T) {
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(`{"c": true, "a": {"b": false}, "z": true}`), &tree))
	require.Equal(t, []string{"c", "a", "z"}, tree.keys)
	child, ok := tree.values["a"].(*Tree)
	require.True(t, ok)
	require.Equal(t, []string{"b"}, child.keys)
}

func TestTreeUnmarshalRejectsNonObjects(t *testing.T) {
	for _, input := range []string{`null`, `[]`, `"x"`, `7`, `true`, `{"a": null}`, `{"a": {"b": [1]}}`} {
		var tree Tree
		require.ErrorIs(t, json.Unmarshal([]byte(input), &tree), ErrMalformedTree, "input %s", input)
	}
}
