package access

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseListBareGrants(t *testing.T) {
	list := ParseList("admin,event.settings")
	require.True(t, list.Can("admin"))
	require.True(t, list.Can("event.settings"))
	require.False(t, list.Can("event.visible"))
	require.False(t, list.IsEmpty())
}

func TestParseListOperationGrants(t *testing.T) {
	list := ParseList("event.hotels:read,event.hotels:update")
	require.False(t, list.Can("event.hotels"))
	require.True(t, list.CanOperation("event.hotels", OperationRead))
	require.True(t, list.CanOperation("event.hotels", OperationUpdate))
	require.False(t, list.CanOperation("event.hotels", OperationDelete))
}

func TestBareGrantCoversAllOperations(t *testing.T) {
	list := ParseList("event.hotels")
	for _, op := range Operations() {
		require.True(t, list.CanOperation("event.hotels", op), "operation %s", op)
	}
}

func TestParseListEmptyAndWhitespace(t *testing.T) {
	require.True(t, ParseList("").IsEmpty())
	require.True(t, ParseList(" , ,").IsEmpty())

	var nilList *List
	require.True(t, nilList.IsEmpty())
	require.False(t, nilList.Can("admin"))
	require.False(t, nilList.CanOperation("event.hotels", OperationRead))
}

func TestParseListUnknownSuffixStaysInName(t *testing.T) {
	// Only the four CRUD operations are token suffixes; anything else is
	// part of the permission name.
	list := ParseList("statistics:finances")
	require.True(t, list.Can("statistics:finances"))
	require.False(t, list.Can("statistics"))
}

func TestListTokensRoundTrip(t *testing.T) {
	list := ParseList("event.hotels:update,admin,event.hotels:read")
	require.Equal(t, []string{"admin", "event.hotels:read", "event.hotels:update"}, list.Tokens())
}
