package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenEmptyTree(t *testing.T) {
	catalog := DefaultCatalog()
	grants, err := catalog.Flatten(NewTree(), ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestFlattenBooleanLeaves(t *testing.T) {
	catalog := DefaultCatalog()
	root := ParseList(PermRoot)

	grants, err := catalog.Flatten(NewTree().Set("foo", false), root, nil)
	require.NoError(t, err)
	require.Empty(t, grants)

	grants, err = catalog.Flatten(NewTree().Set("foo", true), root, nil)
	require.NoError(t, err)
	require.Equal(t, "foo", grants)
}

func TestFlattenNestedPaths(t *testing.T) {
	catalog := DefaultCatalog()
	tree := NewTree().
		Set("event", NewTree().
			Set("settings", true).
			Set("visible", true)).
		Set("volunteer", NewTree().
			Set("avatars", true))
	grants, err := catalog.Flatten(tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, "event.settings,event.visible,volunteer.avatars", grants)
}

func TestFlattenCRUDAllOperations(t *testing.T) {
	catalog := DefaultCatalog()
	tree := NewTree().Set("event", NewTree().Set("hotels", NewTree().
		Set("create", true).
		Set("read", true).
		Set("update", true).
		Set("delete", true)))
	grants, err := catalog.Flatten(tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, PermEventHotels, grants)
}

func TestFlattenCRUDSubsetKeepsFixedOrder(t *testing.T) {
	catalog := DefaultCatalog()
	// Submission order update-before-read must not affect emission order.
	tree := NewTree().Set("event", NewTree().Set("hotels", NewTree().
		Set("update", true).
		Set("read", true).
		Set("delete", false)))
	grants, err := catalog.Flatten(tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, "event.hotels:read,event.hotels:update", grants)
}

func TestFlattenCRUDNothingGranted(t *testing.T) {
	catalog := DefaultCatalog()
	tree := NewTree().Set("event", NewTree().Set("hotels", NewTree().
		Set("read", false)))
	grants, err := catalog.Flatten(tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestFlattenSelfSuffixDeclarationOrder(t *testing.T) {
	catalog := DefaultCatalog()
	root := ParseList(PermRoot)

	// The later sibling wins for the resolved key. Plain key first, then
	// a false self-scoped variant: net result is no grant.
	grants, err := catalog.Flatten(NewTree().
		Set("foo", true).
		Set("foo:self", false), root, nil)
	require.NoError(t, err)
	require.Empty(t, grants)

	// Reversed declaration order grants the permission.
	grants, err = catalog.Flatten(NewTree().
		Set("foo:self", false).
		Set("foo", true), root, nil)
	require.NoError(t, err)
	require.Equal(t, "foo", grants)
}

func TestFlattenOrderIndependentContent(t *testing.T) {
	catalog := DefaultCatalog()
	root := ParseList(PermRoot)

	first, err := catalog.Flatten(NewTree().
		Set("event", NewTree().Set("settings", true).Set("visible", true)), root, nil)
	require.NoError(t, err)
	second, err := catalog.Flatten(NewTree().
		Set("event", NewTree().Set("visible", true).Set("settings", true)), root, nil)
	require.NoError(t, err)

	require.ElementsMatch(t, ParseList(first).Tokens(), ParseList(second).Tokens())
}

func TestFlattenMalformedInput(t *testing.T) {
	catalog := DefaultCatalog()
	root := ParseList(PermRoot)

	for _, input := range []any{nil, []int{1, 2}, "x", 42} {
		_, err := catalog.Flatten(input, root, nil)
		require.ErrorIs(t, err, ErrMalformedTree, "input %v", input)
	}

	var nilTree *Tree
	_, err := catalog.Flatten(nilTree, root, nil)
	require.ErrorIs(t, err, ErrMalformedTree)
}

func TestFlattenRestrictedRequiresRoot(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)
	tree := NewTree().Set("volunteer", NewTree().Set("export", true))

	_, err := catalog.Flatten(tree, actor, ParseList(""))
	require.ErrorIs(t, err, ErrRestricted)
	require.ErrorContains(t, err, PermVolunteerExport)
}

func TestFlattenRestrictedRegrantAllowed(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)
	tree := NewTree().Set("volunteer", NewTree().Set("export", true))

	grants, err := catalog.Flatten(tree, actor, ParseList(PermVolunteerExport))
	require.NoError(t, err)
	require.Equal(t, PermVolunteerExport, grants)
}

func TestFlattenRestrictedGrantedByRoot(t *testing.T) {
	catalog := DefaultCatalog()
	tree := NewTree().Set("volunteer", NewTree().Set("export", true))

	grants, err := catalog.Flatten(tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, PermVolunteerExport, grants)
}

func TestFlattenPerOperationRestriction(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)

	// Read access to system logs is unrestricted.
	tree := NewTree().Set("system", NewTree().Set("logs", NewTree().Set("read", true)))
	grants, err := catalog.Flatten(tree, actor, ParseList(""))
	require.NoError(t, err)
	require.Equal(t, "system.logs:read", grants)

	// Delete is root-only.
	tree = NewTree().Set("system", NewTree().Set("logs", NewTree().Set("delete", true)))
	_, err = catalog.Flatten(tree, actor, ParseList(""))
	require.ErrorIs(t, err, ErrRestricted)
	require.ErrorContains(t, err, "system.logs:delete")

	// Unless the target already held that exact operation.
	grants, err = catalog.Flatten(tree, actor, ParseList("system.logs:delete"))
	require.NoError(t, err)
	require.Equal(t, "system.logs:delete", grants)
}

func TestFlattenBareTokenCheckedAgainstOperationRules(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)

	// A fully granted CRUD permission emits a bare token, which still has
	// to satisfy the delete restriction on system.logs.
	tree := NewTree().Set("system", NewTree().Set("logs", NewTree().
		Set("create", true).
		Set("read", true).
		Set("update", true).
		Set("delete", true)))
	_, err := catalog.Flatten(tree, actor, ParseList("system.logs:delete"))
	require.ErrorIs(t, err, ErrRestricted)

	grants, err := catalog.Flatten(tree, actor, ParseList(PermSystemLogs))
	require.NoError(t, err)
	require.Equal(t, PermSystemLogs, grants)
}

func TestFlattenParentTokenBindsChildRestrictions(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)

	// A bare "event" grant dominates every event.* permission, so the
	// restriction on event.refunds binds it for non-root actors.
	_, err := catalog.Flatten(NewTree().Set("event", true), actor, ParseList(""))
	require.ErrorIs(t, err, ErrRestricted)
	require.ErrorContains(t, err, "event")

	grants, err := catalog.Flatten(NewTree().Set("event", true), ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, "event", grants)
}

func TestFlattenBoundaryMatchingDoesNotOverreach(t *testing.T) {
	restricted, err := NewCatalog([]Descriptor{
		{Name: "event.settingsAdvanced", Kind: KindBoolean, Restriction: RestrictAll(RuleRoot)},
		{Name: "event.settings", Kind: KindBoolean},
	})
	require.NoError(t, err)

	// event.settings shares a raw string prefix with the restricted
	// event.settingsAdvanced entry, but must not inherit its rule.
	grants, err := restricted.Flatten(NewTree().
		Set("event", NewTree().Set("settings", true)), ParseList(""), nil)
	require.NoError(t, err)
	require.Equal(t, "event.settings", grants)
}

func TestFlattenNothingPersistedOnViolation(t *testing.T) {
	catalog := DefaultCatalog()
	actor := ParseList(PermAdmin)

	// A valid grant before the violating one must not leak out.
	tree := NewTree().
		Set("event", NewTree().Set("settings", true)).
		Set("volunteer", NewTree().Set("permissions", true))
	grants, err := catalog.Flatten(tree, actor, ParseList(""))
	require.ErrorIs(t, err, ErrRestricted)
	require.Empty(t, grants)
}

func TestFlattenFromJSONPreservesOrder(t *testing.T) {
	catalog := DefaultCatalog()

	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(`{
		"event": {"visible": true, "settings": true},
		"volunteer": {"avatars": true}
	}`), &tree))

	grants, err := catalog.Flatten(&tree, ParseList(PermRoot), nil)
	require.NoError(t, err)
	require.Equal(t, "event.visible,event.settings,volunteer.avatars", grants)
}

func TestFlattenFromJSONMalformed(t *testing.T) {
	for _, input := range []string{`null`, `[1,2]`, `"x"`, `{"event":[true]}`, `{"event":{"settings":1}}`} {
		var tree Tree
		err := json.Unmarshal([]byte(input), &tree)
		require.ErrorIs(t, err, ErrMalformedTree, "input %s", input)
	}
}
