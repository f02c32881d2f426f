package volunteers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/shared"
)

type memoryRepo struct {
	volunteers map[int64]Volunteer
}

func newMemoryRepo(volunteers ...Volunteer) *memoryRepo {
	repo := &memoryRepo{volunteers: make(map[int64]Volunteer)}
	for _, v := range volunteers {
		repo.volunteers[v.ID] = v
	}
	return repo
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Volunteer, int, error) {
	result := make([]Volunteer, 0, len(r.volunteers))
	for _, v := range r.volunteers {
		result = append(result, v)
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Volunteer, error) {
	v, ok := r.volunteers[id]
	if !ok {
		return Volunteer{}, shared.ErrNotFound
	}
	return v, nil
}

func (r *memoryRepo) UpdateProfile(ctx context.Context, id int64, name, phone string) (Volunteer, error) {
	v, ok := r.volunteers[id]
	if !ok {
		return Volunteer{}, shared.ErrNotFound
	}
	v.Name = name
	v.Phone = phone
	r.volunteers[id] = v
	return v, nil
}

func (r *memoryRepo) UpdateGrants(ctx context.Context, id int64, grants string) error {
	v, ok := r.volunteers[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.Grants = grants
	r.volunteers[id] = v
	return nil
}

type fakeRevoker struct {
	revoked []string
}

func (f *fakeRevoker) RevokeUser(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func TestUpdatePermissionsPersistsFlattenedGrants(t *testing.T) {
	repo := newMemoryRepo(
		Volunteer{ID: 1, Name: "Root Operator", Grants: access.PermRoot},
		Volunteer{ID: 2, Name: "Team Lead"},
	)
	revoker := &fakeRevoker{}
	svc := NewService(repo, nil, nil, revoker)

	tree := access.NewTree().
		Set("event", access.NewTree().
			Set("hotels", access.NewTree().Set("read", true).Set("update", true)).
			Set("settings", true))

	grants, err := svc.UpdatePermissions(context.Background(), 1, 2, tree)
	require.NoError(t, err)
	require.Equal(t, "event.hotels:read,event.hotels:update,event.settings", grants)

	stored, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, grants, stored.Grants)
	require.Equal(t, []string{"2"}, revoker.revoked)
}

func TestUpdatePermissionsRestrictedForNonRoot(t *testing.T) {
	repo := newMemoryRepo(
		Volunteer{ID: 1, Name: "Team Lead", Grants: access.PermAdmin},
		Volunteer{ID: 2, Name: "Volunteer"},
	)
	revoker := &fakeRevoker{}
	svc := NewService(repo, nil, nil, revoker)

	tree := access.NewTree().Set("volunteer", access.NewTree().Set("export", true))
	_, err := svc.UpdatePermissions(context.Background(), 1, 2, tree)
	require.ErrorIs(t, err, access.ErrRestricted)

	// Nothing persisted, nothing revoked.
	stored, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, stored.Grants)
	require.Empty(t, revoker.revoked)
}

func TestUpdatePermissionsRegrantByNonRoot(t *testing.T) {
	repo := newMemoryRepo(
		Volunteer{ID: 1, Name: "Team Lead", Grants: access.PermAdmin},
		Volunteer{ID: 2, Name: "Volunteer", Grants: access.PermVolunteerExport},
	)
	svc := NewService(repo, nil, nil, nil)

	tree := access.NewTree().Set("volunteer", access.NewTree().Set("export", true))
	grants, err := svc.UpdatePermissions(context.Background(), 1, 2, tree)
	require.NoError(t, err)
	require.Equal(t, access.PermVolunteerExport, grants)
}

func TestUpdatePermissionsClearsGrants(t *testing.T) {
	repo := newMemoryRepo(
		Volunteer{ID: 1, Name: "Root Operator", Grants: access.PermRoot},
		Volunteer{ID: 2, Name: "Volunteer", Grants: "event.settings"},
	)
	svc := NewService(repo, nil, nil, nil)

	grants, err := svc.UpdatePermissions(context.Background(), 1, 2, access.NewTree())
	require.NoError(t, err)
	require.Empty(t, grants)

	stored, err := repo.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, stored.Grants)
}

func TestUpdatePermissionsUnknownTarget(t *testing.T) {
	repo := newMemoryRepo(Volunteer{ID: 1, Grants: access.PermRoot})
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.UpdatePermissions(context.Background(), 1, 99, access.NewTree())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListSortsWithDutchCollation(t *testing.T) {
	repo := newMemoryRepo(
		Volunteer{ID: 1, Name: "Ömer"},
		Volunteer{ID: 2, Name: "Anna"},
		Volunteer{ID: 3, Name: "Oscar"},
	)
	svc := NewService(repo, nil, nil, nil)

	result, _, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, result, 3)
	require.Equal(t, "Anna", result[0].Name)
	// Ö collates with O, not after Z.
	require.Contains(t, []string{"Ömer", "Oscar"}, result[1].Name)
}
