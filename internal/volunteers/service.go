package volunteers

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/shared"
)

// SessionRevoker drops all active sessions of a volunteer. Implemented by
// shared.SessionManager.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// Service orchestrates volunteer account administration.
type Service struct {
	repo     Repository
	catalog  *access.Catalog
	audit    *shared.AuditLogger
	sessions SessionRevoker
	collator *collate.Collator
}

// NewService constructs a Service.
func NewService(repo Repository, catalog *access.Catalog, audit *shared.AuditLogger, sessions SessionRevoker) *Service {
	if catalog == nil {
		catalog = access.DefaultCatalog()
	}
	return &Service{
		repo:     repo,
		catalog:  catalog,
		audit:    audit,
		sessions: sessions,
		// Volunteer names follow Dutch sorting conventions.
		collator: collate.New(language.Dutch, collate.IgnoreCase),
	}
}

// List returns volunteers ordered by name, with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Volunteer, shared.Pagination, error) {
	result, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	// Postgres collation of the deployment may not match the UI
	// expectation, so re-sort the page with the Dutch collator.
	s.collator.Sort(byName{volunteers: result, collator: s.collator})
	return result, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get fetches a volunteer by ID.
func (s *Service) Get(ctx context.Context, id int64) (Volunteer, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfile updates name and phone of a volunteer.
func (s *Service) UpdateProfile(ctx context.Context, actorID, id int64, name, phone string) (Volunteer, error) {
	if name == "" {
		return Volunteer{}, fmt.Errorf("volunteers: name required")
	}
	volunteer, err := s.repo.UpdateProfile(ctx, id, name, phone)
	if err != nil {
		return Volunteer{}, err
	}
	s.record(ctx, actorID, "volunteer.profile.update", volunteer.ID, map[string]any{
		"name": name,
	})
	return volunteer, nil
}

// UpdatePermissions flattens the submitted permission tree against the
// catalog and persists the result on the target volunteer. The acting
// user's own access decides whether restricted permissions may change; the
// target's pre-existing grants permit no-op regrants. On success all of the
// target's sessions are revoked so stale access snapshots disappear.
func (s *Service) UpdatePermissions(ctx context.Context, actorID, targetID int64, tree *access.Tree) (string, error) {
	actor, err := s.repo.Get(ctx, actorID)
	if err != nil {
		return "", fmt.Errorf("volunteers: load actor: %w", err)
	}
	target, err := s.repo.Get(ctx, targetID)
	if err != nil {
		return "", fmt.Errorf("volunteers: load target: %w", err)
	}

	grants, err := s.catalog.Flatten(tree, access.ParseList(actor.Grants), access.ParseList(target.Grants))
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdateGrants(ctx, targetID, grants); err != nil {
		return "", err
	}

	s.record(ctx, actorID, "volunteer.permissions.update", targetID, map[string]any{
		"grants":   grants,
		"previous": target.Grants,
	})

	if s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, strconv.FormatInt(targetID, 10)); err != nil {
			return "", fmt.Errorf("volunteers: revoke sessions: %w", err)
		}
	}
	return grants, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "volunteer",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}

// byName adapts a volunteer slice to the collate.Lister interface.
type byName struct {
	volunteers []Volunteer
	collator   *collate.Collator
}

func (b byName) Len() int { return len(b.volunteers) }

func (b byName) Swap(i, j int) {
	b.volunteers[i], b.volunteers[j] = b.volunteers[j], b.volunteers[i]
}

func (b byName) Bytes(i int) []byte { return []byte(b.volunteers[i].Name) }
