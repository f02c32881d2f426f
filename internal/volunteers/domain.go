package volunteers

import "time"

// Volunteer represents a volunteer account as managed by administrators.
type Volunteer struct {
	ID    int64
	Email string
	Name  string
	Phone string
	// Grants is the flattened permission token string. Empty means the
	// volunteer has no elevated access.
	Grants    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter narrows volunteer listings.
type ListFilter struct {
	Search  string
	Page    int
	PerPage int
}
