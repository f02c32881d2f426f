package access

import (
	"fmt"
	"sort"
)

// Well-known permission names referenced across the application.
const (
	PermRoot  = "root"
	PermAdmin = "admin"

	PermEventApplications = "event.applications"
	PermEventHotels       = "event.hotels"
	PermEventRefunds      = "event.refunds"
	PermEventSchedules    = "event.schedules"
	PermEventSettings     = "event.settings"
	PermEventVisible      = "event.visible"

	PermSystemLogs = "system.logs"

	PermVolunteerAccounts    = "volunteer.accounts"
	PermVolunteerAvatars     = "volunteer.avatars"
	PermVolunteerExport      = "volunteer.export"
	PermVolunteerPermissions = "volunteer.permissions"
	PermVolunteerSilent      = "volunteer.silent"
)

// Operation identifies one of the four CRUD sub-operations.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Operations returns the CRUD sub-operations in canonical emission order.
func Operations() []Operation {
	return []Operation{OperationCreate, OperationRead, OperationUpdate, OperationDelete}
}

func isOperation(s string) bool {
	switch Operation(s) {
	case OperationCreate, OperationRead, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// Kind distinguishes plain boolean permissions from CRUD permissions.
type Kind int

const (
	// KindBoolean is a permission that is either granted or not.
	KindBoolean Kind = iota
	// KindCRUD is a permission with independently grantable create, read,
	// update and delete sub-operations.
	KindCRUD
)

// Rule limits who may grant or modify a permission.
type Rule string

// RuleRoot marks a permission that only holders of the root permission may
// grant or change.
const RuleRoot Rule = "root"

// Restriction attaches rules to a catalog entry. Either Rule is set and
// applies to every operation, or Operations maps individual operations to
// their rule.
type Restriction struct {
	Rule       Rule
	Operations map[Operation]Rule
}

// RestrictAll builds a restriction applying one rule to every operation.
func RestrictAll(rule Rule) *Restriction {
	return &Restriction{Rule: rule}
}

// RestrictOperations builds a restriction with per-operation rules.
func RestrictOperations(rules map[Operation]Rule) *Restriction {
	return &Restriction{Operations: rules}
}

// Descriptor declares a single grantable permission.
type Descriptor struct {
	Name        string
	Kind        Kind
	Description string
	Restriction *Restriction
}

// Catalog is the immutable set of permission descriptors. It is constructed
// once at startup and safe for unsynchronised concurrent reads.
type Catalog struct {
	entries map[string]Descriptor
	names   []string
}

// NewCatalog builds a catalog from descriptors, rejecting duplicates.
func NewCatalog(descriptors []Descriptor) (*Catalog, error) {
	entries := make(map[string]Descriptor, len(descriptors))
	names := make([]string, 0, len(descriptors))
	for _, desc := range descriptors {
		if desc.Name == "" {
			return nil, fmt.Errorf("access: descriptor without a name")
		}
		if _, ok := entries[desc.Name]; ok {
			return nil, fmt.Errorf("access: duplicate permission %q", desc.Name)
		}
		entries[desc.Name] = desc
		names = append(names, desc.Name)
	}
	sort.Strings(names)
	return &Catalog{entries: entries, names: names}, nil
}

// Lookup returns the descriptor for a permission name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	desc, ok := c.entries[name]
	return desc, ok
}

// Names returns all permission names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

var defaultCatalog = mustCatalog([]Descriptor{
	{Name: PermAdmin, Kind: KindBoolean, Description: "Access to the volunteer manager administration area", Restriction: RestrictAll(RuleRoot)},
	{Name: PermRoot, Kind: KindBoolean, Description: "Unrestricted access to every part of the volunteer manager", Restriction: RestrictAll(RuleRoot)},

	{Name: PermEventApplications, Kind: KindCRUD, Description: "Management of volunteer applications for an event", Restriction: RestrictOperations(map[Operation]Rule{OperationDelete: RuleRoot})},
	{Name: PermEventHotels, Kind: KindCRUD, Description: "Management of hotel rooms and bookings for an event"},
	{Name: PermEventRefunds, Kind: KindBoolean, Description: "Access to ticket refund requests", Restriction: RestrictAll(RuleRoot)},
	{Name: PermEventSchedules, Kind: KindCRUD, Description: "Management of volunteer schedules for an event"},
	{Name: PermEventSettings, Kind: KindBoolean, Description: "Ability to change event configuration"},
	{Name: PermEventVisible, Kind: KindBoolean, Description: "Visibility of unpublished events"},

	{Name: PermSystemLogs, Kind: KindCRUD, Description: "Access to system audit logs", Restriction: RestrictOperations(map[Operation]Rule{OperationDelete: RuleRoot})},

	{Name: PermVolunteerAccounts, Kind: KindCRUD, Description: "Management of volunteer accounts"},
	{Name: PermVolunteerAvatars, Kind: KindBoolean, Description: "Ability to moderate volunteer avatars"},
	{Name: PermVolunteerExport, Kind: KindBoolean, Description: "Export of volunteer data for third parties", Restriction: RestrictAll(RuleRoot)},
	{Name: PermVolunteerPermissions, Kind: KindBoolean, Description: "Ability to change volunteer permissions", Restriction: RestrictAll(RuleRoot)},
	{Name: PermVolunteerSilent, Kind: KindBoolean, Description: "Ability to apply changes without notifying the volunteer"},
})

func mustCatalog(descriptors []Descriptor) *Catalog {
	catalog, err := NewCatalog(descriptors)
	if err != nil {
		panic(err)
	}
	return catalog
}

// DefaultCatalog returns the catalog of permissions known to this build.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
