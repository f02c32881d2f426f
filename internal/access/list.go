package access

import (
	"sort"
	"strings"
)

// Querier answers capability checks against an access snapshot.
type Querier interface {
	// Can reports whether the bare permission is granted, either as a
	// boolean grant or as a fully granted CRUD permission.
	Can(name string) bool
	// CanOperation reports whether a single CRUD operation is granted. A
	// bare grant covers all four operations.
	CanOperation(name string, op Operation) bool
}

// List is an immutable access snapshot parsed from the comma-joined token
// string stored on a volunteer account. A nil or empty list denies
// everything.
type List struct {
	bare map[string]struct{}
	ops  map[string]map[Operation]struct{}
}

// ParseList parses a stored grant string into a queryable list.
func ParseList(raw string) *List {
	list := &List{
		bare: make(map[string]struct{}),
		ops:  make(map[string]map[Operation]struct{}),
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		base, op := splitToken(token)
		if op == nil {
			list.bare[base] = struct{}{}
			continue
		}
		granted := list.ops[base]
		if granted == nil {
			granted = make(map[Operation]struct{}, 4)
			list.ops[base] = granted
		}
		granted[*op] = struct{}{}
	}
	return list
}

// Can reports whether the bare permission is granted.
func (l *List) Can(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.bare[name]
	return ok
}

// CanOperation reports whether the given CRUD operation is granted.
func (l *List) CanOperation(name string, op Operation) bool {
	if l == nil {
		return false
	}
	if _, ok := l.bare[name]; ok {
		return true
	}
	granted, ok := l.ops[name]
	if !ok {
		return false
	}
	_, ok = granted[op]
	return ok
}

// IsEmpty reports whether the list carries no grants at all.
func (l *List) IsEmpty() bool {
	return l == nil || (len(l.bare) == 0 && len(l.ops) == 0)
}

// Tokens returns the granted tokens in canonical form, sorted lexically.
// Intended for diagnostics and audit metadata, not for persistence.
func (l *List) Tokens() []string {
	if l == nil {
		return nil
	}
	tokens := make([]string, 0, len(l.bare)+len(l.ops))
	for name := range l.bare {
		tokens = append(tokens, name)
	}
	for name, granted := range l.ops {
		for op := range granted {
			tokens = append(tokens, name+":"+string(op))
		}
	}
	sort.Strings(tokens)
	return tokens
}

// splitToken separates a canonical token into its base name and optional
// operation suffix. Only the four CRUD operations are recognised as
// suffixes; anything else stays part of the base name.
func splitToken(token string) (string, *Operation) {
	idx := strings.LastIndexByte(token, ':')
	if idx < 0 || !isOperation(token[idx+1:]) {
		return token, nil
	}
	op := Operation(token[idx+1:])
	return token[:idx], &op
}
