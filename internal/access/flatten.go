package access

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedTree indicates the submitted permission structure was not
	// a nested object of booleans. Callers should surface this as a client
	// error.
	ErrMalformedTree = errors.New("access: malformed permission tree")
	// ErrRestricted indicates a restricted permission the acting user may
	// not grant or change. Callers should surface this as permission denied
	// and must not persist anything.
	ErrRestricted = errors.New("access: restricted permission")
)

// Flatten converts a submitted permission tree into the canonical
// comma-joined token string stored on a volunteer account.
//
// The tree is walked depth-first in submission order. Boolean leaves emit
// their dotted path when true. A nested object whose qualified name is a
// CRUD catalog entry has its create/read/update/delete members collected:
// all four granted emits the bare path, a proper subset emits one
// "path:operation" token per granted operation. Any other nested object
// recurses with the path extended.
//
// After the walk, every emitted token is validated against the catalog's
// restrictions using the acting user's access and the grants the target
// already held; the first violation aborts the whole call. An empty result
// returns "" with no error — the caller persists that as NULL.
func (c *Catalog) Flatten(tree any, actor, existing Querier) (string, error) {
	node, ok := tree.(*Tree)
	if !ok || node == nil {
		return "", fmt.Errorf("%w: expected a nested object, got %T", ErrMalformedTree, tree)
	}
	tokens, err := c.flatten(node, "")
	if err != nil {
		return "", err
	}
	if err := c.validate(tokens, actor, existing); err != nil {
		return "", err
	}
	if len(tokens) == 0 {
		return "", nil
	}
	return strings.Join(tokens, ","), nil
}

func (c *Catalog) flatten(node *Tree, prefix string) ([]string, error) {
	var tokens []string
	for _, entry := range node.resolved() {
		qualified := prefix + entry.key
		switch value := entry.value.(type) {
		case bool:
			if value {
				tokens = append(tokens, qualified)
			}
		case *Tree:
			if desc, ok := c.Lookup(qualified); ok && desc.Kind == KindCRUD {
				granted, err := grantedOperations(qualified, value)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, expandCRUD(qualified, granted)...)
				continue
			}
			nested, err := c.flatten(value, qualified+".")
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, nested...)
		default:
			return nil, fmt.Errorf("%w: unexpected value for %s", ErrMalformedTree, qualified)
		}
	}
	return tokens, nil
}

// grantedOperations collects the granted operations of a CRUD node. Keys
// other than the four operation names are ignored; a nested object under an
// operation key is malformed.
func grantedOperations(name string, node *Tree) ([]Operation, error) {
	for _, key := range node.keys {
		if _, ok := node.values[key].(bool); !ok {
			return nil, fmt.Errorf("%w: operation %s of %s is not a boolean", ErrMalformedTree, key, name)
		}
	}
	granted := make([]Operation, 0, 4)
	for _, op := range Operations() {
		if value, ok := node.values[string(op)].(bool); ok && value {
			granted = append(granted, op)
		}
	}
	return granted, nil
}

// expandCRUD keeps fully granted CRUD permissions representable as a bare
// token, so downstream checks need only test token presence.
func expandCRUD(name string, granted []Operation) []string {
	if len(granted) == 0 {
		return nil
	}
	if len(granted) == len(Operations()) {
		return []string{name}
	}
	tokens := make([]string, 0, len(granted))
	for _, op := range granted {
		tokens = append(tokens, name+":"+string(op))
	}
	return tokens
}

// validate re-walks the emitted tokens against the catalog's restrictions.
// Permission sets are small and this runs once per form submission, so a
// linear scan per token is fine.
func (c *Catalog) validate(tokens []string, actor, existing Querier) error {
	for _, token := range tokens {
		base, op := splitToken(token)
		for _, name := range c.names {
			// Match on dotted boundaries so that a grant of e.g.
			// event.settings never binds restrictions declared on a
			// hypothetical event.settingsAdvanced entry.
			if name != base && !strings.HasPrefix(name, base+".") {
				continue
			}
			desc := c.entries[name]
			if desc.Restriction == nil {
				continue
			}
			for _, rule := range applicableRules(desc.Restriction, op) {
				if err := applyRule(rule, token, base, op, actor, existing); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applicableRules selects the rules binding an emitted token. A single rule
// applies regardless of operation. Per-operation rules apply when the token
// carries the matching operation; a token without an operation suffix is
// checked against every operation rule present.
func applicableRules(r *Restriction, op *Operation) []Rule {
	if r.Rule != "" {
		return []Rule{r.Rule}
	}
	var rules []Rule
	for _, candidate := range Operations() {
		rule, ok := r.Operations[candidate]
		if !ok {
			continue
		}
		if op == nil || *op == candidate {
			rules = append(rules, rule)
		}
	}
	return rules
}

// applyRule enforces a single restriction rule for an emitted token. A
// no-op regrant of a permission the target already held is always allowed.
func applyRule(rule Rule, token, base string, op *Operation, actor, existing Querier) error {
	switch rule {
	case RuleRoot:
		if actor != nil && actor.Can(PermRoot) {
			return nil
		}
		if op == nil {
			if existing != nil && existing.Can(base) {
				return nil
			}
		} else if existing != nil && existing.CanOperation(base, *op) {
			return nil
		}
		return fmt.Errorf("%w: %s may only be granted by a root operator", ErrRestricted, token)
	}
	return fmt.Errorf("access: unknown restriction rule %q on %s", rule, token)
}
