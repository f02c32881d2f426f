package access

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// selfSuffix marks a submitted key as the self-scoped variant of the same
// permission. It is stripped before catalog lookup; declaration order decides
// which sibling wins when both the plain and the self-scoped key appear.
const selfSuffix = ":self"

// Tree is a nested permission selection in submission order. Values are
// either bool (a leaf grant) or *Tree (sub-permissions). JSON object key
// order is semantic here, which a plain map cannot preserve.
type Tree struct {
	keys   []string
	values map[string]any
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Set stores a key. Value must be bool or *Tree; setting an existing key
// replaces its value while keeping the original position. Returns the tree
// for chaining.
func (t *Tree) Set(key string, value any) *Tree {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = value
	return t
}

// Len returns the number of keys at this level.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// UnmarshalJSON decodes a JSON object into the tree, preserving key order.
// Arrays, scalars and null are rejected at every depth.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected an object, got %v", ErrMalformedTree, tok)
	}
	decoded, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// decodeObject consumes the members and closing brace of an object whose
// opening brace has already been read.
func decodeObject(dec *json.Decoder) (*Tree, error) {
	t := NewTree()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedTree, keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		switch value := valTok.(type) {
		case bool:
			t.Set(key, value)
		case json.Delim:
			if value != '{' {
				return nil, fmt.Errorf("%w: %s holds an array", ErrMalformedTree, key)
			}
			child, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			t.Set(key, child)
		default:
			return nil, fmt.Errorf("%w: %s holds %v", ErrMalformedTree, key, valTok)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	return t, nil
}

type treeEntry struct {
	key   string
	value any
}

// resolved returns the entries of this level in declaration order with the
// self-scoped suffix stripped. A later sibling resolving to the same name
// overrides the value of an earlier one; the earlier position is kept.
func (t *Tree) resolved() []treeEntry {
	entries := make([]treeEntry, 0, len(t.keys))
	index := make(map[string]int, len(t.keys))
	for _, key := range t.keys {
		value := t.values[key]
		name := strings.TrimSuffix(key, selfSuffix)
		if i, ok := index[name]; ok {
			entries[i].value = value
			continue
		}
		index[name] = len(entries)
		entries = append(entries, treeEntry{key: name, value: value})
	}
	return entries
}
