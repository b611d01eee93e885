// Package router exposes a typed facade over the segment trie: patterns map
// to values of a single payload type, and a method-keyed mux keeps one tree
// per HTTP verb.
package router

import (
	"github.com/xin0nix/road-n-roll/router/trie"
)

// Matches is the capture container populated by lookups.
type Matches = trie.Matches

// Router maps path patterns to values of type T. It is a thin typed layer
// over a type-erased tree, so several routers with different payload types
// cost one tree implementation.
//
// Register is not safe for concurrent use; after setup the router may be
// shared freely for lookups.
type Router[T any] struct {
	tree *trie.Tree
}

// New returns an empty router.
func New[T any]() *Router[T] {
	return &Router[T]{tree: trie.New()}
}

// Register stores the value under the given path pattern. Grammar errors
// (trie.ErrPatternMalformed, trie.ErrDuplicateField,
// trie.ErrDuplicateVariadic) leave the router unchanged. Registering the
// same pattern again replaces the value.
func (r *Router[T]) Register(pattern string, value T) error {
	return r.tree.Add(pattern, &value)
}

// Lookup matches the request segments and returns a borrow of the stored
// value, valid for the lifetime of the router. On no-match m is left empty.
func (r *Router[T]) Lookup(segments []string, m *Matches) (*T, bool) {
	payload, ok := r.tree.Lookup(segments, m)
	if !ok {
		return nil, false
	}
	return payload.(*T), true
}
