// Package trie implements the segment trie that backs the router: path
// patterns are compiled into segment sequences and stored in a pooled tree
// whose lookup walks the request segments with ordered backtracking.
package trie

import "errors"

// Registration errors. Lookup cannot fail, it can only not match.
var (
	// ErrPatternMalformed reports a pattern that violates the grammar:
	// an unbalanced brace, an illegal identifier, a bad percent escape.
	ErrPatternMalformed = errors.New("malformed path pattern")

	// ErrDuplicateField reports a field identifier used twice in one pattern.
	ErrDuplicateField = errors.New("duplicate field in pattern")

	// ErrDuplicateVariadic reports more than one '+' or '*' field in one pattern.
	ErrDuplicateVariadic = errors.New("multiple variadic fields in pattern")
)
