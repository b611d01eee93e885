package router

import "fmt"

// Methods the mux routes. The router itself is method-agnostic; the mux
// simply keeps one tree per verb.
var muxMethods = []string{"GET", "PUT", "POST", "DELETE"}

// Mux is a method-keyed registry: one Router per HTTP verb.
type Mux[T any] struct {
	routers map[string]*Router[T]
}

// NewMux returns a mux with an empty router for every supported method.
func NewMux[T any]() *Mux[T] {
	routers := make(map[string]*Router[T], len(muxMethods))
	for _, m := range muxMethods {
		routers[m] = New[T]()
	}
	return &Mux[T]{routers: routers}
}

// Handle registers the value for the given method and pattern.
func (m *Mux[T]) Handle(method, pattern string, value T) error {
	r, ok := m.routers[method]
	if !ok {
		return fmt.Errorf("unsupported method %q", method)
	}
	return r.Register(pattern, value)
}

// Lookup matches the method and segments. An unknown method is a plain
// no-match.
func (m *Mux[T]) Lookup(method string, segments []string, matches *Matches) (*T, bool) {
	r, ok := m.routers[method]
	if !ok {
		if matches != nil {
			matches.Reset()
		}
		return nil, false
	}
	return r.Lookup(segments, matches)
}
