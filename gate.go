// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import "net/http"

// Gate decides whether a request should be observed.
//
// It holds an ordered list of [Predicate] identifying requests to exclude.
// A request is intercepted only when no predicate matches it; with an empty
// list every request is intercepted. The result does not depend on the order
// of the predicates, which is nonetheless preserved.
//
// A Gate is not safe for concurrent use. [*Config] guards its gate with a lock.
type Gate struct {
	predicates []Predicate
}

// NewGate returns an empty [*Gate].
func NewGate() *Gate {
	return &Gate{}
}

// Add appends p to the list of exclusion predicates. Duplicates are kept.
func (g *Gate) Add(p Predicate) {
	g.predicates = append(g.predicates, p)
}

// Len returns the number of registered predicates.
func (g *Gate) Len() int {
	return len(g.predicates)
}

// Reset removes all the predicates.
func (g *Gate) Reset() {
	g.predicates = nil
}

// ShouldIntercept returns true unless some predicate matches req.
func (g *Gate) ShouldIntercept(req *http.Request) bool {
	for _, p := range g.predicates {
		if p.Matches(req) {
			return false
		}
	}
	return true
}
