package dataflow

import "fmt"

// AbstractValue is the constraint on value-lattice elements attached to
// expression-level nodes.
//
// LeastUpperBound must implement a join-semilattice: it is required to be
// idempotent, commutative, associative and monotone. The engine cannot
// detect violations; a non-conforming implementation yields incorrect
// results or non-termination.
type AbstractValue[V any] interface {
	LeastUpperBound(V) V
	Equal(V) bool
	fmt.Stringer
}

// Store is the constraint on the abstract state tracked at every program
// point.
//
// LeastUpperBound follows the same join-semilattice laws as AbstractValue.
// Equal must be a true equivalence relation; it is the convergence test of
// the fixpoint driver, so an Equal that depends on object identity rather
// than content will prevent termination.
//
// Copy returns a store such that subsequent mutation of either copy or
// original is unobservable through the other. Ownership of a store handed
// to a TransferInput or TransferResult transfers fully to the receiver;
// callers must copy first if they intend to retain a reference. Immutable
// (persistent) store representations may implement Copy as the identity.
//
// Stores of unbounded lattice height must perform widening inside
// LeastUpperBound themselves; the engine has no widening fallback.
type Store[S any] interface {
	LeastUpperBound(S) S
	Copy() S
	Equal(S) bool
	fmt.Stringer
}
