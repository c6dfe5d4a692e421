package dataflow

import (
	"errors"
	"fmt"

	"github.com/kvasirlab/conflux/analysis/cfg"
)

var (
	errLValueLookup = errors.New("requested the abstract value of an assignment target")
	errNotSubNode   = errors.New("requested the abstract value of a node that is not an operand of the node under evaluation")
)

// ValueLookup is the narrow capability through which transfer functions
// read already-computed abstract values of sub-nodes. It is implemented by
// Analysis; each run owns an independent value cache.
type ValueLookup[V any] interface {
	Value(n *cfg.Node) (V, bool)
}

// branchStores is the two-store case of the store union carried by
// TransferInput and TransferResult.
type branchStores[S any] struct {
	then, els S
}

// A TransferInput is the input bundle handed to a transfer function for one
// node. It carries either exactly one regular store, or exactly two stores
// belonging to the 'then' and 'else' continuations. The two shapes are the
// only representable states: the split field is nil exactly when the input
// is single-store.
//
// Stores passed into any of the constructors become exclusively owned by
// the input; callers must not retain references to them afterwards.
type TransferInput[V AbstractValue[V], S Store[S]] struct {
	node   *cfg.Node
	values ValueLookup[V]
	store  S
	split  *branchStores[S]
}

// NewInput creates a single-store transfer input. Full control of s is
// transferred to the result.
func NewInput[V AbstractValue[V], S Store[S]](n *cfg.Node, values ValueLookup[V], s S) *TransferInput[V, S] {
	return &TransferInput[V, S]{node: n, values: values, store: s}
}

// NewBranchInput creates a two-store transfer input. Full control of both
// stores is transferred to the result.
func NewBranchInput[V AbstractValue[V], S Store[S]](n *cfg.Node, values ValueLookup[V], then, els S) *TransferInput[V, S] {
	return &TransferInput[V, S]{node: n, values: values, split: &branchStores[S]{then, els}}
}

// InputFromResult derives the input of the next node from the result of the
// previous one. A two-store result yields a two-store input; no merging
// takes place. Ownership of the result's stores transfers to the input.
func InputFromResult[V AbstractValue[V], S Store[S]](n *cfg.Node, values ValueLookup[V], res TransferResult[V, S]) *TransferInput[V, S] {
	if res.ContainsTwoStores() {
		return NewBranchInput(n, values, res.ThenStore(), res.ElseStore())
	}
	return NewInput(n, values, res.RegularStore())
}

// Node returns the node this input belongs to.
func (in *TransferInput[V, S]) Node() *cfg.Node {
	return in.node
}

// ValueOfSubNode returns the abstract value computed for node n, which must
// be a direct or indirect operand of the node under evaluation and must not
// be an assignment target; violating either is a caller bug and panics.
// The second result is false when the analysis has not (yet) computed a
// value for n, which is an ordinary, expected outcome.
func (in *TransferInput[V, S]) ValueOfSubNode(n *cfg.Node) (V, bool) {
	if n.IsLValue() {
		panic(fmt.Errorf("%w: %s", errLValueLookup, n))
	}
	if in.node != nil && !in.node.HasSubNode(n) {
		panic(fmt.Errorf("%w: %s under %s", errNotSubNode, n, in.node))
	}
	if in.values == nil {
		var zero V
		return zero, false
	}
	return in.values.Value(n)
}

// ContainsTwoStores reports whether the input was constructed with separate
// then/else stores. This is a structural property: true does not imply the
// two stores differ in content. When false, RegularStore, ThenStore and
// ElseStore all return equivalent stores.
func (in *TransferInput[V, S]) ContainsTwoStores() bool {
	return in.split != nil
}

// RegularStore returns the single held store, or, for a two-store input,
// the least upper bound of the then- and else-store as a fresh value.
func (in *TransferInput[V, S]) RegularStore() S {
	if in.split != nil {
		return in.split.then.LeastUpperBound(in.split.els)
	}
	return in.store
}

// ThenStore returns the store of the true-continuation.
func (in *TransferInput[V, S]) ThenStore() S {
	if in.split != nil {
		return in.split.then
	}
	return in.store
}

// ElseStore returns the store of the false-continuation. For a single-store
// input the result equals ThenStore but is a distinct object, so that a
// mutation of one branch store cannot corrupt the other.
func (in *TransferInput[V, S]) ElseStore() S {
	if in.split != nil {
		return in.split.els
	}
	return in.store.Copy()
}

// Copy deep-copies whichever stores are held, preserving the
// single/two-store shape. Use it when an input must be retained beyond a
// single transfer-function call.
func (in *TransferInput[V, S]) Copy() *TransferInput[V, S] {
	if in.split != nil {
		return NewBranchInput(in.node, in.values, in.split.then.Copy(), in.split.els.Copy())
	}
	return NewInput(in.node, in.values, in.store.Copy())
}

// LeastUpperBound joins two inputs belonging to the same node and analysis,
// under the same contract as Store.LeastUpperBound. If either operand holds
// two stores the result holds two stores, joined branch-wise, so that
// branch-sensitive precision is never silently discarded.
func (in *TransferInput[V, S]) LeastUpperBound(other *TransferInput[V, S]) *TransferInput[V, S] {
	if in.split != nil {
		then := in.ThenStore().LeastUpperBound(other.ThenStore())
		els := in.ElseStore().LeastUpperBound(other.ElseStore())
		return NewBranchInput(in.node, in.values, then, els)
	}
	if other.split != nil {
		// Delegate to the two-store side so its join logic preserves
		// the branch split.
		return other.LeastUpperBound(in)
	}
	return NewInput(in.node, in.values, in.store.LeastUpperBound(other.store))
}

// Equal compares both structure and content: two inputs are equal iff both
// are single-store with equal stores, or both are two-store with equal
// then-stores and equal else-stores. A single-store input is never equal to
// a two-store input, even if its store agrees with both branches.
func (in *TransferInput[V, S]) Equal(other *TransferInput[V, S]) bool {
	if in.ContainsTwoStores() != other.ContainsTwoStores() {
		return false
	}
	if in.split != nil {
		return in.split.then.Equal(other.split.then) &&
			in.split.els.Equal(other.split.els)
	}
	return in.store.Equal(other.store)
}

func (in *TransferInput[V, S]) String() string {
	if in.split != nil {
		return fmt.Sprintf("[then=%s, else=%s]", in.split.then, in.split.els)
	}
	return fmt.Sprintf("[%s]", in.store)
}
