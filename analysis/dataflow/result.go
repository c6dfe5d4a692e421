package dataflow

import (
	"fmt"

	"github.com/kvasirlab/conflux/analysis/cfg"
)

// A TransferResult is the outcome of applying a transfer function to one
// node: either a single regular store or a then/else pair (the same union
// shape as TransferInput), an optional abstract value for the node, and
// optional store overrides for exceptional successor edges.
//
// A result is produced exactly once per node evaluation and immediately
// consumed to build the next node's input; the stores it carries are owned
// by it until then.
type TransferResult[V AbstractValue[V], S Store[S]] struct {
	value       V
	hasValue    bool
	store       S
	split       *branchStores[S]
	exceptional map[cfg.Cause]S
}

// NewResult creates a single-store result without an abstract value.
// Full control of s is transferred to the result.
func NewResult[V AbstractValue[V], S Store[S]](s S) TransferResult[V, S] {
	return TransferResult[V, S]{store: s}
}

// NewBranchResult creates a two-store result refining the true and false
// continuations of a boolean-valued node. Full control of both stores is
// transferred to the result.
func NewBranchResult[V AbstractValue[V], S Store[S]](then, els S) TransferResult[V, S] {
	return TransferResult[V, S]{split: &branchStores[S]{then, els}}
}

// WithValue attaches the abstract value computed for the node.
func (res TransferResult[V, S]) WithValue(v V) TransferResult[V, S] {
	res.value = v
	res.hasValue = true
	return res
}

// WithException overrides the store propagated along the exceptional edge
// identified by cause. Edges without an override receive the regular store.
func (res TransferResult[V, S]) WithException(cause cfg.Cause, s S) TransferResult[V, S] {
	if res.exceptional == nil {
		res.exceptional = make(map[cfg.Cause]S)
	}
	res.exceptional[cause] = s
	return res
}

// Value returns the abstract value computed for the node, if any.
func (res TransferResult[V, S]) Value() (V, bool) {
	return res.value, res.hasValue
}

// ContainsTwoStores reports whether the result carries separate then/else
// stores.
func (res TransferResult[V, S]) ContainsTwoStores() bool {
	return res.split != nil
}

// RegularStore returns the single held store, or the least upper bound of
// the then- and else-store for a two-store result.
func (res TransferResult[V, S]) RegularStore() S {
	if res.split != nil {
		return res.split.then.LeastUpperBound(res.split.els)
	}
	return res.store
}

// ThenStore returns the store of the true-continuation.
func (res TransferResult[V, S]) ThenStore() S {
	if res.split != nil {
		return res.split.then
	}
	return res.store
}

// ElseStore returns the store of the false-continuation. Like
// TransferInput.ElseStore, a single-store result yields a copy so the two
// branch stores never alias.
func (res TransferResult[V, S]) ElseStore() S {
	if res.split != nil {
		return res.split.els
	}
	return res.store.Copy()
}

// ExceptionalStore returns the override store for the exceptional edge
// identified by cause, if one was set.
func (res TransferResult[V, S]) ExceptionalStore(cause cfg.Cause) (s S, found bool) {
	s, found = res.exceptional[cause]
	return
}

func (res TransferResult[V, S]) String() string {
	if res.split != nil {
		return fmt.Sprintf("[then=%s, else=%s]", res.split.then, res.split.els)
	}
	return fmt.Sprintf("[%s]", res.store)
}
