package lattice

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kvasirlab/conflux/utils"

	"github.com/benbjohnson/immutable"
)

// Value is the constraint on the value lattice a VarMap ranges over. It
// mirrors the abstract-value contract of the dataflow engine.
type Value[V any] interface {
	LeastUpperBound(V) V
	Equal(V) bool
	fmt.Stringer
}

// VarMap is an environment store mapping variable names to abstract values.
// Keys absent from the map are implicitly bound to the value lattice's ⊥,
// so the empty map is the bottom store.
//
// The representation is a persistent map, which makes Copy O(1): handing a
// VarMap to a TransferInput/TransferResult can never be corrupted through a
// retained alias, because no operation mutates in place.
type VarMap[V Value[V]] struct {
	m *immutable.Map[string, V]
}

// NewVarMap returns the empty (bottom) environment store.
func NewVarMap[V Value[V]]() VarMap[V] {
	return VarMap[V]{m: immutable.NewMap[string, V](utils.StringHasher{})}
}

// Get retrieves the binding for the given variable. The second result is
// false when the variable is unbound (i.e. implicitly ⊥).
func (s VarMap[V]) Get(name string) (V, bool) {
	return s.m.Get(name)
}

// Set returns a store with the given variable bound to v.
func (s VarMap[V]) Set(name string, v V) VarMap[V] {
	return VarMap[V]{m: s.m.Set(name, v)}
}

// Forget returns a store with the binding for the given variable removed,
// degrading it to ⊥.
func (s VarMap[V]) Forget(name string) VarMap[V] {
	return VarMap[V]{m: s.m.Delete(name)}
}

// Len returns the number of explicit bindings.
func (s VarMap[V]) Len() int {
	return s.m.Len()
}

// LeastUpperBound joins two stores pointwise. Variables bound on one side
// only keep their binding, since the implicit ⊥ is neutral for the join.
func (s VarMap[V]) LeastUpperBound(o VarMap[V]) VarMap[V] {
	res := s.m
	iter := o.m.Iterator()
	for !iter.Done() {
		name, v, _ := iter.Next()
		if existing, found := res.Get(name); found {
			res = res.Set(name, existing.LeastUpperBound(v))
		} else {
			res = res.Set(name, v)
		}
	}
	return VarMap[V]{m: res}
}

// Copy returns the store itself; the persistent representation makes
// structure sharing harmless.
func (s VarMap[V]) Copy() VarMap[V] {
	return s
}

// Equal compares explicit bindings pointwise. An explicit binding to the
// value lattice's ⊥ is not identified with an absent one, so transfer
// functions should use Forget instead of binding ⊥ explicitly.
func (s VarMap[V]) Equal(o VarMap[V]) bool {
	return s.leqKeys(o) && o.leqKeys(s)
}

// leqKeys checks that every explicit binding of s equals the corresponding
// binding of o.
func (s VarMap[V]) leqKeys(o VarMap[V]) bool {
	iter := s.m.Iterator()
	for !iter.Done() {
		name, v, _ := iter.Next()
		other, found := o.m.Get(name)
		if !found || !v.Equal(other) {
			return false
		}
	}
	return true
}

func (s VarMap[V]) String() string {
	bindings := make([]string, 0, s.m.Len())
	iter := s.m.Iterator()
	for !iter.Done() {
		name, v, _ := iter.Next()
		bindings = append(bindings, colorize.Key(name)+" ↦ "+v.String())
	}
	sort.Strings(bindings)
	return "{" + strings.Join(bindings, ", ") + "}"
}
