package dataflow

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/kvasirlab/conflux/analysis/cfg"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

type (
	testValue = L.Flat[int64]
	testStore = L.VarMap[testValue]
)

func store(bindings ...any) testStore {
	s := L.NewVarMap[testValue]()
	for i := 0; i < len(bindings); i += 2 {
		s = s.Set(bindings[i].(string), L.FlatVal(int64(bindings[i+1].(int))))
	}
	return s
}

// mutStore is a store over a plain mutable map, used to observe aliasing
// between branch stores. LeastUpperBound takes the maximum pointwise.
type mutStore map[string]int

func (s mutStore) LeastUpperBound(o mutStore) mutStore {
	res := s.Copy()
	for k, v := range o {
		if existing, found := res[k]; !found || v > existing {
			res[k] = v
		}
	}
	return res
}

func (s mutStore) Copy() mutStore {
	res := make(mutStore, len(s))
	for k, v := range s {
		res[k] = v
	}
	return res
}

func (s mutStore) Equal(o mutStore) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if ov, found := o[k]; !found || ov != v {
			return false
		}
	}
	return true
}

func (s mutStore) String() string {
	bindings := make([]string, 0, len(s))
	for k, v := range s {
		bindings = append(bindings, fmt.Sprintf("%s ↦ %d", k, v))
	}
	sort.Strings(bindings)
	return "{" + strings.Join(bindings, ", ") + "}"
}

func TestInputShape(t *testing.T) {
	single := NewInput[testValue](nil, nil, store("x", 1))
	if single.ContainsTwoStores() {
		t.Error("single-store input reports two stores")
	}

	split := NewBranchInput[testValue](nil, nil, store("x", 1), store("x", 2))
	if !split.ContainsTwoStores() {
		t.Error("two-store input reports a single store")
	}
}

func TestInputRegularStoreJoinsBranches(t *testing.T) {
	in := NewBranchInput[testValue](nil, nil, store("x", 1), store("x", 2))
	reg := in.RegularStore()
	if v, _ := reg.Get("x"); !v.IsTop() {
		t.Errorf("joined binding is %s, want ⊤", v)
	}
	// The branch stores are unaffected by the join.
	if v, _ := in.ThenStore().Get("x"); !v.Is(1) {
		t.Errorf("then-store binding is %s, want 1", v)
	}
	if v, _ := in.ElseStore().Get("x"); !v.Is(2) {
		t.Errorf("else-store binding is %s, want 2", v)
	}
}

func TestInputElseStoreDoesNotAlias(t *testing.T) {
	in := NewInput[L.TwoElem](nil, nil, mutStore{"x": 1})
	els := in.ElseStore()
	els["x"] = 99

	if got := in.ThenStore()["x"]; got != 1 {
		t.Errorf("mutating the else-store changed the then-store to %d", got)
	}
}

func TestInputCopyIsolation(t *testing.T) {
	in := NewBranchInput[L.TwoElem](nil, nil, mutStore{"x": 1}, mutStore{"x": 2})
	cp := in.Copy()
	if !cp.ContainsTwoStores() {
		t.Fatal("copy lost the two-store shape")
	}

	cp.ThenStore()["x"] = 99
	if got := in.ThenStore()["x"]; got != 1 {
		t.Errorf("mutating the copy changed the original to %d", got)
	}
}

func TestInputLubPreservesSplit(t *testing.T) {
	split := NewBranchInput[testValue](nil, nil, store("x", 1), store("x", 2))
	single := NewInput[testValue](nil, nil, store("x", 1))

	for _, joined := range []*TransferInput[testValue, testStore]{
		split.LeastUpperBound(single),
		single.LeastUpperBound(split),
	} {
		if !joined.ContainsTwoStores() {
			t.Fatal("join with a two-store input lost the split")
		}
		if v, _ := joined.ThenStore().Get("x"); !v.Is(1) {
			t.Errorf("then-binding joined to %s, want 1", v)
		}
		if v, _ := joined.ElseStore().Get("x"); !v.IsTop() {
			t.Errorf("else-binding joined to %s, want ⊤", v)
		}
	}
}

func TestInputEqual(t *testing.T) {
	single := NewInput[testValue](nil, nil, store("x", 1))
	sameSingle := NewInput[testValue](nil, nil, store("x", 1))
	split := NewBranchInput[testValue](nil, nil, store("x", 1), store("x", 1))

	if !single.Equal(sameSingle) {
		t.Error("inputs with equal stores should be equal")
	}
	// Shape matters even when contents agree.
	if single.Equal(split) || split.Equal(single) {
		t.Error("single-store and two-store inputs should never be equal")
	}
}

func TestValueOfSubNodePanics(t *testing.T) {
	b := cfg.NewBuilder()
	blk := b.Block()
	operand := b.Node(blk, cfg.NodeInfo{Kind: cfg.KindConst, Label: "1"})
	target := b.Node(blk, cfg.NodeInfo{Kind: cfg.KindAssign, Label: "x", LValue: true})
	user := b.Node(blk, cfg.NodeInfo{Kind: cfg.KindBinOp, Operands: []*cfg.Node{operand}})
	stranger := b.Node(blk, cfg.NodeInfo{Kind: cfg.KindConst, Label: "2"})

	in := NewInput[testValue](user, nil, store())

	mustPanic := func(name string, f func()) {
		defer func() {
			if recover() == nil {
				t.Errorf("%s should panic", name)
			}
		}()
		f()
	}
	mustPanic("lvalue lookup", func() { in.ValueOfSubNode(target) })
	mustPanic("non-operand lookup", func() { in.ValueOfSubNode(stranger) })

	// A legal lookup without a value cache is simply absent.
	if _, found := in.ValueOfSubNode(operand); found {
		t.Error("lookup without a cache should report absent")
	}
}
