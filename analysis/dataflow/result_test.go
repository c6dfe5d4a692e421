package dataflow

import (
	"testing"

	L "github.com/kvasirlab/conflux/analysis/lattice"
)

func TestResultValue(t *testing.T) {
	bare := NewResult[testValue](store())
	if _, hasValue := bare.Value(); hasValue {
		t.Error("result without WithValue reports a value")
	}

	res := bare.WithValue(L.FlatVal[int64](7))
	if v, hasValue := res.Value(); !hasValue || !v.Is(7) {
		t.Errorf("Value() = %s, want 7", v)
	}
}

func TestResultRegularStoreJoinsBranches(t *testing.T) {
	res := NewBranchResult[testValue](store("x", 1), store("x", 2))
	if !res.ContainsTwoStores() {
		t.Fatal("branch result reports a single store")
	}
	if v, _ := res.RegularStore().Get("x"); !v.IsTop() {
		t.Errorf("joined binding is %s, want ⊤", v)
	}
}

func TestResultElseStoreDoesNotAlias(t *testing.T) {
	res := NewResult[L.TwoElem](mutStore{"x": 1})
	els := res.ElseStore()
	els["x"] = 99

	if got := res.ThenStore()["x"]; got != 1 {
		t.Errorf("mutating the else-store changed the then-store to %d", got)
	}
}

func TestResultExceptionalStore(t *testing.T) {
	res := NewResult[testValue](store("x", 1)).
		WithException("panic", store("x", 2))

	if s, found := res.ExceptionalStore("panic"); !found {
		t.Fatal("override for cause \"panic\" not found")
	} else if v, _ := s.Get("x"); !v.Is(2) {
		t.Errorf("override binding is %s, want 2", v)
	}

	if _, found := res.ExceptionalStore("oom"); found {
		t.Error("found an override for a cause that was never set")
	}
}
