package lattice

import "testing"

func TestVarMapSetGet(t *testing.T) {
	s := NewVarMap[Flat[int64]]()
	if _, found := s.Get("x"); found {
		t.Error("empty store should have no bindings")
	}

	s2 := s.Set("x", FlatVal[int64](1))
	if v, found := s2.Get("x"); !found || !v.Is(1) {
		t.Errorf("Get(x) = %s, want 1", v)
	}
	// The original is unaffected.
	if _, found := s.Get("x"); found {
		t.Error("Set mutated the receiver")
	}

	s3 := s2.Forget("x")
	if _, found := s3.Get("x"); found {
		t.Error("Forget did not remove the binding")
	}
}

func TestVarMapLub(t *testing.T) {
	a := NewVarMap[Flat[int64]]().
		Set("x", FlatVal[int64](1)).
		Set("y", FlatVal[int64](2))
	b := NewVarMap[Flat[int64]]().
		Set("x", FlatVal[int64](1)).
		Set("z", FlatVal[int64](3))

	j := a.LeastUpperBound(b)
	if v, _ := j.Get("x"); !v.Is(1) {
		t.Errorf("x joined to %s, want 1", v)
	}
	// One-sided bindings survive the join.
	if v, found := j.Get("y"); !found || !v.Is(2) {
		t.Errorf("y joined to %s, want 2", v)
	}
	if v, found := j.Get("z"); !found || !v.Is(3) {
		t.Errorf("z joined to %s, want 3", v)
	}

	// Conflicting constants join to ⊤.
	c := NewVarMap[Flat[int64]]().Set("x", FlatVal[int64](5))
	if v, _ := a.LeastUpperBound(c).Get("x"); !v.IsTop() {
		t.Errorf("conflicting bindings joined to %s, want ⊤", v)
	}
}

func TestVarMapLubLaws(t *testing.T) {
	stores := []VarMap[Flat[int64]]{
		NewVarMap[Flat[int64]](),
		NewVarMap[Flat[int64]]().Set("x", FlatVal[int64](1)),
		NewVarMap[Flat[int64]]().Set("x", FlatVal[int64](2)).Set("y", FlatVal[int64](3)),
		NewVarMap[Flat[int64]]().Set("y", FlatTop[int64]()).Set("z", FlatVal[int64](4)),
	}

	for _, a := range stores {
		if !a.LeastUpperBound(a).Equal(a) {
			t.Errorf("%s ⊔ %s should be idempotent", a, a)
		}
		for _, b := range stores {
			if !a.LeastUpperBound(b).Equal(b.LeastUpperBound(a)) {
				t.Errorf("%s ⊔ %s should commute", a, b)
			}
			for _, c := range stores {
				left := a.LeastUpperBound(b).LeastUpperBound(c)
				right := a.LeastUpperBound(b.LeastUpperBound(c))
				if !left.Equal(right) {
					t.Errorf("join of %s, %s, %s should associate: %s vs %s",
						a, b, c, left, right)
				}
			}
		}
	}
}

func TestVarMapEqual(t *testing.T) {
	a := NewVarMap[Flat[int64]]().Set("x", FlatVal[int64](1))
	b := NewVarMap[Flat[int64]]().Set("x", FlatVal[int64](1))
	c := b.Set("y", FlatVal[int64](2))

	if !a.Equal(b) {
		t.Error("stores with identical bindings should be equal")
	}
	if a.Equal(c) || c.Equal(a) {
		t.Error("stores with different domains should not be equal")
	}
}

func TestVarMapString(t *testing.T) {
	s := NewVarMap[Flat[int64]]().
		Set("y", FlatVal[int64](2)).
		Set("x", FlatVal[int64](1))
	// Bindings print in sorted key order regardless of insertion order.
	if got, want := s.String(), "{x ↦ 1, y ↦ 2}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
