package lattice

// TwoElem is a member of the two-element lattice:
//
//	⊤
//	|
//	⊥
//
// It satisfies both the store and the abstract-value contracts of the
// dataflow engine, and its lattice height of one makes it the canonical
// store for reachability-style analyses.
type TwoElem bool

const (
	TwoElemBot TwoElem = false
	TwoElemTop TwoElem = true
)

// LeastUpperBound joins two members: ⊥ ⊔ x = x, ⊤ ⊔ x = ⊤.
func (e TwoElem) LeastUpperBound(o TwoElem) TwoElem {
	return e || o
}

// Leq computes e ⊑ o.
func (e TwoElem) Leq(o TwoElem) bool {
	return !bool(e) || bool(o)
}

// Copy returns the member itself; TwoElem is an immutable value.
func (e TwoElem) Copy() TwoElem {
	return e
}

// Equal compares two members.
func (e TwoElem) Equal(o TwoElem) bool {
	return e == o
}

// IsTop is true for ⊤.
func (e TwoElem) IsTop() bool {
	return bool(e)
}

func (e TwoElem) String() string {
	if e {
		return colorize.Element("T")
	}
	return colorize.Element("⊥")
}
