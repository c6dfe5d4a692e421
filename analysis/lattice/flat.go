package lattice

import "fmt"

// flatTag discriminates the three strata of a flat lattice.
type flatTag uint8

const (
	flatBot flatTag = iota
	flatVal
	flatTop
)

// Flat is a member of the flat lattice over the values of T:
//
//	    ⊤
//	  / | \
//	 v1 v2 ... (all values of T, mutually incomparable)
//	  \ | /
//	    ⊥
//
// It is the standard abstract value for constant propagation.
type Flat[T comparable] struct {
	tag   flatTag
	value T
}

// FlatBot returns the ⊥ member of the flat lattice over T.
func FlatBot[T comparable]() Flat[T] {
	return Flat[T]{tag: flatBot}
}

// FlatTop returns the ⊤ member of the flat lattice over T.
func FlatTop[T comparable]() Flat[T] {
	return Flat[T]{tag: flatTop}
}

// FlatVal returns the member representing the known value v.
func FlatVal[T comparable](v T) Flat[T] {
	return Flat[T]{tag: flatVal, value: v}
}

// IsBot checks whether the member is ⊥.
func (e Flat[T]) IsBot() bool {
	return e.tag == flatBot
}

// IsTop checks whether the member is ⊤.
func (e Flat[T]) IsTop() bool {
	return e.tag == flatTop
}

// Value retrieves the underlying value. It panics for ⊥ and ⊤, which have
// no value; guard with IsBot/IsTop.
func (e Flat[T]) Value() T {
	if e.tag != flatVal {
		panic("called Value() on a flat ⊥/⊤ member")
	}
	return e.value
}

// Is checks whether the member represents the given known value.
func (e Flat[T]) Is(v T) bool {
	return e.tag == flatVal && e.value == v
}

// LeastUpperBound joins two members: ⊥ is neutral, ⊤ absorbing, and two
// distinct known values join to ⊤.
func (e Flat[T]) LeastUpperBound(o Flat[T]) Flat[T] {
	switch {
	case e.tag == flatBot:
		return o
	case o.tag == flatBot:
		return e
	case e.tag == flatTop || o.tag == flatTop:
		return FlatTop[T]()
	case e.value == o.value:
		return e
	default:
		return FlatTop[T]()
	}
}

// Leq computes e ⊑ o.
func (e Flat[T]) Leq(o Flat[T]) bool {
	return e.LeastUpperBound(o).Equal(o)
}

// Equal compares two members.
func (e Flat[T]) Equal(o Flat[T]) bool {
	return e == o
}

func (e Flat[T]) String() string {
	switch e.tag {
	case flatBot:
		return colorize.Element("⊥")
	case flatTop:
		return colorize.Element("T")
	default:
		return colorize.Const(fmt.Sprintf("%v", e.value))
	}
}
