// Package reaching implements reaching definitions: for every program point
// and variable, the set of definition sites whose assignment may still be
// the one in effect.
package reaching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/analysis/dataflow"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

// Def is the node payload marking a definition of Var. The node's identity
// doubles as the definition site.
type Def struct {
	Var string
}

// A DefSet is a member of the powerset lattice over definition sites,
// represented as a sorted slice of node IDs. The slice is never mutated
// after construction.
type DefSet struct {
	ids []int
}

// NewDefSet builds a definition set from the given node IDs.
func NewDefSet(ids ...int) DefSet {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	// Deduplicate in place.
	out := sorted[:0]
	for i, id := range sorted {
		if i == 0 || id != sorted[i-1] {
			out = append(out, id)
		}
	}
	return DefSet{ids: out}
}

// Contains checks membership of a definition site.
func (d DefSet) Contains(id int) bool {
	i := sort.SearchInts(d.ids, id)
	return i < len(d.ids) && d.ids[i] == id
}

// Size returns the number of definition sites in the set.
func (d DefSet) Size() int {
	return len(d.ids)
}

// LeastUpperBound is set union.
func (d DefSet) LeastUpperBound(o DefSet) DefSet {
	merged := make([]int, 0, len(d.ids)+len(o.ids))
	i, j := 0, 0
	for i < len(d.ids) && j < len(o.ids) {
		switch {
		case d.ids[i] < o.ids[j]:
			merged = append(merged, d.ids[i])
			i++
		case d.ids[i] > o.ids[j]:
			merged = append(merged, o.ids[j])
			j++
		default:
			merged = append(merged, d.ids[i])
			i++
			j++
		}
	}
	merged = append(merged, d.ids[i:]...)
	merged = append(merged, o.ids[j:]...)
	return DefSet{ids: merged}
}

// Equal compares two sets.
func (d DefSet) Equal(o DefSet) bool {
	if len(d.ids) != len(o.ids) {
		return false
	}
	for i := range d.ids {
		if d.ids[i] != o.ids[i] {
			return false
		}
	}
	return true
}

func (d DefSet) String() string {
	strs := make([]string, len(d.ids))
	for i, id := range d.ids {
		strs[i] = fmt.Sprintf("d%d", id)
	}
	return "{" + strings.Join(strs, ", ") + "}"
}

type (
	// Value is the definition set attached to definition nodes.
	Value = DefSet

	// Store maps variable names to the definitions reaching them.
	Store = L.VarMap[DefSet]
)

// transferDef kills all previously reaching definitions of the variable and
// generates the current definition site.
func transferDef(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	def := n.Aux().(Def)
	gen := NewDefSet(n.ID())
	out := in.RegularStore().Set(def.Var, gen)
	return dataflow.NewResult[Value](out).WithValue(gen)
}

// Transfer assembles the reaching definitions transfer function.
// Definitions are carried by nodes of kind Store.
func Transfer() dataflow.TransferFunction[Value, Store] {
	return dataflow.NewDispatcher[Value, Store]().
		Register(cfg.KindStore, transferDef)
}

// Analyze runs reaching definitions over g, starting from the empty store.
func Analyze(g *cfg.Graph) (*dataflow.Analysis[Value, Store], error) {
	a := dataflow.NewAnalysis(g, Transfer())
	if err := a.Run(L.NewVarMap[DefSet]()); err != nil {
		return nil, err
	}
	return a, nil
}
