package reaching

import (
	"golang.org/x/tools/go/ssa"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/analysis/dataflow"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

// transferSSAStore treats a store through a named address (an alloc or a
// global) as a definition of that name.
func transferSSAStore(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	instr := n.Aux().(*ssa.Store)
	name := instr.Addr.Name()
	if name == "" {
		return dataflow.NewResult[Value](in.RegularStore())
	}
	gen := NewDefSet(n.ID())
	return dataflow.NewResult[Value](in.RegularStore().Set(name, gen)).WithValue(gen)
}

// TransferSSA assembles reaching definitions over graphs produced by the
// SSA frontend.
func TransferSSA() dataflow.TransferFunction[Value, Store] {
	return dataflow.NewDispatcher[Value, Store]().
		Register(cfg.KindStore, transferSSAStore)
}

// AnalyzeSSA runs SSA-based reaching definitions over g, starting from the
// empty store.
func AnalyzeSSA(g *cfg.Graph) (*dataflow.Analysis[Value, Store], error) {
	a := dataflow.NewAnalysis(g, TransferSSA())
	if err := a.Run(L.NewVarMap[DefSet]()); err != nil {
		return nil, err
	}
	return a, nil
}
