// Package constprop implements constant propagation as a dataflow analysis:
// it computes, for every program point, which variables are bound to which
// known constants. Equality tests against constants are exploited for
// branch-sensitive narrowing of the true continuation.
package constprop

import (
	"fmt"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/analysis/dataflow"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

type (
	// Value is the abstract value of an expression: a flat lattice over
	// integer constants.
	Value = L.Flat[int64]

	// Store maps variable names to their abstract values.
	Store = L.VarMap[Value]
)

// Node payloads interpreted by the analysis. Frontends attach them as the
// Aux of the corresponding node kinds.
type (
	// Assign binds Var to the integer constant Const.
	Assign struct {
		Var   string
		Const int64
	}

	// Copy binds Dst to the current abstract value of Src.
	Copy struct {
		Dst, Src string
	}

	// BinOp binds Dst to LHS Op RHS, where Op is one of "+", "-", "*".
	BinOp struct {
		Dst, LHS, RHS string
		Op            string
	}

	// Cmp is the payload of a boolean-valued node testing Var == Const.
	Cmp struct {
		Var   string
		Const int64
	}
)

// valueOf reads the abstract value bound to a variable; unbound variables
// are ⊥.
func valueOf(s Store, name string) Value {
	if v, found := s.Get(name); found {
		return v
	}
	return L.FlatBot[int64]()
}

func apply(op string, a, b int64) int64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	default:
		panic(fmt.Sprintf("unknown binary operator: %q", op))
	}
}

func transferAssign(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	a := n.Aux().(Assign)
	v := L.FlatVal(a.Const)
	out := in.RegularStore().Set(a.Var, v)
	return dataflow.NewResult[Value](out).WithValue(v)
}

func transferCopy(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	c := n.Aux().(Copy)
	s := in.RegularStore()
	v := valueOf(s, c.Src)
	return dataflow.NewResult[Value](s.Set(c.Dst, v)).WithValue(v)
}

func transferBinOp(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	b := n.Aux().(BinOp)
	s := in.RegularStore()
	lhs, rhs := valueOf(s, b.LHS), valueOf(s, b.RHS)

	var v Value
	switch {
	case lhs.IsTop() || rhs.IsTop():
		v = L.FlatTop[int64]()
	case lhs.IsBot() || rhs.IsBot():
		v = L.FlatBot[int64]()
	default:
		v = L.FlatVal(apply(b.Op, lhs.Value(), rhs.Value()))
	}
	return dataflow.NewResult[Value](s.Set(b.Dst, v)).WithValue(v)
}

// transferCmp narrows the true continuation: after `x == c` succeeds, x is
// known to be c. The false continuation cannot be narrowed in a flat
// lattice (x ≠ c is not representable), so it keeps the incoming store.
func transferCmp(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	c := n.Aux().(Cmp)
	then := in.ThenStore().Set(c.Var, L.FlatVal(c.Const))
	els := in.ElseStore()
	return dataflow.NewBranchResult[Value](then, els)
}

// Transfer assembles the constant propagation transfer function. Node kinds
// outside the analysis' vocabulary propagate their store unchanged.
func Transfer() dataflow.TransferFunction[Value, Store] {
	return dataflow.NewDispatcher[Value, Store]().
		Register(cfg.KindConst, transferAssign).
		Register(cfg.KindAssign, transferCopy).
		Register(cfg.KindBinOp, transferBinOp).
		Register(cfg.KindCompare, transferCmp)
}

// Analyze runs constant propagation over g, starting from the empty store.
func Analyze(g *cfg.Graph) (*dataflow.Analysis[Value, Store], error) {
	a := dataflow.NewAnalysis(g, Transfer())
	if err := a.Run(L.NewVarMap[Value]()); err != nil {
		return nil, err
	}
	return a, nil
}
