package constprop

import (
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/ssa"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/analysis/dataflow"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

// ssaValue evaluates an SSA operand: integer constants are exact, other
// constants are ⊤, and registers look up the binding of their name.
func ssaValue(s Store, v ssa.Value) Value {
	if c, isConst := v.(*ssa.Const); isConst {
		if c.Value != nil && c.Value.Kind() == constant.Int {
			if i, exact := constant.Int64Val(c.Value); exact {
				return L.FlatVal(i)
			}
		}
		return L.FlatTop[int64]()
	}
	return valueOf(s, v.Name())
}

func transferSSABinOp(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	instr := n.Aux().(*ssa.BinOp)
	s := in.RegularStore()
	lhs, rhs := ssaValue(s, instr.X), ssaValue(s, instr.Y)

	var v Value
	switch {
	case lhs.IsTop() || rhs.IsTop():
		v = L.FlatTop[int64]()
	case lhs.IsBot() || rhs.IsBot():
		v = L.FlatBot[int64]()
	default:
		switch instr.Op {
		case token.ADD:
			v = L.FlatVal(lhs.Value() + rhs.Value())
		case token.SUB:
			v = L.FlatVal(lhs.Value() - rhs.Value())
		case token.MUL:
			v = L.FlatVal(lhs.Value() * rhs.Value())
		default:
			v = L.FlatTop[int64]()
		}
	}
	return dataflow.NewResult[Value](s.Set(instr.Name(), v)).WithValue(v)
}

func transferSSAPhi(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	instr := n.Aux().(*ssa.Phi)
	s := in.RegularStore()

	v := L.FlatBot[int64]()
	for _, edge := range instr.Edges {
		v = v.LeastUpperBound(ssaValue(s, edge))
	}
	return dataflow.NewResult[Value](s.Set(instr.Name(), v)).WithValue(v)
}

// transferSSABranch narrows the true continuation when the condition is an
// equality test between a register and an integer constant.
func transferSSABranch(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	instr := n.Aux().(*ssa.If)
	then, els := in.ThenStore(), in.ElseStore()

	if cond, isBinOp := instr.Cond.(*ssa.BinOp); isBinOp && cond.Op == token.EQL {
		reg, cnst := cond.X, cond.Y
		if _, isConst := reg.(*ssa.Const); isConst {
			reg, cnst = cnst, reg
		}
		if c, isConst := cnst.(*ssa.Const); isConst {
			if _, regIsConst := reg.(*ssa.Const); !regIsConst {
				if v := ssaValue(then, c); !v.IsTop() && !v.IsBot() {
					then = then.Set(reg.Name(), v)
				}
			}
		}
	}
	return dataflow.NewBranchResult[Value](then, els)
}

// transferSSAUnknown havocs the register of any unhandled value-producing
// instruction; a missing binding would claim the value is unreachable.
func transferSSAUnknown(n *cfg.Node, in *dataflow.TransferInput[Value, Store]) dataflow.TransferResult[Value, Store] {
	s := in.RegularStore()
	if v, producesValue := n.Aux().(ssa.Value); producesValue && v.Name() != "" {
		top := L.FlatTop[int64]()
		return dataflow.NewResult[Value](s.Set(v.Name(), top)).WithValue(top)
	}
	return dataflow.NewResult[Value](s)
}

// TransferSSA assembles constant propagation over graphs produced by the
// SSA frontend, where nodes carry SSA instructions as payloads.
func TransferSSA() dataflow.TransferFunction[Value, Store] {
	return dataflow.NewDispatcher[Value, Store]().
		Register(cfg.KindBinOp, transferSSABinOp).
		Register(cfg.KindPhi, transferSSAPhi).
		Register(cfg.KindBranch, transferSSABranch).
		Fallback(transferSSAUnknown)
}

// AnalyzeSSA runs SSA-based constant propagation over g, starting from the
// empty store.
func AnalyzeSSA(g *cfg.Graph) (*dataflow.Analysis[Value, Store], error) {
	a := dataflow.NewAnalysis(g, TransferSSA())
	if err := a.Run(L.NewVarMap[Value]()); err != nil {
		return nil, err
	}
	return a, nil
}
