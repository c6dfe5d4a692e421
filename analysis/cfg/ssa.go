package cfg

import (
	"fmt"
	"strings"

	"golang.org/x/tools/go/ssa"
)

// KindOfInstr derives a node kind from the dynamic type of an SSA
// instruction. Kinds for which no dedicated constant exists are named after
// the instruction type, so transfer functions can still dispatch on them.
func KindOfInstr(instr ssa.Instruction) Kind {
	switch instr.(type) {
	case *ssa.BinOp:
		return KindBinOp
	case *ssa.UnOp:
		return KindUnOp
	case *ssa.Phi:
		return KindPhi
	case *ssa.Call:
		return KindCall
	case *ssa.Store:
		return KindStore
	case *ssa.Return:
		return KindReturn
	case *ssa.If:
		return KindBranch
	default:
		return Kind(strings.TrimPrefix(fmt.Sprintf("%T", instr), "*ssa."))
	}
}

// FromSSAFunction builds a Graph from the basic blocks of an SSA function.
// Every instruction becomes one node carrying the instruction as Aux;
// operand sub-node edges link instructions that consume other instructions'
// results; If terminators become boolean-valued nodes with then/else
// out-edges. SSA function CFGs carry no exceptional edges, so none are
// produced here.
func FromSSAFunction(fn *ssa.Function) (*Graph, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("function %s has no body", fn)
	}

	b := NewBuilder()
	blocks := make(map[*ssa.BasicBlock]*Block, len(fn.Blocks))
	for _, sb := range fn.Blocks {
		blocks[sb] = b.Block()
	}

	// First pass: one node per instruction.
	nodes := make(map[ssa.Instruction]*Node)
	for _, sb := range fn.Blocks {
		for _, instr := range sb.Instrs {
			var label string
			if v, isValue := instr.(ssa.Value); isValue {
				label = fmt.Sprintf("%s = %s", v.Name(), v)
			} else {
				label = instr.String()
			}

			_, isIf := instr.(*ssa.If)
			nodes[instr] = b.Node(blocks[sb], NodeInfo{
				Kind:    KindOfInstr(instr),
				Label:   label,
				Boolean: isIf,
				Aux:     instr,
			})
		}
	}

	// Second pass: operand sub-nodes. Only operands that are themselves
	// instructions of this function appear as sub-nodes; parameters, free
	// variables, globals and constants have no node.
	var rands []*ssa.Value
	for _, sb := range fn.Blocks {
		for _, instr := range sb.Instrs {
			rands = instr.Operands(rands[:0])
			var ops []*Node
			for _, rand := range rands {
				if rand == nil || *rand == nil {
					continue
				}
				if opInstr, isInstr := (*rand).(ssa.Instruction); isInstr {
					if opNode, found := nodes[opInstr]; found {
						ops = append(ops, opNode)
					}
				}
			}
			b.Operands(nodes[instr], ops...)
		}
	}

	// Third pass: control-flow edges.
	for _, sb := range fn.Blocks {
		blk := blocks[sb]
		if len(sb.Instrs) > 0 {
			if _, isIf := sb.Instrs[len(sb.Instrs)-1].(*ssa.If); isIf {
				b.Branch(blk, blocks[sb.Succs[0]], blocks[sb.Succs[1]])
				continue
			}
		}
		for _, succ := range sb.Succs {
			b.Edge(blk, blocks[succ])
		}
	}

	b.Entry(blocks[fn.Blocks[0]])
	return b.Finish()
}
