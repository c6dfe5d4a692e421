package cfg

import (
	"strings"
	"testing"

	"golang.org/x/tools/go/ssa"

	"github.com/kvasirlab/conflux/pkgutil"
)

const loopSource = `package main

func main() {
	x := 0
	for i := 0; i < 10; i++ {
		x += i
	}
	if x == 45 {
		println("ok")
	}
	println(x)
}
`

func loadMain(t *testing.T) *ssa.Function {
	t.Helper()
	pkgs, err := pkgutil.LoadPackagesFromSource(loopSource)
	if err != nil {
		t.Fatal(err)
	}
	_, ssaPkgs := pkgutil.BuildSSA(pkgs)
	for name, fn := range pkgutil.Functions(ssaPkgs) {
		if strings.HasSuffix(name, ".main") {
			return fn
		}
	}
	t.Fatal("main function not found")
	return nil
}

func TestFromSSAFunction(t *testing.T) {
	fn := loadMain(t)
	g, err := FromSSAFunction(fn)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(g.Blocks()), len(fn.Blocks); got != want {
		t.Errorf("got %d blocks, want %d", got, want)
	}
	if g.Entry() != g.Blocks()[0] {
		t.Error("entry is not the function's first block")
	}

	var branches, phis, withOperands int
	for _, blk := range g.Blocks() {
		for _, n := range blk.Nodes() {
			switch n.Kind() {
			case KindBranch:
				branches++
				if !n.IsBooleanValued() {
					t.Errorf("branch node %s is not boolean-valued", n)
				}
			case KindPhi:
				phis++
			}
			if len(n.Operands()) > 0 {
				withOperands++
			}
			if n.Aux() == nil {
				t.Errorf("node %s lost its instruction payload", n)
			}
		}
	}
	// The loop condition and the equality test both branch; the loop
	// variables need phis.
	if branches < 2 {
		t.Errorf("found %d branch nodes, want at least 2", branches)
	}
	if phis == 0 {
		t.Error("found no phi nodes in a loop")
	}
	if withOperands == 0 {
		t.Error("no node has operand sub-nodes")
	}

	// Branching blocks carry a then and an else edge; operand links stay
	// within the graph.
	for _, blk := range g.Blocks() {
		if last := blk.Last(); last != nil && last.Kind() == KindBranch {
			if len(blk.Succs()) != 2 ||
				blk.Succs()[0].Kind != FlowThen || blk.Succs()[1].Kind != FlowElse {
				t.Errorf("branching block %s has malformed out-edges", blk)
			}
		}
		for _, n := range blk.Nodes() {
			for _, op := range n.Operands() {
				if !n.HasSubNode(op) {
					t.Errorf("operand %s of %s is not a sub-node", op, n)
				}
			}
		}
	}
}

func TestKindOfInstrNamesUnknownInstructions(t *testing.T) {
	fn := loadMain(t)
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			kind := KindOfInstr(instr)
			if kind == "" {
				t.Errorf("instruction %v got an empty kind", instr)
			}
			if strings.HasPrefix(string(kind), "*") {
				t.Errorf("kind %q leaks the pointer type syntax", kind)
			}
		}
	}
}
