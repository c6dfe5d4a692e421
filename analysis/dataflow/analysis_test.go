package dataflow

import (
	"strings"
	"testing"

	"github.com/kvasirlab/conflux/analysis/cfg"
	L "github.com/kvasirlab/conflux/analysis/lattice"
)

// diamond builds the four-block graph
//
//	b0 ──┬─> b1 ──┐
//	     └─> b2 ──┴─> b3
//
// with a boolean-valued condition node in b0 and one payload-free node of
// the given kind in each branch.
func diamond(t *testing.T, branchKind cfg.Kind) (*cfg.Graph, [4]*cfg.Block) {
	t.Helper()
	b := cfg.NewBuilder()
	b0, b1, b2, b3 := b.Block(), b.Block(), b.Block(), b.Block()
	b.Node(b0, cfg.NodeInfo{Kind: cfg.KindCompare, Label: "cond", Boolean: true})
	b.Node(b1, cfg.NodeInfo{Kind: branchKind, Label: "left"})
	b.Node(b2, cfg.NodeInfo{Kind: branchKind, Label: "right"})
	b.Node(b3, cfg.NodeInfo{Kind: cfg.KindReturn, Label: "ret"})
	b.Branch(b0, b1, b2)
	b.Edge(b1, b3)
	b.Edge(b2, b3)
	b.Entry(b0)

	g, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}
	return g, [4]*cfg.Block{b0, b1, b2, b3}
}

func TestRunReachesFixpointOnDiamond(t *testing.T) {
	g, blocks := diamond(t, cfg.KindAssign)

	// The branches bind x to different constants, so the join block must
	// see ⊤.
	transfer := NewDispatcher[testValue, testStore]().
		Register(cfg.KindAssign, func(n *cfg.Node, in *TransferInput[testValue, testStore]) TransferResult[testValue, testStore] {
			c := int64(1)
			if n.String() == "[ right ]" {
				c = 2
			}
			v := L.FlatVal(c)
			return NewResult[testValue](in.RegularStore().Set("x", v)).WithValue(v)
		})

	a := NewAnalysis(g, transfer)
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}
	if !a.Done() {
		t.Fatal("run did not complete")
	}

	join, found := a.EntryStore(blocks[3])
	if !found {
		t.Fatal("join block was never reached")
	}
	if v, _ := join.Get("x"); !v.IsTop() {
		t.Errorf("conflicting branch constants joined to %s, want ⊤", v)
	}

	left, _ := a.ExitStore(blocks[1])
	if v, _ := left.Get("x"); !v.Is(1) {
		t.Errorf("left branch exit binds x to %s, want 1", v)
	}
}

func TestRunBranchStoresFlowToMatchingSuccessors(t *testing.T) {
	g, blocks := diamond(t, cfg.KindAssign)

	transfer := NewDispatcher[testValue, testStore]().
		Register(cfg.KindCompare, func(n *cfg.Node, in *TransferInput[testValue, testStore]) TransferResult[testValue, testStore] {
			then := in.ThenStore().Set("x", L.FlatVal[int64](1))
			els := in.ElseStore().Set("x", L.FlatVal[int64](0))
			return NewBranchResult[testValue](then, els)
		})

	a := NewAnalysis(g, transfer)
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}

	thenEntry, _ := a.EntryStore(blocks[1])
	if v, _ := thenEntry.Get("x"); !v.Is(1) {
		t.Errorf("then-successor sees x = %s, want 1", v)
	}
	elseEntry, _ := a.EntryStore(blocks[2])
	if v, _ := elseEntry.Get("x"); !v.Is(0) {
		t.Errorf("else-successor sees x = %s, want 0", v)
	}
}

func TestRunTerminatesOnLoop(t *testing.T) {
	b := cfg.NewBuilder()
	b0, b1, b2 := b.Block(), b.Block(), b.Block()
	b.Node(b1, cfg.NodeInfo{Kind: cfg.KindCompare, Label: "cond", Boolean: true})
	b.Edge(b0, b1)
	b.Branch(b1, b1, b2) // b1 loops on itself until the condition fails
	b.Entry(b0)
	g, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalysis(g, NewDispatcher[L.TwoElem, L.TwoElem]())
	if err := a.Run(L.TwoElemTop); err != nil {
		t.Fatal(err)
	}

	for _, blk := range []*cfg.Block{b0, b1, b2} {
		if s, found := a.EntryStore(blk); !found || !s.IsTop() {
			t.Errorf("block %s should be reachable", blk)
		}
	}
}

func TestIdentityLoopKeepsInitialStore(t *testing.T) {
	// With an identity transfer, the loop contributes nothing: the body's
	// entry store stays at whatever was propagated from outside the loop.
	b := cfg.NewBuilder()
	entry, body, exit := b.Block(), b.Block(), b.Block()
	b.Node(body, cfg.NodeInfo{Kind: cfg.KindCompare, Label: "cond", Boolean: true})
	b.Edge(entry, body)
	b.Branch(body, body, exit)
	b.Entry(entry)
	g, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalysis(g, NewDispatcher[L.TwoElem, L.TwoElem]())
	if err := a.Run(L.TwoElemBot); err != nil {
		t.Fatal(err)
	}

	s, found := a.EntryStore(body)
	if !found {
		t.Fatal("loop body was never reached")
	}
	if !s.Equal(L.TwoElemBot) {
		t.Errorf("loop body entry store is %s, want ⊥", s)
	}
}

func TestRunSkipsUnreachableBlocks(t *testing.T) {
	b := cfg.NewBuilder()
	b0, b1 := b.Block(), b.Block()
	dead := b.Block()
	deadNode := b.Node(dead, cfg.NodeInfo{Kind: cfg.KindAssign, Label: "dead"})
	b.Edge(b0, b1)
	b.Entry(b0)
	g, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}

	a := NewAnalysis(g, NewDispatcher[testValue, testStore]())
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}

	if _, found := a.EntryStore(dead); found {
		t.Error("unreachable block has an entry store")
	}
	if _, found := a.ExitStore(dead); found {
		t.Error("unreachable block has an exit store")
	}
	if _, found := a.Value(deadNode); found {
		t.Error("node in an unreachable block has an abstract value")
	}
}

func TestRunReportsTransferPanic(t *testing.T) {
	g, _ := diamond(t, cfg.KindAssign)

	transfer := NewDispatcher[testValue, testStore]().
		Register(cfg.KindAssign, func(n *cfg.Node, in *TransferInput[testValue, testStore]) TransferResult[testValue, testStore] {
			panic("unsupported operation")
		})

	a := NewAnalysis(g, transfer)
	err := a.Run(L.NewVarMap[testValue]())
	if err == nil {
		t.Fatal("panicking transfer should surface as an error")
	}
	if !strings.Contains(err.Error(), "unsupported operation") {
		t.Errorf("error %q does not mention the panic cause", err)
	}
	if a.Done() {
		t.Error("aborted run reports completion")
	}
}

func TestRunIsSingleUse(t *testing.T) {
	g, _ := diamond(t, cfg.KindAssign)
	a := NewAnalysis(g, NewDispatcher[testValue, testStore]())
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}
	if err := a.Run(L.NewVarMap[testValue]()); err == nil {
		t.Error("second Run on the same instance should fail")
	}
}

func TestRunExceptionalOverride(t *testing.T) {
	b := cfg.NewBuilder()
	b0, ok, handler := b.Block(), b.Block(), b.Block()
	b.Node(b0, cfg.NodeInfo{Kind: cfg.KindCall, Label: "call"})
	b.Edge(b0, ok)
	b.Exception(b0, handler, "panic")
	b.Entry(b0)
	g, err := b.Finish()
	if err != nil {
		t.Fatal(err)
	}

	transfer := NewDispatcher[testValue, testStore]().
		Register(cfg.KindCall, func(n *cfg.Node, in *TransferInput[testValue, testStore]) TransferResult[testValue, testStore] {
			return NewResult[testValue](in.RegularStore().Set("x", L.FlatVal[int64](1))).
				WithException("panic", in.RegularStore().Set("x", L.FlatVal[int64](2)))
		})

	a := NewAnalysis(g, transfer)
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}

	normal, _ := a.EntryStore(ok)
	if v, _ := normal.Get("x"); !v.Is(1) {
		t.Errorf("normal successor sees x = %s, want 1", v)
	}
	exceptional, _ := a.EntryStore(handler)
	if v, _ := exceptional.Get("x"); !v.Is(2) {
		t.Errorf("exceptional successor sees x = %s, want 2", v)
	}
}

func TestDispatcherFallback(t *testing.T) {
	g, blocks := diamond(t, cfg.KindCall)

	transfer := NewDispatcher[testValue, testStore]().
		Fallback(func(n *cfg.Node, in *TransferInput[testValue, testStore]) TransferResult[testValue, testStore] {
			return NewResult[testValue](in.RegularStore().Set("seen", L.FlatVal[int64](1)))
		})

	a := NewAnalysis(g, transfer)
	if err := a.Run(L.NewVarMap[testValue]()); err != nil {
		t.Fatal(err)
	}
	join, _ := a.EntryStore(blocks[3])
	if v, _ := join.Get("seen"); !v.Is(1) {
		t.Errorf("fallback did not run: seen = %s", v)
	}
}
