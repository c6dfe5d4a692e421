package dataflow

import (
	"fmt"
	"math"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/utils"
	"github.com/kvasirlab/conflux/utils/graph"
	"github.com/kvasirlab/conflux/utils/pq"

	"github.com/benbjohnson/immutable"
)

// An Analysis drives one dataflow analysis run over one CFG to a fixpoint.
// It owns the per-block entry/exit store tables, the per-node value cache
// and the worklist, all scoped to the run: multiple Analysis instances over
// distinct CFGs share no mutable state and may run concurrently.
//
// An Analysis instance is single-use. Construct, Run, read out the results,
// discard.
type Analysis[V AbstractValue[V], S Store[S]] struct {
	graph    *cfg.Graph
	transfer TransferFunction[V, S]

	// entryStores is updated monotonically by least upper bound as the
	// fixpoint progresses; a block absent from it was never reached.
	entryStores map[*cfg.Block]S
	exitStores  map[*cfg.Block]S

	// values caches the abstract value computed for each evaluated node.
	values *immutable.Map[*cfg.Node, V]

	// ranks orders the worklist by reverse postorder, which minimizes the
	// number of re-evaluations on acyclic stretches of the CFG. The order
	// only affects iteration count, never the result.
	ranks    graph.Mapper[*cfg.Block]
	worklist pq.PriorityQueue[*cfg.Block]

	started bool
	done    bool
}

// NewAnalysis prepares an analysis of g with the given transfer function.
func NewAnalysis[V AbstractValue[V], S Store[S]](g *cfg.Graph, transfer TransferFunction[V, S]) *Analysis[V, S] {
	G := graph.OfHashable(func(b *cfg.Block) (succs []*cfg.Block) {
		for _, e := range b.Succs() {
			succs = append(succs, e.To)
		}
		return
	})
	ranks := G.ReversePostorderRanks(g.Entry())

	rankOf := func(b *cfg.Block) int {
		if r, found := ranks.Get(b); found {
			return r.(int)
		}
		return math.MaxInt
	}

	return &Analysis[V, S]{
		graph:       g,
		transfer:    transfer,
		entryStores: make(map[*cfg.Block]S),
		exitStores:  make(map[*cfg.Block]S),
		values:      immutable.NewMap[*cfg.Node, V](utils.PointerHasher[*cfg.Node]{}),
		ranks:       ranks,
		worklist: pq.Empty(func(b1, b2 *cfg.Block) bool {
			return rankOf(b1) < rankOf(b2)
		}),
	}
}

// Run computes the fixpoint, starting from the given initial store at the
// entry block. A panicking transfer function aborts the run, which is then
// reported as an error; the analysis results are unusable in that case.
func (a *Analysis[V, S]) Run(initial S) (err error) {
	if a.started {
		return fmt.Errorf("analysis instances are single-use; construct a new one")
	}
	a.started = true

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis run failed: %v", r)
		}
	}()

	entry := a.graph.Entry()
	a.entryStores[entry] = initial
	a.worklist.Add(entry)

	for !a.worklist.IsEmpty() {
		a.processBlock(a.worklist.GetNext())
	}

	a.done = true
	return nil
}

// Done reports whether the run terminated successfully.
func (a *Analysis[V, S]) Done() bool {
	return a.done
}

// Value returns the abstract value cached for node n, or absent if the node
// was never evaluated (e.g. it belongs to an unreachable block) or its
// transfer produced no value.
func (a *Analysis[V, S]) Value(n *cfg.Node) (V, bool) {
	return a.values.Get(n)
}

// EntryStore returns a copy of the store recorded at the entry of block b,
// or absent if the block was never reached.
func (a *Analysis[V, S]) EntryStore(b *cfg.Block) (s S, found bool) {
	if stored, ok := a.entryStores[b]; ok {
		return stored.Copy(), true
	}
	return
}

// ExitStore returns a copy of the regular store at the exit of block b, or
// absent if the block was never processed.
func (a *Analysis[V, S]) ExitStore(b *cfg.Block) (s S, found bool) {
	if stored, ok := a.exitStores[b]; ok {
		return stored.Copy(), true
	}
	return
}

// processBlock threads a TransferInput through the nodes of b in evaluation
// order and propagates the resulting stores along b's out-edges.
func (a *Analysis[V, S]) processBlock(b *cfg.Block) {
	in := NewInput[V, S](nil, a, a.entryStores[b].Copy())

	res := NewResult[V](in.RegularStore())
	for _, n := range b.Nodes() {
		in.node = n
		res = a.transfer.Transfer(n, in)
		if v, hasValue := res.Value(); hasValue {
			a.values = a.values.Set(n, v)
		}
		in = InputFromResult(nil, a, res)
	}

	a.exitStores[b] = res.RegularStore().Copy()

	for _, e := range b.Succs() {
		var incoming S
		switch e.Kind {
		case cfg.FlowThen:
			incoming = res.ThenStore()
		case cfg.FlowElse:
			incoming = res.ElseStore()
		case cfg.FlowException:
			if override, found := res.ExceptionalStore(e.Cause); found {
				incoming = override
			} else {
				incoming = res.RegularStore()
			}
		default:
			incoming = res.RegularStore()
		}
		a.propagate(e.To, incoming)
	}
}

// propagate merges the incoming store into the recorded entry store of the
// successor and re-enqueues it when the merge changed something. An
// unchanged merge leaves the successor stable, which is what guarantees
// termination on lattices of finite height.
func (a *Analysis[V, S]) propagate(to *cfg.Block, incoming S) {
	existing, found := a.entryStores[to]
	if !found {
		a.entryStores[to] = incoming.Copy()
		a.worklist.Add(to)
		return
	}

	merged := existing.LeastUpperBound(incoming)
	if !merged.Equal(existing) {
		a.entryStores[to] = merged
		a.worklist.Add(to)
	}
}
