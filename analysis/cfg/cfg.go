package cfg

import (
	"fmt"
	"strings"
)

// FlowKind discriminates the out-edges of a block.
type FlowKind int

const (
	// FlowNormal is an unconditional edge carrying the regular store.
	FlowNormal FlowKind = iota
	// FlowThen is the true-continuation of a boolean-valued block terminator.
	FlowThen
	// FlowElse is the false-continuation of a boolean-valued block terminator.
	FlowElse
	// FlowException is an edge taken when the block's effect aborts
	// abruptly. It is identified by a Cause.
	FlowException
)

func (k FlowKind) String() string {
	switch k {
	case FlowNormal:
		return "normal"
	case FlowThen:
		return "then"
	case FlowElse:
		return "else"
	case FlowException:
		return "exception"
	default:
		panic(fmt.Sprintf("unknown flow kind: %d", int(k)))
	}
}

// Cause identifies an exceptional successor of a block, e.g. "panic".
// Transfer results may override the store propagated along an exceptional
// edge by keying on its cause.
type Cause string

// An Edge is a typed control-flow edge between two blocks.
type Edge struct {
	Kind FlowKind
	// Cause is only set on FlowException edges.
	Cause Cause
	To    *Block
}

// A Block is a basic block: an ordered sequence of nodes with typed
// out-edges. Blocks are created by a Builder and immutable afterwards.
type Block struct {
	index int
	nodes []*Node
	succs []Edge
	preds []*Block
}

// Index returns the position of the block in its graph.
func (b *Block) Index() int {
	return b.index
}

// Nodes returns the block's nodes in evaluation order.
// The returned slice must not be mutated.
func (b *Block) Nodes() []*Node {
	return b.nodes
}

// Succs returns the typed out-edges of the block.
func (b *Block) Succs() []Edge {
	return b.succs
}

// Preds returns the predecessor blocks.
func (b *Block) Preds() []*Block {
	return b.preds
}

// Last returns the final node of the block, or nil if the block is empty.
func (b *Block) Last() *Node {
	if len(b.nodes) == 0 {
		return nil
	}
	return b.nodes[len(b.nodes)-1]
}

func (b *Block) String() string {
	return fmt.Sprintf("b%d", b.index)
}

// A Graph is a whole control-flow graph: an entry block and all blocks
// reachable or not. Construction happens through a Builder; the analysis
// driver only reads the graph.
type Graph struct {
	entry  *Block
	blocks []*Block
}

// Entry returns the entry block of the graph.
func (g *Graph) Entry() *Block {
	return g.entry
}

// Blocks returns all blocks of the graph, in construction order.
func (g *Graph) Blocks() []*Block {
	return g.blocks
}

func (g *Graph) String() string {
	var sb strings.Builder
	for _, b := range g.blocks {
		fmt.Fprintf(&sb, "%s", b)
		if b == g.entry {
			sb.WriteString(" (entry)")
		}
		sb.WriteString(":\n")
		for _, n := range b.nodes {
			fmt.Fprintf(&sb, "\t%s\n", n)
		}
		for _, e := range b.succs {
			switch e.Kind {
			case FlowException:
				fmt.Fprintf(&sb, "\t-> %s (%s: %s)\n", e.To, e.Kind, e.Cause)
			default:
				fmt.Fprintf(&sb, "\t-> %s (%s)\n", e.To, e.Kind)
			}
		}
	}
	return sb.String()
}
