package cfg

import (
	"errors"
	"fmt"
)

var (
	errNoEntry        = errors.New("graph has no entry block")
	errForeignBlock   = errors.New("block does not belong to this builder")
	errSealed         = errors.New("builder is already sealed")
	errDanglingBranch = errors.New("then/else edge from a block that does not end in a boolean-valued node")
)

// NodeInfo configures the creation of a single node.
type NodeInfo struct {
	Kind     Kind
	Label    string
	Operands []*Node
	// Boolean marks the node as boolean-valued with distinguishable
	// true/false continuations.
	Boolean bool
	// LValue marks the node as an assignment target.
	LValue bool
	// Aux is an opaque frontend payload.
	Aux any
}

// A Builder incrementally constructs a Graph. All mutation of blocks and
// nodes goes through the builder; once Finish has been called the graph
// and everything in it is immutable.
type Builder struct {
	graph  *Graph
	owned  map[*Block]bool
	nextID int
	sealed bool
}

func NewBuilder() *Builder {
	return &Builder{
		graph: &Graph{},
		owned: make(map[*Block]bool),
	}
}

// Block creates a fresh, empty block.
func (b *Builder) Block() *Block {
	blk := &Block{index: len(b.graph.blocks)}
	b.graph.blocks = append(b.graph.blocks, blk)
	b.owned[blk] = true
	return blk
}

// Node creates a node according to the given info and appends it to blk.
func (b *Builder) Node(blk *Block, info NodeInfo) *Node {
	b.check(blk)
	n := &Node{
		id:       b.nextID,
		kind:     info.Kind,
		label:    info.Label,
		operands: info.Operands,
		boolean:  info.Boolean,
		lvalue:   info.LValue,
		aux:      info.Aux,
	}
	b.nextID++
	blk.nodes = append(blk.nodes, n)
	return n
}

// Operands assigns the ordered operand list of n, replacing the one given
// at creation. Frontends use it to resolve operand references that only
// exist once all nodes have been created (e.g. phi back-edges).
func (b *Builder) Operands(n *Node, ops ...*Node) {
	if b.sealed {
		panic(errSealed)
	}
	n.operands = ops
}

// Edge adds an unconditional edge from one block to another.
func (b *Builder) Edge(from, to *Block) {
	b.addEdge(from, Edge{Kind: FlowNormal, To: to})
}

// Branch adds the true/false continuations of a block whose last node is
// boolean-valued.
func (b *Builder) Branch(from, then, els *Block) {
	b.addEdge(from, Edge{Kind: FlowThen, To: then})
	b.addEdge(from, Edge{Kind: FlowElse, To: els})
}

// Exception adds an exceptional edge identified by the given cause.
func (b *Builder) Exception(from, to *Block, cause Cause) {
	b.addEdge(from, Edge{Kind: FlowException, Cause: cause, To: to})
}

// Entry designates the entry block of the graph.
func (b *Builder) Entry(blk *Block) {
	b.check(blk)
	b.graph.entry = blk
}

func (b *Builder) addEdge(from *Block, e Edge) {
	b.check(from)
	b.check(e.To)
	from.succs = append(from.succs, e)
	e.To.preds = append(e.To.preds, from)
}

func (b *Builder) check(blk *Block) {
	if b.sealed {
		panic(errSealed)
	}
	if blk != nil && !b.owned[blk] {
		panic(errForeignBlock)
	}
}

// Finish validates and seals the graph. Malformed graphs are rejected
// rather than coerced.
func (b *Builder) Finish() (*Graph, error) {
	if b.sealed {
		return nil, errSealed
	}
	if b.graph.entry == nil {
		return nil, errNoEntry
	}
	for _, blk := range b.graph.blocks {
		for _, e := range blk.succs {
			if e.Kind == FlowThen || e.Kind == FlowElse {
				if last := blk.Last(); last == nil || !last.IsBooleanValued() {
					return nil, fmt.Errorf("%w: %s", errDanglingBranch, blk)
				}
			}
			if e.Kind == FlowException && e.Cause == "" {
				return nil, fmt.Errorf("exceptional edge from %s has no cause", blk)
			}
		}
	}
	b.sealed = true
	return b.graph, nil
}
