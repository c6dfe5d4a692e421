package cfg

import (
	"fmt"
)

// Kind discriminates node operations. Transfer functions dispatch on it.
// The analysis engine itself treats kinds as opaque.
type Kind string

// Node kinds produced by the built-in frontends. Client frontends may
// introduce their own kinds; handlers are looked up by kind and fall back
// to the identity transfer for unknown ones.
const (
	KindConst   Kind = "Const"
	KindAssign  Kind = "Assign"
	KindBinOp   Kind = "BinOp"
	KindUnOp    Kind = "UnOp"
	KindCompare Kind = "Compare"
	KindNot     Kind = "Not"
	KindPhi     Kind = "Phi"
	KindCall    Kind = "Call"
	KindLoad    Kind = "Load"
	KindStore   Kind = "Store"
	KindReturn  Kind = "Return"
	KindBranch  Kind = "Branch"
)

// A Node is a single elementary operation in a control-flow graph.
// Nodes are created by a Builder during CFG construction and are
// immutable afterwards; the analysis only ever reads them.
type Node struct {
	id       int
	kind     Kind
	label    string
	operands []*Node
	boolean  bool
	lvalue   bool
	aux      any
}

// ID returns the stable identity of the node within its graph.
func (n *Node) ID() int {
	return n.id
}

// Kind returns the operation discriminator of the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// Operands returns the ordered list of nodes this node reads.
// The returned slice must not be mutated.
func (n *Node) Operands() []*Node {
	return n.operands
}

// IsBooleanValued reports whether the node produces a boolean result with
// distinguishable true/false continuations. Blocks ending in a
// boolean-valued node may have then/else out-edges.
func (n *Node) IsBooleanValued() bool {
	return n.boolean
}

// IsLValue reports whether the node occurs as an assignment target.
// Assignment targets carry no abstract value of their own.
func (n *Node) IsLValue() bool {
	return n.lvalue
}

// Aux returns the frontend payload attached to the node, if any
// (e.g. the originating ssa.Instruction).
func (n *Node) Aux() any {
	return n.aux
}

// HasSubNode reports whether m is a direct or indirect operand of n.
// Operand links may be cyclic (phis take their own downstream uses as
// operands in loops), so the search keeps a visited set.
func (n *Node) HasSubNode(m *Node) bool {
	return n.hasSubNode(m, map[*Node]bool{n: true})
}

func (n *Node) hasSubNode(m *Node, visited map[*Node]bool) bool {
	for _, op := range n.operands {
		if op == m {
			return true
		}
		if visited[op] {
			continue
		}
		visited[op] = true
		if op.hasSubNode(m, visited) {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n.label != "" {
		return fmt.Sprintf("[ %s ]", n.label)
	}
	return fmt.Sprintf("[ %s:%d ]", n.kind, n.id)
}
