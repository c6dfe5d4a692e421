package cfg

import (
	"fmt"
	"io"

	"github.com/kvasirlab/conflux/utils/dot"
)

// BlockAnnotator produces an optional extra label line for a block, e.g. the
// fixpoint store computed for it. A nil annotator or an empty result leaves
// the block unannotated.
type BlockAnnotator func(*Block) string

// ToDotGraph renders the graph in dot form, one cluster per block.
func (g *Graph) ToDotGraph(annotate BlockAnnotator) *dot.DotGraph {
	dg := &dot.DotGraph{
		Title:   "Control flow graph",
		Options: map[string]string{"minlen": "1", "nodesep": "0.3"},
	}

	last := make(map[*Block]*dot.DotNode)
	first := make(map[*Block]*dot.DotNode)

	for _, blk := range g.Blocks() {
		cluster := dot.NewDotCluster(fmt.Sprintf("b%d", blk.Index()))
		cluster.Attrs["label"] = blk.String()
		if annotate != nil {
			if extra := annotate(blk); extra != "" {
				cluster.Attrs["label"] = blk.String() + "\n" + extra
			}
		}
		if blk == g.Entry() {
			cluster.Attrs["style"] = "bold"
		}

		var prev *dot.DotNode
		for _, n := range blk.Nodes() {
			dn := &dot.DotNode{
				ID:    fmt.Sprintf("n%d", n.ID()),
				Attrs: dot.DotAttrs{"label": n.String()},
			}
			if n.IsBooleanValued() {
				dn.Attrs["shape"] = "diamond"
			}
			cluster.Nodes = append(cluster.Nodes, dn)
			if prev != nil {
				dg.Edges = append(dg.Edges, &dot.DotEdge{
					From: prev, To: dn,
					Attrs: dot.DotAttrs{"style": "dotted", "arrowhead": "none"},
				})
			} else {
				first[blk] = dn
			}
			prev = dn
		}
		if prev == nil {
			// Empty blocks still need an anchor for edges.
			anchor := &dot.DotNode{
				ID:    fmt.Sprintf("b%d-anchor", blk.Index()),
				Attrs: dot.DotAttrs{"label": "", "shape": "point"},
			}
			cluster.Nodes = append(cluster.Nodes, anchor)
			first[blk] = anchor
			prev = anchor
		}
		last[blk] = prev
		dg.Clusters = append(dg.Clusters, cluster)
	}

	for _, blk := range g.Blocks() {
		for _, e := range blk.Succs() {
			attrs := dot.DotAttrs{}
			switch e.Kind {
			case FlowThen:
				attrs["label"] = "true"
				attrs["color"] = "forestgreen"
			case FlowElse:
				attrs["label"] = "false"
				attrs["color"] = "firebrick"
			case FlowException:
				attrs["label"] = string(e.Cause)
				attrs["color"] = "firebrick"
				attrs["style"] = "dashed"
			}
			dg.Edges = append(dg.Edges, &dot.DotEdge{
				From: last[blk], To: first[e.To], Attrs: attrs,
			})
		}
	}

	return dg
}

// WriteDot writes the graph in dot form to w.
func (g *Graph) WriteDot(w io.Writer, annotate BlockAnnotator) error {
	return g.ToDotGraph(annotate).WriteDot(w)
}
