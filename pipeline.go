package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/ssa"

	"github.com/kvasirlab/conflux/analysis/cfg"
	"github.com/kvasirlab/conflux/analysis/constprop"
	"github.com/kvasirlab/conflux/analysis/dataflow"
	L "github.com/kvasirlab/conflux/analysis/lattice"
	"github.com/kvasirlab/conflux/analysis/reaching"
	"github.com/kvasirlab/conflux/config"
	"github.com/kvasirlab/conflux/utils"
	"github.com/kvasirlab/conflux/utils/dot"
)

// runFunction builds the flow graph of fn and runs every requested analysis
// over it.
func runFunction(conf *config.Config, fn *ssa.Function) error {
	g, err := cfg.FromSSAFunction(fn)
	if err != nil {
		return fmt.Errorf("building graph of %s: %w", fn, err)
	}

	utils.VerbosePrint("%s: %d blocks\n", fn, len(g.Blocks()))

	if conf.WantsAnalysis(config.AnalysisReachable) {
		if err := runReachable(conf, fn, g); err != nil {
			return err
		}
	}
	if conf.WantsAnalysis(config.AnalysisConstProp) {
		a, err := constprop.AnalyzeSSA(g)
		if err != nil {
			return fmt.Errorf("constant propagation of %s: %w", fn, err)
		}
		report(conf, fn, g, config.AnalysisConstProp, storeAnnotator(a))
	}
	if conf.WantsAnalysis(config.AnalysisReaching) {
		a, err := reaching.AnalyzeSSA(g)
		if err != nil {
			return fmt.Errorf("reaching definitions of %s: %w", fn, err)
		}
		report(conf, fn, g, config.AnalysisReaching, storeAnnotator(a))
	}
	return nil
}

// runReachable runs the identity transfer over the two element lattice;
// blocks without a recorded entry store are unreachable from the entry.
func runReachable(conf *config.Config, fn *ssa.Function, g *cfg.Graph) error {
	a := dataflow.NewAnalysis(g, dataflow.NewDispatcher[L.TwoElem, L.TwoElem]())
	if err := a.Run(L.TwoElemTop); err != nil {
		return fmt.Errorf("reachability of %s: %w", fn, err)
	}

	var unreachable []string
	for _, blk := range g.Blocks() {
		if _, found := a.EntryStore(blk); !found {
			unreachable = append(unreachable, blk.String())
		}
	}
	if len(unreachable) > 0 {
		fmt.Printf("%s: unreachable blocks: %s\n", fn, strings.Join(unreachable, ", "))
	} else {
		utils.VerbosePrint("%s: all blocks reachable\n", fn)
	}

	report(conf, fn, g, config.AnalysisReachable, func(blk *cfg.Block) string {
		if _, found := a.EntryStore(blk); !found {
			return "unreachable"
		}
		return ""
	})
	return nil
}

// storeAnnotator renders the fixpoint exit store of each block.
func storeAnnotator[V dataflow.AbstractValue[V], S dataflow.Store[S]](a *dataflow.Analysis[V, S]) cfg.BlockAnnotator {
	return func(blk *cfg.Block) string {
		if s, found := a.ExitStore(blk); found {
			return s.String()
		}
		return ""
	}
}

// report prints per-block results in verbose mode and exports a rendered
// graph when an output directory is configured.
func report(conf *config.Config, fn *ssa.Function, g *cfg.Graph, analysis string, annotate cfg.BlockAnnotator) {
	utils.Opts().OnVerbose(func() {
		for _, blk := range g.Blocks() {
			if extra := annotate(blk); extra != "" {
				fmt.Printf("  [%s] %s: %s\n", analysis, blk, extra)
			}
		}
	})

	if conf.OutputDir == "" && !utils.Opts().Visualize() {
		return
	}

	outDir := conf.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "could not create output directory: %v\n", err)
		return
	}

	base := filepath.Join(outDir, sanitize(fn.String())+"-"+analysis)
	var buf strings.Builder
	if err := g.WriteDot(&buf, annotate); err != nil {
		fmt.Fprintf(os.Stderr, "rendering %s: %v\n", fn, err)
		return
	}
	img, err := dot.DotToImage(base, conf.OutputFormat, []byte(buf.String()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "exporting %s: %v\n", fn, err)
		return
	}
	utils.VerbosePrint("exported %s\n", img)
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '(', ')', '*', ' ':
			return '_'
		}
		return r
	}, name)
}

// sortedNames returns the keys of a function map in deterministic order.
func sortedNames(fns map[string]*ssa.Function) []string {
	names := make([]string, 0, len(fns))
	for name := range fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
