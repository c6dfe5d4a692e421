package utils

import (
	"flag"
	"fmt"
	"strings"
)

type options struct {
	config       string
	function     string
	outputFormat string
	gopath       string
	modulePath   string
	includeTests bool
	noColorize   bool
	verbose      bool
	visualize    bool
}

var opts = &options{}

// Opts exposes the global option set.
func Opts() *options {
	return opts
}

func init() {
	flag.StringVar(&opts.config, "config", "",
		"Load run configuration from the given file instead of flags.")
	flag.StringVar(&opts.function, "function", "",
		"Restrict the analysis to functions whose name contains the given string.")
	flag.StringVar(&opts.outputFormat, "format", "svg",
		"Output format used when exporting visualizations.")
	flag.StringVar(&opts.gopath, "gopath", "",
		"Use the given path as GOPATH when loading packages.")
	flag.StringVar(&opts.modulePath, "modulepath", "",
		"Load packages in module-aware mode rooted at the given path.")
	flag.BoolVar(&opts.includeTests, "include-tests", false,
		"Include test functions when loading packages.")
	flag.BoolVar(&opts.noColorize, "no-colorize", false,
		"Disable colorization of printed lattice elements and stores.")
	flag.BoolVar(&opts.verbose, "verbose", false,
		"Print verbose progress information.")
	flag.BoolVar(&opts.visualize, "visualize", false,
		"Export a visualization of analysis results.")
}

// ParseArgs processes command line flags.
func ParseArgs() {
	flag.Parse()
}

func (o *options) Config() string       { return o.config }
func (o *options) Function() string     { return o.function }
func (o *options) OutputFormat() string { return o.outputFormat }
func (o *options) GoPath() string       { return o.gopath }
func (o *options) ModulePath() string   { return o.modulePath }
func (o *options) IncludeTests() bool   { return o.includeTests }
func (o *options) Verbose() bool        { return o.verbose }
func (o *options) Visualize() bool      { return o.visualize }

// OnVerbose runs the given thunk only in verbose mode.
func (o *options) OnVerbose(do func()) {
	if o.verbose {
		do()
	}
}

// CanColorize wraps a color.SprintFunc such that colorization
// can be globally disabled via the -no-colorize flag.
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

// VerbosePrint prints only when the -verbose flag is set.
func VerbosePrint(format string, a ...interface{}) (n int, err error) {
	if opts.Verbose() {
		return fmt.Printf(format, a...)
	}
	return 0, nil
}
