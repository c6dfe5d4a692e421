package main

import (
	"flag"
	"log"
	"strings"

	"github.com/kvasirlab/conflux/config"
	"github.com/kvasirlab/conflux/pkgutil"
	"github.com/kvasirlab/conflux/utils"
)

var opts = utils.Opts()

func main() {
	utils.ParseArgs()

	conf, err := makeConfig()
	if err != nil {
		log.Fatalln(err)
	}

	pkgs, err := pkgutil.LoadPackages(pkgutil.LoadConfig{
		GoPath:       opts.GoPath(),
		ModulePath:   opts.ModulePath(),
		IncludeTests: opts.IncludeTests(),
	}, conf.Packages)
	if err != nil {
		log.Fatalln("failed to load packages:", err)
	}

	_, ssaPkgs := pkgutil.BuildSSA(pkgs)
	fns := pkgutil.Functions(ssaPkgs)
	if len(fns) == 0 {
		log.Fatalln("no functions with bodies in", conf.Packages)
	}

	for _, name := range sortedNames(fns) {
		if !wanted(conf, name) {
			continue
		}
		if err := runFunction(conf, fns[name]); err != nil {
			log.Fatalln(err)
		}
	}
}

// makeConfig derives the run configuration from the -config file when given
// and from flags and the package pattern argument otherwise.
func makeConfig() (*config.Config, error) {
	if path := opts.Config(); path != "" {
		return config.LoadFromFile(path)
	}

	conf := config.Default()
	conf.Packages = flag.Arg(0)
	if opts.OutputFormat() != "" {
		conf.OutputFormat = opts.OutputFormat()
	}
	if fn := opts.Function(); fn != "" {
		conf.Functions = []string{fn}
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// wanted checks the function against the configured restriction; matching
// is by substring, as qualified SSA names are unwieldy to spell exactly.
func wanted(conf *config.Config, name string) bool {
	if len(conf.Functions) == 0 {
		return true
	}
	for _, pattern := range conf.Functions {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}
