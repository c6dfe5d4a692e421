package lattice

import (
	"github.com/kvasirlab/conflux/utils"

	"github.com/fatih/color"
)

// colorize bundles the color schemes used when pretty-printing lattice
// members and stores. Colorization is disabled globally via the
// -no-colorize flag.
var colorize = struct {
	Element func(...interface{}) string
	Const   func(...interface{}) string
	Key     func(...interface{}) string
}{
	Element: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgCyan).SprintFunc())(is...)
	},
	Const: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgHiWhite).SprintFunc())(is...)
	},
	Key: func(is ...interface{}) string {
		return utils.CanColorize(color.New(color.FgYellow).SprintFunc())(is...)
	},
}
