package commands

import "github.com/jessevdk/go-flags"

// newParser builds a go-flags parser for opts, used by each command's
// Help() to render auto-generated option help beneath its description and
// examples.
func newParser(opts any) *flags.Parser {
	return flags.NewParser(opts, flags.Default)
}
