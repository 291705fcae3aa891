// Command btc is the CLI front end for the behavior-tree DSL
// compiler: lexing, parsing, type checking, IR printing, formatting,
// and a query-engine-backed REPL, all thin wrappers over pkg/engine.
package main

import (
	"os"

	"github.com/btscript/btc/cmd/btc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
