package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/pkg/engine"
)

var irCmd = &cobra.Command{
	Use:   "ir [file]",
	Short: "Print a file's optimized IR in the canonical S-expression form",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIR,
}

func init() {
	rootCmd.AddCommand(irCmd)
}

func runIR(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return err
	}

	file := engine.FileID(filenameOrStdin(path))
	eng.SetSource(file, src)
	eng.SetContext(file, engine.ContextSet{})

	diags, err := eng.Diagnostics(file)
	if err != nil {
		return err
	}
	for _, d := range diags {
		if d.Severity == diag.Error {
			fmt.Println(d.Format(src, false))
		}
	}
	for _, d := range diags {
		if d.Severity == diag.Error {
			return fmt.Errorf("cannot print ir: type check failed")
		}
	}

	out, err := eng.PrintIR(file)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
