package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/pkg/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run the full lex/parse/resolve/type-check pipeline and print diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
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
		fmt.Println(d.Format(src, false))
	}
	for _, d := range diags {
		if d.Severity == diag.Error {
			return fmt.Errorf("type check failed")
		}
	}
	return nil
}
