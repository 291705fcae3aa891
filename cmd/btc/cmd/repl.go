package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/diag"
	"github.com/btscript/btc/pkg/engine"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Feed pasted snippets through the query engine interactively",
	Long: `repl reads one snippet per blank-line-terminated block from
stdin, synthesizes a fresh "inline://<uuid>" FileId for it so the
query engine's per-file caching (§4.10) applies the same as it would
to a real file, runs the full pipeline, and prints diagnostics and the
optimized IR.

Type a blank line to submit a snippet; Ctrl-D ends the session.`,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	scanner := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	fmt.Print("btc> ")
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if buf.Len() == 0 {
				fmt.Print("btc> ")
				continue
			}
			evalSnippet(buf.String())
			buf.Reset()
			fmt.Print("btc> ")
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if buf.Len() > 0 {
		evalSnippet(buf.String())
	}
	return scanner.Err()
}

func evalSnippet(src string) {
	file := engine.FileID(fmt.Sprintf("inline://%s", uuid.NewString()))
	eng.SetSource(file, src)
	eng.SetContext(file, engine.ContextSet{})

	diags, err := eng.Diagnostics(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	hasErrors := false
	for _, d := range diags {
		fmt.Println(d.Format(src, false))
		if d.Severity == diag.Error {
			hasErrors = true
		}
	}
	if hasErrors {
		return
	}
	out, err := eng.PrintIR(file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Print(out)
}
