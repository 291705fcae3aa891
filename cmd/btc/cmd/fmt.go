package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/cst"
	"github.com/btscript/btc/internal/format"
)

var (
	fmtWrite bool // -w: write result back to the source file
	fmtList  bool // -l: list files whose formatting would change
	fmtDiff  bool // -d: print a line diff instead of rewriting
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format source files using the canonical CST-based formatter",
	Long: `fmt reads each file, parses it, and prints it back out using the
canonical formatter (one top-level form per line when it fits the
configured width, one child per line otherwise). With no files it
reads from stdin and writes the formatted result to stdout.`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result to (source) file instead of stdout")
	fmtCmd.Flags().BoolVarP(&fmtList, "list", "l", false, "list files whose formatting differs")
	fmtCmd.Flags().BoolVarP(&fmtDiff, "diff", "d", false, "display a diff instead of rewriting files")
}

func runFmt(cmd *cobra.Command, args []string) error {
	if fmtWrite && fmtList {
		return fmt.Errorf("cannot use -w and -l together")
	}
	if fmtWrite && fmtDiff {
		return fmt.Errorf("cannot use -w and -d together")
	}

	if len(args) == 0 {
		src, err := readSource("")
		if err != nil {
			return err
		}
		formatted, err := formatSource(src)
		if err != nil {
			return err
		}
		fmt.Print(formatted)
		return nil
	}

	hasErrors := false
	for _, path := range args {
		if err := formatFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			hasErrors = true
		}
	}
	if hasErrors {
		return fmt.Errorf("formatting failed for one or more files")
	}
	return nil
}

func formatSource(src string) (string, error) {
	tree, bag := cst.Parse("<input>", src)
	if bag.HasErrors() {
		return "", fmt.Errorf("parse errors: %v", bag.All())
	}
	return format.New(tree, cfg.Format.Width, cfg.Format.Indent).Format(), nil
}

func formatFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	original := string(data)

	formatted, err := formatSource(original)
	if err != nil {
		return err
	}
	changed := original != formatted

	switch {
	case fmtList:
		if changed {
			fmt.Println(path)
		}
	case fmtDiff:
		if changed {
			fmt.Printf("--- %s (original)\n+++ %s (formatted)\n", path, path)
			printLineDiff(original, formatted)
		}
	case fmtWrite:
		if changed {
			if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
				return err
			}
			if verbose {
				fmt.Printf("formatted %s\n", path)
			}
		}
	default:
		fmt.Print(formatted)
	}
	return nil
}

// printLineDiff is a minimal line-by-line diff, sufficient for a
// formatter whose changes are almost always whitespace reflow rather
// than content rewrites.
func printLineDiff(original, formatted string) {
	origLines := splitLines(original)
	fmtLines := splitLines(formatted)
	max := len(origLines)
	if len(fmtLines) > max {
		max = len(fmtLines)
	}
	for i := 0; i < max; i++ {
		var o, f string
		if i < len(origLines) {
			o = origLines[i]
		}
		if i < len(fmtLines) {
			f = fmtLines[i]
		}
		if o != f {
			if i < len(origLines) {
				fmt.Printf("- %s\n", o)
			}
			if i < len(fmtLines) {
				fmt.Printf("+ %s\n", f)
			}
		}
	}
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
