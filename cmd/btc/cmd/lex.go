package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/lexer"
)

var lexShowPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file and print the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return err
	}
	for _, tok := range lexer.Tokenize(src) {
		if lexShowPos {
			fmt.Printf("%-16s %-12q @%s\n", tok.Kind, tok.Text, tok.Span.Start)
		} else {
			fmt.Printf("%-16s %q\n", tok.Kind, tok.Text)
		}
		if tok.Kind == lexer.EOF {
			break
		}
	}
	return nil
}
