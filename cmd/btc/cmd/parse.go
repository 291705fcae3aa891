package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btscript/btc/internal/cst"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and print its concrete syntax tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	src, err := readSource(path)
	if err != nil {
		return err
	}
	tree, bag := cst.Parse(filenameOrStdin(path), src)
	for _, d := range bag.All() {
		fmt.Println(d.Format(src, false))
	}
	printCSTNode(tree, tree.Root, 0)
	if bag.HasErrors() {
		return fmt.Errorf("parse failed")
	}
	return nil
}

func printCSTNode(tree *cst.Tree, id cst.NodeID, depth int) {
	n := tree.Node(id)
	fmt.Printf("%*s%s %s\n", depth*2, "", n.Kind, tree.Span(id))
	for _, child := range tree.Children(id) {
		printCSTNode(tree, child, depth+1)
	}
}

func filenameOrStdin(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}
