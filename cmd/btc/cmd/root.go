package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/btscript/btc/pkg/config"
	"github.com/btscript/btc/pkg/engine"
)

var (
	verbose bool
	cfg     config.Config
	log     = logrus.New()
	eng     *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "btc",
	Short: "Behavior-tree DSL compiler front end",
	Long: `btc lexes, parses, checks, and formats the behavior-tree DSL
described by the project specification, and prints its optimized IR.

It reads an optional btc.toml from the working directory; the fmt
command uses its formatter line width/indent. The import_paths and
context_type_binding keys are decoded but no command uses them: imports
are not resolved and no context type is bound. Absence of the file is
not an error.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		loaded, err := config.Load(wd)
		if err != nil {
			return fmt.Errorf("loading %s: %w", config.FileName, err)
		}
		cfg = loaded
		eng = engine.New(nil, log)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
}

// readSource returns path's contents, or stdin's if path is empty.
func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
