package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

var traceKeys = []string{
	"pslrgen.grammar",
	"pslrgen.lexical",
	"pslrgen.pslr",
	"pslrgen.driver",
}

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "pslrgen",
	Short: "Generate LALR(1) parsing tables and context-aware scanners from a grammar",
	Long: `pslrgen provides the following features:
- Generates LALR(1) parsing tables and a PSLR scanner from a resolved grammar.
- Describes conflicts, their resolution, and counterexamples in readable format.
- Parses a text stream according to the generated tables.
  This feature is primarily aimed at debugging the grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
