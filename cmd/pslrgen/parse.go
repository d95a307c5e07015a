package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/nihei9/pslrgen/driver"
	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source       *string
	longestMatch *bool
	keepSpaces   *bool
	contexts     *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | pslrgen parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.longestMatch = cmd.Flags().Bool("longest-match", false, "scan with the longest-match lexer instead of the context-aware scanner")
	parseFlags.keepSpaces = cmd.Flags().Bool("keep-spaces", false, "pass white spaces to the scanner instead of skipping them")
	parseFlags.contexts = cmd.Flags().Bool("contexts", false, "annotate each token with the parser state and the scanner context it was scanned in")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		panicked := false
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
				fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
				return
			}

			retErr = err
			panicked = true
		}

		if retErr != nil && panicked {
			fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
		}
	}()

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	var p *driver.Parser
	var treeAct *driver.SyntaxTreeActionSet
	{
		src := os.Stdin
		if *parseFlags.source != "" {
			f, err := os.Open(*parseFlags.source)
			if err != nil {
				return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
			}
			defer f.Close()
			src = f
		}

		var tsOpts []driver.TokenStreamOption
		if !*parseFlags.keepSpaces {
			tsOpts = append(tsOpts, driver.SkipSpaces())
		}
		var toks driver.TokenStream
		if *parseFlags.longestMatch {
			toks, err = driver.NewLongestMatchTokenStream(cgram, src, tsOpts...)
		} else {
			toks, err = driver.NewPSLRTokenStream(cgram, src, tsOpts...)
		}
		if err != nil {
			return err
		}

		gram := driver.NewGrammar(cgram)
		treeAct = driver.NewSyntaxTreeActionSet(gram)
		p, err = driver.NewParser(toks, gram, driver.SemanticAction(treeAct))
		if err != nil {
			return err
		}
	}

	err = p.Parse()
	if err != nil {
		return err
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		tok := synErr.Token

		var msg string
		switch {
		case tok.EOF():
			msg = "<eof>"
		case tok.Invalid():
			msg = fmt.Sprintf("'%v' (<invalid>)", string(tok.Lexeme()))
		default:
			msg = fmt.Sprintf("'%v' (%v)", string(tok.Lexeme()), cgram.Syntactic.Terminals[tok.TerminalID()])
		}

		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v", synErr.Row+1, synErr.Col+1, synErr.Message, msg)
		if len(synErr.ExpectedTerminals) > 0 {
			fmt.Fprintf(os.Stderr, "; expected: %v", synErr.ExpectedTerminals[0])
			for _, t := range synErr.ExpectedTerminals[1:] {
				fmt.Fprintf(os.Stderr, ", %v", t)
			}
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	if len(synErrs) == 0 {
		var treeOpts []driver.TreeOption
		if *parseFlags.contexts {
			treeOpts = append(treeOpts, driver.ShowContexts())
		}
		driver.PrintTree(os.Stdout, treeAct.CST(), treeOpts...)
	}

	return nil
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return nil, err
	}
	return cgram, nil
}
