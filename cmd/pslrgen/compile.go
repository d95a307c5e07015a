package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	verr "github.com/nihei9/pslrgen/error"
	"github.com/nihei9/pslrgen/grammar"
	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/nihei9/pslrgen/spec/grammar/parser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output          *string
	counterexamples *bool
	cexLimit        *int
	disablePSLR     *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile grammar you defined into a parsing table",
		Example: `  pslrgen compile grammar.toml -o grammar.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.counterexamples = cmd.Flags().Bool("counterexamples", false, "search counterexamples of the conflicts")
	compileFlags.cexLimit = cmd.Flags().Int("cex-limit", 0, "upper bound of search steps per counterexample")
	compileFlags.disablePSLR = cmd.Flags().Bool("disable-pslr", false, "do not generate a scanner even if the grammar has token patterns")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}
	defer func() {
		if retErr != nil {
			specErrs, ok := retErr.(verr.SpecErrors)
			if ok {
				for _, err := range specErrs {
					if grmPath != "" {
						err.FilePath = grmPath
						err.SourceName = grmPath
					} else {
						err.SourceName = "stdin"
					}
				}
			}
		}
	}()

	var src io.Reader = os.Stdin
	if grmPath != "" {
		f, err := os.Open(grmPath)
		if err != nil {
			return fmt.Errorf("Cannot open the grammar file %s: %w", grmPath, err)
		}
		defer f.Close()
		src = f
	}

	gram, err := readGrammar(src)
	if err != nil {
		return err
	}

	opts := []grammar.CompileOption{
		grammar.EnableReporting(),
	}
	if *compileFlags.counterexamples {
		opts = append(opts, grammar.EnableCounterexamples())
	}
	if *compileFlags.cexLimit > 0 {
		opts = append(opts, grammar.CounterexampleSearchLimit(*compileFlags.cexLimit))
	}
	if *compileFlags.disablePSLR {
		opts = append(opts, grammar.DisablePSLR())
	}
	cgram, report, err := grammar.Compile(gram, opts...)
	if err != nil {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write an output files: %w", err)
	}

	if msg := conflictMessage(report.Summary); msg != "" {
		pterm.Warning.Println(msg)
	}
	if report.PSLR != nil {
		count := 0
		for _, in := range report.PSLR.Inadequacies {
			if in.Kind == spec.InadequacyKindPSLR {
				count++
			}
		}
		if count > 0 {
			pterm.Warning.Println(fmt.Sprintf("%v scanner inadequacies", count))
		}
		pterm.Info.Println(fmt.Sprintf("%v scanner contexts", len(report.PSLR.Contexts)))
	}

	return checkExpectations(report.Summary)
}

func readGrammar(src io.Reader) (*grammar.Grammar, error) {
	ast, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

func conflictMessage(s *spec.ConflictSummary) string {
	switch {
	case s.SRConflictCount > 0 && s.RRConflictCount > 0:
		return fmt.Sprintf("%v shift/reduce conflicts, %v reduce/reduce conflicts", s.SRConflictCount, s.RRConflictCount)
	case s.SRConflictCount > 0:
		return fmt.Sprintf("%v shift/reduce conflicts", s.SRConflictCount)
	case s.RRConflictCount > 0:
		return fmt.Sprintf("%v reduce/reduce conflicts", s.RRConflictCount)
	}
	return ""
}

// conflictCountError reports a conflict count differing from the one the grammar expects.
type conflictCountError struct {
	kind     string
	found    int
	expected int
}

func (e *conflictCountError) Error() string {
	return fmt.Sprintf("%v conflicts: %v found, %v expected", e.kind, e.found, e.expected)
}

// checkExpectations compares the conflict counts with the expected ones. Once the grammar expects
// some shift/reduce conflicts, it must expect every reduce/reduce conflict explicitly.
func checkExpectations(s *spec.ConflictSummary) error {
	if s.ExpectedSR != nil && s.SRConflictCount != *s.ExpectedSR {
		return &conflictCountError{kind: "shift/reduce", found: s.SRConflictCount, expected: *s.ExpectedSR}
	}
	expectedRR := 0
	switch {
	case s.ExpectedRR != nil:
		expectedRR = *s.ExpectedRR
	case s.ExpectedSR == nil:
		return nil
	}
	if s.RRConflictCount != expectedRR {
		return &conflictCountError{kind: "reduce/reduce", found: s.RRConflictCount, expected: expectedRR}
	}
	return nil
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to a files located at a specified path.
// This function selects one of the following output methods depending on how the path is specified.
//
//  1. When the path is a directory path, this function writes the compiled grammar and the report to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json files, respectively.
//  2. When the path is a file path or a non-exitent path, this function asumes that the path represents a file
//     path for the compiled grammar. Then it also writes the report in the same directory as the compiled grammar.
//     The report file is named <grammar-name>-report.json.
//  3. When the path is an empty string, this function writes the compiled grammar to the stdout and writes
//     the report to a file named <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	{
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(reportFile, "%v\n", string(b))
	}

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
