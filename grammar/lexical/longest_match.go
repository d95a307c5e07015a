package lexical

import (
	"fmt"
	"io"
	"strings"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

func kindName(token int) mlspec.LexKindName {
	return mlspec.LexKindName(fmt.Sprintf("t%v", token))
}

// lexSpecName turns a grammar name into a lexical specification name, which must be a lower snake
// case identifier.
func lexSpecName(name string) string {
	var b strings.Builder
	sep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9' && b.Len() > 0:
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(c)
		default:
			sep = true
		}
	}
	if b.Len() == 0 {
		return "lexer"
	}
	return b.String()
}

// CompileLongestMatch compiles patterns into a longest-match lexer named after the grammar. When
// patterns of the same length match, the lexer selects the pattern declared first.
func CompileLongestMatch(name string, patterns []*Pattern) (*spec.LongestMatch, error) {
	entries := make([]*mlspec.LexEntry, len(patterns))
	kind2Token := map[mlspec.LexKindName]int{}
	for i, pat := range patterns {
		k := kindName(pat.Token)
		entries[i] = &mlspec.LexEntry{
			Kind:    k,
			Pattern: mlspec.LexPattern(pat.Source),
		}
		kind2Token[k] = pat.Token
	}

	clspec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    lexSpecName(name),
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			writeCompileError(&b, cErrs[0])
			for _, cerr := range cErrs[1:] {
				fmt.Fprintf(&b, "\n")
				writeCompileError(&b, cerr)
			}
			return nil, fmt.Errorf(b.String())
		}
		return nil, err
	}

	kind2Term := make([]int, len(clspec.KindNames))
	for i, k := range clspec.KindNames {
		if k == mlspec.LexKindNameNil {
			continue
		}
		t, ok := kind2Token[k]
		if !ok {
			return nil, fmt.Errorf("a lexical kind '%v' has no terminal symbol", k)
		}
		kind2Term[i] = t
	}

	return &spec.LongestMatch{
		Spec:           clspec,
		KindToTerminal: kind2Term,
	}, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError) {
	fmt.Fprintf(w, "%v: %v", cErr.Kind, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}
