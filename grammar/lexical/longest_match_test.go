package lexical

import (
	"strings"
	"testing"

	mldriver "github.com/nihei9/maleeni/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLongestMatch(t *testing.T) {
	lm, err := CompileLongestMatch("gt", []*Pattern{
		{Token: 4, Name: "GT", Source: ">"},
		{Token: 5, Name: "GTGT", Source: ">>"},
		{Token: 6, Name: "ID", Source: "[a-z]+"},
	})
	require.NoError(t, err)

	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(lm.Spec), strings.NewReader(">>>abc>"))
	require.NoError(t, err)

	var terms []int
	var lexemes []string
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		if tok.EOF {
			break
		}
		require.False(t, tok.Invalid)
		terms = append(terms, lm.KindToTerminal[tok.KindID])
		lexemes = append(lexemes, string(tok.Lexeme))
	}
	assert.Equal(t, []int{5, 4, 6, 4}, terms)
	assert.Equal(t, []string{">>", ">", "abc", ">"}, lexemes)
}

func TestCompileLongestMatch_Error(t *testing.T) {
	_, err := CompileLongestMatch("a", []*Pattern{
		{Token: 4, Name: "A", Source: "(a"},
	})
	assert.Error(t, err)
}

func TestCompileLongestMatch_GrammarName(t *testing.T) {
	tests := []struct {
		name     string
		specName string
	}{
		{name: "expr", specName: "expr"},
		{name: "My-Grammar 2", specName: "my_grammar_2"},
		{name: "__calc__v1", specName: "calc_v1"},
		{name: "1st", specName: "st"},
		{name: "", specName: "lexer"},
		{name: "---", specName: "lexer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.specName, lexSpecName(tt.name))

			lm, err := CompileLongestMatch(tt.name, []*Pattern{
				{Token: 4, Name: "ID", Source: "[a-z]+"},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.specName, lm.Spec.Name)
		})
	}
}
