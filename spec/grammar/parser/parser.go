package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	verr "github.com/nihei9/pslrgen/error"
)

// RootNode is a resolved grammar. Every symbol reference is a plain name; quoted single-character
// names like '+' denote terminal symbols that need no declaration.
type RootNode struct {
	Name         string             `toml:"name"`
	Start        string             `toml:"start"`
	Expect       *int               `toml:"expect"`
	ExpectRR     *int               `toml:"expect_rr"`
	Terminals    []*TerminalNode    `toml:"terminal"`
	NonTerminals []*NonTerminalNode `toml:"nonterminal"`
	Precedences  []*PrecedenceNode  `toml:"precedence"`
	Rules        []*RuleNode        `toml:"rule"`
	LexPrecs     []*LexPrecNode     `toml:"lex_prec"`
}

type TerminalNode struct {
	Name    string   `toml:"name"`
	Alias   string   `toml:"alias"`
	Tag     string   `toml:"tag"`
	Pattern string   `toml:"pattern"`
	Literal string   `toml:"literal"`
	Pos     Position `toml:"-"`
}

type NonTerminalNode struct {
	Name string   `toml:"name"`
	Tag  string   `toml:"tag"`
	Pos  Position `toml:"-"`
}

type PrecedenceNode struct {
	Assoc   string   `toml:"assoc"`
	Symbols []string `toml:"symbols"`
	Pos     Position `toml:"-"`
}

type RuleNode struct {
	LHS    string   `toml:"lhs"`
	RHS    []string `toml:"rhs"`
	Prec   string   `toml:"prec"`
	Action string   `toml:"action"`
	Pos    Position `toml:"-"`
}

type LexPrecNode struct {
	Higher string   `toml:"higher"`
	Lower  string   `toml:"lower"`
	Pos    Position `toml:"-"`
}

// Position locates a node in a document. A TOML document has no useful column information for
// array-of-tables entries, so Index holds the 1-based ordinal of the entry within its array.
type Position struct {
	Table string
	Index int
}

func (p Position) String() string {
	if p.Table == "" {
		return ""
	}
	return fmt.Sprintf("[[%v]] #%v", p.Table, p.Index)
}

func Parse(src io.Reader) (*RootNode, error) {
	root := &RootNode{}
	md, err := toml.NewDecoder(src).Decode(root)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, verr.SpecErrors{
				&verr.SpecError{
					Cause:  synErrInvalidDocument,
					Detail: perr.Message,
					Row:    perr.Position.Line,
				},
			}
		}
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause:  synErrInvalidDocument,
				Detail: err.Error(),
			},
		}
	}

	var errs verr.SpecErrors
	for _, key := range md.Undecoded() {
		errs = append(errs, &verr.SpecError{
			Cause:  synErrUnknownKey,
			Detail: key.String(),
		})
	}

	if root.Name == "" {
		errs = append(errs, &verr.SpecError{
			Cause: synErrNoGrammarName,
		})
	}

	for i, t := range root.Terminals {
		t.Pos = Position{Table: "terminal", Index: i + 1}
		if t.Name == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrNoSymbolName,
				Detail: t.Pos.String(),
			})
		}
		if t.Pattern != "" && t.Literal != "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrPatternAndLiteral,
				Detail: t.Name,
			})
		}
	}
	for i, n := range root.NonTerminals {
		n.Pos = Position{Table: "nonterminal", Index: i + 1}
		if n.Name == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrNoSymbolName,
				Detail: n.Pos.String(),
			})
		}
	}
	for i, p := range root.Precedences {
		p.Pos = Position{Table: "precedence", Index: i + 1}
		if len(p.Symbols) == 0 {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrNoPrecSymbol,
				Detail: p.Pos.String(),
			})
		}
	}
	for i, r := range root.Rules {
		r.Pos = Position{Table: "rule", Index: i + 1}
		if r.LHS == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrNoProductionName,
				Detail: r.Pos.String(),
			})
		}
		for _, sym := range r.RHS {
			if sym == "" {
				errs = append(errs, &verr.SpecError{
					Cause:  synErrEmptySymbol,
					Detail: r.Pos.String(),
				})
				break
			}
		}
	}
	for i, l := range root.LexPrecs {
		l.Pos = Position{Table: "lex_prec", Index: i + 1}
		if l.Higher == "" || l.Lower == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrIncompleteLexPrec,
				Detail: l.Pos.String(),
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return root, nil
}

// IsCharLiteral reports whether a symbol name is a quoted single character like '+'.
func IsCharLiteral(name string) bool {
	r := []rune(name)
	return len(r) == 3 && r[0] == '\'' && r[2] == '\''
}

// CharOfLiteral returns the character a character literal stands for.
func CharOfLiteral(name string) string {
	return string([]rune(name)[1])
}
