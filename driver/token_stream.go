package driver

import (
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf8"

	mldriver "github.com/nihei9/maleeni/driver"
	spec "github.com/nihei9/pslrgen/spec/grammar"
)

type VToken interface {
	// TerminalID returns a terminal ID. An invalid token has the ID 0.
	TerminalID() int

	// Lexeme returns a lexeme.
	Lexeme() []byte

	// EOF returns true when a token represents EOF.
	EOF() bool

	// Invalid returns true when a token is invalid.
	Invalid() bool

	// Position returns (row, column) pair.
	Position() (int, int)
}

type TokenStream interface {
	// Next returns the next token. state is the state on the top of the parser's stack. A
	// context-aware stream selects the token the state can accept.
	Next(state int) (VToken, error)
}

type TokenStreamOption func(s *tokenStreamConfig)

type tokenStreamConfig struct {
	skipSpaces bool
}

// SkipSpaces makes a token stream drop white spaces between tokens.
func SkipSpaces() TokenStreamOption {
	return func(s *tokenStreamConfig) {
		s.skipSpaces = true
	}
}

type token struct {
	terminalID int
	lexeme     []byte
	eof        bool
	invalid    bool
	row        int
	col        int
}

func (t *token) TerminalID() int {
	return t.terminalID
}

func (t *token) Lexeme() []byte {
	return t.lexeme
}

func (t *token) EOF() bool {
	return t.eof
}

func (t *token) Invalid() bool {
	return t.invalid
}

func (t *token) Position() (int, int) {
	return t.row, t.col
}

type terminalTokenStream struct {
	terms []int
	names []string
	pos   int
	eof   int
}

// NewTerminalTokenStream returns a token stream that yields the terminals of names in order. A name
// is either a terminal name or an alias.
func NewTerminalTokenStream(g *spec.CompiledGrammar, names []string) (TokenStream, error) {
	name2Term := map[string]int{}
	for term, name := range g.Syntactic.Terminals {
		if name == "" {
			continue
		}
		name2Term[name] = term
	}
	for term, alias := range g.Syntactic.TerminalAliases {
		if alias == "" {
			continue
		}
		if _, ok := name2Term[alias]; !ok {
			name2Term[alias] = term
		}
	}

	terms := make([]int, len(names))
	for i, name := range names {
		term, ok := name2Term[name]
		if !ok {
			return nil, fmt.Errorf("unknown terminal: %v", name)
		}
		terms[i] = term
	}

	return &terminalTokenStream{
		terms: terms,
		names: names,
		eof:   g.Syntactic.EOFSymbol,
	}, nil
}

func (s *terminalTokenStream) Next(state int) (VToken, error) {
	if s.pos >= len(s.terms) {
		return &token{
			terminalID: s.eof,
			eof:        true,
			col:        s.pos,
		}, nil
	}
	tok := &token{
		terminalID: s.terms[s.pos],
		lexeme:     []byte(s.names[s.pos]),
		col:        s.pos,
	}
	s.pos++
	return tok, nil
}

type pslrTokenStream struct {
	scanner *spec.ScannerSpec
	eof     int
	src     []byte
	pos     int
	row     int
	col     int
	config  *tokenStreamConfig
}

// NewPSLRTokenStream returns a context-aware token stream. It runs the scanner FSA as far as the
// input allows, and then takes the longest prefix whose token the scanner context of the current
// parser state selects.
func NewPSLRTokenStream(g *spec.CompiledGrammar, src io.Reader, opts ...TokenStreamOption) (TokenStream, error) {
	if g.Scanner == nil {
		return nil, fmt.Errorf("the grammar %v has no scanner", g.Name)
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	config := &tokenStreamConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return &pslrTokenStream{
		scanner: g.Scanner,
		eof:     g.Syntactic.EOFSymbol,
		src:     b,
		config:  config,
	}, nil
}

func (s *pslrTokenStream) Next(state int) (VToken, error) {
	if s.config.skipSpaces {
		for s.pos < len(s.src) {
			r, size := utf8.DecodeRune(s.src[s.pos:])
			if !unicode.IsSpace(r) {
				break
			}
			s.advance(r, size)
		}
	}

	if s.pos >= len(s.src) {
		return &token{
			terminalID: s.eof,
			eof:        true,
			row:        s.row,
			col:        s.col,
		}, nil
	}

	if state < 0 || state >= len(s.scanner.StateToContext) {
		return nil, fmt.Errorf("invalid parser state: %v", state)
	}
	ctx := s.scanner.Contexts[s.scanner.StateToContext[state]]

	// visited[i] is the FSA state after reading ends[i] bytes.
	var visited []int
	var ends []int
	{
		f := s.scanner.InitialState
		p := s.pos
		for p < len(s.src) {
			r, size := utf8.DecodeRune(s.src[p:])
			next, ok := s.step(f, r)
			if !ok {
				break
			}
			f = next
			p += size
			visited = append(visited, f)
			ends = append(ends, p)
		}
	}

	term, end := s.selectToken(ctx, visited, ends)
	if term == 0 {
		r, size := utf8.DecodeRune(s.src[s.pos:])
		tok := &token{
			lexeme:  s.src[s.pos : s.pos+size],
			invalid: true,
			row:     s.row,
			col:     s.col,
		}
		s.advance(r, size)
		return tok, nil
	}

	tok := &token{
		terminalID: term,
		lexeme:     s.src[s.pos:end],
		row:        s.row,
		col:        s.col,
	}
	for s.pos < end {
		r, size := utf8.DecodeRune(s.src[s.pos:])
		s.advance(r, size)
	}
	tracer().Debugf("state %v: token %v %#v", state, term, string(tok.lexeme))
	return tok, nil
}

// selectToken finds the longest visited FSA state the context selects a token at. The token may be
// accepted before that state, so the lexeme ends at the last position accepting the token.
func (s *pslrTokenStream) selectToken(ctx []int, visited []int, ends []int) (int, int) {
	for i := len(visited) - 1; i >= 0; i-- {
		term := ctx[visited[i]]
		if term == 0 {
			continue
		}
		for j := i; j >= 0; j-- {
			for _, a := range s.scanner.States[visited[j]].Accepts {
				if a == term {
					return term, ends[j]
				}
			}
		}
	}
	return 0, 0
}

func (s *pslrTokenStream) step(state int, r rune) (int, bool) {
	trans := s.scanner.States[state].Transitions
	i := sort.Search(len(trans), func(i int) bool {
		return trans[i].To >= int(r)
	})
	if i < len(trans) && trans[i].From <= int(r) {
		return trans[i].Next, true
	}
	return 0, false
}

func (s *pslrTokenStream) advance(r rune, size int) {
	s.pos += size
	if r == '\n' {
		s.row++
		s.col = 0
		return
	}
	s.col++
}

type longestMatchTokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	eof            int
	config         *tokenStreamConfig
}

// NewLongestMatchTokenStream returns a token stream driven by a classic longest-match lexer. The
// stream ignores parser states.
func NewLongestMatchTokenStream(g *spec.CompiledGrammar, src io.Reader, opts ...TokenStreamOption) (TokenStream, error) {
	if g.Scanner == nil || g.Scanner.LongestMatch == nil {
		return nil, fmt.Errorf("the grammar %v has no longest-match lexer", g.Name)
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Scanner.LongestMatch.Spec), src)
	if err != nil {
		return nil, err
	}
	config := &tokenStreamConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return &longestMatchTokenStream{
		lex:            lex,
		kindToTerminal: g.Scanner.LongestMatch.KindToTerminal,
		eof:            g.Syntactic.EOFSymbol,
		config:         config,
	}, nil
}

func (s *longestMatchTokenStream) Next(state int) (VToken, error) {
	for {
		tok, err := s.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &token{
				terminalID: s.eof,
				eof:        true,
				row:        tok.Row,
				col:        tok.Col,
			}, nil
		}
		if tok.Invalid && s.config.skipSpaces && isSpaces(tok.Lexeme) {
			continue
		}
		term := 0
		if !tok.Invalid {
			term = s.kindToTerminal[tok.KindID]
		}
		return &token{
			terminalID: term,
			lexeme:     tok.Lexeme,
			invalid:    tok.Invalid,
			row:        tok.Row,
			col:        tok.Col,
		}, nil
	}
}

func isSpaces(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return len(b) > 0
}
