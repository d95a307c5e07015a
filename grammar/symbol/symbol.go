package symbol

import (
	"fmt"
	"sort"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (t symbolKind) String() string {
	return string(t)
}

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol packs a kind bit and a number. Terminal symbols have the kind bit cleared, so every
// terminal symbol sorts before every non-terminal symbol.
type Symbol uint16

func (s Symbol) String() string {
	kind, num := s.describe()
	var prefix string
	switch {
	case s.IsNil():
		prefix = "?"
	case s.IsStart():
		prefix = "s"
	case s.IsEOF():
		prefix = "e"
	case kind == symbolKindNonTerminal:
		prefix = "n"
	default:
		prefix = "t"
	}
	return fmt.Sprintf("%v%v", prefix, num)
}

const (
	maskKindPart    = uint16(0x8000) // 1000 0000 0000 0000
	maskTerminal    = uint16(0x0000) // 0000 0000 0000 0000
	maskNonTerminal = uint16(0x8000) // 1000 0000 0000 0000

	maskNumberPart = uint16(0x7fff) // 0111 1111 1111 1111

	SymbolNil = Symbol(0) // 0000 0000 0000 0000

	// Reserved symbols. They are numbered before any user-defined symbol.
	SymbolEOF       = Symbol(maskTerminal | 0x0001)    // 0000 0000 0000 0001
	SymbolError     = Symbol(maskTerminal | 0x0002)    // 0000 0000 0000 0010
	SymbolUndefined = Symbol(maskTerminal | 0x0003)    // 0000 0000 0000 0011
	SymbolStart     = Symbol(maskNonTerminal | 0x0001) // 1000 0000 0000 0001

	SymbolNameEOF       = "$end"
	SymbolNameError     = "error"
	SymbolNameUndefined = "$undefined"
	SymbolNameStart     = "$accept"

	terminalNumMin    = SymbolNum(4) // 1-3 are used by the reserved terminals.
	nonTerminalNumMin = SymbolNum(2) // 1 is used by the augmented start symbol.
	symbolNumMax      = SymbolNum(maskNumberPart)
)

func newSymbol(kind symbolKind, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}

	kindMask := maskTerminal
	if kind == symbolKindNonTerminal {
		kindMask = maskNonTerminal
	}
	return Symbol(kindMask | uint16(num)), nil
}

func (s Symbol) Num() SymbolNum {
	_, num := s.describe()
	return num
}

func (s Symbol) Byte() []byte {
	if s.IsNil() {
		return []byte{0, 0}
	}
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s Symbol) IsNil() bool {
	_, num := s.describe()
	return num == 0
}

func (s Symbol) IsStart() bool {
	return s == SymbolStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

func (s Symbol) IsNonTerminal() bool {
	if s.IsNil() {
		return false
	}
	kind, _ := s.describe()
	return kind == symbolKindNonTerminal
}

func (s Symbol) IsTerminal() bool {
	if s.IsNil() {
		return false
	}
	return !s.IsNonTerminal()
}

func (s Symbol) describe() (symbolKind, SymbolNum) {
	kind := symbolKindTerminal
	if uint16(s)&maskKindPart > 0 {
		kind = symbolKindNonTerminal
	}
	return kind, SymbolNum(uint16(s) & maskNumberPart)
}

type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	aliases      map[Symbol]string
	tags         map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

// NewSymbolTable returns a symbol table that already contains the reserved symbols.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameEOF:       SymbolEOF,
			SymbolNameError:     SymbolError,
			SymbolNameUndefined: SymbolUndefined,
			SymbolNameStart:     SymbolStart,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF:       SymbolNameEOF,
			SymbolError:     SymbolNameError,
			SymbolUndefined: SymbolNameUndefined,
			SymbolStart:     SymbolNameStart,
		},
		aliases: map[Symbol]string{},
		tags:    map[Symbol]string{},
		termTexts: []string{
			"", // Nil
			SymbolNameEOF,
			SymbolNameError,
			SymbolNameUndefined,
		},
		nonTermTexts: []string{
			"", // Nil
			SymbolNameStart,
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return SymbolNil, fmt.Errorf("'%v' is already registered as a terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindNonTerminal, w.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	w.nonTermNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.nonTermTexts = append(w.nonTermTexts, text)
	return sym, nil
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return SymbolNil, fmt.Errorf("'%v' is already registered as a non-terminal symbol", text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindTerminal, w.termNum)
	if err != nil {
		return SymbolNil, err
	}
	w.termNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.termTexts = append(w.termTexts, text)
	return sym, nil
}

func (w *SymbolTableWriter) SetAlias(sym Symbol, alias string) {
	if alias == "" {
		delete(w.aliases, sym)
		return
	}
	w.aliases[sym] = alias
}

func (w *SymbolTableWriter) SetTag(sym Symbol, tag string) {
	if tag == "" {
		delete(w.tags, sym)
		return
	}
	w.tags[sym] = tag
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := r.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	text, ok := r.sym2Text[sym]
	return text, ok
}

func (r *SymbolTableReader) Alias(sym Symbol) string {
	return r.aliases[sym]
}

func (r *SymbolTableReader) Tag(sym Symbol) string {
	return r.tags[sym]
}

// DisplayName returns the alias of a symbol when it has one, and its name otherwise.
func (r *SymbolTableReader) DisplayName(sym Symbol) string {
	if alias, ok := r.aliases[sym]; ok {
		return alias
	}
	if text, ok := r.sym2Text[sym]; ok {
		return text
	}
	return sym.String()
}

func (r *SymbolTableReader) TerminalCount() int {
	return r.termNum.Int() - 1
}

func (r *SymbolTableReader) NonTerminalCount() int {
	return r.nonTermNum.Int() - 1
}

// ID returns a dense number of a symbol. The terminal symbols occupy 0 to TerminalCount()-1 and
// the non-terminal symbols follow them.
func (r *SymbolTableReader) ID(sym Symbol) int {
	if sym.IsNil() {
		return -1
	}
	if sym.IsTerminal() {
		return sym.Num().Int() - 1
	}
	return r.TerminalCount() + sym.Num().Int() - 1
}

func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.TerminalCount())
	for sym := range r.sym2Text {
		if !sym.IsTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// TerminalTexts returns the names of the terminal symbols indexed by symbol number. The index 0 is
// an empty string because no terminal symbol has the number 0.
func (r *SymbolTableReader) TerminalTexts() []string {
	return r.termTexts
}

func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.NonTerminalCount())
	for sym := range r.sym2Text {
		if !sym.IsNonTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

func (r *SymbolTableReader) NonTerminalTexts() ([]string, error) {
	if r.nonTermNum == nonTerminalNumMin {
		return nil, fmt.Errorf("symbol table has no non-terminals")
	}
	return r.nonTermTexts, nil
}
