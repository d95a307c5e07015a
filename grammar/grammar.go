package grammar

import (
	"fmt"
	"strings"

	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/pslrgen/error"
	"github.com/nihei9/pslrgen/grammar/lexical"
	"github.com/nihei9/pslrgen/grammar/symbol"
	spec "github.com/nihei9/pslrgen/spec/grammar"
	"github.com/nihei9/pslrgen/spec/grammar/parser"
)

type assocType string

const (
	assocTypeNil        = assocType("")
	assocTypeLeft       = assocType("left")
	assocTypeRight      = assocType("right")
	assocTypeNonAssoc   = assocType("nonassoc")
	assocTypePrecedence = assocType("precedence")
)

func (a assocType) String() string {
	return string(a)
}

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols and productions.
// We use the priority of the production to resolve shift/reduce conflicts.
type precAndAssoc struct {
	// termPrec and termAssoc represent the precedence of the terminal symbols.
	termPrec  map[symbol.SymbolNum]int
	termAssoc map[symbol.SymbolNum]assocType

	// prodPrec and prodAssoc represent the precedence and the associativities of the production.
	// These values are inherited from the right-most terminal symbols in the RHS of the productions
	// unless the productions have a precedence symbol.
	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType

	// prodPrecSym is the symbol that gives a production its precedence.
	prodPrecSym map[productionNum]symbol.Symbol
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.SymbolNum) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.SymbolNum) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

func (pa *precAndAssoc) productionPredence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}

	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}

	return assoc
}

func (pa *precAndAssoc) productionPrecedenceSymbol(prod productionNum) symbol.Symbol {
	sym, ok := pa.prodPrecSym[prod]
	if !ok {
		return symbol.SymbolNil
	}
	return sym
}

type lexPrecPair struct {
	higher symbol.Symbol
	lower  symbol.Symbol
}

type Grammar struct {
	name                 string
	symbolTable          *symbol.SymbolTableReader
	productionSet        *productionSet
	augmentedStartSymbol symbol.Symbol
	startSymbol          symbol.Symbol
	errorSymbol          symbol.Symbol
	precAndAssoc         *precAndAssoc

	// actions holds the semantic actions. The generator carries them through untouched.
	actions map[productionNum]string

	// patterns holds the token patterns in declaration order. It is empty when no terminal symbol
	// has a pattern, and then the grammar has no scanner.
	patterns []*lexical.Pattern
	lexPrecs []*lexPrecPair

	expectSR *int
	expectRR *int
}

// Name returns the name of the grammar.
func (g *Grammar) Name() string {
	return g.name
}

type GrammarBuilder struct {
	AST *parser.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	root := b.AST
	if root.Name == "" {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoGrammarName,
		})
	}
	if len(root.Rules) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrNoProduction,
		})
	}

	b.checkSpellingInconsistenciesOfUserDefinedIDs(root)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	symTab, err := b.genSymbolTable(root)
	if err != nil {
		return nil, err
	}
	if symTab == nil {
		return nil, b.errs
	}
	symTabReader := symTab.Reader()

	prodsAndActs, err := b.genProductionsAndActions(root, symTabReader)
	if err != nil {
		return nil, err
	}
	if prodsAndActs == nil {
		return nil, b.errs
	}

	pa := b.genPrecAndAssoc(root, symTabReader, prodsAndActs)
	if pa == nil {
		return nil, b.errs
	}

	b.checkUnusedSymbols(root, symTabReader, prodsAndActs)

	patterns := b.genPatterns(root, symTabReader)
	lexPrecs := b.genLexPrecs(root, symTabReader, patterns)

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	return &Grammar{
		name:                 root.Name,
		symbolTable:          symTabReader,
		productionSet:        prodsAndActs.prods,
		augmentedStartSymbol: prodsAndActs.augStartSym,
		startSymbol:          prodsAndActs.startSym,
		errorSymbol:          symbol.SymbolError,
		precAndAssoc:         pa,
		actions:              prodsAndActs.actions,
		patterns:             patterns,
		lexPrecs:             lexPrecs,
		expectSR:             root.Expect,
		expectRR:             root.ExpectRR,
	}, nil
}

func isReservedName(name string) bool {
	switch name {
	case symbol.SymbolNameEOF, symbol.SymbolNameStart, symbol.SymbolNameUndefined, symbol.SymbolNameError:
		return true
	}
	return false
}

func (b *GrammarBuilder) checkSpellingInconsistenciesOfUserDefinedIDs(root *parser.RootNode) {
	var ids []string
	{
		for _, t := range root.Terminals {
			if parser.IsCharLiteral(t.Name) || isReservedName(t.Name) {
				continue
			}
			ids = append(ids, t.Name)
		}
		for _, r := range root.Rules {
			if isReservedName(r.LHS) {
				continue
			}
			ids = append(ids, r.LHS)
		}
	}

	duplicated := mlspec.FindSpellingInconsistencies(ids)
	if len(duplicated) == 0 {
		return
	}

	for _, dup := range duplicated {
		var s string
		{
			var b strings.Builder
			fmt.Fprintf(&b, "%+v", dup[0])
			for _, id := range dup[1:] {
				fmt.Fprintf(&b, ", %+v", id)
			}
			s = b.String()
		}

		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrSpellingInconsistency,
			Detail: s,
		})
	}
}

func detailWithPos(detail string, pos parser.Position) string {
	if pos.Table == "" {
		return detail
	}
	if detail == "" {
		return pos.String()
	}
	return fmt.Sprintf("%v (%v)", detail, pos)
}

// genSymbolTable registers the terminal symbols in the order of the terminal declarations, then
// character literals and precedence-only names in the order they appear in the precedence groups
// and the rules. Non-terminal symbols are registered in the order their first rules appear.
func (b *GrammarBuilder) genSymbolTable(root *parser.RootNode) (*symbol.SymbolTable, error) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	r := symTab.Reader()

	errOccurred := false
	for _, t := range root.Terminals {
		if isReservedName(t.Name) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedSym,
				Detail: detailWithPos(t.Name, t.Pos),
			})
			errOccurred = true
			continue
		}
		if _, exist := r.ToSymbol(t.Name); exist {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateTerminal,
				Detail: detailWithPos(t.Name, t.Pos),
			})
			errOccurred = true
			continue
		}
		sym, err := w.RegisterTerminalSymbol(t.Name)
		if err != nil {
			return nil, err
		}
		w.SetAlias(sym, t.Alias)
		w.SetTag(sym, t.Tag)
	}

	lhsNames := map[string]struct{}{}
	for _, rule := range root.Rules {
		lhsNames[rule.LHS] = struct{}{}
	}

	registerImplicitTerminal := func(name string) error {
		if _, exist := r.ToSymbol(name); exist {
			return nil
		}
		if _, isLHS := lhsNames[name]; isLHS {
			return nil
		}
		_, err := w.RegisterTerminalSymbol(name)
		return err
	}
	for _, p := range root.Precedences {
		for _, name := range p.Symbols {
			if isReservedName(name) {
				continue
			}
			err := registerImplicitTerminal(name)
			if err != nil {
				return nil, err
			}
		}
	}
	for _, rule := range root.Rules {
		for _, name := range rule.RHS {
			if !parser.IsCharLiteral(name) {
				continue
			}
			err := registerImplicitTerminal(name)
			if err != nil {
				return nil, err
			}
		}
		if rule.Prec != "" && parser.IsCharLiteral(rule.Prec) {
			err := registerImplicitTerminal(rule.Prec)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, rule := range root.Rules {
		if isReservedName(rule.LHS) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedSym,
				Detail: detailWithPos(rule.LHS, rule.Pos),
			})
			errOccurred = true
			continue
		}
		if parser.IsCharLiteral(rule.LHS) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: detailWithPos(rule.LHS, rule.Pos),
			})
			errOccurred = true
			continue
		}
		if sym, exist := r.ToSymbol(rule.LHS); exist {
			if sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrDuplicateName,
					Detail: detailWithPos(rule.LHS, rule.Pos),
				})
				errOccurred = true
			}
			continue
		}
		_, err := w.RegisterNonTerminalSymbol(rule.LHS)
		if err != nil {
			return nil, err
		}
	}

	for _, n := range root.NonTerminals {
		sym, ok := r.ToSymbol(n.Name)
		if !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUndefinedSym,
				Detail: detailWithPos(n.Name, n.Pos),
			})
			errOccurred = true
			continue
		}
		if !sym.IsNonTerminal() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: detailWithPos(n.Name, n.Pos),
			})
			errOccurred = true
			continue
		}
		w.SetTag(sym, n.Tag)
	}

	if errOccurred {
		return nil, nil
	}

	return symTab, nil
}

type productionsAndActions struct {
	prods       *productionSet
	augStartSym symbol.Symbol
	startSym    symbol.Symbol
	actions     map[productionNum]string
	precSyms    map[productionNum]symbol.Symbol
	precPoss    map[productionNum]parser.Position
	rules       map[productionNum]*parser.RuleNode
}

func (b *GrammarBuilder) genProductionsAndActions(root *parser.RootNode, symTab *symbol.SymbolTableReader) (*productionsAndActions, error) {
	startName := root.Start
	if startName == "" {
		startName = root.Rules[0].LHS
	}
	startSym, ok := symTab.ToSymbol(startName)
	if !ok || !startSym.IsNonTerminal() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUndefinedSym,
			Detail: fmt.Sprintf("start symbol %v", startName),
		})
		return nil, nil
	}

	prods := newProductionSet()
	{
		p, err := newProduction(symbol.SymbolStart, []symbol.Symbol{startSym, symbol.SymbolEOF})
		if err != nil {
			return nil, err
		}
		prods.append(p)
	}

	actions := map[productionNum]string{}
	precSyms := map[productionNum]symbol.Symbol{}
	precPoss := map[productionNum]parser.Position{}
	rules := map[productionNum]*parser.RuleNode{}
	errOccurred := false
	for _, rule := range root.Rules {
		lhsSym, _ := symTab.ToSymbol(rule.LHS)

		rhsSyms := make([]symbol.Symbol, 0, len(rule.RHS))
		undefined := false
		for _, name := range rule.RHS {
			if name == symbol.SymbolNameEOF || name == symbol.SymbolNameStart || name == symbol.SymbolNameUndefined {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrReservedSym,
					Detail: detailWithPos(name, rule.Pos),
				})
				undefined = true
				continue
			}
			sym, ok := symTab.ToSymbol(name)
			if !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Detail: detailWithPos(name, rule.Pos),
				})
				undefined = true
				continue
			}
			rhsSyms = append(rhsSyms, sym)
		}
		if undefined {
			errOccurred = true
			continue
		}

		p, err := newProduction(lhsSym, rhsSyms)
		if err != nil {
			return nil, err
		}
		if !prods.append(p) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateProduction,
				Detail: detailWithPos(rule.LHS, rule.Pos),
			})
			errOccurred = true
			continue
		}
		rules[p.num] = rule

		if rule.Action != "" {
			actions[p.num] = rule.Action
		}
		if rule.Prec != "" {
			sym, ok := symTab.ToSymbol(rule.Prec)
			if !ok || !sym.IsTerminal() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedPrec,
					Detail: detailWithPos(rule.Prec, rule.Pos),
				})
				errOccurred = true
				continue
			}
			precSyms[p.num] = sym
			precPoss[p.num] = rule.Pos
		}
	}
	if errOccurred {
		return nil, nil
	}

	return &productionsAndActions{
		prods:       prods,
		augStartSym: symbol.SymbolStart,
		startSym:    startSym,
		actions:     actions,
		precSyms:    precSyms,
		precPoss:    precPoss,
		rules:       rules,
	}, nil
}

// genPrecAndAssoc assigns precedence levels to the precedence groups in order. A later group binds
// tighter.
func (b *GrammarBuilder) genPrecAndAssoc(root *parser.RootNode, symTab *symbol.SymbolTableReader, prodsAndActs *productionsAndActions) *precAndAssoc {
	termPrec := map[symbol.SymbolNum]int{}
	termAssoc := map[symbol.SymbolNum]assocType{}
	errOccurred := false
	{
		precN := precMin
		for _, group := range root.Precedences {
			var assocTy assocType
			switch group.Assoc {
			case "left":
				assocTy = assocTypeLeft
			case "right":
				assocTy = assocTypeRight
			case "nonassoc":
				assocTy = assocTypeNonAssoc
			case "precedence":
				assocTy = assocTypePrecedence
			default:
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrInvalidAssoc,
					Detail: detailWithPos(group.Assoc, group.Pos),
				})
				errOccurred = true
				continue
			}

			for _, name := range group.Symbols {
				sym, ok := symTab.ToSymbol(name)
				if !ok {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrUndefinedSym,
						Detail: detailWithPos(name, group.Pos),
					})
					errOccurred = true
					continue
				}
				if isReservedName(name) {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrReservedSym,
						Detail: detailWithPos(name, group.Pos),
					})
					errOccurred = true
					continue
				}
				if !sym.IsTerminal() {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrNonTerminalPrec,
						Detail: detailWithPos(name, group.Pos),
					})
					errOccurred = true
					continue
				}
				if _, alreadySet := termPrec[sym.Num()]; alreadySet {
					b.errs = append(b.errs, &verr.SpecError{
						Cause:  semErrDuplicateAssoc,
						Detail: detailWithPos(name, group.Pos),
					})
					errOccurred = true
					continue
				}

				termPrec[sym.Num()] = precN
				termAssoc[sym.Num()] = assocTy
			}

			precN++
		}
	}
	if errOccurred {
		return nil
	}

	prodPrec := map[productionNum]int{}
	prodAssoc := map[productionNum]assocType{}
	prodPrecSym := map[productionNum]symbol.Symbol{}
	for _, prod := range prodsAndActs.prods.getAllProductions() {
		if prod.lhs.IsStart() {
			continue
		}

		if term, ok := prodsAndActs.precSyms[prod.num]; ok {
			prec, ok := termPrec[term.Num()]
			if !ok {
				text, _ := symTab.ToText(term)
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedPrec,
					Detail: detailWithPos(text, prodsAndActs.precPoss[prod.num]),
				})
				errOccurred = true
				continue
			}
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = termAssoc[term.Num()]
			prodPrecSym[prod.num] = term
			continue
		}

		// A production inherits precedence and associativity from the right-most terminal symbol.
		mostrightTerm := prod.rightmostTerminal()
		if mostrightTerm.IsNil() {
			continue
		}
		prodPrecSym[prod.num] = mostrightTerm
		if prec, ok := termPrec[mostrightTerm.Num()]; ok {
			prodPrec[prod.num] = prec
			prodAssoc[prod.num] = termAssoc[mostrightTerm.Num()]
		}
	}
	if errOccurred {
		return nil
	}

	return &precAndAssoc{
		termPrec:    termPrec,
		termAssoc:   termAssoc,
		prodPrec:    prodPrec,
		prodAssoc:   prodAssoc,
		prodPrecSym: prodPrecSym,
	}
}

// checkUnusedSymbols reports the non-terminal symbols unreachable from the start symbol and the
// declared terminal symbols that no reachable production uses. Terminal symbols that appear only in
// precedence groups are exempt because they exist only to be named by precedence symbols.
func (b *GrammarBuilder) checkUnusedSymbols(root *parser.RootNode, symTab *symbol.SymbolTableReader, prodsAndActs *productionsAndActions) {
	used := map[symbol.Symbol]struct{}{
		prodsAndActs.startSym: {},
	}
	queue := []symbol.Symbol{prodsAndActs.startSym}
	for len(queue) > 0 {
		lhs := queue[0]
		queue = queue[1:]
		ps, _ := prodsAndActs.prods.findByLHS(lhs)
		for _, p := range ps {
			for _, sym := range p.rhs {
				if _, ok := used[sym]; ok {
					continue
				}
				used[sym] = struct{}{}
				if sym.IsNonTerminal() {
					queue = append(queue, sym)
				}
			}
		}
	}

	reported := map[symbol.Symbol]struct{}{}
	for _, rule := range root.Rules {
		sym, _ := symTab.ToSymbol(rule.LHS)
		if _, ok := used[sym]; ok {
			continue
		}
		if _, ok := reported[sym]; ok {
			continue
		}
		reported[sym] = struct{}{}
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnusedProduction,
			Detail: detailWithPos(rule.LHS, rule.Pos),
		})
	}

	for _, t := range root.Terminals {
		sym, ok := symTab.ToSymbol(t.Name)
		if !ok {
			continue
		}
		if _, ok := used[sym]; ok {
			continue
		}
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrUnusedTerminal,
			Detail: detailWithPos(t.Name, t.Pos),
		})
	}
}

// genPatterns returns the token patterns in declaration order. Character literals get the
// escaped character as their pattern once any terminal symbol has a pattern.
func (b *GrammarBuilder) genPatterns(root *parser.RootNode, symTab *symbol.SymbolTableReader) []*lexical.Pattern {
	enabled := false
	for _, t := range root.Terminals {
		if t.Pattern != "" || t.Literal != "" {
			enabled = true
			break
		}
	}
	if !enabled {
		return nil
	}

	declared := map[string]*parser.TerminalNode{}
	for _, t := range root.Terminals {
		declared[t.Name] = t
	}

	var patterns []*lexical.Pattern
	for _, sym := range symTab.TerminalSymbols() {
		name, _ := symTab.ToText(sym)
		var src string
		if t, ok := declared[name]; ok {
			switch {
			case t.Pattern != "":
				src = t.Pattern
			case t.Literal != "":
				src = spec.EscapePattern(t.Literal)
			case parser.IsCharLiteral(name):
				src = spec.EscapePattern(parser.CharOfLiteral(name))
			}
		} else if parser.IsCharLiteral(name) {
			src = spec.EscapePattern(parser.CharOfLiteral(name))
		}
		if src == "" {
			continue
		}

		err := lexical.ValidatePattern(src)
		if err != nil {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrInvalidPattern,
				Detail: fmt.Sprintf("%v: %v", name, err),
			})
			continue
		}

		patterns = append(patterns, &lexical.Pattern{
			Token:  sym.Num().Int(),
			Name:   name,
			Source: src,
		})
	}

	return patterns
}

func (b *GrammarBuilder) genLexPrecs(root *parser.RootNode, symTab *symbol.SymbolTableReader, patterns []*lexical.Pattern) []*lexPrecPair {
	hasPattern := map[int]struct{}{}
	for _, p := range patterns {
		hasPattern[p.Token] = struct{}{}
	}

	var pairs []*lexPrecPair
	for _, l := range root.LexPrecs {
		var syms [2]symbol.Symbol
		ok := true
		for i, name := range []string{l.Higher, l.Lower} {
			sym, found := symTab.ToSymbol(name)
			if found && sym.IsTerminal() {
				if _, has := hasPattern[sym.Num().Int()]; has {
					syms[i] = sym
					continue
				}
			}
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrLexPrecNonTerminal,
				Detail: detailWithPos(name, l.Pos),
			})
			ok = false
		}
		if !ok {
			continue
		}
		pairs = append(pairs, &lexPrecPair{
			higher: syms[0],
			lower:  syms[1],
		})
	}
	return pairs
}
