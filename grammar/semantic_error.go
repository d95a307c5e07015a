package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoGrammarName         = newSemanticError("name is missing")
	semErrSpellingInconsistency = newSemanticError("the identifiers are treated as the same. please use the same spelling")
	semErrNoProduction          = newSemanticError("a grammar needs at least one production")
	semErrUnusedProduction      = newSemanticError("unused production")
	semErrUnusedTerminal        = newSemanticError("unused terminal")
	semErrUndefinedSym          = newSemanticError("undefined symbol")
	semErrReservedSym           = newSemanticError("a reserved symbol cannot be defined or used here")
	semErrDuplicateProduction   = newSemanticError("duplicate production")
	semErrDuplicateTerminal     = newSemanticError("duplicate terminal")
	semErrDuplicateNonTerminal  = newSemanticError("duplicate non-terminal")
	semErrDuplicateName         = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrInvalidAssoc          = newSemanticError("invalid associativity")
	semErrDuplicateAssoc        = newSemanticError("associativity and precedence cannot be specified multiple times for a symbol")
	semErrNonTerminalPrec       = newSemanticError("precedence can be specified only for terminal symbols")
	semErrUndefinedPrec         = newSemanticError("symbol must has precedence")
	semErrLexPrecNonTerminal    = newSemanticError("lexical precedence can be specified only for terminal symbols with a pattern")
	semErrInvalidPattern        = newSemanticError("invalid pattern")
)
