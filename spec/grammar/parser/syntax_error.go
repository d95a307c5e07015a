package parser

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	synErrInvalidDocument   = newSyntaxError("invalid TOML document")
	synErrUnknownKey        = newSyntaxError("unknown key")
	synErrNoGrammarName     = newSyntaxError("a grammar needs a name")
	synErrNoSymbolName      = newSyntaxError("a symbol declaration needs a name")
	synErrPatternAndLiteral = newSyntaxError("a terminal cannot have both a pattern and a literal")
	synErrNoPrecSymbol      = newSyntaxError("a precedence group needs at least one symbol")
	synErrNoProductionName  = newSyntaxError("a production name is missing")
	synErrEmptySymbol       = newSyntaxError("a symbol in an alternative must be non-empty")
	synErrIncompleteLexPrec = newSyntaxError("a lexical precedence needs both a higher and a lower terminal")
)
