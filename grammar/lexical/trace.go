package lexical

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pslrgen.lexical'.
func tracer() tracing.Trace {
	return tracing.Select("pslrgen.lexical")
}
