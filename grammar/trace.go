package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pslrgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("pslrgen.grammar")
}
