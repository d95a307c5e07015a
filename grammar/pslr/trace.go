package pslr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pslrgen.pslr'.
func tracer() tracing.Trace {
	return tracing.Select("pslrgen.pslr")
}
