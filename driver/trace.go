package driver

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pslrgen.driver'.
func tracer() tracing.Trace {
	return tracing.Select("pslrgen.driver")
}
