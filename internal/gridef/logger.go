package gridef

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger sets the logger used while loading the embedded dataset and
// building tables. Call it before the first Default().
func SetLogger(l zerolog.Logger) {
	l = l.With().Str("component", "gridef").Logger()
	logger.Store(&l)
}

func log() *zerolog.Logger {
	return logger.Load()
}
