package logging

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// Logf adapts log to the printf-style hook taken by the RPC client. The
// client reports protocol problems there, so they are logged at debug.
func Logf(log logr.Logger) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		log.V(DebugLevel).Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	}
}
