//go:build debug

package transport

import (
	"os"
	"os/exec"

	"github.com/go-logr/logr"
)

// Debug builds let the engine write straight to our stderr.
func stderrSink(cmd *exec.Cmd, _ logr.Logger) (func() <-chan struct{}, error) {
	cmd.Stderr = os.Stderr
	return func() <-chan struct{} {
		done := make(chan struct{})
		close(done)
		return done
	}, nil
}
