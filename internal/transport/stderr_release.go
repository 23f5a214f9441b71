//go:build !debug

package transport

import (
	"bufio"
	"os/exec"

	"github.com/go-logr/logr"
)

// stderrSink pipes the engine's stderr into the logger line by line. The
// returned function is called after Start; its channel closes once the
// engine closes stderr.
func stderrSink(cmd *exec.Cmd, log logr.Logger) (func() <-chan struct{}, error) {
	pipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	return func() <-chan struct{} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			scanner := bufio.NewScanner(pipe)
			for scanner.Scan() {
				log.Info("engine stderr", "line", scanner.Text())
			}
		}()
		return done
	}, nil
}
