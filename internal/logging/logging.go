// Package logging builds the process-wide logr.Logger.
package logging

import (
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logger writing to w. With debug set, V(1) messages are
// emitted as well.
func New(w io.Writer, name string, debug bool) logr.Logger {
	verbosity := 0
	if debug {
		verbosity = 1
	}
	stdr.SetVerbosity(verbosity)
	return stdr.NewWithOptions(log.New(w, "", log.LstdFlags), stdr.Options{LogCaller: stdr.None}).WithName(name)
}
