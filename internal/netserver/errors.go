package netserver

import "errors"

// errInterrupted signals that Run returned because of SIGINT rather than
// a clean shutdown; cmd/netstore-server maps it to exit status 130.
var errInterrupted = errors.New("interrupted")

// Interrupted reports whether err is (or wraps) the SIGINT shutdown
// signal returned by Run.
func Interrupted(err error) bool {
	return errors.Is(err, errInterrupted)
}
