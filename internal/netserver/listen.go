package netserver

import "net"

// listenEphemeral opens a TCP listener on an OS-chosen port, as used for
// every GET/ADD invitation.
func listenEphemeral() (*net.TCPListener, int, error) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{Port: 0})
	if err != nil {
		return nil, 0, err
	}
	return ln, ln.Addr().(*net.TCPAddr).Port, nil
}
