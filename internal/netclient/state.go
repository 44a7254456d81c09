package netclient

import (
	"net"
	"os"
	"time"

	"github.com/netstore-go/netstore/internal/upload"
)

// discoverPurpose distinguishes a user-typed "discover" (print results)
// from the background discover a queued "upload" triggers (place files
// once the window closes).
type discoverPurpose int

const (
	discoverInteractive discoverPurpose = iota
	discoverForUpload
)

type discoverReply struct {
	addr      *net.UDPAddr
	mcastAddr string
	freeSpace int64
}

type discoverWindow struct {
	purpose  discoverPurpose
	deadline time.Time
	replies  []discoverReply
}

type searchMatch struct {
	addr *net.UDPAddr
	name string
}

type searchWindow struct {
	substr   string
	deadline time.Time
	matches  []searchMatch
}

// fetchState tracks one "fetch <name>" from the GET request until either
// the matching CONNECT_ME arrives or the window times out.
type fetchState struct {
	name     string
	addr     *net.UDPAddr // server that will send CONNECT_ME
	deadline time.Time
	file     *os.File
	destPath string
}

// uploadAttempt tracks one in-flight ADD against a single candidate
// server; placement advances to the next candidate (fresh seq, fresh
// uploadAttempt) on NO_WAY or timeout.
type uploadAttempt struct {
	placement *upload.Placement
	candidate upload.Candidate
	deadline  time.Time
}
