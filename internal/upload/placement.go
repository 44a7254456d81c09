// Package upload implements the server-placement state machine
// (SPEC_FULL.md §4.6): rank discovered servers by free space and try them
// one at a time, falling back to the next on NO_WAY or timeout, until one
// accepts or the candidates are exhausted.
package upload

import "net"

// Candidate is one server discovered during the upload-discover window.
// Addr is where ADD is sent (the server's command socket, the same
// address its discover reply came from); the TCP data port arrives later
// in CAN_ADD's param.
type Candidate struct {
	Addr      *net.UDPAddr
	FreeSpace int64
}

// Placement tracks one file's placement attempt across a sequence of
// candidate servers.
type Placement struct {
	Path     string // as typed by the user, e.g. "dir/report.csv"
	Filename string // basename, what the wire protocol carries
	Size     int64

	// candidates is kept sorted ascending by FreeSpace; PopNext removes
	// and returns the tail (largest free space first).
	candidates []Candidate
}

// New builds a placement for one file over candidates, which the caller
// must have already sorted ascending by free space (SPEC_FULL.md §4.4
// sorts "by free space ascending" before placing each queued file).
func New(path, filename string, size int64, candidatesAscending []Candidate) *Placement {
	cs := make([]Candidate, len(candidatesAscending))
	copy(cs, candidatesAscending)
	return &Placement{Path: path, Filename: filename, Size: size, candidates: cs}
}

// PopNext removes and returns the candidate with the largest remaining
// free space. ok is false once every candidate has been tried.
func (p *Placement) PopNext() (Candidate, bool) {
	if len(p.candidates) == 0 {
		return Candidate{}, false
	}
	last := len(p.candidates) - 1
	c := p.candidates[last]
	p.candidates = p.candidates[:last]
	return c, true
}

// Remaining reports how many untried candidates are left.
func (p *Placement) Remaining() int {
	return len(p.candidates)
}
