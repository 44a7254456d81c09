package netclient

import (
	"net"
	"os"

	"github.com/netstore-go/netstore/internal/transfer"
)

// transferKind distinguishes which stdout line handleTransferDone prints.
type transferKind int

const (
	transferFetch transferKind = iota
	transferUpload
)

// transferOutcome is the single message a per-transfer goroutine ever
// sends back to the reactor (SPEC_FULL §5): the reactor owns no state
// during the transfer itself, only reacts to its final result.
type transferOutcome struct {
	kind     transferKind
	addr     *net.UDPAddr
	name     string // wire filename, for the upload/downloaded stdout line
	destPath string // fetch only, for cleanup on failure
	result   transfer.Result
}

// startDownload dials the server's data port and runs a SocketToFile
// session to completion in its own goroutine, reporting exactly one
// transferOutcome back to the reactor.
func (c *Client) startDownload(f *fetchState, from *net.UDPAddr, port int) {
	go func() {
		dataAddr := &net.TCPAddr{IP: from.IP, Port: port}
		conn, err := net.DialTimeout("tcp", dataAddr.String(), c.timeout)
		if err != nil {
			f.file.Close()
			c.transferDoneCh <- transferOutcome{
				kind:     transferFetch,
				addr:     from,
				name:     f.name,
				destPath: f.destPath,
				result:   transfer.Result{Err: err},
			}
			return
		}
		sess := transfer.New(conn, f.file, transfer.SocketToFile, c.timeout)
		res := sess.Run()
		c.transferDoneCh <- transferOutcome{
			kind:     transferFetch,
			addr:     from,
			name:     f.name,
			destPath: f.destPath,
			result:   res,
		}
	}()
}

// startUpload dials the server's data port and runs a FileToSocket
// session to completion in its own goroutine.
func (c *Client) startUpload(a *uploadAttempt, from *net.UDPAddr, port int) {
	go func() {
		file, err := os.Open(a.placement.Path)
		if err != nil {
			c.transferDoneCh <- transferOutcome{
				kind:   transferUpload,
				addr:   from,
				name:   a.placement.Path,
				result: transfer.Result{Err: err},
			}
			return
		}
		dataAddr := &net.TCPAddr{IP: from.IP, Port: port}
		conn, err := net.DialTimeout("tcp", dataAddr.String(), c.timeout)
		if err != nil {
			file.Close()
			c.transferDoneCh <- transferOutcome{
				kind:   transferUpload,
				addr:   from,
				name:   a.placement.Path,
				result: transfer.Result{Err: err},
			}
			return
		}
		sess := transfer.New(conn, file, transfer.FileToSocket, c.timeout)
		res := sess.Run()
		c.transferDoneCh <- transferOutcome{
			kind:   transferUpload,
			addr:   from,
			name:   a.placement.Path,
			result: res,
		}
	}()
}

// handleTransferDone prints the exact SPEC_FULL §6 stdout line for a
// completed fetch or upload, cleaning up a partial file on failure.
func (c *Client) handleTransferDone(out transferOutcome) {
	switch out.kind {
	case transferFetch:
		if out.result.Err != nil {
			os.Remove(out.destPath)
			c.outf("File %s downloading failed (%s) %v\n", out.name, out.addr, out.result.Err)
			return
		}
		c.outf("File %s downloaded (%s)\n", out.name, out.addr)
	case transferUpload:
		if out.result.Err != nil {
			c.outf("File %s uploading failed (%s) %v\n", out.name, out.addr, out.result.Err)
			return
		}
		c.outf("File %s uploaded (%s)\n", out.name, out.addr)
	}
}
