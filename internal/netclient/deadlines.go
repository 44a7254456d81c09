package netclient

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/netstore-go/netstore/internal/upload"
	"github.com/netstore-go/netstore/pkg/wire"
)

// armTimer resets timer to fire at the earliest outstanding deadline
// across every pending-op registry, the Go realization of SPEC_FULL.md
// §4.4's "poll timeout as remaining ms until the earliest deadline":
// zero/past means "service now", no deadlines means the timer is
// stopped and the reactor blocks on the other select cases indefinitely.
func (c *Client) armTimer(timer *time.Timer) {
	timer.Stop()
	select {
	case <-timer.C:
	default:
	}

	earliest, ok := c.earliestDeadline()
	if !ok {
		return
	}
	d := time.Until(earliest)
	if d < 0 {
		d = 0
	}
	timer.Reset(d)
}

func (c *Client) earliestDeadline() (time.Time, bool) {
	var earliest time.Time
	found := false
	consider := func(t time.Time) {
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}

	c.discoverReg.Each(func(_ uint64, w *discoverWindow) { consider(w.deadline) })
	c.searchReg.Each(func(_ uint64, w *searchWindow) { consider(w.deadline) })
	c.fetchReg.Each(func(_ uint64, f *fetchState) { consider(f.deadline) })
	c.uploadReg.Each(func(_ uint64, a *uploadAttempt) { consider(a.deadline) })

	return earliest, found
}

// sweepDeadlines handles every pending op whose deadline has passed.
func (c *Client) sweepDeadlines() {
	now := time.Now()

	var expiredDiscover []uint64
	c.discoverReg.Each(func(id uint64, w *discoverWindow) {
		if !w.deadline.After(now) {
			expiredDiscover = append(expiredDiscover, id)
		}
	})
	for _, id := range expiredDiscover {
		w, ok := c.discoverReg.Lookup(id)
		c.discoverReg.Forget(id)
		if ok {
			c.closeDiscoverWindow(w)
		}
	}

	var expiredSearch []uint64
	c.searchReg.Each(func(id uint64, w *searchWindow) {
		if !w.deadline.After(now) {
			expiredSearch = append(expiredSearch, id)
		}
	})
	for _, id := range expiredSearch {
		w, ok := c.searchReg.Lookup(id)
		c.searchReg.Forget(id)
		if ok {
			c.closeSearchWindow(w)
		}
	}

	var expiredFetch []uint64
	c.fetchReg.Each(func(id uint64, f *fetchState) {
		if !f.deadline.After(now) {
			expiredFetch = append(expiredFetch, id)
		}
	})
	for _, id := range expiredFetch {
		f, ok := c.fetchReg.Lookup(id)
		c.fetchReg.Forget(id)
		if ok {
			c.failFetch(f, "timeout")
		}
	}

	var expiredUpload []uint64
	c.uploadReg.Each(func(id uint64, a *uploadAttempt) {
		if !a.deadline.After(now) {
			expiredUpload = append(expiredUpload, id)
		}
	})
	for _, id := range expiredUpload {
		a, ok := c.uploadReg.Lookup(id)
		c.uploadReg.Forget(id)
		if ok {
			c.retryOrAbandonUpload(a)
		}
	}
}

// closeDiscoverWindow ends one "discover" window. A user-typed discover
// has already printed its results incrementally as replies arrived
// (SPEC_FULL §4.4); a background upload-discover uses the collected
// replies to place every queued file.
func (c *Client) closeDiscoverWindow(w *discoverWindow) {
	if w.purpose != discoverForUpload {
		return
	}
	c.hasUploadDiscover = false
	c.placeQueuedUploads(w.replies)
}

// closeSearchWindow commits one search window's matches as the new
// "most recently searched" set that "fetch" consults.
func (c *Client) closeSearchWindow(w *searchWindow) {
	c.lastSearch = w.matches
}

// failFetch abandons a fetch that never got a CONNECT_ME before its
// window closed. No TCP connection was ever opened, so the failure is
// reported to stderr as a local error, not in the §6 "downloading failed
// (ip:port)" form.
func (c *Client) failFetch(f *fetchState, cause string) {
	f.file.Close()
	os.Remove(f.destPath)
	c.errf("[LOCAL ERROR] fetch %s: %s\n", f.name, cause)
}

// retryOrAbandonUpload tries the next candidate for a's placement,
// minting a fresh sequence id (SPEC_FULL §4.6: each attempt is a new
// request, never a retransmission of the same seq). When candidates are
// exhausted, the placement fails terminally.
func (c *Client) retryOrAbandonUpload(a *uploadAttempt) {
	cand, ok := a.placement.PopNext()
	if !ok {
		c.outf("File %s too big\n", a.placement.Filename)
		return
	}
	next := &uploadAttempt{
		placement: a.placement,
		candidate: cand,
		deadline:  time.Now().Add(c.timeout),
	}
	id := c.uploadReg.Mint(next)
	c.sendComplex(wire.ADD, id, uint64(a.placement.Size), []byte(a.placement.Filename), cand.Addr)
}

// placeQueuedUploads builds a placement for every file queued by
// "upload" against the servers discovered in replies, sorted ascending
// by free space so PopNext tries the largest first, and kicks off the
// first ADD attempt for each.
func (c *Client) placeQueuedUploads(replies []discoverReply) {
	queue := c.uploadQueue
	c.uploadQueue = nil

	candidates := make([]upload.Candidate, 0, len(replies))
	for _, r := range replies {
		candidates = append(candidates, upload.Candidate{Addr: r.addr, FreeSpace: r.freeSpace})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].FreeSpace < candidates[j].FreeSpace })

	for _, path := range queue {
		info, err := os.Stat(path)
		if err != nil {
			c.errf("[LOCAL ERROR] upload %s: %v\n", path, err)
			continue
		}
		p := upload.New(path, filepath.Base(path), info.Size(), candidates)
		a := &uploadAttempt{placement: p}
		c.retryOrAbandonUpload(a)
	}
}
