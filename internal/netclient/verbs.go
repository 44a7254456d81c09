package netclient

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"strings"
	"time"

	"github.com/netstore-go/netstore/pkg/wire"
)

// handleLine parses one stdin command line (SPEC_FULL §4.4) and
// dispatches it. It reports exit=true only for "exit", which ends Run.
func (c *Client) handleLine(line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "discover":
		c.doDiscover(args)
	case "search":
		c.doSearch(args)
	case "fetch":
		c.doFetch(args)
	case "upload":
		c.doUpload(args)
	case "remove":
		c.doRemove(args)
	case "exit":
		return true
	default:
		c.errf("[LOCAL ERROR] unknown command %q\n", verb)
	}
	return false
}

func (c *Client) doDiscover(args []string) {
	w := &discoverWindow{purpose: discoverInteractive, deadline: time.Now().Add(c.timeout)}
	id := c.discoverReg.Mint(w)
	c.sendSimple(wire.HELLO, id, nil, c.mcastAddr)
}

func (c *Client) doSearch(args []string) {
	substr := ""
	if len(args) > 0 {
		substr = strings.Join(args, " ")
	}
	w := &searchWindow{substr: substr, deadline: time.Now().Add(c.timeout)}
	id := c.searchReg.Mint(w)
	c.sendSimple(wire.LIST, id, []byte(substr), c.mcastAddr)
}

func (c *Client) doFetch(args []string) {
	if len(args) != 1 {
		c.errf("[LOCAL ERROR] usage: fetch <name>\n")
		return
	}
	name := args[0]

	var addr *searchMatch
	for i := range c.lastSearch {
		if c.lastSearch[i].name == name {
			addr = &c.lastSearch[i]
			break
		}
	}
	if addr == nil {
		c.errf("Requested file is not in recently searched\n")
		return
	}

	dest := c.destPath(name)
	file, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		c.errf("[LOCAL ERROR] fetch %s: %v\n", name, err)
		return
	}

	f := &fetchState{
		name:     name,
		addr:     addr.addr,
		deadline: time.Now().Add(c.timeout),
		file:     file,
		destPath: dest,
	}
	id := c.fetchReg.Mint(f)
	c.sendSimple(wire.GET, id, []byte(name), addr.addr)
}

func (c *Client) doUpload(args []string) {
	if len(args) != 1 {
		c.errf("[LOCAL ERROR] usage: upload <path>\n")
		return
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		c.errf("File %s does not exist\n", path)
		return
	}
	f.Close()

	c.uploadQueue = append(c.uploadQueue, path)
	if c.hasUploadDiscover {
		return
	}
	c.hasUploadDiscover = true
	w := &discoverWindow{purpose: discoverForUpload, deadline: time.Now().Add(c.timeout)}
	id := c.discoverReg.Mint(w)
	c.sendSimple(wire.HELLO, id, nil, c.mcastAddr)
}

func (c *Client) doRemove(args []string) {
	if len(args) != 1 {
		c.errf("[LOCAL ERROR] usage: remove <name>\n")
		return
	}
	name := args[0]
	c.sendSimple(wire.DEL, randomSeq(), []byte(name), c.mcastAddr)
}

// randomSeq mints a sequence id for a fire-and-forget request (DEL),
// which expects no reply and so needs no registry entry.
func randomSeq() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint64(b[:])
}
