package netclient

import (
	"net"
	"strings"

	"github.com/netstore-go/netstore/pkg/wire"
)

// handlePacket decodes one UDP reply and routes it to whichever pending
// operation minted its sequence id. Replies with no matching pending op
// (stale, mismatched seq, or an unexpected tag) are dropped and logged,
// never crashing the reactor (SPEC_FULL §7: UnexpectedReply is recovered
// locally).
func (c *Client) handlePacket(pkt udpPacket) {
	p, err := wire.Decode(pkt.data)
	if err != nil {
		c.protocolError(pkt.from, err.Error())
		return
	}

	switch p.Tag {
	case wire.GOOD_DAY:
		c.handleGoodDay(p, pkt.from)
	case wire.MY_LIST:
		c.handleMyList(p, pkt.from)
	case wire.CONNECT_ME:
		c.handleConnectMe(p, pkt.from)
	case wire.NO_WAY:
		c.handleNoWay(p, pkt.from)
	case wire.CAN_ADD:
		c.handleCanAdd(p, pkt.from)
	default:
		c.protocolError(pkt.from, "unexpected tag "+string(p.Tag))
	}
}

func (c *Client) protocolError(from *net.UDPAddr, reason string) {
	c.errf("[PCKG ERROR] Skipping invalid package from %s (%s)\n", from, reason)
}

func (c *Client) handleGoodDay(p wire.Packet, from *net.UDPAddr) {
	w, ok := c.discoverReg.Lookup(p.Seq)
	if !ok {
		c.protocolError(from, "no pending discover for seq")
		return
	}
	w.replies = append(w.replies, discoverReply{
		addr:      from,
		mcastAddr: string(p.Data),
		freeSpace: int64(p.Param),
	})
	if w.purpose == discoverInteractive {
		c.outf("Found %s (%s) with free space %d\n", from.IP, string(p.Data), int64(p.Param))
	}
}

func (c *Client) handleMyList(p wire.Packet, from *net.UDPAddr) {
	w, ok := c.searchReg.Lookup(p.Seq)
	if !ok {
		c.protocolError(from, "no pending search for seq")
		return
	}
	for _, name := range strings.Split(string(p.Data), "\n") {
		if name == "" {
			continue
		}
		w.matches = append(w.matches, searchMatch{addr: from, name: name})
		c.outf("%s (%s)\n", name, from.IP)
	}
}

func (c *Client) handleConnectMe(p wire.Packet, from *net.UDPAddr) {
	f, ok := c.fetchReg.Lookup(p.Seq)
	if !ok {
		c.protocolError(from, "no pending fetch for seq")
		return
	}
	c.fetchReg.Forget(p.Seq)
	c.startDownload(f, from, int(p.Param))
}

func (c *Client) handleNoWay(p wire.Packet, from *net.UDPAddr) {
	a, ok := c.uploadReg.Lookup(p.Seq)
	if !ok {
		c.protocolError(from, "no pending upload for seq")
		return
	}
	c.uploadReg.Forget(p.Seq)
	c.retryOrAbandonUpload(a)
}

func (c *Client) handleCanAdd(p wire.Packet, from *net.UDPAddr) {
	a, ok := c.uploadReg.Lookup(p.Seq)
	if !ok {
		c.protocolError(from, "no pending upload for seq")
		return
	}
	c.uploadReg.Forget(p.Seq)
	c.startUpload(a, from, int(p.Param))
}
