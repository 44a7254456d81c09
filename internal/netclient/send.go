package netclient

import (
	"net"

	"github.com/netstore-go/netstore/pkg/wire"
)

// sendSimple writes a tag/seq/data packet to to. HELLO/LIST/DEL go to
// the multicast group so every hosting server sees them; GET goes to the
// command address of the server that listed the file.
func (c *Client) sendSimple(tag wire.Tag, seq uint64, data []byte, to *net.UDPAddr) {
	c.conn.WriteToUDP(wire.EncodeSimple(tag, seq, data), to)
}

// sendComplex writes a tag/seq/param/data packet to to. ADD goes to one
// specific candidate's command address.
func (c *Client) sendComplex(tag wire.Tag, seq uint64, param uint64, data []byte, to *net.UDPAddr) {
	c.conn.WriteToUDP(wire.EncodeComplex(tag, seq, param, data), to)
}
