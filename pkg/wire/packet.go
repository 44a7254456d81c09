// Package wire implements the netstore control-plane binary packet format:
// a fixed 10-byte command tag, an 8-byte big-endian sequence number, an
// optional 8-byte big-endian parameter, and a variable-length data payload.
package wire

import "fmt"

// Tag is one of the ten known command names, always exactly CmdSize bytes
// wide on the wire (ASCII, NUL-padded).
type Tag string

const (
	HELLO      Tag = "HELLO"
	GOOD_DAY   Tag = "GOOD_DAY"
	LIST       Tag = "LIST"
	MY_LIST    Tag = "MY_LIST"
	GET        Tag = "GET"
	CONNECT_ME Tag = "CONNECT_ME"
	DEL        Tag = "DEL"
	ADD        Tag = "ADD"
	NO_WAY     Tag = "NO_WAY"
	CAN_ADD    Tag = "CAN_ADD"
)

const (
	// CmdSize is the width in bytes of the on-wire command tag field.
	CmdSize = 10
	// BufferSize is the fixed scratch buffer used to receive a single UDP
	// datagram; it is the largest UDP length value, so any IPv4 UDP
	// payload (at most 65507 bytes) fits.
	BufferSize = 65535
	// DataMax bounds a single MY_LIST reply's payload so a LIST with many
	// matches can be safely split across several replies.
	DataMax = 65489

	headerSimple  = CmdSize + 8      // tag + seq
	headerComplex = CmdSize + 8 + 8  // tag + seq + param
)

var complexTags = map[Tag]bool{
	GOOD_DAY:   true,
	CONNECT_ME: true,
	CAN_ADD:    true,
	ADD:        true,
}

var knownTags = map[Tag]bool{
	HELLO: true, GOOD_DAY: true, LIST: true, MY_LIST: true, GET: true,
	CONNECT_ME: true, DEL: true, ADD: true, NO_WAY: true, CAN_ADD: true,
}

// IsComplex reports whether tag carries the 8-byte param field.
func IsComplex(tag Tag) bool {
	return complexTags[tag]
}

// IsKnown reports whether tag is one of the ten recognised commands.
func IsKnown(tag Tag) bool {
	return knownTags[tag]
}

// Packet is the decoded form of either wire shape. HasParam distinguishes
// a complex packet (param is meaningful) from a simple one.
type Packet struct {
	Tag      Tag
	Seq      uint64
	Param    uint64
	HasParam bool
	Data     []byte
}

func (p Packet) String() string {
	if p.HasParam {
		return fmt.Sprintf("%s seq=%d param=%d data=%dB", p.Tag, p.Seq, p.Param, len(p.Data))
	}
	return fmt.Sprintf("%s seq=%d data=%dB", p.Tag, p.Seq, len(p.Data))
}
