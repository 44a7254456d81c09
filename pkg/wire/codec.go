package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/netstore-go/netstore/internal/wireerr"
)

// EncodeSimple builds the wire form of a simple packet: tag, seq, data.
func EncodeSimple(tag Tag, seq uint64, data []byte) []byte {
	return encode(tag, seq, 0, false, data)
}

// EncodeComplex builds the wire form of a complex packet: tag, seq, param,
// data.
func EncodeComplex(tag Tag, seq uint64, param uint64, data []byte) []byte {
	return encode(tag, seq, param, true, data)
}

func encode(tag Tag, seq uint64, param uint64, hasParam bool, data []byte) []byte {
	size := headerSimple
	if hasParam {
		size = headerComplex
	}
	out := make([]byte, size+len(data))
	copy(out[:CmdSize], tag)
	binary.BigEndian.PutUint64(out[CmdSize:CmdSize+8], seq)
	pos := CmdSize + 8
	if hasParam {
		binary.BigEndian.PutUint64(out[pos:pos+8], param)
		pos += 8
	}
	copy(out[pos:], data)
	return out
}

// Decode parses raw into a Packet, enforcing the strict framing rules of
// SPEC_FULL.md §4.1: short packets are rejected, the tag must be one of the
// ten known commands, and complex tags require the param field to be
// present.
func Decode(raw []byte) (Packet, error) {
	if len(raw) < CmdSize {
		return Packet{}, fmt.Errorf("%w: length %d < %d", wireerr.ErrMalformedPacket, len(raw), CmdSize)
	}
	tag := readTag(raw[:CmdSize])
	if !IsKnown(tag) {
		return Packet{}, fmt.Errorf("%w: %q", wireerr.ErrUnknownTag, tag)
	}
	if len(raw) < headerSimple {
		return Packet{}, fmt.Errorf("%w: length %d < %d", wireerr.ErrMalformedPacket, len(raw), headerSimple)
	}
	seq := binary.BigEndian.Uint64(raw[CmdSize : CmdSize+8])
	pos := CmdSize + 8

	p := Packet{Tag: tag, Seq: seq}
	if IsComplex(tag) {
		if len(raw) < headerComplex {
			return Packet{}, fmt.Errorf("%w: complex tag %q length %d < %d", wireerr.ErrMalformedPacket, tag, len(raw), headerComplex)
		}
		p.Param = binary.BigEndian.Uint64(raw[pos : pos+8])
		p.HasParam = true
		pos += 8
	}
	if pos < len(raw) {
		p.Data = raw[pos:]
	}
	return p, nil
}

// readTag returns the ASCII tag up to the first NUL within the first
// CmdSize bytes.
func readTag(b []byte) Tag {
	for i, c := range b {
		if c == 0 {
			return Tag(b[:i])
		}
	}
	return Tag(b)
}
