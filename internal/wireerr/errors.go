// Package wireerr holds the sentinel error kinds shared by every layer of
// the netstore protocol engine, from packet decoding up through transfer
// sessions and upload placement.
package wireerr

import "errors"

var (
	ErrMalformedPacket = errors.New("malformed packet")
	ErrUnknownTag      = errors.New("unknown command tag")
	ErrUnexpectedReply = errors.New("unexpected reply")
	ErrLocalIO         = errors.New("local file I/O failed")
	ErrSocketIO        = errors.New("socket I/O failed")
	ErrTimeout         = errors.New("operation timed out")
	ErrConfig          = errors.New("invalid configuration")
)
