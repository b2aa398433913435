// Package protocol implements the framed wire format spoken over the
// time-link serial connection.
//
// Frames look like:
//
//	[len][seq][payload...][crc_hi][crc_lo][0x7E]
//
// len counts the whole frame. The CRC covers len, seq and payload.
// The trailing sync byte lets a receiver that lost its place scan
// forward to a frame boundary.
package protocol

import "errors"

const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameLengthMin   = FrameHeaderSize + FrameTrailerSize
	FrameLengthMax   = 64
	SyncByte         = 0x7E
)

var (
	ErrTruncated  = errors.New("protocol: truncated data")
	ErrFrameSize  = errors.New("protocol: frame length out of range")
	ErrBadCRC     = errors.New("protocol: crc mismatch")
	ErrBadSync    = errors.New("protocol: missing sync byte")
	ErrOverlength = errors.New("protocol: payload too large for one frame")
)
