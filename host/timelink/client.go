package timelink

import (
	"errors"
	"fmt"
	"io"

	"clockcore/core"
	"clockcore/protocol"
)

// ErrRemoteNoSource reports that the peer has no active clock source.
var ErrRemoteNoSource = errors.New("timelink: peer has no active clock source")

// Identity is the peer's identify response.
type Identity struct {
	Version string
	Source  string
}

// Client issues requests over an open link. Not safe for concurrent
// use; callers serialize requests themselves.
type Client struct {
	rw  io.ReadWriter
	dec *protocol.Decoder
	seq uint8
}

func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw, dec: protocol.NewDecoder()}
}

// Identify asks the peer who it is and which source drives its clock.
func (c *Client) Identify() (Identity, error) {
	payload, err := c.roundTrip(protocol.MsgIdentify, protocol.MsgIdentifyResponse)
	if err != nil {
		return Identity{}, err
	}
	version, err := protocol.DecodeBytes(&payload)
	if err != nil {
		return Identity{}, fmt.Errorf("timelink identify: %w", err)
	}
	source, err := protocol.DecodeBytes(&payload)
	if err != nil {
		return Identity{}, fmt.Errorf("timelink identify: %w", err)
	}
	return Identity{Version: string(version), Source: string(source)}, nil
}

// GetTime fetches the peer's wall clock.
func (c *Client) GetTime() (core.Timespec, error) {
	payload, err := c.roundTrip(protocol.MsgGetTime, protocol.MsgTime)
	if err != nil {
		return core.Timespec{}, err
	}
	status, err := protocol.DecodeUint(&payload)
	if err != nil {
		return core.Timespec{}, fmt.Errorf("timelink time: %w", err)
	}
	if status == protocol.StatusNoActiveSource {
		return core.Timespec{}, ErrRemoteNoSource
	}
	sec, err := protocol.DecodeUint64(&payload)
	if err != nil {
		return core.Timespec{}, fmt.Errorf("timelink time: %w", err)
	}
	nsec, err := protocol.DecodeUint64(&payload)
	if err != nil {
		return core.Timespec{}, fmt.Errorf("timelink time: %w", err)
	}
	return core.Timespec{Sec: int64(sec), Nsec: int64(nsec)}, nil
}

// GetUptime fetches the peer's nanoseconds since boot.
func (c *Client) GetUptime() (uint64, error) {
	payload, err := c.roundTrip(protocol.MsgGetUptime, protocol.MsgUptime)
	if err != nil {
		return 0, err
	}
	status, err := protocol.DecodeUint(&payload)
	if err != nil {
		return 0, fmt.Errorf("timelink uptime: %w", err)
	}
	if status == protocol.StatusNoActiveSource {
		return 0, ErrRemoteNoSource
	}
	up, err := protocol.DecodeUint64(&payload)
	if err != nil {
		return 0, fmt.Errorf("timelink uptime: %w", err)
	}
	return up, nil
}

// roundTrip sends one request and waits for the matching response,
// discarding frames with a stale sequence or unexpected message id.
func (c *Client) roundTrip(req, want uint32) ([]byte, error) {
	c.seq++
	frame, err := protocol.EncodeFrame(c.seq, protocol.AppendUint(nil, req))
	if err != nil {
		return nil, err
	}
	if _, err := c.rw.Write(frame); err != nil {
		return nil, fmt.Errorf("timelink write: %w", err)
	}

	buf := make([]byte, 256)
	for {
		resp, err := c.dec.Next()
		if err != nil {
			continue
		}
		if resp != nil {
			if resp.Seq != c.seq {
				continue
			}
			payload := resp.Payload
			msg, err := protocol.DecodeUint(&payload)
			if err != nil || msg != want {
				continue
			}
			return payload, nil
		}
		n, err := c.rw.Read(buf)
		if n > 0 {
			c.dec.Feed(buf[:n])
		}
		if err != nil {
			return nil, fmt.Errorf("timelink read: %w", err)
		}
	}
}
