package protocol

import "bytes"

// EncodeFrame wraps payload into a complete frame.
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	total := FrameHeaderSize + len(payload) + FrameTrailerSize
	if total > FrameLengthMax {
		return nil, ErrOverlength
	}
	frame := make([]byte, 0, total)
	frame = append(frame, byte(total), seq)
	frame = append(frame, payload...)
	crc := CRC16(frame)
	frame = append(frame, byte(crc>>8), byte(crc&0xFF), SyncByte)
	return frame, nil
}

// Frame is one decoded message.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// Decoder reassembles frames out of a byte stream. Corrupt input
// drops the decoder out of sync; it scans forward to the next sync
// byte before parsing again.
type Decoder struct {
	buf    []byte
	synced bool
}

func NewDecoder() *Decoder {
	return &Decoder{synced: true}
}

// Feed appends raw bytes from the link.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Next returns the next complete frame, or (nil, nil) when more input
// is needed. A framing error is reported once and the decoder resyncs
// internally.
func (d *Decoder) Next() (*Frame, error) {
	for {
		if !d.synced {
			i := bytes.IndexByte(d.buf, SyncByte)
			if i < 0 {
				d.buf = d.buf[:0]
				return nil, nil
			}
			d.buf = d.buf[i+1:]
			d.synced = true
		}

		// Skip idle sync bytes between frames.
		for len(d.buf) > 0 && d.buf[0] == SyncByte {
			d.buf = d.buf[1:]
		}
		if len(d.buf) < FrameLengthMin {
			return nil, nil
		}

		total := int(d.buf[0])
		if total < FrameLengthMin || total > FrameLengthMax {
			d.synced = false
			d.buf = d.buf[1:]
			return nil, ErrFrameSize
		}
		if len(d.buf) < total {
			return nil, nil
		}
		if d.buf[total-1] != SyncByte {
			d.synced = false
			d.buf = d.buf[1:]
			return nil, ErrBadSync
		}
		want := uint16(d.buf[total-3])<<8 | uint16(d.buf[total-2])
		if got := CRC16(d.buf[:total-FrameTrailerSize]); got != want {
			d.synced = false
			d.buf = d.buf[1:]
			return nil, ErrBadCRC
		}

		f := &Frame{
			Seq:     d.buf[1],
			Payload: append([]byte(nil), d.buf[FrameHeaderSize:total-FrameTrailerSize]...),
		}
		d.buf = d.buf[total:]
		return f, nil
	}
}
