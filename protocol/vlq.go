package protocol

// Variable length quantities: 7 data bits per byte, most significant
// group first, high bit set on every byte except the last. Signed
// values sign-extend out of the first byte.

// AppendUint appends the VLQ encoding of v to dst.
func AppendUint(dst []byte, v uint32) []byte {
	return AppendInt(dst, int32(v))
}

// AppendInt appends the VLQ encoding of a signed value to dst.
func AppendInt(dst []byte, v int32) []byte {
	if !(-(1<<26) <= v && v < (3<<26)) {
		dst = append(dst, byte((v>>28)&0x7F)|0x80)
	}
	if !(-(1<<19) <= v && v < (3<<19)) {
		dst = append(dst, byte((v>>21)&0x7F)|0x80)
	}
	if !(-(1<<12) <= v && v < (3<<12)) {
		dst = append(dst, byte((v>>14)&0x7F)|0x80)
	}
	if !(-(1<<5) <= v && v < (3<<5)) {
		dst = append(dst, byte((v>>7)&0x7F)|0x80)
	}
	return append(dst, byte(v&0x7F))
}

// AppendUint64 appends a 64-bit value as two 32-bit groups, high word
// first. Timestamps do not fit in one group.
func AppendUint64(dst []byte, v uint64) []byte {
	dst = AppendUint(dst, uint32(v>>32))
	return AppendUint(dst, uint32(v))
}

// AppendBytes appends a length-prefixed byte string.
func AppendBytes(dst, b []byte) []byte {
	dst = AppendUint(dst, uint32(len(b)))
	return append(dst, b...)
}

// DecodeInt consumes one signed VLQ from *data.
func DecodeInt(data *[]byte) (int32, error) {
	if len(*data) == 0 {
		return 0, ErrTruncated
	}
	c := uint32((*data)[0])
	*data = (*data)[1:]

	v := c & 0x7F
	if (c & 0x60) == 0x60 {
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if len(*data) == 0 {
			return 0, ErrTruncated
		}
		c = uint32((*data)[0])
		*data = (*data)[1:]
		v = (v << 7) | (c & 0x7F)
	}
	return int32(v), nil
}

// DecodeUint consumes one unsigned VLQ from *data.
func DecodeUint(data *[]byte) (uint32, error) {
	v, err := DecodeInt(data)
	return uint32(v), err
}

// DecodeUint64 consumes a two-group 64-bit value from *data.
func DecodeUint64(data *[]byte) (uint64, error) {
	hi, err := DecodeUint(data)
	if err != nil {
		return 0, err
	}
	lo, err := DecodeUint(data)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// DecodeBytes consumes a length-prefixed byte string from *data.
func DecodeBytes(data *[]byte) ([]byte, error) {
	n, err := DecodeUint(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, ErrTruncated
	}
	b := (*data)[:n]
	*data = (*data)[n:]
	return b, nil
}
