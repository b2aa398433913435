package protocol

// Message identifiers carried as the first VLQ of a frame payload.
const (
	MsgIdentifyResponse uint32 = 0
	MsgIdentify         uint32 = 1
	MsgGetTime          uint32 = 2
	MsgTime             uint32 = 3
	MsgGetUptime        uint32 = 4
	MsgUptime           uint32 = 5
)

// Status byte carried in time responses.
const (
	StatusOK             = 0
	StatusNoActiveSource = 1
)
