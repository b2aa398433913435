// Package timelink runs the framed request/response protocol that
// lets a peer query the clock subsystem over a serial link.
package timelink

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"clockcore/core"
	"clockcore/protocol"
)

// Version is reported in identify responses.
const Version = "clockcore 1.0"

// Server answers time queries against one subsystem instance.
type Server struct {
	sub *core.Subsystem
	log *zap.Logger
}

func NewServer(sub *core.Subsystem, log *zap.Logger) *Server {
	return &Server{sub: sub, log: log}
}

// Serve reads frames from rw until EOF or a transport error. Framing
// errors are logged and skipped; the decoder resynchronizes itself.
func (s *Server) Serve(rw io.ReadWriter) error {
	dec := protocol.NewDecoder()
	buf := make([]byte, 256)
	for {
		n, err := rw.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			for {
				frame, err := dec.Next()
				if err != nil {
					s.log.Warn("framing error", zap.Error(err))
					continue
				}
				if frame == nil {
					break
				}
				if err := s.handle(rw, frame); err != nil {
					return err
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("timelink read: %w", err)
		}
	}
}

func (s *Server) handle(w io.Writer, frame *protocol.Frame) error {
	payload := frame.Payload
	msg, err := protocol.DecodeUint(&payload)
	if err != nil {
		s.log.Warn("request without message id", zap.Error(err))
		return nil
	}

	var resp []byte
	switch msg {
	case protocol.MsgIdentify:
		resp = s.identifyResponse()
	case protocol.MsgGetTime:
		resp = s.timeResponse()
	case protocol.MsgGetUptime:
		resp = s.uptimeResponse()
	default:
		s.log.Warn("unknown message", zap.Uint32("msg", msg))
		return nil
	}

	out, err := protocol.EncodeFrame(frame.Seq, resp)
	if err != nil {
		return fmt.Errorf("timelink encode: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("timelink write: %w", err)
	}
	return nil
}

func (s *Server) identifyResponse() []byte {
	name := ""
	if src := s.sub.Active(); src != nil {
		name = src.Name()
	}
	resp := protocol.AppendUint(nil, protocol.MsgIdentifyResponse)
	resp = protocol.AppendBytes(resp, []byte(Version))
	resp = protocol.AppendBytes(resp, []byte(name))
	return resp
}

func (s *Server) timeResponse() []byte {
	resp := protocol.AppendUint(nil, protocol.MsgTime)
	ts, err := s.sub.NowNS()
	if err != nil {
		resp = protocol.AppendUint(resp, protocol.StatusNoActiveSource)
		return protocol.AppendUint64(protocol.AppendUint64(resp, 0), 0)
	}
	resp = protocol.AppendUint(resp, protocol.StatusOK)
	resp = protocol.AppendUint64(resp, uint64(ts.Sec))
	return protocol.AppendUint64(resp, uint64(ts.Nsec))
}

func (s *Server) uptimeResponse() []byte {
	resp := protocol.AppendUint(nil, protocol.MsgUptime)
	up, err := s.sub.UptimeNS()
	if err != nil {
		resp = protocol.AppendUint(resp, protocol.StatusNoActiveSource)
		return protocol.AppendUint64(resp, 0)
	}
	resp = protocol.AppendUint(resp, protocol.StatusOK)
	return protocol.AppendUint64(resp, up)
}
