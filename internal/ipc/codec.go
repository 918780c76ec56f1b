package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// RequestSize is the fixed wire size of a Request.
	RequestSize = 28
	// ReplySize is the fixed wire size of a Reply.
	ReplySize = 28
)

// Both peers run on the same host and exchange raw C structs.
var order = binary.NativeEndian

// MarshalBinary encodes r into its fixed 28-byte layout:
//
//	0 command | 1 subtype | 2..3 pad | 4 x | 8 x supplied | 12 y |
//	16 y supplied | 20 speed | 24 speed supplied | 25..27 pad
func (r Request) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RequestSize)
	buf[0] = byte(r.Command)
	buf[1] = byte(r.Subtype)
	order.PutUint32(buf[4:8], uint32(supplied(r.X, r.XSupplied)))
	order.PutUint32(buf[8:12], boolWord(r.XSupplied))
	order.PutUint32(buf[12:16], uint32(supplied(r.Y, r.YSupplied)))
	order.PutUint32(buf[16:20], boolWord(r.YSupplied))
	order.PutUint32(buf[20:24], uint32(supplied(r.Speed, r.SpeedSupplied)))
	if r.SpeedSupplied {
		buf[24] = 1
	}
	return buf, nil
}

// UnmarshalBinary decodes the first RequestSize bytes of data into r.
// r is left unchanged when data is short.
func (r *Request) UnmarshalBinary(data []byte) error {
	if len(data) < RequestSize {
		return Errorf(TruncatedMessage, "request: got %d of %d bytes", len(data), RequestSize)
	}
	*r = Request{
		Command:       Command(data[0]),
		Subtype:       Subtype(data[1]),
		X:             int32(order.Uint32(data[4:8])),
		XSupplied:     order.Uint32(data[8:12]) != 0,
		Y:             int32(order.Uint32(data[12:16])),
		YSupplied:     order.Uint32(data[16:20]) != 0,
		Speed:         int32(order.Uint32(data[20:24])),
		SpeedSupplied: data[24] != 0,
	}
	return nil
}

// MarshalBinary encodes r as seven consecutive 32-bit words.
func (r Reply) MarshalBinary() ([]byte, error) {
	buf := make([]byte, ReplySize)
	order.PutUint32(buf[0:4], uint32(r.X))
	order.PutUint32(buf[4:8], uint32(r.Y))
	order.PutUint32(buf[8:12], uint32(r.Status))
	order.PutUint32(buf[12:16], uint32(r.Speed))
	order.PutUint32(buf[16:20], r.XMax)
	order.PutUint32(buf[20:24], r.YMax)
	order.PutUint32(buf[24:28], uint32(r.Inversion))
	return buf, nil
}

// UnmarshalBinary decodes the first ReplySize bytes of data into r.
// r is left unchanged on any error.
func (r *Reply) UnmarshalBinary(data []byte) error {
	if len(data) < ReplySize {
		return Errorf(TruncatedMessage, "reply: got %d of %d bytes", len(data), ReplySize)
	}
	status := MotorStatus(order.Uint32(data[8:12]))
	if status != StatusStopped && status != StatusRunning {
		return Errorf(MalformedReply, "reply: invalid motor status %d", uint32(status))
	}
	*r = Reply{
		X:         int32(order.Uint32(data[0:4])),
		Y:         int32(order.Uint32(data[4:8])),
		Status:    status,
		Speed:     int32(order.Uint32(data[12:16])),
		XMax:      order.Uint32(data[16:20]),
		YMax:      order.Uint32(data[20:24]),
		Inversion: Inversion(order.Uint32(data[24:28])),
	}
	return nil
}

// WriteRequest writes req to w in one piece. Anything short of the full
// record is an IncompleteWrite; the stream cannot be resynchronised.
func WriteRequest(w io.Writer, req Request) error {
	buf, err := req.MarshalBinary()
	if err != nil {
		return err
	}
	n, err := w.Write(buf)
	if n < len(buf) {
		if err == nil {
			err = io.ErrShortWrite
		}
		return Wrap(IncompleteWrite, err, "failed to send request")
	}
	if err != nil {
		return Wrap(IncompleteWrite, err, "failed to send request")
	}
	return nil
}

// ReadReply reads exactly one Reply from r.
func ReadReply(r io.Reader) (*Reply, error) {
	buf := make([]byte, ReplySize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, Wrap(TruncatedMessage, err, fmt.Sprintf("daemon closed the connection after %d of %d reply bytes", n, ReplySize))
		}
		return nil, err
	}
	var reply Reply
	if err := reply.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return &reply, nil
}

func supplied(v int32, ok bool) int32 {
	if !ok {
		return 0
	}
	return v
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
