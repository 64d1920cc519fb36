// Package storage implements the container framing used to persist DLT
// messages: each message is prefixed by a fixed 16 byte header carrying a
// capture timestamp and the recording ECU id.
package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// HeaderSize is the serialized size of a storage header.
const HeaderSize = 16

var startPattern = [4]byte{0x44, 0x4C, 0x54, 0x01}

// StartPatternError is returned when the magic bytes at the start of a
// storage header do not match the expected pattern.
type StartPatternError struct {
	Actual [4]byte
}

func (e *StartPatternError) Error() string {
	return fmt.Sprintf("storage header start pattern mismatch: got [0x%02X 0x%02X 0x%02X 0x%02X], want [0x44 0x4C 0x54 0x01]",
		e.Actual[0], e.Actual[1], e.Actual[2], e.Actual[3])
}

// Header is the 16 byte record written before every message in a storage
// file.
type Header struct {
	TimestampSeconds      uint32
	TimestampMicroseconds uint32
	EcuID                 [4]byte
}

// NewHeader builds a storage header for the given capture time.
func NewHeader(t time.Time, ecuID [4]byte) Header {
	return Header{
		TimestampSeconds:      uint32(t.Unix()),
		TimestampMicroseconds: uint32(t.Nanosecond() / 1000),
		EcuID:                 ecuID,
	}
}

// ToBytes returns the wire encoding of the header.
func (h *Header) ToBytes() [HeaderSize]byte {
	var out [HeaderSize]byte
	copy(out[0:4], startPattern[:])
	binary.BigEndian.PutUint32(out[4:8], h.TimestampSeconds)
	binary.BigEndian.PutUint32(out[8:12], h.TimestampMicroseconds)
	copy(out[12:16], h.EcuID[:])
	return out
}

// HeaderFromBytes decodes a storage header, rejecting a wrong start
// pattern.
func HeaderFromBytes(buf [HeaderSize]byte) (Header, error) {
	if !bytes.Equal(buf[0:4], startPattern[:]) {
		return Header{}, &StartPatternError{Actual: [4]byte{buf[0], buf[1], buf[2], buf[3]}}
	}
	var h Header
	h.TimestampSeconds = binary.BigEndian.Uint32(buf[4:8])
	h.TimestampMicroseconds = binary.BigEndian.Uint32(buf[8:12])
	copy(h.EcuID[:], buf[12:16])
	return h, nil
}

// ReadHeader reads and decodes one storage header from a stream. A clean
// end of stream surfaces as io.EOF, a partial header as
// io.ErrUnexpectedEOF.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Header{}, io.ErrUnexpectedEOF
		}
		return Header{}, err
	}
	return HeaderFromBytes(buf)
}

// Write encodes the header to a stream.
func (h *Header) Write(w io.Writer) error {
	buf := h.ToBytes()
	_, err := w.Write(buf[:])
	return err
}

// Timestamp returns the capture time of the header.
func (h *Header) Timestamp() time.Time {
	return time.Unix(int64(h.TimestampSeconds), int64(h.TimestampMicroseconds)*1000).UTC()
}

// EcuIDString returns the ECU id with trailing zero padding stripped.
func (h *Header) EcuIDString() string {
	id := h.EcuID[:]
	for len(id) > 0 && id[len(id)-1] == 0 {
		id = id[:len(id)-1]
	}
	return string(id)
}
