package storage

import (
	"bufio"
	"encoding/binary"
	"io"

	"example.com/dltgate/internal/dlt"
)

// Record is one storage entry: the framing header and the message it
// wraps. Packet slices into a buffer owned by the record.
type Record struct {
	// Offset is the position of the storage header in the stream.
	Offset        int64
	StorageHeader Header
	Packet        dlt.PacketSlice
}

// Reader iterates over the records of a storage stream. By default it
// recovers from corruption by scanning forward for the next storage
// start pattern; a strict reader stops at the first malformed byte.
// After any error the reader is frozen and Next keeps returning io.EOF.
type Reader struct {
	r *bufio.Reader
	// pending holds already consumed bytes handed back by a resync;
	// reads drain it before touching the stream.
	pending      []byte
	strict       bool
	patternSeeks int
	consumed     int64
	failed       bool
}

// NewReader returns a reader that seeks to the next start pattern after
// corrupted data.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// NewStrictReader returns a reader that fails on the first malformed
// header or message.
func NewStrictReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), strict: true}
}

// PatternSeeks reports how many times the reader had to scan for a start
// pattern to resynchronize.
func (r *Reader) PatternSeeks() int {
	return r.patternSeeks
}

// BytesRead reports how many bytes of the stream have been consumed.
func (r *Reader) BytesRead() int64 {
	return r.consumed
}

// Next returns the next record. io.EOF marks a clean end of stream, a
// stream that ends mid record yields io.ErrUnexpectedEOF.
func (r *Reader) Next() (Record, error) {
	if r.failed {
		return Record{}, io.EOF
	}
	rec, err := r.next()
	if err != nil {
		r.failed = true
		return Record{}, err
	}
	return rec, nil
}

// readFull fills p, draining pending bytes before the stream. Only
// stream bytes advance the consumed count; pending bytes were counted
// when first read.
func (r *Reader) readFull(p []byte) (int, error) {
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	if n == len(p) {
		return n, nil
	}
	m, err := io.ReadFull(r.r, p[n:])
	r.consumed += int64(m)
	if err == io.EOF && n > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n + m, err
}

func (r *Reader) readByte() (byte, error) {
	if len(r.pending) > 0 {
		b := r.pending[0]
		r.pending = r.pending[1:]
		return b, nil
	}
	b, err := r.r.ReadByte()
	if err == nil {
		r.consumed++
	}
	return b, err
}

func (r *Reader) next() (Record, error) {
	var hdr [HeaderSize]byte
	if _, err := r.readFull(hdr[:]); err != nil {
		return Record{}, err
	}
	for {
		storageHeader, err := HeaderFromBytes(hdr)
		if err != nil {
			if r.strict {
				return Record{}, err
			}
			// Drop the first byte and rescan so overlapping
			// candidates are not missed. The carry is copied since
			// resync refills hdr in place.
			carry := append([]byte(nil), hdr[1:]...)
			if err := r.resync(carry, &hdr); err != nil {
				return Record{}, err
			}
			continue
		}

		// The assembled header ends right before any replayed carry
		// bytes, also after a resync.
		offset := r.consumed - int64(len(r.pending)) - HeaderSize
		msg, err := r.readMessage()
		if err != nil {
			return Record{}, err
		}
		packet, perr := dlt.ParsePacket(msg)
		if perr != nil {
			if r.strict {
				return Record{}, perr
			}
			// A real record may start anywhere inside the mis-framed
			// message, so its bytes are rescanned as carry.
			if err := r.resync(msg, &hdr); err != nil {
				return Record{}, err
			}
			continue
		}
		return Record{Offset: offset, StorageHeader: storageHeader, Packet: packet}, nil
	}
}

// readMessage reads one complete DLT message based on the length field
// of its base header.
func (r *Reader) readMessage() ([]byte, error) {
	base := make([]byte, dlt.BaseHeaderSize)
	if _, err := r.readFull(base); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	length := binary.BigEndian.Uint16(base[2:4])
	if int(length) <= len(base) {
		// Too short to carry a payload; hand the bytes to the
		// packet parser so the caller sees the precise error.
		return base, nil
	}
	msg := make([]byte, length)
	copy(msg, base)
	if _, err := r.readFull(msg[len(base):]); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return msg, nil
}

// resync scans forward until the storage start pattern is found, then
// reads the remainder of the header into hdr. carry holds already
// consumed bytes that may still contain the pattern start; carry bytes
// after a completed match belong to the header being rebuilt.
func (r *Reader) resync(carry []byte, hdr *[HeaderSize]byte) error {
	r.patternSeeks++
	matched := 0
	for i, b := range carry {
		matched = advanceMatch(matched, b)
		if matched == len(startPattern) {
			return r.refillHeader(carry[i+1:], hdr)
		}
	}
	for matched < len(startPattern) {
		b, err := r.readByte()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		matched = advanceMatch(matched, b)
	}
	return r.refillHeader(nil, hdr)
}

// refillHeader rebuilds a header buffer starting at a freshly matched
// start pattern, taking leftover carry bytes before reading from the
// stream. Carry beyond a full header goes back in front of the stream.
func (r *Reader) refillHeader(leftover []byte, hdr *[HeaderSize]byte) error {
	n := copy(hdr[:4], startPattern[:])
	n += copy(hdr[n:], leftover)
	if extra := len(leftover) - (HeaderSize - len(startPattern)); extra > 0 {
		replay := append([]byte(nil), leftover[len(leftover)-extra:]...)
		r.pending = append(replay, r.pending...)
	}
	if _, err := r.readFull(hdr[n:]); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// advanceMatch extends a prefix match of the start pattern by one byte.
// The pattern has no repeated prefix, so a mismatch can only restart at
// the pattern head.
func advanceMatch(matched int, b byte) int {
	if b == startPattern[matched] {
		return matched + 1
	}
	if b == startPattern[0] {
		return 1
	}
	return 0
}
