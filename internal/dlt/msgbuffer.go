package dlt

import (
	"encoding/binary"
	"math"
)

// MsgBuffer is a fixed capacity buffer for building verbose message
// payloads. Values append themselves through AddToMsg; a value that does
// not fit leaves the buffer exactly as it was and reports a
// CapacityError.
type MsgBuffer struct {
	buf      []byte
	capacity int
}

func NewMsgBuffer(capacity int) *MsgBuffer {
	return &MsgBuffer{buf: make([]byte, 0, capacity), capacity: capacity}
}

// Bytes returns the written bytes. The slice aliases the internal buffer
// and is only valid until the next write or Reset.
func (b *MsgBuffer) Bytes() []byte {
	return b.buf
}

func (b *MsgBuffer) Len() int {
	return len(b.buf)
}

func (b *MsgBuffer) Remaining() int {
	return b.capacity - len(b.buf)
}

func (b *MsgBuffer) Reset() {
	b.buf = b.buf[:0]
}

// writeAtomic runs encode and rolls the buffer back to its previous
// length if it fails, so partial writes never become visible.
func (b *MsgBuffer) writeAtomic(encode func() error) error {
	mark := len(b.buf)
	if err := encode(); err != nil {
		b.buf = b.buf[:mark]
		return err
	}
	return nil
}

func (b *MsgBuffer) write(p []byte) error {
	if len(b.buf)+len(p) > b.capacity {
		return &CapacityError{Required: len(b.buf) + len(p), Capacity: b.capacity}
	}
	b.buf = append(b.buf, p...)
	return nil
}

func (b *MsgBuffer) writeByte(v byte) error {
	return b.write([]byte{v})
}

func (b *MsgBuffer) writeU16(v uint16, bigEndian bool) error {
	var tmp [2]byte
	if bigEndian {
		binary.BigEndian.PutUint16(tmp[:], v)
	} else {
		binary.LittleEndian.PutUint16(tmp[:], v)
	}
	return b.write(tmp[:])
}

func (b *MsgBuffer) writeU32(v uint32, bigEndian bool) error {
	var tmp [4]byte
	if bigEndian {
		binary.BigEndian.PutUint32(tmp[:], v)
	} else {
		binary.LittleEndian.PutUint32(tmp[:], v)
	}
	return b.write(tmp[:])
}

func (b *MsgBuffer) writeU64(v uint64, bigEndian bool) error {
	var tmp [8]byte
	if bigEndian {
		binary.BigEndian.PutUint64(tmp[:], v)
	} else {
		binary.LittleEndian.PutUint64(tmp[:], v)
	}
	return b.write(tmp[:])
}

func (b *MsgBuffer) writeU128(v Uint128, bigEndian bool) error {
	var tmp [16]byte
	return b.write(v.appendBytes(tmp[:0], bigEndian))
}

func (b *MsgBuffer) writeF32(v float32, bigEndian bool) error {
	return b.writeU32(math.Float32bits(v), bigEndian)
}

func (b *MsgBuffer) writeF64(v float64, bigEndian bool) error {
	return b.writeU64(math.Float64bits(v), bigEndian)
}

func stringLenField(s string, field string) (uint16, error) {
	// The length prefix counts the null terminator.
	if len(s)+1 > 0xFFFF {
		return 0, &RangeError{Field: field, Min: 0, Max: 0xFFFE, Actual: int64(len(s))}
	}
	return uint16(len(s) + 1), nil
}

// writeVarName writes the 2 byte length prefix followed by the null
// terminated name.
func (b *MsgBuffer) writeVarName(name string, bigEndian bool) error {
	nameLen, err := stringLenField(name, "variable name length")
	if err != nil {
		return err
	}
	if err := b.writeU16(nameLen, bigEndian); err != nil {
		return err
	}
	if err := b.write([]byte(name)); err != nil {
		return err
	}
	return b.writeByte(0)
}

// writeVarNameAndUnit writes both length prefixes followed by the null
// terminated name and unit.
func (b *MsgBuffer) writeVarNameAndUnit(name, unit string, bigEndian bool) error {
	nameLen, err := stringLenField(name, "variable name length")
	if err != nil {
		return err
	}
	unitLen, err := stringLenField(unit, "variable unit length")
	if err != nil {
		return err
	}
	if err := b.writeU16(nameLen, bigEndian); err != nil {
		return err
	}
	if err := b.writeU16(unitLen, bigEndian); err != nil {
		return err
	}
	if err := b.write([]byte(name)); err != nil {
		return err
	}
	if err := b.writeByte(0); err != nil {
		return err
	}
	if err := b.write([]byte(unit)); err != nil {
		return err
	}
	return b.writeByte(0)
}
