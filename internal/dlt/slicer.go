package dlt

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/x448/float16"
)

// Uint128 is a 128 bit unsigned integer split into two 64 bit halves.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Int128 is a 128 bit signed integer. Hi carries the sign.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Float128 holds the raw bits of an IEEE 754 quadruple precision float.
// Go has no native 128 bit float type, so the value is kept as bits.
type Float128 struct {
	Hi uint64
	Lo uint64
}

func uint128FromBytes(b []byte, bigEndian bool) Uint128 {
	if bigEndian {
		return Uint128{
			Hi: binary.BigEndian.Uint64(b[0:8]),
			Lo: binary.BigEndian.Uint64(b[8:16]),
		}
	}
	return Uint128{
		Hi: binary.LittleEndian.Uint64(b[8:16]),
		Lo: binary.LittleEndian.Uint64(b[0:8]),
	}
}

func (v Uint128) appendBytes(dst []byte, bigEndian bool) []byte {
	if bigEndian {
		dst = binary.BigEndian.AppendUint64(dst, v.Hi)
		return binary.BigEndian.AppendUint64(dst, v.Lo)
	}
	dst = binary.LittleEndian.AppendUint64(dst, v.Lo)
	return binary.LittleEndian.AppendUint64(dst, v.Hi)
}

// fieldSlicer is a bounds checked cursor over the data following a type
// info field. The offset counts bytes consumed since the start of the
// value so end-of-slice errors report absolute positions.
type fieldSlicer struct {
	rest      []byte
	offset    int
	bigEndian bool
}

func (s *fieldSlicer) need(n int) error {
	if len(s.rest) < n {
		return &UnexpectedEndOfSliceError{
			Layer:       LayerVerboseValue,
			MinimumSize: s.offset + n,
			ActualSize:  s.offset + len(s.rest),
		}
	}
	return nil
}

func (s *fieldSlicer) advance(n int) []byte {
	b := s.rest[:n]
	s.rest = s.rest[n:]
	s.offset += n
	return b
}

func (s *fieldSlicer) readU8() (uint8, error) {
	if err := s.need(1); err != nil {
		return 0, err
	}
	return s.advance(1)[0], nil
}

func (s *fieldSlicer) readU16() (uint16, error) {
	if err := s.need(2); err != nil {
		return 0, err
	}
	b := s.advance(2)
	if s.bigEndian {
		return binary.BigEndian.Uint16(b), nil
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *fieldSlicer) readU32() (uint32, error) {
	if err := s.need(4); err != nil {
		return 0, err
	}
	b := s.advance(4)
	if s.bigEndian {
		return binary.BigEndian.Uint32(b), nil
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *fieldSlicer) readU64() (uint64, error) {
	if err := s.need(8); err != nil {
		return 0, err
	}
	b := s.advance(8)
	if s.bigEndian {
		return binary.BigEndian.Uint64(b), nil
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (s *fieldSlicer) readU128() (Uint128, error) {
	if err := s.need(16); err != nil {
		return Uint128{}, err
	}
	return uint128FromBytes(s.advance(16), s.bigEndian), nil
}

func (s *fieldSlicer) readF16() (float16.Float16, error) {
	bits, err := s.readU16()
	if err != nil {
		return 0, err
	}
	return float16.Frombits(bits), nil
}

func (s *fieldSlicer) readF32() (float32, error) {
	bits, err := s.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (s *fieldSlicer) readF64() (float64, error) {
	bits, err := s.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (s *fieldSlicer) readF128() (Float128, error) {
	bits, err := s.readU128()
	if err != nil {
		return Float128{}, err
	}
	return Float128{Hi: bits.Hi, Lo: bits.Lo}, nil
}

func (s *fieldSlicer) readRaw(n int) ([]byte, error) {
	if err := s.need(n); err != nil {
		return nil, err
	}
	return s.advance(n), nil
}

func checkTerminatedString(raw []byte, field string) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	if raw[len(raw)-1] != 0 {
		return "", &StringTerminationError{Field: field}
	}
	content := raw[:len(raw)-1]
	if !utf8.Valid(content) {
		return "", &InvalidUTF8Error{Field: field}
	}
	return string(content), nil
}

// readVarName reads a 2 byte length prefixed, null terminated name.
func (s *fieldSlicer) readVarName() (string, error) {
	nameLen, err := s.readU16()
	if err != nil {
		return "", err
	}
	raw, err := s.readRaw(int(nameLen))
	if err != nil {
		return "", err
	}
	return checkTerminatedString(raw, "variable name")
}

// readVarNameAndUnit reads the two 2 byte length prefixes followed by the
// null terminated name and unit strings.
func (s *fieldSlicer) readVarNameAndUnit() (string, string, error) {
	if err := s.need(4); err != nil {
		return "", "", err
	}
	lens := s.advance(4)
	var nameLen, unitLen int
	if s.bigEndian {
		nameLen = int(binary.BigEndian.Uint16(lens[0:2]))
		unitLen = int(binary.BigEndian.Uint16(lens[2:4]))
	} else {
		nameLen = int(binary.LittleEndian.Uint16(lens[0:2]))
		unitLen = int(binary.LittleEndian.Uint16(lens[2:4]))
	}
	if err := s.need(nameLen + unitLen); err != nil {
		return "", "", err
	}
	name, err := checkTerminatedString(s.advance(nameLen), "variable name")
	if err != nil {
		return "", "", err
	}
	unit, err := checkTerminatedString(s.advance(unitLen), "variable unit")
	if err != nil {
		return "", "", err
	}
	return name, unit, nil
}

// readArrayDimensions reads the dimension count followed by one 16 bit
// size per dimension.
func (s *fieldSlicer) readArrayDimensions() ([]uint16, error) {
	numDims, err := s.readU16()
	if err != nil {
		return nil, err
	}
	byteLen := int(numDims) * 2
	if len(s.rest) < byteLen {
		return nil, &UnexpectedEndOfSliceError{
			Layer:       LayerVerboseTypeInfo,
			MinimumSize: s.offset + byteLen,
			ActualSize:  s.offset + len(s.rest),
		}
	}
	raw := s.advance(byteLen)
	dims := make([]uint16, numDims)
	for i := range dims {
		if s.bigEndian {
			dims[i] = binary.BigEndian.Uint16(raw[i*2:])
		} else {
			dims[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
	}
	return dims, nil
}
