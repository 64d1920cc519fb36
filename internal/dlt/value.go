package dlt

// Type info bit layout. Byte 0 carries the length code in its low nibble
// and one category flag; byte 1 carries the structural flags. Categories
// are mutually exclusive, a pattern mixing them is invalid.
const (
	tiTypeLenMask = 0b0000_1111

	tiBool     = 0b0001_0000
	tiSigned   = 0b0010_0000
	tiUnsigned = 0b0100_0000
	tiFloat    = 0b1000_0000

	tiArray      = 0b0000_0001
	tiString     = 0b0000_0010
	tiRaw        = 0b0000_0100
	tiVarInfo    = 0b0000_1000
	tiFixedPoint = 0b0001_0000
	tiTraceInfo  = 0b0010_0000
	tiStruct     = 0b0100_0000

	typeLen8Bit   = 1
	typeLen16Bit  = 2
	typeLen32Bit  = 3
	typeLen64Bit  = 4
	typeLen128Bit = 5
)

// VariableInfo is the optional name and unit attached to a numeric
// verbose value.
type VariableInfo struct {
	Name string
	Unit string
}

// Scaling attaches a linear mapping (value*quantization + offset) to an
// integer verbose value. The offset is stored at the value's own width on
// the wire for 64 and 128 bit values, and at 32 bits otherwise.
type ScalingI32 struct {
	Quantization float32
	Offset       int32
}

type ScalingI64 struct {
	Quantization float32
	Offset       int64
}

type ScalingI128 struct {
	Quantization float32
	Offset       Int128
}

type ScalingU32 struct {
	Quantization float32
	Offset       uint32
}

type ScalingU64 struct {
	Quantization float32
	Offset       uint64
}

type ScalingU128 struct {
	Quantization float32
	Offset       Uint128
}

// Value is one decoded verbose argument. Every variant can write its wire
// encoding into a MsgBuffer; the write fails with a CapacityError and
// leaves the buffer untouched when there is not enough room.
type Value interface {
	AddToMsg(buf *MsgBuffer, bigEndian bool) error
}

// DecodeValue decodes one verbose value from the start of buf and returns
// the remaining bytes after it.
func DecodeValue(buf []byte, bigEndian bool) (Value, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, &UnexpectedEndOfSliceError{
			Layer:       LayerVerboseTypeInfo,
			MinimumSize: 4,
			ActualSize:  len(buf),
		}
	}
	ti := [4]byte{buf[0], buf[1], buf[2], buf[3]}
	s := &fieldSlicer{rest: buf[4:], offset: 4, bigEndian: bigEndian}

	// Categories are checked in a fixed priority order; within the matched
	// category every flag belonging to another category must be clear.
	switch {
	case ti[0]&tiBool != 0:
		return decodeBool(ti, s)
	case ti[0]&tiSigned != 0:
		return decodeInteger(ti, s, true)
	case ti[0]&tiUnsigned != 0:
		return decodeInteger(ti, s, false)
	case ti[0]&tiFloat != 0:
		return decodeFloat(ti, s)
	case ti[1]&tiArray != 0:
		// An array flag without a category in byte 0 does not identify an
		// element type.
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	case ti[1]&tiString != 0:
		return decodeString(ti, s)
	case ti[1]&tiRaw != 0:
		return decodeRaw(ti, s)
	case ti[1]&tiTraceInfo != 0:
		return decodeTraceInfo(ti, s)
	case ti[1]&tiStruct != 0:
		return decodeStruct(ti, s)
	default:
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}
}

func contradicts(ti [4]byte, mask0, mask1 uint8) bool {
	return ti[0]&mask0 != 0 || ti[1]&mask1 != 0 || ti[2] != 0 || ti[3] != 0
}
