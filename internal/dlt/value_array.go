package dlt

import "math/bits"

// ArrayElemKind identifies the element type of a verbose array.
type ArrayElemKind uint8

const (
	ArrayElemBool ArrayElemKind = iota
	ArrayElemI8
	ArrayElemI16
	ArrayElemI32
	ArrayElemI64
	ArrayElemI128
	ArrayElemU8
	ArrayElemU16
	ArrayElemU32
	ArrayElemU64
	ArrayElemU128
	ArrayElemF16
	ArrayElemF32
	ArrayElemF64
	ArrayElemF128
)

// ElementSize returns the wire size of one element in bytes.
func (k ArrayElemKind) ElementSize() int {
	switch k {
	case ArrayElemBool, ArrayElemI8, ArrayElemU8:
		return 1
	case ArrayElemI16, ArrayElemU16, ArrayElemF16:
		return 2
	case ArrayElemI32, ArrayElemU32, ArrayElemF32:
		return 4
	case ArrayElemI64, ArrayElemU64, ArrayElemF64:
		return 8
	default:
		return 16
	}
}

// typeInfo0 returns byte 0 of the type info for an array of this kind.
func (k ArrayElemKind) typeInfo0() uint8 {
	switch k {
	case ArrayElemBool:
		return tiBool | typeLen8Bit
	case ArrayElemI8, ArrayElemI16, ArrayElemI32, ArrayElemI64, ArrayElemI128:
		return tiSigned | uint8(typeLen8Bit+k-ArrayElemI8)
	case ArrayElemU8, ArrayElemU16, ArrayElemU32, ArrayElemU64, ArrayElemU128:
		return tiUnsigned | uint8(typeLen8Bit+k-ArrayElemU8)
	default:
		return tiFloat | uint8(typeLen16Bit+k-ArrayElemF16)
	}
}

// scalable reports whether the kind may carry a fixed point scaling.
func (k ArrayElemKind) scalable() bool {
	return k >= ArrayElemI8 && k <= ArrayElemU128
}

func (k ArrayElemKind) signed() bool {
	return k >= ArrayElemI8 && k <= ArrayElemI128
}

// ArrayScaling is the linear scaling of an integer array. The offset is
// written at the element width on the wire and kept sign extended here.
type ArrayScaling struct {
	Quantization float32
	Offset       Int128
}

// ArrayValue is a verbose multi dimensional array. Data holds the raw
// element bytes exactly as on the wire (endianness per the enclosing
// message) and borrows from the decode input.
type ArrayValue struct {
	ElemKind   ArrayElemKind
	Dimensions []uint16
	VarInfo    *VariableInfo
	Scaling    *ArrayScaling
	Data       []byte
}

// ElementCount multiplies all dimensions, rejecting overflow.
func (v ArrayValue) ElementCount() (uint64, error) {
	count := uint64(1)
	for _, d := range v.Dimensions {
		hi, lo := bits.Mul64(count, uint64(d))
		if hi != 0 {
			return 0, ErrArrayDimensionsOverflow
		}
		count = lo
	}
	return count, nil
}

func decodeArray(ti [4]byte, s *fieldSlicer, kind ArrayElemKind) (Value, []byte, error) {
	dims, err := s.readArrayDimensions()
	if err != nil {
		return nil, nil, err
	}
	v := ArrayValue{ElemKind: kind, Dimensions: dims}

	if ti[1]&tiVarInfo != 0 {
		name, unit, err := s.readVarNameAndUnit()
		if err != nil {
			return nil, nil, err
		}
		v.VarInfo = &VariableInfo{Name: name, Unit: unit}
	}

	if ti[1]&tiFixedPoint != 0 {
		quantization, err := s.readF32()
		if err != nil {
			return nil, nil, err
		}
		offset, err := s.readScalingOffset(kind)
		if err != nil {
			return nil, nil, err
		}
		v.Scaling = &ArrayScaling{Quantization: quantization, Offset: offset}
	}

	count, err := v.ElementCount()
	if err != nil {
		return nil, nil, err
	}
	hi, byteLen := bits.Mul64(count, uint64(kind.ElementSize()))
	if hi != 0 || byteLen > uint64(int(^uint(0)>>1)) {
		return nil, nil, ErrArrayDimensionsOverflow
	}
	v.Data, err = s.readRaw(int(byteLen))
	if err != nil {
		return nil, nil, err
	}
	return v, s.rest, nil
}

// readScalingOffset reads a scaling offset at the element width, sign
// extending it for signed kinds.
func (s *fieldSlicer) readScalingOffset(kind ArrayElemKind) (Int128, error) {
	switch kind.ElementSize() {
	case 1, 2, 4:
		raw, err := s.readU32()
		if err != nil {
			return Int128{}, err
		}
		if kind.signed() {
			v := int64(int32(raw))
			return Int128{Hi: v >> 63, Lo: uint64(v)}, nil
		}
		return Int128{Lo: uint64(raw)}, nil
	case 8:
		raw, err := s.readU64()
		if err != nil {
			return Int128{}, err
		}
		if kind.signed() {
			v := int64(raw)
			return Int128{Hi: v >> 63, Lo: uint64(v)}, nil
		}
		return Int128{Lo: raw}, nil
	default:
		raw, err := s.readU128()
		if err != nil {
			return Int128{}, err
		}
		return Int128{Hi: int64(raw.Hi), Lo: raw.Lo}, nil
	}
}

func (v ArrayValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		ti0 := v.ElemKind.typeInfo0()
		ti1 := uint8(tiArray)
		if v.VarInfo != nil {
			ti1 |= tiVarInfo
		}
		if v.Scaling != nil {
			if !v.ElemKind.scalable() {
				return &InvalidTypeInfoError{TypeInfo: [4]byte{ti0, ti1 | tiFixedPoint, 0, 0}}
			}
			ti1 |= tiFixedPoint
		}
		if err := buf.write([]byte{ti0, ti1, 0, 0}); err != nil {
			return err
		}
		if len(v.Dimensions) > 0xFFFF {
			return &RangeError{Field: "array dimension count", Min: 0, Max: 0xFFFF, Actual: int64(len(v.Dimensions))}
		}
		if err := buf.writeU16(uint16(len(v.Dimensions)), bigEndian); err != nil {
			return err
		}
		for _, d := range v.Dimensions {
			if err := buf.writeU16(d, bigEndian); err != nil {
				return err
			}
		}
		if v.VarInfo != nil {
			if err := buf.writeVarNameAndUnit(v.VarInfo.Name, v.VarInfo.Unit, bigEndian); err != nil {
				return err
			}
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			switch v.ElemKind.ElementSize() {
			case 1, 2, 4:
				if err := buf.writeU32(uint32(v.Scaling.Offset.Lo), bigEndian); err != nil {
					return err
				}
			case 8:
				if err := buf.writeU64(v.Scaling.Offset.Lo, bigEndian); err != nil {
					return err
				}
			default:
				offset := Uint128{Hi: uint64(v.Scaling.Offset.Hi), Lo: v.Scaling.Offset.Lo}
				if err := buf.writeU128(offset, bigEndian); err != nil {
					return err
				}
			}
		}
		return buf.write(v.Data)
	})
}
