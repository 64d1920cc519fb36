package dlt

import "github.com/x448/float16"

// Float verbose values. Floats carry no scaling; the fixed point flag is
// a contradiction for this category.

type F16Value struct {
	VarInfo *VariableInfo
	Value   float16.Float16
}

type F32Value struct {
	VarInfo *VariableInfo
	Value   float32
}

type F64Value struct {
	VarInfo *VariableInfo
	Value   float64
}

type F128Value struct {
	VarInfo *VariableInfo
	Value   Float128
}

func decodeFloat(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b0111_0000
	const mask1 = 0b1111_0110
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}
	typeLen := ti[0] & tiTypeLenMask
	if typeLen < typeLen16Bit || typeLen > typeLen128Bit {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	if ti[1]&tiArray != 0 {
		return decodeArray(ti, s, ArrayElemF16+ArrayElemKind(typeLen-typeLen16Bit))
	}

	var varInfo *VariableInfo
	if ti[1]&tiVarInfo != 0 {
		name, unit, err := s.readVarNameAndUnit()
		if err != nil {
			return nil, nil, err
		}
		varInfo = &VariableInfo{Name: name, Unit: unit}
	}

	switch typeLen {
	case typeLen16Bit:
		value, err := s.readF16()
		if err != nil {
			return nil, nil, err
		}
		return F16Value{VarInfo: varInfo, Value: value}, s.rest, nil
	case typeLen32Bit:
		value, err := s.readF32()
		if err != nil {
			return nil, nil, err
		}
		return F32Value{VarInfo: varInfo, Value: value}, s.rest, nil
	case typeLen64Bit:
		value, err := s.readF64()
		if err != nil {
			return nil, nil, err
		}
		return F64Value{VarInfo: varInfo, Value: value}, s.rest, nil
	default:
		value, err := s.readF128()
		if err != nil {
			return nil, nil, err
		}
		return F128Value{VarInfo: varInfo, Value: value}, s.rest, nil
	}
}

func (v F16Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiFloat|typeLen16Bit, v.VarInfo, false, bigEndian); err != nil {
			return err
		}
		return buf.writeU16(v.Value.Bits(), bigEndian)
	})
}

func (v F32Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiFloat|typeLen32Bit, v.VarInfo, false, bigEndian); err != nil {
			return err
		}
		return buf.writeF32(v.Value, bigEndian)
	})
}

func (v F64Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiFloat|typeLen64Bit, v.VarInfo, false, bigEndian); err != nil {
			return err
		}
		return buf.writeF64(v.Value, bigEndian)
	})
}

func (v F128Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiFloat|typeLen128Bit, v.VarInfo, false, bigEndian); err != nil {
			return err
		}
		return buf.writeU128(Uint128{Hi: v.Value.Hi, Lo: v.Value.Lo}, bigEndian)
	})
}
