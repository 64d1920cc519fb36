package dlt

// Integer verbose values. Each width is its own variant carrying an
// optional name/unit pair and an optional linear scaling.

type I8Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingI32
	Value   int8
}

type I16Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingI32
	Value   int16
}

type I32Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingI32
	Value   int32
}

type I64Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingI64
	Value   int64
}

type I128Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingI128
	Value   Int128
}

type U8Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingU32
	Value   uint8
}

type U16Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingU32
	Value   uint16
}

type U32Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingU32
	Value   uint32
}

type U64Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingU64
	Value   uint64
}

type U128Value struct {
	VarInfo *VariableInfo
	Scaling *ScalingU128
	Value   Uint128
}

func decodeInteger(ti [4]byte, s *fieldSlicer, signed bool) (Value, []byte, error) {
	var mask0 uint8 = 0b1011_0000
	if signed {
		mask0 = 0b1101_0000
	}
	const mask1 = 0b1110_0110
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}
	typeLen := ti[0] & tiTypeLenMask
	if typeLen < typeLen8Bit || typeLen > typeLen128Bit {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	if ti[1]&tiArray != 0 {
		if signed {
			return decodeArray(ti, s, ArrayElemI8+ArrayElemKind(typeLen-1))
		}
		return decodeArray(ti, s, ArrayElemU8+ArrayElemKind(typeLen-1))
	}

	var varInfo *VariableInfo
	if ti[1]&tiVarInfo != 0 {
		name, unit, err := s.readVarNameAndUnit()
		if err != nil {
			return nil, nil, err
		}
		varInfo = &VariableInfo{Name: name, Unit: unit}
	}
	hasScaling := ti[1]&tiFixedPoint != 0

	readScaling32 := func() (quantization float32, offset uint32, err error) {
		if quantization, err = s.readF32(); err != nil {
			return
		}
		offset, err = s.readU32()
		return
	}

	if signed {
		switch typeLen {
		case typeLen8Bit:
			v := I8Value{VarInfo: varInfo}
			if hasScaling {
				q, o, err := readScaling32()
				if err != nil {
					return nil, nil, err
				}
				v.Scaling = &ScalingI32{Quantization: q, Offset: int32(o)}
			}
			raw, err := s.readU8()
			if err != nil {
				return nil, nil, err
			}
			v.Value = int8(raw)
			return v, s.rest, nil
		case typeLen16Bit:
			v := I16Value{VarInfo: varInfo}
			if hasScaling {
				q, o, err := readScaling32()
				if err != nil {
					return nil, nil, err
				}
				v.Scaling = &ScalingI32{Quantization: q, Offset: int32(o)}
			}
			raw, err := s.readU16()
			if err != nil {
				return nil, nil, err
			}
			v.Value = int16(raw)
			return v, s.rest, nil
		case typeLen32Bit:
			v := I32Value{VarInfo: varInfo}
			if hasScaling {
				q, o, err := readScaling32()
				if err != nil {
					return nil, nil, err
				}
				v.Scaling = &ScalingI32{Quantization: q, Offset: int32(o)}
			}
			raw, err := s.readU32()
			if err != nil {
				return nil, nil, err
			}
			v.Value = int32(raw)
			return v, s.rest, nil
		case typeLen64Bit:
			v := I64Value{VarInfo: varInfo}
			if hasScaling {
				q, err := s.readF32()
				if err != nil {
					return nil, nil, err
				}
				o, err := s.readU64()
				if err != nil {
					return nil, nil, err
				}
				v.Scaling = &ScalingI64{Quantization: q, Offset: int64(o)}
			}
			raw, err := s.readU64()
			if err != nil {
				return nil, nil, err
			}
			v.Value = int64(raw)
			return v, s.rest, nil
		default:
			v := I128Value{VarInfo: varInfo}
			if hasScaling {
				q, err := s.readF32()
				if err != nil {
					return nil, nil, err
				}
				o, err := s.readU128()
				if err != nil {
					return nil, nil, err
				}
				v.Scaling = &ScalingI128{Quantization: q, Offset: Int128{Hi: int64(o.Hi), Lo: o.Lo}}
			}
			raw, err := s.readU128()
			if err != nil {
				return nil, nil, err
			}
			v.Value = Int128{Hi: int64(raw.Hi), Lo: raw.Lo}
			return v, s.rest, nil
		}
	}

	switch typeLen {
	case typeLen8Bit:
		v := U8Value{VarInfo: varInfo}
		if hasScaling {
			q, o, err := readScaling32()
			if err != nil {
				return nil, nil, err
			}
			v.Scaling = &ScalingU32{Quantization: q, Offset: o}
		}
		raw, err := s.readU8()
		if err != nil {
			return nil, nil, err
		}
		v.Value = raw
		return v, s.rest, nil
	case typeLen16Bit:
		v := U16Value{VarInfo: varInfo}
		if hasScaling {
			q, o, err := readScaling32()
			if err != nil {
				return nil, nil, err
			}
			v.Scaling = &ScalingU32{Quantization: q, Offset: o}
		}
		raw, err := s.readU16()
		if err != nil {
			return nil, nil, err
		}
		v.Value = raw
		return v, s.rest, nil
	case typeLen32Bit:
		v := U32Value{VarInfo: varInfo}
		if hasScaling {
			q, o, err := readScaling32()
			if err != nil {
				return nil, nil, err
			}
			v.Scaling = &ScalingU32{Quantization: q, Offset: o}
		}
		raw, err := s.readU32()
		if err != nil {
			return nil, nil, err
		}
		v.Value = raw
		return v, s.rest, nil
	case typeLen64Bit:
		v := U64Value{VarInfo: varInfo}
		if hasScaling {
			q, err := s.readF32()
			if err != nil {
				return nil, nil, err
			}
			o, err := s.readU64()
			if err != nil {
				return nil, nil, err
			}
			v.Scaling = &ScalingU64{Quantization: q, Offset: o}
		}
		raw, err := s.readU64()
		if err != nil {
			return nil, nil, err
		}
		v.Value = raw
		return v, s.rest, nil
	default:
		v := U128Value{VarInfo: varInfo}
		if hasScaling {
			q, err := s.readF32()
			if err != nil {
				return nil, nil, err
			}
			o, err := s.readU128()
			if err != nil {
				return nil, nil, err
			}
			v.Scaling = &ScalingU128{Quantization: q, Offset: o}
		}
		raw, err := s.readU128()
		if err != nil {
			return nil, nil, err
		}
		v.Value = raw
		return v, s.rest, nil
	}
}

// writeNumericPrefix writes the type info and the optional name/unit
// block shared by all scalar numeric encodings.
func (b *MsgBuffer) writeNumericPrefix(ti0 uint8, varInfo *VariableInfo, hasScaling bool, bigEndian bool) error {
	ti1 := uint8(0)
	if varInfo != nil {
		ti1 |= tiVarInfo
	}
	if hasScaling {
		ti1 |= tiFixedPoint
	}
	if err := b.write([]byte{ti0, ti1, 0, 0}); err != nil {
		return err
	}
	if varInfo != nil {
		return b.writeVarNameAndUnit(varInfo.Name, varInfo.Unit, bigEndian)
	}
	return nil
}

func (v I8Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiSigned|typeLen8Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(uint32(v.Scaling.Offset), bigEndian); err != nil {
				return err
			}
		}
		return buf.writeByte(byte(v.Value))
	})
}

func (v I16Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiSigned|typeLen16Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(uint32(v.Scaling.Offset), bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU16(uint16(v.Value), bigEndian)
	})
}

func (v I32Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiSigned|typeLen32Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(uint32(v.Scaling.Offset), bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU32(uint32(v.Value), bigEndian)
	})
}

func (v I64Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiSigned|typeLen64Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU64(uint64(v.Scaling.Offset), bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU64(uint64(v.Value), bigEndian)
	})
}

func (v I128Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiSigned|typeLen128Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			offset := Uint128{Hi: uint64(v.Scaling.Offset.Hi), Lo: v.Scaling.Offset.Lo}
			if err := buf.writeU128(offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU128(Uint128{Hi: uint64(v.Value.Hi), Lo: v.Value.Lo}, bigEndian)
	})
}

func (v U8Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiUnsigned|typeLen8Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(v.Scaling.Offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeByte(v.Value)
	})
}

func (v U16Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiUnsigned|typeLen16Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(v.Scaling.Offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU16(v.Value, bigEndian)
	})
}

func (v U32Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiUnsigned|typeLen32Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU32(v.Scaling.Offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU32(v.Value, bigEndian)
	})
}

func (v U64Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiUnsigned|typeLen64Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU64(v.Scaling.Offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU64(v.Value, bigEndian)
	})
}

func (v U128Value) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.writeNumericPrefix(tiUnsigned|typeLen128Bit, v.VarInfo, v.Scaling != nil, bigEndian); err != nil {
			return err
		}
		if v.Scaling != nil {
			if err := buf.writeF32(v.Scaling.Quantization, bigEndian); err != nil {
				return err
			}
			if err := buf.writeU128(v.Scaling.Offset, bigEndian); err != nil {
				return err
			}
		}
		return buf.writeU128(v.Value, bigEndian)
	})
}
