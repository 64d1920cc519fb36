package dlt

// BoolValue is a verbose bool argument with an optional variable name.
type BoolValue struct {
	Name  *string
	Value bool
}

func decodeBool(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b1110_0000
	const mask1 = 0b1111_0110
	if contradicts(ti, mask0, mask1) || ti[0]&tiTypeLenMask != typeLen8Bit {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}
	if ti[1]&tiArray != 0 {
		return decodeArray(ti, s, ArrayElemBool)
	}

	var name *string
	if ti[1]&tiVarInfo != 0 {
		n, err := s.readVarName()
		if err != nil {
			return nil, nil, err
		}
		name = &n
	}
	raw, err := s.readU8()
	if err != nil {
		return nil, nil, err
	}
	switch raw {
	case 0:
		return BoolValue{Name: name}, s.rest, nil
	case 1:
		return BoolValue{Name: name, Value: true}, s.rest, nil
	default:
		return nil, nil, &InvalidBoolValueError{Value: raw}
	}
}

func (v BoolValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		ti1 := uint8(0)
		if v.Name != nil {
			ti1 |= tiVarInfo
		}
		if err := buf.write([]byte{tiBool | typeLen8Bit, ti1, 0, 0}); err != nil {
			return err
		}
		if v.Name != nil {
			if err := buf.writeVarName(*v.Name, bigEndian); err != nil {
				return err
			}
		}
		if v.Value {
			return buf.writeByte(1)
		}
		return buf.writeByte(0)
	})
}

// StringValue is a verbose string argument. The wire form is null
// terminated and length prefixed.
type StringValue struct {
	Name  *string
	Value string
}

func decodeString(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b1111_0000
	const mask1 = 0b0111_0101
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	valueLen, err := s.readU16()
	if err != nil {
		return nil, nil, err
	}
	var name *string
	if ti[1]&tiVarInfo != 0 {
		n, err := s.readVarName()
		if err != nil {
			return nil, nil, err
		}
		name = &n
	}
	raw, err := s.readRaw(int(valueLen))
	if err != nil {
		return nil, nil, err
	}
	value, err := checkTerminatedString(raw, "string value")
	if err != nil {
		return nil, nil, err
	}
	return StringValue{Name: name, Value: value}, s.rest, nil
}

func (v StringValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		ti1 := uint8(tiString)
		if v.Name != nil {
			ti1 |= tiVarInfo
		}
		if err := buf.write([]byte{0, ti1, 0, 0}); err != nil {
			return err
		}
		valueLen, err := stringLenField(v.Value, "string value length")
		if err != nil {
			return err
		}
		if err := buf.writeU16(valueLen, bigEndian); err != nil {
			return err
		}
		if v.Name != nil {
			if err := buf.writeVarName(*v.Name, bigEndian); err != nil {
				return err
			}
		}
		if err := buf.write([]byte(v.Value)); err != nil {
			return err
		}
		return buf.writeByte(0)
	})
}

// TraceInfoValue is a verbose trace info argument (a bare string carrying
// trace context, never named).
type TraceInfoValue struct {
	Value string
}

func decodeTraceInfo(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b1111_1111
	const mask1 = 0b0101_1111
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	valueLen, err := s.readU16()
	if err != nil {
		return nil, nil, err
	}
	raw, err := s.readRaw(int(valueLen))
	if err != nil {
		return nil, nil, err
	}
	value, err := checkTerminatedString(raw, "trace info value")
	if err != nil {
		return nil, nil, err
	}
	return TraceInfoValue{Value: value}, s.rest, nil
}

func (v TraceInfoValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		if err := buf.write([]byte{0, tiTraceInfo, 0, 0}); err != nil {
			return err
		}
		valueLen, err := stringLenField(v.Value, "trace info value length")
		if err != nil {
			return err
		}
		if err := buf.writeU16(valueLen, bigEndian); err != nil {
			return err
		}
		if err := buf.write([]byte(v.Value)); err != nil {
			return err
		}
		return buf.writeByte(0)
	})
}

// RawValue is a verbose raw data argument. Data borrows from the decode
// input.
type RawValue struct {
	Name *string
	Data []byte
}

func decodeRaw(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b1111_0000
	const mask1 = 0b0111_0011
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	dataLen, err := s.readU16()
	if err != nil {
		return nil, nil, err
	}
	var name *string
	if ti[1]&tiVarInfo != 0 {
		n, err := s.readVarName()
		if err != nil {
			return nil, nil, err
		}
		name = &n
	}
	data, err := s.readRaw(int(dataLen))
	if err != nil {
		return nil, nil, err
	}
	return RawValue{Name: name, Data: data}, s.rest, nil
}

func (v RawValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		ti1 := uint8(tiRaw)
		if v.Name != nil {
			ti1 |= tiVarInfo
		}
		if err := buf.write([]byte{0, ti1, 0, 0}); err != nil {
			return err
		}
		if len(v.Data) > 0xFFFF {
			return &RangeError{Field: "raw data length", Min: 0, Max: 0xFFFF, Actual: int64(len(v.Data))}
		}
		if err := buf.writeU16(uint16(len(v.Data)), bigEndian); err != nil {
			return err
		}
		if v.Name != nil {
			if err := buf.writeVarName(*v.Name, bigEndian); err != nil {
				return err
			}
		}
		return buf.write(v.Data)
	})
}
