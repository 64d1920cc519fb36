package dlt

import "math/bits"

// StructValue is a verbose struct argument holding a fixed number of
// nested verbose values.
type StructValue struct {
	Name    *string
	Entries []Value
}

func decodeStruct(ti [4]byte, s *fieldSlicer) (Value, []byte, error) {
	const mask0 = 0b1111_1111
	const mask1 = 0b1011_0111
	if contradicts(ti, mask0, mask1) {
		return nil, nil, &InvalidTypeInfoError{TypeInfo: ti}
	}

	entryCount, err := s.readU16()
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

	// Every entry needs at least a type info field; reject counts whose
	// minimum data length cannot be represented.
	hi, minLen := bits.Mul64(uint64(entryCount), 4)
	if hi != 0 || minLen > uint64(int(^uint(0)>>1)) {
		return nil, nil, ErrStructDataLengthOverflow
	}
	if len(s.rest) < int(minLen) {
		return nil, nil, &UnexpectedEndOfSliceError{
			Layer:       LayerVerboseValue,
			MinimumSize: s.offset + int(minLen),
			ActualSize:  s.offset + len(s.rest),
		}
	}

	entries := make([]Value, 0, entryCount)
	rest := s.rest
	consumedBefore := len(rest)
	for i := 0; i < int(entryCount); i++ {
		var entry Value
		entry, rest, err = DecodeValue(rest, s.bigEndian)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}
	s.advance(consumedBefore - len(rest))
	return StructValue{Name: name, Entries: entries}, s.rest, nil
}

func (v StructValue) AddToMsg(buf *MsgBuffer, bigEndian bool) error {
	return buf.writeAtomic(func() error {
		ti1 := uint8(tiStruct)
		if v.Name != nil {
			ti1 |= tiVarInfo
		}
		if err := buf.write([]byte{0, ti1, 0, 0}); err != nil {
			return err
		}
		if len(v.Entries) > 0xFFFF {
			return &RangeError{Field: "struct entry count", Min: 0, Max: 0xFFFF, Actual: int64(len(v.Entries))}
		}
		if err := buf.writeU16(uint16(len(v.Entries)), bigEndian); err != nil {
			return err
		}
		if v.Name != nil {
			if err := buf.writeVarName(*v.Name, bigEndian); err != nil {
				return err
			}
		}
		for _, entry := range v.Entries {
			if err := entry.AddToMsg(buf, bigEndian); err != nil {
				return err
			}
		}
		return nil
	})
}
