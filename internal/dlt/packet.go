package dlt

import "encoding/binary"

// PacketSlice is a view over the bytes of exactly one message (header plus
// payload). It borrows from the buffer handed to ParsePacket and never
// copies payload bytes; the buffer must stay alive and unmodified for as
// long as the slice or anything derived from it is used.
type PacketSlice struct {
	slice     []byte
	headerLen int
}

// ParsePacket validates the start of buf as one complete message and
// returns a slice over exactly that message. The buffer may extend past
// the message. The declared length must cover the header and the 4 byte
// minimum payload.
func ParsePacket(buf []byte) (PacketSlice, error) {
	if len(buf) < BaseHeaderSize {
		return PacketSlice{}, &UnexpectedEndOfSliceError{
			Layer:       LayerHeader,
			MinimumSize: BaseHeaderSize,
			ActualSize:  len(buf),
		}
	}
	headerType := buf[0]
	version := (headerType >> versionShift) & versionMask
	if version != 0 && version != 1 {
		return PacketSlice{}, &UnsupportedVersionError{Version: version}
	}

	length := int(binary.BigEndian.Uint16(buf[2:4]))
	if len(buf) < length {
		return PacketSlice{}, &UnexpectedEndOfSliceError{
			Layer:       LayerHeader,
			MinimumSize: length,
			ActualSize:  len(buf),
		}
	}

	headerLen := headerLenFromFlags(headerType)
	if length < headerLen+minPayloadSize {
		return PacketSlice{}, &MessageLengthTooSmallError{
			RequiredLength: headerLen + minPayloadSize,
			ActualLength:   length,
		}
	}

	return PacketSlice{slice: buf[:length], headerLen: headerLen}, nil
}

// Slice returns the message bytes (header plus payload).
func (p *PacketSlice) Slice() []byte {
	return p.slice
}

// HeaderLen returns the serialized header size of the message.
func (p *PacketSlice) HeaderLen() int {
	return p.headerLen
}

// HasExtendedHeader reports whether the extended header flag is set.
func (p *PacketSlice) HasExtendedHeader() bool {
	return p.slice[0]&flagExtendedHeader != 0
}

// IsBigEndian reports whether payload values are encoded big endian.
func (p *PacketSlice) IsBigEndian() bool {
	return p.slice[0]&flagBigEndian != 0
}

// IsVerbose reports whether the message carries self describing verbose
// arguments. Messages without an extended header are never verbose.
func (p *PacketSlice) IsVerbose() bool {
	if !p.HasExtendedHeader() {
		return false
	}
	return p.slice[p.headerLen-extendedHeaderSize]&messageInfoVerboseFlag != 0
}

// ExtendedHeader decodes the extended header if present.
func (p *PacketSlice) ExtendedHeader() (ExtendedHeader, bool) {
	if !p.HasExtendedHeader() {
		return ExtendedHeader{}, false
	}
	ext := p.slice[p.headerLen-extendedHeaderSize : p.headerLen]
	h := ExtendedHeader{
		MessageInfo:       MessageInfo(ext[0]),
		NumberOfArguments: ext[1],
	}
	copy(h.ApplicationID[:], ext[2:6])
	copy(h.ContextID[:], ext[6:10])
	return h, true
}

// MessageType decodes the message type from the extended header. The
// second return value is false when no extended header is present or the
// message info byte is a reserved pattern.
func (p *PacketSlice) MessageType() (MessageType, bool) {
	if !p.HasExtendedHeader() {
		return MessageType{}, false
	}
	return MessageTypeFromByte(p.slice[p.headerLen-extendedHeaderSize])
}

// Header decodes the full header of the message.
func (p *PacketSlice) Header() Header {
	// Cannot fail, ParsePacket already validated the same bytes.
	h, _ := ParseHeader(p.slice)
	return h
}

// Payload returns the message bytes after the header.
func (p *PacketSlice) Payload() []byte {
	return p.slice[p.headerLen:]
}

// MessageID returns the message id of a non verbose message. The second
// return value is false for verbose messages.
func (p *PacketSlice) MessageID() (uint32, bool) {
	if p.IsVerbose() {
		return 0, false
	}
	return p.messageID(), true
}

func (p *PacketSlice) messageID() uint32 {
	id := p.slice[p.headerLen : p.headerLen+4]
	if p.IsBigEndian() {
		return binary.BigEndian.Uint32(id)
	}
	return binary.LittleEndian.Uint32(id)
}

// MessageIDAndPayload returns the message id and the payload bytes after
// it for a non verbose message. The last return value is false for
// verbose messages.
func (p *PacketSlice) MessageIDAndPayload() (uint32, []byte, bool) {
	if p.IsVerbose() {
		return 0, nil, false
	}
	return p.messageID(), p.slice[p.headerLen+4:], true
}

// NonVerbosePayload returns the payload bytes after the message id of a
// non verbose message.
func (p *PacketSlice) NonVerbosePayload() ([]byte, bool) {
	if p.IsVerbose() {
		return nil, false
	}
	return p.slice[p.headerLen+4:], true
}

// VerboseIter returns an iterator over the verbose arguments of a verbose
// message. The second return value is false for non verbose messages.
func (p *PacketSlice) VerboseIter() (*Iter, bool) {
	if !p.IsVerbose() {
		return nil, false
	}
	argCount := p.slice[p.headerLen-extendedHeaderSize+1]
	return NewIter(p.IsBigEndian(), uint16(argCount), p.Payload()), true
}

// TypedPayload classifies the payload into one of the verbose or non
// verbose payload kinds based on the extended header.
func (p *PacketSlice) TypedPayload() (TypedPayload, error) {
	if p.HasExtendedHeader() {
		ext := p.slice[p.headerLen-extendedHeaderSize : p.headerLen]
		info := MessageInfo(ext[0])
		msgType, ok := info.MessageType()
		if !ok {
			return nil, &UnknownMessageInfoError{MessageInfo: uint8(info)}
		}
		if info.IsVerbose() {
			iter := NewIter(p.IsBigEndian(), uint16(ext[1]), p.Payload())
			switch msgType.Kind {
			case KindLog:
				return LogVPayload{LogLevel: LogLevel(msgType.Subtype), Iter: iter}, nil
			case KindTrace:
				return TraceVPayload{TraceType: TraceType(msgType.Subtype), Iter: iter}, nil
			case KindNetworkTrace:
				return NetworkVPayload{NetType: NetworkTraceType(msgType.Subtype), Iter: iter}, nil
			default:
				return ControlVPayload{ControlType: ControlType(msgType.Subtype), Iter: iter}, nil
			}
		}
		id := p.messageID()
		rest := p.slice[p.headerLen+4:]
		switch msgType.Kind {
		case KindLog:
			return LogNvPayload{LogLevel: LogLevel(msgType.Subtype), MessageID: id, Payload: rest}, nil
		case KindTrace:
			return TraceNvPayload{TraceType: TraceType(msgType.Subtype), MessageID: id, Payload: rest}, nil
		case KindNetworkTrace:
			return NetworkNvPayload{NetType: NetworkTraceType(msgType.Subtype), MessageID: id, Payload: rest}, nil
		default:
			return ControlNvPayload{ControlType: ControlType(msgType.Subtype), ServiceID: id, Payload: rest}, nil
		}
	}
	// No extended header, the message is non verbose by definition.
	return UnknownNvPayload{MessageID: p.messageID(), Payload: p.slice[p.headerLen+4:]}, nil
}
