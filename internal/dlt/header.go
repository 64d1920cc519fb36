package dlt

import (
	"encoding/binary"
	"io"
)

// Base header flag bits in byte 0. Bits 5-7 carry the protocol version.
const (
	flagExtendedHeader = 0b0000_0001
	flagBigEndian      = 0b0000_0010
	flagEcuID          = 0b0000_0100
	flagSessionID      = 0b0000_1000
	flagTimestamp      = 0b0001_0000

	versionMask  = 0b111
	versionShift = 5

	// Version written on encode. Versions 0 and 1 are accepted on decode.
	Version = 1

	// BaseHeaderSize is the serialized size of the mandatory header
	// prefix: type byte, counter and length.
	BaseHeaderSize     = 4
	extendedHeaderSize = 10

	// MaxHeaderSize is the serialized size of a header with every optional
	// field present.
	MaxHeaderSize = BaseHeaderSize + 4 + 4 + 4 + extendedHeaderSize

	// Non verbose payloads start with a 4 byte message id.
	minPayloadSize = 4
)

// ExtendedHeader is the optional 10 byte header extension carrying the
// message classification, the verbose argument count and the application
// and context ids.
type ExtendedHeader struct {
	MessageInfo       MessageInfo
	NumberOfArguments uint8
	ApplicationID     [4]byte
	ContextID         [4]byte
}

// NewNonVerboseLogExtendedHeader builds an extended header for a non
// verbose log message with the given level.
func NewNonVerboseLogExtendedHeader(level LogLevel, applicationID, contextID [4]byte) ExtendedHeader {
	info, _ := NewMessageInfo(false, LogMessageType(level))
	return ExtendedHeader{
		MessageInfo:   info,
		ApplicationID: applicationID,
		ContextID:     contextID,
	}
}

// NewNonVerboseExtendedHeader builds an extended header for a non verbose
// message of the given type. Subtypes outside the legal range of their
// kind are rejected with a RangeError.
func NewNonVerboseExtendedHeader(t MessageType, applicationID, contextID [4]byte) (ExtendedHeader, error) {
	info, err := NewMessageInfo(false, t)
	if err != nil {
		return ExtendedHeader{}, err
	}
	return ExtendedHeader{
		MessageInfo:   info,
		ApplicationID: applicationID,
		ContextID:     contextID,
	}, nil
}

func (e *ExtendedHeader) IsVerbose() bool {
	return e.MessageInfo.IsVerbose()
}

func (e *ExtendedHeader) SetVerbose(verbose bool) {
	if verbose {
		e.MessageInfo |= messageInfoVerboseFlag
	} else {
		e.MessageInfo &^= messageInfoVerboseFlag
	}
}

// MessageType decodes the message type of the extended header. The second
// return value is false for reserved message info patterns.
func (e *ExtendedHeader) MessageType() (MessageType, bool) {
	return e.MessageInfo.MessageType()
}

// SetMessageType replaces the kind and subtype bits of the message info
// byte, keeping the verbose flag.
func (e *ExtendedHeader) SetMessageType(t MessageType) error {
	b, err := t.ToByte()
	if err != nil {
		return err
	}
	e.MessageInfo = MessageInfo(b) | (e.MessageInfo & messageInfoVerboseFlag)
	return nil
}

// Header is the decoded form of a DLT v1 message header. Length counts the
// complete message including the header itself. All multi byte header
// fields are big endian on the wire; IsBigEndian only governs the encoding
// of the payload.
type Header struct {
	IsBigEndian    bool
	MessageCounter uint8
	Length         uint16

	EcuID    [4]byte
	HasEcuID bool

	SessionID    uint32
	HasSessionID bool

	Timestamp    uint32
	HasTimestamp bool

	Extended *ExtendedHeader
}

// HeaderLen returns the serialized size of the header based on which
// optional fields are present.
func (h *Header) HeaderLen() int {
	l := BaseHeaderSize
	if h.HasEcuID {
		l += 4
	}
	if h.HasSessionID {
		l += 4
	}
	if h.HasTimestamp {
		l += 4
	}
	if h.Extended != nil {
		l += extendedHeaderSize
	}
	return l
}

// IsVerbose reports whether the extended header is present with the
// verbose flag set.
func (h *Header) IsVerbose() bool {
	return h.Extended != nil && h.Extended.IsVerbose()
}

// SetLength recomputes the length field for the given payload size.
// Payload sizes that push the total message size past the 16 bit length
// field are rejected with a RangeError.
func (h *Header) SetLength(payloadLen int) error {
	total := h.HeaderLen() + payloadLen
	if payloadLen < 0 || total > 0xFFFF {
		return &RangeError{
			Field:  "message length",
			Min:    int64(h.HeaderLen()),
			Max:    0xFFFF,
			Actual: int64(total),
		}
	}
	h.Length = uint16(total)
	return nil
}

func headerLenFromFlags(headerType uint8) int {
	l := BaseHeaderSize
	if headerType&flagEcuID != 0 {
		l += 4
	}
	if headerType&flagSessionID != 0 {
		l += 4
	}
	if headerType&flagTimestamp != 0 {
		l += 4
	}
	if headerType&flagExtendedHeader != 0 {
		l += extendedHeaderSize
	}
	return l
}

// ParseHeader decodes a header from the start of buf. The slice may extend
// past the header.
func ParseHeader(buf []byte) (Header, error) {
	var h Header
	if len(buf) < BaseHeaderSize {
		return h, &UnexpectedEndOfSliceError{
			Layer:       LayerHeader,
			MinimumSize: BaseHeaderSize,
			ActualSize:  len(buf),
		}
	}
	headerType := buf[0]
	version := (headerType >> versionShift) & versionMask
	if version != 0 && version != 1 {
		return h, &UnsupportedVersionError{Version: version}
	}

	headerLen := headerLenFromFlags(headerType)
	if len(buf) < headerLen {
		return h, &UnexpectedEndOfSliceError{
			Layer:       LayerHeader,
			MinimumSize: headerLen,
			ActualSize:  len(buf),
		}
	}

	h.IsBigEndian = headerType&flagBigEndian != 0
	h.MessageCounter = buf[1]
	h.Length = binary.BigEndian.Uint16(buf[2:4])

	rest := buf[BaseHeaderSize:]
	if headerType&flagEcuID != 0 {
		copy(h.EcuID[:], rest[:4])
		h.HasEcuID = true
		rest = rest[4:]
	}
	if headerType&flagSessionID != 0 {
		h.SessionID = binary.BigEndian.Uint32(rest[:4])
		h.HasSessionID = true
		rest = rest[4:]
	}
	if headerType&flagTimestamp != 0 {
		h.Timestamp = binary.BigEndian.Uint32(rest[:4])
		h.HasTimestamp = true
		rest = rest[4:]
	}
	if headerType&flagExtendedHeader != 0 {
		ext := ExtendedHeader{
			MessageInfo:       MessageInfo(rest[0]),
			NumberOfArguments: rest[1],
		}
		copy(ext.ApplicationID[:], rest[2:6])
		copy(ext.ContextID[:], rest[6:10])
		h.Extended = &ext
	}
	return h, nil
}

// ReadHeader decodes a header from a stream. A short read of the base
// header surfaces as the reader's error (io.EOF at a clean boundary);
// short optional fields surface as io.ErrUnexpectedEOF.
func ReadHeader(r io.Reader) (Header, error) {
	var base [BaseHeaderSize]byte
	if _, err := io.ReadFull(r, base[:]); err != nil {
		return Header{}, err
	}
	headerType := base[0]
	version := (headerType >> versionShift) & versionMask
	if version != 0 && version != 1 {
		return Header{}, &UnsupportedVersionError{Version: version}
	}
	headerLen := headerLenFromFlags(headerType)
	buf := make([]byte, headerLen)
	copy(buf, base[:])
	if headerLen > BaseHeaderSize {
		if _, err := io.ReadFull(r, buf[BaseHeaderSize:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Header{}, err
		}
	}
	return ParseHeader(buf)
}

func (h *Header) headerTypeByte() uint8 {
	var b uint8
	if h.Extended != nil {
		b |= flagExtendedHeader
	}
	if h.IsBigEndian {
		b |= flagBigEndian
	}
	if h.HasEcuID {
		b |= flagEcuID
	}
	if h.HasSessionID {
		b |= flagSessionID
	}
	if h.HasTimestamp {
		b |= flagTimestamp
	}
	b |= (Version << versionShift) & 0b1110_0000
	return b
}

// AppendBytes appends the wire encoding of the header to dst.
func (h *Header) AppendBytes(dst []byte) []byte {
	dst = append(dst, h.headerTypeByte(), h.MessageCounter)
	dst = binary.BigEndian.AppendUint16(dst, h.Length)
	if h.HasEcuID {
		dst = append(dst, h.EcuID[:]...)
	}
	if h.HasSessionID {
		dst = binary.BigEndian.AppendUint32(dst, h.SessionID)
	}
	if h.HasTimestamp {
		dst = binary.BigEndian.AppendUint32(dst, h.Timestamp)
	}
	if h.Extended != nil {
		dst = append(dst, uint8(h.Extended.MessageInfo), h.Extended.NumberOfArguments)
		dst = append(dst, h.Extended.ApplicationID[:]...)
		dst = append(dst, h.Extended.ContextID[:]...)
	}
	return dst
}

// ToBytes returns the wire encoding of the header.
func (h *Header) ToBytes() []byte {
	return h.AppendBytes(make([]byte, 0, h.HeaderLen()))
}

// Write encodes the header to a stream.
func (h *Header) Write(w io.Writer) error {
	_, err := w.Write(h.ToBytes())
	return err
}
