package dlt

import (
	"errors"
	"fmt"
)

var (
	// ErrArrayDimensionsOverflow is returned when the element count of a
	// verbose array overflows while multiplying its dimensions.
	ErrArrayDimensionsOverflow = errors.New("verbose array dimensions overflow")

	// ErrStructDataLengthOverflow is returned when the data length of a
	// verbose struct overflows while being computed.
	ErrStructDataLengthOverflow = errors.New("verbose struct data length overflow")
)

// Layer identifies the parsing stage at which a decode error occurred.
type Layer int

const (
	LayerHeader Layer = iota
	LayerVerboseTypeInfo
	LayerVerboseValue
)

func (l Layer) String() string {
	switch l {
	case LayerHeader:
		return "header"
	case LayerVerboseTypeInfo:
		return "verbose type info"
	case LayerVerboseValue:
		return "verbose value"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// UnexpectedEndOfSliceError is returned whenever a parse step needs more
// bytes than the input slice can supply. Sizes are measured from the start
// of the layer's slice so error messages refer to absolute positions.
type UnexpectedEndOfSliceError struct {
	Layer       Layer
	MinimumSize int
	ActualSize  int
}

func (e *UnexpectedEndOfSliceError) Error() string {
	return fmt.Sprintf("%s: unexpected end of slice (need at least %d bytes, have %d)",
		e.Layer, e.MinimumSize, e.ActualSize)
}

// UnsupportedVersionError is returned when the version bits of the base
// header fall outside the decodable set.
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported dlt version %d (supported: 0, 1)", e.Version)
}

// MessageLengthTooSmallError is returned when the length field of a message
// declares fewer bytes than the header and minimum payload require.
type MessageLengthTooSmallError struct {
	RequiredLength int
	ActualLength   int
}

func (e *MessageLengthTooSmallError) Error() string {
	return fmt.Sprintf("message length %d below required minimum %d", e.ActualLength, e.RequiredLength)
}

// RangeError is returned when a field value is outside its legal range at
// construction or encode time.
type RangeError struct {
	Field  string
	Min    int64
	Max    int64
	Actual int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s value %d outside allowed range [%d, %d]", e.Field, e.Actual, e.Min, e.Max)
}

// InvalidTypeInfoError is returned when a verbose type info field sets a
// contradictory or unrecognized combination of bits.
type InvalidTypeInfoError struct {
	TypeInfo [4]byte
}

func (e *InvalidTypeInfoError) Error() string {
	return fmt.Sprintf("invalid verbose type info [0x%02X 0x%02X 0x%02X 0x%02X]",
		e.TypeInfo[0], e.TypeInfo[1], e.TypeInfo[2], e.TypeInfo[3])
}

// InvalidBoolValueError is returned when the payload byte of a verbose
// bool is neither 0 nor 1.
type InvalidBoolValueError struct {
	Value uint8
}

func (e *InvalidBoolValueError) Error() string {
	return fmt.Sprintf("invalid verbose bool payload byte 0x%02X (must be 0 or 1)", e.Value)
}

// StringTerminationError is returned when a verbose string field misses
// its required trailing null byte.
type StringTerminationError struct {
	Field string
}

func (e *StringTerminationError) Error() string {
	return fmt.Sprintf("verbose %s string missing null termination", e.Field)
}

// InvalidUTF8Error is returned when a verbose string field holds invalid
// UTF-8.
type InvalidUTF8Error struct {
	Field string
}

func (e *InvalidUTF8Error) Error() string {
	return fmt.Sprintf("verbose %s string contains invalid utf-8", e.Field)
}

// CapacityError is returned on the encode path when the destination
// buffer cannot hold the complete value. Writes are all or nothing; a
// failed write leaves the buffer unchanged.
type CapacityError struct {
	Required int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("message buffer capacity %d too small (need %d)", e.Capacity, e.Required)
}

// UnknownMessageInfoError is returned by typed payload classification when
// the message info byte does not decode to any defined message type.
type UnknownMessageInfoError struct {
	MessageInfo uint8
}

func (e *UnknownMessageInfoError) Error() string {
	return fmt.Sprintf("message info 0x%02X does not match any known message type", e.MessageInfo)
}
