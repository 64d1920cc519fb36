package dlt

// Message info byte layout: bit 0 is the verbose flag, bits 1-3 carry the
// message kind and bits 4-7 the kind specific subtype.
const (
	messageInfoVerboseFlag = 0b0000_0001
	messageKindMask        = 0b0000_1110
	messageKindShift       = 1
	messageSubtypeMask     = 0b1111_0000
	messageSubtypeShift    = 4
)

// MessageKind is the coarse message class carried in bits 1-3 of the
// message info byte.
type MessageKind uint8

const (
	KindLog          MessageKind = 0
	KindTrace        MessageKind = 1
	KindNetworkTrace MessageKind = 2
	KindControl      MessageKind = 3
)

func (k MessageKind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindTrace:
		return "trace"
	case KindNetworkTrace:
		return "network trace"
	case KindControl:
		return "control"
	default:
		return "reserved"
	}
}

// LogLevel is the subtype of a log message.
type LogLevel uint8

const (
	LogLevelFatal   LogLevel = 1
	LogLevelError   LogLevel = 2
	LogLevelWarn    LogLevel = 3
	LogLevelInfo    LogLevel = 4
	LogLevelDebug   LogLevel = 5
	LogLevelVerbose LogLevel = 6
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelFatal:
		return "fatal"
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	case LogLevelVerbose:
		return "verbose"
	default:
		return "reserved"
	}
}

// TraceType is the subtype of an application trace message.
type TraceType uint8

const (
	TraceTypeVariable    TraceType = 1
	TraceTypeFunctionIn  TraceType = 2
	TraceTypeFunctionOut TraceType = 3
	TraceTypeState       TraceType = 4
	TraceTypeVfb         TraceType = 5
)

// NetworkTraceType is the subtype of a network trace message. Values 7
// through 15 are user defined.
type NetworkTraceType uint8

const (
	NetworkTraceIpc      NetworkTraceType = 1
	NetworkTraceCan      NetworkTraceType = 2
	NetworkTraceFlexray  NetworkTraceType = 3
	NetworkTraceMost     NetworkTraceType = 4
	NetworkTraceEthernet NetworkTraceType = 5
	NetworkTraceSomeIp   NetworkTraceType = 6

	// Bounds of the user defined network trace range.
	NetworkTraceUserDefinedMin NetworkTraceType = 7
	NetworkTraceUserDefinedMax NetworkTraceType = 15
)

// ControlType is the subtype of a control message.
type ControlType uint8

const (
	ControlTypeRequest  ControlType = 1
	ControlTypeResponse ControlType = 2
)

// MessageType is the decoded (kind, subtype) pair of a message info byte.
// Subtype interpretation depends on Kind: LogLevel for KindLog, TraceType
// for KindTrace, NetworkTraceType for KindNetworkTrace and ControlType for
// KindControl.
type MessageType struct {
	Kind    MessageKind
	Subtype uint8
}

func LogMessageType(level LogLevel) MessageType {
	return MessageType{Kind: KindLog, Subtype: uint8(level)}
}

func TraceMessageType(t TraceType) MessageType {
	return MessageType{Kind: KindTrace, Subtype: uint8(t)}
}

func NetworkMessageType(t NetworkTraceType) MessageType {
	return MessageType{Kind: KindNetworkTrace, Subtype: uint8(t)}
}

func ControlMessageType(t ControlType) MessageType {
	return MessageType{Kind: KindControl, Subtype: uint8(t)}
}

// MessageTypeFromByte decodes the kind and subtype bits of a message info
// byte. The second return value is false for reserved bit patterns.
func MessageTypeFromByte(b uint8) (MessageType, bool) {
	kind := MessageKind((b & messageKindMask) >> messageKindShift)
	subtype := (b & messageSubtypeMask) >> messageSubtypeShift
	t := MessageType{Kind: kind, Subtype: subtype}
	if !t.valid() {
		return MessageType{}, false
	}
	return t, true
}

func (t MessageType) valid() bool {
	switch t.Kind {
	case KindLog:
		return t.Subtype >= uint8(LogLevelFatal) && t.Subtype <= uint8(LogLevelVerbose)
	case KindTrace:
		return t.Subtype >= uint8(TraceTypeVariable) && t.Subtype <= uint8(TraceTypeVfb)
	case KindNetworkTrace:
		return t.Subtype >= uint8(NetworkTraceIpc) && t.Subtype <= uint8(NetworkTraceUserDefinedMax)
	case KindControl:
		return t.Subtype == uint8(ControlTypeRequest) || t.Subtype == uint8(ControlTypeResponse)
	default:
		return false
	}
}

// ToByte encodes the message type into the kind and subtype bits of a
// message info byte (verbose bit unset). Subtypes outside the legal range
// of their kind are rejected with a RangeError.
func (t MessageType) ToByte() (uint8, error) {
	if !t.valid() {
		var field string
		var min, max int64
		switch t.Kind {
		case KindLog:
			field, min, max = "log level", int64(LogLevelFatal), int64(LogLevelVerbose)
		case KindTrace:
			field, min, max = "trace type", int64(TraceTypeVariable), int64(TraceTypeVfb)
		case KindNetworkTrace:
			field, min, max = "user defined network trace type", int64(NetworkTraceUserDefinedMin), int64(NetworkTraceUserDefinedMax)
		case KindControl:
			field, min, max = "control type", int64(ControlTypeRequest), int64(ControlTypeResponse)
		default:
			field, min, max = "message kind", int64(KindLog), int64(KindControl)
			return 0, &RangeError{Field: field, Min: min, Max: max, Actual: int64(t.Kind)}
		}
		return 0, &RangeError{Field: field, Min: min, Max: max, Actual: int64(t.Subtype)}
	}
	return (uint8(t.Kind) << messageKindShift) | (t.Subtype << messageSubtypeShift), nil
}

// MessageInfo is the raw message info byte of the extended header.
type MessageInfo uint8

// NewMessageInfo composes a message info byte from a verbose flag and a
// message type.
func NewMessageInfo(verbose bool, t MessageType) (MessageInfo, error) {
	b, err := t.ToByte()
	if err != nil {
		return 0, err
	}
	if verbose {
		b |= messageInfoVerboseFlag
	}
	return MessageInfo(b), nil
}

func (m MessageInfo) IsVerbose() bool {
	return m&messageInfoVerboseFlag != 0
}

func (m MessageInfo) kind() MessageKind {
	return MessageKind((uint8(m) & messageKindMask) >> messageKindShift)
}

func (m MessageInfo) IsLog() bool {
	return m.kind() == KindLog
}

func (m MessageInfo) IsTrace() bool {
	return m.kind() == KindTrace
}

func (m MessageInfo) IsNetwork() bool {
	return m.kind() == KindNetworkTrace
}

func (m MessageInfo) IsControl() bool {
	return m.kind() == KindControl
}

// MessageType decodes the kind and subtype bits. The second return value is
// false for reserved patterns.
func (m MessageInfo) MessageType() (MessageType, bool) {
	return MessageTypeFromByte(uint8(m))
}
