package dlt

// TypedPayload is the classified payload of a message. Verbose variants
// carry an argument iterator, non verbose variants carry the message id
// and the raw payload after it.
type TypedPayload interface {
	typedPayload()
}

// LogVPayload is the payload of a verbose log message.
type LogVPayload struct {
	LogLevel LogLevel
	Iter     *Iter
}

// TraceVPayload is the payload of a verbose trace message.
type TraceVPayload struct {
	TraceType TraceType
	Iter      *Iter
}

// NetworkVPayload is the payload of a verbose network trace message.
type NetworkVPayload struct {
	NetType NetworkTraceType
	Iter    *Iter
}

// ControlVPayload is the payload of a verbose control message.
type ControlVPayload struct {
	ControlType ControlType
	Iter        *Iter
}

// LogNvPayload is the payload of a non verbose log message.
type LogNvPayload struct {
	LogLevel  LogLevel
	MessageID uint32
	Payload   []byte
}

// TraceNvPayload is the payload of a non verbose trace message.
type TraceNvPayload struct {
	TraceType TraceType
	MessageID uint32
	Payload   []byte
}

// NetworkNvPayload is the payload of a non verbose network trace message.
type NetworkNvPayload struct {
	NetType   NetworkTraceType
	MessageID uint32
	Payload   []byte
}

// ControlNvPayload is the payload of a non verbose control message. The
// message id doubles as the control service id.
type ControlNvPayload struct {
	ControlType ControlType
	ServiceID   uint32
	Payload     []byte
}

// UnknownNvPayload is the payload of a non verbose message without an
// extended header, which carries no classification.
type UnknownNvPayload struct {
	MessageID uint32
	Payload   []byte
}

func (LogVPayload) typedPayload()      {}
func (TraceVPayload) typedPayload()    {}
func (NetworkVPayload) typedPayload()  {}
func (ControlVPayload) typedPayload()  {}
func (LogNvPayload) typedPayload()     {}
func (TraceNvPayload) typedPayload()   {}
func (NetworkNvPayload) typedPayload() {}
func (ControlNvPayload) typedPayload() {}
func (UnknownNvPayload) typedPayload() {}
