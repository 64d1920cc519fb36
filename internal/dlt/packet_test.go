package dlt

import (
	"errors"
	"io"
	"testing"
)

// buildMessage serializes a header and payload as one message, fixing up
// the length field.
func buildMessage(t *testing.T, h Header, payload []byte) []byte {
	t.Helper()
	if err := h.SetLength(len(payload)); err != nil {
		t.Fatalf("SetLength failed: %v", err)
	}
	return append(h.ToBytes(), payload...)
}

func TestParsePacketNonVerbose(t *testing.T) {
	msg := buildMessage(t, Header{IsBigEndian: true, MessageCounter: 1}, []byte{1, 2, 3, 4})
	if len(msg) != 8 {
		t.Fatalf("message size = %d, want 8", len(msg))
	}

	p, err := ParsePacket(msg)
	if err != nil {
		t.Fatalf("ParsePacket returned error: %v", err)
	}
	if p.IsVerbose() {
		t.Fatal("message without extended header reports verbose")
	}
	id, rest, ok := p.MessageIDAndPayload()
	if !ok {
		t.Fatal("MessageIDAndPayload rejected non verbose message")
	}
	if id != 0x01020304 {
		t.Fatalf("message id = 0x%08X, want 0x01020304", id)
	}
	if len(rest) != 0 {
		t.Fatalf("payload after message id = %v, want empty", rest)
	}
}

func TestMessageIDEndianness(t *testing.T) {
	payload := []byte{1, 2, 3, 4}

	le, err := ParsePacket(buildMessage(t, Header{}, payload))
	if err != nil {
		t.Fatalf("ParsePacket returned error: %v", err)
	}
	if id, _ := le.MessageID(); id != 0x04030201 {
		t.Fatalf("little endian message id = 0x%08X, want 0x04030201", id)
	}

	be, err := ParsePacket(buildMessage(t, Header{IsBigEndian: true}, payload))
	if err != nil {
		t.Fatalf("ParsePacket returned error: %v", err)
	}
	if id, _ := be.MessageID(); id != 0x01020304 {
		t.Fatalf("big endian message id = 0x%08X, want 0x01020304", id)
	}
}

func TestParsePacketRejectsEveryTruncation(t *testing.T) {
	h := Header{
		HasEcuID:     true,
		HasTimestamp: true,
		EcuID:        [4]byte{'E', 'C', 'U', '1'},
		Timestamp:    99,
	}
	msg := buildMessage(t, h, []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE})
	for cut := 0; cut < len(msg); cut++ {
		if _, err := ParsePacket(msg[:cut]); err == nil {
			t.Fatalf("ParsePacket accepted %d of %d bytes", cut, len(msg))
		}
	}
	if _, err := ParsePacket(msg); err != nil {
		t.Fatalf("ParsePacket rejected complete message: %v", err)
	}
	// Trailing bytes beyond the declared length must be ignored.
	p, err := ParsePacket(append(append([]byte(nil), msg...), 0xFF, 0xFF))
	if err != nil {
		t.Fatalf("ParsePacket rejected message with trailing bytes: %v", err)
	}
	if len(p.Slice()) != len(msg) {
		t.Fatalf("Slice length = %d, want %d", len(p.Slice()), len(msg))
	}
}

func TestParsePacketErrors(t *testing.T) {
	t.Run("unsupported version", func(t *testing.T) {
		msg := buildMessage(t, Header{}, []byte{0, 0, 0, 0})
		msg[0] |= 3 << versionShift
		var wantErr *UnsupportedVersionError
		if _, err := ParsePacket(msg); !errors.As(err, &wantErr) {
			t.Fatalf("expected UnsupportedVersionError, got %v", err)
		}
	})

	t.Run("length below header plus message id", func(t *testing.T) {
		msg := buildMessage(t, Header{HasEcuID: true}, []byte{0, 0, 0, 0})
		// Declare a length that covers the header but not the message id.
		msg[2] = 0
		msg[3] = 10
		var wantErr *MessageLengthTooSmallError
		_, err := ParsePacket(msg)
		if !errors.As(err, &wantErr) {
			t.Fatalf("expected MessageLengthTooSmallError, got %v", err)
		}
		if wantErr.RequiredLength != 12 || wantErr.ActualLength != 10 {
			t.Fatalf("unexpected error detail: %+v", wantErr)
		}
	})
}

func verboseBoolPayload(t *testing.T, bigEndian bool) []byte {
	t.Helper()
	buf := NewMsgBuffer(64)
	if err := (BoolValue{Value: true}).AddToMsg(buf, bigEndian); err != nil {
		t.Fatalf("AddToMsg failed: %v", err)
	}
	return append([]byte(nil), buf.Bytes()...)
}

func TestTypedPayload(t *testing.T) {
	t.Run("verbose log", func(t *testing.T) {
		info, err := NewMessageInfo(true, LogMessageType(LogLevelInfo))
		if err != nil {
			t.Fatalf("NewMessageInfo failed: %v", err)
		}
		h := Header{
			IsBigEndian: true,
			Extended:    &ExtendedHeader{MessageInfo: info, NumberOfArguments: 1},
		}
		p, err := ParsePacket(buildMessage(t, h, verboseBoolPayload(t, true)))
		if err != nil {
			t.Fatalf("ParsePacket returned error: %v", err)
		}
		typed, err := p.TypedPayload()
		if err != nil {
			t.Fatalf("TypedPayload returned error: %v", err)
		}
		log, ok := typed.(LogVPayload)
		if !ok {
			t.Fatalf("payload type = %T, want LogVPayload", typed)
		}
		if log.LogLevel != LogLevelInfo {
			t.Fatalf("log level = %v, want info", log.LogLevel)
		}
		value, err := log.Iter.Next()
		if err != nil {
			t.Fatalf("Iter.Next returned error: %v", err)
		}
		b, ok := value.(BoolValue)
		if !ok || !b.Value {
			t.Fatalf("first argument = %#v, want BoolValue{Value: true}", value)
		}
		if _, err := log.Iter.Next(); err != io.EOF {
			t.Fatalf("expected io.EOF after last argument, got %v", err)
		}
	})

	t.Run("non verbose control", func(t *testing.T) {
		ext := NewNonVerboseLogExtendedHeader(LogLevelWarn, [4]byte{'A', 'P', 'P', '1'}, [4]byte{'C', 'T', 'X', '1'})
		if err := ext.SetMessageType(ControlMessageType(ControlTypeRequest)); err != nil {
			t.Fatalf("SetMessageType failed: %v", err)
		}
		h := Header{IsBigEndian: true, Extended: &ext}
		p, err := ParsePacket(buildMessage(t, h, []byte{0, 0, 0, 0x13, 0xAB}))
		if err != nil {
			t.Fatalf("ParsePacket returned error: %v", err)
		}
		typed, err := p.TypedPayload()
		if err != nil {
			t.Fatalf("TypedPayload returned error: %v", err)
		}
		ctrl, ok := typed.(ControlNvPayload)
		if !ok {
			t.Fatalf("payload type = %T, want ControlNvPayload", typed)
		}
		if ctrl.ControlType != ControlTypeRequest {
			t.Fatalf("control type = %v, want request", ctrl.ControlType)
		}
		if ctrl.ServiceID != ServiceGetSoftwareVersion {
			t.Fatalf("service id = 0x%X, want 0x%X", ctrl.ServiceID, ServiceGetSoftwareVersion)
		}
		if len(ctrl.Payload) != 1 || ctrl.Payload[0] != 0xAB {
			t.Fatalf("control payload = %v, want [0xAB]", ctrl.Payload)
		}
	})

	t.Run("no extended header", func(t *testing.T) {
		p, err := ParsePacket(buildMessage(t, Header{}, []byte{1, 0, 0, 0, 9}))
		if err != nil {
			t.Fatalf("ParsePacket returned error: %v", err)
		}
		typed, err := p.TypedPayload()
		if err != nil {
			t.Fatalf("TypedPayload returned error: %v", err)
		}
		unknown, ok := typed.(UnknownNvPayload)
		if !ok {
			t.Fatalf("payload type = %T, want UnknownNvPayload", typed)
		}
		if unknown.MessageID != 1 {
			t.Fatalf("message id = %d, want 1", unknown.MessageID)
		}
	})

	t.Run("reserved message info", func(t *testing.T) {
		h := Header{Extended: &ExtendedHeader{MessageInfo: 0}}
		p, err := ParsePacket(buildMessage(t, h, []byte{0, 0, 0, 0}))
		if err != nil {
			t.Fatalf("ParsePacket returned error: %v", err)
		}
		var wantErr *UnknownMessageInfoError
		if _, err := p.TypedPayload(); !errors.As(err, &wantErr) {
			t.Fatalf("expected UnknownMessageInfoError, got %v", err)
		}
	})
}

func TestSliceIterator(t *testing.T) {
	first := buildMessage(t, Header{MessageCounter: 1}, []byte{1, 0, 0, 0})
	second := buildMessage(t, Header{MessageCounter: 2, HasTimestamp: true, Timestamp: 5}, []byte{2, 0, 0, 0, 0xEE})
	stream := append(append([]byte(nil), first...), second...)

	it := NewSliceIterator(stream)
	p1, err := it.Next()
	if err != nil {
		t.Fatalf("first Next returned error: %v", err)
	}
	if p1.Header().MessageCounter != 1 {
		t.Fatalf("first counter = %d, want 1", p1.Header().MessageCounter)
	}
	p2, err := it.Next()
	if err != nil {
		t.Fatalf("second Next returned error: %v", err)
	}
	if p2.Header().MessageCounter != 2 {
		t.Fatalf("second counter = %d, want 2", p2.Header().MessageCounter)
	}
	if _, err := it.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of buffer, got %v", err)
	}
}

func TestSliceIteratorFreezesAfterError(t *testing.T) {
	good := buildMessage(t, Header{}, []byte{1, 0, 0, 0})
	stream := append(append([]byte(nil), good...), 0xFF, 0xFF)

	it := NewSliceIterator(stream)
	if _, err := it.Next(); err != nil {
		t.Fatalf("first Next returned error: %v", err)
	}
	if _, err := it.Next(); err == nil || err == io.EOF {
		t.Fatalf("expected slicing error on trailing garbage, got %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := it.Next(); err != io.EOF {
			t.Fatalf("expected io.EOF after error, got %v", err)
		}
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		id     uint32
		want   string
		wantOk bool
	}{
		{id: ServiceSetLogLevel, want: "SetLogLevel", wantOk: true},
		{id: ServiceGetSoftwareVersion, want: "GetSoftwareVersion", wantOk: true},
		{id: ServiceSyncTimeStamp, want: "SyncTimeStamp", wantOk: true},
		{id: 0x25, wantOk: false},
		{id: 0xFFE, wantOk: false},
		{id: ServiceCallSWCInjectionMin, want: "CallSWCInjection", wantOk: true},
		{id: 0xFFFF_FFFF, want: "CallSWCInjection", wantOk: true},
	}
	for _, tc := range tests {
		name, ok := ServiceName(tc.id)
		if ok != tc.wantOk || name != tc.want {
			t.Fatalf("ServiceName(0x%X) = %q, %v; want %q, %v", tc.id, name, ok, tc.want, tc.wantOk)
		}
	}
}
