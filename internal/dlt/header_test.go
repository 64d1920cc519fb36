package dlt

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"testing"
)

func TestHeaderLen(t *testing.T) {
	tests := []struct {
		name   string
		header Header
		want   int
	}{
		{name: "base only", header: Header{}, want: 4},
		{name: "ecu id", header: Header{HasEcuID: true}, want: 8},
		{name: "session id", header: Header{HasSessionID: true}, want: 8},
		{name: "timestamp", header: Header{HasTimestamp: true}, want: 8},
		{name: "ecu and timestamp", header: Header{HasEcuID: true, HasTimestamp: true}, want: 12},
		{name: "extended", header: Header{Extended: &ExtendedHeader{}}, want: 14},
		{
			name: "everything",
			header: Header{
				HasEcuID:     true,
				HasSessionID: true,
				HasTimestamp: true,
				Extended:     &ExtendedHeader{},
			},
			want: MaxHeaderSize,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.header.HeaderLen(); got != tc.want {
				t.Fatalf("HeaderLen = %d, want %d", got, tc.want)
			}
			if got := len(tc.header.ToBytes()); got != tc.want {
				t.Fatalf("len(ToBytes) = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	info, err := NewMessageInfo(true, LogMessageType(LogLevelWarn))
	if err != nil {
		t.Fatalf("NewMessageInfo failed: %v", err)
	}
	tests := []struct {
		name   string
		header Header
	}{
		{name: "minimal", header: Header{MessageCounter: 42, Length: 8}},
		{name: "big endian", header: Header{IsBigEndian: true, Length: 8}},
		{
			name: "optional fields",
			header: Header{
				MessageCounter: 7,
				Length:         20,
				EcuID:          [4]byte{'E', 'C', 'U', '1'},
				HasEcuID:       true,
				SessionID:      0xDEADBEEF,
				HasSessionID:   true,
				Timestamp:      123456,
				HasTimestamp:   true,
			},
		},
		{
			name: "extended verbose log",
			header: Header{
				IsBigEndian: true,
				Length:      30,
				Extended: &ExtendedHeader{
					MessageInfo:       info,
					NumberOfArguments: 2,
					ApplicationID:     [4]byte{'A', 'P', 'P', '0'},
					ContextID:         [4]byte{'C', 'T', 'X', '0'},
				},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := tc.header.ToBytes()
			got, err := ParseHeader(buf)
			if err != nil {
				t.Fatalf("ParseHeader returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.header) {
				t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, tc.header)
			}

			fromReader, err := ReadHeader(bytes.NewReader(buf))
			if err != nil {
				t.Fatalf("ReadHeader returned error: %v", err)
			}
			if !reflect.DeepEqual(fromReader, tc.header) {
				t.Fatalf("ReadHeader mismatch:\n got  %+v\n want %+v", fromReader, tc.header)
			}
		})
	}
}

func TestParseHeaderErrors(t *testing.T) {
	full := Header{HasEcuID: true, HasTimestamp: true, Length: 16}
	encoded := full.ToBytes()

	t.Run("short base header", func(t *testing.T) {
		var wantErr *UnexpectedEndOfSliceError
		_, err := ParseHeader(encoded[:3])
		if !errors.As(err, &wantErr) {
			t.Fatalf("expected UnexpectedEndOfSliceError, got %v", err)
		}
		if wantErr.Layer != LayerHeader || wantErr.MinimumSize != BaseHeaderSize {
			t.Fatalf("unexpected error detail: %+v", wantErr)
		}
	})

	t.Run("short optional fields", func(t *testing.T) {
		var wantErr *UnexpectedEndOfSliceError
		_, err := ParseHeader(encoded[:6])
		if !errors.As(err, &wantErr) {
			t.Fatalf("expected UnexpectedEndOfSliceError, got %v", err)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		buf := append([]byte(nil), encoded...)
		buf[0] = (buf[0] &^ (versionMask << versionShift)) | (2 << versionShift)
		var wantErr *UnsupportedVersionError
		_, err := ParseHeader(buf)
		if !errors.As(err, &wantErr) {
			t.Fatalf("expected UnsupportedVersionError, got %v", err)
		}
		if wantErr.Version != 2 {
			t.Fatalf("Version = %d, want 2", wantErr.Version)
		}
	})

	t.Run("truncated reader", func(t *testing.T) {
		_, err := ReadHeader(bytes.NewReader(encoded[:6]))
		if err != io.ErrUnexpectedEOF {
			t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
		}
	})

	t.Run("empty reader", func(t *testing.T) {
		_, err := ReadHeader(bytes.NewReader(nil))
		if err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	})
}

func TestSetLength(t *testing.T) {
	h := Header{HasEcuID: true}
	if err := h.SetLength(100); err != nil {
		t.Fatalf("SetLength returned error: %v", err)
	}
	if h.Length != 108 {
		t.Fatalf("Length = %d, want 108", h.Length)
	}

	var rangeErr *RangeError
	if err := h.SetLength(0x10000); !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if h.Length != 108 {
		t.Fatalf("failed SetLength modified Length to %d", h.Length)
	}
}

func TestMessageTypeRoundTrip(t *testing.T) {
	valid := []MessageType{
		LogMessageType(LogLevelFatal),
		LogMessageType(LogLevelVerbose),
		TraceMessageType(TraceTypeVariable),
		TraceMessageType(TraceTypeVfb),
		NetworkMessageType(NetworkTraceSomeIp),
		NetworkMessageType(NetworkTraceUserDefinedMax),
		ControlMessageType(ControlTypeRequest),
		ControlMessageType(ControlTypeResponse),
	}
	for _, mt := range valid {
		b, err := mt.ToByte()
		if err != nil {
			t.Fatalf("ToByte(%+v) returned error: %v", mt, err)
		}
		got, ok := MessageTypeFromByte(b)
		if !ok {
			t.Fatalf("MessageTypeFromByte(0x%02X) rejected valid byte", b)
		}
		if got != mt {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, mt)
		}
	}

	invalid := []MessageType{
		{Kind: KindLog, Subtype: 0},
		{Kind: KindLog, Subtype: 7},
		{Kind: KindTrace, Subtype: 6},
		{Kind: KindControl, Subtype: 3},
	}
	for _, mt := range invalid {
		var rangeErr *RangeError
		if _, err := mt.ToByte(); !errors.As(err, &rangeErr) {
			t.Fatalf("ToByte(%+v): expected RangeError, got %v", mt, err)
		}
	}

	// Reserved patterns must decode to not-ok rather than an error.
	if _, ok := MessageTypeFromByte(0b0000_0000); ok {
		t.Fatal("log subtype 0 decoded as valid")
	}
	if _, ok := MessageTypeFromByte(0b0111_0110); ok {
		t.Fatal("control subtype 7 decoded as valid")
	}
}

func TestNewNonVerboseExtendedHeader(t *testing.T) {
	ext, err := NewNonVerboseExtendedHeader(
		ControlMessageType(ControlTypeResponse),
		[4]byte{'A', 'P', 'P', '1'},
		[4]byte{'C', 'T', 'X', '1'},
	)
	if err != nil {
		t.Fatalf("NewNonVerboseExtendedHeader returned error: %v", err)
	}
	if ext.IsVerbose() {
		t.Fatal("non verbose header reports verbose")
	}
	mt, ok := ext.MessageType()
	if !ok || mt != ControlMessageType(ControlTypeResponse) {
		t.Fatalf("MessageType = %+v, %v", mt, ok)
	}

	ext.SetVerbose(true)
	if !ext.IsVerbose() {
		t.Fatal("SetVerbose(true) had no effect")
	}
	mt, ok = ext.MessageType()
	if !ok || mt != ControlMessageType(ControlTypeResponse) {
		t.Fatalf("MessageType after SetVerbose = %+v, %v", mt, ok)
	}

	if _, err := NewNonVerboseExtendedHeader(MessageType{Kind: KindTrace, Subtype: 9}, [4]byte{}, [4]byte{}); err == nil {
		t.Fatal("expected error for out of range trace type")
	}
}
