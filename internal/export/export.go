// Package export converts storage files into a stream of decoded CBOR
// records for downstream tooling.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"example.com/dltgate/internal/dict"
	"example.com/dltgate/internal/dlt"
	"example.com/dltgate/internal/storage"
)

// Options controls the conversion.
type Options struct {
	// Catalog resolves non verbose message ids to names and format
	// strings when set.
	Catalog *dict.Store
	// MaxMessages stops the export after that many records, 0 exports
	// everything.
	MaxMessages int
}

// Argument is one decoded verbose argument.
type Argument struct {
	Type         string     `cbor:"type"`
	Name         string     `cbor:"name,omitempty"`
	Unit         string     `cbor:"unit,omitempty"`
	Value        any        `cbor:"value,omitempty"`
	Quantization *float32   `cbor:"quantization,omitempty"`
	Offset       any        `cbor:"offset,omitempty"`
	Dimensions   []uint16   `cbor:"dimensions,omitempty"`
	Data         []byte     `cbor:"data,omitempty"`
	Entries      []Argument `cbor:"entries,omitempty"`
}

// Message is the exported form of one storage record.
type Message struct {
	StorageTime  time.Time `cbor:"storageTime"`
	StorageEcuID string    `cbor:"storageEcu"`
	Offset       int64     `cbor:"offset"`

	Counter   uint8   `cbor:"counter"`
	EcuID     string  `cbor:"ecu,omitempty"`
	SessionID *uint32 `cbor:"session,omitempty"`
	Timestamp *uint32 `cbor:"timestamp,omitempty"`

	Kind    string `cbor:"kind,omitempty"`
	Subtype uint8  `cbor:"subtype,omitempty"`
	AppID   string `cbor:"app,omitempty"`
	CtxID   string `cbor:"ctx,omitempty"`
	Verbose bool   `cbor:"verbose"`

	MessageID *uint32 `cbor:"messageId,omitempty"`
	Name      string  `cbor:"name,omitempty"`
	Format    string  `cbor:"format,omitempty"`

	Arguments []Argument `cbor:"args,omitempty"`
	Payload   []byte     `cbor:"payload,omitempty"`

	DecodeError string `cbor:"decodeError,omitempty"`
}

// WriteFile exports the storage file at in as a CBOR sequence at out and
// returns the number of exported messages.
func WriteFile(in, out string, opts Options) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	o, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	defer o.Close()

	n, err := Write(f, o, opts)
	if err != nil {
		return n, err
	}
	return n, o.Sync()
}

// Write exports every record readable from r as a CBOR sequence on w.
// Storage timestamps carry microseconds, so times are encoded at
// microsecond resolution.
func Write(r io.Reader, w io.Writer, opts Options) (int, error) {
	mode, err := cbor.EncOptions{Time: cbor.TimeUnixMicro}.EncMode()
	if err != nil {
		return 0, err
	}
	enc := mode.NewEncoder(w)
	reader := storage.NewReader(r)
	count := 0
	for {
		if opts.MaxMessages > 0 && count >= opts.MaxMessages {
			return count, nil
		}
		rec, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return count, err
		}
		msg := ConvertRecord(rec, opts)
		if err := enc.Encode(msg); err != nil {
			return count, fmt.Errorf("encode message %d: %w", count, err)
		}
		count++
	}
}

// ConvertRecord builds the exported form of one record. Decode problems
// are reported in the DecodeError field, never as an error.
func ConvertRecord(rec storage.Record, opts Options) Message {
	h := rec.Packet.Header()
	msg := Message{
		StorageTime:  rec.StorageHeader.Timestamp(),
		StorageEcuID: rec.StorageHeader.EcuIDString(),
		Offset:       rec.Offset,
		Counter:      h.MessageCounter,
		Verbose:      rec.Packet.IsVerbose(),
	}
	if h.HasEcuID {
		msg.EcuID = idString(h.EcuID)
	}
	if h.HasSessionID {
		session := h.SessionID
		msg.SessionID = &session
	}
	if h.HasTimestamp {
		ts := h.Timestamp
		msg.Timestamp = &ts
	}
	if ext, ok := rec.Packet.ExtendedHeader(); ok {
		msg.AppID = idString(ext.ApplicationID)
		msg.CtxID = idString(ext.ContextID)
		if mt, ok := rec.Packet.MessageType(); ok {
			msg.Kind = mt.Kind.String()
			msg.Subtype = mt.Subtype
		}
	}

	if msg.Verbose {
		iter, _ := rec.Packet.VerboseIter()
		for {
			v, err := iter.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					msg.DecodeError = err.Error()
				}
				break
			}
			msg.Arguments = append(msg.Arguments, convertValue(v))
		}
		return msg
	}

	if id, payload, ok := rec.Packet.MessageIDAndPayload(); ok {
		mid := id
		msg.MessageID = &mid
		msg.Payload = payload
		if entry, ok := opts.Catalog.Lookup(msg.AppID, msg.CtxID, id); ok {
			msg.Name = entry.Name
			msg.Format = entry.Format
		}
	}
	return msg
}

func idString(id [4]byte) string {
	b := id[:]
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func varInfo(arg *Argument, vi *dlt.VariableInfo) {
	if vi == nil {
		return
	}
	arg.Name = vi.Name
	arg.Unit = vi.Unit
}

func int128(v dlt.Int128) map[string]any {
	return map[string]any{"hi": v.Hi, "lo": v.Lo}
}

func uint128(v dlt.Uint128) map[string]any {
	return map[string]any{"hi": v.Hi, "lo": v.Lo}
}

func convertValue(v dlt.Value) Argument {
	switch val := v.(type) {
	case dlt.BoolValue:
		arg := Argument{Type: "bool", Value: val.Value}
		if val.Name != nil {
			arg.Name = *val.Name
		}
		return arg
	case dlt.StringValue:
		arg := Argument{Type: "string", Value: val.Value}
		if val.Name != nil {
			arg.Name = *val.Name
		}
		return arg
	case dlt.TraceInfoValue:
		return Argument{Type: "traceinfo", Value: val.Value}
	case dlt.RawValue:
		arg := Argument{Type: "raw", Data: val.Data}
		if val.Name != nil {
			arg.Name = *val.Name
		}
		return arg

	case dlt.I8Value:
		arg := Argument{Type: "i8", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.I16Value:
		arg := Argument{Type: "i16", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.I32Value:
		arg := Argument{Type: "i32", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.I64Value:
		arg := Argument{Type: "i64", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.I128Value:
		arg := Argument{Type: "i128", Value: int128(val.Value)}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = int128(val.Scaling.Offset)
		}
		return arg

	case dlt.U8Value:
		arg := Argument{Type: "u8", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.U16Value:
		arg := Argument{Type: "u16", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.U32Value:
		arg := Argument{Type: "u32", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.U64Value:
		arg := Argument{Type: "u64", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = val.Scaling.Offset
		}
		return arg
	case dlt.U128Value:
		arg := Argument{Type: "u128", Value: uint128(val.Value)}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = uint128(val.Scaling.Offset)
		}
		return arg

	case dlt.F16Value:
		arg := Argument{Type: "f16", Value: val.Value.Float32()}
		varInfo(&arg, val.VarInfo)
		return arg
	case dlt.F32Value:
		arg := Argument{Type: "f32", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		return arg
	case dlt.F64Value:
		arg := Argument{Type: "f64", Value: val.Value}
		varInfo(&arg, val.VarInfo)
		return arg
	case dlt.F128Value:
		arg := Argument{Type: "f128", Value: map[string]any{"hi": val.Value.Hi, "lo": val.Value.Lo}}
		varInfo(&arg, val.VarInfo)
		return arg

	case dlt.ArrayValue:
		arg := Argument{
			Type:       "array/" + arrayElemName(val.ElemKind),
			Dimensions: val.Dimensions,
			Data:       val.Data,
		}
		varInfo(&arg, val.VarInfo)
		if val.Scaling != nil {
			arg.Quantization = &val.Scaling.Quantization
			arg.Offset = int128(val.Scaling.Offset)
		}
		return arg

	case dlt.StructValue:
		arg := Argument{Type: "struct"}
		if val.Name != nil {
			arg.Name = *val.Name
		}
		for _, entry := range val.Entries {
			arg.Entries = append(arg.Entries, convertValue(entry))
		}
		return arg
	}
	return Argument{Type: fmt.Sprintf("unknown(%T)", v)}
}

func arrayElemName(k dlt.ArrayElemKind) string {
	names := map[dlt.ArrayElemKind]string{
		dlt.ArrayElemBool: "bool",
		dlt.ArrayElemI8:   "i8",
		dlt.ArrayElemI16:  "i16",
		dlt.ArrayElemI32:  "i32",
		dlt.ArrayElemI64:  "i64",
		dlt.ArrayElemI128: "i128",
		dlt.ArrayElemU8:   "u8",
		dlt.ArrayElemU16:  "u16",
		dlt.ArrayElemU32:  "u32",
		dlt.ArrayElemU64:  "u64",
		dlt.ArrayElemU128: "u128",
		dlt.ArrayElemF16:  "f16",
		dlt.ArrayElemF32:  "f32",
		dlt.ArrayElemF64:  "f64",
		dlt.ArrayElemF128: "f128",
	}
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}
