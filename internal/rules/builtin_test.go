package rules

import (
	"testing"

	"example.com/dltgate/internal/capture"
)

func ecu(s string) [4]byte {
	var id [4]byte
	copy(id[:], s)
	return id
}

func msgAt(counter uint8, ts uint32) capture.MessageIndex {
	return capture.MessageIndex{
		StorageEcuID:  ecu("ECU1"),
		Counter:       counter,
		Timestamp:     ts,
		HasTimestamp:  true,
		HasExtended:   true,
		TypeValid:     true,
		ApplicationID: ecu("APP1"),
		ContextID:     ecu("CTX1"),
	}
}

func evalRule(t *testing.T, rule Rule, idx capture.FileIndex) []Diagnostic {
	t.Helper()
	e := NewEngine(RulePack{Rules: []Rule{rule}})
	diags, err := e.Eval(&Context{InputFile: "test.dlt", Index: &idx})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return diags
}

func findRule(pack RulePack, id string) Rule {
	for _, r := range pack.Rules {
		if r.RuleId == id {
			return r
		}
	}
	return Rule{}
}

func TestCounterContinuity(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.counter.continuity")
	if rule.CheckFunc == "" {
		t.Fatal("rule missing from default pack")
	}

	cases := []struct {
		name     string
		counters []uint8
		want     int
	}{
		{"contiguous", []uint8{0, 1, 2, 3}, 0},
		{"wraparound", []uint8{254, 255, 0, 1}, 0},
		{"one gap", []uint8{0, 1, 3}, 1},
		{"two gaps", []uint8{0, 2, 4}, 2},
		{"single message", []uint8{7}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var idx capture.FileIndex
			for _, c := range tc.counters {
				idx.Messages = append(idx.Messages, msgAt(c, 0))
			}
			diags := evalRule(t, rule, idx)
			if len(diags) != tc.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(diags), tc.want, diags)
			}
		})
	}
}

func TestCounterContinuityPerStream(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.counter.continuity")

	// Two interleaved app/ctx streams, each contiguous on its own.
	a := msgAt(0, 0)
	b := msgAt(0, 0)
	b.ApplicationID = ecu("APP2")
	a2 := msgAt(1, 0)
	b2 := msgAt(1, 0)
	b2.ApplicationID = ecu("APP2")

	idx := capture.FileIndex{Messages: []capture.MessageIndex{a, b, a2, b2}}
	if diags := evalRule(t, rule, idx); len(diags) != 0 {
		t.Fatalf("interleaved streams flagged: %+v", diags)
	}
}

func TestTimestampMonotonic(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.timestamp.monotonic")

	cases := []struct {
		name string
		ts   []uint32
		want int
	}{
		{"increasing", []uint32{10, 20, 30}, 0},
		{"flat", []uint32{10, 10, 10}, 0},
		{"regression", []uint32{10, 30, 20}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var idx capture.FileIndex
			for i, ts := range tc.ts {
				idx.Messages = append(idx.Messages, msgAt(uint8(i), ts))
			}
			diags := evalRule(t, rule, idx)
			if len(diags) != tc.want {
				t.Fatalf("got %d diagnostics, want %d: %+v", len(diags), tc.want, diags)
			}
		})
	}
}

func TestTimestampMonotonicSkipsMessagesWithoutTimestamp(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.timestamp.monotonic")

	m := msgAt(1, 0)
	m.HasTimestamp = false
	idx := capture.FileIndex{Messages: []capture.MessageIndex{msgAt(0, 100), m, msgAt(2, 120)}}
	if diags := evalRule(t, rule, idx); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
}

func TestTimestampMonotonicTolerance(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.timestamp.monotonic")
	rule.Params = map[string]any{"toleranceTicks": 15}

	idx := capture.FileIndex{Messages: []capture.MessageIndex{msgAt(0, 100), msgAt(1, 90)}}
	if diags := evalRule(t, rule, idx); len(diags) != 0 {
		t.Fatalf("regression within tolerance flagged: %+v", diags)
	}

	idx = capture.FileIndex{Messages: []capture.MessageIndex{msgAt(0, 100), msgAt(1, 80)}}
	if diags := evalRule(t, rule, idx); len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
}

func TestStorageTimeMonotonic(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.storage.time.monotonic")

	m := func(sec, micros uint32) capture.MessageIndex {
		e := msgAt(0, 0)
		e.StorageSeconds, e.StorageMicros = sec, micros
		return e
	}
	cases := []struct {
		name string
		msgs []capture.MessageIndex
		want int
	}{
		{"increasing", []capture.MessageIndex{m(1, 0), m(1, 500), m(2, 0)}, 0},
		{"micros regression", []capture.MessageIndex{m(1, 500), m(1, 400)}, 1},
		{"seconds regression", []capture.MessageIndex{m(2, 0), m(1, 999999)}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			diags := evalRule(t, rule, capture.FileIndex{Messages: tc.msgs})
			if len(diags) != tc.want {
				t.Fatalf("got %d diagnostics, want %d", len(diags), tc.want)
			}
		})
	}
}

func TestVerboseDecodable(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.verbose.decodable")

	bad := msgAt(1, 0)
	bad.DecodeError = "invalid type info FFFFFFFF"
	idx := capture.FileIndex{Messages: []capture.MessageIndex{msgAt(0, 0), bad}}

	diags := evalRule(t, rule, idx)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if diags[0].MessageIndex != 1 {
		t.Errorf("MessageIndex = %d, want 1", diags[0].MessageIndex)
	}
	if diags[0].Severity != ERROR {
		t.Errorf("Severity = %s, want ERROR", diags[0].Severity)
	}
	if diags[0].ApplicationID != "APP1" || diags[0].ContextID != "CTX1" {
		t.Errorf("ids = %q/%q", diags[0].ApplicationID, diags[0].ContextID)
	}
}

func TestMessageTypeValid(t *testing.T) {
	pack := DefaultRulePack("")
	rule := findRule(pack, "dlt.msgtype.valid")

	reserved := msgAt(1, 0)
	reserved.TypeValid = false
	plain := msgAt(2, 0)
	plain.HasExtended = false
	plain.TypeValid = false
	idx := capture.FileIndex{Messages: []capture.MessageIndex{msgAt(0, 0), reserved, plain}}

	diags := evalRule(t, rule, idx)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %+v", len(diags), diags)
	}
	if diags[0].MessageIndex != 1 {
		t.Errorf("MessageIndex = %d, want 1", diags[0].MessageIndex)
	}
}

func TestFileScopedChecks(t *testing.T) {
	pack := DefaultRulePack("")

	t.Run("truncated", func(t *testing.T) {
		rule := findRule(pack, "dlt.file.truncated")
		if diags := evalRule(t, rule, capture.FileIndex{}); len(diags) != 0 {
			t.Fatalf("clean file flagged: %+v", diags)
		}
		diags := evalRule(t, rule, capture.FileIndex{Truncated: true})
		if len(diags) != 1 || diags[0].Severity != ERROR {
			t.Fatalf("got %+v", diags)
		}
	})

	t.Run("pattern seeks", func(t *testing.T) {
		rule := findRule(pack, "dlt.file.resync")
		if diags := evalRule(t, rule, capture.FileIndex{}); len(diags) != 0 {
			t.Fatalf("clean file flagged: %+v", diags)
		}
		diags := evalRule(t, rule, capture.FileIndex{PatternSeeks: 2})
		if len(diags) != 1 || diags[0].Severity != WARN {
			t.Fatalf("got %+v", diags)
		}
	})
}
