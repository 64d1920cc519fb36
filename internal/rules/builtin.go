package rules

import (
	"fmt"
	"time"

	"example.com/dltgate/internal/capture"
)

func registerBuiltins(e *Engine) {
	e.Register("checkCounterContinuity", checkCounterContinuity)
	e.Register("checkTimestampMonotonic", checkTimestampMonotonic)
	e.Register("checkStorageTimeMonotonic", checkStorageTimeMonotonic)
	e.Register("checkVerboseDecodable", checkVerboseDecodable)
	e.Register("checkMessageTypeValid", checkMessageTypeValid)
	e.Register("checkFileTruncated", checkFileTruncated)
	e.Register("checkPatternSeeks", checkPatternSeeks)
}

// DefaultRulePack returns the built-in pack evaluated when no installed
// pack matches the requested profile.
func DefaultRulePack(profile string) RulePack {
	if profile == "" {
		profile = "dlt-v1"
	}
	return RulePack{
		RulePackId: "dlt-core",
		Version:    "1.0.0",
		Profile:    profile,
		Rules: []Rule{
			{
				RuleId:    "dlt.counter.continuity",
				Name:      "message counter continuity",
				Scope:     "message",
				Severity:  WARN,
				CheckFunc: "checkCounterContinuity",
				Refs:      []string{"PRS_Dlt_00319"},
				Message:   "message counter gap",
			},
			{
				RuleId:    "dlt.timestamp.monotonic",
				Name:      "header timestamp monotonicity",
				Scope:     "message",
				Severity:  WARN,
				CheckFunc: "checkTimestampMonotonic",
				Refs:      []string{"PRS_Dlt_00354"},
				Params:    map[string]any{"toleranceTicks": 0},
				Message:   "header timestamp went backwards",
			},
			{
				RuleId:    "dlt.storage.time.monotonic",
				Name:      "storage timestamp monotonicity",
				Scope:     "message",
				Severity:  WARN,
				CheckFunc: "checkStorageTimeMonotonic",
				Message:   "storage timestamp went backwards",
			},
			{
				RuleId:    "dlt.verbose.decodable",
				Name:      "verbose payload decodability",
				Scope:     "message",
				Severity:  ERROR,
				CheckFunc: "checkVerboseDecodable",
				Refs:      []string{"PRS_Dlt_00459"},
				Message:   "verbose payload does not decode",
			},
			{
				RuleId:    "dlt.msgtype.valid",
				Name:      "extended header message type validity",
				Scope:     "message",
				Severity:  ERROR,
				CheckFunc: "checkMessageTypeValid",
				Refs:      []string{"PRS_Dlt_00120"},
				Message:   "reserved message info pattern",
			},
			{
				RuleId:    "dlt.file.truncated",
				Name:      "file ends on a record boundary",
				Scope:     "file",
				Severity:  ERROR,
				CheckFunc: "checkFileTruncated",
				Message:   "file ends in the middle of a record",
			},
			{
				RuleId:    "dlt.file.resync",
				Name:      "storage stream continuity",
				Scope:     "file",
				Severity:  WARN,
				CheckFunc: "checkPatternSeeks",
				Message:   "reader had to scan for the storage pattern",
			},
		},
	}
}

func idString(id [4]byte) string {
	b := id[:]
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return string(b)
}

// diagAt builds a message scoped diagnostic for index entry i.
func diagAt(ctx *Context, rule Rule, i int, detail string) Diagnostic {
	m := ctx.Index.Messages[i]
	msg := rule.Message
	if detail != "" {
		msg = msg + ": " + detail
	}
	return Diagnostic{
		Ts:            time.Now(),
		File:          ctx.InputFile,
		MessageIndex:  i,
		Offset:        fmt.Sprintf("0x%X", m.Offset),
		ApplicationID: idString(m.ApplicationID),
		ContextID:     idString(m.ContextID),
		RuleId:        rule.RuleId,
		Severity:      rule.Severity,
		Message:       msg,
		Refs:          rule.Refs,
	}
}

func diagFile(ctx *Context, rule Rule, detail string) Diagnostic {
	msg := rule.Message
	if detail != "" {
		msg = msg + ": " + detail
	}
	return Diagnostic{
		Ts:       time.Now(),
		File:     ctx.InputFile,
		RuleId:   rule.RuleId,
		Severity: rule.Severity,
		Message:  msg,
		Refs:     rule.Refs,
	}
}

func paramInt(rule Rule, key string, fallback int64) int64 {
	v, ok := rule.Params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return fallback
	}
}

// streamKey identifies one counter stream. The message counter counts
// per application/context pair within the originating ECU.
type streamKey struct {
	ecu [4]byte
	app [4]byte
	ctx [4]byte
}

func keyOf(m capture.MessageIndex) streamKey {
	k := streamKey{ecu: m.StorageEcuID, app: m.ApplicationID, ctx: m.ContextID}
	if m.HasHeaderEcuID {
		k.ecu = m.HeaderEcuID
	}
	return k
}

func checkCounterContinuity(ctx *Context, rule Rule) ([]Diagnostic, error) {
	last := make(map[streamKey]uint8)
	var diags []Diagnostic
	for i, m := range ctx.Index.Messages {
		key := keyOf(m)
		if prev, seen := last[key]; seen {
			expected := prev + 1
			if m.Counter != expected {
				diags = append(diags, diagAt(ctx, rule, i,
					fmt.Sprintf("counter %d after %d (expected %d)", m.Counter, prev, expected)))
			}
		}
		last[key] = m.Counter
	}
	return diags, nil
}

func checkTimestampMonotonic(ctx *Context, rule Rule) ([]Diagnostic, error) {
	tolerance := paramInt(rule, "toleranceTicks", 0)
	last := make(map[[4]byte]uint32)
	var diags []Diagnostic
	for i, m := range ctx.Index.Messages {
		if !m.HasTimestamp {
			continue
		}
		ecu := m.StorageEcuID
		if m.HasHeaderEcuID {
			ecu = m.HeaderEcuID
		}
		if prev, seen := last[ecu]; seen {
			if int64(prev)-int64(m.Timestamp) > tolerance {
				diags = append(diags, diagAt(ctx, rule, i,
					fmt.Sprintf("timestamp %d after %d", m.Timestamp, prev)))
			}
		}
		last[ecu] = m.Timestamp
	}
	return diags, nil
}

func checkStorageTimeMonotonic(ctx *Context, rule Rule) ([]Diagnostic, error) {
	var diags []Diagnostic
	var lastSec, lastMicros uint32
	seen := false
	for i, m := range ctx.Index.Messages {
		if seen {
			if m.StorageSeconds < lastSec ||
				(m.StorageSeconds == lastSec && m.StorageMicros < lastMicros) {
				diags = append(diags, diagAt(ctx, rule, i,
					fmt.Sprintf("%d.%06d after %d.%06d", m.StorageSeconds, m.StorageMicros, lastSec, lastMicros)))
			}
		}
		lastSec, lastMicros = m.StorageSeconds, m.StorageMicros
		seen = true
	}
	return diags, nil
}

func checkVerboseDecodable(ctx *Context, rule Rule) ([]Diagnostic, error) {
	var diags []Diagnostic
	for i, m := range ctx.Index.Messages {
		if m.DecodeError != "" {
			diags = append(diags, diagAt(ctx, rule, i, m.DecodeError))
		}
	}
	return diags, nil
}

func checkMessageTypeValid(ctx *Context, rule Rule) ([]Diagnostic, error) {
	var diags []Diagnostic
	for i, m := range ctx.Index.Messages {
		if m.HasExtended && !m.TypeValid {
			diags = append(diags, diagAt(ctx, rule, i, ""))
		}
	}
	return diags, nil
}

func checkFileTruncated(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if !ctx.Index.Truncated {
		return nil, nil
	}
	return []Diagnostic{diagFile(ctx, rule, "")}, nil
}

func checkPatternSeeks(ctx *Context, rule Rule) ([]Diagnostic, error) {
	if ctx.Index.PatternSeeks == 0 {
		return nil, nil
	}
	return []Diagnostic{diagFile(ctx, rule,
		fmt.Sprintf("%d pattern seeks", ctx.Index.PatternSeeks))}, nil
}
