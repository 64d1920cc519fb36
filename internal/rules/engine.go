// Package rules evaluates validation rule packs against the index of a
// scanned DLT storage file and produces diagnostics and an acceptance
// report.
package rules

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"example.com/dltgate/internal/capture"
)

type Severity string

const (
	ERROR Severity = "ERROR"
	WARN  Severity = "WARN"
	INFO  Severity = "INFO"
)

// Rule is one entry of a rule pack. CheckFunc names a registered check
// implementation.
type Rule struct {
	RuleId    string         `json:"ruleId"`
	Name      string         `json:"name,omitempty"`
	Scope     string         `json:"scope"` // message|file
	Severity  Severity       `json:"severity"`
	CheckFunc string         `json:"checkFunction"`
	Refs      []string       `json:"refs,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Message   string         `json:"message"`
}

type RulePack struct {
	RulePackId string `json:"rulePackId"`
	Version    string `json:"version"`
	Profile    string `json:"profile"`
	Rules      []Rule `json:"rules"`
}

// Diagnostic is one finding, serialized as a JSONL line.
type Diagnostic struct {
	Ts            time.Time `json:"ts"`
	File          string    `json:"file"`
	MessageIndex  int       `json:"messageIndex,omitempty"`
	Offset        string    `json:"offset,omitempty"`
	ApplicationID string    `json:"applicationId,omitempty"`
	ContextID     string    `json:"contextId,omitempty"`
	RuleId        string    `json:"ruleId"`
	Severity      Severity  `json:"severity"`
	Message       string    `json:"message"`
	Refs          []string  `json:"refs,omitempty"`
}

type AcceptanceReport struct {
	Summary struct {
		Total    int  `json:"total"`
		Errors   int  `json:"errors"`
		Warnings int  `json:"warnings"`
		Pass     bool `json:"pass"`
	} `json:"summary"`
	Findings []Diagnostic `json:"findings,omitempty"`
}

// Context carries the evaluation input. The index is built lazily from
// InputFile when not supplied by the caller.
type Context struct {
	InputFile string
	Profile   string

	Index *capture.FileIndex
}

func (ctx *Context) EnsureFileIndex() error {
	if ctx == nil {
		return errors.New("nil context")
	}
	if ctx.Index != nil {
		return nil
	}
	if ctx.InputFile == "" {
		return errors.New("no input file")
	}
	idx, err := capture.Scan(ctx.InputFile, nil)
	if err != nil {
		return err
	}
	ctx.Index = &idx
	return nil
}

// CheckFunc evaluates one rule against the context and returns its
// findings.
type CheckFunc func(ctx *Context, rule Rule) ([]Diagnostic, error)

type Engine struct {
	rulePack    RulePack
	registry    map[string]CheckFunc
	diagnostics []Diagnostic
}

// NewEngine builds an engine for the pack with all built-in checks
// registered.
func NewEngine(rp RulePack) *Engine {
	e := &Engine{
		rulePack: rp,
		registry: make(map[string]CheckFunc),
	}
	registerBuiltins(e)
	return e
}

// Register binds a check implementation name usable from rule packs.
func (e *Engine) Register(name string, f CheckFunc) {
	e.registry[name] = f
}

// Eval runs every rule of the pack and collects the diagnostics.
func (e *Engine) Eval(ctx *Context) ([]Diagnostic, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	if err := ctx.EnsureFileIndex(); err != nil {
		return nil, err
	}
	var diags []Diagnostic
	for _, r := range e.rulePack.Rules {
		if r.CheckFunc == "" {
			continue
		}
		fn, ok := e.registry[r.CheckFunc]
		if !ok {
			diags = append(diags, Diagnostic{
				Ts: time.Now(), File: ctx.InputFile, RuleId: r.RuleId, Severity: WARN,
				Message: fmt.Sprintf("no check implementation named %q", r.CheckFunc),
				Refs:    r.Refs,
			})
			continue
		}
		found, err := fn(ctx, r)
		if err != nil {
			diags = append(diags, Diagnostic{
				Ts: time.Now(), File: ctx.InputFile, RuleId: r.RuleId, Severity: ERROR,
				Message: r.Message + " (" + err.Error() + ")", Refs: r.Refs,
			})
			continue
		}
		diags = append(diags, found...)
	}
	e.diagnostics = diags
	return diags, nil
}

// WriteDiagnosticsNDJSON writes the collected diagnostics one JSON
// object per line.
func (e *Engine) WriteDiagnosticsNDJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	for _, d := range e.diagnostics {
		b, err := json.Marshal(d)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// MakeAcceptance summarizes the collected diagnostics. A file passes
// when no finding has ERROR severity.
func (e *Engine) MakeAcceptance() AcceptanceReport {
	var rep AcceptanceReport
	var errs, warns int
	for _, d := range e.diagnostics {
		switch d.Severity {
		case ERROR:
			errs++
		case WARN:
			warns++
		}
	}
	rep.Summary.Total = len(e.diagnostics)
	rep.Summary.Errors = errs
	rep.Summary.Warnings = warns
	rep.Summary.Pass = errs == 0
	rep.Findings = e.diagnostics
	return rep
}

// LoadRulePack reads a rule pack from a JSON file.
func LoadRulePack(path string) (RulePack, error) {
	var rp RulePack
	b, err := os.ReadFile(path)
	if err != nil {
		return rp, err
	}
	err = json.Unmarshal(b, &rp)
	return rp, err
}
