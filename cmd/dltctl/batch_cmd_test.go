package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"example.com/dltgate/internal/dlt"
	"example.com/dltgate/internal/rules"
	"example.com/dltgate/internal/storage"
)

func writeSyntheticCapture(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	w := storage.NewWriter(&buf)
	base := time.Unix(1_700_000_000, 0).UTC()
	for i := 0; i < 4; i++ {
		payload := make([]byte, 8)
		binary.BigEndian.PutUint32(payload, 0x2301)
		binary.BigEndian.PutUint32(payload[4:], uint32(i))
		ext := dlt.NewNonVerboseLogExtendedHeader(dlt.LogLevelInfo,
			[4]byte{'A', 'P', 'P', '1'}, [4]byte{'C', 'T', 'X', '1'})
		h := dlt.Header{
			IsBigEndian:    true,
			MessageCounter: uint8(i),
			Timestamp:      uint32(1000 * (i + 1)),
			HasTimestamp:   true,
			Extended:       &ext,
		}
		if err := h.SetLength(len(payload)); err != nil {
			t.Fatalf("SetLength: %v", err)
		}
		msg := append(h.ToBytes(), payload...)
		sh := storage.NewHeader(base.Add(time.Duration(i)*time.Second), [4]byte{'E', 'C', 'U', '1'})
		if err := w.WriteMessage(sh, msg); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestBatchCmdGeneratesOutputs(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "inputs")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("MkdirAll inputs: %v", err)
	}
	outDir := filepath.Join(root, "out")

	writeSyntheticCapture(t, filepath.Join(inputDir, "alpha.dlt"))
	writeSyntheticCapture(t, filepath.Join(inputDir, "beta.dlt"))

	batchCmd([]string{
		"--in", inputDir,
		"--profile", "dlt-v1",
		"--out-dir", outDir,
	})

	check := func(name string) {
		out := filepath.Join(outDir, name)
		if info, err := os.Stat(out); err != nil || !info.IsDir() {
			t.Fatalf("Output dir missing for %s: %v", name, err)
		}
		diagPath := filepath.Join(out, "diagnostics.jsonl")
		if _, err := os.Stat(diagPath); err != nil {
			t.Fatalf("Stat diagnostics %s: %v", name, err)
		}
		accPath := filepath.Join(out, "acceptance.json")
		data, err := os.ReadFile(accPath)
		if err != nil {
			t.Fatalf("ReadFile acceptance %s: %v", name, err)
		}
		var rep rules.AcceptanceReport
		if err := json.Unmarshal(data, &rep); err != nil {
			t.Fatalf("Unmarshal acceptance %s: %v", name, err)
		}
		if !rep.Summary.Pass || rep.Summary.Errors != 0 {
			t.Fatalf("unexpected acceptance summary for %s: %+v", name, rep.Summary)
		}
	}

	check("alpha")
	check("beta")
}
