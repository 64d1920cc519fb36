package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildAndSave(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "drive.dlt")
	diag := filepath.Join(dir, "diag.jsonl")
	if err := os.WriteFile(capture, []byte("DLT\x01payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(diag, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := Build([]string{capture, diag})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m.Items) != 2 {
		t.Fatalf("got %d items", len(m.Items))
	}
	if m.Items[0].Type != "dlt" || m.Items[1].Type != "diagnostics" {
		t.Errorf("types = %s, %s", m.Items[0].Type, m.Items[1].Type)
	}
	if m.Items[0].Size != 11 {
		t.Errorf("Size = %d, want 11", m.Items[0].Size)
	}
	if len(m.Items[0].Sha256) != 64 {
		t.Errorf("Sha256 = %q", m.Items[0].Sha256)
	}

	out := filepath.Join(dir, "manifest.json")
	if err := Save(m, out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Sha256 != m.Items[0].Sha256 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestBuildMissingFile(t *testing.T) {
	if _, err := Build([]string{filepath.Join(t.TempDir(), "missing.dlt")}); err == nil {
		t.Fatal("missing file accepted")
	}
}
