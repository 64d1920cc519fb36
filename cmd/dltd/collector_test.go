package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"example.com/dltgate/internal/capture"
	"example.com/dltgate/internal/dlt"
)

func testMessage(t *testing.T, counter uint8, withEcu bool) []byte {
	t.Helper()
	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload, 0x1234)
	h := dlt.Header{
		IsBigEndian:    true,
		MessageCounter: counter,
	}
	if withEcu {
		h.EcuID = [4]byte{'E', 'C', 'U', '9'}
		h.HasEcuID = true
	}
	if err := h.SetLength(len(payload)); err != nil {
		t.Fatalf("SetLength failed: %v", err)
	}
	return append(h.ToBytes(), payload...)
}

func TestCollectorFeed(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollector(dir, "test", 1<<20, [4]byte{'R', 'C', 'V', 'R'})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	// One datagram with two back to back messages, one with its own ECU id.
	datagram := append(testMessage(t, 0, false), testMessage(t, 1, true)...)
	n, err := c.Feed(datagram, time.Unix(1234, 0).UTC())
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("stored %d messages, want 2", n)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats := c.Stats()
	if stats.Files != 1 || stats.Messages != 2 || stats.BadFrames != 0 {
		t.Errorf("stats = %+v", stats)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var path string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".dlt" {
			path = filepath.Join(dir, e.Name())
		}
	}
	if path == "" {
		t.Fatalf("no storage file written in %v", entries)
	}

	idx, err := capture.Scan(path, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(idx.Messages) != 2 {
		t.Fatalf("scanned %d messages, want 2", len(idx.Messages))
	}
	if got := idx.Messages[0].StorageEcuID; got != [4]byte{'R', 'C', 'V', 'R'} {
		t.Errorf("message 0 storage ecu = %q", got[:])
	}
	if got := idx.Messages[1].StorageEcuID; got != [4]byte{'E', 'C', 'U', '9'} {
		t.Errorf("message 1 storage ecu = %q", got[:])
	}
}

func TestCollectorCountsBadFrames(t *testing.T) {
	c, err := NewCollector(t.TempDir(), "test", 1<<20, [4]byte{'R', 'C', 'V', 'R'})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	// Valid message followed by a garbage tail.
	datagram := append(testMessage(t, 0, false), 0xDE, 0xAD)
	n, err := c.Feed(datagram, time.Now())
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if n != 1 {
		t.Errorf("stored %d messages, want 1", n)
	}
	if stats := c.Stats(); stats.BadFrames != 1 {
		t.Errorf("BadFrames = %d, want 1", stats.BadFrames)
	}
}

func TestCollectorRotation(t *testing.T) {
	dir := t.TempDir()
	// Tiny limit forces a rotation after every message.
	c, err := NewCollector(dir, "test", 1, [4]byte{'R', 'C', 'V', 'R'})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Feed(testMessage(t, uint8(i), false), time.Now()); err != nil {
			t.Fatalf("Feed %d failed: %v", i, err)
		}
		// Distinct rotation timestamps need distinct milliseconds.
		time.Sleep(2 * time.Millisecond)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if stats := c.Stats(); stats.Files != 3 {
		t.Errorf("Files = %d, want 3", stats.Files)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storageDir: /tmp/dlt\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listen != ":3490" || cfg.MaxFileSizeMB != 256 || cfg.DefaultEcuID != "RCVR" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Logs.Directory != filepath.Join("/tmp/dlt", "logs") {
		t.Errorf("Logs.Directory = %s", cfg.Logs.Directory)
	}

	if err := os.WriteFile(path, []byte("defaultEcuId: TOOLONG\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("overlong ecu id accepted")
	}
}
