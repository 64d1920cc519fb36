package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"example.com/dltgate/internal/common"
	"example.com/dltgate/internal/dlt"
	"example.com/dltgate/internal/storage"
)

// CollectorStats is a snapshot of the ingest counters.
type CollectorStats struct {
	Files     int
	Messages  int64
	Bytes     int64
	BadFrames int64
}

// Collector frames incoming message datagrams into storage files under
// dir, rotating by size. A datagram may carry several back to back
// messages.
type Collector struct {
	dir        string
	prefix     string
	maxBytes   int64
	defaultEcu [4]byte

	mu      sync.Mutex
	file    *os.File
	writer  *storage.Writer
	written int64
	stats   CollectorStats
}

func NewCollector(dir, prefix string, maxBytes int64, defaultEcu [4]byte) (*Collector, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if prefix == "" {
		prefix = "capture"
	}
	if maxBytes <= 0 {
		maxBytes = 256 << 20
	}
	return &Collector{dir: dir, prefix: prefix, maxBytes: maxBytes, defaultEcu: defaultEcu}, nil
}

// Feed splits the datagram into messages and appends each to the current
// storage file. It returns the number of stored messages; a malformed
// tail is counted but not stored.
func (c *Collector) Feed(datagram []byte, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := 0
	it := dlt.NewSliceIterator(datagram)
	for {
		p, err := it.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			c.stats.BadFrames++
			common.Warnf("dropping malformed frame: %v", err)
			break
		}
		if err := c.store(p, now); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func (c *Collector) store(p dlt.PacketSlice, now time.Time) error {
	if err := c.ensureFile(); err != nil {
		return err
	}
	ecu := c.defaultEcu
	if h := p.Header(); h.HasEcuID {
		ecu = h.EcuID
	}
	if err := c.writer.WriteSlice(storage.NewHeader(now, ecu), p); err != nil {
		return err
	}
	size := int64(storage.HeaderSize + len(p.Slice()))
	c.written += size
	c.stats.Messages++
	c.stats.Bytes += size
	if c.written >= c.maxBytes {
		return c.closeFile()
	}
	return nil
}

func (c *Collector) ensureFile() error {
	if c.file != nil {
		return nil
	}
	name := fmt.Sprintf("%s-%s.dlt", c.prefix, time.Now().UTC().Format("20060102-150405.000"))
	path := filepath.Join(c.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("open storage file: %w", err)
	}
	c.file = f
	c.writer = storage.NewWriter(f)
	c.written = 0
	c.stats.Files++
	common.Logf("writing %s", path)
	return nil
}

func (c *Collector) closeFile() error {
	if c.file == nil {
		return nil
	}
	err := c.writer.Flush()
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	c.file = nil
	c.writer = nil
	return err
}

// Stats returns a snapshot of the ingest counters.
func (c *Collector) Stats() CollectorStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close flushes and closes the current storage file.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeFile()
}
