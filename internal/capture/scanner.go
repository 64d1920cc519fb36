// Package capture scans DLT storage files sequentially and builds a
// per-message index used by the rule engine and the export pipeline.
package capture

import (
	"io"
	"os"

	"example.com/dltgate/internal/common"
	"example.com/dltgate/internal/dlt"
	"example.com/dltgate/internal/storage"
)

// Scanner iterates the records of a storage file while accumulating a
// FileIndex.
type Scanner struct {
	file    *os.File
	size    int64
	reader  *storage.Reader
	metrics *common.Metrics
	index   FileIndex
	seeks   int
}

// NewScanner opens the file at path with a pattern seeking reader.
func NewScanner(path string) (*Scanner, error) {
	return newScanner(path, false)
}

// NewStrictScanner opens the file at path with a reader that stops at
// the first malformed byte.
func NewStrictScanner(path string) (*Scanner, error) {
	return newScanner(path, true)
}

func newScanner(path string, strict bool) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r := storage.NewReader(f)
	if strict {
		r = storage.NewStrictReader(f)
	}
	return &Scanner{
		file:   f,
		size:   info.Size(),
		reader: r,
		index:  FileIndex{Path: path, TotalBytes: info.Size()},
	}, nil
}

// Close releases the underlying file handle.
func (s *Scanner) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// SetMetrics attaches a metrics recorder to the scanner.
func (s *Scanner) SetMetrics(m *common.Metrics) {
	s.metrics = m
	if s.metrics != nil {
		s.metrics.SetTotalBytes(s.size)
	}
}

// Index returns a copy of the accumulated index.
func (s *Scanner) Index() FileIndex {
	out := s.index
	out.Messages = make([]MessageIndex, len(s.index.Messages))
	copy(out.Messages, s.index.Messages)
	return out
}

// Next returns the next record and its index entry. It returns io.EOF at
// the end of the file; io.ErrUnexpectedEOF marks a file that ends mid
// record and is also reflected in the index.
func (s *Scanner) Next() (storage.Record, MessageIndex, error) {
	rec, err := s.reader.Next()
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			s.index.Truncated = true
		}
		s.index.PatternSeeks = s.reader.PatternSeeks()
		return storage.Record{}, MessageIndex{}, err
	}

	if seeks := s.reader.PatternSeeks(); seeks > s.seeks {
		if s.metrics != nil {
			for i := s.seeks; i < seeks; i++ {
				s.metrics.IncPatternSeek()
			}
		}
		s.seeks = seeks
	}
	s.index.PatternSeeks = s.seeks

	entry := indexRecord(rec)
	s.index.Messages = append(s.index.Messages, entry)
	if s.metrics != nil {
		s.metrics.AddMessage(storage.HeaderSize + int64(len(rec.Packet.Slice())))
	}
	return rec, entry, nil
}

func indexRecord(rec storage.Record) MessageIndex {
	h := rec.Packet.Header()
	entry := MessageIndex{
		Offset:         rec.Offset,
		StorageSeconds: rec.StorageHeader.TimestampSeconds,
		StorageMicros:  rec.StorageHeader.TimestampMicroseconds,
		StorageEcuID:   rec.StorageHeader.EcuID,
		Length:         h.Length,
		Counter:        h.MessageCounter,
		HeaderEcuID:    h.EcuID,
		HasHeaderEcuID: h.HasEcuID,
		SessionID:      h.SessionID,
		HasSessionID:   h.HasSessionID,
		Timestamp:      h.Timestamp,
		HasTimestamp:   h.HasTimestamp,
	}
	if h.Extended != nil {
		entry.HasExtended = true
		entry.Verbose = h.Extended.IsVerbose()
		entry.ApplicationID = h.Extended.ApplicationID
		entry.ContextID = h.Extended.ContextID
		entry.NumberOfArguments = h.Extended.NumberOfArguments
		if mt, ok := h.Extended.MessageType(); ok {
			entry.Kind = mt.Kind
			entry.Subtype = mt.Subtype
			entry.TypeValid = true
		}
	}
	if entry.Verbose {
		entry.DecodeError = verboseDiagnostic(rec.Packet)
	}
	return entry
}

// verboseDiagnostic dry runs the verbose argument decoder and returns
// the first error as text.
func verboseDiagnostic(p dlt.PacketSlice) string {
	it, ok := p.VerboseIter()
	if !ok {
		return ""
	}
	for {
		_, err := it.Next()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			return err.Error()
		}
	}
}

// Scan reads the whole file at path and returns its index. A truncated
// final record is reported through the index rather than as an error.
func Scan(path string, metrics *common.Metrics) (FileIndex, error) {
	s, err := NewScanner(path)
	if err != nil {
		return FileIndex{}, err
	}
	defer s.Close()
	s.SetMetrics(metrics)

	for {
		_, _, err := s.Next()
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return s.Index(), err
		}
	}
	return s.Index(), nil
}
