package storage

import (
	"bufio"
	"io"

	"example.com/dltgate/internal/dlt"
)

// Writer appends storage records to a stream. Writes are buffered;
// callers must Flush before the underlying stream is closed.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteSlice appends one already parsed message with the given framing
// header.
func (w *Writer) WriteSlice(h Header, p dlt.PacketSlice) error {
	if err := h.Write(w.w); err != nil {
		return err
	}
	_, err := w.w.Write(p.Slice())
	return err
}

// WriteMessage validates msg as a single DLT message and appends it.
// Trailing bytes beyond the message length are dropped.
func (w *Writer) WriteMessage(h Header, msg []byte) error {
	p, err := dlt.ParsePacket(msg)
	if err != nil {
		return err
	}
	return w.WriteSlice(h, p)
}

// Flush writes any buffered records to the underlying stream.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
