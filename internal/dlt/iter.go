package dlt

import "io"

// SliceIterator cuts a buffer holding back to back messages into packet
// slices. After the first slicing error the iterator is exhausted: the
// error is surfaced exactly once and every later call returns io.EOF.
type SliceIterator struct {
	slice []byte
}

func NewSliceIterator(buf []byte) *SliceIterator {
	return &SliceIterator{slice: buf}
}

// Next returns the next message slice. It returns io.EOF once the buffer
// is consumed or after a previous error ended the iteration.
func (it *SliceIterator) Next() (PacketSlice, error) {
	if len(it.slice) == 0 {
		return PacketSlice{}, io.EOF
	}
	p, err := ParsePacket(it.slice)
	if err != nil {
		it.slice = nil
		return PacketSlice{}, err
	}
	it.slice = it.slice[len(p.Slice()):]
	return p, nil
}
