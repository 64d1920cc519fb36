package dlt

import "io"

// Iter walks the verbose arguments of a message payload. After a decode
// error the iterator is exhausted: the error is surfaced exactly once and
// every later call returns io.EOF.
type Iter struct {
	bigEndian bool
	remaining uint16
	rest      []byte
}

// NewIter builds an iterator over payload holding numberOfArguments
// verbose values.
func NewIter(bigEndian bool, numberOfArguments uint16, payload []byte) *Iter {
	return &Iter{
		bigEndian: bigEndian,
		remaining: numberOfArguments,
		rest:      payload,
	}
}

// IsBigEndian reports the payload endianness the iterator decodes with.
func (it *Iter) IsBigEndian() bool {
	return it.bigEndian
}

// Remaining returns the number of arguments not yet consumed.
func (it *Iter) Remaining() uint16 {
	return it.remaining
}

// Rest returns the bytes not yet consumed.
func (it *Iter) Rest() []byte {
	return it.rest
}

// Next decodes the next argument. It returns io.EOF once all arguments
// are consumed or after a previous decode error ended the iteration.
func (it *Iter) Next() (Value, error) {
	if it.remaining == 0 {
		return nil, io.EOF
	}
	value, rest, err := DecodeValue(it.rest, it.bigEndian)
	if err != nil {
		it.remaining = 0
		it.rest = nil
		return nil, err
	}
	it.remaining--
	it.rest = rest
	return value, nil
}

// PreCheckedIter is an iterator whose payload was fully validated at
// construction, so consumption cannot fail.
type PreCheckedIter struct {
	inner Iter
}

// NewPreCheckedIter dry runs a full decode pass over the payload and
// fails if any contained value is malformed. The returned iterator then
// yields only valid values.
func NewPreCheckedIter(bigEndian bool, numberOfArguments uint16, payload []byte) (*PreCheckedIter, error) {
	dry := NewIter(bigEndian, numberOfArguments, payload)
	for {
		if _, err := dry.Next(); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}
	return &PreCheckedIter{inner: *NewIter(bigEndian, numberOfArguments, payload)}, nil
}

// Next returns the next argument. The second return value is false once
// all arguments are consumed.
func (it *PreCheckedIter) Next() (Value, bool) {
	value, err := it.inner.Next()
	if err != nil {
		return nil, false
	}
	return value, true
}
