package capture

import "example.com/dltgate/internal/dlt"

// MessageIndex is the metadata collected for one storage record during a
// scan.
type MessageIndex struct {
	// Offset of the storage header in the file.
	Offset int64

	StorageSeconds uint32
	StorageMicros  uint32
	StorageEcuID   [4]byte

	Length         uint16
	Counter        uint8
	HeaderEcuID    [4]byte
	HasHeaderEcuID bool
	SessionID      uint32
	HasSessionID   bool
	Timestamp      uint32
	HasTimestamp   bool

	HasExtended       bool
	Verbose           bool
	Kind              dlt.MessageKind
	Subtype           uint8
	TypeValid         bool
	ApplicationID     [4]byte
	ContextID         [4]byte
	NumberOfArguments uint8

	// DecodeError carries the verbose payload diagnostic, empty when the
	// payload decodes cleanly or the message is non verbose.
	DecodeError string
}

// FileIndex is the accumulated result of scanning one storage file.
type FileIndex struct {
	Path         string
	TotalBytes   int64
	Messages     []MessageIndex
	PatternSeeks int

	// Truncated is set when the file ends in the middle of a record.
	Truncated bool
}

// EcuIDs returns the distinct storage header ECU ids in first-seen
// order.
func (fi *FileIndex) EcuIDs() [][4]byte {
	seen := make(map[[4]byte]bool)
	var out [][4]byte
	for _, m := range fi.Messages {
		if !seen[m.StorageEcuID] {
			seen[m.StorageEcuID] = true
			out = append(out, m.StorageEcuID)
		}
	}
	return out
}
