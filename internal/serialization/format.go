package serialization

import (
	"github.com/born-ml/algos/internal/argument"
)

// Format constants.
const (
	MagicBytes      = "ALGR"
	FormatVersion   = 1
	HeaderAlignment = 64 // Tensor data starts on a 64-byte boundary
	ChecksumSize    = 32 // SHA-256
	FixedHeaderSize = 4 + 4 + 4 + 4 + 8 + ChecksumSize
)

// Flags of the fixed header.
const (
	// FlagCompleted marks auxiliary data written by a successful forward pass.
	FlagCompleted uint32 = 1 << 0
)

// Header is the JSON header of an archive.
type Header struct {
	Entries []Entry `json:"entries"`
}

// Entry describes one tensor in the data section.
type Entry struct {
	ID     int    `json:"id"`            // Argument id within its map
	Aux    bool   `json:"aux,omitempty"` // Entry belongs to the auxiliary map
	DType  string `json:"dtype"`         // tensor.DataType name
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Bytes
}

// Auxiliary is implemented by Results that also own an auxiliary map, such
// as forward layer Results.
type Auxiliary interface {
	AuxiliaryArguments() *argument.Map
	Computed() bool
	Begin()
	Complete()
}

func padding(pos int64) int64 {
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
