package serialization

import (
	"fmt"
	"sort"

	"github.com/born-ml/algos/internal/tensor"
)

// Validation limits.
const (
	MaxHeaderSize  = 16 * 1024 * 1024
	MaxEntryCount  = 4096
	maxEntryLength = 1 << 40
)

func (e Entry) String() string {
	if e.Aux {
		return fmt.Sprintf("aux[%d]", e.ID)
	}
	return fmt.Sprintf("[%d]", e.ID)
}

// entryLength multiplies the dimensions of a validated shape, failing as
// soon as the product would exceed maxEntryLength.
func entryLength(shape tensor.Shape) (int64, bool) {
	n := int64(1)
	for _, d := range shape {
		if int64(d) > maxEntryLength/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}

// ValidateEntries checks every entry against the id spaces of the target
// maps and the size of the data section: known dtype, ids in range, sizes
// matching the shape, no overlapping or out-of-bounds regions.
func ValidateEntries(entries []Entry, dataSize int64, nArgs, nAux int) error {
	if len(entries) > MaxEntryCount {
		return &ValidationError{Err: ErrTooManyTensors, Details: fmt.Sprintf("got %d, max %d", len(entries), MaxEntryCount)}
	}

	for _, e := range entries {
		limit := nArgs
		if e.Aux {
			limit = nAux
		}
		if e.ID < 0 || e.ID >= limit {
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(), Details: fmt.Sprintf("id outside [0, %d)", limit)}
		}
		dtype, ok := tensor.ParseDataType(e.DType)
		if !ok {
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(), Details: fmt.Sprintf("unknown dtype %q", e.DType)}
		}
		shape := tensor.Shape(e.Shape)
		if err := shape.Validate(); err != nil {
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(), Details: err.Error()}
		}
		n, ok := entryLength(shape)
		if !ok {
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(),
				Details: fmt.Sprintf("shape %v exceeds %d elements", e.Shape, int64(maxEntryLength))}
		}
		if n*int64(dtype.Size()) != e.Size {
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(),
				Details: fmt.Sprintf("size %d does not match %s%v", e.Size, dtype, e.Shape)}
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, e := range sorted {
		if e.Offset < 0 || e.Size < 0 {
			return &ValidationError{Err: ErrNegativeOffset, Entry: e.String(),
				Details: fmt.Sprintf("offset=%d, size=%d", e.Offset, e.Size)}
		}
		if e.Offset+e.Size > dataSize {
			return &ValidationError{Err: ErrOutOfBounds, Entry: e.String(),
				Details: fmt.Sprintf("offset %d + size %d > data size %d", e.Offset, e.Size, dataSize)}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if e.Offset+e.Size > next.Offset {
				return &ValidationError{Err: ErrOffsetOverlap, Entry: e.String(), Entry2: next.String(),
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						e.Offset, e.Offset+e.Size, next.Offset, next.Offset+next.Size)}
			}
		}
	}
	return nil
}
