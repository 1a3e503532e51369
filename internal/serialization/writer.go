package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// collect appends one entry per tensor of args and returns the advanced offset.
func collect(args *argument.Map, aux bool, offset int64, entries []Entry, data [][]byte) (int64, []Entry, [][]byte) {
	for _, id := range args.IDs() {
		t, ok := args.Get(id).(*tensor.Tensor)
		if !ok || t == nil {
			continue
		}
		size := int64(t.ByteSize())
		entries = append(entries, Entry{
			ID:     int(id),
			Aux:    aux,
			DType:  t.DType().String(),
			Shape:  []int(t.Shape()),
			Offset: offset,
			Size:   size,
		})
		data = append(data, t.Data())
		offset += size
	}
	return offset, entries, data
}

// Write serializes every tensor of r to w.
func Write(w io.Writer, r algorithm.Serializable) error {
	var (
		entries []Entry
		chunks  [][]byte
		offset  int64
		flags   uint32
	)
	offset, entries, chunks = collect(r.Arguments(), false, offset, entries, chunks)
	if a, ok := r.(Auxiliary); ok {
		_, entries, chunks = collect(a.AuxiliaryArguments(), true, offset, entries, chunks)
		if a.Computed() {
			flags |= FlagCompleted
		}
	}

	headerJSON, err := json.Marshal(Header{Entries: entries})
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	data := bytes.Join(chunks, nil)

	var fixed bytes.Buffer
	fixed.WriteString(MagicBytes)
	_ = binary.Write(&fixed, binary.LittleEndian, uint32(FormatVersion))
	_ = binary.Write(&fixed, binary.LittleEndian, r.SerializationTag())
	_ = binary.Write(&fixed, binary.LittleEndian, flags)
	_ = binary.Write(&fixed, binary.LittleEndian, uint64(len(headerJSON)))
	checksum := ComputeChecksum(data)
	fixed.Write(checksum[:])

	if _, err := w.Write(fixed.Bytes()); err != nil {
		return errors.Wrap(err, "write fixed header")
	}
	if _, err := w.Write(headerJSON); err != nil {
		return errors.Wrap(err, "write header")
	}
	if pad := padding(int64(FixedHeaderSize + len(headerJSON))); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return errors.Wrap(err, "write padding")
		}
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write tensor data")
	}
	return nil
}

// WriteFile serializes r to the file at path.
func WriteFile(path string, r algorithm.Serializable) error {
	//nolint:gosec // G304: archive path is chosen by the caller
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create archive")
	}
	if err := Write(f, r); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
