package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

type fixedHeader struct {
	Magic      [4]byte
	Version    uint32
	Tag        uint32
	Flags      uint32
	HeaderSize uint64
	Checksum   [ChecksumSize]byte
}

// Read restores r from an archive written by Write for a Result with the
// same serialization tag. Tensors stored in the archive replace the
// corresponding slots of r; slots absent from the archive are left as they are.
func Read(rd io.Reader, r algorithm.Serializable) error {
	var fh fixedHeader
	if err := binary.Read(rd, binary.LittleEndian, &fh); err != nil {
		return errors.Wrap(err, "read fixed header")
	}
	if string(fh.Magic[:]) != MagicBytes {
		return ErrInvalidMagic
	}
	if fh.Version != FormatVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", fh.Version, FormatVersion)
	}
	if fh.Tag != r.SerializationTag() {
		return errors.Wrapf(ErrTagMismatch, "archive tag %#04x, result tag %#04x", fh.Tag, r.SerializationTag())
	}
	if fh.HeaderSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerJSON := make([]byte, fh.HeaderSize)
	if _, err := io.ReadFull(rd, headerJSON); err != nil {
		return errors.Wrap(err, "read header")
	}
	var h Header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return errors.Wrap(err, "parse header JSON")
	}
	//nolint:gosec // G115: header size bounded by MaxHeaderSize
	if _, err := io.CopyN(io.Discard, rd, padding(int64(FixedHeaderSize)+int64(fh.HeaderSize))); err != nil {
		return errors.Wrap(err, "skip padding")
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return errors.Wrap(err, "read tensor data")
	}
	if err := ValidateChecksum(ComputeChecksum(data), fh.Checksum); err != nil {
		return err
	}

	args := r.Arguments()
	var auxArgs *argument.Map
	aux, hasAux := r.(Auxiliary)
	nAux := 0
	if hasAux {
		auxArgs = aux.AuxiliaryArguments()
		nAux = auxArgs.Len()
	}
	if err := ValidateEntries(h.Entries, int64(len(data)), args.Len(), nAux); err != nil {
		return err
	}

	for _, e := range h.Entries {
		dtype, _ := tensor.ParseDataType(e.DType)
		t, err := tensor.New(tensor.Shape(e.Shape), dtype)
		if err != nil {
			return errors.Wrapf(err, "entry %s", e)
		}
		copy(t.Data(), data[e.Offset:e.Offset+e.Size])

		dst := args
		if e.Aux {
			dst = auxArgs
		}
		id := argument.ID(e.ID)
		switch old := dst.Get(id).(type) {
		case nil:
		case *tensor.Tensor:
			if e.Aux {
				old.Release()
			}
		default:
			return &ValidationError{Err: ErrInvalidEntry, Entry: e.String(), Details: "slot does not hold a tensor"}
		}
		dst.Set(id, t)
	}

	if hasAux {
		if fh.Flags&FlagCompleted != 0 {
			aux.Complete()
		} else {
			aux.Begin()
		}
	}
	return nil
}

// ReadFile restores r from the archive at path.
func ReadFile(path string, r algorithm.Serializable) error {
	//nolint:gosec // G304: archive path is chosen by the caller
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer func() { _ = f.Close() }()
	return errors.Wrapf(Read(f, r), "read %s", path)
}
