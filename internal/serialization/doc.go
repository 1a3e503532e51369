// Package serialization persists algorithm Results in the archive format
//
//	[4 bytes: Magic "ALGR"]
//	[4 bytes: Version (uint32 LE)]
//	[4 bytes: Result tag (uint32 LE)]
//	[4 bytes: Flags (uint32 LE)]
//	[8 bytes: Header size (uint64 LE)]
//	[32 bytes: SHA-256 checksum of the data section]
//	[Header: JSON entry list]
//	[Tensor data: raw little-endian bytes, 64-byte aligned]
//
// Every tensor of the Result's argument map becomes one entry, in ascending
// id order. Forward layer Results also carry their auxiliary map; those
// entries follow with Aux set, again in ascending id order. Slots holding
// anything other than a tensor are not persisted.
//
// A Result is read back only into an object declaring the same tag:
//
//	var buf bytes.Buffer
//	if err := serialization.Write(&buf, fwd.Result()); err != nil {
//	    return err
//	}
//	res := fullyconnected.NewForwardResult()
//	if err := serialization.Read(&buf, res); err != nil {
//	    return err
//	}
package serialization
