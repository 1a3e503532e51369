// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package serialization persists computed algorithm Results.
//
// An archive holds one Result: its tensors, the auxiliary data of a forward
// layer and whether that forward pass completed. It can only be read back
// into a Result of the same type:
//
//	fwd, _ := fullyconnected.NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
//	...
//	_ = fwd.Compute()
//	_ = serialization.WriteFile("fc.algr", fwd.Result())
//
//	res := fullyconnected.NewForwardResult()
//	_ = serialization.ReadFile("fc.algr", res)
//	layers.Link(res, bwd.Input) // a restored forward Result feeds a backward pass
package serialization

import (
	"io"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/serialization"
)

// Serializable is implemented by every Result that can be archived.
type Serializable = algorithm.Serializable

// ValidationError describes a malformed archive entry.
type ValidationError = serialization.ValidationError

// Errors reported while reading an archive.
var (
	ErrChecksumMismatch   = serialization.ErrChecksumMismatch
	ErrOffsetOverlap      = serialization.ErrOffsetOverlap
	ErrOutOfBounds        = serialization.ErrOutOfBounds
	ErrNegativeOffset     = serialization.ErrNegativeOffset
	ErrTooManyTensors     = serialization.ErrTooManyTensors
	ErrHeaderTooLarge     = serialization.ErrHeaderTooLarge
	ErrInvalidMagic       = serialization.ErrInvalidMagic
	ErrUnsupportedVersion = serialization.ErrUnsupportedVersion
	ErrTagMismatch        = serialization.ErrTagMismatch
	ErrInvalidEntry       = serialization.ErrInvalidEntry
)

// Write stores r in w.
func Write(w io.Writer, r Serializable) error {
	return serialization.Write(w, r)
}

// WriteFile stores r in a new archive at path.
func WriteFile(path string, r Serializable) error {
	return serialization.WriteFile(path, r)
}

// Read restores r from an archive written for a Result of the same type.
func Read(rd io.Reader, r Serializable) error {
	return serialization.Read(rd, r)
}

// ReadFile restores r from the archive at path.
func ReadFile(path string, r Serializable) error {
	return serialization.ReadFile(path, r)
}
