// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the reference-counted tensors every algorithm
// reads its Input from and writes its Result into.
//
// # Overview
//
// A Tensor is a dense, row-major buffer with a Shape and a DataType. Clone
// returns a second handle on the same buffer; Release drops a handle. The
// buffer lives as long as any handle does, so a forward layer can hand its
// data to the backward layer without copying.
//
// # Basic Usage
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	y := x.Clone()        // shares the buffer
//	fmt.Println(x.RefCount()) // 2
//	y.Release()
//
// Typed access goes through AsFloat32, AsFloat64, AsInt32 or the generic
// Values function; each panics when the tensor holds another type.
package tensor
