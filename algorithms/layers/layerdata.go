// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"sync/atomic"

	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// LayerData is the auxiliary map a forward Result hands to its backward
// counterpart. It records whether the forward pass completed.
type LayerData struct {
	args     *argument.Map
	computed atomic.Bool
}

// NewLayerData creates an empty map with auxiliary ids [0, n).
func NewLayerData(n int) *LayerData {
	return &LayerData{args: argument.New(n)}
}

// Arguments returns the underlying map.
func (d *LayerData) Arguments() *argument.Map {
	return d.args
}

// Tensor returns the auxiliary tensor id, or nil if it was not written.
func (d *LayerData) Tensor(id argument.ID) *tensor.Tensor {
	return d.args.Tensor(id)
}

// Set writes the auxiliary tensor id.
func (d *LayerData) Set(id argument.ID, t *tensor.Tensor) {
	d.args.Set(id, t)
}

// Computed reports whether a forward pass completed since the map was
// created or last invalidated.
func (d *LayerData) Computed() bool {
	return d.computed.Load()
}

// MarkComputed records a completed forward pass.
func (d *LayerData) MarkComputed() {
	d.computed.Store(true)
}

// Invalidate clears the completion marker.
func (d *LayerData) Invalidate() {
	d.computed.Store(false)
}

// Release drops every auxiliary tensor reference and clears the marker.
func (d *LayerData) Release() {
	for _, id := range d.args.IDs() {
		if t, ok := d.args.Get(id).(*tensor.Tensor); ok && t != nil {
			t.Release()
		}
		d.args.Set(id, nil)
	}
	d.Invalidate()
}

// View returns a read-only borrow of d.
func (d *LayerData) View() LayerDataView {
	return LayerDataView{data: d}
}

// LayerDataView is a read-only borrow of a forward Result's LayerData. The
// zero value refers to nothing.
type LayerDataView struct {
	data *LayerData
}

// IsNil reports whether the view refers to no LayerData.
func (v LayerDataView) IsNil() bool {
	return v.data == nil
}

// Len returns the size of the auxiliary id space.
func (v LayerDataView) Len() int {
	return v.data.args.Len()
}

// Tensor returns the auxiliary tensor id, or nil if it was not written.
func (v LayerDataView) Tensor(id argument.ID) *tensor.Tensor {
	return v.data.Tensor(id)
}

// Computed reports whether the forward pass completed.
func (v LayerDataView) Computed() bool {
	return v.data.Computed()
}

// Same reports whether v borrows d.
func (v LayerDataView) Same(d *LayerData) bool {
	return v.data == d
}
