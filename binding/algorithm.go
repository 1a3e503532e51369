// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package binding

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// Algorithm is the type-erased view of a Batch the binding works with.
type Algorithm interface {
	SetInput(id int, t *tensor.Tensor) error
	Result(id int) (*tensor.Tensor, error)
	SetParameter(name string, value int) error
	Compute() error
	Release()
}

// Factory creates an Algorithm for a data type and method.
type Factory func(dtype tensor.DataType, method algorithm.Method) (Algorithm, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes an algorithm available to NewAlgorithm under name.
// Registering a name twice panics.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic("binding: algorithm " + name + " registered twice")
	}
	factories[name] = f
}

func factory(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Algorithms returns the registered algorithm names, sorted.
func Algorithms() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// setters maps parameter names to functions updating a Parameter value.
type setters[P any] map[string]func(p *P, v int)

type batch[P any, I algorithm.Input[P], R algorithm.Result[I, P]] struct {
	b      *algorithm.Batch[P, I, R]
	params setters[P]
}

func wrap[P any, I algorithm.Input[P], R algorithm.Result[I, P]](
	b *algorithm.Batch[P, I, R], err error, params setters[P],
) (Algorithm, error) {
	if err != nil {
		return nil, err
	}
	return &batch[P, I, R]{b: b, params: params}, nil
}

func checkID(args *argument.Map, id int) error {
	if id < 0 || id >= args.Len() {
		return errors.Errorf("argument id %d outside [0, %d)", id, args.Len())
	}
	return nil
}

func (a *batch[P, I, R]) SetInput(id int, t *tensor.Tensor) error {
	args := a.b.Input.Arguments()
	if err := checkID(args, id); err != nil {
		return err
	}
	if _, ok := args.Get(argument.ID(id)).(layers.LayerDataView); ok {
		return errors.Errorf("argument %d is set by Link", id)
	}
	if old, ok := args.Get(argument.ID(id)).(*tensor.Tensor); ok {
		old.Release()
	}
	args.Set(argument.ID(id), t.Clone())
	return nil
}

func (a *batch[P, I, R]) Result(id int) (*tensor.Tensor, error) {
	args := a.b.Result().Arguments()
	if err := checkID(args, id); err != nil {
		return nil, err
	}
	t, ok := args.Get(argument.ID(id)).(*tensor.Tensor)
	if !ok || t == nil {
		return nil, errors.Errorf("result %d of %s is not a computed tensor", id, a.b.Name())
	}
	return t, nil
}

func (a *batch[P, I, R]) SetParameter(name string, value int) error {
	set, ok := a.params[name]
	if !ok {
		return errors.Wrapf(ErrUnknownParameter, "%s of %s", name, a.b.Name())
	}
	set(&a.b.Parameter, value)
	return nil
}

func (a *batch[P, I, R]) Compute() error {
	return a.b.Compute()
}

// Release drops the Input handles taken by SetInput and the Result buffers.
func (a *batch[P, I, R]) Release() {
	a.b.Input.Arguments().Release()
	a.b.Release()
}

func (a *batch[P, I, R]) producer() (layers.ForwardProducer, bool) {
	p, ok := any(a.b.Result()).(layers.ForwardProducer)
	return p, ok
}

func (a *batch[P, I, R]) consumer() (layers.BackwardConsumer, bool) {
	c, ok := any(a.b.Input).(layers.BackwardConsumer)
	return c, ok
}

func (a *batch[P, I, R]) archive() (algorithm.Serializable, bool) {
	s, ok := any(a.b.Result()).(algorithm.Serializable)
	return s, ok
}

// resetResult drops the Result buffers so a Load starts from an empty Result.
func (a *batch[P, I, R]) resetResult() {
	a.b.Release()
}

type persistable interface {
	archive() (algorithm.Serializable, bool)
	resetResult()
}

type linkable interface {
	producer() (layers.ForwardProducer, bool)
	consumer() (layers.BackwardConsumer, bool)
}

func link(fwd, bwd Algorithm) error {
	f, ok1 := fwd.(linkable)
	b, ok2 := bwd.(linkable)
	if !ok1 || !ok2 {
		return ErrNotLinkable
	}
	p, ok1 := f.producer()
	c, ok2 := b.consumer()
	if !ok1 || !ok2 {
		return ErrNotLinkable
	}
	layers.Link(p, c)
	return nil
}
