package core

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotBound is returned when a capability has no binding.
var ErrNotBound = errors.New("capability not bound")

// Constructor builds an implementation from what is already in the container.
type Constructor func(c Container) (any, error)

// Binding associates a capability (usually an interface type) with the
// concrete type that provides it.
type Binding struct {
	Capability     reflect.Type
	Implementation reflect.Type
	New            Constructor
}

func (b Binding) String() string {
	return fmt.Sprintf("%v as %v", b.Implementation, b.Capability)
}

// Builder accepts bindings. Registry is the only implementation in this
// module; tests may supply their own.
type Builder interface {
	Register(b Binding)
}

// BindingError describes a binding that was rejected or could not produce
// its capability.
type BindingError struct {
	Binding Binding
	Err     error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %s: %v", e.Binding, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// Registry records bindings in registration order.
//
// It does not deduplicate and does not reject a second binding for the same
// capability. Resolve picks the last one registered; ResolveAll returns every
// one, oldest first. Malformed bindings are kept out of the list and reported
// by Err.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
	errs     []error
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(b Binding) {
	err := checkBinding(b)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, &BindingError{Binding: b, Err: err})
		return
	}
	r.bindings = append(r.bindings, b)
}

func checkBinding(b Binding) error {
	switch {
	case b.Capability == nil:
		return errors.New("missing capability type")
	case b.Implementation == nil:
		return errors.New("missing implementation type")
	case b.New == nil:
		return errors.New("missing constructor")
	case b.Capability.Kind() == reflect.Interface && !b.Implementation.Implements(b.Capability):
		return fmt.Errorf("%v does not implement %v", b.Implementation, b.Capability)
	case b.Capability.Kind() != reflect.Interface && !b.Implementation.AssignableTo(b.Capability):
		return fmt.Errorf("%v is not assignable to %v", b.Implementation, b.Capability)
	}
	return nil
}

// Bindings returns a copy of every accepted binding in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings...)
}

// For returns the bindings for one capability in registration order.
func (r *Registry) For(capability reflect.Type) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Binding
	for _, b := range r.bindings {
		if b.Capability == capability {
			out = append(out, b)
		}
	}
	return out
}

// Err joins every registration failure, or returns nil.
func (r *Registry) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return errors.Join(r.errs...)
}

// As registers concrete type T as capability C. A T that does not satisfy C
// is recorded by the builder rather than panicking here.
func As[C, T any](b Builder, ctor func(c Container) (T, error)) {
	var newFn Constructor
	if ctor != nil {
		newFn = func(c Container) (any, error) {
			v, err := ctor(c)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	b.Register(Binding{
		Capability:     reflect.TypeOf((*C)(nil)).Elem(),
		Implementation: reflect.TypeOf((*T)(nil)).Elem(),
		New:            newFn,
	})
}

// Resolve constructs the most recently registered implementation of C.
func Resolve[C any](r *Registry, c Container) (C, error) {
	var zero C
	bindings := r.For(reflect.TypeOf((*C)(nil)).Elem())
	if len(bindings) == 0 {
		return zero, fmt.Errorf("%w: %v", ErrNotBound, reflect.TypeOf((*C)(nil)).Elem())
	}
	return construct[C](bindings[len(bindings)-1], c)
}

// ResolveAll constructs every implementation of C in registration order.
// An empty result is not an error.
func ResolveAll[C any](r *Registry, c Container) ([]C, error) {
	bindings := r.For(reflect.TypeOf((*C)(nil)).Elem())
	out := make([]C, 0, len(bindings))
	for _, b := range bindings {
		v, err := construct[C](b, c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func construct[C any](b Binding, c Container) (C, error) {
	var zero C
	raw, err := b.New(c)
	if err != nil {
		return zero, &BindingError{Binding: b, Err: err}
	}
	v, ok := raw.(C)
	if !ok {
		return zero, &BindingError{Binding: b, Err: fmt.Errorf("constructor returned %T", raw)}
	}
	return v, nil
}
