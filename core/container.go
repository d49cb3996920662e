package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Container holds the shared objects modules hand to each other during
// Configure: config, logger, stores, the binding registry. It is owned by an
// App; there is no package-level instance.
type Container interface {
	Set(key any, val any)
	Get(key any) (any, bool)
}

type container struct {
	mu  sync.RWMutex
	reg map[any]any
}

func NewContainer() Container {
	return &container{reg: make(map[any]any)}
}

func (c *container) Set(key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg[key] = val
}

func (c *container) Get(key any) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.reg[key]
	return v, ok
}

// TypeKey keys a container entry by its static type.
type TypeKey[T any] struct{}

func Put[T any](c Container, v T) { c.Set(TypeKey[T]{}, v) }

// Get panics when T is missing. Use it for values the composition root
// always seeds (config, logger).
func Get[T any](c Container) T {
	v, ok := Lookup[T](c)
	if !ok {
		panic(fmt.Errorf("container: missing dependency %v", reflect.TypeOf((*T)(nil)).Elem()))
	}
	return v
}

// Lookup reports whether a value of type T was put in c.
func Lookup[T any](c Container) (T, bool) {
	raw, _ := c.Get(TypeKey[T]{})
	v, ok := raw.(T)
	return v, ok
}
