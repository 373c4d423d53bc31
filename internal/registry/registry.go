package registry

import (
	"slices"
	"sync"

	"github.com/alphadose/haxmap"
)

// Registry is a concurrency-safe name -> value mapping. Reads are lock free;
// writes are serialized.
type Registry[T any] interface {
	Get(name string) (T, bool)
	Add(name string, value T)
	// GetOrAdd returns the existing value for name or stores the one built by valueFn.
	// Concurrent callers for the same name all get the one stored value and
	// valueFn runs at most once per stored value. The boolean reports whether
	// the value was already present.
	GetOrAdd(name string, valueFn func() T) (T, bool)
	Del(name string)
	Len() int
	// Names returns a sorted snapshot of the registered names.
	Names() []string
	// Values returns a snapshot of the registered values ordered by name.
	Values() []T
	Clear()
}

type registry[T any] struct {
	values *haxmap.Map[string, T]

	// guards the miss path; haxmap.GetOrCompute may overwrite a concurrent insert
	mu sync.Mutex
}

func New[T any]() Registry[T] {
	return &registry[T]{
		values: haxmap.New[string, T](),
	}
}

func (r *registry[T]) Get(name string) (T, bool) {
	return r.values.Get(name)
}

func (r *registry[T]) Add(name string, value T) {
	r.mu.Lock()
	r.values.Set(name, value)
	r.mu.Unlock()
}

func (r *registry[T]) GetOrAdd(name string, valueFn func() T) (T, bool) {
	if v, ok := r.values.Get(name); ok {
		return v, true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values.Get(name); ok {
		return v, true
	}
	v := valueFn()
	r.values.Set(name, v)
	return v, false
}

func (r *registry[T]) Del(name string) {
	r.mu.Lock()
	r.values.Del(name)
	r.mu.Unlock()
}

func (r *registry[T]) Len() int {
	return int(r.values.Len())
}

func (r *registry[T]) Names() []string {
	names := make([]string, 0, r.Len())
	r.values.ForEach(func(name string, _ T) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

func (r *registry[T]) Values() []T {
	names := r.Names()
	values := make([]T, 0, len(names))
	for _, name := range names {
		if v, ok := r.values.Get(name); ok {
			values = append(values, v)
		}
	}
	return values
}

func (r *registry[T]) Clear() {
	names := r.Names()
	if len(names) == 0 {
		return
	}
	r.mu.Lock()
	r.values.Del(names...)
	r.mu.Unlock()
}
