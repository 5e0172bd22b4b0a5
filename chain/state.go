package chain

// State is the open, additively composed key space shared by the middleware
// of one execution. Middleware add and read keys; none owns the whole map.
// State is confined to a single execution and needs no locking.
type State struct {
	m map[string]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{m: make(map[string]any)}
}

// Set stores a value under key.
func (s *State) Set(key string, v any) {
	s.m[key] = v
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Keys returns the stored keys in unspecified order.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of stored keys.
func (s *State) Len() int { return len(s.m) }

// Key is a typed handle into the state map. Independently authored middleware
// each declare the keys they contribute; composition is structural, the union
// of everything written during an execution.
type Key[T any] struct {
	name string
}

// NewKey declares a typed state key. The name is the underlying map key, so
// two packages declaring the same name share the slot.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the underlying map key.
func (k Key[T]) Name() string { return k.name }

// Set stores v under the typed key.
func Set[T any](c *Context, k Key[T], v T) {
	c.State().Set(k.name, v)
}

// Get returns the value stored under the typed key. The second result is
// false when the key is absent or holds a value of a different type.
func Get[T any](c *Context, k Key[T]) (T, bool) {
	v, ok := c.State().Get(k.name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
