package parser

// FlatMap is a single-level string-to-string mapping that remembers the order
// in which keys were first set.
type FlatMap struct {
	keys   []string
	values map[string]string
}

// Set records key -> value. Overwriting a key keeps its original position.
func (m *FlatMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored for key and whether it is present.
func (m FlatMap) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

// Keys returns a copy of the keys in first-seen order.
func (m FlatMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of keys.
func (m FlatMap) Len() int {
	return len(m.keys)
}

// ToMap returns an unordered copy of the entries.
func (m FlatMap) ToMap() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
