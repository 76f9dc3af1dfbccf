package types

// Metadata is free-form key/value data attached to traces, observations and
// scores.
type Metadata map[string]any

// Set stores value under key and returns m for chaining. A nil Metadata is
// allocated on first use.
func (m Metadata) Set(key string, value any) Metadata {
	if m == nil {
		m = make(Metadata)
	}
	m[key] = value
	return m
}

// GetString returns the string stored under key.
func (m Metadata) GetString(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Merge copies other into m, overwriting duplicate keys.
func (m Metadata) Merge(other Metadata) Metadata {
	if m == nil {
		m = make(Metadata, len(other))
	}
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Clone returns a shallow copy of m.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	clone := make(Metadata, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
