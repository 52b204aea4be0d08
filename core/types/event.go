package types

// Event represents a typed notification emitted during a state transition.
// Attributes carry the identities and amounts involved as deterministic
// string pairs so downstream consumers can index events without decoding
// engine-internal types.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attribute returns the named attribute and whether it is present.
func (e *Event) Attribute(key string) (string, bool) {
	if e == nil || e.Attributes == nil {
		return "", false
	}
	val, ok := e.Attributes[key]
	return val, ok
}
