// pkg/params/secret.go

package params

// Secret wraps the sensitive portion of the configuration input. Its only
// read operation is Reveal, called at the point of file serialization;
// String and MarshalJSON redact so the value never reaches logs or spans.
type Secret struct {
	value map[string]any
}

// NewSecret wraps a sensitive configuration fragment. A nil input yields
// the zero Secret.
func NewSecret(v map[string]any) Secret {
	if len(v) == 0 {
		return Secret{}
	}
	return Secret{value: v}
}

// IsZero reports whether no sensitive fragment was supplied.
func (s Secret) IsZero() bool {
	return s.value == nil
}

// Reveal returns the wrapped fragment for serialization.
func (s Secret) Reveal() map[string]any {
	return s.value
}

func (s Secret) String() string {
	return "[REDACTED]"
}

// MarshalJSON redacts; the real value only ever reaches the config file
// through Reveal at write time.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}
