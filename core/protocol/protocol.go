package protocol

import "strings"

// Protocol identifies a provider API protocol. Model capabilities and request
// routing are keyed by protocol name.
type Protocol string

const (
	// Chat is the text conversation protocol (chat completions).
	Chat Protocol = "chat"

	// Tools is the function-calling protocol layered on chat completions.
	Tools Protocol = "tools"
)

// ValidProtocols returns all supported protocols in canonical order.
func ValidProtocols() []Protocol {
	return []Protocol{Chat, Tools}
}

// IsValid reports whether name identifies a supported protocol.
// Matching is case-sensitive; protocol names are lowercase.
func IsValid(name string) bool {
	for _, p := range ValidProtocols() {
		if string(p) == name {
			return true
		}
	}
	return false
}

// ProtocolStrings returns the supported protocol names as a comma-separated
// list, suitable for error messages.
func ProtocolStrings() string {
	valid := ValidProtocols()
	names := make([]string, len(valid))
	for i, p := range valid {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}
