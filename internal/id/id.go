package id

import "github.com/google/uuid"

// New returns a random request identifier.
func New() string {
	return uuid.NewString()
}

// Valid reports whether a client supplied identifier is safe to echo back and log.
func Valid(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
