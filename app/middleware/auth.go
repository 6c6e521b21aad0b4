package appMiddleware

import "crypto/subtle"

// SecretHeader carries the shared agent secret on requests that have no
// body-level secret field, such as the admin endpoints.
const SecretHeader = "X-Agent-Secret"

// SecretVerifier validates the shared secret that callers must present on
// every protected endpoint. Comparison is constant time so the check does
// not leak prefix information.
type SecretVerifier struct {
	secret []byte
}

func NewSecretVerifier(secret string) *SecretVerifier {
	return &SecretVerifier{secret: []byte(secret)}
}

// Verify reports whether the provided value matches the configured secret.
// An empty configured secret rejects everything.
func (v *SecretVerifier) Verify(provided string) bool {
	if len(v.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(v.secret, []byte(provided)) == 1
}
