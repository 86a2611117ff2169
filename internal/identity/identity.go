package identity

import "context"

// Identity is the verified result of a third-party identity assertion.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Verifier validates a pre-obtained identity credential and extracts the
// verified profile. Implementations do not perform an authorization-code
// flow; the client already holds the credential.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}
