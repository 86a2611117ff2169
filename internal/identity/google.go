package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens against a client id.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("validate google id token: %w", err)
	}

	id := &Identity{
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}
	return id, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

var _ Verifier = (*GoogleVerifier)(nil)
