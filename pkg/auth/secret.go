package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mail2slack/pkg/state"
)

// stateSecretKey holds the generated state secret when none is configured.
const stateSecretKey = "oauth:state_secret"

func ephemeralSecret() string {
	return uuid.NewString() + uuid.NewString()
}

// sharedStateSecret returns the state secret stored in kv, generating and
// storing one on first use.
func sharedStateSecret(ctx context.Context, kv state.KV) (string, error) {
	secret, ok, err := kv.Get(ctx, stateSecretKey)
	if err != nil {
		return "", fmt.Errorf("loading state secret: %w", err)
	}
	if ok && secret != "" {
		return secret, nil
	}

	secret = ephemeralSecret()
	if err := kv.Set(ctx, stateSecretKey, secret); err != nil {
		return "", fmt.Errorf("storing state secret: %w", err)
	}
	return secret, nil
}
