package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/cenkalti/backoff/v5"

	"github.com/wolfeidau/sessionkit/internal/authflow"
	"github.com/wolfeidau/sessionkit/internal/store"
)

// LoginCmd signs in with email and password, then persists the session.
type LoginCmd struct {
	Email    string `arg:"" help:"Account email"`
	Password string `help:"Account password" env:"SESSIONKIT_PASSWORD" required:""`

	clientFlags
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	env, err := newEnv(l.clientFlags)
	if err != nil {
		return err
	}

	// Transient network failures retry with exponential backoff; a
	// rejected login is permanent.
	result, err := backoff.Retry(ctx, func() (*authflow.LoginResult, error) {
		result, err := authflow.Login(ctx, env.client, l.Email, l.Password)
		if err != nil {
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return result, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(3))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if result.Challenge != nil {
		deviceID, err := store.DeviceID(env.secrets)
		if err != nil {
			return err
		}

		fmt.Println("This account requires two-factor verification.")
		fmt.Printf("Available methods: %s\n", strings.Join(result.Challenge.Methods, ", "))
		fmt.Printf("Challenge token:   %s\n", result.Challenge.ChallengeToken)
		fmt.Printf("Device id:         %s\n", deviceID)
		fmt.Println()
		fmt.Println("Complete verification in the app, then run login again.")
		return nil
	}

	if err := authflow.CompleteAuth(ctx, env.client, env.sess, result.Auth); err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}

	fmt.Printf("Signed in as %s\n", result.Auth.User.Email)

	if orgID := env.sess.ActiveOrganizationID(); orgID != "" {
		fmt.Printf("Active organization: %s\n", orgID)
	}

	return nil
}
