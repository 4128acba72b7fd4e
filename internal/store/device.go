package store

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Keys held in the secret store alongside the token pair.
const (
	// deviceIDKey holds the trusted-device identifier sent when the user
	// opts to trust a device during 2FA verification. Kept in the secret
	// store so it survives reinstalls where the platform allows it.
	deviceIDKey = "trusted-device-id"

	// pendingInvitationKey holds an invitation token captured from a deep
	// link before the user was signed in. Invitation tokens grant org
	// access, so they are treated as secrets.
	pendingInvitationKey = "pending-invitation-token"
)

// DeviceID returns the stable trusted-device identifier, minting and
// persisting a new one on first use.
func DeviceID(secrets SecretStore) (string, error) {
	id, err := secrets.Get(deviceIDKey)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := secrets.Set(deviceIDKey, id); err != nil {
		return "", err
	}

	log.Debug().Str("deviceID", id).Msg("minted trusted device id")

	return id, nil
}

// SetPendingInvitationToken stores an invitation token to be redeemed after
// the user signs in.
func SetPendingInvitationToken(secrets SecretStore, token string) error {
	return secrets.Set(pendingInvitationKey, token)
}

// PendingInvitationToken returns the stored invitation token, or "" if none
// is pending.
func PendingInvitationToken(secrets SecretStore) (string, error) {
	return secrets.Get(pendingInvitationKey)
}

// ClearPendingInvitationToken removes the stored invitation token.
func ClearPendingInvitationToken(secrets SecretStore) error {
	return secrets.Delete(pendingInvitationKey)
}
