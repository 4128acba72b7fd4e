// Package store provides the two durable key-value stores backing the
// session: a confidential secret store for the token pair and a fast
// unencrypted cache for everything else. Both survive process restarts;
// neither is shared between processes.
package store

// SecretStore is durable, confidential-at-rest key-value storage.
// A missing key reads as ("", nil); callers never store empty values, so no
// separate found flag is needed. Writes to the same key are serialized by
// the caller.
type SecretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// CacheStore has the same contract as SecretStore but is backed by fast,
// unencrypted storage with synchronous in-memory reads. Only non-sensitive
// data (profile, memberships, active organization id) may be written here,
// JSON-encoded when structured.
type CacheStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
