// Package id generates prefixed identifiers for player sessions and event subscriptions.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes used by the player.
const (
	PrefixSession      = "sess"
	PrefixSubscription = "sub"
)

// Generate creates a prefixed unique ID using NanoID,
// e.g. "sub-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Session returns a new playback session ID.
func Session() string {
	return MustGenerate(PrefixSession)
}

// Subscription returns a new engine event subscription ID.
func Subscription() string {
	return MustGenerate(PrefixSubscription)
}
