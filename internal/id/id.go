// Package id generates identifiers for rendered replies and other records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// MessagePrefix prefixes the IDs of rendered conversation replies.
const MessagePrefix = "msg"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "msg-V1StGXR8_Z5jdHi6B-myT")
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

// NewMessageID returns an ID for a rendered reply so transport adapters can
// track which chat message to edit.
func NewMessageID() string {
	return MustGenerate(MessagePrefix)
}
