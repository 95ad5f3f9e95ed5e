// Package id generates catalog identifiers: a kind prefix, a hyphen and a
// 21-character NanoID, for example "author-V1StGXR8_Z5jdHi6B-myT".
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/listenupapp/catalog-server/internal/domain"
)

// Generate creates a prefixed unique ID using NanoID.
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// New generates an ID for an entity of the given kind.
func New(kind domain.Kind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("generate id: unknown kind %q", kind)
	}
	return Generate(kind.IDPrefix())
}

// KindOf reports which kind an ID was generated for.
func KindOf(id string) (domain.Kind, bool) {
	prefix, _, ok := strings.Cut(id, "-")
	if !ok {
		return "", false
	}
	for _, k := range []domain.Kind{domain.KindAuthor, domain.KindBook, domain.KindGenre, domain.KindBookInstance} {
		if k.IDPrefix() == prefix {
			return k, true
		}
	}
	return "", false
}
