// Package domain contains the core catalog entities: authors, books, genres
// and the physical copies (instances) of books.
package domain

import "time"

// Base provides the identity and timestamp fields shared by every catalog entity.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (b *Base) InitTimestamps() {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
}

// IsNew reports whether the entity has not been assigned an identity yet.
func (b *Base) IsNew() bool {
	return b.ID == ""
}

// Kind names one of the catalog entity types.
type Kind string

const (
	KindAuthor       Kind = "author"
	KindBook         Kind = "book"
	KindGenre        Kind = "genre"
	KindBookInstance Kind = "bookinstance"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the kind is a recognized value.
func (k Kind) IsValid() bool {
	switch k {
	case KindAuthor, KindBook, KindGenre, KindBookInstance:
		return true
	default:
		return false
	}
}

// IDPrefix returns the prefix used when generating identifiers for the kind.
func (k Kind) IDPrefix() string {
	switch k {
	case KindAuthor:
		return "author"
	case KindBook:
		return "book"
	case KindGenre:
		return "genre"
	case KindBookInstance:
		return "copy"
	default:
		return string(k)
	}
}

// Ref is a lightweight pointer to an entity, used when listing the records that
// reference a delete target.
type Ref struct {
	Kind  Kind   `json:"kind"`
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// urlFor builds the canonical catalog path for an entity.
func urlFor(k Kind, id string) string {
	return "/catalog/" + string(k) + "/" + id
}

// dateLayout is the human display format for dates.
const dateLayout = "Jan 2, 2006"

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
