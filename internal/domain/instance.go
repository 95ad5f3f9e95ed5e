package domain

import (
	"strings"
	"time"
)

// Status is the circulation state of a physical copy.
type Status string

const (
	StatusAvailable   Status = "Available"
	StatusMaintenance Status = "Maintenance"
	StatusLoaned      Status = "Loaned"
	StatusReserved    Status = "Reserved"
)

// DefaultStatus is assigned to copies created without an explicit status.
const DefaultStatus = StatusMaintenance

// Statuses returns every status in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}
}

// StatusValues returns the statuses as plain strings.
func StatusValues() []string {
	out := make([]string, 0, 4)
	for _, s := range Statuses() {
		out = append(out, string(s))
	}
	return out
}

// ParseStatus converts raw input to a Status. Blank input yields DefaultStatus.
// The result is not guaranteed to be valid; check IsValid.
func ParseStatus(s string) Status {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultStatus
	}
	return Status(s)
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is a recognized value.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved:
		return true
	default:
		return false
	}
}

// BookInstance is a physical copy of a book that can be borrowed.
type BookInstance struct {
	Base
	BookID  string     `json:"book"`
	Imprint string     `json:"imprint"`
	Status  Status     `json:"status"`
	DueBack *time.Time `json:"due_back,omitempty"`
}

// DueBackFormatted renders the due date for display, or "" when unset.
func (bi *BookInstance) DueBackFormatted() string {
	return formatDate(bi.DueBack)
}

// URL returns the catalog path of the copy.
func (bi *BookInstance) URL() string {
	return urlFor(KindBookInstance, bi.ID)
}

// Ref returns a reference to the copy labelled with its imprint.
func (bi *BookInstance) Ref() Ref {
	return Ref{Kind: KindBookInstance, ID: bi.ID, Label: bi.Imprint, URL: bi.URL()}
}
