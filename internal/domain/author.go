package domain

import "time"

// Author is a person credited with writing one or more books.
type Author struct {
	Base
	FirstName   string     `json:"first_name"`
	FamilyName  string     `json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// Name returns "FamilyName, FirstName". Both parts are needed for a full name,
// so an author missing either one has an empty name.
func (a *Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan renders the birth and death dates, leaving a side blank when unknown.
func (a *Author) Lifespan() string {
	birth := formatDate(a.DateOfBirth)
	death := formatDate(a.DateOfDeath)
	if birth == "" && death == "" {
		return ""
	}
	return birth + " - " + death
}

// URL returns the catalog path of the author.
func (a *Author) URL() string {
	return urlFor(KindAuthor, a.ID)
}

// Ref returns a reference to the author labelled with its name.
func (a *Author) Ref() Ref {
	return Ref{Kind: KindAuthor, ID: a.ID, Label: a.Name(), URL: a.URL()}
}
