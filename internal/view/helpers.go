package view

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/listenupapp/catalog-server/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EqualString compares two values by their string forms, so an identifier
// held as a typed value matches its plain string.
func EqualString(a, b any) bool {
	return toString(a) == toString(b)
}

// Equal compares two values exactly.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// NotEqual is the negation of Equal.
func NotEqual(a, b any) bool {
	return !Equal(a, b)
}

// LessThanPrevious reports whether a is below b-1. Pagers use it to decide
// whether a separator is needed before the previous index.
func LessThanPrevious(a, b int) bool {
	return a < b-1
}

// Defined reports whether v holds a value. Nil pointers, nil interfaces and
// nil slices or maps are undefined; zero scalars are defined.
func Defined(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// ContainsID reports whether id is one of ids, comparing string forms.
func ContainsID(id any, ids []string) bool {
	s := toString(id)
	return slices.Contains(ids, s)
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// CompareFold orders two strings by their uppercased forms.
func CompareFold(a, b string) int {
	// A Caser carries state and must not be shared across goroutines.
	upper := cases.Upper(language.Und)
	return cmp.Compare(upper.String(a), upper.String(b))
}

// SortByKey stably sorts items by the uppercased key, leaving items with equal
// keys in their original order.
func SortByKey[T any](items []T, key func(T) string) {
	slices.SortStableFunc(items, func(x, y T) int {
		return CompareFold(key(x), key(y))
	})
}

// SortAuthors orders authors by family name.
func SortAuthors(authors []*domain.Author) {
	SortByKey(authors, func(a *domain.Author) string { return a.FamilyName })
}

// SortBooks orders books by title.
func SortBooks(books []*domain.Book) {
	SortByKey(books, func(b *domain.Book) string { return b.Title })
}

// SortGenres orders genres by name.
func SortGenres(genres []*domain.Genre) {
	SortByKey(genres, func(g *domain.Genre) string { return g.Name })
}
