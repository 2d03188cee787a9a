package store

import (
	"cmp"
	"fmt"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collator returns a comparator ordering elements by the string key extracts,
// using the collation rules of locale (a BCP 47 tag such as "en" or "sv").
// Case is ignored. An empty locale means language.Und.
func Collator[T any](locale string, key func(T) string) (func(a, b T) int, error) {
	tag := language.Und
	if locale != "" {
		var err error
		tag, err = language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", locale, err)
		}
	}

	// collate.Collator keeps scratch buffers and is not safe for concurrent use.
	var mu sync.Mutex
	c := collate.New(tag, collate.IgnoreCase)
	return func(a, b T) int {
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(key(a), key(b))
	}, nil
}

// By returns a comparator ordering elements by an ordered key.
func By[T any, K cmp.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Then chains comparators; later ones break ties left by earlier ones.
func Then[T any](cmps ...func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		for _, c := range cmps {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}

// Reverse inverts a comparator.
func Reverse[T any](c func(a, b T) int) func(a, b T) int {
	return func(a, b T) int {
		return c(b, a)
	}
}
