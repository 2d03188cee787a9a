package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollator_IgnoresCase(t *testing.T) {
	cmp, err := Collator("en", func(s string) string { return s })
	require.NoError(t, err)

	assert.Equal(t, 0, cmp("apple", "APPLE"))
	assert.Negative(t, cmp("apple", "Banana"))
	assert.Positive(t, cmp("cherry", "banana"))
}

func TestCollator_LocaleRules(t *testing.T) {
	// Swedish sorts "ö" after "z"; English sorts it with "o".
	sv, err := Collator("sv", func(s string) string { return s })
	require.NoError(t, err)
	en, err := Collator("en", func(s string) string { return s })
	require.NoError(t, err)

	assert.Positive(t, sv("ö", "z"))
	assert.Negative(t, en("ö", "z"))
}

func TestCollator_InvalidLocale(t *testing.T) {
	_, err := Collator("not a locale!", func(s string) string { return s })
	assert.Error(t, err)
}

func TestCollator_DrivesSortedStore(t *testing.T) {
	byLabel, err := Collator("", func(e *entry) string { return e.Label })
	require.NoError(t, err)

	s := NewSorted(Callback[*entry]{
		Compare:      Then(byLabel, By(func(e *entry) string { return e.ID })),
		SameIdentity: func(a, b *entry) bool { return a.ID == b.ID },
		SameContent:  func(a, b *entry) bool { return a.Label == b.Label },
	})
	s.Add([]*entry{{ID: "1", Label: "beta"}, {ID: "2", Label: "Alpha"}, {ID: "3", Label: "alpha"}})

	assert.Equal(t, []string{"2", "3", "1"}, ids(s))
}

func TestReverse(t *testing.T) {
	desc := Reverse(By(func(n int) int { return n }))
	assert.Positive(t, desc(1, 2))
	assert.Negative(t, desc(2, 1))
	assert.Zero(t, desc(3, 3))
}
