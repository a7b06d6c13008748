package music

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionStore_RecordResultsReplacesWholesale(t *testing.T) {
	store := NewSessionStore()

	first := []Track{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}
	store.RecordResults("matrix:@alice:example.org", first)
	assert.Len(t, store.Results("matrix:@alice:example.org"), 2)

	second := []Track{{ID: "3", Name: "three"}}
	store.RecordResults("matrix:@alice:example.org", second)

	results := store.Results("matrix:@alice:example.org")
	if assert.Len(t, results, 1) {
		assert.Equal(t, "3", results[0].ID)
	}
}

func TestSessionStore_EmptySearchStillReplaces(t *testing.T) {
	store := NewSessionStore()

	store.RecordResults("user", []Track{{ID: "1"}})
	store.RecordResults("user", nil)
	assert.Empty(t, store.Results("user"))
}

func TestSessionStore_ResultsForUnknownUser(t *testing.T) {
	store := NewSessionStore()
	assert.Nil(t, store.Results("nobody"))
}

func TestSessionStore_SetMode(t *testing.T) {
	store := NewSessionStore()

	// Default without any stored session
	assert.Equal(t, ModeWidget, store.Mode("user"))

	assert.NoError(t, store.SetMode("user", ModeLink))
	assert.Equal(t, ModeLink, store.Mode("user"))

	// Invalid values leave the stored preference unchanged
	err := store.SetMode("user", OutputMode("shout"))
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, ModeLink, store.Mode("user"))

	assert.NoError(t, store.SetMode("user", ModeWidget))
	assert.Equal(t, ModeWidget, store.Mode("user"))
}

func TestSessionStore_UsersAreIndependent(t *testing.T) {
	store := NewSessionStore()

	store.RecordResults("a", []Track{{ID: "1"}})
	assert.NoError(t, store.SetMode("a", ModeLink))

	assert.Nil(t, store.Results("b"))
	assert.Equal(t, ModeWidget, store.Mode("b"))
}
