package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/licensing/internal/shared/authorization"
)

func newLearner(t *testing.T) *User {
	t.Helper()
	u, err := NewUser(NewUserParams{
		Fields: RosterFields{
			Username:  " JSmith ",
			Email:     "j@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			IDNumber:  "EMP-1",
		},
		PasswordHash: "hash",
		Locale:       "en",
		Host:         "local",
	})
	require.NoError(t, err)
	return u
}

func TestNewUser(t *testing.T) {
	u := newLearner(t)

	assert.Equal(t, "jsmith", u.Username())
	assert.Equal(t, AuthManual, u.Auth())
	assert.True(t, u.Confirmed())
	assert.Equal(t, authorization.RoleLearner, u.Role())
	assert.Equal(t, "Jane Smith", u.FullName())
}

func TestNewUser_Validation(t *testing.T) {
	_, err := NewUser(NewUserParams{Fields: RosterFields{IDNumber: "1"}, PasswordHash: "h"})
	assert.Error(t, err)

	_, err = NewUser(NewUserParams{Fields: RosterFields{Username: "a"}, PasswordHash: "h"})
	assert.Error(t, err)

	_, err = NewUser(NewUserParams{Fields: RosterFields{Username: "a", IDNumber: "1"}})
	assert.Error(t, err)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "ömer", NormalizeUsername("ÖMER"))
	assert.Equal(t, "abc", NormalizeUsername("  AbC "))
}

func TestUser_ApplyRoster(t *testing.T) {
	u := newLearner(t)

	changed := u.ApplyRoster(RosterFields{
		Username:  "JSMITH",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "",
		IDNumber:  "EMP-1",
	})

	assert.Equal(t, []string{"email"}, changed)
	assert.Equal(t, "jane@example.com", u.Email())
	assert.Equal(t, "Smith", u.LastName(), "blank roster value keeps existing")

	assert.Empty(t, u.ApplyRoster(RosterFields{Email: "jane@example.com"}))
}

func TestUser_MergeProfile(t *testing.T) {
	u := newLearner(t)

	assert.True(t, u.MergeProfile(map[string]string{"department": "Sales", "city": ""}))
	assert.Equal(t, map[string]string{"department": "Sales"}, u.Profile())
	assert.False(t, u.MergeProfile(map[string]string{"department": "Sales"}))
}
