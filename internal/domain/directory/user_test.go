package directory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(uuid.New(), " Ann ", " ann@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name())
	assert.Equal(t, "ann@example.com", u.Email())

	_, err = NewUser(uuid.Nil, "Ann", "ann@example.com")
	assert.True(t, domain.IsValidation(err))

	for _, email := range []string{"", "ann", "@example.com", "ann@"} {
		_, err = NewUser(uuid.New(), "Ann", email)
		assert.True(t, domain.IsValidation(err), email)
	}
}

func TestUser_Update(t *testing.T) {
	u, err := NewUser(uuid.New(), "Ann", "ann@example.com")
	require.NoError(t, err)

	require.NoError(t, u.Update(UserPatch{Name: ptr(" Annie ")}))
	assert.Equal(t, "Annie", u.Name())
	assert.Equal(t, "ann@example.com", u.Email())

	require.NoError(t, u.Update(UserPatch{Email: ptr("annie@example.com")}))
	assert.Equal(t, "annie@example.com", u.Email())

	err = u.Update(UserPatch{Name: ptr("  ")})
	assert.True(t, domain.IsValidation(err))

	err = u.Update(UserPatch{Name: ptr("Bob"), Email: ptr("not-an-email")})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Annie", u.Name(), "rejected patch leaves the user unchanged")
	assert.Equal(t, "annie@example.com", u.Email())
}
