package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

func strPtr(s string) *string { return &s }

func TestUserService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	created, err := env.Users.CreateUser(ctx, CreateUserRequest{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := env.Users.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = env.Users.CreateUser(ctx, CreateUserRequest{Name: "Other Ann", Email: "ann@example.com"})
	assert.True(t, domain.IsConflict(err))

	_, err = env.Users.CreateUser(ctx, CreateUserRequest{Name: " ", Email: "blank@example.com"})
	assert.True(t, domain.IsValidation(err))

	_, err = env.Users.CreateUser(ctx, CreateUserRequest{Name: "Bad", Email: "bad"})
	assert.True(t, domain.IsValidation(err))

	_, err = env.Users.GetUser(ctx, uuid.New())
	assert.True(t, domain.IsNotFound(err))
}

func TestUserService_RegisteredUserCanBook(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	item := env.item(t, owner, "Tent", true)

	booker, err := env.Users.CreateUser(ctx, CreateUserRequest{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	b := env.book(t, booker.ID, item, day, 2*day)
	assert.Equal(t, "Ann", b.Booker.Name)
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ann := env.user(t, "ann")
	env.user(t, "bob")

	got, err := env.Users.UpdateUser(ctx, ann, UpdateUserRequest{Name: strPtr("Annie")})
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Name)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = env.Users.UpdateUser(ctx, ann, UpdateUserRequest{Email: strPtr("bob@example.com")})
	assert.True(t, domain.IsConflict(err))

	stored, err := env.Users.GetUser(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", stored.Email, "conflicting update is not persisted")

	_, err = env.Users.UpdateUser(ctx, uuid.New(), UpdateUserRequest{Name: strPtr("Ghost")})
	assert.True(t, domain.IsNotFound(err))

	users, err := env.Users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ann@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)
}

func TestGetBooking_ShowsCurrentBookerName(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	item := env.item(t, owner, "Kayak", true)
	b := env.book(t, booker, item, day, 2*day)

	_, err := env.Users.UpdateUser(ctx, booker, UpdateUserRequest{Name: strPtr("Renamed Booker")})
	require.NoError(t, err)
	_, err = env.Items.UpdateItem(ctx, owner, item, UpdateItemRequest{Name: strPtr("Sea Kayak")})
	require.NoError(t, err)

	got, err := env.Bookings.GetBooking(ctx, b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Booker", got.Booker.Name)
	assert.Equal(t, "Sea Kayak", got.Item.Name)
}
