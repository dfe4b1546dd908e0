package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-shareit/internal/platform/domain"
)

func TestCreateComment_Eligibility(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	owner := env.user(t, "owner")
	booker := env.user(t, "booker")
	item := env.item(t, owner, "Tripod", true)

	req := CreateCommentRequest{Text: "Sturdy"}

	_, err := env.Comments.CreateComment(ctx, item, booker, req)
	require.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "never rented")

	b := env.book(t, booker, item, day, 2*day)
	env.decide(t, b.ID, owner, true)

	_, err = env.Comments.CreateComment(ctx, item, booker, req)
	require.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "no completed rental")

	env.now = env.now.Add(3 * day)
	c, err := env.Comments.CreateComment(ctx, item, booker, req)
	require.NoError(t, err)
	assert.Equal(t, "booker", c.AuthorName)
	assert.Equal(t, env.now, c.CreatedAt)

	_, err = env.Comments.CreateComment(ctx, item, booker, CreateCommentRequest{Text: "  "})
	assert.True(t, domain.IsValidation(err))

	_, err = env.Comments.CreateComment(ctx, uuid.New(), booker, req)
	assert.True(t, domain.IsNotFound(err))
	_, err = env.Comments.CreateComment(ctx, item, uuid.New(), req)
	assert.True(t, domain.IsNotFound(err))

	got, err := env.Items.GetItemWithActivity(ctx, item)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Sturdy", got.Comments[0].Text)
}
