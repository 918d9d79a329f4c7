package posts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoMock_DeleteCascadesComments(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()

	p1 := &Post{Title: "p1", Body: "b"}
	p2 := &Post{Title: "p2", Body: "b"}
	require.NoError(t, repo.Add(ctx, p1))
	require.NoError(t, repo.Add(ctx, p2))
	require.NoError(t, repo.AddComment(ctx, &Comment{PostID: p1.ID, Text: "c1"}))
	require.NoError(t, repo.AddComment(ctx, &Comment{PostID: p1.ID, Text: "c2"}))
	require.NoError(t, repo.AddComment(ctx, &Comment{PostID: p2.ID, Text: "c3"}))

	require.NoError(t, repo.Delete(ctx, p1.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p1.ID), ErrPostNotFound)

	comments, err := repo.Comments(ctx, p1.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	comments, err = repo.Comments(ctx, p2.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "c3", comments[0].Text)

	assert.ErrorIs(t, repo.AddComment(ctx, &Comment{PostID: p1.ID, Text: "late"}), ErrPostNotFound)
}

func TestRepoMock_Titles(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoMock()

	p1 := &Post{Title: "p1", Body: "b"}
	p2 := &Post{Title: "p2", Body: "b"}
	require.NoError(t, repo.Add(ctx, p1))
	require.NoError(t, repo.Add(ctx, p2))

	assert.ErrorIs(t, repo.Add(ctx, &Post{Title: "p1"}), ErrPostTitleExists)
	assert.ErrorIs(t, repo.Update(ctx, p2.ID, "p1", "", "", ""), ErrPostTitleExists)
	assert.ErrorIs(t, repo.Update(ctx, 99, "p9", "", "", ""), ErrPostNotFound)

	taken, err := repo.TitleTaken(ctx, "p1", p1.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = repo.TitleTaken(ctx, "p1", p2.ID)
	require.NoError(t, err)
	assert.True(t, taken)

	// keeping its own title is fine
	require.NoError(t, repo.Update(ctx, p1.ID, "p1", "sub", "img", "body"))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, p1.ID, all[0].ID)
	assert.Equal(t, "sub", all[0].Subtitle)
}
