package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_ListAndArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).posts()

	posts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 10)
	assert.Equal(t, "9", posts[0].ID)
	assert.Equal(t, "10", posts[9].ID)

	jan, f, err := s.Archive(ctx, "2024", "1")
	require.NoError(t, err)
	assert.Len(t, jan, 2)
	assert.Equal(t, 2024, f.Year)
	require.NotNil(t, f.Month)
	assert.Equal(t, 1, *f.Month)

	y2023, f, err := s.Archive(ctx, "2023", "")
	require.NoError(t, err)
	assert.Len(t, y2023, 1)
	assert.Nil(t, f.Month)

	for _, tc := range []struct{ year, month string }{
		{"1999", ""}, {"2027", ""}, {"abcd", ""}, {"2024", "13"}, {"2024", "0"},
	} {
		_, _, err := s.Archive(ctx, tc.year, tc.month)
		assert.True(t, errors.Is(err, ErrValidation), "%s/%s", tc.year, tc.month)
	}

	_, _, err = s.Archive(ctx, "2026", "")
	assert.NoError(t, err, "next year is still accepted")
}

func TestPostService_Categories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).posts()

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, 6, cats[0].PostCount)
	assert.Equal(t, 3, cats[1].PostCount)
	assert.Equal(t, 1, cats[2].PostCount)

	detail, err := s.GetCategory(ctx, "TECH")
	require.NoError(t, err)
	require.Len(t, detail.TopTags, 5)
	assert.Equal(t, TagCount{Tag: "web", Count: 2}, detail.TopTags[0])
	assert.Equal(t, TagCount{Tag: "technology", Count: 2}, detail.TopTags[1])

	_, err = s.GetCategory(ctx, "sports")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"tech", "lifestyle", "education"}, s.CategoryNames())

	posts, c, err := s.CategoryPosts(ctx, "lifestyle")
	require.NoError(t, err)
	assert.Equal(t, "Lifestyle", c.DisplayName)
	require.Len(t, posts, 3)
	assert.Equal(t, "9", posts[0].ID)
}

func TestPostService_Write(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).posts()

	_, err := s.Create(ctx, userID, CreatePostRequest{Title: "t", Content: "c", Category: "sports"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = s.Create(ctx, userID, CreatePostRequest{Category: "tech"})
	assert.True(t, errors.Is(err, ErrValidation))

	p, err := s.Create(ctx, userID, CreatePostRequest{Title: "Go tips", Content: "c", Category: "Tech", Tags: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, "user", p.Author)
	assert.Equal(t, "tech", p.Category)
	assert.Equal(t, fixedNow, p.PublishedAt)

	_, err = s.Update(ctx, guestID, p.ID, UpdatePostRequest{Title: ptr("hijack")})
	assert.True(t, errors.Is(err, ErrForbidden))

	upd, err := s.Update(ctx, adminID, p.ID, UpdatePostRequest{Title: ptr("Go tricks")})
	require.NoError(t, err)
	assert.Equal(t, "Go tricks", upd.Title)

	_, err = s.Delete(ctx, guestID, p.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = s.Delete(ctx, userID, p.ID)
	require.NoError(t, err)

	_, err = s.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
