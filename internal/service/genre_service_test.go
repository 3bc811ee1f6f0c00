package service_test

import (
	"testing"

	"github.com/story-catalog-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenreService_NamesAreCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	id := f.genre(t, "Sci-Fi")

	_, err := f.svc.Genre.Create(f.ctx, &models.GenreRequest{Name: "SCI-FI"})
	assert.ErrorIs(t, err, models.ErrConflict)

	renamed, err := f.svc.Genre.Rename(f.ctx, id, &models.GenreRequest{Name: "sci-fi"})
	require.NoError(t, err)
	assert.Equal(t, "sci-fi", renamed.Name)

	other := f.genre(t, "Horror")
	_, err = f.svc.Genre.Rename(f.ctx, other, &models.GenreRequest{Name: "Sci-fi"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.svc.Genre.Rename(f.ctx, 999, &models.GenreRequest{Name: "Western"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Genre.Create(f.ctx, &models.GenreRequest{Name: "   "})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGenreService_ListByName(t *testing.T) {
	f := newFixture(t)
	f.genre(t, "romance")
	f.genre(t, "Action")
	f.genre(t, "Mystery")

	genres, err := f.svc.Genre.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, genres, 3)
	assert.Equal(t, []string{"Action", "Mystery", "romance"},
		[]string{genres[0].Name, genres[1].Name, genres[2].Name})
}

func TestGenreService_DeletionGuard(t *testing.T) {
	f := newFixture(t)
	asPrimary, asTag, unused := f.genre(t, "Fantasy"), f.genre(t, "Romance"), f.genre(t, "Horror")
	author := f.author(t, "Lan")
	f.story(t, author, "Primary only", ptr(asPrimary))
	f.story(t, author, "Tag only", nil, asTag)

	assert.ErrorIs(t, f.svc.Genre.Delete(f.ctx, asPrimary), models.ErrInUse)
	assert.ErrorIs(t, f.svc.Genre.Delete(f.ctx, asTag), models.ErrInUse)
	require.NoError(t, f.svc.Genre.Delete(f.ctx, unused))
	assert.ErrorIs(t, f.svc.Genre.Delete(f.ctx, unused), models.ErrNotFound)

	_, err := f.svc.Genre.Get(f.ctx, asTag)
	assert.NoError(t, err, "a blocked delete leaves the genre in place")
}

func TestGenreService_Stories(t *testing.T) {
	f := newFixture(t)
	g := f.genre(t, "Fantasy")
	author := f.author(t, "Lan")
	f.story(t, author, "One", ptr(g))
	f.story(t, author, "Two", nil, g)
	f.story(t, author, "Three", nil)

	stories, err := f.svc.Genre.Stories(f.ctx, g)
	require.NoError(t, err)
	assert.Len(t, stories, 2)

	_, err = f.svc.Genre.Stories(f.ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
