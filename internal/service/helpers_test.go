package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/mocks"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/service"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	repos *mocks.MockRepositories
	svc   *service.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := mocks.NewMockRepositories()
	return &fixture{
		ctx:   context.Background(),
		repos: repos,
		svc: service.NewServices(repos.Repositories(), zerolog.Nop(),
			service.WithClock(func() time.Time { return testNow })),
	}
}

func (f *fixture) genre(t *testing.T, name string) int64 {
	t.Helper()
	g, err := f.svc.Genre.Create(f.ctx, &models.GenreRequest{Name: name})
	require.NoError(t, err)
	return g.ID
}

func (f *fixture) author(t *testing.T, name string) int64 {
	t.Helper()
	a, err := f.svc.Author.Create(f.ctx, "admin-1", &models.AuthorCreateRequest{DisplayName: name})
	require.NoError(t, err)
	return a.ID
}

// selfAuthor registers account, submits its author request and approves it
func (f *fixture) selfAuthor(t *testing.T, account string) int64 {
	t.Helper()
	f.repos.Account.Add(account, account)
	a, err := f.svc.Author.Submit(f.ctx, account, &models.AuthorRequest{DisplayName: account})
	require.NoError(t, err)
	_, err = f.svc.Author.Approve(f.ctx, a.ID, "admin-1")
	require.NoError(t, err)
	return a.ID
}

func (f *fixture) story(t *testing.T, authorID int64, title string, primary *int64, genres ...int64) *models.Story {
	t.Helper()
	s, err := f.svc.Story.Create(f.ctx, &models.StoryCreateRequest{
		Title:          title,
		AuthorID:       authorID,
		PrimaryGenreID: primary,
		GenreIDs:       genres,
	})
	require.NoError(t, err)
	return s
}

func ptr(v int64) *int64 { return &v }

func code(err error) models.ErrorCode {
	var e *models.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
