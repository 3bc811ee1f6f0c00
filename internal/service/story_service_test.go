package service_test

import (
	"errors"
	"testing"

	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/tagset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoryService_CreateKeepsPrimaryInTagSet(t *testing.T) {
	f := newFixture(t)
	g1, g2, g3 := f.genre(t, "Fantasy"), f.genre(t, "Romance"), f.genre(t, "Mystery")
	author := f.author(t, "Lan")

	created := f.story(t, author, "Moonlit Road", ptr(g3), g1, g2, g1, 0, -4)

	assert.ElementsMatch(t, []int64{g1, g2, g3}, created.GenreIDs)

	got, err := f.svc.Story.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{g1, g2, g3}, got.GenreIDs)
	assert.True(t, tagset.Consistent(got.PrimaryGenreID, got.GenreIDs))
	assert.Equal(t, models.StoryStatusOngoing, got.Status)
}

func TestStoryService_UpdateKeepsInvariantAndCreatedAt(t *testing.T) {
	f := newFixture(t)
	g1, g2 := f.genre(t, "Fantasy"), f.genre(t, "Romance")
	author := f.author(t, "Lan")
	created := f.story(t, author, "Moonlit Road", ptr(g1))

	updated, err := f.svc.Story.Update(f.ctx, created.ID, &models.StoryUpdateRequest{
		Title:          "Moonlit Road (Revised)",
		AuthorID:       author,
		PrimaryGenreID: ptr(g2),
		Status:         "Completed",
	})
	require.NoError(t, err)

	got, err := f.svc.Story.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moonlit Road (Revised)", got.Title)
	assert.Equal(t, []int64{g2}, got.GenreIDs)
	assert.True(t, tagset.Consistent(got.PrimaryGenreID, got.GenreIDs))
	assert.Equal(t, models.StoryStatusCompleted, got.Status)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestStoryService_UpdateIsAtomic(t *testing.T) {
	f := newFixture(t)
	g1, g2 := f.genre(t, "Fantasy"), f.genre(t, "Romance")
	author := f.author(t, "Lan")
	created := f.story(t, author, "Original", ptr(g1), g2)

	before, err := f.svc.Story.Get(f.ctx, created.ID)
	require.NoError(t, err)

	t.Run("tag replacement failure rolls back the row", func(t *testing.T) {
		f.repos.Story.FailTagReplace = errors.New("tag insert failed")
		defer func() { f.repos.Story.FailTagReplace = nil }()

		_, err := f.svc.Story.Update(f.ctx, created.ID, &models.StoryUpdateRequest{
			Title: "Changed", AuthorID: author, Status: "completed", GenreIDs: []int64{g2},
		})
		require.Error(t, err)

		after, err := f.svc.Story.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("one unknown genre among many writes nothing", func(t *testing.T) {
		writes := f.repos.Story.WriteCalls

		_, err := f.svc.Story.Update(f.ctx, created.ID, &models.StoryUpdateRequest{
			Title: "Changed", AuthorID: author, GenreIDs: []int64{g1, 9999, g2},
		})
		require.ErrorIs(t, err, models.ErrNotFound)

		var e *models.Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "genre", e.Kind)
		assert.Equal(t, "9999", e.ID)
		assert.Equal(t, writes, f.repos.Story.WriteCalls)

		after, err := f.svc.Story.Get(f.ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestStoryService_GetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	g := f.genre(t, "Fantasy")
	created := f.story(t, f.author(t, "Lan"), "Moonlit Road", ptr(g))
	_, err := f.svc.Story.AddChapter(f.ctx, created.ID, &models.ChapterCreateRequest{Number: 1, Content: "..."})
	require.NoError(t, err)

	first, err := f.svc.Story.Get(f.ctx, created.ID)
	require.NoError(t, err)
	second, err := f.svc.Story.Get(f.ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first.Chapters, 1)
}

func TestStoryService_Validation(t *testing.T) {
	f := newFixture(t)
	g := f.genre(t, "Fantasy")
	author := f.author(t, "Lan")

	tests := []struct {
		name     string
		req      models.StoryCreateRequest
		wantCode models.ErrorCode
		wantKind string
	}{
		{name: "empty title", req: models.StoryCreateRequest{Title: " ", AuthorID: author}, wantCode: models.CodeValidation},
		{name: "bad status", req: models.StoryCreateRequest{Title: "x", AuthorID: author, Status: "paused"}, wantCode: models.CodeValidation},
		{name: "unknown author", req: models.StoryCreateRequest{Title: "x", AuthorID: 404}, wantCode: models.CodeNotFound, wantKind: "author"},
		{name: "unknown primary", req: models.StoryCreateRequest{Title: "x", AuthorID: author, PrimaryGenreID: ptr(77)}, wantCode: models.CodeNotFound, wantKind: "genre"},
		{name: "unknown tag", req: models.StoryCreateRequest{Title: "x", AuthorID: author, GenreIDs: []int64{g, 78}}, wantCode: models.CodeNotFound, wantKind: "genre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Story.Create(f.ctx, &tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, code(err))
			if tt.wantKind != "" {
				var e *models.Error
				require.True(t, errors.As(err, &e))
				assert.Equal(t, tt.wantKind, e.Kind)
			}
		})
	}

	count, _ := f.repos.Story.Count(f.ctx)
	assert.Zero(t, count)
}

func TestStoryService_NotFound(t *testing.T) {
	f := newFixture(t)
	author := f.author(t, "Lan")

	_, err := f.svc.Story.Get(f.ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Story.Update(f.ctx, 42, &models.StoryUpdateRequest{Title: "x", AuthorID: author})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, f.svc.Story.Delete(f.ctx, 42), models.ErrNotFound)
}

func TestStoryService_DeleteCascadesChapters(t *testing.T) {
	f := newFixture(t)
	created := f.story(t, f.author(t, "Lan"), "Short", nil)
	_, err := f.svc.Story.AddChapter(f.ctx, created.ID, &models.ChapterCreateRequest{Number: 1, Content: "a"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Story.Delete(f.ctx, created.ID))
	assert.Empty(t, f.repos.Chapter.Chapters)
	assert.ErrorIs(t, f.svc.Story.Delete(f.ctx, created.ID), models.ErrNotFound)
}

func TestStoryService_ListByGenresUsesOrSemantics(t *testing.T) {
	f := newFixture(t)
	g5, g9, other := f.genre(t, "Wuxia"), f.genre(t, "Xianxia"), f.genre(t, "Horror")
	author := f.author(t, "Lan")

	only5 := f.story(t, author, "Only five", nil, g5)
	only9 := f.story(t, author, "Only nine", ptr(g9))
	neither := f.story(t, author, "Neither", nil, other)

	got, err := f.svc.Story.ListByGenres(f.ctx, []int64{g5, g9})
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []int64{only5.ID, only9.ID}, ids)
	assert.NotContains(t, ids, neither.ID)

	empty, err := f.svc.Story.ListByGenres(f.ctx, []int64{0, -1})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoryService_ListFilters(t *testing.T) {
	f := newFixture(t)
	g1, g2 := f.genre(t, "Fantasy"), f.genre(t, "Romance")
	a1, a2 := f.author(t, "Lan"), f.author(t, "Minh")

	dragon := f.story(t, a1, "The Dragon Gate", ptr(g1))
	f.story(t, a2, "Spring Letters", nil, g2)
	tagged := f.story(t, a2, "Dragon Tea", nil, g1, g2)

	byGenre, err := f.svc.Story.List(f.ctx, models.StoryFilter{GenreID: ptr(g1)})
	require.NoError(t, err)
	assert.Len(t, byGenre, 2)

	byAuthorAndQuery, err := f.svc.Story.List(f.ctx, models.StoryFilter{AuthorID: ptr(a2), Query: "dragon"})
	require.NoError(t, err)
	require.Len(t, byAuthorAndQuery, 1)
	assert.Equal(t, tagged.ID, byAuthorAndQuery[0].ID)

	byQuery, err := f.svc.Story.List(f.ctx, models.StoryFilter{Query: "GATE"})
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, dragon.ID, byQuery[0].ID)

	_, err = f.svc.Story.List(f.ctx, models.StoryFilter{Status: "paused"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStoryService_ApprovalUnlocksPublishing(t *testing.T) {
	f := newFixture(t)
	f.repos.Account.Add("acc-1", "Reader One")
	g := f.genre(t, "Fantasy")
	req := &models.StoryCreateRequest{Title: "My First Story", PrimaryGenreID: ptr(g)}

	_, err := f.svc.Story.CreateAsSelf(f.ctx, "acc-1", req)
	assert.ErrorIs(t, err, models.ErrForbidden, "no author record yet")

	author, err := f.svc.Author.Submit(f.ctx, "acc-1", &models.AuthorRequest{DisplayName: "Lan"})
	require.NoError(t, err)

	_, err = f.svc.Story.CreateAsSelf(f.ctx, "acc-1", req)
	assert.ErrorIs(t, err, models.ErrForbidden, "pending author")

	_, err = f.svc.Author.Approve(f.ctx, author.ID, "admin-1")
	require.NoError(t, err)

	story, err := f.svc.Story.CreateAsSelf(f.ctx, "acc-1", req)
	require.NoError(t, err)
	assert.Equal(t, author.ID, story.AuthorID)

	require.NoError(t, f.svc.Author.Reject(f.ctx, author.ID, "admin-1"))

	_, err = f.svc.Story.CreateAsSelf(f.ctx, "acc-1", req)
	assert.ErrorIs(t, err, models.ErrForbidden, "rejected author")

	_, err = f.svc.Story.CreateAsSelf(f.ctx, "", req)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestStoryService_UpdateAsSelfRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ids := []int64{f.selfAuthor(t, "acc-1"), f.selfAuthor(t, "acc-2")}

	mine, err := f.svc.Story.CreateAsSelf(f.ctx, "acc-1", &models.StoryCreateRequest{Title: "Mine"})
	require.NoError(t, err)

	_, err = f.svc.Story.UpdateAsSelf(f.ctx, "acc-2", mine.ID, &models.StoryUpdateRequest{Title: "Stolen"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := f.svc.Story.UpdateAsSelf(f.ctx, "acc-1", mine.ID, &models.StoryUpdateRequest{Title: "Still mine", AuthorID: ids[1]})
	require.NoError(t, err)
	assert.Equal(t, ids[0], updated.AuthorID, "author cannot be reassigned through the self path")
}

func TestStoryService_Chapters(t *testing.T) {
	f := newFixture(t)
	created := f.story(t, f.author(t, "Lan"), "Serial", nil)

	for _, n := range []int{2, 1, 3} {
		_, err := f.svc.Story.AddChapter(f.ctx, created.ID, &models.ChapterCreateRequest{Number: n, Content: "text"})
		require.NoError(t, err)
	}

	_, err := f.svc.Story.AddChapter(f.ctx, created.ID, &models.ChapterCreateRequest{Number: 2, Content: "dup"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.svc.Story.AddChapter(f.ctx, 999, &models.ChapterCreateRequest{Number: 1, Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.svc.Story.AddChapter(f.ctx, created.ID, &models.ChapterCreateRequest{Number: 0, Content: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	chapters, err := f.svc.Story.Chapters(f.ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{chapters[0].Number, chapters[1].Number, chapters[2].Number})
}

func TestStoryService_UnknownPrimaryReportsItsID(t *testing.T) {
	f := newFixture(t)
	author := f.author(t, "Lan")

	_, err := f.svc.Story.Create(f.ctx, &models.StoryCreateRequest{Title: "x", AuthorID: author, PrimaryGenreID: ptr(77)})
	var e *models.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, models.CodeNotFound, e.Code)
	assert.Equal(t, "genre", e.Kind)
	assert.Equal(t, "77", e.ID)
}

func TestStoryService_AddChapterAsSelf(t *testing.T) {
	f := newFixture(t)
	f.selfAuthor(t, "acc-1")
	f.selfAuthor(t, "acc-2")
	f.repos.Account.Add("acc-reader", "Reader")

	mine, err := f.svc.Story.CreateAsSelf(f.ctx, "acc-1", &models.StoryCreateRequest{Title: "Mine"})
	require.NoError(t, err)
	req := &models.ChapterCreateRequest{Number: 1, Content: "text"}

	tests := []struct {
		name    string
		account string
		storyID int64
		wantErr error
	}{
		{"anonymous", "", mine.ID, models.ErrUnauthorized},
		{"reader without author identity", "acc-reader", mine.ID, models.ErrForbidden},
		{"another author", "acc-2", mine.ID, models.ErrForbidden},
		{"missing story", "acc-1", 999, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Story.AddChapterAsSelf(f.ctx, tt.account, tt.storyID, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.repos.Chapter.Chapters)

	chapter, err := f.svc.Story.AddChapterAsSelf(f.ctx, "acc-1", mine.ID, req)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, chapter.StoryID)
}

func TestStoryService_ChapterUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.selfAuthor(t, "acc-1")
	f.selfAuthor(t, "acc-2")

	mine, err := f.svc.Story.CreateAsSelf(f.ctx, "acc-1", &models.StoryCreateRequest{Title: "Mine"})
	require.NoError(t, err)
	first, err := f.svc.Story.AddChapter(f.ctx, mine.ID, &models.ChapterCreateRequest{Number: 1, Title: "One", Content: "a"})
	require.NoError(t, err)
	_, err = f.svc.Story.AddChapter(f.ctx, mine.ID, &models.ChapterCreateRequest{Number: 2, Content: "b"})
	require.NoError(t, err)

	got, err := f.svc.Story.Chapter(f.ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Content)

	_, err = f.svc.Story.UpdateChapterAsSelf(f.ctx, "acc-2", first.ID, &models.ChapterUpdateRequest{Number: 1, Content: "stolen"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.svc.Story.UpdateChapterAsSelf(f.ctx, "", first.ID, &models.ChapterUpdateRequest{Number: 1, Content: "x"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = f.svc.Story.UpdateChapterAsSelf(f.ctx, "acc-1", first.ID, &models.ChapterUpdateRequest{Number: 2, Content: "x"})
	assert.ErrorIs(t, err, models.ErrConflict)

	_, err = f.svc.Story.UpdateChapter(f.ctx, first.ID, &models.ChapterUpdateRequest{Number: 0, Content: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	updated, err := f.svc.Story.UpdateChapterAsSelf(f.ctx, "acc-1", first.ID, &models.ChapterUpdateRequest{Number: 3, Title: "Three", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, mine.ID, updated.StoryID)
	assert.Equal(t, 3, updated.Number)

	chapters, err := f.svc.Story.Chapters(f.ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, []int{chapters[0].Number, chapters[1].Number})

	_, err = f.svc.Story.UpdateChapter(f.ctx, 999, &models.ChapterUpdateRequest{Number: 1, Content: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, f.svc.Story.DeleteChapter(f.ctx, first.ID))
	_, err = f.svc.Story.Chapter(f.ctx, first.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Story.DeleteChapter(f.ctx, first.ID), models.ErrNotFound)
}
