package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/story-catalog-api/internal/mocks"
	"github.com/story-catalog-api/internal/models"
)

func seedAuthor(t *testing.T, repos *mocks.MockRepositories, name string) int64 {
	t.Helper()
	a := &models.Author{DisplayName: name, Status: models.AuthorStatusApproved}
	if err := repos.Author.Create(context.Background(), a); err != nil {
		t.Fatalf("Create author failed: %v", err)
	}
	return a.ID
}

func seedGenre(t *testing.T, repos *mocks.MockRepositories, name string) int64 {
	t.Helper()
	g := &models.Genre{Name: name}
	if err := repos.Genre.Create(context.Background(), g, name); err != nil {
		t.Fatalf("Create genre failed: %v", err)
	}
	return g.ID
}

func TestMockStoryRepository_CreateStoresSortedTags(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	g1, g2 := seedGenre(t, repos, "fantasy"), seedGenre(t, repos, "romance")

	story := &models.Story{Title: "Tides", AuthorID: author, PrimaryGenreID: &g2, Status: models.StoryStatusOngoing}
	id, err := repos.Story.Create(ctx, story, []int64{g2, g1})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != story.ID {
		t.Errorf("Expected returned id %d to match story id %d", id, story.ID)
	}

	stored, err := repos.Story.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil {
		t.Fatal("Story not found")
	}
	if len(stored.GenreIDs) != 2 || stored.GenreIDs[0] != g1 || stored.GenreIDs[1] != g2 {
		t.Errorf("Expected tags [%d %d], got %v", g1, g2, stored.GenreIDs)
	}
}

func TestMockStoryRepository_ForeignKeys(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")

	_, err := repos.Story.Create(ctx, &models.Story{Title: "x", AuthorID: 99}, nil)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for unknown author, got %v", err)
	}

	_, err = repos.Story.Create(ctx, &models.Story{Title: "x", AuthorID: author}, []int64{7})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for unknown genre, got %v", err)
	}

	count, _ := repos.Story.Count(ctx)
	if count != 0 {
		t.Errorf("Expected nothing written, got %d stories", count)
	}
}

func TestMockStoryRepository_FailTagReplaceDiscardsWrite(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	g := seedGenre(t, repos, "fantasy")

	story := &models.Story{Title: "Before", AuthorID: author}
	if _, err := repos.Story.Create(ctx, story, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	repos.Story.FailTagReplace = fmt.Errorf("boom")
	updated := &models.Story{ID: story.ID, Title: "After", AuthorID: author, PrimaryGenreID: &g}
	if _, err := repos.Story.Update(ctx, updated, []int64{g}); err == nil {
		t.Fatal("Expected update to fail")
	}

	stored, _ := repos.Story.GetByID(ctx, story.ID)
	if stored.Title != "Before" || stored.PrimaryGenreID != nil || len(stored.GenreIDs) != 0 {
		t.Errorf("Expected original story untouched, got %+v", stored)
	}
}

func TestMockStoryRepository_DeleteCascadesChapters(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")

	story := &models.Story{Title: "Serial", AuthorID: author}
	repos.Story.Create(ctx, story, nil)
	for i := 1; i <= 3; i++ {
		if err := repos.Chapter.Create(ctx, &models.Chapter{StoryID: story.ID, Number: i, Content: "x"}); err != nil {
			t.Fatalf("Create chapter failed: %v", err)
		}
	}

	deleted, err := repos.Story.Delete(ctx, story.ID)
	if err != nil || !deleted {
		t.Fatalf("Expected delete to succeed, got %v, %v", deleted, err)
	}

	chapters, _ := repos.Chapter.ListByStory(ctx, story.ID)
	if len(chapters) != 0 {
		t.Errorf("Expected chapters removed with the story, got %d", len(chapters))
	}

	deleted, _ = repos.Story.Delete(ctx, story.ID)
	if deleted {
		t.Error("Second delete should report nothing deleted")
	}
}

func TestMockChapterRepository_UniqueNumber(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	story := &models.Story{Title: "Serial", AuthorID: author}
	repos.Story.Create(ctx, story, nil)

	repos.Chapter.Create(ctx, &models.Chapter{StoryID: story.ID, Number: 1})
	err := repos.Chapter.Create(ctx, &models.Chapter{StoryID: story.ID, Number: 1})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict for duplicate chapter number, got %v", err)
	}
}

func TestMockGenreRepository_InUseGuard(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	used := seedGenre(t, repos, "fantasy")
	unused := seedGenre(t, repos, "romance")

	repos.Story.Create(ctx, &models.Story{Title: "Tagged", AuthorID: author}, []int64{used})

	found, err := repos.Genre.Delete(ctx, used)
	if !found || !errors.Is(err, models.ErrInUse) {
		t.Errorf("Expected in-use error, got found=%v err=%v", found, err)
	}

	found, err = repos.Genre.Delete(ctx, unused)
	if !found || err != nil {
		t.Errorf("Expected unused genre deleted, got found=%v err=%v", found, err)
	}

	missing, _ := repos.Genre.MissingIDs(ctx, []int64{used, unused, 42})
	if len(missing) != 2 || missing[0] != unused || missing[1] != 42 {
		t.Errorf("Expected missing [%d 42], got %v", unused, missing)
	}
}

func TestMockGenreRepository_NameKeyConflict(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	seedGenre(t, repos, "fantasy")

	err := repos.Genre.Create(ctx, &models.Genre{Name: "Fantasy"}, "fantasy")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict, got %v", err)
	}

	taken, _ := repos.Genre.NameTaken(ctx, "fantasy", 0)
	if !taken {
		t.Error("Name key should be taken")
	}
}

func TestMockAuthorRepository_Approve(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()

	a := &models.Author{DisplayName: "Lan", AccountID: "acc-1", Status: models.AuthorStatusPending}
	repos.Author.Create(ctx, a)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	approved, err := repos.Author.Approve(ctx, a.ID, "admin-1", at)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if !approved {
		t.Error("Pending author should be approved")
	}

	// Conditional update: a second approval is a no-op
	approved, _ = repos.Author.Approve(ctx, a.ID, "admin-2", at.Add(time.Hour))
	if approved {
		t.Error("Author should not be approved twice")
	}

	stored, _ := repos.Author.GetByID(ctx, a.ID)
	if stored.ApprovedBy != "admin-1" || !stored.ApprovedAt.Equal(at) {
		t.Errorf("Expected first approval kept, got %s at %v", stored.ApprovedBy, stored.ApprovedAt)
	}
}

func TestMockAuthorRepository_OneAuthorPerAccount(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()

	repos.Author.Create(ctx, &models.Author{DisplayName: "First", AccountID: "acc-1"})
	err := repos.Author.Create(ctx, &models.Author{DisplayName: "Second", AccountID: "acc-1"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict, got %v", err)
	}

	// Admin-created authors without an account never collide
	for i := 0; i < 3; i++ {
		if err := repos.Author.Create(ctx, &models.Author{DisplayName: fmt.Sprintf("Pen %d", i)}); err != nil {
			t.Errorf("Create without account failed: %v", err)
		}
	}

	count, _ := repos.Author.Count(ctx)
	if count != 4 {
		t.Errorf("Expected 4 authors, got %d", count)
	}
}

func TestMockReadingEventLog_RecordKeepsLastChapter(t *testing.T) {
	log := mocks.NewMockReadingEventLog()
	ctx := context.Background()
	chapter := int64(3)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	log.Record(ctx, &models.ReadingEvent{AccountID: "a", StoryID: 1, LastReadChapterID: &chapter, UpdatedAt: t0})
	log.Record(ctx, &models.ReadingEvent{AccountID: "a", StoryID: 1, UpdatedAt: t0.Add(time.Hour)})

	events, _ := log.EventsSince(ctx, time.Time{})
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].LastReadChapterID == nil || *events[0].LastReadChapterID != chapter {
		t.Errorf("Expected last chapter %d kept, got %v", chapter, events[0].LastReadChapterID)
	}

	events, _ = log.EventsSince(ctx, t0.Add(2*time.Hour))
	if len(events) != 0 {
		t.Errorf("Expected no events after the cutoff, got %d", len(events))
	}
}

func TestMockRatingLog_AveragesSince(t *testing.T) {
	log := mocks.NewMockRatingLog()
	ctx := context.Background()
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	log.Add("a", 1, 5, now)
	log.Add("b", 1, 2, now)
	log.Add("c", 1, 1, now.AddDate(0, 0, -40))

	aggs, err := log.AveragesSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("AveragesSince failed: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Count != 2 || aggs[0].Average != 3.5 {
		t.Errorf("Expected one aggregate of 3.5 over 2 ratings, got %+v", aggs)
	}

	sum, _ := log.Summary(ctx, 1)
	if sum.TotalRatings != 3 {
		t.Errorf("Expected summary over all 3 ratings, got %d", sum.TotalRatings)
	}
}

func TestMockStoryRepository_RejectsPrimaryOutsideTags(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	g1, g2 := seedGenre(t, repos, "fantasy"), seedGenre(t, repos, "romance")

	story := &models.Story{Title: "Tides", AuthorID: author, PrimaryGenreID: &g1}
	_, err := repos.Story.Create(ctx, story, []int64{g2})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if count, _ := repos.Story.Count(ctx); count != 0 {
		t.Errorf("Expected nothing stored, got %d stories", count)
	}
}

func TestMockStoryRepository_ListByGenresMatchesAny(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	g1, g2, g3 := seedGenre(t, repos, "fantasy"), seedGenre(t, repos, "romance"), seedGenre(t, repos, "horror")

	primaryOnly := &models.Story{Title: "Primary only", AuthorID: author, PrimaryGenreID: &g1}
	repos.Story.Create(ctx, primaryOnly, []int64{g1})
	tagged := &models.Story{Title: "Tagged", AuthorID: author}
	repos.Story.Create(ctx, tagged, []int64{g2, g3})
	untagged := &models.Story{Title: "Untagged", AuthorID: author}
	repos.Story.Create(ctx, untagged, nil)

	got, err := repos.Story.ListByGenres(ctx, []int64{g1, g2})
	if err != nil {
		t.Fatalf("ListByGenres failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 stories, got %d", len(got))
	}
	for _, s := range got {
		if s.ID == untagged.ID {
			t.Error("Untagged story should not match")
		}
	}
}

func TestMockChapterRepository_Update(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")
	story := &models.Story{Title: "Serial", AuthorID: author}
	repos.Story.Create(ctx, story, nil)

	first := &models.Chapter{StoryID: story.ID, Number: 1, Content: "a"}
	repos.Chapter.Create(ctx, first)
	repos.Chapter.Create(ctx, &models.Chapter{StoryID: story.ID, Number: 2, Content: "b"})

	_, err := repos.Chapter.Update(ctx, &models.Chapter{ID: first.ID, Number: 2, Content: "x"})
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Expected conflict moving onto a taken number, got %v", err)
	}

	edit := &models.Chapter{ID: first.ID, Number: 5, Title: "Five", Content: "z"}
	found, err := repos.Chapter.Update(ctx, edit)
	if err != nil || !found {
		t.Fatalf("Expected update to succeed, got %v, %v", found, err)
	}
	if edit.StoryID != story.ID || edit.CreatedAt.IsZero() {
		t.Errorf("Expected story id and created_at filled in, got %+v", edit)
	}

	found, _ = repos.Chapter.Update(ctx, &models.Chapter{ID: 999, Number: 1, Content: "x"})
	if found {
		t.Error("Updating a missing chapter should report not found")
	}
}

func TestMockReadingEventLog_ListByAccountAndDelete(t *testing.T) {
	log := mocks.NewMockReadingEventLog()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	log.Add("a", 1, t0)
	log.Add("a", 2, t0.Add(time.Hour))
	log.Add("b", 1, t0.Add(2*time.Hour))

	events, _ := log.ListByAccount(ctx, "a")
	if len(events) != 2 || events[0].StoryID != 2 || events[1].StoryID != 1 {
		t.Fatalf("Expected stories [2 1] for a, got %+v", events)
	}

	deleted, _ := log.Delete(ctx, "a", 2)
	if !deleted {
		t.Error("Expected the event to be deleted")
	}
	deleted, _ = log.Delete(ctx, "a", 2)
	if deleted {
		t.Error("Second delete should report nothing deleted")
	}

	all, _ := log.EventsSince(ctx, time.Time{})
	if len(all) != 2 {
		t.Errorf("Expected 2 events left, got %d", len(all))
	}
}

func TestMockFollowRepository(t *testing.T) {
	repos := mocks.NewMockRepositories()
	ctx := context.Background()
	author := seedAuthor(t, repos, "Lan")

	created, err := repos.Follow.Follow(ctx, &models.Follow{AccountID: "a", Kind: models.FollowAuthor, TargetID: author})
	if err != nil || !created {
		t.Fatalf("Expected follow created, got %v, %v", created, err)
	}
	created, _ = repos.Follow.Follow(ctx, &models.Follow{AccountID: "a", Kind: models.FollowAuthor, TargetID: author})
	if created {
		t.Error("Repeat follow should report not created")
	}

	_, err = repos.Follow.Follow(ctx, &models.Follow{AccountID: "a", Kind: models.FollowStory, TargetID: 42})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for a missing story, got %v", err)
	}

	following, _ := repos.Follow.IsFollowing(ctx, models.FollowStory, "a", author)
	if following {
		t.Error("Author follow must not count as a story follow")
	}

	list, _ := repos.Follow.ListByAccount(ctx, models.FollowAuthor, "a")
	if len(list) != 1 || list[0].TargetID != author {
		t.Errorf("Expected one followed author, got %+v", list)
	}

	removed, _ := repos.Follow.Unfollow(ctx, models.FollowAuthor, "a", author)
	if !removed {
		t.Error("Expected unfollow to remove the pair")
	}
}
