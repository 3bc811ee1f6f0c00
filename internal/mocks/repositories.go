package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
	"github.com/story-catalog-api/internal/tagset"
)

// Verify interface compliance
var (
	_ repository.StoryRepository   = (*MockStoryRepository)(nil)
	_ repository.GenreRepository   = (*MockGenreRepository)(nil)
	_ repository.AuthorRepository  = (*MockAuthorRepository)(nil)
	_ repository.ChapterRepository = (*MockChapterRepository)(nil)
	_ repository.ReadingEventLog   = (*MockReadingEventLog)(nil)
	_ repository.RatingLog         = (*MockRatingLog)(nil)
	_ repository.FollowRepository  = (*MockFollowRepository)(nil)
	_ repository.AuditRepository   = (*MockAuditRepository)(nil)
	_ repository.AccountDirectory  = (*MockAccountDirectory)(nil)
)

// MockRepositories bundles in-memory repositories that reference each other
// the way the Postgres schema does (foreign keys, cascades, in-use checks).
type MockRepositories struct {
	Story   *MockStoryRepository
	Genre   *MockGenreRepository
	Author  *MockAuthorRepository
	Chapter *MockChapterRepository
	Reading *MockReadingEventLog
	Rating  *MockRatingLog
	Follow  *MockFollowRepository
	Audit   *MockAuditRepository
	Account *MockAccountDirectory
}

// NewMockRepositories creates a linked set of in-memory repositories
func NewMockRepositories() *MockRepositories {
	m := &MockRepositories{
		Story:   NewMockStoryRepository(),
		Genre:   NewMockGenreRepository(),
		Author:  NewMockAuthorRepository(),
		Chapter: NewMockChapterRepository(),
		Reading: NewMockReadingEventLog(),
		Rating:  NewMockRatingLog(),
		Follow:  NewMockFollowRepository(),
		Audit:   NewMockAuditRepository(),
		Account: NewMockAccountDirectory(),
	}
	m.Story.Genres = m.Genre
	m.Story.Authors = m.Author
	m.Story.Chapters = m.Chapter
	m.Genre.Stories = m.Story
	m.Author.Stories = m.Story
	m.Author.Accounts = m.Account
	m.Chapter.Stories = m.Story
	m.Follow.Stories = m.Story
	m.Follow.Authors = m.Author
	return m
}

// Repositories exposes the mocks through the repository aggregate
func (m *MockRepositories) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Story:   m.Story,
		Genre:   m.Genre,
		Author:  m.Author,
		Chapter: m.Chapter,
		Reading: m.Reading,
		Rating:  m.Rating,
		Follow:  m.Follow,
		Audit:   m.Audit,
		Account: m.Account,
	}
}

// MockStoryRepository is an in-memory StoryRepository.
// Create and Update apply all-or-nothing: any error leaves Stories untouched.
type MockStoryRepository struct {
	mu      sync.Mutex
	Stories map[int64]*models.Story
	nextID  int64

	Genres   *MockGenreRepository
	Authors  *MockAuthorRepository
	Chapters *MockChapterRepository

	// InsertError fails Create and Update before anything is written
	InsertError error
	// FailTagReplace fails the tag-set replacement step, after the row
	// write has been staged, so the whole write must be discarded
	FailTagReplace error
	WriteCalls     int
}

func NewMockStoryRepository() *MockStoryRepository {
	return &MockStoryRepository{Stories: make(map[int64]*models.Story)}
}

func copyStory(s *models.Story) *models.Story {
	c := *s
	c.GenreIDs = append([]int64{}, s.GenreIDs...)
	if s.PrimaryGenreID != nil {
		p := *s.PrimaryGenreID
		c.PrimaryGenreID = &p
	}
	c.Chapters = nil
	return &c
}

func sortedIDs(ids []int64) []int64 {
	out := append([]int64{}, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// checkRefs mirrors the foreign keys on stories and story_genres
func (m *MockStoryRepository) checkRefs(story *models.Story, genreIDs []int64) error {
	if !tagset.Consistent(story.PrimaryGenreID, genreIDs) {
		return models.NewValidationError("genre_ids", "primary genre must be one of the story's genres")
	}
	if m.Authors != nil && !m.Authors.has(story.AuthorID) {
		return models.NewReferenceNotFound("author", story.AuthorID)
	}
	if m.Genres == nil {
		return nil
	}
	if story.PrimaryGenreID != nil && !m.Genres.has(*story.PrimaryGenreID) {
		return models.NewReferenceNotFound("genre", *story.PrimaryGenreID)
	}
	for _, id := range genreIDs {
		if !m.Genres.has(id) {
			return models.NewReferenceNotFound("genre", id)
		}
	}
	return nil
}

func (m *MockStoryRepository) Create(ctx context.Context, story *models.Story, genreIDs []int64) (int64, error) {
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	if err := m.checkRefs(story, genreIDs); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls++

	staged := copyStory(story)
	staged.GenreIDs = sortedIDs(genreIDs)
	if m.FailTagReplace != nil {
		return 0, m.FailTagReplace
	}

	m.nextID++
	now := time.Now().UTC()
	staged.ID = m.nextID
	staged.CreatedAt = now
	staged.UpdatedAt = now
	m.Stories[staged.ID] = staged

	story.ID = staged.ID
	story.CreatedAt = now
	story.UpdatedAt = now
	story.GenreIDs = append([]int64{}, staged.GenreIDs...)
	return staged.ID, nil
}

func (m *MockStoryRepository) Update(ctx context.Context, story *models.Story, genreIDs []int64) (bool, error) {
	if m.InsertError != nil {
		return false, m.InsertError
	}

	m.mu.Lock()
	existing, ok := m.Stories[story.ID]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := m.checkRefs(story, genreIDs); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls++

	staged := copyStory(story)
	staged.GenreIDs = sortedIDs(genreIDs)
	staged.CreatedAt = existing.CreatedAt
	staged.UpdatedAt = time.Now().UTC()
	if m.FailTagReplace != nil {
		return false, m.FailTagReplace
	}
	if _, still := m.Stories[story.ID]; !still {
		return false, nil
	}
	m.Stories[story.ID] = staged

	story.CreatedAt = staged.CreatedAt
	story.UpdatedAt = staged.UpdatedAt
	story.GenreIDs = append([]int64{}, staged.GenreIDs...)
	return true, nil
}

func (m *MockStoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	_, ok := m.Stories[id]
	delete(m.Stories, id)
	m.mu.Unlock()

	if ok && m.Chapters != nil {
		m.Chapters.deleteByStory(id)
	}
	return ok, nil
}

func (m *MockStoryRepository) GetByID(ctx context.Context, id int64) (*models.Story, error) {
	m.mu.Lock()
	s, ok := m.Stories[id]
	if ok {
		s = copyStory(s)
	}
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}

	s.Chapters = []models.ChapterListItem{}
	if m.Chapters != nil {
		s.Chapters, _ = m.Chapters.ListByStory(ctx, id)
	}
	return s, nil
}

func (m *MockStoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return m.has(id), nil
}

func (m *MockStoryRepository) has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Stories[id]
	return ok
}

func hasGenre(s *models.Story, genreID int64) bool {
	if s.PrimaryGenreID != nil && *s.PrimaryGenreID == genreID {
		return true
	}
	for _, id := range s.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// matching returns copies of the stories accepted by keep, newest first
func (m *MockStoryRepository) matching(keep func(*models.Story) bool) []*models.Story {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.Story{}
	for _, s := range m.Stories {
		if keep(s) {
			out = append(out, copyStory(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MockStoryRepository) List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error) {
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	return m.matching(func(s *models.Story) bool {
		if filter.AuthorID != nil && s.AuthorID != *filter.AuthorID {
			return false
		}
		if filter.GenreID != nil && !hasGenre(s, *filter.GenreID) {
			return false
		}
		if q != "" && !strings.Contains(strings.ToLower(s.Title), q) {
			return false
		}
		if filter.Status != "" && s.Status != filter.Status {
			return false
		}
		return true
	}), nil
}

func (m *MockStoryRepository) ListByGenres(ctx context.Context, genreIDs []int64) ([]*models.Story, error) {
	return m.matching(func(s *models.Story) bool {
		return tagset.Intersects(tagset.Canonical(s.PrimaryGenreID, s.GenreIDs), genreIDs)
	}), nil
}

func briefs(stories []*models.Story) []models.StoryBrief {
	out := make([]models.StoryBrief, 0, len(stories))
	for _, s := range stories {
		out = append(out, models.StoryBrief{StoryID: s.ID, Title: s.Title, Status: s.Status, UpdatedAt: s.UpdatedAt})
	}
	return out
}

func (m *MockStoryRepository) BriefsByAuthor(ctx context.Context, authorID int64) ([]models.StoryBrief, error) {
	return briefs(m.matching(func(s *models.Story) bool { return s.AuthorID == authorID })), nil
}

func (m *MockStoryRepository) BriefsByGenre(ctx context.Context, genreID int64) ([]models.StoryBrief, error) {
	return briefs(m.matching(func(s *models.Story) bool { return hasGenre(s, genreID) })), nil
}

func (m *MockStoryRepository) Summaries(ctx context.Context, ids []int64) (map[int64]models.StorySummary, error) {
	out := make(map[int64]models.StorySummary, len(ids))
	for _, id := range ids {
		m.mu.Lock()
		s, ok := m.Stories[id]
		if ok {
			s = copyStory(s)
		}
		m.mu.Unlock()
		if !ok {
			continue
		}

		sum := models.StorySummary{StoryID: s.ID, Title: s.Title, CoverImage: s.CoverImage, Status: s.Status}
		if m.Authors != nil {
			if a, _ := m.Authors.GetByID(ctx, s.AuthorID); a != nil {
				sum.AuthorName = a.DisplayName
			}
		}
		if m.Chapters != nil {
			chapters, _ := m.Chapters.ListByStory(ctx, id)
			sum.TotalChapters = len(chapters)
		}
		out[id] = sum
	}
	return out, nil
}

func (m *MockStoryRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Stories), nil
}

func (m *MockStoryRepository) StreamAll(ctx context.Context, callback func(*models.Story) error) error {
	stories := m.matching(func(*models.Story) bool { return true })
	sort.Slice(stories, func(i, j int) bool { return stories[i].ID < stories[j].ID })
	for _, s := range stories {
		if err := callback(s); err != nil {
			return err
		}
	}
	return nil
}

// referencesGenre reports whether any story uses the genre as primary or tag
func (m *MockStoryRepository) referencesGenre(genreID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.Stories {
		if hasGenre(s, genreID) {
			return true
		}
	}
	return false
}

func (m *MockStoryRepository) deleteByAuthor(authorID int64) {
	m.mu.Lock()
	var ids []int64
	for id, s := range m.Stories {
		if s.AuthorID == authorID {
			ids = append(ids, id)
			delete(m.Stories, id)
		}
	}
	m.mu.Unlock()

	if m.Chapters != nil {
		for _, id := range ids {
			m.Chapters.deleteByStory(id)
		}
	}
}

// MockGenreRepository is an in-memory GenreRepository
type MockGenreRepository struct {
	mu      sync.Mutex
	Genres  map[int64]*models.Genre
	Keys    map[int64]string
	nextID  int64
	Stories *MockStoryRepository

	InsertError error
}

func NewMockGenreRepository() *MockGenreRepository {
	return &MockGenreRepository{
		Genres: make(map[int64]*models.Genre),
		Keys:   make(map[int64]string),
	}
}

func (m *MockGenreRepository) taken(nameKey string, excludeID int64) bool {
	for id, k := range m.Keys {
		if k == nameKey && id != excludeID {
			return true
		}
	}
	return false
}

func (m *MockGenreRepository) Create(ctx context.Context, genre *models.Genre, nameKey string) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.taken(nameKey, 0) {
		return models.NewConflictError("genre name already exists")
	}
	m.nextID++
	genre.ID = m.nextID
	g := *genre
	m.Genres[g.ID] = &g
	m.Keys[g.ID] = nameKey
	return nil
}

func (m *MockGenreRepository) Rename(ctx context.Context, id int64, name, nameKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.Genres[id]
	if !ok {
		return false, nil
	}
	if m.taken(nameKey, id) {
		return false, models.NewConflictError("genre name already exists")
	}
	g.Name = name
	m.Keys[id] = nameKey
	return true, nil
}

func (m *MockGenreRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if !m.has(id) {
		return false, nil
	}
	if m.Stories != nil && m.Stories.referencesGenre(id) {
		return true, models.NewInUseError(fmt.Sprintf("genre %d is used by one or more stories", id))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Genres, id)
	delete(m.Keys, id)
	return true, nil
}

func (m *MockGenreRepository) GetByID(ctx context.Context, id int64) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.Genres[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *MockGenreRepository) List(ctx context.Context) ([]*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Genre, 0, len(m.Genres))
	for _, g := range m.Genres {
		c := *g
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := m.Keys[out[i].ID], m.Keys[out[j].ID]
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockGenreRepository) NameTaken(ctx context.Context, nameKey string, excludeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken(nameKey, excludeID), nil
}

func (m *MockGenreRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return m.has(id), nil
}

func (m *MockGenreRepository) has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Genres[id]
	return ok
}

func (m *MockGenreRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !m.has(id) {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (m *MockGenreRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Genres), nil
}

// MockAuthorRepository is an in-memory AuthorRepository with the same
// one-author-per-account backstop as the unique index
type MockAuthorRepository struct {
	mu      sync.Mutex
	Authors map[int64]*models.Author
	nextID  int64

	Stories  *MockStoryRepository
	Accounts *MockAccountDirectory

	InsertError error
	CreateCalls int
}

func NewMockAuthorRepository() *MockAuthorRepository {
	return &MockAuthorRepository{Authors: make(map[int64]*models.Author)}
}

func (m *MockAuthorRepository) accountTaken(accountID string, excludeID int64) bool {
	if accountID == "" {
		return false
	}
	for id, a := range m.Authors {
		if a.AccountID == accountID && id != excludeID {
			return true
		}
	}
	return false
}

func (m *MockAuthorRepository) Create(ctx context.Context, author *models.Author) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++

	if m.accountTaken(author.AccountID, 0) {
		return models.NewConflictError("account already has an author identity")
	}
	m.nextID++
	author.ID = m.nextID
	if author.CreatedAt.IsZero() {
		author.CreatedAt = time.Now().UTC()
	}
	a := *author
	m.Authors[a.ID] = &a
	return nil
}

func (m *MockAuthorRepository) Update(ctx context.Context, author *models.Author) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Authors[author.ID]
	if !ok {
		return false, nil
	}
	if m.accountTaken(author.AccountID, author.ID) {
		return false, models.NewConflictError("account already has an author identity")
	}
	existing.DisplayName = author.DisplayName
	existing.Bio = author.Bio
	existing.AvatarURL = author.AvatarURL
	existing.AccountID = author.AccountID
	return true, nil
}

func (m *MockAuthorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	_, ok := m.Authors[id]
	delete(m.Authors, id)
	m.mu.Unlock()

	if ok && m.Stories != nil {
		m.Stories.deleteByAuthor(id)
	}
	return ok, nil
}

func (m *MockAuthorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Authors[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (m *MockAuthorRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Authors {
		if a.AccountID != "" && a.AccountID == accountID {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockAuthorRepository) List(ctx context.Context, status models.AuthorStatus) ([]*models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.Author{}
	for _, a := range m.Authors {
		if status == "" || a.Status == status {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockAuthorRepository) ListPending(ctx context.Context) ([]*models.PendingAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.PendingAuthor{}
	for _, a := range m.Authors {
		if a.Status == models.AuthorStatusPending {
			p := &models.PendingAuthor{Author: *a}
			if m.Accounts != nil {
				p.AccountName, _ = m.Accounts.DisplayName(ctx, a.AccountID)
			}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockAuthorRepository) Approve(ctx context.Context, id int64, approvedBy string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.Authors[id]
	if !ok || a.Status != models.AuthorStatusPending {
		return false, nil
	}
	a.Status = models.AuthorStatusApproved
	a.ApprovedAt = &at
	a.ApprovedBy = approvedBy
	return true, nil
}

func (m *MockAuthorRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return m.has(id), nil
}

func (m *MockAuthorRepository) has(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Authors[id]
	return ok
}

func (m *MockAuthorRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Authors), nil
}

// MockChapterRepository is an in-memory ChapterRepository
type MockChapterRepository struct {
	mu       sync.Mutex
	Chapters map[int64]*models.Chapter
	nextID   int64
	Stories  *MockStoryRepository
}

func NewMockChapterRepository() *MockChapterRepository {
	return &MockChapterRepository{Chapters: make(map[int64]*models.Chapter)}
}

func (m *MockChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	if m.Stories != nil && !m.Stories.has(chapter.StoryID) {
		return models.NewReferenceNotFound("story", chapter.StoryID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Chapters {
		if c.StoryID == chapter.StoryID && c.Number == chapter.Number {
			return models.NewConflictError("chapter number already exists for this story")
		}
	}

	m.nextID++
	now := time.Now().UTC()
	chapter.ID = m.nextID
	chapter.CreatedAt = now
	chapter.UpdatedAt = now
	c := *chapter
	m.Chapters[c.ID] = &c
	return nil
}

func (m *MockChapterRepository) GetByID(ctx context.Context, id int64) (*models.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Chapters[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockChapterRepository) ListByStory(ctx context.Context, storyID int64) ([]models.ChapterListItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.ChapterListItem{}
	for _, c := range m.Chapters {
		if c.StoryID == storyID {
			out = append(out, models.ChapterListItem{
				ID: c.ID, Number: c.Number, Title: c.Title, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *MockChapterRepository) Update(ctx context.Context, chapter *models.Chapter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Chapters[chapter.ID]
	if !ok {
		return false, nil
	}
	for _, c := range m.Chapters {
		if c.ID != chapter.ID && c.StoryID == existing.StoryID && c.Number == chapter.Number {
			return false, models.NewConflictError("chapter number already exists for this story")
		}
	}

	existing.Number = chapter.Number
	existing.Title = chapter.Title
	existing.Content = chapter.Content
	existing.UpdatedAt = time.Now().UTC()
	*chapter = *existing
	return true, nil
}

func (m *MockChapterRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Chapters[id]
	delete(m.Chapters, id)
	return ok, nil
}

func (m *MockChapterRepository) deleteByStory(storyID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.Chapters {
		if c.StoryID == storyID {
			delete(m.Chapters, id)
		}
	}
}

// MockReadingEventLog is an in-memory ReadingEventLog keyed by (account, story)
type MockReadingEventLog struct {
	mu     sync.Mutex
	Events map[string]models.ReadingEvent
}

func NewMockReadingEventLog() *MockReadingEventLog {
	return &MockReadingEventLog{Events: make(map[string]models.ReadingEvent)}
}

func eventKey(accountID string, storyID int64) string {
	return fmt.Sprintf("%s/%d", accountID, storyID)
}

// Add seeds an event as-is, replacing any earlier one for the same pair
func (m *MockReadingEventLog) Add(accountID string, storyID int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events[eventKey(accountID, storyID)] = models.ReadingEvent{AccountID: accountID, StoryID: storyID, UpdatedAt: at}
}

func (m *MockReadingEventLog) EventsSince(ctx context.Context, since time.Time) ([]models.ReadingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.ReadingEvent{}
	for _, e := range m.Events {
		if since.IsZero() || !e.UpdatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockReadingEventLog) Record(ctx context.Context, event *models.ReadingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := eventKey(event.AccountID, event.StoryID)
	e := *event
	if prev, ok := m.Events[key]; ok && e.LastReadChapterID == nil {
		e.LastReadChapterID = prev.LastReadChapterID
	}
	m.Events[key] = e
	return nil
}

func (m *MockReadingEventLog) ListByAccount(ctx context.Context, accountID string) ([]models.ReadingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.ReadingEvent{}
	for _, e := range m.Events {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].StoryID < out[j].StoryID
	})
	return out, nil
}

func (m *MockReadingEventLog) Delete(ctx context.Context, accountID string, storyID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := eventKey(accountID, storyID)
	_, ok := m.Events[key]
	delete(m.Events, key)
	return ok, nil
}

// MockRatingLog is an in-memory RatingLog keyed by (account, story)
type MockRatingLog struct {
	mu      sync.Mutex
	Ratings map[string]models.Rating
}

func NewMockRatingLog() *MockRatingLog {
	return &MockRatingLog{Ratings: make(map[string]models.Rating)}
}

// Add seeds a rating as-is
func (m *MockRatingLog) Add(accountID string, storyID int64, score int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ratings[eventKey(accountID, storyID)] = models.Rating{AccountID: accountID, StoryID: storyID, Score: score, CreatedAt: at}
}

func (m *MockRatingLog) AveragesSince(ctx context.Context, since time.Time) ([]models.RatingAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sums := make(map[int64]int)
	counts := make(map[int64]int)
	for _, r := range m.Ratings {
		if since.IsZero() || !r.CreatedAt.Before(since) {
			sums[r.StoryID] += r.Score
			counts[r.StoryID]++
		}
	}

	out := make([]models.RatingAggregate, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.RatingAggregate{StoryID: id, Average: float64(sums[id]) / float64(n), Count: n})
	}
	return out, nil
}

func (m *MockRatingLog) Upsert(ctx context.Context, rating *models.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ratings[eventKey(rating.AccountID, rating.StoryID)] = *rating
	return nil
}

func (m *MockRatingLog) Summary(ctx context.Context, storyID int64) (*models.RatingSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &models.RatingSummary{StoryID: storyID}
	sum := 0
	for _, r := range m.Ratings {
		if r.StoryID == storyID {
			sum += r.Score
			s.TotalRatings++
		}
	}
	if s.TotalRatings > 0 {
		s.AverageScore = float64(sum) / float64(s.TotalRatings)
	}
	return s, nil
}

// MockFollowRepository is an in-memory FollowRepository keyed by
// (kind, account, target). Targets must exist in the linked repositories.
type MockFollowRepository struct {
	mu      sync.Mutex
	Follows map[string]models.Follow

	Stories *MockStoryRepository
	Authors *MockAuthorRepository
}

func NewMockFollowRepository() *MockFollowRepository {
	return &MockFollowRepository{Follows: make(map[string]models.Follow)}
}

func followKey(kind models.FollowKind, accountID string, targetID int64) string {
	return fmt.Sprintf("%s/%s/%d", kind, accountID, targetID)
}

func (m *MockFollowRepository) Follow(ctx context.Context, follow *models.Follow) (bool, error) {
	switch follow.Kind {
	case models.FollowStory:
		if m.Stories != nil && !m.Stories.has(follow.TargetID) {
			return false, models.NewReferenceNotFound("story", follow.TargetID)
		}
	case models.FollowAuthor:
		if m.Authors != nil && !m.Authors.has(follow.TargetID) {
			return false, models.NewReferenceNotFound("author", follow.TargetID)
		}
	default:
		return false, fmt.Errorf("unknown follow kind %q", follow.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := followKey(follow.Kind, follow.AccountID, follow.TargetID)
	if _, ok := m.Follows[key]; ok {
		return false, nil
	}
	if follow.CreatedAt.IsZero() {
		follow.CreatedAt = time.Now().UTC()
	}
	m.Follows[key] = *follow
	return true, nil
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := followKey(kind, accountID, targetID)
	_, ok := m.Follows[key]
	delete(m.Follows, key)
	return ok, nil
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, kind models.FollowKind, accountID string, targetID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Follows[followKey(kind, accountID, targetID)]
	return ok, nil
}

func (m *MockFollowRepository) ListByAccount(ctx context.Context, kind models.FollowKind, accountID string) ([]models.Follow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Follow{}
	for _, f := range m.Follows {
		if f.Kind == kind && f.AccountID == accountID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].TargetID < out[j].TargetID
	})
	return out, nil
}

// MockAuditRepository is an in-memory AuditRepository
type MockAuditRepository struct {
	mu       sync.Mutex
	Entries  []*models.AuthorAuditEntry
	AddError error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{Entries: make([]*models.AuthorAuditEntry, 0)}
}

func (m *MockAuditRepository) Add(ctx context.Context, entry *models.AuthorAuditEntry) error {
	if m.AddError != nil {
		return m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := *entry
	m.Entries = append(m.Entries, &e)
	return nil
}

func (m *MockAuditRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*models.AuthorAuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []*models.AuthorAuditEntry{}
	for _, e := range m.Entries {
		if e.AuthorID == authorID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

// MockAccountDirectory maps account ids to display names
type MockAccountDirectory struct {
	mu       sync.Mutex
	Accounts map[string]string
}

func NewMockAccountDirectory() *MockAccountDirectory {
	return &MockAccountDirectory{Accounts: make(map[string]string)}
}

// Add registers an account
func (m *MockAccountDirectory) Add(id, displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accounts[id] = displayName
}

func (m *MockAccountDirectory) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Accounts[id]
	return ok, nil
}

func (m *MockAccountDirectory) DisplayName(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Accounts[id], nil
}
