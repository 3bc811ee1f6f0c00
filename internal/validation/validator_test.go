package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/story-catalog-api/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name       string
		input      interface{}
		wantFields []string
	}{
		{
			name:  "valid story",
			input: &models.StoryCreateRequest{Title: "Moonlit Road", AuthorID: 1},
		},
		{
			name:       "missing title",
			input:      &models.StoryCreateRequest{AuthorID: 1},
			wantFields: []string{"title"},
		},
		{
			name:       "title and cover too long",
			input:      &models.StoryCreateRequest{Title: strings.Repeat("a", 201), CoverImage: strings.Repeat("c", 501)},
			wantFields: []string{"title", "cover_image"},
		},
		{
			name:       "score out of range",
			input:      &models.RatingRequest{Score: 6},
			wantFields: []string{"score"},
		},
		{
			name:       "genre name too long",
			input:      &models.GenreRequest{Name: strings.Repeat("g", 101)},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var verr *models.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *models.Error, got %T (%v)", err, err)
			}
			if verr.Code != models.CodeValidation {
				t.Errorf("Expected VALIDATION code, got %s", verr.Code)
			}
			if len(verr.Details) != len(tt.wantFields) {
				t.Fatalf("Expected %d details, got %d: %+v", len(tt.wantFields), len(verr.Details), verr.Details)
			}
			for i, field := range tt.wantFields {
				if verr.Details[i].Field != field {
					t.Errorf("Expected field %s, got %s", field, verr.Details[i].Field)
				}
			}
		})
	}
}

func TestValidateStory(t *testing.T) {
	tests := []struct {
		name       string
		req        models.StoryCreateRequest
		wantFields []string
	}{
		{
			name: "valid with defaults",
			req:  models.StoryCreateRequest{Title: "  Ashes  ", AuthorID: 3},
		},
		{
			name:       "whitespace title",
			req:        models.StoryCreateRequest{Title: "   ", AuthorID: 3},
			wantFields: []string{"title"},
		},
		{
			name:       "unknown status",
			req:        models.StoryCreateRequest{Title: "x", AuthorID: 3, Status: "paused"},
			wantFields: []string{"status"},
		},
		{
			name:       "missing author and bad primary",
			req:        models.StoryCreateRequest{Title: "x", PrimaryGenreID: int64Ptr(0)},
			wantFields: []string{"author_id", "primary_genre_id"},
		},
		{
			name:       "title measured in runes",
			req:        models.StoryCreateRequest{Title: strings.Repeat("ệ", 200), AuthorID: 1},
			wantFields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStory(FromCreateRequest(&tt.req))
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %+v", len(tt.wantFields), len(errs), errs)
			}
			for i, field := range tt.wantFields {
				if errs[i].Field != field {
					t.Errorf("Expected field %s, got %s", field, errs[i].Field)
				}
			}
		})
	}
}

func TestFromUpdateRequest_MatchesCreate(t *testing.T) {
	create := models.StoryCreateRequest{
		Title: " T ", AuthorID: 2, PrimaryGenreID: int64Ptr(4), Status: "Completed", GenreIDs: []int64{1, 4},
	}
	update := models.StoryUpdateRequest(create)

	a := FromCreateRequest(&create)
	b := FromUpdateRequest(&update)

	if a.Title != "T" || b.Title != "T" {
		t.Errorf("Expected trimmed titles, got %q and %q", a.Title, b.Title)
	}
	if a.Status != models.StoryStatusCompleted || b.Status != models.StoryStatusCompleted {
		t.Errorf("Expected completed status, got %s and %s", a.Status, b.Status)
	}
	if a.PrimaryGenreID == create.PrimaryGenreID {
		t.Error("Expected primary genre pointer to be copied")
	}
}

func TestValidateAuthor(t *testing.T) {
	if errs := ValidateAuthor(FromAuthorRequest(&models.AuthorRequest{DisplayName: "Lan"}, "acc-1")); len(errs) != 0 {
		t.Errorf("Expected no errors, got %+v", errs)
	}

	errs := ValidateAuthor(FromAuthorCreateRequest(&models.AuthorCreateRequest{
		DisplayName: strings.Repeat("n", 151),
		AvatarURL:   strings.Repeat("a", 501),
		AccountID:   strings.Repeat("i", 451),
	}))
	if len(errs) != 3 {
		t.Fatalf("Expected 3 errors, got %d: %+v", len(errs), errs)
	}

	errs = ValidateAuthor(FromAuthorRequest(&models.AuthorRequest{DisplayName: "  "}, "acc-1"))
	if len(errs) != 1 || errs[0].Field != "display_name" {
		t.Errorf("Expected display_name error, got %+v", errs)
	}
}

func TestGenreKey_CaseInsensitive(t *testing.T) {
	keys := []string{GenreKey("Sci-Fi"), GenreKey("SCI-FI"), GenreKey(" sci-fi ")}
	for _, k := range keys[1:] {
		if k != keys[0] {
			t.Errorf("Expected %q, got %q", keys[0], k)
		}
	}
	if GenreKey("Tiên Hiệp") != GenreKey("TIÊN HIỆP") {
		t.Error("Expected accented names to fold to the same key")
	}
}

func TestNormalizeGenreName(t *testing.T) {
	name, err := NormalizeGenreName("  Wuxia ")
	if err != nil || name != "Wuxia" {
		t.Errorf("Expected Wuxia, got %q (%v)", name, err)
	}
	if _, err := NormalizeGenreName(" "); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := NormalizeGenreName(strings.Repeat("x", 101)); !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
