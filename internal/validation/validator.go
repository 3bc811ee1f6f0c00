package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/story-catalog-api/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Validator checks request payloads against their struct tags
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a validator that reports fields by their JSON names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and converts failures into a models.Error with one detail per field
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make([]models.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, models.ValidationError{
			Field:   fe.Field(),
			Message: friendlyMessage(fe),
			Value:   fe.Value(),
		})
	}
	return models.NewValidationErrors(details)
}

func friendlyMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must not contain more than %s items", fe.Field(), fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// StoryInput is the normalized form of a story create or update payload.
// Both payload shapes are converted into it so they share one validation path.
type StoryInput struct {
	Title          string
	AuthorID       int64
	Description    string
	CoverImage     string
	BannerImage    string
	PrimaryGenreID *int64
	RawStatus      string
	Status         models.StoryStatus
	GenreIDs       []int64
}

// FromCreateRequest normalizes a create payload
func FromCreateRequest(req *models.StoryCreateRequest) StoryInput {
	return normalizeStory(req.Title, req.AuthorID, req.Description, req.CoverImage,
		req.BannerImage, req.PrimaryGenreID, req.Status, req.GenreIDs)
}

// FromUpdateRequest normalizes an update payload
func FromUpdateRequest(req *models.StoryUpdateRequest) StoryInput {
	return normalizeStory(req.Title, req.AuthorID, req.Description, req.CoverImage,
		req.BannerImage, req.PrimaryGenreID, req.Status, req.GenreIDs)
}

func normalizeStory(title string, authorID int64, description, cover, banner string,
	primary *int64, status string, genreIDs []int64) StoryInput {
	in := StoryInput{
		Title:       strings.TrimSpace(title),
		AuthorID:    authorID,
		Description: strings.TrimSpace(description),
		CoverImage:  strings.TrimSpace(cover),
		BannerImage: strings.TrimSpace(banner),
		RawStatus:   status,
		GenreIDs:    genreIDs,
	}
	if primary != nil {
		p := *primary
		in.PrimaryGenreID = &p
	}
	// Left empty on parse failure, ValidateStory reports it
	if st, err := models.ParseStoryStatus(status); err == nil {
		in.Status = st
	}
	return in
}

// ValidateStory checks the field-level rules of a normalized story.
// Referential checks (author and genres exist) are done by the caller.
func ValidateStory(in StoryInput) []models.ValidationError {
	var errs []models.ValidationError

	if in.Title == "" {
		errs = append(errs, models.ValidationError{Field: "title", Message: "title is required"})
	} else if n := len([]rune(in.Title)); n > 200 {
		errs = append(errs, models.ValidationError{Field: "title", Message: "title must not exceed 200 characters", Value: n})
	}

	if in.AuthorID <= 0 {
		errs = append(errs, models.ValidationError{Field: "author_id", Message: "author_id is required"})
	}

	if !in.Status.Valid() {
		errs = append(errs, models.ValidationError{
			Field:   "status",
			Message: "invalid status, must be one of: ongoing, completed",
			Value:   in.RawStatus,
		})
	}

	if len(in.CoverImage) > models.MaxImageRefLength {
		errs = append(errs, models.ValidationError{Field: "cover_image", Message: "cover_image must not exceed 500 characters"})
	}
	if len(in.BannerImage) > models.MaxImageRefLength {
		errs = append(errs, models.ValidationError{Field: "banner_image", Message: "banner_image must not exceed 500 characters"})
	}

	if in.PrimaryGenreID != nil && *in.PrimaryGenreID <= 0 {
		errs = append(errs, models.ValidationError{Field: "primary_genre_id", Message: "primary_genre_id must be positive", Value: *in.PrimaryGenreID})
	}

	return errs
}

// AuthorInput is the normalized form of the author payloads
type AuthorInput struct {
	DisplayName string
	Bio         string
	AvatarURL   string
	AccountID   string
}

// FromAuthorRequest normalizes a self-service request; the account comes from the caller identity
func FromAuthorRequest(req *models.AuthorRequest, accountID string) AuthorInput {
	return AuthorInput{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         strings.TrimSpace(req.Bio),
		AvatarURL:   strings.TrimSpace(req.AvatarURL),
		AccountID:   strings.TrimSpace(accountID),
	}
}

// FromAuthorCreateRequest normalizes an administrative create or update payload
func FromAuthorCreateRequest(req *models.AuthorCreateRequest) AuthorInput {
	return AuthorInput{
		DisplayName: strings.TrimSpace(req.DisplayName),
		Bio:         strings.TrimSpace(req.Bio),
		AvatarURL:   strings.TrimSpace(req.AvatarURL),
		AccountID:   strings.TrimSpace(req.AccountID),
	}
}

// ValidateAuthor checks the field-level rules of a normalized author
func ValidateAuthor(in AuthorInput) []models.ValidationError {
	var errs []models.ValidationError

	if in.DisplayName == "" {
		errs = append(errs, models.ValidationError{Field: "display_name", Message: "display_name is required"})
	} else if len([]rune(in.DisplayName)) > models.MaxAuthorNameLength {
		errs = append(errs, models.ValidationError{Field: "display_name", Message: "display_name must not exceed 150 characters"})
	}

	if len(in.AvatarURL) > models.MaxImageRefLength {
		errs = append(errs, models.ValidationError{Field: "avatar_url", Message: "avatar_url must not exceed 500 characters"})
	}

	if len(in.AccountID) > models.MaxAccountIDLength {
		errs = append(errs, models.ValidationError{Field: "account_id", Message: "account_id must not exceed 450 characters"})
	}

	return errs
}

var folder = cases.Fold()

// NormalizeGenreName trims and validates a genre name
func NormalizeGenreName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", models.NewValidationError("name", "name is required")
	}
	if len([]rune(name)) > models.MaxGenreNameLength {
		return "", models.NewValidationError("name", "name must not exceed 100 characters")
	}
	return name, nil
}

// GenreKey returns the case-folded form used for case-insensitive name uniqueness.
// "Sci-Fi", "SCI-FI" and "sci-fi" share one key.
func GenreKey(name string) string {
	return folder.String(norm.NFC.String(strings.TrimSpace(name)))
}
