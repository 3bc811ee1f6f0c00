package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
	"github.com/story-catalog-api/internal/validation"
)

type genreService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

func newGenreService(repos *repository.Repositories, log zerolog.Logger) *genreService {
	return &genreService{
		repos: repos,
		log:   log.With().Str("service", "genre").Logger(),
	}
}

func (s *genreService) Create(ctx context.Context, req *models.GenreRequest) (*models.Genre, error) {
	name, err := validation.NormalizeGenreName(req.Name)
	if err != nil {
		return nil, err
	}
	key := validation.GenreKey(name)

	if err := s.checkName(ctx, key, 0); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: name}
	if err := s.repos.Genre.Create(ctx, genre, key); err != nil {
		return nil, err
	}

	s.log.Info().Int64("genre_id", genre.ID).Str("name", name).Msg("Genre created")
	return genre, nil
}

func (s *genreService) Rename(ctx context.Context, id int64, req *models.GenreRequest) (*models.Genre, error) {
	name, err := validation.NormalizeGenreName(req.Name)
	if err != nil {
		return nil, err
	}
	key := validation.GenreKey(name)

	if err := s.checkName(ctx, key, id); err != nil {
		return nil, err
	}

	found, err := s.repos.Genre.Rename(ctx, id, name, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewReferenceNotFound("genre", id)
	}

	s.log.Info().Int64("genre_id", id).Str("name", name).Msg("Genre renamed")
	return &models.Genre{ID: id, Name: name}, nil
}

func (s *genreService) checkName(ctx context.Context, key string, excludeID int64) error {
	taken, err := s.repos.Genre.NameTaken(ctx, key, excludeID)
	if err != nil {
		return fmt.Errorf("check genre name: %w", err)
	}
	if taken {
		return models.NewConflictError("genre name already exists")
	}
	return nil
}

// Delete removes a genre no story references as primary or tag
func (s *genreService) Delete(ctx context.Context, id int64) error {
	found, err := s.repos.Genre.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return models.NewReferenceNotFound("genre", id)
	}

	s.log.Info().Int64("genre_id", id).Msg("Genre deleted")
	return nil
}

func (s *genreService) Get(ctx context.Context, id int64) (*models.Genre, error) {
	genre, err := s.repos.Genre.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	if genre == nil {
		return nil, models.NewReferenceNotFound("genre", id)
	}
	return genre, nil
}

// List returns all genres by name
func (s *genreService) List(ctx context.Context) ([]*models.Genre, error) {
	return s.repos.Genre.List(ctx)
}

// Stories lists stories carrying the genre as primary or tag
func (s *genreService) Stories(ctx context.Context, id int64) ([]models.StoryBrief, error) {
	ok, err := s.repos.Genre.Exists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("check genre: %w", err)
	}
	if !ok {
		return nil, models.NewReferenceNotFound("genre", id)
	}
	return s.repos.Story.BriefsByGenre(ctx, id)
}
