package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/story-catalog-api/internal/models"
	"github.com/story-catalog-api/internal/repository"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(repos *repository.Repositories, log zerolog.Logger) *exportService {
	return &exportService{
		repos: repos,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// StreamStories streams the catalog in the specified format
func (s *exportService) StreamStories(ctx context.Context, w http.ResponseWriter, format string) error {
	s.log.Info().Str("format", format).Msg("Starting stories export")

	switch format {
	case FormatNDJSON:
		return s.streamNDJSON(ctx, w)
	case FormatJSON:
		return s.streamJSON(ctx, w)
	case FormatCSV:
		return s.streamCSV(ctx, w)
	default:
		return models.NewValidationError("format", fmt.Sprintf("unsupported format: %s", format))
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.ndjson")

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	count := 0

	err := s.repos.Story.StreamAll(ctx, func(story *models.Story) error {
		if err := enc.Encode(story); err != nil {
			return err
		}
		count++

		// Flush every 100 records for streaming
		if count%100 == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Stories export completed")
	return err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.json")

	w.Write([]byte("["))
	first := true

	err := s.repos.Story.StreamAll(ctx, func(story *models.Story) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(story)
		if err != nil {
			return err
		}
		w.Write(data)
		return nil
	})

	w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCSV(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=stories.csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{
		"story_id", "title", "author_id", "primary_genre_id", "genre_ids", "status", "created_at", "updated_at",
	})

	return s.repos.Story.StreamAll(ctx, func(story *models.Story) error {
		primary := ""
		if story.PrimaryGenreID != nil {
			primary = strconv.FormatInt(*story.PrimaryGenreID, 10)
		}
		genres := make([]string, len(story.GenreIDs))
		for i, id := range story.GenreIDs {
			genres[i] = strconv.FormatInt(id, 10)
		}

		return writer.Write([]string{
			strconv.FormatInt(story.ID, 10),
			story.Title,
			strconv.FormatInt(story.AuthorID, 10),
			primary,
			strings.Join(genres, ";"),
			story.Status.String(),
			story.CreatedAt.UTC().Format(time.RFC3339),
			story.UpdatedAt.UTC().Format(time.RFC3339),
		})
	})
}

// GetCount returns count for a resource
func (s *exportService) GetCount(ctx context.Context, resource string) (int, error) {
	switch resource {
	case "stories":
		return s.repos.Story.Count(ctx)
	case "genres":
		return s.repos.Genre.Count(ctx)
	case "authors":
		return s.repos.Author.Count(ctx)
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}
}
