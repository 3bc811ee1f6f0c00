package models

// Genre is a shared category stories can be tagged with
type Genre struct {
	ID   int64  `json:"genre_id" db:"id"`
	Name string `json:"name" db:"name"`
}

// MaxGenreNameLength is the maximum length of a genre name
const MaxGenreNameLength = 100

// GenreRequest is the payload for creating or renaming a genre
type GenreRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
