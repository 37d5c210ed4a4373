package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/queue"
	"github.com/iliyamo/movie-review/internal/repository"
)

// MsgMovieMissing is returned for unknown movie ids.
const MsgMovieMissing = "Movie not found."

// MovieInput is the add-movie payload.  Field names follow the admin
// form; Rating is the certification (PG-13) and IMDbRating the score.
// Required fields are declared in the order they are reported.
type MovieInput struct {
	Title            string     `json:"title" form:"title" validate:"required"`
	Genre            string     `json:"genre" form:"genre" validate:"required"`
	AdditionalGenres string     `json:"additionalGenres" form:"additionalGenres"`
	ReleaseYear      FlexString `json:"releaseYear" form:"releaseYear" validate:"required"`
	Director         string     `json:"director" form:"director" validate:"required"`
	Cast             string     `json:"cast" form:"cast"`
	Duration         FlexString `json:"duration" form:"duration"`
	Rating           string     `json:"rating" form:"rating"`
	IMDbRating       FlexString `json:"imdbRating" form:"imdbRating"`
	Description      string     `json:"description" form:"description" validate:"required"`
	Poster           string     `json:"poster" form:"poster"`
	Trailer          string     `json:"trailer" form:"trailer"`
	Language         string     `json:"language" form:"language" validate:"required"`
	Country          string     `json:"country" form:"country" validate:"required"`
}

// MoviePatch carries an edit.  Nil fields are left unchanged; ReleaseYear,
// Duration and IMDbRating are also left unchanged when blank.
type MoviePatch struct {
	Title            *string
	Genre            *string
	AdditionalGenres *string
	ReleaseYear      *string
	Director         *string
	Cast             *string
	Duration         *string
	Rating           *string
	IMDbRating       *string
	Description      *string
	Poster           *string
	Trailer          *string
	Language         *string
	Country          *string
}

// CatalogService manages the movie catalog.
type CatalogService struct {
	movies *repository.MovieRepo
	events EventPublisher
}

func NewCatalogService(movies *repository.MovieRepo, events EventPublisher) *CatalogService {
	return &CatalogService{movies: movies, events: events}
}

// CreateMovie validates in, rejects a title already used by another movie
// (ignoring case) and inserts the movie.
func (s *CatalogService) CreateMovie(ctx context.Context, in MovieInput) (*model.Movie, error) {
	trimMovieInput(&in)
	fe, err := firstFailure(&in, "required")
	if err != nil {
		return nil, err
	}
	if fe != nil {
		return nil, validationError("%s is required.", fe.Field())
	}

	m := &model.Movie{
		Title:            in.Title,
		Genre:            in.Genre,
		AdditionalGenres: nullString(in.AdditionalGenres),
		Director:         in.Director,
		Cast:             nullString(in.Cast),
		Certification:    nullString(in.Rating),
		Description:      in.Description,
		PosterURL:        nullString(in.Poster),
		TrailerURL:       nullString(in.Trailer),
		Language:         in.Language,
		Country:          in.Country,
	}
	if m.ReleaseDate, err = parseReleaseYear(in.ReleaseYear.String()); err != nil {
		return nil, err
	}
	if v := in.Duration.String(); v != "" {
		if m.Duration, err = parseDuration(v); err != nil {
			return nil, err
		}
	}
	if v := in.IMDbRating.String(); v != "" {
		if m.Score, err = parseScore(v); err != nil {
			return nil, err
		}
	}

	taken, err := s.movies.TitleExists(ctx, m.Title, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, titleConflict(m.Title)
	}
	if err := s.movies.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrTitleExists) {
			return nil, titleConflict(m.Title)
		}
		return nil, err
	}
	emit(ctx, s.events, queue.Event{Type: queue.MovieCreated, MovieID: m.ID, Title: m.Title})
	return m, nil
}

// Movie returns one movie.
func (s *CatalogService) Movie(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return nil, notFoundError(MsgMovieMissing)
	}
	return m, err
}

// UpdateMovie applies p to movie id and returns the stored result.
func (s *CatalogService) UpdateMovie(ctx context.Context, id uint64, p MoviePatch) (*model.Movie, error) {
	m, err := s.Movie(ctx, id)
	if err != nil {
		return nil, err
	}

	required := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"title", p.Title, &m.Title},
		{"genre", p.Genre, &m.Genre},
		{"director", p.Director, &m.Director},
		{"description", p.Description, &m.Description},
		{"language", p.Language, &m.Language},
		{"country", p.Country, &m.Country},
	}
	for _, f := range required {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if v == "" {
			return nil, validationError("%s is required.", f.name)
		}
		*f.dst = v
	}
	optional := []struct {
		src *string
		dst *sql.NullString
	}{
		{p.AdditionalGenres, &m.AdditionalGenres},
		{p.Cast, &m.Cast},
		{p.Rating, &m.Certification},
		{p.Poster, &m.PosterURL},
		{p.Trailer, &m.TrailerURL},
	}
	for _, f := range optional {
		if f.src != nil {
			*f.dst = nullString(strings.TrimSpace(*f.src))
		}
	}
	if v := present(p.ReleaseYear); v != "" {
		if m.ReleaseDate, err = parseReleaseYear(v); err != nil {
			return nil, err
		}
	}
	if v := present(p.Duration); v != "" {
		if m.Duration, err = parseDuration(v); err != nil {
			return nil, err
		}
	}
	if v := present(p.IMDbRating); v != "" {
		if m.Score, err = parseScore(v); err != nil {
			return nil, err
		}
	}

	if p.Title != nil {
		taken, err := s.movies.TitleExists(ctx, m.Title, m.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, titleConflict(m.Title)
		}
	}
	if err := s.movies.Update(ctx, m); err != nil {
		switch {
		case errors.Is(err, repository.ErrTitleExists):
			return nil, titleConflict(m.Title)
		case errors.Is(err, repository.ErrMovieNotFound):
			return nil, notFoundError(MsgMovieMissing)
		}
		return nil, err
	}
	emit(ctx, s.events, queue.Event{Type: queue.MovieUpdated, MovieID: m.ID, Title: m.Title})
	return m, nil
}

// DeleteMovie removes movie id together with its reviews in one
// transaction and returns the deleted movie.
func (s *CatalogService) DeleteMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := s.Movie(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := s.movies.DeleteWithReviews(ctx, id)
	if errors.Is(err, repository.ErrMovieNotFound) {
		return nil, notFoundError(MsgMovieMissing)
	}
	if err != nil {
		return nil, err
	}
	emit(ctx, s.events, queue.Event{Type: queue.MovieDeleted, MovieID: id, Title: m.Title,
		Detail: strconv.FormatInt(removed, 10) + " reviews removed"})
	return m, nil
}

// Movies lists the catalog, newest first.
func (s *CatalogService) Movies(ctx context.Context) ([]model.Movie, error) {
	return s.movies.ListAll(ctx)
}

func titleConflict(title string) *Error {
	return conflictError("A movie with the title \"%s\" already exists.", title)
}

func trimMovieInput(in *MovieInput) {
	for _, f := range []*string{&in.Title, &in.Genre, &in.AdditionalGenres, &in.Director, &in.Cast,
		&in.Rating, &in.Description, &in.Poster, &in.Trailer, &in.Language, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
	in.ReleaseYear = FlexString(in.ReleaseYear.String())
}

func present(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseReleaseYear turns a year into January 1 of that year.
func parseReleaseYear(v string) (time.Time, error) {
	year, err := strconv.Atoi(v)
	if err != nil || year < 1 || year > 9999 {
		return time.Time{}, validationError("releaseYear must be a valid year.")
	}
	return model.ReleaseDateForYear(year), nil
}

func parseDuration(v string) (sql.NullInt64, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return sql.NullInt64{}, validationError("duration must be a whole number of minutes.")
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}, nil
}

func parseScore(v string) (sql.NullFloat64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 10 {
		return sql.NullFloat64{}, validationError("imdbRating must be a number between 0 and 10.")
	}
	return sql.NullFloat64{Float64: math.Round(f*10) / 10, Valid: true}, nil
}
