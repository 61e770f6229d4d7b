package movies

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/domain/models"
)

type MoviesAPI interface {
	ListMovies(ctx context.Context, token string) ([]models.Movie, error)
	GetMovie(ctx context.Context, token, id string) (*models.Movie, error)
	AddMovie(ctx context.Context, token string, input models.MovieInput) error
	UpdateMovie(ctx context.Context, token, id string, input models.MovieInput) error
	AddComment(ctx context.Context, token, id, comment string) error
}

type MovieService struct {
	log *slog.Logger
	api MoviesAPI
}

func New(log *slog.Logger, api MoviesAPI) *MovieService {
	return &MovieService{
		log: log,
		api: api,
	}
}

// List returns the whole collection in insertion order.
func (s *MovieService) List(ctx context.Context, token string) ([]models.Movie, error) {
	const op = "movies.MovieService.List"
	log := s.log.With("op", op)
	movies, err := s.api.ListMovies(ctx, token)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}
	return movies, nil
}

func (s *MovieService) Get(ctx context.Context, token, id string) (*models.Movie, error) {
	const op = "movies.MovieService.Get"
	log := s.log.With("op", op, "id", id)
	movie, err := s.api.GetMovie(ctx, token, id)
	if err != nil {
		if errors.Is(err, movieapi.ErrNotFound) {
			log.Info("movie not found")
			return nil, ErrMovieNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return movie, nil
}

func (s *MovieService) Create(ctx context.Context, token string, input models.MovieInput) error {
	const op = "movies.MovieService.Create"
	log := s.log.With("op", op, "title", input.Title, "year", input.Year)
	if err := s.api.AddMovie(ctx, token, input); err != nil {
		log.Error(err.Error())
		return err
	}
	log.Info("movie added")
	return nil
}

func (s *MovieService) Update(ctx context.Context, token, id string, input models.MovieInput) error {
	const op = "movies.MovieService.Update"
	log := s.log.With("op", op, "id", id, "title", input.Title, "year", input.Year)
	if err := s.api.UpdateMovie(ctx, token, id, input); err != nil {
		if errors.Is(err, movieapi.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error(err.Error())
		return err
	}
	log.Info("movie updated")
	return nil
}

// AddComment posts comment as typed. Blank comments never reach the API.
func (s *MovieService) AddComment(ctx context.Context, token, id, comment string) error {
	const op = "movies.MovieService.AddComment"
	log := s.log.With("op", op, "id", id)
	if strings.TrimSpace(comment) == "" {
		return ErrEmptyComment
	}
	if err := s.api.AddComment(ctx, token, id, comment); err != nil {
		if errors.Is(err, movieapi.ErrNotFound) {
			log.Info("movie not found")
			return ErrMovieNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
