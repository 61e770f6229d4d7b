package services

import (
	"log/slog"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/services/auth"
	"streamflix/proj/internal/services/movies"
)

type Services struct {
	Auth   *auth.AuthService
	Movies *movies.MovieService
}

func New(log *slog.Logger, api *movieapi.Client) *Services {
	return &Services{
		Auth:   auth.New(log, api),
		Movies: movies.New(log, api),
	}
}
