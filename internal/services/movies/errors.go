package movies

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrEmptyComment  = errors.New("comment must not be empty")
)
