package main

import (
	"streamflix/proj/internal/domain/models"
)

type loginForm struct {
	Email    string `schema:"email" validate:"required,email"`
	Password string `schema:"password" validate:"required"`
}

type registerForm struct {
	Email    string `schema:"email" validate:"required,email"`
	Password string `schema:"password" validate:"required"`
	Confirm  string `schema:"confirm" validate:"required,eqfield=Password"`
}

// movieForm backs both the add and the edit modal.
type movieForm struct {
	Title       string `schema:"title" validate:"notblank"`
	Director    string `schema:"director" validate:"notblank"`
	Year        int    `schema:"year" validate:"required,min=1888,notfutureyear"`
	Description string `schema:"description" validate:"notblank"`
	Genre       string `schema:"genre" validate:"notblank"`
}

func movieFormFrom(m *models.Movie) movieForm {
	return movieForm{
		Title:       m.Title,
		Director:    m.Director,
		Year:        int(m.Year),
		Description: m.Description,
		Genre:       m.Genre,
	}
}

func (f movieForm) Input() models.MovieInput {
	return models.MovieInput{
		Title:       f.Title,
		Director:    f.Director,
		Year:        f.Year,
		Description: f.Description,
		Genre:       f.Genre,
	}
}

type commentForm struct {
	Comment string `schema:"comment"`
}
