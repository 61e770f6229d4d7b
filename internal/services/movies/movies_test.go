package movies

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/domain/models"
	"streamflix/proj/internal/lib/logger"
	tu "streamflix/proj/internal/testing"
)

func newTestService(t *testing.T) (*MovieService, *tu.FakeAPI, *tu.FakeUser) {
	t.Helper()
	api := tu.NewFakeAPI()
	admin := api.AddUser("admin@mail.com", "password1", true)
	srv := api.Serve(t)
	client := movieapi.New(logger.Discard(), srv.URL, srv.Client())
	return New(logger.Discard(), client), api, admin
}

func TestList(t *testing.T) {
	svc, api, admin := newTestService(t)
	api.AddMovies(3)

	movies, err := svc.List(context.Background(), admin.Token)
	require.NoError(t, err)
	require.Len(t, movies, 3)
	assert.Equal(t, "Movie 1", movies[0].Title)

	api.Fail(tu.RouteListMovies, http.StatusInternalServerError)
	_, err = svc.List(context.Background(), admin.Token)
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	svc, api, admin := newTestService(t)
	api.AddMovies(1)
	id := api.Movies()[0].ID

	movie, err := svc.Get(context.Background(), admin.Token, id)
	require.NoError(t, err)
	assert.Equal(t, id, movie.ID)

	_, err = svc.Get(context.Background(), admin.Token, "missing")
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestCreateAndUpdate(t *testing.T) {
	svc, api, admin := newTestService(t)
	ctx := context.Background()
	input := models.MovieInput{Title: "Alien", Director: "Scott", Year: 1979, Description: "In space", Genre: "Horror"}

	require.NoError(t, svc.Create(ctx, admin.Token, input))
	require.Len(t, api.Movies(), 1)
	id := api.Movies()[0].ID

	input.Genre = "Sci-Fi"
	require.NoError(t, svc.Update(ctx, admin.Token, id, input))
	m, _ := api.Movie(id)
	assert.Equal(t, "Sci-Fi", m.Genre)

	assert.ErrorIs(t, svc.Update(ctx, admin.Token, "missing", input), ErrMovieNotFound)
}

func TestCreateForbiddenForUsers(t *testing.T) {
	svc, api, _ := newTestService(t)
	user := api.AddUser("user@mail.com", "password1", false)
	err := svc.Create(context.Background(), user.Token, models.MovieInput{Title: "x"})
	assert.ErrorIs(t, err, movieapi.ErrUnauthorized)
	assert.Empty(t, api.Movies())
}

func TestAddComment(t *testing.T) {
	svc, api, admin := newTestService(t)
	api.AddMovies(1)
	id := api.Movies()[0].ID
	ctx := context.Background()

	t.Run("blank comment sends nothing", func(t *testing.T) {
		for _, c := range []string{"", "   ", "\n\t"} {
			assert.ErrorIs(t, svc.AddComment(ctx, admin.Token, id, c), ErrEmptyComment)
		}
		assert.Zero(t, api.Calls(tu.RouteComment))
		m, _ := api.Movie(id)
		assert.Empty(t, m.Comments)
	})
	t.Run("comment is appended", func(t *testing.T) {
		require.NoError(t, svc.AddComment(ctx, admin.Token, id, "Great movie!"))
		m, _ := api.Movie(id)
		require.Len(t, m.Comments, 1)
		assert.Equal(t, "Great movie!", m.Comments[0].Comment)
	})
	t.Run("missing movie", func(t *testing.T) {
		assert.ErrorIs(t, svc.AddComment(ctx, admin.Token, "missing", "hi"), ErrMovieNotFound)
	})
}
