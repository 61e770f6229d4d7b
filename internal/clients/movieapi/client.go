package movieapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"streamflix/proj/internal/domain/models"
)

const (
	loginPath       = "/users/login"
	registerPath    = "/users/register"
	detailsPath     = "/users/details"
	listMoviesPath  = "/movies/getMovies"
	getMoviePath    = "/movies/getMovie/"
	addMoviePath    = "/movies/addMovie"
	updateMoviePath = "/movies/updateMovie/"
	addCommentPath  = "/movies/addComment/"

	maxBodyBytes = 1 << 20
	// The list endpoint returns the whole catalog with embedded comments.
	maxListBodyBytes = 32 << 20
)

// Client is the typed request layer over the movie REST API. Every call goes through
// do, which attaches the bearer token and normalizes failures to *Error.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func New(log *slog.Logger, baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		log:        log,
	}
}

type LoginResponse struct {
	Access  string `json:"access"`
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type UserDetails struct {
	User *DetailsUser `json:"user"`
}

type DetailsUser struct {
	ID      string `json:"_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "movieapi.Client.Login", http.MethodPost, loginPath, "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*RegisterResponse, error) {
	var resp RegisterResponse
	body := map[string]any{"email": email, "password": password, "isAdmin": false}
	if err := c.do(ctx, "movieapi.Client.Register", http.MethodPost, registerPath, "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserDetails is the "who am I" call for token.
func (c *Client) UserDetails(ctx context.Context, token string) (*UserDetails, error) {
	var resp UserDetails
	if err := c.do(ctx, "movieapi.Client.UserDetails", http.MethodGet, detailsPath, token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListMovies returns the whole collection in insertion order. A body without a movies
// array yields an empty list.
func (c *Client) ListMovies(ctx context.Context, token string) ([]models.Movie, error) {
	var resp struct {
		Movies []models.Movie `json:"movies"`
	}
	err := c.doLimit(ctx, "movieapi.Client.ListMovies", http.MethodGet, listMoviesPath, token, nil, &resp, maxListBodyBytes)
	if err != nil {
		return nil, err
	}
	if resp.Movies == nil {
		return []models.Movie{}, nil
	}
	return resp.Movies, nil
}

func (c *Client) GetMovie(ctx context.Context, token, id string) (*models.Movie, error) {
	var movie models.Movie
	path := getMoviePath + url.PathEscape(id)
	if err := c.do(ctx, "movieapi.Client.GetMovie", http.MethodGet, path, token, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) AddMovie(ctx context.Context, token string, input models.MovieInput) error {
	return c.do(ctx, "movieapi.Client.AddMovie", http.MethodPost, addMoviePath, token, input, nil)
}

func (c *Client) UpdateMovie(ctx context.Context, token, id string, input models.MovieInput) error {
	path := updateMoviePath + url.PathEscape(id)
	return c.do(ctx, "movieapi.Client.UpdateMovie", http.MethodPatch, path, token, input, nil)
}

func (c *Client) AddComment(ctx context.Context, token, id, comment string) error {
	path := addCommentPath + url.PathEscape(id)
	body := map[string]string{"comment": comment}
	return c.do(ctx, "movieapi.Client.AddComment", http.MethodPatch, path, token, body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, dst any) error {
	return c.doLimit(ctx, op, method, path, token, body, dst, maxBodyBytes)
}

func (c *Client) doLimit(ctx context.Context, op, method, path, token string, body, dst any, limit int64) error {
	log := c.log.With("op", op, "method", method, "path", path)

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &Error{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", "error", err)
		return &Error{Op: op, Network: true, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Op: op, Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			apiErr.Message = eb.Message
			apiErr.Reason = eb.Error
		}
		log.Info("api returned an error", "status", resp.StatusCode, "message", apiErr.Message, "reason", apiErr.Reason)
		return apiErr
	}

	if dst == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Error("malformed response body", "status", resp.StatusCode, "error", err)
		return &Error{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
