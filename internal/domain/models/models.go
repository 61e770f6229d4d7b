package models

import "streamflix/proj/internal/domain/fields"

type Movie struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Director    string      `json:"director"`
	Year        fields.Year `json:"year"`
	Description string      `json:"description"`
	Genre       string      `json:"genre"`
	Comments    []Comment   `json:"comments"` // oldest first, as stored by the API
}

// NewestComments returns the comments in reverse chronological order without
// touching the movie's own slice.
func (m Movie) NewestComments() []Comment {
	out := make([]Comment, len(m.Comments))
	for i, c := range m.Comments {
		out[len(m.Comments)-1-i] = c
	}
	return out
}

type Comment struct {
	ID      string `json:"_id,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Comment string `json:"comment"`
}

// MovieInput is the body of the add and update movie requests.
type MovieInput struct {
	Title       string `json:"title"`
	Director    string `json:"director"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
}

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

var AnonymousUser = User{}

func (u User) IsAnonymous() bool {
	return u.ID == ""
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a one-shot message for the next rendered page. Blocking notices are shown
// as an alert banner, the rest as toasts.
type Notice struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking,omitempty"`
}

func Success(msg string) Notice {
	return Notice{Level: NoticeSuccess, Message: msg}
}

func Failure(msg string) Notice {
	return Notice{Level: NoticeError, Message: msg}
}

func Alert(msg string) Notice {
	return Notice{Level: NoticeError, Message: msg, Blocking: true}
}
