package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
	"github.com/ayoisaiah/studyblocks/store"
)

var (
	ErrUnauthorized = &apperr.Error{
		Message: "not logged in: run the login command first",
	}

	ErrInvalidRequest = &apperr.Error{
		Message: "the server rejected the request",
	}

	ErrUnreachable = &apperr.Error{
		Message: "unable to reach the record server at %s",
	}

	errDecodeResponse = &apperr.Error{
		Message: "unexpected response from the record server",
	}

	errServer = &apperr.Error{
		Message: "the record server failed to process the request",
	}
)

// APIError is a non-success response from the record server. It unwraps to
// the matching store or client sentinel so callers can use errors.Is.
type APIError struct {
	Message string
	Status  int
}

func newAPIError(status int, body []byte) *APIError {
	var e struct {
		Error string `json:"error"`
	}

	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		msg = e.Error
	}

	return &APIError{Status: status, Message: msg}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return store.ErrForbidden
	case http.StatusNotFound:
		return store.ErrNotFound
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		switch {
		case strings.EqualFold(e.Message, store.ErrUsernameTaken.Message):
			return store.ErrUsernameTaken
		case strings.EqualFold(e.Message, store.ErrEmailTaken.Message):
			return store.ErrEmailTaken
		case strings.EqualFold(e.Message, store.ErrSessionCompleted.Message):
			return store.ErrSessionCompleted
		}

		return ErrInvalidRequest
	}

	return errServer
}
