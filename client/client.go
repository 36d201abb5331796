// Package client talks to the record server over HTTP. A Client satisfies
// block.RecordStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayoisaiah/studyblocks/internal/models"
)

const defaultTimeout = 10 * time.Second

// Auth is the result of a successful login or registration.
type Auth struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Client is an authenticated connection to the record server.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Token returns the bearer token of the client.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account and authenticates the client as that user.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Auth, error) {
	var auth Auth

	err := c.do(ctx, http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &auth)
	if err != nil {
		return nil, err
	}

	c.token = auth.Token

	return &auth, nil
}

// Login authenticates the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Auth, error) {
	var auth Auth

	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, &auth)
	if err != nil {
		return nil, err
	}

	c.token = auth.Token

	return &auth, nil
}

// Logout revokes the token of the client.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/logout", nil, nil); err != nil {
		return err
	}

	c.token = ""

	return nil
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User

	if err := c.do(ctx, http.MethodGet, "/check_session", nil, &u); err != nil {
		return nil, err
	}

	return &u, nil
}

// ListSessions returns the sessions of the user without their blocks.
func (c *Client) ListSessions(ctx context.Context) ([]models.StudySession, error) {
	var sessions []models.StudySession

	if err := c.do(ctx, http.MethodGet, "/study_sessions", nil, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetSession fetches a session together with its blocks.
func (c *Client) GetSession(ctx context.Context, sessionID int) (*models.StudySession, error) {
	var sess models.StudySession

	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/study_sessions/%d", sessionID), nil, &sess)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// CreateSession starts a new study session.
func (c *Client) CreateSession(ctx context.Context, subject, goal string) (*models.StudySession, error) {
	var sess models.StudySession

	err := c.do(ctx, http.MethodPost, "/study_sessions", map[string]string{
		"subject": subject,
		"goal":    goal,
	}, &sess)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// UpdateSession applies the non-nil fields of update to a session.
func (c *Client) UpdateSession(
	ctx context.Context,
	sessionID int,
	update models.SessionUpdate,
) (*models.StudySession, error) {
	var sess models.StudySession

	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/study_sessions/%d", sessionID), update, &sess)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// MarkSessionComplete sets the completed flag of a session.
func (c *Client) MarkSessionComplete(ctx context.Context, sessionID int) (*models.StudySession, error) {
	done := true

	return c.UpdateSession(ctx, sessionID, models.SessionUpdate{Completed: &done})
}

// DeleteSession removes a session and its blocks.
func (c *Client) DeleteSession(ctx context.Context, sessionID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/study_sessions/%d", sessionID), nil, nil)
}

// ListBlocks returns the blocks of a session in creation order.
func (c *Client) ListBlocks(ctx context.Context, sessionID int) ([]models.PomodoroBlock, error) {
	var blocks []models.PomodoroBlock

	err := c.do(
		ctx,
		http.MethodGet,
		fmt.Sprintf("/study_sessions/%d/pomodoro_blocks", sessionID),
		nil,
		&blocks,
	)
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// CreateBlock starts a block of the given type. A zero minutes value leaves
// the duration to the server.
func (c *Client) CreateBlock(
	ctx context.Context,
	sessionID int,
	blockType models.BlockType,
	minutes int,
) (*models.PomodoroBlock, error) {
	body := map[string]any{
		"block_type": blockType,
	}

	if minutes > 0 {
		body["duration_minutes"] = minutes
	}

	var b models.PomodoroBlock

	err := c.do(
		ctx,
		http.MethodPost,
		fmt.Sprintf("/study_sessions/%d/pomodoro_blocks", sessionID),
		body,
		&b,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CompleteBlock marks a block as completed.
func (c *Client) CompleteBlock(ctx context.Context, blockID int) (*models.PomodoroBlock, error) {
	var b models.PomodoroBlock

	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/pomodoro_blocks/%d/complete", blockID), nil, &b)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// DeleteBlock removes a single block.
func (c *Client) DeleteBlock(ctx context.Context, blockID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/pomodoro_blocks/%d", blockID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var r io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}

		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return ErrUnreachable.Fmt(c.baseURL).Wrap(err)
	}

	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= http.StatusBadRequest {
		return newAPIError(res.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errDecodeResponse.Wrap(err)
	}

	return nil
}
