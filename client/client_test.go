package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/studyblocks/block"
	"github.com/ayoisaiah/studyblocks/client"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/testutil"
	"github.com/ayoisaiah/studyblocks/server"
	"github.com/ayoisaiah/studyblocks/store"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "studyblocks.sqlite"))
	require.NoError(t, err)

	srv := server.New(st, config.BlocksConfig{WorkMinutes: 25, BreakMinutes: 5})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})

	return ts
}

func registered(t *testing.T, ts *httptest.Server, name string) *client.Client {
	t.Helper()

	c := client.New(ts.URL, client.WithTimeout(5*time.Second))

	auth, err := c.Register(context.Background(), name, name+"@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)
	assert.Equal(t, auth.Token, c.Token())

	return c
}

func TestAuthRoundTrip(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	c := registered(t, ts, "ada")

	u, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())

	_, err = c.CurrentUser(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = c.Login(ctx, "ada", "wrong")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = c.Login(ctx, "ada", "hunter22")
	require.NoError(t, err)

	_, err = c.Register(ctx, "ada", "other@example.com", "x")
	assert.ErrorIs(t, err, store.ErrUsernameTaken)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestSessionsAndBlocks(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	ada := registered(t, ts, "ada")
	grace := registered(t, ts, "grace")

	sess, err := ada.CreateSession(ctx, "Linear algebra", "eigenvalues")
	require.NoError(t, err)

	_, err = ada.CreateSession(ctx, "", "")
	assert.ErrorIs(t, err, client.ErrInvalidRequest)

	b, err := ada.CreateBlock(ctx, sess.ID, models.Work, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, b.DurationMinutes)

	custom, err := ada.CreateBlock(ctx, sess.ID, models.Break, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, custom.DurationMinutes)

	_, err = grace.CompleteBlock(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrForbidden)

	_, err = grace.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	done, err := ada.CompleteBlock(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	got, err := ada.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.TotalMinutes)
	assert.Len(t, got.Blocks, 2)

	list, err := ada.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].BlockCount)

	blocks, err := ada.ListBlocks(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, blocks, 2)

	require.NoError(t, ada.DeleteBlock(ctx, custom.ID))

	marked, err := ada.MarkSessionComplete(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, marked.Completed)

	_, err = ada.CreateBlock(ctx, sess.ID, models.Work, 0)
	assert.ErrorIs(t, err, store.ErrSessionCompleted)

	subject := "Abstract algebra"
	updated, err := ada.UpdateSession(ctx, sess.ID, models.SessionUpdate{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, subject, updated.Subject)
	assert.True(t, updated.Completed)

	require.NoError(t, ada.DeleteSession(ctx, sess.ID))

	_, err = ada.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUnreachableServer(t *testing.T) {
	ts := newServer(t)
	url := ts.URL
	ts.Close()

	c := client.New(url, client.WithTimeout(time.Second))

	_, err := c.ListSessions(context.Background())
	assert.ErrorIs(t, err, client.ErrUnreachable)
}

func TestManagerAgainstServer(t *testing.T) {
	ts := newServer(t)
	ctx := context.Background()

	ada := registered(t, ts, "ada")

	sess, err := ada.CreateSession(ctx, "Linear algebra", "")
	require.NoError(t, err)

	sched := testutil.NewManualScheduler()
	m := block.New(ada, sess.ID,
		block.WithScheduler(sched),
		block.WithDurations(config.BlocksConfig{WorkMinutes: 25, BreakMinutes: 5}),
	)

	require.NoError(t, m.Load(ctx))
	require.NoError(t, m.StartBlock(ctx, models.Work))

	sched.Tick(1500)

	snap := m.Snapshot()
	require.NoError(t, snap.Err)
	assert.Equal(t, block.Idle, snap.State)
	assert.Equal(t, 25, snap.Summary.TotalMinutes)
	assert.Equal(t, 1, snap.Summary.CompletedWorkBlocks)

	require.NoError(t, m.StartBlock(ctx, models.Break))
	sched.Tick(10)
	require.NoError(t, m.Pause())
	require.NoError(t, m.Resume())
	require.NoError(t, m.Cancel())

	got, err := ada.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 2)
	assert.True(t, got.Blocks[0].Completed)
	assert.Equal(t, models.Break, got.Blocks[1].Type)
	assert.False(t, got.Blocks[1].Completed)
	assert.Equal(t, 25, got.TotalMinutes)
}
