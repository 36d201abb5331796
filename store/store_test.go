package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/stats"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time {
	return fixedNow
}

// forEachDriver runs fn against a fresh database of every driver.
func forEachDriver(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	for _, driver := range []string{config.DriverBolt, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "studyblocks."+driver)

			s, err := Open(config.StorageConfig{Driver: driver}, path, WithClock(clock))
			require.NoError(t, err)

			t.Cleanup(func() {
				_ = s.Close()
			})

			fn(t, s)
		})
	}
}

func mustUser(t *testing.T, s Store, name string) *models.User {
	t.Helper()

	u := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash-" + name,
	}

	require.NoError(t, s.CreateUser(context.Background(), u))

	return u
}

func mustSession(t *testing.T, s Store, userID int, subject string) *models.StudySession {
	t.Helper()

	sess := &models.StudySession{UserID: userID, Subject: subject, Goal: "chapter 1"}
	require.NoError(t, s.CreateSession(context.Background(), sess))

	return sess
}

func mustBlock(
	t *testing.T,
	s Store,
	userID, sessionID int,
	bt models.BlockType,
	minutes int,
) *models.PomodoroBlock {
	t.Helper()

	b := &models.PomodoroBlock{SessionID: sessionID, Type: bt, DurationMinutes: minutes}
	require.NoError(t, s.CreateBlock(context.Background(), userID, b))

	return b
}

func TestUsers(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		u := mustUser(t, s, "ada")
		assert.NotZero(t, u.ID)
		assert.True(t, u.CreatedAt.Equal(fixedNow))

		got, err := s.GetUserByName(ctx, "ada")
		require.NoError(t, err)

		if diff := cmp.Diff(u, got); diff != "" {
			t.Fatalf("GetUserByName mismatch (-want +got):\n%s", diff)
		}

		got, err = s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash-ada", got.PasswordHash)

		err = s.CreateUser(ctx, &models.User{Username: "ada", Email: "other@example.com"})
		assert.ErrorIs(t, err, ErrUsernameTaken)

		err = s.CreateUser(ctx, &models.User{Username: "grace", Email: "ada@example.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)

		_, err = s.GetUserByName(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestTokens(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		u := mustUser(t, s, "ada")

		require.NoError(t, s.SaveToken(ctx, "secret", u.ID))

		id, err := s.TokenUser(ctx, "secret")
		require.NoError(t, err)
		assert.Equal(t, u.ID, id)

		require.NoError(t, s.DeleteToken(ctx, "secret"))

		_, err = s.TokenUser(ctx, "secret")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSessions(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		grace := mustUser(t, s, "grace")

		algebra := mustSession(t, s, ada.ID, "Linear algebra")
		mustSession(t, s, ada.ID, "Compilers")
		mustSession(t, s, grace.ID, "Navy history")

		assert.NotZero(t, algebra.ID)
		assert.False(t, algebra.Completed)
		assert.Zero(t, algebra.TotalMinutes)

		mustBlock(t, s, ada.ID, algebra.ID, models.Work, 25)
		mustBlock(t, s, ada.ID, algebra.ID, models.Break, 5)

		list, err := s.ListSessions(ctx, ada.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Linear algebra", list[0].Subject)
		assert.Equal(t, 2, list[0].BlockCount)
		assert.Equal(t, 0, list[1].BlockCount)
		assert.Empty(t, list[0].Blocks)

		got, err := s.GetSession(ctx, ada.ID, algebra.ID)
		require.NoError(t, err)
		require.Len(t, got.Blocks, 2)
		assert.Equal(t, models.Work, got.Blocks[0].Type)
		assert.Equal(t, models.Break, got.Blocks[1].Type)

		_, err = s.GetSession(ctx, grace.ID, algebra.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.GetSession(ctx, ada.ID, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateSession(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		sess := mustSession(t, s, ada.ID, "Linear algebra")

		subject := "Abstract algebra"
		done := true

		got, err := s.UpdateSession(ctx, ada.ID, sess.ID, models.SessionUpdate{
			Subject:   &subject,
			Completed: &done,
		})
		require.NoError(t, err)
		assert.Equal(t, subject, got.Subject)
		assert.Equal(t, "chapter 1", got.Goal)
		assert.True(t, got.Completed)

		_, err = s.UpdateSession(ctx, ada.ID+1, sess.ID, models.SessionUpdate{Subject: &subject})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteSessionCascades(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		sess := mustSession(t, s, ada.ID, "Linear algebra")
		b := mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)

		require.NoError(t, s.DeleteSession(ctx, ada.ID, sess.ID))

		_, err := s.GetSession(ctx, ada.ID, sess.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.CompleteBlock(ctx, ada.ID, b.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, s.DeleteSession(ctx, ada.ID, sess.ID), ErrNotFound)
	})
}

func TestCreateBlock(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		grace := mustUser(t, s, "grace")
		sess := mustSession(t, s, ada.ID, "Linear algebra")

		b := &models.PomodoroBlock{
			SessionID:       sess.ID,
			Type:            models.Work,
			DurationMinutes: 25,
			Completed:       true,
		}
		require.NoError(t, s.CreateBlock(ctx, ada.ID, b))

		assert.NotZero(t, b.ID)
		assert.False(t, b.Completed)
		require.NotNil(t, b.StartedAt)
		assert.True(t, b.StartedAt.Equal(fixedNow))
		assert.Nil(t, b.EndedAt)

		err := s.CreateBlock(ctx, grace.ID, &models.PomodoroBlock{
			SessionID: sess.ID, Type: models.Work, DurationMinutes: 25,
		})
		assert.ErrorIs(t, err, ErrNotFound)

		err = s.CreateBlock(ctx, ada.ID, &models.PomodoroBlock{
			SessionID: sess.ID, Type: "nap", DurationMinutes: 25,
		})
		assert.Error(t, err)

		blocks, err := s.ListBlocks(ctx, ada.ID, sess.ID)
		require.NoError(t, err)
		require.Len(t, blocks, 1)

		if diff := cmp.Diff(*b, blocks[0]); diff != "" {
			t.Fatalf("ListBlocks mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCreateBlockOnCompletedSession(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		sess := mustSession(t, s, ada.ID, "Linear algebra")
		mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)

		done := true

		_, err := s.UpdateSession(ctx, ada.ID, sess.ID, models.SessionUpdate{Completed: &done})
		require.NoError(t, err)

		err = s.CreateBlock(ctx, ada.ID, &models.PomodoroBlock{
			SessionID: sess.ID, Type: models.Break, DurationMinutes: 5,
		})
		assert.ErrorIs(t, err, ErrSessionCompleted)

		blocks, err := s.ListBlocks(ctx, ada.ID, sess.ID)
		require.NoError(t, err)
		assert.Len(t, blocks, 1)
	})
}

func TestCompleteBlockRecomputesTotal(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		sess := mustSession(t, s, ada.ID, "Linear algebra")

		w1 := mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)
		br := mustBlock(t, s, ada.ID, sess.ID, models.Break, 5)
		mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)

		done, err := s.CompleteBlock(ctx, ada.ID, w1.ID)
		require.NoError(t, err)
		assert.True(t, done.Completed)
		require.NotNil(t, done.EndedAt)

		_, err = s.CompleteBlock(ctx, ada.ID, br.ID)
		require.NoError(t, err)

		again, err := s.CompleteBlock(ctx, ada.ID, w1.ID)
		require.NoError(t, err)
		assert.True(t, again.Completed)

		got, err := s.GetSession(ctx, ada.ID, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 30, got.TotalMinutes)
		assert.Equal(t, stats.TotalMinutes(got.Blocks), got.TotalMinutes)
		assert.False(t, got.Completed)
		assert.False(t, got.Blocks[2].Completed)
	})
}

func TestBlockOwnership(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		grace := mustUser(t, s, "grace")
		sess := mustSession(t, s, ada.ID, "Linear algebra")
		b := mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)

		_, err := s.CompleteBlock(ctx, grace.ID, b.ID)
		assert.ErrorIs(t, err, ErrForbidden)

		assert.ErrorIs(t, s.DeleteBlock(ctx, grace.ID, b.ID), ErrForbidden)

		_, err = s.CompleteBlock(ctx, ada.ID, 9999)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.ListBlocks(ctx, grace.ID, sess.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteBlockRecomputesTotal(t *testing.T) {
	forEachDriver(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		ada := mustUser(t, s, "ada")
		sess := mustSession(t, s, ada.ID, "Linear algebra")

		w1 := mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)
		w2 := mustBlock(t, s, ada.ID, sess.ID, models.Work, 25)

		for _, b := range []*models.PomodoroBlock{w1, w2} {
			_, err := s.CompleteBlock(ctx, ada.ID, b.ID)
			require.NoError(t, err)
		}

		require.NoError(t, s.DeleteBlock(ctx, ada.ID, w1.ID))

		got, err := s.GetSession(ctx, ada.ID, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, 25, got.TotalMinutes)
		require.Len(t, got.Blocks, 1)
		assert.Equal(t, w2.ID, got.Blocks[0].ID)

		assert.ErrorIs(t, s.DeleteBlock(ctx, ada.ID, w1.ID), ErrNotFound)
	})
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "postgres"}, filepath.Join(t.TempDir(), "db"))
	assert.Error(t, err)
}

func TestBoltSecondOpenIsRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyblocks.db")

	first, err := NewBolt(path)
	require.NoError(t, err)

	defer first.Close()

	_, err = NewBolt(path)
	assert.ErrorIs(t, err, errDatabaseLocked)
}
