package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/osutil"
	"github.com/ayoisaiah/studyblocks/stats"
)

const (
	sessionColumns = "id, user_id, subject, goal, total_minutes, completed, created_at"
	blockColumns   = "id, study_session_id, block_type, duration_minutes, completed, started_at, ended_at"
)

// SQLite is a Store backed by a sqlite database.
type SQLite struct {
	db   *sql.DB
	opts options
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// NewSQLite opens or creates the sqlite database at path and applies any
// pending migrations.
func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return nil, eris.Wrap(err, "failed to create database directory")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open database: %s", path)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "failed to ping database")
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{
		db:   db,
		opts: newOptions(opts),
	}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) now() time.Time {
	return s.opts.now().UTC()
}

func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "failed to commit transaction")
	}

	return nil
}

func (s *SQLite) CreateUser(ctx context.Context, u *models.User) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int

		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE username = ?", u.Username,
		).Scan(&count)
		if err != nil {
			return eris.Wrap(err, "failed to query users")
		}

		if count > 0 {
			return ErrUsernameTaken
		}

		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE email = ?", u.Email,
		).Scan(&count)
		if err != nil {
			return eris.Wrap(err, "failed to query users")
		}

		if count > 0 {
			return ErrEmailTaken
		}

		created := s.now()

		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			u.Username, u.Email, u.PasswordHash, created,
		)
		if err != nil {
			return eris.Wrap(err, "failed to insert user")
		}

		id, err := result.LastInsertId()
		if err != nil {
			return eris.Wrap(err, "failed to get last insert id")
		}

		u.ID = int(id)
		u.CreatedAt = created

		return nil
	})
}

func (s *SQLite) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.queryUser(ctx, "id = ?", id)
}

func (s *SQLite) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	return s.queryUser(ctx, "username = ?", username)
}

func (s *SQLite) queryUser(ctx context.Context, where string, arg any) (*models.User, error) {
	u := &models.User{}

	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound.Fmt("user")
	}

	if err != nil {
		return nil, eris.Wrap(err, "failed to query user")
	}

	return u, nil
}

func (s *SQLite) SaveToken(ctx context.Context, token string, userID int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)",
		token, userID, s.now(),
	)
	if err != nil {
		return eris.Wrap(err, "failed to save token")
	}

	return nil
}

func (s *SQLite) TokenUser(ctx context.Context, token string) (int, error) {
	var id int

	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM tokens WHERE token = ?", token,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound.Fmt("token")
	}

	if err != nil {
		return 0, eris.Wrap(err, "failed to query token")
	}

	return id, nil
}

func (s *SQLite) DeleteToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tokens WHERE token = ?", token); err != nil {
		return eris.Wrap(err, "failed to delete token")
	}

	return nil
}

func (s *SQLite) ListSessions(ctx context.Context, userID int) ([]models.StudySession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.subject, s.goal, s.total_minutes, s.completed, s.created_at,
			(SELECT COUNT(*) FROM pomodoro_blocks b WHERE b.study_session_id = s.id)
		FROM study_sessions s
		WHERE s.user_id = ?
		ORDER BY s.id`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query sessions")
	}
	defer rows.Close()

	sessions := []models.StudySession{}

	for rows.Next() {
		var sess models.StudySession

		err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.Subject,
			&sess.Goal,
			&sess.TotalMinutes,
			&sess.Completed,
			&sess.CreatedAt,
			&sess.BlockCount,
		)
		if err != nil {
			return nil, eris.Wrap(err, "failed to scan session")
		}

		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate sessions")
	}

	return sessions, nil
}

func (s *SQLite) GetSession(ctx context.Context, userID, id int) (*models.StudySession, error) {
	var sess *models.StudySession

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error

		sess, err = sessionWithBlocks(ctx, tx, userID, id)

		return err
	})

	return sess, err
}

func (s *SQLite) CreateSession(ctx context.Context, sess *models.StudySession) error {
	created := s.now()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO study_sessions (user_id, subject, goal, created_at) VALUES (?, ?, ?, ?)",
		sess.UserID, sess.Subject, sess.Goal, created,
	)
	if err != nil {
		return eris.Wrap(err, "failed to insert session")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "failed to get last insert id")
	}

	*sess = models.StudySession{
		ID:        int(id),
		UserID:    sess.UserID,
		Subject:   sess.Subject,
		Goal:      sess.Goal,
		CreatedAt: created,
	}

	return nil
}

func (s *SQLite) UpdateSession(
	ctx context.Context,
	userID, id int,
	update models.SessionUpdate,
) (*models.StudySession, error) {
	var sess *models.StudySession

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := ownedSession(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if update.Subject != nil {
			cur.Subject = *update.Subject
		}

		if update.Goal != nil {
			cur.Goal = *update.Goal
		}

		if update.Completed != nil {
			cur.Completed = *update.Completed
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE study_sessions SET subject = ?, goal = ?, completed = ? WHERE id = ?",
			cur.Subject, cur.Goal, cur.Completed, id,
		)
		if err != nil {
			return eris.Wrap(err, "failed to update session")
		}

		sess, err = sessionWithBlocks(ctx, tx, userID, id)

		return err
	})

	return sess, err
}

func (s *SQLite) DeleteSession(ctx context.Context, userID, id int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := ownedSession(ctx, tx, userID, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM pomodoro_blocks WHERE study_session_id = ?", id,
		); err != nil {
			return eris.Wrap(err, "failed to delete session blocks")
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM study_sessions WHERE id = ?", id); err != nil {
			return eris.Wrap(err, "failed to delete session")
		}

		return nil
	})
}

func (s *SQLite) ListBlocks(
	ctx context.Context,
	userID, sessionID int,
) ([]models.PomodoroBlock, error) {
	var blocks []models.PomodoroBlock

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := ownedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}

		var err error
		blocks, err = queryBlocks(ctx, tx, sessionID)

		return err
	})

	return blocks, err
}

func (s *SQLite) CreateBlock(ctx context.Context, userID int, b *models.PomodoroBlock) error {
	if _, err := models.ParseBlockType(string(b.Type)); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		sess, err := ownedSession(ctx, tx, userID, b.SessionID)
		if err != nil {
			return err
		}

		if sess.Completed {
			return ErrSessionCompleted
		}

		started := s.now()

		result, err := tx.ExecContext(ctx,
			`INSERT INTO pomodoro_blocks
				(study_session_id, block_type, duration_minutes, completed, started_at)
			VALUES (?, ?, ?, 0, ?)`,
			b.SessionID, string(b.Type), b.DurationMinutes, started,
		)
		if err != nil {
			return eris.Wrap(err, "failed to insert block")
		}

		id, err := result.LastInsertId()
		if err != nil {
			return eris.Wrap(err, "failed to get last insert id")
		}

		b.ID = int(id)
		b.Completed = false
		b.StartedAt = &started
		b.EndedAt = nil

		return nil
	})
}

func (s *SQLite) CompleteBlock(
	ctx context.Context,
	userID, blockID int,
) (*models.PomodoroBlock, error) {
	var b *models.PomodoroBlock

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error

		b, err = ownedBlock(ctx, tx, userID, blockID)
		if err != nil {
			return err
		}

		if b.Completed {
			return nil
		}

		ended := s.now()

		_, err = tx.ExecContext(ctx,
			"UPDATE pomodoro_blocks SET completed = 1, ended_at = ? WHERE id = ?",
			ended, blockID,
		)
		if err != nil {
			return eris.Wrap(err, "failed to complete block")
		}

		b.Completed = true
		b.EndedAt = &ended

		return recomputeSessionTotal(ctx, tx, b.SessionID)
	})

	return b, err
}

func (s *SQLite) DeleteBlock(ctx context.Context, userID, blockID int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := ownedBlock(ctx, tx, userID, blockID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM pomodoro_blocks WHERE id = ?", blockID); err != nil {
			return eris.Wrap(err, "failed to delete block")
		}

		return recomputeSessionTotal(ctx, tx, b.SessionID)
	})
}

func ownedSession(ctx context.Context, q querier, userID, id int) (*models.StudySession, error) {
	sess, err := scanSession(q.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM study_sessions WHERE id = ? AND user_id = ?",
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound.Fmt("study session")
	}

	if err != nil {
		return nil, eris.Wrap(err, "failed to query session")
	}

	return sess, nil
}

func sessionWithBlocks(
	ctx context.Context,
	q querier,
	userID, id int,
) (*models.StudySession, error) {
	sess, err := ownedSession(ctx, q, userID, id)
	if err != nil {
		return nil, err
	}

	sess.Blocks, err = queryBlocks(ctx, q, id)
	if err != nil {
		return nil, err
	}

	sess.BlockCount = len(sess.Blocks)

	return sess, nil
}

// ownedBlock loads a block and checks that its session belongs to userID.
func ownedBlock(ctx context.Context, q querier, userID, blockID int) (*models.PomodoroBlock, error) {
	var owner int

	row := q.QueryRowContext(ctx, `
		SELECT b.id, b.study_session_id, b.block_type, b.duration_minutes,
			b.completed, b.started_at, b.ended_at, s.user_id
		FROM pomodoro_blocks b
		JOIN study_sessions s ON s.id = b.study_session_id
		WHERE b.id = ?`,
		blockID,
	)

	b, err := scanBlock(row, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound.Fmt("pomodoro block")
	}

	if err != nil {
		return nil, eris.Wrap(err, "failed to query block")
	}

	if owner != userID {
		return nil, ErrForbidden
	}

	return b, nil
}

func queryBlocks(ctx context.Context, q querier, sessionID int) ([]models.PomodoroBlock, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+blockColumns+" FROM pomodoro_blocks WHERE study_session_id = ? ORDER BY id",
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "failed to query blocks")
	}
	defer rows.Close()

	blocks := []models.PomodoroBlock{}

	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, eris.Wrap(err, "failed to scan block")
		}

		blocks = append(blocks, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "failed to iterate blocks")
	}

	return blocks, nil
}

// recomputeSessionTotal derives the session's total minutes from its blocks.
func recomputeSessionTotal(ctx context.Context, q querier, sessionID int) error {
	blocks, err := queryBlocks(ctx, q, sessionID)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		"UPDATE study_sessions SET total_minutes = ? WHERE id = ?",
		stats.TotalMinutes(blocks), sessionID,
	)
	if err != nil {
		return eris.Wrap(err, "failed to update session total")
	}

	return nil
}

func scanSession(r rowScanner) (*models.StudySession, error) {
	sess := &models.StudySession{}

	err := r.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Subject,
		&sess.Goal,
		&sess.TotalMinutes,
		&sess.Completed,
		&sess.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

func scanBlock(r rowScanner, extra ...any) (*models.PomodoroBlock, error) {
	var (
		b         models.PomodoroBlock
		blockType string
		started   sql.NullTime
		ended     sql.NullTime
	)

	dest := append([]any{
		&b.ID,
		&b.SessionID,
		&blockType,
		&b.DurationMinutes,
		&b.Completed,
		&started,
		&ended,
	}, extra...)

	if err := r.Scan(dest...); err != nil {
		return nil, err
	}

	b.Type = models.BlockType(blockType)

	if started.Valid {
		t := started.Time.UTC()
		b.StartedAt = &t
	}

	if ended.Valid {
		t := ended.Time.UTC()
		b.EndedAt = &t
	}

	return &b, nil
}
