package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/osutil"
	"github.com/ayoisaiah/studyblocks/stats"
)

var (
	bucketUsers      = []byte("users")
	bucketUsernames  = []byte("usernames")
	bucketEmails     = []byte("emails")
	bucketTokens     = []byte("tokens")
	bucketSessions   = []byte("sessions")
	bucketBlocks     = []byte("blocks")
	bucketBlockIndex = []byte("block_index")
)

// userRecord is the stored form of a user. Unlike models.User it keeps the
// password hash.
type userRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	ID           int       `json:"id"`
}

type sessionRecord struct {
	CreatedAt    time.Time `json:"created_at"`
	Subject      string    `json:"subject"`
	Goal         string    `json:"goal"`
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	TotalMinutes int       `json:"total_minutes"`
	Completed    bool      `json:"completed"`
}

func (r *sessionRecord) model() *models.StudySession {
	return &models.StudySession{
		ID:           r.ID,
		UserID:       r.UserID,
		Subject:      r.Subject,
		Goal:         r.Goal,
		TotalMinutes: r.TotalMinutes,
		Completed:    r.Completed,
		CreatedAt:    r.CreatedAt,
	}
}

// Bolt is a Store backed by a bbolt database. Blocks live in a nested bucket
// per session, keyed by their big endian id, so that iteration yields them in
// creation order.
type Bolt struct {
	db   *bolt.DB
	opts options
}

// NewBolt opens or creates the bbolt database at path.
func NewBolt(path string, opts ...Option) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
		return nil, eris.Wrap(err, "failed to create database directory")
	}

	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) || errors.Is(err, bolt.ErrTimeout) {
			return nil, errDatabaseLocked
		}

		return nil, eris.Wrapf(err, "failed to open database: %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{
			bucketUsers,
			bucketUsernames,
			bucketEmails,
			bucketTokens,
			bucketSessions,
			bucketBlocks,
			bucketBlockIndex,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return eris.Wrapf(err, "failed to create bucket %s", name)
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{
		db:   db,
		opts: newOptions(opts),
	}, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) now() time.Time {
	return s.opts.now().UTC()
}

func (s *Bolt) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(fn)
}

func (s *Bolt) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.View(fn)
}

func (s *Bolt) CreateUser(ctx context.Context, u *models.User) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		if tx.Bucket(bucketUsernames).Get([]byte(u.Username)) != nil {
			return ErrUsernameTaken
		}

		if tx.Bucket(bucketEmails).Get([]byte(u.Email)) != nil {
			return ErrEmailTaken
		}

		users := tx.Bucket(bucketUsers)

		id, err := users.NextSequence()
		if err != nil {
			return eris.Wrap(err, "failed to allocate user id")
		}

		rec := userRecord{
			ID:           int(id),
			Username:     u.Username,
			Email:        u.Email,
			PasswordHash: u.PasswordHash,
			CreatedAt:    s.now(),
		}

		if err := putJSON(users, itob(rec.ID), &rec); err != nil {
			return err
		}

		if err := tx.Bucket(bucketUsernames).Put([]byte(rec.Username), itob(rec.ID)); err != nil {
			return eris.Wrap(err, "failed to index username")
		}

		if err := tx.Bucket(bucketEmails).Put([]byte(rec.Email), itob(rec.ID)); err != nil {
			return eris.Wrap(err, "failed to index email")
		}

		u.ID = rec.ID
		u.CreatedAt = rec.CreatedAt

		return nil
	})
}

func (s *Bolt) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u *models.User

	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		u, err = getUser(tx, id)

		return err
	})

	return u, err
}

func (s *Bolt) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	var u *models.User

	err := s.view(ctx, func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketUsernames).Get([]byte(username))
		if v == nil {
			return ErrNotFound.Fmt("user")
		}

		var err error
		u, err = getUser(tx, btoi(v))

		return err
	})

	return u, err
}

func (s *Bolt) SaveToken(ctx context.Context, token string, userID int) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketTokens).Put([]byte(token), itob(userID)); err != nil {
			return eris.Wrap(err, "failed to save token")
		}

		return nil
	})
}

func (s *Bolt) TokenUser(ctx context.Context, token string) (int, error) {
	var id int

	err := s.view(ctx, func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTokens).Get([]byte(token))
		if v == nil {
			return ErrNotFound.Fmt("token")
		}

		id = btoi(v)

		return nil
	})

	return id, err
}

func (s *Bolt) DeleteToken(ctx context.Context, token string) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketTokens).Delete([]byte(token)); err != nil {
			return eris.Wrap(err, "failed to delete token")
		}

		return nil
	})
}

func (s *Bolt) ListSessions(ctx context.Context, userID int) ([]models.StudySession, error) {
	sessions := []models.StudySession{}

	err := s.view(ctx, func(tx *bolt.Tx) error {
		blocks := tx.Bucket(bucketBlocks)

		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var rec sessionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return eris.Wrap(err, "failed to decode session")
			}

			if rec.UserID != userID {
				return nil
			}

			sess := rec.model()

			if b := blocks.Bucket(k); b != nil {
				_ = b.ForEach(func(_, _ []byte) error {
					sess.BlockCount++
					return nil
				})
			}

			sessions = append(sessions, *sess)

			return nil
		})
	})

	return sessions, err
}

func (s *Bolt) GetSession(ctx context.Context, userID, id int) (*models.StudySession, error) {
	var sess *models.StudySession

	err := s.view(ctx, func(tx *bolt.Tx) error {
		rec, err := getSession(tx, userID, id)
		if err != nil {
			return err
		}

		sess = rec.model()

		sess.Blocks, err = sessionBlocks(tx, id)
		sess.BlockCount = len(sess.Blocks)

		return err
	})

	return sess, err
}

func (s *Bolt) CreateSession(ctx context.Context, sess *models.StudySession) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		sessions := tx.Bucket(bucketSessions)

		id, err := sessions.NextSequence()
		if err != nil {
			return eris.Wrap(err, "failed to allocate session id")
		}

		rec := sessionRecord{
			ID:        int(id),
			UserID:    sess.UserID,
			Subject:   sess.Subject,
			Goal:      sess.Goal,
			CreatedAt: s.now(),
		}

		if err := putJSON(sessions, itob(rec.ID), &rec); err != nil {
			return err
		}

		*sess = *rec.model()

		return nil
	})
}

func (s *Bolt) UpdateSession(
	ctx context.Context,
	userID, id int,
	update models.SessionUpdate,
) (*models.StudySession, error) {
	var sess *models.StudySession

	err := s.update(ctx, func(tx *bolt.Tx) error {
		rec, err := getSession(tx, userID, id)
		if err != nil {
			return err
		}

		if update.Subject != nil {
			rec.Subject = *update.Subject
		}

		if update.Goal != nil {
			rec.Goal = *update.Goal
		}

		if update.Completed != nil {
			rec.Completed = *update.Completed
		}

		if err := putJSON(tx.Bucket(bucketSessions), itob(id), rec); err != nil {
			return err
		}

		sess = rec.model()

		sess.Blocks, err = sessionBlocks(tx, id)
		sess.BlockCount = len(sess.Blocks)

		return err
	})

	return sess, err
}

func (s *Bolt) DeleteSession(ctx context.Context, userID, id int) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		if _, err := getSession(tx, userID, id); err != nil {
			return err
		}

		blocks := tx.Bucket(bucketBlocks)
		index := tx.Bucket(bucketBlockIndex)

		if b := blocks.Bucket(itob(id)); b != nil {
			err := b.ForEach(func(k, _ []byte) error {
				return index.Delete(k)
			})
			if err != nil {
				return eris.Wrap(err, "failed to remove block index")
			}

			if err := blocks.DeleteBucket(itob(id)); err != nil {
				return eris.Wrap(err, "failed to delete session blocks")
			}
		}

		if err := tx.Bucket(bucketSessions).Delete(itob(id)); err != nil {
			return eris.Wrap(err, "failed to delete session")
		}

		return nil
	})
}

func (s *Bolt) ListBlocks(
	ctx context.Context,
	userID, sessionID int,
) ([]models.PomodoroBlock, error) {
	var blocks []models.PomodoroBlock

	err := s.view(ctx, func(tx *bolt.Tx) error {
		if _, err := getSession(tx, userID, sessionID); err != nil {
			return err
		}

		var err error
		blocks, err = sessionBlocks(tx, sessionID)

		return err
	})

	return blocks, err
}

func (s *Bolt) CreateBlock(ctx context.Context, userID int, b *models.PomodoroBlock) error {
	if _, err := models.ParseBlockType(string(b.Type)); err != nil {
		return err
	}

	return s.update(ctx, func(tx *bolt.Tx) error {
		rec, err := getSession(tx, userID, b.SessionID)
		if err != nil {
			return err
		}

		if rec.Completed {
			return ErrSessionCompleted
		}

		blocks := tx.Bucket(bucketBlocks)

		id, err := blocks.NextSequence()
		if err != nil {
			return eris.Wrap(err, "failed to allocate block id")
		}

		bucket, err := blocks.CreateBucketIfNotExists(itob(b.SessionID))
		if err != nil {
			return eris.Wrap(err, "failed to create session blocks bucket")
		}

		started := s.now()

		b.ID = int(id)
		b.Completed = false
		b.StartedAt = &started
		b.EndedAt = nil

		if err := putJSON(bucket, itob(b.ID), b); err != nil {
			return err
		}

		if err := tx.Bucket(bucketBlockIndex).Put(itob(b.ID), itob(b.SessionID)); err != nil {
			return eris.Wrap(err, "failed to index block")
		}

		return nil
	})
}

func (s *Bolt) CompleteBlock(
	ctx context.Context,
	userID, blockID int,
) (*models.PomodoroBlock, error) {
	var b *models.PomodoroBlock

	err := s.update(ctx, func(tx *bolt.Tx) error {
		bucket, rec, err := ownedBlockBucket(tx, userID, blockID)
		if err != nil {
			return err
		}

		b = &models.PomodoroBlock{}

		if _, err := getJSON(bucket, itob(blockID), b); err != nil {
			return err
		}

		if b.Completed {
			return nil
		}

		ended := s.now()
		b.Completed = true
		b.EndedAt = &ended

		if err := putJSON(bucket, itob(blockID), b); err != nil {
			return err
		}

		return recomputeTotal(tx, rec)
	})

	return b, err
}

func (s *Bolt) DeleteBlock(ctx context.Context, userID, blockID int) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		bucket, rec, err := ownedBlockBucket(tx, userID, blockID)
		if err != nil {
			return err
		}

		if err := bucket.Delete(itob(blockID)); err != nil {
			return eris.Wrap(err, "failed to delete block")
		}

		if err := tx.Bucket(bucketBlockIndex).Delete(itob(blockID)); err != nil {
			return eris.Wrap(err, "failed to remove block index")
		}

		return recomputeTotal(tx, rec)
	})
}

func getUser(tx *bolt.Tx, id int) (*models.User, error) {
	var rec userRecord

	found, err := getJSON(tx.Bucket(bucketUsers), itob(id), &rec)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNotFound.Fmt("user")
	}

	return &models.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

// getSession loads a session owned by userID. Sessions of other users are
// reported as missing.
func getSession(tx *bolt.Tx, userID, id int) (*sessionRecord, error) {
	var rec sessionRecord

	found, err := getJSON(tx.Bucket(bucketSessions), itob(id), &rec)
	if err != nil {
		return nil, err
	}

	if !found || rec.UserID != userID {
		return nil, ErrNotFound.Fmt("study session")
	}

	return &rec, nil
}

// ownedBlockBucket locates the bucket holding blockID and checks that the
// block's session belongs to userID.
func ownedBlockBucket(
	tx *bolt.Tx,
	userID, blockID int,
) (*bolt.Bucket, *sessionRecord, error) {
	v := tx.Bucket(bucketBlockIndex).Get(itob(blockID))
	if v == nil {
		return nil, nil, ErrNotFound.Fmt("pomodoro block")
	}

	sessionID := btoi(v)

	var rec sessionRecord

	found, err := getJSON(tx.Bucket(bucketSessions), itob(sessionID), &rec)
	if err != nil {
		return nil, nil, err
	}

	if !found {
		return nil, nil, ErrNotFound.Fmt("study session")
	}

	if rec.UserID != userID {
		return nil, nil, ErrForbidden
	}

	bucket := tx.Bucket(bucketBlocks).Bucket(itob(sessionID))
	if bucket == nil {
		return nil, nil, ErrNotFound.Fmt("pomodoro block")
	}

	return bucket, &rec, nil
}

func sessionBlocks(tx *bolt.Tx, sessionID int) ([]models.PomodoroBlock, error) {
	blocks := []models.PomodoroBlock{}

	bucket := tx.Bucket(bucketBlocks).Bucket(itob(sessionID))
	if bucket == nil {
		return blocks, nil
	}

	err := bucket.ForEach(func(_, v []byte) error {
		var b models.PomodoroBlock
		if err := json.Unmarshal(v, &b); err != nil {
			return eris.Wrap(err, "failed to decode block")
		}

		blocks = append(blocks, b)

		return nil
	})

	return blocks, err
}

// recomputeTotal derives the session's total minutes from its blocks.
func recomputeTotal(tx *bolt.Tx, rec *sessionRecord) error {
	blocks, err := sessionBlocks(tx, rec.ID)
	if err != nil {
		return err
	}

	rec.TotalMinutes = stats.TotalMinutes(blocks)

	return putJSON(tx.Bucket(bucketSessions), itob(rec.ID), rec)
}

func getJSON(b *bolt.Bucket, key []byte, v any) (bool, error) {
	data := b.Get(key)
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, eris.Wrap(err, "failed to decode record")
	}

	return true, nil
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return eris.Wrap(err, "failed to encode record")
	}

	if err := b.Put(key, data); err != nil {
		return eris.Wrap(err, "failed to write record")
	}

	return nil
}

func itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))

	return b
}

func btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
