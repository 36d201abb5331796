package block_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayoisaiah/studyblocks/block"
	"github.com/ayoisaiah/studyblocks/internal/config"
	"github.com/ayoisaiah/studyblocks/internal/models"
	"github.com/ayoisaiah/studyblocks/internal/testutil"
)

const sessionID = 7

func setup(
	t *testing.T,
	sess ...models.StudySession,
) (*block.Manager, *fakeStore, *testutil.ManualScheduler) {
	t.Helper()

	if len(sess) == 0 {
		sess = []models.StudySession{{ID: sessionID, Subject: "Linear algebra"}}
	}

	store := newFakeStore(sess...)
	sched := testutil.NewManualScheduler()

	m := block.New(store, sessionID,
		block.WithScheduler(sched),
		block.WithDurations(config.BlocksConfig{WorkMinutes: 25, BreakMinutes: 5}),
	)

	require.NoError(t, m.Load(context.Background()))

	return m, store, sched
}

func TestStartBlock(t *testing.T) {
	m, store, _ := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Work))

	snap := m.Snapshot()
	assert.Equal(t, block.Running, snap.State)
	assert.Equal(t, models.Work, snap.ActiveType)
	assert.Equal(t, 1500, snap.SecondsRemaining)
	assert.Equal(t, 1, store.count("create"))
	require.Len(t, snap.Session.Blocks, 1)
	assert.False(t, snap.Session.Blocks[0].Completed)
	assert.Equal(t, 1, snap.Summary.PendingBlocks)
	require.NotNil(t, snap.Active)
	assert.Equal(t, snap.Session.Blocks[0].ID, snap.Active.ID)
}

func TestStartBreakUsesBreakDuration(t *testing.T) {
	m, _, _ := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Break))
	assert.Equal(t, 300, m.Snapshot().SecondsRemaining)
}

func TestStartBlockWhileActiveIsRejected(t *testing.T) {
	m, store, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, m.StartBlock(ctx, models.Work))

	calls := store.storeCalls()

	err := m.StartBlock(ctx, models.Break)
	assert.ErrorIs(t, err, block.ErrBlockActive)

	require.NoError(t, m.Pause())

	err = m.StartBlock(ctx, models.Work)
	assert.ErrorIs(t, err, block.ErrBlockActive)

	assert.Equal(t, calls, store.storeCalls())
	assert.Equal(t, block.Paused, m.Snapshot().State)
}

func TestStartBlockWithoutLoadFetchesSession(t *testing.T) {
	store := newFakeStore(models.StudySession{ID: sessionID, Subject: "Go"})
	m := block.New(store, sessionID, block.WithScheduler(testutil.NewManualScheduler()))

	require.NoError(t, m.StartBlock(context.Background(), models.Work))

	assert.Equal(t, 1, store.count("get"))
	assert.Equal(t, config.DefaultWorkMinutes*60, m.Snapshot().SecondsRemaining)
}

func TestStartBlockFailureReturnsToIdle(t *testing.T) {
	m, store, sched := setup(t)
	store.set(func(f *fakeStore) { f.failCreate = errOffline })

	err := m.StartBlock(context.Background(), models.Work)
	require.ErrorIs(t, err, block.ErrRecordStore)
	assert.ErrorIs(t, err, errOffline)

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.False(t, snap.HasActiveBlock())
	assert.Equal(t, block.NoTimer, snap.SecondsRemaining)
	assert.ErrorIs(t, snap.Err, block.ErrRecordStore)
	assert.Equal(t, 0, sched.Pending())

	store.set(func(f *fakeStore) { f.failCreate = nil })

	require.NoError(t, m.StartBlock(context.Background(), models.Work))
	assert.NoError(t, m.Snapshot().Err)
}

func TestStartBlockOnCompletedSession(t *testing.T) {
	m, store, _ := setup(t, models.StudySession{ID: sessionID, Completed: true})

	err := m.StartBlock(context.Background(), models.Work)
	assert.ErrorIs(t, err, block.ErrSessionCompleted)
	assert.Equal(t, 0, store.count("create"))
	assert.Equal(t, block.Idle, m.Snapshot().State)
}

func TestPauseResumePreservesRemaining(t *testing.T) {
	m, _, sched := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Work))
	sched.Tick(42)

	require.NoError(t, m.Pause())
	before := m.Snapshot().SecondsRemaining

	require.NoError(t, m.Resume())
	assert.Equal(t, before, m.Snapshot().SecondsRemaining)
	assert.Equal(t, 1500-42, before)
}

func TestPauseAndResumeFromWrongState(t *testing.T) {
	m, store, _ := setup(t)

	assert.ErrorIs(t, m.Pause(), block.ErrInvalidTransition)
	assert.ErrorIs(t, m.Resume(), block.ErrInvalidTransition)
	assert.ErrorIs(t, m.Cancel(), block.ErrInvalidTransition)

	require.NoError(t, m.StartBlock(context.Background(), models.Work))
	assert.ErrorIs(t, m.Resume(), block.ErrInvalidTransition)

	require.NoError(t, m.Pause())
	assert.ErrorIs(t, m.Pause(), block.ErrInvalidTransition)

	assert.Equal(t, 1, store.count("create"))
	assert.Equal(t, 0, store.count("complete"))
}

func TestPausedBlockDoesNotCountDown(t *testing.T) {
	m, store, sched := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Break))
	require.NoError(t, m.Pause())

	sched.Tick(1000)

	snap := m.Snapshot()
	assert.Equal(t, 300, snap.SecondsRemaining)
	assert.Equal(t, block.Paused, snap.State)
	assert.Equal(t, 0, store.count("complete"))
}

func TestReachesCompletingAfterExactlyNTicks(t *testing.T) {
	m, store, sched := setup(t)
	store.set(func(f *fakeStore) { f.failComplete = errOffline })

	require.NoError(t, m.StartBlock(context.Background(), models.Break))

	sched.Tick(299)
	assert.Equal(t, block.Running, m.Snapshot().State)
	assert.Equal(t, 0, store.count("complete"))

	sched.Tick(1)

	snap := m.Snapshot()
	assert.Equal(t, block.Completing, snap.State)
	assert.Equal(t, 0, snap.SecondsRemaining)
	assert.Equal(t, 1, store.count("complete"))
}

func TestCancelLeavesIncompleteRecord(t *testing.T) {
	m, store, sched := setup(t)
	ctx := context.Background()

	require.NoError(t, m.StartBlock(ctx, models.Work))
	sched.Tick(60)

	require.NoError(t, m.Cancel())

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.False(t, snap.HasActiveBlock())
	assert.Equal(t, block.NoTimer, snap.SecondsRemaining)
	assert.Equal(t, 0, sched.Pending())

	sched.Tick(2000)
	assert.Equal(t, 0, store.count("complete"))

	require.NoError(t, m.Load(ctx))

	blocks := m.Snapshot().Session.Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, models.Work, blocks[0].Type)
	assert.Equal(t, 25, blocks[0].DurationMinutes)
	assert.False(t, blocks[0].Completed)

	require.NoError(t, m.StartBlock(ctx, models.Work))
	assert.Equal(t, 2, store.count("create"))
}

func TestWorkBlockRunsToCompletion(t *testing.T) {
	m, store, sched := setup(t)

	before := m.Snapshot().Summary.TotalMinutes
	gets := store.count("get")

	require.NoError(t, m.StartBlock(context.Background(), models.Work))

	sched.Tick(1500)

	assert.Equal(t, 1, store.count("complete"))
	assert.Equal(t, gets+1, store.count("get"))

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, before+25, snap.Summary.TotalMinutes)
	assert.Equal(t, 1, snap.Summary.CompletedWorkBlocks)

	require.Len(t, snap.Session.Blocks, 1)
	assert.Equal(t, models.Work, snap.Session.Blocks[0].Type)
	assert.True(t, snap.Session.Blocks[0].Completed)

	sched.Tick(3000)
	assert.Equal(t, 1, store.count("complete"))
}

func TestBreakBlockPausedResumedAndCancelled(t *testing.T) {
	m, store, sched := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Break))

	sched.Tick(10)
	require.NoError(t, m.Pause())
	require.NoError(t, m.Resume())

	sched.Tick(100)
	require.NoError(t, m.Cancel())

	sched.Tick(1000)
	assert.Equal(t, 0, store.count("complete"))

	sess, err := store.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, sess.Blocks, 1)
	assert.Equal(t, models.Break, sess.Blocks[0].Type)
	assert.False(t, sess.Blocks[0].Completed)
	assert.Equal(t, 0, sess.TotalMinutes)
}

func TestCompletionFailureKeepsActiveBlock(t *testing.T) {
	m, store, sched := setup(t)
	ctx := context.Background()

	store.set(func(f *fakeStore) { f.failComplete = errOffline })

	require.NoError(t, m.StartBlock(ctx, models.Break))
	sched.Tick(300)

	snap := m.Snapshot()
	assert.Equal(t, block.Completing, snap.State)
	assert.True(t, snap.HasActiveBlock())
	assert.ErrorIs(t, snap.Err, block.ErrRecordStore)

	assert.ErrorIs(t, m.Cancel(), block.ErrInvalidTransition)
	assert.ErrorIs(t, m.StartBlock(ctx, models.Work), block.ErrBlockActive)
	assert.ErrorIs(t, m.MarkSessionComplete(ctx), block.ErrInvalidTransition)

	assert.ErrorIs(t, m.RetryCompletion(ctx), block.ErrRecordStore)
	assert.Equal(t, 2, store.count("complete"))
	assert.Equal(t, 1, store.count("create"))

	store.set(func(f *fakeStore) { f.failComplete = nil })

	require.NoError(t, m.RetryCompletion(ctx))

	snap = m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 5, snap.Summary.TotalMinutes)
	assert.Equal(t, 1, store.count("create"))
}

func TestRetryCompletionWhenIdle(t *testing.T) {
	m, _, _ := setup(t)

	assert.ErrorIs(t, m.RetryCompletion(context.Background()), block.ErrInvalidTransition)
}

func TestRefreshFailureAfterCompletion(t *testing.T) {
	m, store, sched := setup(t)

	require.NoError(t, m.StartBlock(context.Background(), models.Work))

	store.set(func(f *fakeStore) { f.failGet = errOffline })
	sched.Tick(1500)

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.ErrorIs(t, snap.Err, block.ErrRecordStore)
	assert.False(t, snap.HasActiveBlock())
	assert.True(t, snap.Session.Blocks[0].Completed)
	assert.Equal(t, 0, snap.Summary.TotalMinutes)

	store.set(func(f *fakeStore) { f.failGet = nil })

	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, 25, m.Snapshot().Summary.TotalMinutes)
}

func TestMarkSessionComplete(t *testing.T) {
	m, store, sched := setup(t)
	ctx := context.Background()

	require.NoError(t, m.StartBlock(ctx, models.Work))
	sched.Tick(1500)

	snap := m.Snapshot()
	assert.False(t, snap.Summary.Completed)

	require.NoError(t, m.MarkSessionComplete(ctx))
	assert.Equal(t, 1, store.count("mark"))
	assert.True(t, m.Snapshot().Summary.Completed)

	assert.ErrorIs(t, m.StartBlock(ctx, models.Work), block.ErrSessionCompleted)
}

func TestTotalMinutesMatchesCompletedBlocks(t *testing.T) {
	m, _, sched := setup(t)
	ctx := context.Background()

	sequence := []struct {
		typ    models.BlockType
		cancel bool
	}{
		{typ: models.Work},
		{typ: models.Break},
		{typ: models.Work, cancel: true},
		{typ: models.Work},
		{typ: models.Break, cancel: true},
	}

	for _, step := range sequence {
		require.NoError(t, m.StartBlock(ctx, step.typ))

		if step.cancel {
			sched.Tick(3)
			require.NoError(t, m.Cancel())

			continue
		}

		sched.Tick(m.Snapshot().SecondsRemaining)
	}

	snap := m.Snapshot()

	var want int

	for _, b := range snap.Session.Blocks {
		if b.Completed {
			want += b.DurationMinutes
		}
	}

	assert.Equal(t, 55, want)
	assert.Equal(t, want, snap.Summary.TotalMinutes)
	assert.Equal(t, 2, snap.Summary.CompletedWorkBlocks)
	assert.Equal(t, 2, snap.Summary.PendingBlocks)
}

func TestEventsAreSignalled(t *testing.T) {
	m, _, sched := setup(t)

	// drain the signal left by Load
	select {
	case <-m.Events():
	default:
	}

	require.NoError(t, m.StartBlock(context.Background(), models.Work))

	select {
	case <-m.Events():
	default:
		t.Fatal("expected an event after starting a block")
	}

	sched.Tick(1)

	select {
	case <-m.Events():
	default:
		t.Fatal("expected an event after a tick")
	}
}

func TestStartBlockWhileStartingIsRejected(t *testing.T) {
	m, store, _ := setup(t)
	ctx := context.Background()

	g := store.hold("create")
	started := make(chan error, 1)

	go func() { started <- m.StartBlock(ctx, models.Work) }()

	<-g.entered
	assert.Equal(t, block.Starting, m.Snapshot().State)

	err := m.StartBlock(ctx, models.Break)
	assert.ErrorIs(t, err, block.ErrBlockActive)
	assert.ErrorIs(t, m.MarkSessionComplete(ctx), block.ErrInvalidTransition)

	close(g.release)
	require.NoError(t, <-started)

	snap := m.Snapshot()
	assert.Equal(t, block.Running, snap.State)
	assert.Equal(t, models.Work, snap.ActiveType)
	assert.Equal(t, 1, store.count("create"))
	assert.Equal(t, 0, store.count("mark"))
	assert.Len(t, snap.Session.Blocks, 1)
}

func TestStartBlockWhileMarkingSessionComplete(t *testing.T) {
	m, store, _ := setup(t)
	ctx := context.Background()

	g := store.hold("mark")
	marked := make(chan error, 1)

	go func() { marked <- m.MarkSessionComplete(ctx) }()

	<-g.entered

	err := m.StartBlock(ctx, models.Work)
	assert.ErrorIs(t, err, block.ErrInvalidTransition)
	assert.ErrorIs(t, m.MarkSessionComplete(ctx), block.ErrInvalidTransition)

	close(g.release)
	require.NoError(t, <-marked)

	assert.ErrorIs(t, m.StartBlock(ctx, models.Work), block.ErrSessionCompleted)

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.True(t, snap.Summary.Completed)
	assert.Equal(t, 0, store.count("create"))
	assert.Equal(t, 1, store.count("mark"))
	assert.Empty(t, snap.Session.Blocks)
}

func TestLoadRacingStartKeepsActiveBlock(t *testing.T) {
	m, store, _ := setup(t)
	ctx := context.Background()

	g := store.hold("get")
	loaded := make(chan error, 1)

	// the fetch reads the session before the block exists
	go func() { loaded <- m.Load(ctx) }()

	<-g.entered

	require.NoError(t, m.StartBlock(ctx, models.Break))

	close(g.release)
	require.NoError(t, <-loaded)

	snap := m.Snapshot()
	assert.Equal(t, block.Running, snap.State)
	require.NotNil(t, snap.Active)
	assert.Equal(t, models.Break, snap.Active.Type)
	require.Len(t, snap.Session.Blocks, 1)
	assert.Equal(t, snap.Active.ID, snap.Session.Blocks[0].ID)
	assert.Equal(t, 1, snap.Summary.PendingBlocks)
}

func TestSettleWaitsForCompletion(t *testing.T) {
	m, store, sched := setup(t)
	ctx := context.Background()

	require.NoError(t, m.Settle(ctx))

	require.NoError(t, m.StartBlock(ctx, models.Break))
	require.NoError(t, m.Settle(ctx))

	g := store.hold("complete")

	go sched.Tick(300)

	<-g.entered
	assert.Equal(t, block.Completing, m.Snapshot().State)

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, m.Settle(short), context.DeadlineExceeded)

	settled := make(chan error, 1)

	go func() { settled <- m.Settle(ctx) }()

	close(g.release)

	select {
	case err := <-settled:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Settle did not return after the completion finished")
	}

	snap := m.Snapshot()
	assert.Equal(t, block.Idle, snap.State)
	assert.True(t, snap.Session.Blocks[0].Completed)
	assert.Equal(t, 1, store.count("complete"))
}

func TestSettleAfterFailedCompletion(t *testing.T) {
	m, store, sched := setup(t)
	ctx := context.Background()

	store.set(func(f *fakeStore) { f.failComplete = errOffline })

	require.NoError(t, m.StartBlock(ctx, models.Work))
	sched.Tick(1500)

	require.Equal(t, block.Completing, m.Snapshot().State)
	assert.NoError(t, m.Settle(ctx))
}
