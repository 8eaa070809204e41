package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadCreatesDefaultState(t *testing.T) {
	s := openTest(t)
	st, err := s.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, st.QueueIndex)
	assert.Empty(t, st.RepliedIDs)
	assert.NotEmpty(t, st.LastReset)
}

func TestRecordReplyThenHasReplied(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.RecordReply(ctx, "u1", "tw-42"))

	ok, err := s.HasReplied(ctx, "u1", "tw-42")
	require.NoError(t, err)
	assert.True(t, ok)

	// a different tenant has not replied
	ok, err = s.HasReplied(ctx, "u2", "tw-42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTenantIsolation(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.IncrementStat(ctx, "u1", "total_replies_sent", now))
	require.NoError(t, s.RecordReply(ctx, "u1", "a"))

	st2, err := s.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Zero(t, st2.RepliesSent)
	assert.Empty(t, st2.RepliedIDs)
}

func TestRingBufferCapsKeepTail(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	st, _ := s.Load(ctx, "u1")
	for i := 0; i < 1100; i++ {
		st.RepliedIDs = append(st.RepliedIDs, fmt.Sprintf("id-%d", i))
	}
	require.NoError(t, s.Save(ctx, "u1", st))

	got, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got.RepliedIDs, 1000)
	assert.Equal(t, "id-100", got.RepliedIDs[0])
	assert.Equal(t, "id-1099", got.RepliedIDs[999])
}

func TestIncrementStatBumpsLifetimeAndToday(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.IncrementStat(ctx, "u1", "total_tweets_posted", now))
	require.NoError(t, s.IncrementStat(ctx, "u1", "total_tweets_posted", now))

	st, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.TweetsPosted)
	assert.Equal(t, 2, st.StatToday("total_tweets_posted", now))

	// yesterday's bucket untouched
	yesterday := now.AddDate(0, 0, -1)
	assert.Zero(t, st.StatToday("total_tweets_posted", yesterday))
}

func TestResetIfNewDay(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	day1 := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Hour)

	st, _ := s.Load(ctx, "u1")
	st.LastReset = day1.Format(DateLayout)
	require.NoError(t, s.Save(ctx, "u1", st))

	changed, err := s.ResetIfNewDay(ctx, "u1", day1)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.ResetIfNewDay(ctx, "u1", day2)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestQueueAndScheduledRoundTrip(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	q, err := s.LoadQueue(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, q)

	require.NoError(t, s.SaveQueue(ctx, "u1", []string{"t1", "t2"}))
	q, err = s.LoadQueue(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, q)

	posts := []model.ScheduledPost{{Text: "hello", DateTime: "2025-06-01 10:00", Status: model.StatusPending}}
	require.NoError(t, s.SaveScheduled(ctx, "u1", posts))
	got, err := s.LoadScheduled(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.StatusPending, got[0].Status)
}

func TestUserRecords(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	u := model.User{UserID: "u1", Username: "subx", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.PutUser(ctx, u))
	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "subx", got.Username)

	all, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteTenantCascades(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.PutUser(ctx, model.User{UserID: "u1"}))
	require.NoError(t, s.SaveQueue(ctx, "u1", []string{"x"}))
	require.NoError(t, s.RecordReply(ctx, "u1", "tw"))

	require.NoError(t, s.DeleteTenant(ctx, "u1"))

	_, err := s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	q, _ := s.LoadQueue(ctx, "u1")
	assert.Empty(t, q)
	ok, _ := s.HasReplied(ctx, "u1", "tw")
	assert.False(t, ok)
}

func TestSaveIsAtomicOverwrite(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	st, _ := s.Load(ctx, "u1")
	st.QueueIndex = 7
	require.NoError(t, s.Save(ctx, "u1", st))
	st.QueueIndex = 8
	require.NoError(t, s.Save(ctx, "u1", st))

	got, err := s.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.QueueIndex)
}
