package govern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
)

func stateWith(replies int, now time.Time, hourly int) *store.State {
	st := &store.State{
		DailyStats:  map[string]map[string]int{},
		HourlyStats: map[string]map[string]int{},
	}
	st.DailyStats[now.Format(store.DateLayout)] = map[string]int{"total_replies_sent": replies}
	st.HourlyStats[now.Format(store.HourLayout)] = map[string]int{"total_replies_sent": hourly}
	return st
}

func TestCanReplyHourCeiling(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	st := stateWith(5, now, 2)
	ok, reason := CanReply(st, 2, 20, now)
	assert.False(t, ok)
	assert.Contains(t, reason, "hourly")

	// next hour the bucket is fresh
	later := now.Add(time.Hour)
	ok, _ = CanReply(st, 2, 20, later)
	assert.True(t, ok)
}

func TestCanReplyDayCeilingPersistsAcrossHours(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	st := stateWith(20, now, 0) // daily ceiling reached, hour bucket empty
	ok, reason := CanReply(st, 2, 20, now)
	assert.False(t, ok)
	assert.Contains(t, reason, "daily")

	// still denied later the same day even with a fresh hour bucket
	ok, _ = CanReply(st, 2, 20, now.Add(3*time.Hour))
	assert.False(t, ok)
}

func TestCanReplyDayCeilingTighterThanHourly(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	// a day ceiling well below maxPerHour*24 still denies
	st := stateWith(30, now, 0)
	ok, reason := CanReply(st, 5, 20, now)
	assert.False(t, ok)
	assert.Contains(t, reason, "daily")
}

func TestCanReplyZeroCeilingAllows(t *testing.T) {
	now := time.Now()
	ok, _ := CanReply(&store.State{}, 0, 0, now)
	assert.True(t, ok)
}

func TestDuePostTimes(t *testing.T) {
	lastTick := time.Date(2025, 6, 1, 15, 59, 30, 0, time.UTC)
	now := lastTick.Add(time.Minute)
	due := DuePostTimes([]string{"08:00", "16:00", "20:00"}, lastTick, now)
	assert.Equal(t, []string{"16:00"}, due)

	// nothing due when no fire time crossed
	due = DuePostTimes([]string{"08:00"}, lastTick, now)
	assert.Empty(t, due)

	// malformed entries skipped
	due = DuePostTimes([]string{"junk", "16:00"}, lastTick, now)
	assert.Equal(t, []string{"16:00"}, due)
}

func TestDuePostTimesAcrossMidnight(t *testing.T) {
	lastTick := time.Date(2025, 6, 1, 23, 58, 0, 0, time.UTC)
	now := time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC)

	// yesterday's late slot and today's midnight slot both fire
	due := DuePostTimes([]string{"23:59", "00:00", "08:00"}, lastTick, now)
	assert.Equal(t, []string{"23:59", "00:00"}, due)

	// a slot already served before the gap does not fire again
	due = DuePostTimes([]string{"23:57"}, lastTick, now)
	assert.Empty(t, due)
}

func TestMissedTimes(t *testing.T) {
	now := time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC)
	missed := MissedTimes([]string{"08:00", "16:00", "20:00"}, now)
	assert.Equal(t, []string{"08:00", "16:00"}, missed)
}

func TestDueInterval(t *testing.T) {
	now := time.Now()
	assert.True(t, DueInterval(time.Time{}, 15*time.Minute, now))
	assert.False(t, DueInterval(now.Add(-5*time.Minute), 15*time.Minute, now))
	assert.True(t, DueInterval(now.Add(-15*time.Minute), 15*time.Minute, now))
	assert.False(t, DueInterval(time.Time{}, 0, now))
}

func TestScheduledDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 30, 0, time.UTC)
	assert.True(t, ScheduledDue("2025-06-01 10:00", now))
	assert.True(t, ScheduledDue("2025-06-01 10:01", now))
	assert.False(t, ScheduledDue("2025-06-01 10:05", now))
	assert.False(t, ScheduledDue("not a time", now))
}
