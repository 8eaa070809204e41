package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	st := store.State{
		QueueIndex:   3,
		RepliedIDs:   []string{"a", "b"},
		TweetsPosted: 40,
		RepliesSent:  12,
		DailyStats: map[string]map[string]int{
			"2025-06-02": {"total_tweets_posted": 4, "total_replies_sent": 2},
			"2025-06-01": {"total_tweets_posted": 6},
		},
		HourlyStats: map[string]map[string]int{
			"2025-06-02 14": {"total_replies_sent": 1},
			"2025-06-02 09": {"total_tweets_posted": 1},
		},
	}

	r := Summarize(st, now)
	assert.Equal(t, 40, r.TweetsTotal)
	assert.Equal(t, 12, r.RepliesTotal)
	assert.Equal(t, 4, r.TweetsToday)
	assert.Equal(t, 2, r.RepliesToday)
	assert.Equal(t, 3, r.QueueIndex)
	assert.Equal(t, 2, r.RepliedCount)

	// buckets come out date-sorted
	assert.Equal(t, []DayStats{
		{Date: "2025-06-01", Tweets: 6},
		{Date: "2025-06-02", Tweets: 4, Replies: 2},
	}, r.Daily)
	assert.Equal(t, []HourStats{
		{Hour: "2025-06-02 09", Tweets: 1},
		{Hour: "2025-06-02 14", Replies: 1},
	}, r.Hourly)
}

func TestSummarizeEmptyState(t *testing.T) {
	r := Summarize(store.State{}, time.Now())
	assert.Zero(t, r.TweetsTotal)
	assert.Empty(t, r.Daily)
	assert.Empty(t, r.Hourly)
}
