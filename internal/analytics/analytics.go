// Package analytics turns a tenant's raw counters into the report served
// by the admin API.
package analytics

import (
	"sort"
	"time"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
)

// DayStats is one calendar date's activity.
type DayStats struct {
	Date    string `json:"date"`
	Tweets  int    `json:"tweets"`
	Replies int    `json:"replies"`
}

// HourStats is one hour bucket's activity.
type HourStats struct {
	Hour    string `json:"hour"`
	Tweets  int    `json:"tweets"`
	Replies int    `json:"replies"`
}

// Report is the stats payload for one tenant.
type Report struct {
	TweetsTotal  int         `json:"tweets_total"`
	RepliesTotal int         `json:"replies_total"`
	TweetsToday  int         `json:"tweets_today"`
	RepliesToday int         `json:"replies_today"`
	QueueIndex   int         `json:"queue_index"`
	RepliedCount int         `json:"replied_count"`
	Daily        []DayStats  `json:"daily"`
	Hourly       []HourStats `json:"hourly"`
}

// Summarize flattens a tenant's state into a report. Bucket slices come
// back sorted by key so the output is stable.
func Summarize(st store.State, now time.Time) Report {
	r := Report{
		TweetsTotal:  st.TweetsPosted,
		RepliesTotal: st.RepliesSent,
		TweetsToday:  st.StatToday("total_tweets_posted", now),
		RepliesToday: st.StatToday("total_replies_sent", now),
		QueueIndex:   st.QueueIndex,
		RepliedCount: len(st.RepliedIDs),
	}
	for _, day := range sortedKeys(st.DailyStats) {
		b := st.DailyStats[day]
		r.Daily = append(r.Daily, DayStats{
			Date:    day,
			Tweets:  b["total_tweets_posted"],
			Replies: b["total_replies_sent"],
		})
	}
	for _, hour := range sortedKeys(st.HourlyStats) {
		b := st.HourlyStats[hour]
		r.Hourly = append(r.Hourly, HourStats{
			Hour:    hour,
			Tweets:  b["total_tweets_posted"],
			Replies: b["total_replies_sent"],
		})
	}
	return r
}

func sortedKeys(m map[string]map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
