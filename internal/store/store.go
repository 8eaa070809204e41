// Package store persists per-tenant bot state, queues, and profiles in
// SQLite. Every record is a JSON document in its own row keyed by user id,
// written with a single UPSERT so a crash never leaves a partial record.
// Only the owning tenant's loop writes its rows; distinct tenants' rows
// never block each other beyond SQLite's own write serialization.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/util"
)

const (
	repliedCap = 1000
	postedCap  = 200
	recentCap  = 100

	// DateLayout keys daily stat buckets.
	DateLayout = "2006-01-02"
	// HourLayout keys hourly stat buckets.
	HourLayout = "2006-01-02 15"
)

// State is the durable mutable record owned by one tenant's loop.
type State struct {
	QueueIndex    int                       `json:"current_tweet_index"`
	RepliedIDs    []string                  `json:"replied_tweets"`
	PostedTweets  []string                  `json:"posted_tweets"`
	RecentReplies []string                  `json:"recent_replies"`
	DailyStats    map[string]map[string]int `json:"daily_stats"`
	HourlyStats   map[string]map[string]int `json:"hourly_stats"`
	TweetsPosted  int                       `json:"total_tweets_posted"`
	RepliesSent   int                       `json:"total_replies_sent"`
	LastReset     string                    `json:"last_reset"`
}

// StatToday returns today's bucket value for name.
func (s *State) StatToday(name string, now time.Time) int {
	day, ok := s.DailyStats[now.Format(DateLayout)]
	if !ok {
		return 0
	}
	return day[name]
}

// StatThisHour returns the current hour's bucket value for name.
func (s *State) StatThisHour(name string, now time.Time) int {
	hour, ok := s.HourlyStats[now.Format(HourLayout)]
	if !ok {
		return 0
	}
	return hour[name]
}

// Store wraps the SQLite database shared by all tenant loops.
type Store struct{ sql *sql.DB }

func Open(path string) (*Store, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	s := &Store{sql: d}
	if err := s.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.sql.Close() }

func (s *Store) migrate() error {
	_, err := s.sql.Exec(`
	CREATE TABLE IF NOT EXISTS users (
	  user_id TEXT PRIMARY KEY,
	  record TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS bot_state (
	  user_id TEXT PRIMARY KEY,
	  state TEXT NOT NULL,
	  updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tweet_queue (
	  user_id TEXT PRIMARY KEY,
	  queue TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS scheduled_posts (
	  user_id TEXT PRIMARY KEY,
	  posts TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS reply_templates (
	  user_id TEXT PRIMARY KEY,
	  templates TEXT NOT NULL
	);
	`)
	return err
}

// Load returns the tenant's state, creating a default zeroed state if absent.
func (s *Store) Load(ctx context.Context, userID string) (State, error) {
	row := s.sql.QueryRowContext(ctx, `SELECT state FROM bot_state WHERE user_id=?`, userID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return State{
				DailyStats: map[string]map[string]int{},
				LastReset:  time.Now().Format(DateLayout),
			}, nil
		}
		return State{}, err
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("decode state for %s: %w", userID, err)
	}
	if st.DailyStats == nil {
		st.DailyStats = map[string]map[string]int{}
	}
	return st, nil
}

// Save atomically overwrites the tenant's state. Ring fields are truncated
// to their caps, keeping the most recent entries.
func (s *Store) Save(ctx context.Context, userID string, st State) error {
	st.RepliedIDs = truncateTail(st.RepliedIDs, repliedCap)
	st.PostedTweets = truncateTail(st.PostedTweets, postedCap)
	st.RecentReplies = truncateTail(st.RecentReplies, recentCap)
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.sql.ExecContext(ctx,
		`INSERT INTO bot_state(user_id, state, updated_at) VALUES(?,?,?)
		 ON CONFLICT(user_id) DO UPDATE SET state=excluded.state, updated_at=excluded.updated_at`,
		userID, string(b), time.Now().Unix())
	return err
}

// RecordReply appends tweetID to the tenant's replied ring and flushes.
func (s *Store) RecordReply(ctx context.Context, userID, tweetID string) error {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}
	st.RepliedIDs = util.AppendBounded(st.RepliedIDs, tweetID, repliedCap)
	return s.Save(ctx, userID, st)
}

// HasReplied reports whether the tenant already replied to tweetID.
func (s *Store) HasReplied(ctx context.Context, userID, tweetID string) (bool, error) {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range st.RepliedIDs {
		if id == tweetID {
			return true, nil
		}
	}
	return false, nil
}

// IncrementStat bumps the lifetime counter and today's bucket together.
func (s *Store) IncrementStat(ctx context.Context, userID, name string, now time.Time) error {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return err
	}
	st.Bump(name, now)
	return s.Save(ctx, userID, st)
}

// Bump applies the lifetime + daily increment to an in-memory state. Loops
// that already hold the state use this and Save once.
func (st *State) Bump(name string, now time.Time) {
	switch name {
	case "total_tweets_posted":
		st.TweetsPosted++
	case "total_replies_sent":
		st.RepliesSent++
	}
	today := now.Format(DateLayout)
	if st.DailyStats == nil {
		st.DailyStats = map[string]map[string]int{}
	}
	if _, ok := st.DailyStats[today]; !ok {
		st.DailyStats[today] = map[string]int{}
	}
	st.DailyStats[today][name]++

	hour := now.Format(HourLayout)
	if st.HourlyStats == nil {
		st.HourlyStats = map[string]map[string]int{}
	}
	if _, ok := st.HourlyStats[hour]; !ok {
		st.HourlyStats[hour] = map[string]int{}
	}
	st.HourlyStats[hour][name]++
}

// ResetIfNewDay advances LastReset to today; returns true if it changed.
func (s *Store) ResetIfNewDay(ctx context.Context, userID string, now time.Time) (bool, error) {
	st, err := s.Load(ctx, userID)
	if err != nil {
		return false, err
	}
	today := now.Format(DateLayout)
	if st.LastReset == today {
		return false, nil
	}
	st.LastReset = today
	// drop hourly buckets older than two days; daily buckets are kept
	cutoff := now.Add(-48 * time.Hour).Format(HourLayout)
	for k := range st.HourlyStats {
		if k < cutoff {
			delete(st.HourlyStats, k)
		}
	}
	if err := s.Save(ctx, userID, st); err != nil {
		return false, err
	}
	return true, nil
}

func truncateTail(ring []string, max int) []string {
	if len(ring) > max {
		return ring[len(ring)-max:]
	}
	return ring
}

// LoadQueue returns the tenant's ordered post texts (empty if absent).
func (s *Store) LoadQueue(ctx context.Context, userID string) ([]string, error) {
	var out []string
	err := s.loadJSON(ctx, `SELECT queue FROM tweet_queue WHERE user_id=?`, userID, &out)
	return out, err
}

func (s *Store) SaveQueue(ctx context.Context, userID string, queue []string) error {
	return s.saveJSON(ctx,
		`INSERT INTO tweet_queue(user_id, queue) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET queue=excluded.queue`, userID, queue)
}

// LoadScheduled returns the tenant's time-stamped pending posts.
func (s *Store) LoadScheduled(ctx context.Context, userID string) ([]model.ScheduledPost, error) {
	var out []model.ScheduledPost
	err := s.loadJSON(ctx, `SELECT posts FROM scheduled_posts WHERE user_id=?`, userID, &out)
	return out, err
}

func (s *Store) SaveScheduled(ctx context.Context, userID string, posts []model.ScheduledPost) error {
	return s.saveJSON(ctx,
		`INSERT INTO scheduled_posts(user_id, posts) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET posts=excluded.posts`, userID, posts)
}

// LoadReplyTemplates returns tenant template overrides, nil if none.
func (s *Store) LoadReplyTemplates(ctx context.Context, userID string) (map[string][]string, error) {
	var out map[string][]string
	err := s.loadJSON(ctx, `SELECT templates FROM reply_templates WHERE user_id=?`, userID, &out)
	return out, err
}

func (s *Store) SaveReplyTemplates(ctx context.Context, userID string, templates map[string][]string) error {
	return s.saveJSON(ctx,
		`INSERT INTO reply_templates(user_id, templates) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET templates=excluded.templates`, userID, templates)
}

// GetUser returns a tenant profile; sql.ErrNoRows wrapped if absent.
func (s *Store) GetUser(ctx context.Context, userID string) (model.User, error) {
	var u model.User
	err := s.loadJSON(ctx, `SELECT record FROM users WHERE user_id=?`, userID, &u)
	if err != nil {
		return u, err
	}
	if u.UserID == "" {
		return u, fmt.Errorf("user %s: %w", userID, sql.ErrNoRows)
	}
	return u, nil
}

func (s *Store) PutUser(ctx context.Context, u model.User) error {
	return s.saveJSON(ctx,
		`INSERT INTO users(user_id, record) VALUES(?,?)
		 ON CONFLICT(user_id) DO UPDATE SET record=excluded.record`, u.UserID, u)
}

// ListUsers returns all tenant profiles.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.sql.QueryContext(ctx, `SELECT record FROM users ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteTenant removes every record the tenant owns.
func (s *Store) DeleteTenant(ctx context.Context, userID string) error {
	for _, q := range []string{
		`DELETE FROM users WHERE user_id=?`,
		`DELETE FROM bot_state WHERE user_id=?`,
		`DELETE FROM tweet_queue WHERE user_id=?`,
		`DELETE FROM scheduled_posts WHERE user_id=?`,
		`DELETE FROM reply_templates WHERE user_id=?`,
	} {
		if _, err := s.sql.ExecContext(ctx, q, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadJSON(ctx context.Context, query, userID string, out any) error {
	row := s.sql.QueryRowContext(ctx, query, userID)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *Store) saveJSON(ctx context.Context, query, userID string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.sql.ExecContext(ctx, query, userID, string(b))
	return err
}
