// Package bot runs a single tenant's engagement loop: scheduled posting,
// keyword engagement scans, ripple scans, and the fixed daily content slots.
// One Bot instance is owned by exactly one goroutine.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/generate"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/govern"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/logging"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/metrics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/news"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/places"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/relevance"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/replypick"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/triggers"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/util"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/xclient"
)

const (
	defaultTick = time.Minute

	replyPause        = 2 * time.Minute
	searchPause       = 10 * time.Second
	errorWait         = 60 * time.Second
	rippleEvery       = 30 * time.Minute
	ripplePause       = 3 * time.Minute
	rippleSearchPause = 30 * time.Second

	scanMaxResults   = 10
	rippleSample     = 3
	rippleMaxResults = 5

	engageProb    = 0.30
	generateProb  = 0.40
	skipAheadProb = 0.20
	dupThreshold  = 0.8
	genAttempts   = 10
	dedupWindow   = 100

	postStat  = "total_tweets_posted"
	replyStat = "total_replies_sent"
)

// newsTimes and showcaseTimes are the fixed daily content slots, spread so
// the account stays active around the clock.
var (
	newsTimes     = []string{"03:00", "08:00", "13:00", "17:00", "22:00"}
	showcaseTimes = []string{"10:00", "18:00"}
)

const statsTime = "23:59"

// Deps are the shared services a tenant loop borrows. The SQLite store is
// the only resource shared across loops; everything else is per-tenant or
// stateless.
type Deps struct {
	Store  *store.Store
	Client xclient.Client
	Gen    generate.Generator
	News   *news.Fetcher
}

// Bot is one tenant's loop state. Fields after the divider exist so tests
// can pin time, randomness, and pauses.
type Bot struct {
	userID string
	cfg    model.BotConfig
	tables triggers.Tables
	picker *replypick.Selector
	deps   Deps

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
	rand  *rand.Rand
	tick  time.Duration

	lastTick   time.Time
	lastScan   time.Time
	lastRipple time.Time
}

func New(userID string, cfg model.BotConfig, deps Deps) *Bot {
	return &Bot{
		userID: userID,
		cfg:    cfg,
		deps:   deps,
		now:    time.Now,
		sleep:  sleepCtx,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
		tick:   defaultTick,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run drives the loop until ctx is cancelled. Remote errors are logged and
// absorbed; only a cancelled context or an unusable store ends the loop.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.initialize(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(b.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.tickOnce(ctx)
		}
	}
}

// initialize resolves the tenant's tables, logs lifetime stats, fires at
// most one catch-up post for slots missed while the process was down, and
// runs the first engagement scan.
func (b *Bot) initialize(ctx context.Context) error {
	tmpl, err := b.deps.Store.LoadReplyTemplates(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("load reply templates: %w", err)
	}
	b.tables = triggers.Resolve(b.cfg.Keywords, tmpl)
	b.picker = replypick.New(b.tables)
	b.picker.Rand = b.rand

	now := b.now()
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	logging.Info("bot starting", map[string]any{
		"user":          b.userID,
		"tweets_posted": st.TweetsPosted,
		"replies_sent":  st.RepliesSent,
		"posting_times": b.cfg.PostingTimes,
	})

	if _, err := b.deps.Store.ResetIfNewDay(ctx, b.userID, now); err != nil {
		return err
	}

	// catch-up: missed slots collapse into one post, not one per slot
	if st.StatToday(postStat, now) == 0 {
		if missed := govern.MissedTimes(b.cfg.PostingTimes, now); len(missed) > 0 {
			logging.Info("catching up on missed posting times", map[string]any{
				"user": b.userID, "missed": missed,
			})
			b.postScheduledTweet(ctx, now)
		}
	}

	b.engagementScan(ctx)
	b.lastScan = b.now()
	b.lastRipple = b.lastScan
	b.lastTick = b.lastScan
	return nil
}

func (b *Bot) tickOnce(ctx context.Context) {
	now := b.now()
	defer func() { b.lastTick = now }()

	if _, err := b.deps.Store.ResetIfNewDay(ctx, b.userID, now); err != nil {
		logging.Error("daily reset failed", map[string]any{"user": b.userID, "error": err.Error()})
		return
	}

	b.runScheduledPosts(ctx, now)

	for range govern.DuePostTimes(b.cfg.PostingTimes, b.lastTick, now) {
		if !b.underDailyPostCap(ctx, now) {
			break
		}
		b.postScheduledTweet(ctx, now)
	}

	every := time.Duration(b.cfg.EngagementInterval) * time.Minute
	if govern.DueInterval(b.lastScan, every, now) {
		b.engagementScan(ctx)
		b.lastScan = b.now()
	}

	if govern.DueInterval(b.lastRipple, rippleEvery, now) {
		b.rippleScan(ctx)
		b.lastRipple = b.now()
	}

	for range govern.DuePostTimes(newsTimes, b.lastTick, now) {
		b.postNews(ctx, now)
	}
	for range govern.DuePostTimes(showcaseTimes, b.lastTick, now) {
		b.postShowcase(ctx, now)
	}
	if len(govern.DuePostTimes([]string{statsTime}, b.lastTick, now)) > 0 {
		b.logDailyStats(ctx, now)
	}
}

func (b *Bot) underDailyPostCap(ctx context.Context, now time.Time) bool {
	if b.cfg.TweetsPerDay <= 0 {
		return true
	}
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		logging.Error("load state failed", map[string]any{"user": b.userID, "error": err.Error()})
		return false
	}
	return st.StatToday(postStat, now) < b.cfg.TweetsPerDay
}

// runScheduledPosts fires time-stamped posts whose due moment is within the
// window. Each post transitions pending -> posted|error exactly once.
func (b *Bot) runScheduledPosts(ctx context.Context, now time.Time) {
	posts, err := b.deps.Store.LoadScheduled(ctx, b.userID)
	if err != nil {
		logging.Error("load scheduled posts failed", map[string]any{"user": b.userID, "error": err.Error()})
		return
	}
	changed := false
	for i := range posts {
		p := &posts[i]
		if p.Status != model.StatusPending || !govern.ScheduledDue(p.DateTime, now) {
			continue
		}
		if err := b.publish(ctx, p.Text, "scheduled", now); err != nil {
			p.Status = model.StatusError
			p.Error = err.Error()
		} else {
			p.Status = model.StatusPosted
			p.PostedAt = now.Format("2006-01-02 15:04")
		}
		changed = true
	}
	if changed {
		if err := b.deps.Store.SaveScheduled(ctx, b.userID, posts); err != nil {
			logging.Error("save scheduled posts failed", map[string]any{"user": b.userID, "error": err.Error()})
		}
	}
}

// postScheduledTweet posts one tweet from the mixed strategy: a freshly
// generated text 40% of the time, the queue otherwise (and as fallback).
func (b *Bot) postScheduledTweet(ctx context.Context, now time.Time) {
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		logging.Error("load state failed", map[string]any{"user": b.userID, "error": err.Error()})
		return
	}

	if b.rand.Float64() < generateProb {
		if text, ok := b.generateFresh(ctx, st.PostedTweets); ok {
			if err := b.publish(ctx, text, "generated", now); err != nil {
				logging.Error("post failed", map[string]any{
					"user": b.userID, "source": "generated",
					"class": xclient.ErrorClass(err), "error": err.Error(),
				})
			}
			return
		}
	}

	queue, err := b.deps.Store.LoadQueue(ctx, b.userID)
	if err != nil {
		logging.Error("load queue failed", map[string]any{"user": b.userID, "error": err.Error()})
		return
	}
	if len(queue) == 0 {
		logging.Warn("tweet queue empty, skipping slot", map[string]any{"user": b.userID})
		return
	}

	idx := st.QueueIndex % len(queue)
	if len(queue) > 10 && b.rand.Float64() < skipAheadProb {
		max := len(queue) / 10
		if max > 5 {
			max = 5
		}
		idx = (idx + 1 + b.rand.Intn(max)) % len(queue)
	}

	if err := b.publish(ctx, queue[idx], "queue", now); err != nil {
		logging.Error("post failed", map[string]any{
			"user": b.userID, "source": "queue",
			"class": xclient.ErrorClass(err), "error": err.Error(),
		})
		return
	}

	st, err = b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		logging.Error("load state failed", map[string]any{"user": b.userID, "error": err.Error()})
		return
	}
	st.QueueIndex = (idx + 1) % len(queue)
	if err := b.deps.Store.Save(ctx, b.userID, st); err != nil {
		logging.Error("save state failed", map[string]any{"user": b.userID, "error": err.Error()})
	}
}

// generateFresh asks the generator for a text not near-duplicating the last
// posted tweets. Word-set overlap above the threshold counts as a repeat.
func (b *Bot) generateFresh(ctx context.Context, posted []string) (string, bool) {
	recent := posted
	if len(recent) > dedupWindow {
		recent = recent[len(recent)-dedupWindow:]
	}
	for i := 0; i < genAttempts; i++ {
		text, err := b.deps.Gen.Generate(ctx)
		if err != nil {
			logging.Warn("generation failed, falling back to queue", map[string]any{
				"user": b.userID, "error": err.Error(),
			})
			return "", false
		}
		dup := false
		for _, p := range recent {
			if util.Jaccard(text, p) > dupThreshold {
				dup = true
				break
			}
		}
		if !dup {
			return text, true
		}
	}
	logging.Warn("generator kept repeating itself, falling back to queue", map[string]any{"user": b.userID})
	return "", false
}

// publish validates, posts, and records one tweet.
func (b *Bot) publish(ctx context.Context, text, source string, now time.Time) error {
	if err := xclient.ValidateText(text); err != nil {
		return err
	}
	id, err := b.deps.Client.CreatePost(ctx, text)
	if err != nil {
		return err
	}
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		return err
	}
	st.PostedTweets = util.AppendBounded(st.PostedTweets, text, dedupWindow*2)
	st.Bump(postStat, now)
	if err := b.deps.Store.Save(ctx, b.userID, st); err != nil {
		return err
	}
	metrics.TweetsPosted.WithLabelValues(b.userID, source).Inc()
	logging.Info("tweet posted", map[string]any{"user": b.userID, "id": id, "source": source})
	return nil
}

// engagementScan searches each category keyword and replies to relevant
// tweets, pausing between replies and searches so the account reads human.
func (b *Bot) engagementScan(ctx context.Context) {
	start := b.now()
	defer metrics.ObserveScanDuration(start)

	for category, kws := range b.tables.Keywords {
		for _, kw := range kws {
			if ctx.Err() != nil {
				return
			}
			query := fmt.Sprintf(`"%s" -is:retweet -is:reply lang:en`, kw)
			tweets, err := b.deps.Client.SearchRecent(ctx, query, scanMaxResults)
			if err != nil {
				metrics.ScanErrors.WithLabelValues(b.userID, xclient.ErrorClass(err)).Inc()
				logging.Error("keyword search failed", map[string]any{
					"user": b.userID, "keyword": kw,
					"class": xclient.ErrorClass(err), "error": err.Error(),
				})
				if b.sleep(ctx, errorWait) != nil {
					return
				}
				continue
			}
			for _, tw := range tweets {
				done, proceed := b.considerReply(ctx, category, tw)
				if !proceed {
					return
				}
				if done {
					if b.sleep(ctx, replyPause) != nil {
						return
					}
				}
			}
			if b.sleep(ctx, searchPause) != nil {
				return
			}
		}
	}
}

// considerReply applies the engage/relevance/budget cascade to one
// candidate. It returns whether a reply was sent and whether the scan
// should continue.
func (b *Bot) considerReply(ctx context.Context, category string, tw model.Tweet) (replied, proceed bool) {
	if seen, err := b.deps.Store.HasReplied(ctx, b.userID, tw.ID); err != nil || seen {
		return false, err == nil
	}

	trigger := ""
	engage := triggers.HasEngagementTrigger(tw.Text, b.tables.Engagement)
	if tr, ok := triggers.MatchRipple(tw.Text, b.tables.Ripple); ok {
		engage = true
		trigger = tr.Phrase
	}
	if !engage && b.rand.Float64() >= engageProb {
		return false, true
	}
	if !relevance.IsRelevant(tw.Text, category, trigger) {
		return false, true
	}
	return b.reply(ctx, category, "engagement", tw), true
}

// reply selects a template, persists the selection, re-checks the budget,
// and sends. The recent-reply ring is saved before the network call so a
// crash mid-send cannot repeat the same text on restart.
func (b *Bot) reply(ctx context.Context, category, kind string, tw model.Tweet) bool {
	now := b.now()
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		logging.Error("load state failed", map[string]any{"user": b.userID, "error": err.Error()})
		return false
	}
	if ok, reason := govern.CanReply(&st, b.cfg.MaxRepliesPerHour, b.cfg.MaxRepliesPerDay, now); !ok {
		metrics.RateDenied.WithLabelValues(b.userID, "budget").Inc()
		logging.Info("reply skipped", map[string]any{"user": b.userID, "reason": reason})
		return false
	}

	text, err := b.picker.Select(category, tw.Text, st.RecentReplies)
	if err != nil {
		logging.Error("no reply template", map[string]any{"user": b.userID, "category": category})
		return false
	}
	st.RecentReplies = util.AppendBounded(st.RecentReplies, text, dedupWindow)
	if err := b.deps.Store.Save(ctx, b.userID, st); err != nil {
		logging.Error("save state failed", map[string]any{"user": b.userID, "error": err.Error()})
		return false
	}

	// the scan may have slept for minutes since the first check
	st, err = b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		return false
	}
	if ok, reason := govern.CanReply(&st, b.cfg.MaxRepliesPerHour, b.cfg.MaxRepliesPerDay, b.now()); !ok {
		metrics.RateDenied.WithLabelValues(b.userID, "budget").Inc()
		logging.Info("reply skipped", map[string]any{"user": b.userID, "reason": reason})
		return false
	}

	id, err := b.deps.Client.CreateReply(ctx, text, tw.ID)
	if err != nil {
		metrics.ScanErrors.WithLabelValues(b.userID, xclient.ErrorClass(err)).Inc()
		logging.Error("reply failed", map[string]any{
			"user": b.userID, "tweet": tw.ID,
			"class": xclient.ErrorClass(err), "error": err.Error(),
		})
		return false
	}
	if err := b.deps.Store.RecordReply(ctx, b.userID, tw.ID); err != nil {
		logging.Error("record reply failed", map[string]any{"user": b.userID, "error": err.Error()})
	}
	if err := b.deps.Store.IncrementStat(ctx, b.userID, replyStat, b.now()); err != nil {
		logging.Error("bump reply stat failed", map[string]any{"user": b.userID, "error": err.Error()})
	}
	metrics.RepliesSent.WithLabelValues(b.userID, kind).Inc()
	logging.Info("reply sent", map[string]any{"user": b.userID, "tweet": tw.ID, "reply_id": id, "kind": kind})
	return true
}

// rippleScan samples a few discourse keywords and joins conversations where
// a ripple trigger matches, at most one reply per tweet.
func (b *Bot) rippleScan(ctx context.Context) {
	perm := b.rand.Perm(len(triggers.RippleKeywords))
	n := rippleSample
	if n > len(perm) {
		n = len(perm)
	}
	for _, pi := range perm[:n] {
		if ctx.Err() != nil {
			return
		}
		kw := triggers.RippleKeywords[pi]
		query := fmt.Sprintf(`"%s" -is:retweet -is:reply lang:en`, kw)
		tweets, err := b.deps.Client.SearchRecent(ctx, query, rippleMaxResults)
		if err != nil {
			metrics.ScanErrors.WithLabelValues(b.userID, xclient.ErrorClass(err)).Inc()
			logging.Error("ripple search failed", map[string]any{
				"user": b.userID, "keyword": kw,
				"class": xclient.ErrorClass(err), "error": err.Error(),
			})
			if b.sleep(ctx, errorWait) != nil {
				return
			}
			continue
		}
		for _, tw := range tweets {
			if seen, err := b.deps.Store.HasReplied(ctx, b.userID, tw.ID); err != nil || seen {
				if err != nil {
					return
				}
				continue
			}
			tr, ok := triggers.MatchRipple(tw.Text, b.tables.Ripple)
			if !ok {
				continue
			}
			if b.reply(ctx, tr.Phrase, "ripple", tw) {
				if b.sleep(ctx, ripplePause) != nil {
					return
				}
			}
		}
		if b.sleep(ctx, rippleSearchPause) != nil {
			return
		}
	}
}

func (b *Bot) postNews(ctx context.Context, now time.Time) {
	text := b.deps.News.MarketTweet(ctx)
	if err := b.publish(ctx, text, "news", now); err != nil {
		logging.Error("news post failed", map[string]any{
			"user": b.userID, "class": xclient.ErrorClass(err), "error": err.Error(),
		})
	}
}

func (b *Bot) postShowcase(ctx context.Context, now time.Time) {
	p := places.Pick(b.rand)
	if err := b.publish(ctx, places.Tweet(p), "showcase", now); err != nil {
		logging.Error("showcase post failed", map[string]any{
			"user": b.userID, "class": xclient.ErrorClass(err), "error": err.Error(),
		})
	}
}

func (b *Bot) logDailyStats(ctx context.Context, now time.Time) {
	st, err := b.deps.Store.Load(ctx, b.userID)
	if err != nil {
		return
	}
	logging.Info("daily stats", map[string]any{
		"user":          b.userID,
		"date":          now.Format(store.DateLayout),
		"tweets_today":  st.StatToday(postStat, now),
		"replies_today": st.StatToday(replyStat, now),
		"tweets_total":  st.TweetsPosted,
		"replies_total": st.RepliesSent,
	})
}
