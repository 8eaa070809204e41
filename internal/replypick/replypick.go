// Package replypick chooses a non-repeated reply text for a matched
// category or trigger.
package replypick

import (
	"errors"
	"math/rand"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/triggers"
)

// recentWindow is how many of the caller's most recent replies are
// considered "used" when filtering candidates.
const recentWindow = 50

var ErrNoTemplates = errors.New("no reply templates available")

// Selector picks replies from a resolved table set. The rand source is a
// field so tests can pin it.
type Selector struct {
	Tables triggers.Tables
	Rand   *rand.Rand
}

func New(tables triggers.Tables) *Selector {
	return &Selector{Tables: tables, Rand: rand.New(rand.NewSource(rand.Int63()))}
}

// Select returns a reply for category, preferring the trigger-specific pool
// when tweetText matched a ripple trigger. recentlyUsed is the caller's
// recent-reply ring; only its last 50 entries count as used. A candidate
// from recentlyUsed is returned only once the whole pool is exhausted.
func (s *Selector) Select(category, tweetText string, recentlyUsed []string) (string, error) {
	var pool []string
	if tweetText != "" {
		if tr, ok := triggers.MatchRipple(tweetText, s.Tables.Ripple); ok {
			pool = tr.Replies
		}
	}
	if len(pool) == 0 {
		pool = s.Tables.Templates[category]
	}
	if len(pool) == 0 {
		pool = s.Tables.Templates[triggers.DefaultCategory]
	}
	if len(pool) == 0 {
		return "", ErrNoTemplates
	}

	recent := recentlyUsed
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	used := make(map[string]struct{}, len(recent))
	for _, r := range recent {
		used[r] = struct{}{}
	}

	unused := make([]string, 0, len(pool))
	for _, c := range pool {
		if _, ok := used[c]; !ok {
			unused = append(unused, c)
		}
	}
	if len(unused) == 0 {
		// genuine novelty exhausted: reset to the full pool, shuffled
		unused = append([]string(nil), pool...)
		s.Rand.Shuffle(len(unused), func(i, j int) { unused[i], unused[j] = unused[j], unused[i] })
	}
	return unused[s.Rand.Intn(len(unused))], nil
}
