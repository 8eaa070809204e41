// Package govern decides, from wall-clock time and per-tenant counters,
// which actions run now and whether they are allowed.
package govern

import (
	"fmt"
	"time"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
)

const replyStat = "total_replies_sent"

// ScheduledWindow is the slack around a time-stamped post's due moment.
const ScheduledWindow = 60 * time.Second

// CanReply checks the tenant's reply budget against both configured
// ceilings. Day exhaustion is checked first so it keeps denying for the
// rest of the calendar date no matter what the hour bucket says. A ceiling
// of zero or less is unlimited.
func CanReply(st *store.State, maxPerHour, maxPerDay int, now time.Time) (bool, string) {
	if maxPerDay > 0 {
		if day := st.StatToday(replyStat, now); day >= maxPerDay {
			return false, fmt.Sprintf("daily reply limit reached (%d)", day)
		}
	}
	if maxPerHour > 0 {
		if hour := st.StatThisHour(replyStat, now); hour >= maxPerHour {
			return false, fmt.Sprintf("hourly reply limit reached (%d)", hour)
		}
	}
	return true, ""
}

// ParseHHMM parses a "15:04" fire time.
func ParseHHMM(s string) (hour, min int, err error) {
	if _, err = fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return 0, 0, fmt.Errorf("bad fire time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("bad fire time %q", s)
	}
	return hour, min, nil
}

// DuePostTimes returns the fire times whose most recent occurrence falls in
// (lastTick, now]. A tick gap that crosses midnight still picks up late
// fire times from the previous day. Malformed entries are skipped.
func DuePostTimes(times []string, lastTick, now time.Time) []string {
	var due []string
	for _, ft := range times {
		h, m, err := ParseHHMM(ft)
		if err != nil {
			continue
		}
		occ := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
		if occ.After(now) {
			occ = occ.AddDate(0, 0, -1)
		}
		if occ.After(lastTick) && !occ.After(now) {
			due = append(due, ft)
		}
	}
	return due
}

// MissedTimes returns fire times whose HH:MM is at or before now today.
// Used at loop start: when the tenant has no posts recorded today, the
// missed slots trigger one catch-up post (one total, not one per slot).
func MissedTimes(times []string, now time.Time) []string {
	var missed []string
	for _, ft := range times {
		h, m, err := ParseHHMM(ft)
		if err != nil {
			continue
		}
		if h < now.Hour() || (h == now.Hour() && m <= now.Minute()) {
			missed = append(missed, ft)
		}
	}
	return missed
}

// DueInterval reports whether a periodic action last run at last is due.
// A zero last means it has never run and is due immediately.
func DueInterval(last time.Time, every time.Duration, now time.Time) bool {
	if every <= 0 {
		return false
	}
	return last.IsZero() || now.Sub(last) >= every
}

// ScheduledDue reports whether a "2006-01-02 15:04" timestamp is within
// the due window of now. Malformed timestamps are never due.
func ScheduledDue(dt string, now time.Time) bool {
	t, err := time.ParseInLocation("2006-01-02 15:04", dt, now.Location())
	if err != nil {
		return false
	}
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	return d <= ScheduledWindow
}
