// Package supervisor owns the lifecycle of tenant loops: one goroutine per
// started tenant, cooperative stop, and restart-on-boot for tenants whose
// bot was active when the process last ran.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/bot"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/config"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/generate"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/logging"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/metrics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/news"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/secrets"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/users"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/xclient"
)

// stopTimeout bounds how long Stop waits for a loop to acknowledge
// cancellation before giving up on it.
const stopTimeout = 5 * time.Second

var ErrAlreadyRunning = errors.New("bot already running")

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Status describes one tenant's loop from the supervisor's point of view.
type Status struct {
	Exists  bool `json:"exists"`
	Running bool `json:"running"`
}

// Supervisor maps tenant IDs to running loops. All map access is under mu;
// loops themselves run unlocked.
type Supervisor struct {
	store *store.Store
	users *users.Manager
	gen   generate.Generator
	news  *news.Fetcher

	// seams for tests
	loadCreds func(userID string) (model.CredentialBundle, error)
	newClient func(creds model.CredentialBundle) xclient.Client

	mu   sync.Mutex
	bots map[string]*handle
}

func New(st *store.Store, um *users.Manager, cfg config.Config) (*Supervisor, error) {
	vault, err := secrets.Open(cfg.Secrets.Dir, cfg.Secrets.Key)
	if err != nil {
		return nil, fmt.Errorf("open secrets store: %w", err)
	}
	return &Supervisor{
		store:     st,
		users:     um,
		gen:       generate.NewFromConfig(cfg.LLM),
		news:      news.New(cfg.News.SourceURL),
		loadCreds: vault.Load,
		newClient: func(creds model.CredentialBundle) xclient.Client { return xclient.New(creds) },
		bots:      map[string]*handle{},
	}, nil
}

// Start launches the tenant's loop. It fails fast on unknown tenants and
// missing credentials; once the goroutine is up, remote errors are the
// loop's problem, not the caller's.
func (s *Supervisor) Start(ctx context.Context, userID string) error {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return err
	}
	creds, err := s.loadCreds(userID)
	if err != nil {
		return fmt.Errorf("credentials for %s: %w", userID, err)
	}
	botCfg, err := s.users.Config(ctx, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if h, ok := s.bots[userID]; ok && !closed(h.done) {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(context.Background())
	h := &handle{cancel: cancel, done: make(chan struct{})}
	s.bots[userID] = h
	s.mu.Unlock()

	b := bot.New(userID, botCfg, bot.Deps{
		Store:  s.store,
		Client: s.newClient(creds),
		Gen:    s.gen,
		News:   s.news,
	})

	metrics.ActiveBots.Inc()
	if err := s.users.SetBotActive(ctx, userID, true); err != nil {
		logging.Warn("could not persist active flag", map[string]any{"user": userID, "error": err.Error()})
	}

	go func() {
		defer func() {
			s.mu.Lock()
			if s.bots[userID] == h {
				delete(s.bots, userID)
			}
			s.mu.Unlock()
			metrics.ActiveBots.Dec()
			close(h.done)
		}()
		if err := b.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("bot exited", map[string]any{"user": userID, "error": err.Error()})
		}
	}()
	logging.Info("bot started", map[string]any{"user": userID})
	return nil
}

// Stop cancels the tenant's loop and waits up to stopTimeout for it to
// exit. A tenant with no running loop is not an error.
func (s *Supervisor) Stop(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	h, ok := s.bots[userID]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	h.cancel()
	select {
	case <-h.done:
	case <-time.After(stopTimeout):
		logging.Warn("bot did not stop in time", map[string]any{"user": userID})
		s.mu.Lock()
		if s.bots[userID] == h {
			delete(s.bots, userID)
		}
		s.mu.Unlock()
	}

	if err := s.users.SetBotActive(ctx, userID, false); err != nil {
		logging.Warn("could not persist active flag", map[string]any{"user": userID, "error": err.Error()})
	}
	logging.Info("bot stopped", map[string]any{"user": userID})
	return true, nil
}

// Restart stops the loop if running and starts it fresh, picking up any
// config or credential changes.
func (s *Supervisor) Restart(ctx context.Context, userID string) error {
	if _, err := s.Stop(ctx, userID); err != nil {
		return err
	}
	return s.Start(ctx, userID)
}

// Status reports whether the tenant exists and whether its loop runs now.
func (s *Supervisor) Status(ctx context.Context, userID string) (Status, error) {
	var st Status
	_, err := s.users.Get(ctx, userID)
	switch {
	case err == nil:
		st.Exists = true
	case errors.Is(err, users.ErrNotFound):
	default:
		return st, err
	}
	s.mu.Lock()
	if h, ok := s.bots[userID]; ok && !closed(h.done) {
		st.Running = true
	}
	s.mu.Unlock()
	return st, nil
}

// ListActive returns the IDs of tenants with a live loop, sorted.
func (s *Supervisor) ListActive() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.bots))
	for id, h := range s.bots {
		if !closed(h.done) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// StartAll starts loops for every tenant whose record says the bot should
// be active. Tenants that fail to start are logged and skipped so one bad
// credential file cannot block the rest.
func (s *Supervisor) StartAll(ctx context.Context) error {
	all, err := s.users.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		if !u.BotActive {
			continue
		}
		if err := s.Start(ctx, u.UserID); err != nil {
			logging.Error("could not resume bot", map[string]any{"user": u.UserID, "error": err.Error()})
		}
	}
	return nil
}

// StopAll cancels every running loop, used at process shutdown.
func (s *Supervisor) StopAll(ctx context.Context) {
	for _, id := range s.ListActive() {
		if _, err := s.Stop(ctx, id); err != nil {
			logging.Error("stop failed", map[string]any{"user": id, "error": err.Error()})
		}
	}
}

func closed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
