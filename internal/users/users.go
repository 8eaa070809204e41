// Package users manages tenant profiles and their bot configuration.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/secrets"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/triggers"
)

var ErrNotFound = errors.New("user not found")

// DefaultBotConfig is the configuration a new tenant starts with.
func DefaultBotConfig() model.BotConfig {
	return model.BotConfig{
		TweetsPerDay:       6,
		PostingTimes:       []string{"16:00", "20:00", "00:00", "04:00", "08:00", "12:00"},
		EngagementInterval: 15,
		MaxRepliesPerHour:  5,
		MaxRepliesPerDay:   20,
		Keywords:           triggers.DefaultKeywords(),
	}
}

// Manager is the tenant registry.
type Manager struct {
	store *store.Store
	vault *secrets.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// WithVault attaches the credential vault so Delete also removes the
// tenant's stored credentials.
func (m *Manager) WithVault(v *secrets.Store) *Manager {
	m.vault = v
	return m
}

// Create registers a new tenant. An empty userID gets a generated one.
func (m *Manager) Create(ctx context.Context, userID, username, email, twitterID string) (model.User, error) {
	if userID == "" {
		userID = uuid.NewString()
	}
	if _, err := m.store.GetUser(ctx, userID); err == nil {
		return model.User{}, fmt.Errorf("user %s already exists", userID)
	}
	u := model.User{
		UserID:    userID,
		Username:  username,
		Email:     email,
		TwitterID: twitterID,
		CreatedAt: time.Now().UTC(),
		BotConfig: DefaultBotConfig(),
	}
	if err := m.store.PutUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Get returns a tenant profile.
func (m *Manager) Get(ctx context.Context, userID string) (model.User, error) {
	u, err := m.store.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return u, err
}

// List returns all tenant profiles.
func (m *Manager) List(ctx context.Context) ([]model.User, error) {
	return m.store.ListUsers(ctx)
}

// SetTwitterConnected flags the tenant's platform connection.
func (m *Manager) SetTwitterConnected(ctx context.Context, userID string, connected bool) error {
	return m.update(ctx, userID, func(u *model.User) { u.TwitterConnected = connected })
}

// SetBotActive flags whether the tenant's loop should run.
func (m *Manager) SetBotActive(ctx context.Context, userID string, active bool) error {
	return m.update(ctx, userID, func(u *model.User) { u.BotActive = active })
}

// UpdateConfig merges cfg into the tenant's bot configuration. Zero fields
// keep their current values.
func (m *Manager) UpdateConfig(ctx context.Context, userID string, cfg model.BotConfig) error {
	return m.update(ctx, userID, func(u *model.User) {
		if cfg.TweetsPerDay > 0 {
			u.BotConfig.TweetsPerDay = cfg.TweetsPerDay
		}
		if len(cfg.PostingTimes) > 0 {
			u.BotConfig.PostingTimes = cfg.PostingTimes
		}
		if cfg.EngagementInterval > 0 {
			u.BotConfig.EngagementInterval = cfg.EngagementInterval
		}
		if cfg.MaxRepliesPerHour > 0 {
			u.BotConfig.MaxRepliesPerHour = cfg.MaxRepliesPerHour
		}
		if cfg.MaxRepliesPerDay > 0 {
			u.BotConfig.MaxRepliesPerDay = cfg.MaxRepliesPerDay
		}
		if len(cfg.Keywords) > 0 {
			u.BotConfig.Keywords = cfg.Keywords
		}
	})
}

// Config returns the tenant's bot configuration with defaults filled in.
func (m *Manager) Config(ctx context.Context, userID string) (model.BotConfig, error) {
	u, err := m.Get(ctx, userID)
	if err != nil {
		return model.BotConfig{}, err
	}
	cfg := u.BotConfig
	def := DefaultBotConfig()
	if cfg.TweetsPerDay == 0 {
		cfg.TweetsPerDay = def.TweetsPerDay
	}
	if len(cfg.PostingTimes) == 0 {
		cfg.PostingTimes = def.PostingTimes
	}
	if cfg.EngagementInterval == 0 {
		cfg.EngagementInterval = def.EngagementInterval
	}
	if cfg.MaxRepliesPerHour == 0 {
		cfg.MaxRepliesPerHour = def.MaxRepliesPerHour
	}
	if cfg.MaxRepliesPerDay == 0 {
		cfg.MaxRepliesPerDay = def.MaxRepliesPerDay
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = def.Keywords
	}
	return cfg, nil
}

// FindByTwitterID returns the tenant connected to a platform account.
func (m *Manager) FindByTwitterID(ctx context.Context, twitterID string) (model.User, error) {
	all, err := m.store.ListUsers(ctx)
	if err != nil {
		return model.User{}, err
	}
	for _, u := range all {
		if u.TwitterID == twitterID {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("twitter id %s: %w", twitterID, ErrNotFound)
}

// Delete removes the tenant and everything it owns, including any stored
// credentials when a vault is attached.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	if err := m.store.DeleteTenant(ctx, userID); err != nil {
		return err
	}
	if m.vault != nil {
		return m.vault.Delete(userID)
	}
	return nil
}

func (m *Manager) update(ctx context.Context, userID string, fn func(*model.User)) error {
	u, err := m.Get(ctx, userID)
	if err != nil {
		return err
	}
	fn(&u)
	return m.store.PutUser(ctx, u)
}
