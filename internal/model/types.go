package model

import "time"

// Tweet represents a subset of X tweet fields used by the bot.
type Tweet struct {
	ID           string
	AuthorID     string
	Text         string
	CreatedAt    time.Time
	LikeCount    int
	ReplyCount   int
	RetweetCount int
	QuoteCount   int
	Language     string
}

// BotConfig is the per-tenant bot configuration. Zero values fall back to
// the defaults in users.DefaultBotConfig.
type BotConfig struct {
	TweetsPerDay       int                 `json:"tweets_per_day" yaml:"tweetsPerDay"`
	PostingTimes       []string            `json:"posting_times" yaml:"postingTimes"`
	EngagementInterval int                 `json:"engagement_interval" yaml:"engagementInterval"` // minutes
	MaxRepliesPerHour  int                 `json:"max_replies_per_hour" yaml:"maxRepliesPerHour"`
	MaxRepliesPerDay   int                 `json:"max_replies_per_day" yaml:"maxRepliesPerDay"`
	Keywords           map[string][]string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// User is a tenant profile record.
type User struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	TwitterID        string    `json:"twitter_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	TwitterConnected bool      `json:"twitter_connected"`
	BotActive        bool      `json:"bot_active"`
	BotConfig        BotConfig `json:"bot_config"`
}

// ScheduledPost is a one-shot time-stamped post owned by a tenant.
type ScheduledPost struct {
	Text     string `json:"tweet"`
	DateTime string `json:"datetime"` // "2006-01-02 15:04"
	Status   string `json:"status"`   // pending | posted | error
	PostedAt string `json:"posted_at,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	StatusPending = "pending"
	StatusPosted  = "posted"
	StatusError   = "error"
)

// CredentialBundle holds the five X API credential fields a tenant needs.
type CredentialBundle struct {
	APIKey            string `json:"api_key"`
	APISecret         string `json:"api_secret"`
	AccessToken       string `json:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"`
	BearerToken       string `json:"bearer_token"`
}
