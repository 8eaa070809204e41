package xclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/metrics"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
)

const maxTweetRunes = 280

// Client defines the X API surface the bot uses.
type Client interface {
	CreatePost(ctx context.Context, text string) (string, error)
	CreateReply(ctx context.Context, text, inReplyTo string) (string, error)
	SearchRecent(ctx context.Context, query string, maxResults int) ([]model.Tweet, error)
}

// HTTPClient talks to X API v2 with the tenant's credentials.
type HTTPClient struct {
	baseURL     string
	creds       model.CredentialBundle
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func New(creds model.CredentialBundle) *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/2",
		creds:       creds,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("X_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("X_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

// auth sets the bearer header. Write calls use the user access token when
// present; reads fall back to the app bearer token.
func (c *HTTPClient) auth(req *http.Request, write bool) {
	token := c.creds.BearerToken
	if write && c.creds.AccessToken != "" {
		token = c.creds.AccessToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
}

// ValidateText rejects malformed tweet text before any network call.
func ValidateText(text string) error {
	if text == "" {
		return fmt.Errorf("empty text: %w", ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > maxTweetRunes {
		return fmt.Errorf("text is %d runes, max %d: %w", n, maxTweetRunes, ErrValidation)
	}
	return nil
}

// CreatePost posts a standalone tweet and returns its id.
func (c *HTTPClient) CreatePost(ctx context.Context, text string) (string, error) {
	return c.createTweet(ctx, text, "")
}

// CreateReply posts a reply to inReplyTo and returns the reply's id.
func (c *HTTPClient) CreateReply(ctx context.Context, text, inReplyTo string) (string, error) {
	if inReplyTo == "" {
		return "", fmt.Errorf("empty in_reply_to id: %w", ErrValidation)
	}
	return c.createTweet(ctx, text, inReplyTo)
}

func (c *HTTPClient) createTweet(ctx context.Context, text, inReplyTo string) (string, error) {
	if err := ValidateText(text); err != nil {
		return "", err
	}
	body := map[string]any{"text": text}
	if inReplyTo != "" {
		body["reply"] = map[string]string{"in_reply_to_tweet_id": inReplyTo}
	}
	b, _ := json.Marshal(body)
	u := c.baseURL + "/tweets"
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	c.auth(req, true)
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", classify(resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	return raw.Data.ID, nil
}

// SearchRecent searches recent tweets by query.
func (c *HTTPClient) SearchRecent(ctx context.Context, query string, maxResults int) ([]model.Tweet, error) {
	u := fmt.Sprintf("%s/tweets/search/recent?max_results=%d&tweet.fields=created_at,public_metrics,lang,author_id&query=%s",
		c.baseURL, clamp(maxResults, 10, 100), url.QueryEscape(query))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req, false)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, classify(resp.StatusCode)
	}
	var raw struct {
		Data []struct {
			ID            string    `json:"id"`
			Text          string    `json:"text"`
			CreatedAt     time.Time `json:"created_at"`
			Lang          string    `json:"lang"`
			AuthorID      string    `json:"author_id"`
			PublicMetrics struct {
				LikeCount    int `json:"like_count"`
				ReplyCount   int `json:"reply_count"`
				RetweetCount int `json:"retweet_count"`
				QuoteCount   int `json:"quote_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Tweet, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, model.Tweet{
			ID:           d.ID,
			Text:         d.Text,
			CreatedAt:    d.CreatedAt,
			Language:     d.Lang,
			AuthorID:     d.AuthorID,
			LikeCount:    d.PublicMetrics.LikeCount,
			ReplyCount:   d.PublicMetrics.ReplyCount,
			RetweetCount: d.PublicMetrics.RetweetCount,
			QuoteCount:   d.PublicMetrics.QuoteCount,
		})
	}
	return out, nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		attemptReq := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attemptReq.Body = body
		}
		resp, err := c.httpClient.Do(attemptReq)
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				lastStatus = resp.StatusCode
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				metrics.IncAPIRetry(req.URL.Path)
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	if lastStatus == http.StatusTooManyRequests {
		return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, ErrRateLimited)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
