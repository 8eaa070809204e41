// Package news fetches market headlines from the configured source page and
// turns one into tweet text. Extraction failures fall back to a generic
// market-update tweet so the posting slot is never wasted.
package news

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const fetchTimeout = 10 * time.Second

// Fetcher pulls headlines from one source URL.
type Fetcher struct {
	SourceURL  string
	HTTPClient *http.Client
	Rand       *rand.Rand
}

func New(sourceURL string) *Fetcher {
	return &Fetcher{
		SourceURL:  sourceURL,
		HTTPClient: &http.Client{Timeout: fetchTimeout},
		Rand:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// MarketTweet returns tweet text built from a headline on the source page,
// or the generic fallback when nothing usable is found.
func (f *Fetcher) MarketTweet(ctx context.Context) string {
	if title := f.fetchHeadline(ctx); title != "" {
		return fmt.Sprintf("📊 %s\n\n%s", title, f.SourceURL)
	}
	return fmt.Sprintf("📊 Nigerian Stock Market Update\n\nStay informed about NGX market movements: %s\n\n#NGX #NigeriaStocks", f.SourceURL)
}

func (f *Fetcher) fetchHeadline(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.SourceURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return ""
	}
	u, err := url.Parse(f.SourceURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return ""
	}
	candidates := headlines(article.Title, article.TextContent)
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) > 5 {
		candidates = candidates[:5] // avoid stale items further down the page
	}
	return candidates[f.Rand.Intn(len(candidates))]
}

// headlines collects market-looking lines from the extracted article text.
func headlines(title, text string) []string {
	var out []string
	if isMarketHeadline(title) {
		out = append(out, truncate(title, 200))
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 30 && isMarketHeadline(line) {
			out = append(out, truncate(line, 200))
		}
	}
	return out
}

func isMarketHeadline(s string) bool {
	ls := strings.ToLower(s)
	for _, w := range []string{"stock", "market", "ngx", "index", "trading", "equity"} {
		if strings.Contains(ls, w) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
