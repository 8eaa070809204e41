package news

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

const samplePage = `<!DOCTYPE html><html><head><title>NGX equity index closes higher on banking stocks</title></head>
<body><article>
<p>The NGX All-Share index gained 1.2% as trading volumes in equity markets rose across the board this week.</p>
<p>Unrelated filler paragraph about the weather and nothing else of note here.</p>
</article></body></html>`

func testFetcher(ts *httptest.Server) *Fetcher {
	f := New(ts.URL)
	f.HTTPClient = ts.Client()
	f.Rand = rand.New(rand.NewSource(1))
	return f
}

func TestMarketTweetUsesHeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	got := testFetcher(ts).MarketTweet(context.Background())
	if !strings.HasPrefix(got, "📊 ") {
		t.Fatalf("unexpected tweet: %q", got)
	}
	if strings.Contains(got, "Stay informed") {
		t.Fatalf("fallback used despite headline: %q", got)
	}
}

func TestMarketTweetFallsBackOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	got := testFetcher(ts).MarketTweet(context.Background())
	if !strings.Contains(got, "Stay informed") {
		t.Fatalf("expected fallback tweet, got %q", got)
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	s := "Naira gains as markets rally ₦₦₦₦₦"
	got := truncate(s, 31)
	if !utf8.ValidString(got) {
		t.Fatalf("cut mid-rune: %q", got)
	}
	if utf8.RuneCountInString(got) != 31 {
		t.Fatalf("expected 31 runes, got %d", utf8.RuneCountInString(got))
	}
	if truncate("short", 200) != "short" {
		t.Fatal("short text must pass through")
	}
}

func TestIsMarketHeadline(t *testing.T) {
	if !isMarketHeadline("NGX index rallies") {
		t.Fatal("expected match")
	}
	if isMarketHeadline("rain expected tomorrow") {
		t.Fatal("unexpected match")
	}
}
