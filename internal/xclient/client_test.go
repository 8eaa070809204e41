package xclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
)

// helper to create a client pointed at a test server
func newTestClient(ts *httptest.Server) *HTTPClient {
	c := New(model.CredentialBundle{BearerToken: "test"})
	c.httpClient = ts.Client()
	c.baseURL = ts.URL
	c.maxAttempts = 3
	c.baseBackoff = 10 * time.Millisecond
	return c
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.SearchRecent(context.Background(), "buy land", 10)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestPersistent429ReturnsRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.SearchRecent(context.Background(), "x", 10)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestCreatePostErrorTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
	}
	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := newTestClient(ts)
		_, err := c.CreatePost(context.Background(), "hello")
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		ts.Close()
	}
}

func TestCreatePostValidatesBeforeNetwork(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := newTestClient(ts)
	if _, err := c.CreatePost(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	long := strings.Repeat("a", 300)
	if _, err := c.CreatePost(context.Background(), long); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for long text, got %v", err)
	}
	if called {
		t.Fatal("network call made for invalid text")
	}
}

func TestCreateReplySendsReplyID(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"999"}}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	id, err := c.CreateReply(context.Background(), "a reply", "123")
	if err != nil {
		t.Fatal(err)
	}
	if id != "999" {
		t.Fatalf("expected id 999, got %q", id)
	}
	if !strings.Contains(gotBody, `"in_reply_to_tweet_id":"123"`) {
		t.Fatalf("reply id missing from body: %s", gotBody)
	}
}

func TestErrorClass(t *testing.T) {
	if got := ErrorClass(ErrForbidden); got != "forbidden" {
		t.Fatalf("got %q", got)
	}
	if got := ErrorClass(errors.New("boom")); got != "generic" {
		t.Fatalf("got %q", got)
	}
}
