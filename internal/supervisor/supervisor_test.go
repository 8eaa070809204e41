package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/generate"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/model"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/news"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/secrets"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/store"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/users"
	"github.com/ColourfulRhythm/subxtwitterbo/internal/xclient"
)

type nopClient struct{}

func (nopClient) CreatePost(ctx context.Context, text string) (string, error) { return "p1", nil }
func (nopClient) CreateReply(ctx context.Context, text, inReplyTo string) (string, error) {
	return "r1", nil
}
func (nopClient) SearchRecent(ctx context.Context, query string, maxResults int) ([]model.Tweet, error) {
	return nil, nil
}

func testCreds() model.CredentialBundle {
	return model.CredentialBundle{
		APIKey: "k", APISecret: "s", AccessToken: "at",
		AccessTokenSecret: "ats", BearerToken: "bt",
	}
}

func newTestSupervisor(t *testing.T) (*Supervisor, *users.Manager) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	um := users.NewManager(s)
	sup := &Supervisor{
		store:     s,
		users:     um,
		gen:       generate.NewTemplate(),
		news:      news.New(""),
		loadCreds: func(string) (model.CredentialBundle, error) { return testCreds(), nil },
		newClient: func(model.CredentialBundle) xclient.Client { return nopClient{} },
		bots:      map[string]*handle{},
	}
	t.Cleanup(func() { sup.StopAll(context.Background()) })
	return sup, um
}

func TestStartUnknownUser(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	err := sup.Start(context.Background(), "nobody")
	assert.ErrorIs(t, err, users.ErrNotFound)
}

func TestStartMissingCredentials(t *testing.T) {
	ctx := context.Background()
	sup, um := newTestSupervisor(t)
	_, err := um.Create(ctx, "u1", "ada", "", "")
	require.NoError(t, err)
	sup.loadCreds = func(string) (model.CredentialBundle, error) {
		return model.CredentialBundle{}, secrets.ErrNotFound
	}
	err = sup.Start(ctx, "u1")
	assert.ErrorIs(t, err, secrets.ErrNotFound)
	assert.Empty(t, sup.ListActive())
}

func TestStartStopLifecycle(t *testing.T) {
	ctx := context.Background()
	sup, um := newTestSupervisor(t)
	_, err := um.Create(ctx, "u1", "ada", "", "")
	require.NoError(t, err)

	require.NoError(t, sup.Start(ctx, "u1"))
	st, err := sup.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.True(t, st.Running)
	assert.Equal(t, []string{"u1"}, sup.ListActive())

	assert.ErrorIs(t, sup.Start(ctx, "u1"), ErrAlreadyRunning)

	u, err := um.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.BotActive)

	stopped, err := sup.Stop(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Empty(t, sup.ListActive())

	st, err = sup.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Exists)
	assert.False(t, st.Running)

	u, err = um.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.BotActive)
}

func TestStopNotRunning(t *testing.T) {
	ctx := context.Background()
	sup, um := newTestSupervisor(t)
	_, err := um.Create(ctx, "u1", "ada", "", "")
	require.NoError(t, err)

	stopped, err := sup.Stop(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestRestart(t *testing.T) {
	ctx := context.Background()
	sup, um := newTestSupervisor(t)
	_, err := um.Create(ctx, "u1", "ada", "", "")
	require.NoError(t, err)

	require.NoError(t, sup.Start(ctx, "u1"))
	require.NoError(t, sup.Restart(ctx, "u1"))
	st, err := sup.Status(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Running)
}

func TestStatusUnknownUser(t *testing.T) {
	sup, _ := newTestSupervisor(t)
	st, err := sup.Status(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, st.Exists)
	assert.False(t, st.Running)
}

func TestStartAllResumesOnlyActive(t *testing.T) {
	ctx := context.Background()
	sup, um := newTestSupervisor(t)
	_, err := um.Create(ctx, "u1", "ada", "", "")
	require.NoError(t, err)
	_, err = um.Create(ctx, "u2", "bayo", "", "")
	require.NoError(t, err)
	require.NoError(t, um.SetBotActive(ctx, "u1", true))

	require.NoError(t, sup.StartAll(ctx))
	assert.Equal(t, []string{"u1"}, sup.ListActive())

	sup.StopAll(ctx)
	assert.Empty(t, sup.ListActive())
	// loops are gone, not just hidden
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, sup.ListActive())
}
