package replypick

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/triggers"
)

func testTables() triggers.Tables {
	return triggers.Tables{
		Templates: map[string][]string{
			"betting": {"b1", "b2", "b3"},
			"land":    {"l1", "l2"},
		},
		Ripple: []triggers.RippleTrigger{
			{Phrase: "inflation", Replies: []string{"r1", "r2"}},
		},
	}
}

func newTestSelector() *Selector {
	s := New(testTables())
	s.Rand = rand.New(rand.NewSource(1))
	return s
}

func TestSelectAvoidsRecentlyUsed(t *testing.T) {
	s := newTestSelector()
	got, err := s.Select("betting", "", []string{"b1", "b3"})
	require.NoError(t, err)
	assert.Equal(t, "b2", got)
}

func TestSelectExhaustionResetsPool(t *testing.T) {
	s := newTestSelector()
	got, err := s.Select("betting", "", []string{"b1", "b2", "b3"})
	require.NoError(t, err)
	assert.Contains(t, []string{"b1", "b2", "b3"}, got)
}

func TestSelectNeverReturnsUsedUnlessExhausted(t *testing.T) {
	s := newTestSelector()
	for i := 0; i < 200; i++ {
		got, err := s.Select("betting", "", []string{"b2"})
		require.NoError(t, err)
		assert.NotEqual(t, "b2", got)
	}
}

func TestSelectTriggerPoolWins(t *testing.T) {
	s := newTestSelector()
	got, err := s.Select("betting", "inflation is wild this year", nil)
	require.NoError(t, err)
	assert.Contains(t, []string{"r1", "r2"}, got)
}

func TestSelectFallsBackToDefaultCategory(t *testing.T) {
	s := newTestSelector()
	got, err := s.Select("unknown_category", "", nil)
	require.NoError(t, err)
	assert.Contains(t, []string{"l1", "l2"}, got)
}

func TestSelectNoTemplatesAnywhere(t *testing.T) {
	s := New(triggers.Tables{Templates: map[string][]string{}})
	_, err := s.Select("betting", "", nil)
	assert.ErrorIs(t, err, ErrNoTemplates)
}
