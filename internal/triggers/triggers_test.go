package triggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallsBackToDefaults(t *testing.T) {
	tb := Resolve(nil, nil)
	require.NotEmpty(t, tb.Keywords["land"])
	require.NotEmpty(t, tb.Templates["betting"])
	assert.Equal(t, EngagementTriggers, tb.Engagement)
}

func TestResolveOverridesReplaceWholeTable(t *testing.T) {
	kw := map[string][]string{"solar": {"solar panels lagos"}}
	tb := Resolve(kw, nil)
	assert.Equal(t, kw, tb.Keywords)
	// defaults untouched for templates
	assert.NotEmpty(t, tb.Templates[DefaultCategory])
}

func TestMatchRippleFirstWins(t *testing.T) {
	// "housing" precedes "property" in table order; text contains both
	tr, ok := MatchRipple("Housing and property prices keep climbing", Ripple)
	require.True(t, ok)
	assert.Equal(t, "housing", tr.Phrase)

	_, ok = MatchRipple("nothing topical here", Ripple)
	assert.False(t, ok)
}

func TestHasEngagementTrigger(t *testing.T) {
	assert.True(t, HasEngagementTrigger("I really Want To Invest but don't know how", EngagementTriggers))
	assert.False(t, HasEngagementTrigger("watching the game tonight", EngagementTriggers))
}
