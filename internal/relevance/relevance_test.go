package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFalsePositiveRejected(t *testing.T) {
	// travel-sense "landed" with no relevant words
	assert.False(t, IsRelevant("I just landed at the airport", "land", ""))
}

func TestFalsePositiveRescuedByRelevantWord(t *testing.T) {
	assert.True(t, IsRelevant("Just landed in Lagos, time to buy land before prices move", "land", ""))
}

func TestPositiveIndicatorAccepts(t *testing.T) {
	assert.True(t, IsRelevant("Where can I buy affordable land in Lagos?", "land", ""))
	assert.True(t, IsRelevant("Tired of losing, how to invest my salary?", "investment", ""))
}

func TestTriggerContextWindow(t *testing.T) {
	// trigger present but surrounded by off-topic context
	assert.False(t, IsRelevant("the youth of today only watch skits all day long honestly", "co_ownership", "youth"))
	// trigger with on-topic context words nearby and two signals
	assert.True(t, IsRelevant("nigerian youth need access to land they can own and share as a group", "co_ownership", "youth"))
}

func TestAmbiguousNeedsTwoSignals(t *testing.T) {
	// one signal word only ("money")
	assert.False(t, IsRelevant("inflation is eating my money", "betting", "inflation"))
	// two signals ("money", "loss")
	assert.True(t, IsRelevant("inflation plus my betting money loss is too much this economy", "betting", "inflation"))
}

func TestBareKeywordMatchNeedsTwoSignals(t *testing.T) {
	// keyword-originated match with a single signal word is still ambiguous
	assert.False(t, IsRelevant("I might buy something nice with farmland views", "land", ""))
	// two signal words accept
	assert.True(t, IsRelevant("should I buy farmland or own a plot in town?", "land", ""))
}
