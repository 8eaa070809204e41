// Package relevance decides whether a candidate tweet is actually about a
// topic before the bot replies to it. The cascade is deliberately
// conservative: a "land" keyword match on an airplane-landing tweet must
// not produce a real-estate reply.
package relevance

import (
	"strings"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/util"
)

const contextPad = 50

// falsePositives are phrases that make a text resemble the topic by
// coincidence (travel-sense "landed", legal-sense "property of").
var falsePositives = map[string][]string{
	"land": {
		"landed", "landing", "airport", "flight", "plane", "travel",
		"visiting", "arrived", "touched down", "disembarked",
	},
	"property": {
		"property of", "belongs to", "owned by", "copyright", "intellectual property",
	},
	"housing": {
		"housing estate", "housing complex", "housing unit", "housing project",
	},
	"investment": {
		"investment banking", "investment firm", "investment company",
		"investment advisor", "investment manager",
	},
	"betting": {
		"betting odds", "betting line", "betting spread", "betting market",
	},
}

// relevantWords rescue a false-positive match when at least one is present.
var relevantWords = map[string][]string{
	"land":       {"buy", "sell", "own", "purchase", "invest", "plot", "acre", "hectare", "property", "real estate"},
	"property":   {"buy", "sell", "own", "purchase", "invest", "real estate", "land", "house"},
	"housing":    {"buy", "sell", "own", "purchase", "affordable", "home", "house"},
	"investment": {"buy", "sell", "invest", "money", "wealth", "passive income", "returns"},
	"betting":    {"loss", "lost", "waste", "regret", "addiction", "stop", "quit"},
}

// positiveIndicators short-circuit to acceptance.
var positiveIndicators = map[string][]string{
	"betting": {
		"lost money", "betting loss", "stop betting", "gambling", "waste",
		"regret", "addiction", "quit betting", "lost on", "lost to",
	},
	"investment": {
		"how to invest", "where to invest", "passive income", "wealth building",
		"investment opportunity", "invest money", "make money", "earn money",
	},
	"land": {
		"buy land", "sell land", "own land", "land ownership", "land investment",
		"affordable land", "land for sale", "real estate", "property investment",
		"land price", "land value", "plot of land",
	},
	"co_ownership": {
		"fractional ownership", "co-ownership", "shared ownership", "group purchase",
		"syndication", "joint ownership", "split ownership",
	},
}

// contextWords must appear near the trigger phrase for trigger-originated matches.
var contextWords = map[string][]string{
	"nigeria development": {"build", "develop", "growth", "progress", "nation", "country"},
	"real estate nigeria": {"buy", "sell", "own", "property", "land", "house", "investment"},
	"land":                {"buy", "sell", "own", "property", "investment", "plot", "acre"},
	"housing":             {"buy", "sell", "own", "affordable", "home", "house", "rent"},
	"youth":               {"young", "generation", "future", "opportunity", "access", "need"},
	"inflation":           {"price", "cost", "money", "economy", "nigerian", "naira"},
	"corruption":          {"government", "politician", "leader", "accountability", "transparency"},
}

// signalWords feed the ≥2-signals rule for ambiguous trigger matches.
var signalWords = map[string][]string{
	"betting":      {"money", "loss", "waste", "regret"},
	"investment":   {"money", "invest", "wealth", "income"},
	"land":         {"buy", "sell", "own", "property", "real estate"},
	"co_ownership": {"own", "share", "group", "together"},
}

// IsRelevant reports whether text is contextually about category.
// triggerPhrase is the matched discourse trigger when the candidate came
// from a trigger table rather than a plain keyword search; it may be "".
func IsRelevant(text, category, triggerPhrase string) bool {
	lt := strings.ToLower(text)

	// a coincidental phrase needs at least one relevant word to survive
	if fps, ok := falsePositives[category]; ok {
		for _, fp := range fps {
			if strings.Contains(lt, fp) {
				if words, ok := relevantWords[category]; ok && !util.ContainsAny(lt, words) {
					return false
				}
			}
		}
	}

	if inds, ok := positiveIndicators[category]; ok && util.ContainsAny(lt, inds) {
		return true
	}

	if triggerPhrase != "" {
		if win := util.Window(lt, triggerPhrase, contextPad); win != "" {
			if words, ok := contextWords[triggerPhrase]; ok && !util.ContainsAny(win, words) {
				return false
			}
		}
	}

	// ambiguous match: no positive indicator fired, so require two
	// independent signal words before engaging
	count := 0
	for _, w := range signalWords[category] {
		if strings.Contains(lt, w) {
			count++
		}
	}
	return count >= 2
}
