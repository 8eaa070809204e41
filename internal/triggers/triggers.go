// Package triggers holds the static keyword, template, and trigger tables,
// and resolves per-tenant overrides against them once at loop start.
package triggers

import "strings"

// DefaultCategory is the template pool used when a category has none.
const DefaultCategory = "land"

// RippleTrigger maps a discourse phrase to its candidate replies. Triggers
// are kept in an ordered slice so category inference is deterministic:
// the first phrase found in the text wins.
type RippleTrigger struct {
	Phrase  string
	Replies []string
}

// Tables is the fully-resolved table set a tenant loop works from.
type Tables struct {
	Keywords   map[string][]string
	Templates  map[string][]string
	Engagement []string
	Ripple     []RippleTrigger
}

// Resolve layers tenant overrides over the defaults. Nil or empty override
// maps fall back wholesale; per-category merging is deliberately not done,
// an override replaces the whole table.
func Resolve(keywords, templates map[string][]string) Tables {
	t := Tables{
		Keywords:   keywords,
		Templates:  templates,
		Engagement: EngagementTriggers,
		Ripple:     Ripple,
	}
	if len(t.Keywords) == 0 {
		t.Keywords = DefaultKeywords()
	}
	if len(t.Templates) == 0 {
		t.Templates = DefaultTemplates()
	}
	return t
}

// MatchRipple returns the first trigger whose phrase occurs in text.
func MatchRipple(text string, table []RippleTrigger) (RippleTrigger, bool) {
	lt := strings.ToLower(text)
	for _, tr := range table {
		if strings.Contains(lt, tr.Phrase) {
			return tr, true
		}
	}
	return RippleTrigger{}, false
}

// HasEngagementTrigger reports whether text contains any engagement phrase.
func HasEngagementTrigger(text string, phrases []string) bool {
	lt := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lt, p) {
			return true
		}
	}
	return false
}

// DefaultKeywords returns the monitored search keywords by category.
func DefaultKeywords() map[string][]string {
	return map[string][]string{
		"betting": {
			"betting loss Nigeria",
			"lost money betting",
			"stop betting",
			"gambling addiction",
			"bet9ja losses",
			"sports betting",
			"sports betting waste",
			"betking loss",
			"sportybet loss",
			"bet9ja regret",
		},
		"investment": {
			"how to invest Nigeria",
			"passive income Nigeria",
			"investment opportunities",
			"investment opportunities Nigeria",
			"where to invest",
			"where to invest Nigeria",
			"wealth building",
			"small money investment",
		},
		"land": {
			"buy land Lagos",
			"buy land Abeokuta",
			"land ownership Nigeria",
			"affordable land",
			"affordable land Nigeria",
			"land investment",
			"real estate Lagos",
			"farmland Nigeria",
			"real estate investment Nigeria",
			"property investment Nigeria",
		},
		"co_ownership": {
			"fractional ownership",
			"fractional ownership Nigeria",
			"co-ownership property",
			"shared ownership",
			"shared ownership real estate",
			"real estate syndication",
			"group land purchase",
		},
	}
}

// DefaultTemplates returns the reply templates by category.
func DefaultTemplates() map[string][]string {
	return map[string][]string{
		"betting": {
			"Lost ₦500k to betting this year? That same ₦500k could've bought you 14 units in Hidden Leaf Village. By next year, you'd be earning ₦192k annually instead of chasing losses. Stop betting on luck. Start investing in assets. @1Subx",
			"Betting promises you ₦1M from ₦1k. Real estate gives you ₦1.8M from ₦350k in 5 years. One is gambling. One is investing. Choose better. @1Subx",
			"Nigeria has more sports betting shops than hospitals. Let that sink in. You're not failing at betting. The system is designed for you to lose. Redirect that ₦10k/week into land ownership. @2seasonsabk makes it possible from ₦1.25M for 1,000 sqm farmland.",
			"If you've lost money betting, you're not alone. But here's the truth: You can't gamble your way to wealth. ₦35,000 in @1Subx = co-ownership in real estate that earns 39% annually. ₦35,000 in betting = 99% chance it's gone by Friday. Choose wisely.",
			"The bookmakers know something you don't: Real wealth isn't built by betting. It's built by owning assets. They use YOUR betting losses to buy land, properties, businesses. Join the other side. Own land. Earn income. Build wealth. @2seasonsabk @1Subx",
			"Lost money betting again? Betting loss Nigeria isn't bad luck, it's math working against you. Ownership beats odds every single time. @1Subx",
		},
		"investment": {
			"\"How do I invest in Nigeria?\" Start here: ₦35,000 → 1 unit in Hidden Leaf Village. ₦350,000 → 10 units (₦138k/year passive income). ₦1.25M → 1,000 sqm farmland (₦200k+/year after maturity). Real assets. Real returns. Real documentation. @1Subx @2seasonsabk",
			"Passive income isn't a myth. It's just locked behind high entry barriers in Nigeria. ₦35M for a rental property? Out of reach. ₦35k for fractional ownership? Accessible. We're redesigning access. @1Subx: Co-own income-generating real estate from ₦35k.",
			"Wealth building in Nigeria isn't complicated. It's just gatekept. Most investments require ₦5M, ₦10M, ₦50M entry. @focalpointprop builds systems that let you start from ₦35k. Co-ownership. Group buying. Fractional participation. Access redesigned.",
			"You can't save your way to wealth in Nigeria. Inflation eats your savings faster than you can stack. But you CAN invest your way to wealth. ₦35k today → ₦90k in 5 years (@1Subx). Assets > Savings.",
			"Investment is just deferred consumption. You give up ₦350k today. You receive ₦900k+ in 5 years. But only if you invest in ASSETS, not liabilities. @1Subx: Real estate co-ownership. @2seasonsabk: Farmland with income potential. Both = assets.",
		},
		"land": {
			"\"I want to buy land in Lagos.\" Cool. You need ₦30-50M. \"I don't have ₦30M.\" Then you don't buy land in Lagos. That's the system. Until now. Group buying: Pool funds with 10-20 people. Buy land early. Exit together. @focalpointprop makes it possible.",
			"Land ownership in Nigeria is for the top 1%. Everyone else rents forever. Not because you don't work hard. But because entry size is ₦10M, ₦20M, ₦50M. We're building systems where 100 people can co-own what 1 person used to own alone. @2seasonsabk @1Subx",
			"Affordable land in Nigeria doesn't exist. What exists: Land you can't afford alone. Solution? Group buying. 10 people × ₦2M = ₦20M land purchase. Hold for 3 years → ₦40M. Everyone doubles their money. Same land. Smaller entry. @focalpointprop",
			"Farmland in Nigeria is the most underrated investment. ₦1.25M for 1,000 sqm at @2seasonsabk. Plant. Wait. Harvest. ₦1.5M annual income from ₦6.5M investment (1 acre). That's 23% annual return. Passively.",
			"You don't need ₦50M to own land. You need: ₦35k for fractional ownership (@1Subx). ₦1.25M for 1,000 sqm farmland (@2seasonsabk). ₦2M for group land buying (@focalpointprop). Stop waiting for ₦50M. Start owning with what you have.",
			"Land ownership isn't reserved for the rich. It's just structured that way. ₦20M plot? Out of reach. ₦2M group contribution? Accessible. Same land. Different structure. @focalpointprop builds the structures that let you participate.",
		},
		"co_ownership": {
			"Fractional ownership sounds complicated. It's not. 10 people co-own a ₦35M resort. Each owns ₦3.5M worth. Each paid ₦350k. Resort earns ₦13.8M/year. You receive 1% = ₦138k/year. 39% return on your ₦350k. That's @1Subx. Simple.",
			"Co-ownership isn't \"poor man's real estate.\" It's smart capital allocation. Instead of 1 person owning 1 property... 1,000 people own 1 property. Everyone earns. Everyone benefits. Risk is distributed. Returns are proportional. @1Subx",
			"Shared ownership of property isn't new. Rich Nigerians have done it privately for decades. We just made it: Transparent. Legal. Accessible (₦35k vs ₦35M). Structured (documented, managed). @1Subx = democratized co-ownership.",
			"Co-ownership property model: 1,000 people buy units at ₦35k each = ₦35M. Property built + operated professionally. Income distributed quarterly based on units owned. You manage nothing. You receive income. That's the model. @1Subx",
			"Real estate syndication used to be: \"Only for accredited investors.\" @1Subx made it: \"For anyone with ₦35,000 and a 5-year vision.\" Ownership redesigned.",
		},
	}
}

// EngagementTriggers are phrases whose presence marks a candidate as a clear
// engagement opportunity.
var EngagementTriggers = []string{
	"want to invest",
	"how do i start",
	"need passive income",
	"tired of betting",
	"want to own land",
	"real estate advice",
	"investment tips",
	"where to put money",
}

// RippleKeywords are the broader discourse searches the ripple scan samples.
var RippleKeywords = []string{
	"Nigeria development",
	"building Nigeria",
	"nation building",
	"government bad",
	"leaders useless",
	"politicians problem",
	"inflation Nigeria",
	"food prices",
	"cost of living",
	"real estate Nigeria",
	"youth Nigeria",
	"unity Nigeria",
	"corruption Nigeria",
}

// Ripple maps discourse trigger phrases to reply pools, in priority order.
var Ripple = []RippleTrigger{
	{"nigeria development", []string{
		"You don't build Nigeria with slogans. You build it with land reform, housing access, infrastructure, and institutions that work. Development is policy made visible.",
		"A country that cannot organize land use and cities cannot organize economic growth. Real estate is development in concrete form.",
	}},
	{"government bad", rippleGovernance},
	{"leaders useless", rippleGovernance},
	{"politicians problem", rippleGovernance},
	{"inflation", rippleInflation},
	{"food prices", rippleInflation},
	{"cost of living", rippleInflation},
	{"real estate nigeria", []string{
		"Real estate isn't about buildings. It's about law, trust, and long-term planning. Get land governance right and development follows.",
		"When property rights are unclear, investment slows and conflict grows. Housing policy is national security.",
		"Land ownership creates generational wealth. Buildings depreciate. Land appreciates. Choose the asset that grows.",
		"Clear land titles = investment confidence. Unclear titles = conflict and stagnation. Governance matters.",
	}},
	{"land", []string{
		"When property rights are unclear, investment slows and conflict grows. Housing policy is national security.",
		"Land ownership creates generational wealth. Buildings depreciate. Land appreciates. Choose the asset that grows.",
		"Real estate value comes from location, rights, and development—not just structures. Land is the foundation.",
		"Clear land titles = investment confidence. Unclear titles = conflict and stagnation. Governance matters.",
		"Land appreciates. Buildings depreciate. Smart investors focus on the asset that grows in value.",
		"Property rights are the foundation of economic development. Without clear ownership, progress stalls.",
	}},
	{"housing", []string{
		"Housing policy is national security. When people can't afford homes, stability suffers.",
		"Clear land titles = investment confidence. Unclear titles = conflict and stagnation. Governance matters.",
		"Land ownership creates generational wealth. Buildings depreciate. Land appreciates. Choose the asset that grows.",
		"Housing isn't just shelter—it's wealth building, stability, and economic participation.",
		"When housing is accessible, society thrives. When it's gatekept, inequality grows.",
	}},
	{"property", []string{
		"Property rights are the foundation of economic development. Without clear ownership, progress stalls.",
		"Land appreciates. Buildings depreciate. Smart investors focus on the asset that grows in value.",
		"Real estate value comes from location, rights, and development—not just structures. Land is the foundation.",
		"When property rights are unclear, investment slows and conflict grows. Housing policy is national security.",
	}},
	{"youth", rippleYouth},
	{"nigerian youth", rippleYouth},
	{"young people", rippleYouth},
	{"unity", rippleUnity},
	{"tribalism", rippleUnity},
	{"ethnic issues", rippleUnity},
	{"corruption", rippleCorruption},
	{"accountability", rippleCorruption},
	{"media", rippleMedia},
	{"podcasts", rippleMedia},
	{"influencers", rippleMedia},
	{"elections", rippleElections},
	{"voting", rippleElections},
	{"pvc", rippleElections},
	{"inec", rippleElections},
}

var rippleGovernance = []string{
	"Government is a reflection of the society it rules. Before elections, society already decided who it rewards with attention.",
	"If noise keeps winning attention, noise will keep winning power. Leadership doesn't emerge randomly.",
}

var rippleInflation = []string{
	"Inflation is not just economics. It reflects weak planning, broken supply chains, land use failures, and poor governance.",
	"Ask any politician one question consistently: what caused food inflation? Repetition exposes preparation gaps faster than outrage.",
}

var rippleYouth = []string{
	"Youth don't need motivation speeches. They need access to land, capital, skills, and systems that reward competence.",
	"A society that blocks youth from owning, renting, or building creates instability, not innovation.",
}

var rippleUnity = []string{
	"Unity doesn't come from pretending differences don't exist. It comes from fair systems that don't permanently exclude anyone.",
	"Many ethnic tensions are intensified by competition over land and housing. Clear land laws reduce conflict.",
}

var rippleCorruption = []string{
	"Corruption thrives where attention is emotional and data is absent. Visual evidence beats shouting.",
	"Take pictures of infrastructure. Tag officials. Build an archive. Facts are harder to escape than insults.",
}

var rippleMedia = []string{
	"If media pages shared 60% educative content within their niche, productivity would rise quietly across society.",
	"Entertainment without education weakens society. Attention is currency—spend it deliberately.",
}

var rippleElections = []string{
	"Elections work better when citizens already have data: roads, housing, projects, and outcomes—not promises.",
	"Voting is the final step. Civic behavior before elections determines the quality of options.",
}
