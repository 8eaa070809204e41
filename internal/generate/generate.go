// Package generate produces fresh outgoing tweet text. The template
// generator composes openers, stats, and closers for unlimited variation;
// an optional LLM generator is available when configured.
package generate

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/config"
)

// Generator produces one tweet's worth of text.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// NewFromConfig picks the generator for the configured provider.
func NewFromConfig(cfg config.LLMConfig) Generator {
	if cfg.Provider == "openai" && cfg.APIKey != "" {
		return NewLLM(cfg)
	}
	return NewTemplate()
}

type family struct {
	openers []string
	bodies  []string
	closers []string
}

// TemplateGenerator composes tweets from static phrase pools.
type TemplateGenerator struct {
	Rand     *rand.Rand
	families []family
}

func NewTemplate() *TemplateGenerator {
	return &TemplateGenerator{
		Rand:     rand.New(rand.NewSource(rand.Int63())),
		families: defaultFamilies(),
	}
}

func (g *TemplateGenerator) Generate(ctx context.Context) (string, error) {
	f := g.families[g.Rand.Intn(len(g.families))]
	opener := f.openers[g.Rand.Intn(len(f.openers))]
	body := f.bodies[g.Rand.Intn(len(f.bodies))]
	closer := f.closers[g.Rand.Intn(len(f.closers))]
	return fmt.Sprintf("%s: %s %s", opener, body, closer), nil
}

func defaultFamilies() []family {
	return []family{
		{
			openers: []string{
				"Did you know", "Here's a fact", "Real numbers", "Let's talk numbers",
				"Quick math", "The data shows", "Statistics reveal", "Here's the truth",
			},
			bodies: []string{
				"₦3.2 TRILLION was spent on betting in 2023. That's enough land for millions of Nigerians.",
				"₦450 BILLION is what betting companies made in profit from Nigerians in 2024. That money could own appreciating land instead.",
				"₦87 BILLION is processed monthly in the Nigerian betting market. Enough for thousands of sqm of land appreciating 15-25% annually.",
				"₦150 BILLION was spent on betting ads in 2024. Imagine that in premium-location plots.",
			},
			closers: []string{
				"The math doesn't lie. @1Subx starts at ₦1k.",
				"Choose differently. Start from ₦1k. @1Subx",
				"Build instead of feed. From ₦1k. www.subxhq.com",
				"Still betting? The data doesn't lie. @1Subx",
			},
		},
		{
			openers: []string{
				"Research shows", "Studies reveal", "The data proves",
				"Statistics show", "Industry reports confirm", "Real facts",
			},
			bodies: []string{
				"only 1 in 100 bettors profit long-term. Land appreciation in Lagos/Ogun the last 10 years? 100% of owners gained.",
				"90% of bettors lose money over 12 months. Land in Abeokuta returned 18% annually over the same period.",
				"just 1% of bettors make profit over time. Landowners in Lagos/Ogun: every single one gained.",
			},
			closers: []string{
				"1% vs 100%. Which side are you on? @1Subx",
				"Choose the 100% success rate. From ₦1k. @1Subx",
				"The choice is clear. Start from ₦1k. www.subxhq.com",
			},
		},
		{
			openers: []string{
				"2 Seasons land was", "Land in 2 Seasons started at",
				"2 Seasons Phase 1 began at", "When 2 Seasons launched, prices were",
			},
			bodies: []string{
				"₦5k/sqm six months ago. Today it's ₦5,750/sqm. That's 15% while you waited.",
				"₦5k/sqm last year. Now ₦5,750/sqm and climbing. Early owners won.",
			},
			closers: []string{
				"Land doesn't wait. Neither should you. @2seasonsabk",
				"Appreciation you can't bet your way into. @2seasonsabk",
				"Own early. Exit rich. @2seasonsabk",
			},
		},
	}
}
