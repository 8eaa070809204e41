package generate

import (
	"context"
	"math/rand"
	"testing"
	"unicode/utf8"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/config"
)

func TestTemplateGeneratorProducesText(t *testing.T) {
	g := NewTemplate()
	g.Rand = rand.New(rand.NewSource(7))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		text, err := g.Generate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if text == "" {
			t.Fatal("empty tweet")
		}
		if utf8.RuneCountInString(text) > 280 {
			t.Fatalf("tweet too long: %d runes", utf8.RuneCountInString(text))
		}
		seen[text] = true
	}
	// variation, not one fixed string
	if len(seen) < 10 {
		t.Fatalf("expected variety, got %d distinct tweets", len(seen))
	}
}

func TestNewFromConfigFallsBackToTemplates(t *testing.T) {
	g := NewFromConfig(config.LLMConfig{Provider: "none"})
	if _, ok := g.(*TemplateGenerator); !ok {
		t.Fatalf("expected template generator, got %T", g)
	}
	// openai without a key also falls back
	g = NewFromConfig(config.LLMConfig{Provider: "openai"})
	if _, ok := g.(*TemplateGenerator); !ok {
		t.Fatalf("expected template generator without key, got %T", g)
	}
}
