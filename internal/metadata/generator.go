// Package metadata derives titles, tags, categories, and summaries from
// free text. A cheap deterministic heuristic is always computed first; when
// a generative model is configured, its output replaces the heuristic only
// after passing sanity checks. The generative capability is best-effort:
// any error, timeout, or malformed output degrades silently to the
// heuristic, so generation never fails and never returns an empty title.
package metadata

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mitanshu-2004/memory-assistant/internal/llm"
)

// Metadata is the result of metadata generation. Category carries the
// heuristic lexicon suggestion only; final category resolution against the
// persisted category set happens in the category package.
type Metadata struct {
	Title    string
	Tags     []string
	Category string
}

// titleStrategy produces a candidate title, or ok=false to defer to the
// next strategy in the chain.
type titleStrategy struct {
	name    string
	extract func(ctx context.Context, text string) (string, bool)
}

// tagsStrategy produces candidate tags, or ok=false to defer.
type tagsStrategy struct {
	name    string
	extract func(ctx context.Context, text string) ([]string, bool)
}

// Generator runs the metadata fallback chain. The zero number of
// strategies is impossible: the final strategy in every chain is the
// heuristic, which always produces a value.
type Generator struct {
	gen     llm.TextGenerator // nil disables the generative strategies
	timeout time.Duration

	titleChain []titleStrategy
	tagsChain  []tagsStrategy
}

// Option configures a Generator.
type Option func(*Generator)

// WithTimeout bounds each generative call. Expiry selects the next
// strategy rather than failing. Default: 20s.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// NewGenerator creates a metadata generator. gen may be nil, in which case
// only the heuristic strategies run.
func NewGenerator(gen llm.TextGenerator, opts ...Option) *Generator {
	g := &Generator{
		gen:     gen,
		timeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	// The fallback chain is explicit and ordered: strategies are tried in
	// sequence and the first hit wins. The heuristic terminates each chain
	// unconditionally.
	if g.gen != nil {
		g.titleChain = append(g.titleChain, titleStrategy{"llm", g.llmTitle})
		g.tagsChain = append(g.tagsChain, tagsStrategy{"llm", g.llmTags})
	}
	g.titleChain = append(g.titleChain, titleStrategy{"heuristic", func(_ context.Context, text string) (string, bool) {
		return FallbackTitle(text), true
	}})
	g.tagsChain = append(g.tagsChain, tagsStrategy{"heuristic", func(_ context.Context, text string) ([]string, bool) {
		return FallbackTags(text), true
	}})

	return g
}

// Generate produces metadata for the given text. It never fails: the
// heuristic strategies guarantee a non-empty title for any input,
// including empty text.
func (g *Generator) Generate(ctx context.Context, text string) Metadata {
	if strings.TrimSpace(text) == "" {
		return Metadata{Title: "Content"}
	}

	meta := Metadata{Category: FallbackCategory(text)}

	for _, s := range g.titleChain {
		if title, ok := s.extract(ctx, text); ok {
			meta.Title = title
			break
		}
	}
	for _, s := range g.tagsChain {
		if tags, ok := s.extract(ctx, text); ok {
			meta.Tags = tags
			break
		}
	}

	return meta
}

// Summarize produces a summary for the given text: a generated 50-70 word
// summary when the model cooperates, otherwise the extractive fallback.
func (g *Generator) Summarize(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if g.gen != nil {
		ctx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		response, err := g.gen.Complete(ctx, summaryPrompt(text), llm.CompleteOptions{
			MaxTokens:   120,
			Temperature: 0.3,
			Stop:        []string{"\n\n"},
		})
		if err != nil {
			log.Printf("metadata: summary generation failed, using extractive fallback: %v", err)
		} else if summary := strings.TrimSpace(response); len(strings.Fields(summary)) >= 10 {
			return summary
		}
	}

	return ExtractiveSummary(text)
}

// llmTitle asks the model for a title and sanity-checks the result:
// non-empty, longer than 3 characters, and not a literal "untitled"
// placeholder. Returns ok=false on any failure.
func (g *Generator) llmTitle(ctx context.Context, text string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.gen.Complete(ctx, titlePrompt(text), llm.CompleteOptions{
		MaxTokens:   50,
		Temperature: 0.3,
		Stop:        []string{"\n"},
	})
	if err != nil {
		log.Printf("metadata: title generation failed, falling back: %v", err)
		return "", false
	}

	candidate := strings.TrimSpace(strings.Trim(strings.TrimSpace(response), `"'`))
	if len([]rune(candidate)) <= 3 || strings.Contains(strings.ToLower(candidate), "untitled") {
		return "", false
	}
	return truncateRunes(candidate, 80), true
}

// llmTags asks the model for comma-separated tags and keeps up to 5 that
// survive canonicalization (lowercase, length > 2). Returns ok=false on
// failure or when nothing survives.
func (g *Generator) llmTags(ctx context.Context, text string) ([]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.gen.Complete(ctx, tagsPrompt(text), llm.CompleteOptions{
		MaxTokens:   30,
		Temperature: 0.3,
		Stop:        []string{"\n"},
	})
	if err != nil {
		log.Printf("metadata: tag generation failed, falling back: %v", err)
		return nil, false
	}

	var tags []string
	for _, raw := range strings.Split(response, ",") {
		tag := strings.ToLower(strings.TrimSpace(raw))
		tag = strings.Trim(tag, `"'.`)
		if len(tag) > 2 {
			tags = append(tags, tag)
		}
		if len(tags) >= 5 {
			break
		}
	}
	if len(tags) == 0 {
		return nil, false
	}
	return tags, true
}
