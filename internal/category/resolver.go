// Package category maps free-form category names and content text onto the
// persisted category set. Matching prefers the generative model but always
// has a deterministic lexical path behind it, and may create a new
// category when nothing matches.
package category

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mitanshu-2004/memory-assistant/internal/llm"
	"github.com/mitanshu-2004/memory-assistant/internal/metadata"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// Store is the slice of category storage the resolver needs.
type Store interface {
	ListCategories(ctx context.Context) ([]types.Category, error)
	CreateCategory(ctx context.Context, name string) (*types.Category, error)
}

// Resolver resolves content to a category. A nil generator disables the
// model-assisted steps; the lexical fallbacks still run.
type Resolver struct {
	store   Store
	gen     llm.TextGenerator
	timeout time.Duration
}

// NewResolver creates a category resolver.
func NewResolver(store Store, gen llm.TextGenerator) *Resolver {
	return &Resolver{
		store:   store,
		gen:     gen,
		timeout: 20 * time.Second,
	}
}

// Resolve maps the given content text to a persisted category, creating a
// new one when nothing matches. hint, when non-empty, is a pre-computed
// suggestion (typically the metadata lexicon category) that short-circuits
// matching and goes straight to get-or-create.
//
// Returns (nil, nil) when no category applies. A racing duplicate create
// surfaces the store's conflict error; the caller retries with a fresh
// lookup or gives up.
func (r *Resolver) Resolve(ctx context.Context, text, hint string) (*types.Category, error) {
	if strings.TrimSpace(text) == "" && strings.TrimSpace(hint) == "" {
		return nil, nil
	}

	existing, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("category: failed to list categories: %w", err)
	}

	if hint = strings.TrimSpace(hint); hint != "" {
		return r.getOrCreate(ctx, hint, existing)
	}

	// Match against the existing set first.
	if matched := r.matchExisting(ctx, text, existing); matched != nil {
		return matched, nil
	}

	// Nothing matched: synthesize a name and get-or-create it.
	name := r.suggestName(ctx, text)
	if name == "" {
		return nil, nil
	}
	return r.getOrCreate(ctx, name, existing)
}

// matchExisting picks the best category from the existing set, or nil.
// The model goes first and must return one of the literal existing names;
// anything else is discarded. The lexical fallback scores token overlap
// between the text and each category name.
func (r *Resolver) matchExisting(ctx context.Context, text string, existing []types.Category) *types.Category {
	if len(existing) == 0 {
		return nil
	}

	names := make([]string, len(existing))
	byName := make(map[string]*types.Category, len(existing))
	for i := range existing {
		names[i] = existing[i].Name
		byName[existing[i].Name] = &existing[i]
	}

	if r.gen != nil {
		if picked := r.llmPick(ctx, text, names); picked != "" {
			if cat, ok := byName[picked]; ok {
				return cat
			}
		}
	}

	// Lexical overlap scoring. Ties break to the first-encountered
	// category in list order.
	textLower := strings.ToLower(text)
	textWords := tokenSet(textLower)

	var best *types.Category
	bestScore := 0
	for i := range existing {
		nameLower := strings.ToLower(existing[i].Name)
		score := 0
		for token := range tokenSet(nameLower) {
			if textWords[token] {
				score++ // set-intersection size
			}
			if strings.Contains(textLower, token) {
				score++ // token appears anywhere in the text
			}
		}
		if strings.Contains(textLower, nameLower) {
			score += 10 // whole name is a literal substring
		}
		if score > bestScore {
			bestScore = score
			best = &existing[i]
		}
	}

	if bestScore > 0 {
		return best
	}
	return nil
}

// suggestName synthesizes a new category name: a short generative
// suggestion when available, otherwise the heuristic lexicon, otherwise
// the most frequent meaningful word of the text.
func (r *Resolver) suggestName(ctx context.Context, text string) string {
	if r.gen != nil {
		if name := r.llmSuggest(ctx, text); name != "" {
			return name
		}
	}
	if name := metadata.FallbackCategory(text); name != "" {
		return name
	}
	return metadata.FrequentWord(text)
}

// getOrCreate returns an existing category whose name contains the
// candidate case-insensitively, or creates a new one. The substring
// existence check (rather than exact match) intentionally favors fewer
// near-duplicate categories over exact naming, matching the LIKE-based
// lookup this mirrors.
func (r *Resolver) getOrCreate(ctx context.Context, name string, existing []types.Category) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	nameLower := strings.ToLower(name)
	for i := range existing {
		if strings.Contains(strings.ToLower(existing[i].Name), nameLower) {
			return &existing[i], nil
		}
	}

	created, err := r.store.CreateCategory(ctx, name)
	if err != nil {
		// A racing insert of the same name loses here with the store's
		// conflict error; the caller gets it un-retried per design.
		return nil, err
	}
	log.Printf("category: created new category %q", name)
	return created, nil
}

// llmPick asks the model to choose one of the existing category names.
// Returns "" unless the response is exactly one of them.
func (r *Resolver) llmPick(ctx context.Context, text string, names []string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Choose the most relevant category from: [\"%s\"]\n\nText: %s\n\nReturn only the category name:",
		strings.Join(names, `", "`),
		metadata.Preprocess(text, 1500),
	)

	response, err := r.gen.Complete(ctx, prompt, llm.CompleteOptions{
		MaxTokens:   30,
		Temperature: 0.1,
		Stop:        []string{"\n"},
	})
	if err != nil {
		log.Printf("category: model category match failed, using lexical fallback: %v", err)
		return ""
	}

	candidate := strings.Trim(strings.TrimSpace(response), `"'`)
	for _, name := range names {
		if candidate == name {
			return name
		}
	}
	return ""
}

// llmSuggest asks the model for a new short category name. The suggestion
// is accepted only when it stays within 3 words and 20 characters.
func (r *Resolver) llmSuggest(ctx context.Context, text string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Based on this text, suggest a single, concise category name (1-2 words) that best describes the main topic or theme:\n\nText: %s\n\nCategory name:",
		metadata.Preprocess(text, 1000),
	)

	response, err := r.gen.Complete(ctx, prompt, llm.CompleteOptions{
		MaxTokens:   20,
		Temperature: 0.1,
		Stop:        []string{"\n"},
	})
	if err != nil {
		log.Printf("category: model category suggestion failed, using heuristic: %v", err)
		return ""
	}

	name := strings.Trim(strings.TrimSpace(response), `"'`)
	if name == "" || len(strings.Fields(name)) > 3 || len([]rune(name)) > 20 {
		return ""
	}
	return titleCase(name)
}

// tokenSet splits text on non-word characters into a membership set.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	}) {
		set[token] = true
	}
	return set
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// titleCase uppercases the first letter of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
