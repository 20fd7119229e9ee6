package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

const (
	// semanticTopK bounds the semantic candidate set per query.
	semanticTopK = 50
	// keywordCandidateLimit bounds the lexical candidate rows per query.
	keywordCandidateLimit = 100
	// maxResults is the final result cap after fusion.
	maxResults = 50
)

// Lexical scoring: every row that matched the LIKE filter starts at the
// base; hits in the title and in the content body add on top.
const (
	keywordBaseScore    = 0.5
	keywordTitleBoost   = 0.3
	keywordContentBoost = 0.2
)

// Result is one search hit with its fused relevance score in [0,1].
type Result struct {
	Item  types.MemoryItem
	Score float64
}

// Search runs a query in the given mode and returns scored results in
// descending score order. An empty or whitespace-only query returns no
// results and no error.
//
// When both sources score the same item, the final score is the maximum
// of the two, never a sum, so an item can't outrank a better semantic
// match just by also matching lexically. Archived items are excluded
// unconditionally, whatever the mode.
func (e *Engine) Search(ctx context.Context, query string, mode types.SearchMode) ([]Result, error) {
	if mode == "" {
		mode = types.SearchHybrid
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("engine: unknown search mode %q", mode)
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	scores := make(map[string]float64)

	if mode.UsesSemantic() && e.indexer != nil {
		hits, err := e.indexer.SearchByText(ctx, query, semanticTopK)
		if err != nil {
			if mode == types.SearchSemantic {
				return nil, fmt.Errorf("engine: semantic search failed: %w", err)
			}
			// Hybrid degrades to the lexical source alone.
			log.Printf("engine: semantic source unavailable, degrading to keyword: %v", err)
		}
		for _, hit := range hits {
			if hit.Score > scores[hit.ID] {
				scores[hit.ID] = hit.Score
			}
		}
	}

	if mode.UsesKeyword() {
		rows, err := e.store.KeywordSearch(ctx, query, keywordCandidateLimit)
		if err != nil {
			return nil, fmt.Errorf("engine: keyword search failed: %w", err)
		}

		queryLower := strings.ToLower(query)
		for _, row := range rows {
			score := keywordBaseScore
			if strings.Contains(strings.ToLower(row.Title), queryLower) {
				score += keywordTitleBoost
			}
			if strings.Contains(strings.ToLower(row.Content), queryLower) {
				score += keywordContentBoost
			}
			if score > scores[row.ID] {
				scores[row.ID] = score
			}
		}
	}

	if len(scores) == 0 {
		return nil, nil
	}

	// Deterministic order: score descending, id ascending on ties.
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	items, err := e.store.GetItemsByIDs(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("engine: failed to fetch search results: %w", err)
	}

	// The fetch returns a map; iterating the sorted id slice preserves the
	// fused order. IDs the store no longer has (deleted or archived since
	// scoring) just drop out.
	results := make([]Result, 0, len(items))
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			continue
		}
		results = append(results, Result{Item: *item, Score: scores[id]})
	}

	return results, nil
}
