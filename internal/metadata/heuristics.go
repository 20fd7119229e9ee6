package metadata

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Deterministic heuristics for title, tag, and category extraction. These
// always run first and provide the guaranteed fallback when the generative
// capability is unavailable or returns garbage.

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
	word3Re      = regexp.MustCompile(`[a-zA-Z]{3,}`)
	word4Re      = regexp.MustCompile(`[A-Za-z]{4,}`)
	anyWordRe    = regexp.MustCompile(`\b\w+\b`)
	urlRe        = regexp.MustCompile(`https?://`)
	codeRe       = regexp.MustCompile(`\b(def|class|function|import)\b`)

	titleCaser = cases.Title(language.English)
)

// titlePrefixes are stripped from a first line before it is used as a title.
var titlePrefixes = []string{"subject:", "title:", "topic:", "re:", "fwd:", "from:", "to:"}

// programmingLanguages get bonus tag weight when mentioned anywhere in the text.
var programmingLanguages = []string{
	"python", "javascript", "java", "html", "css", "sql", "php", "ruby", "go", "rust",
}

// tagStopwords excludes high-frequency English words from tag extraction.
var tagStopwords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
	"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
	"how", "its", "may", "new", "now", "old", "see", "two", "who", "boy",
	"did", "she", "use", "way", "many", "than", "them", "well", "were",
	"this", "that", "with", "have", "they", "been", "said", "each", "which",
	"their", "time", "will", "about", "would", "there", "could", "other",
)

// frequentWordStopwords is the wider exclusion set used when synthesizing a
// category name from the most frequent word in the text.
var frequentWordStopwords = wordSet(
	"this", "that", "with", "have", "they", "been", "said", "each", "which",
	"their", "time", "will", "about", "would", "there", "could", "other",
	"make", "into", "than", "only", "more", "very", "what", "know", "just",
	"first", "also", "after", "back", "good", "come", "most", "over", "think",
	"where", "much", "right", "through", "work", "life", "even", "different",
	"want", "because", "does", "part", "every", "great", "world", "still",
	"between", "public", "such", "being", "here", "should", "home", "school",
	"never", "under", "might", "while", "last", "another", "seem", "these",
	"since", "ever", "told", "usually", "easy", "heard", "order", "sure",
	"become", "across", "today", "during", "short", "better", "best",
	"however", "hours", "whole", "remember", "early", "several", "toward",
	"against", "without", "second", "later", "enough", "really", "almost",
	"above", "sometimes", "young", "soon", "list", "leave", "family", "once",
)

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// collapseWhitespace trims and squashes all whitespace runs to single spaces.
func collapseWhitespace(text string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Preprocess collapses whitespace and truncates text to maxLen characters
// for prompt input. Truncation prefers a sentence or paragraph boundary
// when one falls within the last 20% of the window.
func Preprocess(text string, maxLen int) string {
	cleaned := collapseWhitespace(text)
	if len([]rune(cleaned)) <= maxLen {
		return cleaned
	}

	truncated := truncateRunes(cleaned, maxLen)
	lastSentence := strings.LastIndex(truncated, ".")
	lastParagraph := strings.LastIndex(truncated, "\n")

	boundary := int(float64(maxLen) * 0.8)
	if lastSentence > boundary {
		return truncated[:lastSentence+1]
	}
	if lastParagraph > boundary {
		return truncated[:lastParagraph]
	}
	return truncated
}

// FallbackTitle extracts a title from free text without any model help.
// It tries, in order: the first line (5-100 chars, with common prefixes
// like "subject:" stripped), the first sentence (5-150 chars), a run of
// up to 8 meaningful words, and finally the first 6 words. The result is
// never empty and at most ~80 characters.
func FallbackTitle(text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "Content"
	}

	// First line
	firstLine := strings.TrimSpace(strings.SplitN(clean, "\n", 2)[0])
	if n := len([]rune(firstLine)); n >= 5 && n <= 100 {
		lower := strings.ToLower(firstLine)
		for _, prefix := range titlePrefixes {
			if strings.HasPrefix(lower, prefix) {
				firstLine = strings.TrimSpace(firstLine[len(prefix):])
				break
			}
		}
		if len([]rune(firstLine)) >= 5 {
			return truncateRunes(firstLine, 80)
		}
	}

	// First sentence
	if sentences := sentenceRe.Split(clean, -1); len(sentences) > 0 {
		first := strings.TrimSpace(sentences[0])
		if n := len([]rune(first)); n >= 5 && n <= 150 {
			return truncateRunes(first, 80)
		}
	}

	words := strings.Fields(clean)
	if len(words) == 0 {
		return "Content"
	}

	// Run of meaningful words from the start of the text.
	var meaningful []string
	limit := len(words)
	if limit > 15 {
		limit = 15
	}
	for _, word := range words[:limit] {
		if len([]rune(word)) > 2 {
			meaningful = append(meaningful, word)
		}
		if len(meaningful) >= 8 {
			break
		}
	}
	if len(meaningful) > 0 {
		title := strings.Join(meaningful, " ")
		if len([]rune(title)) <= 80 {
			return title
		}
		return truncateRunes(title, 77) + "..."
	}

	// Last resort: first words regardless of length.
	n := len(words)
	if n > 6 {
		n = 6
	}
	title := strings.Join(words[:n], " ")
	if n < len(words) {
		return truncateRunes(title, 80) + "..."
	}
	return truncateRunes(title, 80)
}

// FallbackTags extracts up to 5 tags by frequency analysis of words with
// at least 4 letters, excluding stopwords. Detected signals add weight:
// URLs boost "web", code syntax markers boost "code", and known
// programming language names are boosted directly.
func FallbackTags(text string) []string {
	textLower := strings.ToLower(text)
	words := word3Re.FindAllString(textLower, -1)

	freq := make(map[string]int)
	for _, word := range words {
		if !tagStopwords[word] && len(word) > 3 {
			freq[word]++
		}
	}

	if urlRe.MatchString(text) {
		freq["web"] += 2
	}
	if codeRe.MatchString(text) {
		freq["code"] += 3
	}
	for _, lang := range programmingLanguages {
		if strings.Contains(textLower, lang) {
			freq[lang] += 2
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	counts := make([]wordCount, 0, len(freq))
	for word, count := range freq {
		counts = append(counts, wordCount{word, count})
	}
	// Stable across runs: frequency descending, then alphabetical.
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})

	var tags []string
	for _, wc := range counts {
		if len(wc.word) > 2 {
			tags = append(tags, wc.word)
		}
		if len(tags) >= 5 {
			break
		}
	}

	// Last resort: first few meaningful words in document order.
	if len(tags) == 0 {
		for _, word := range words {
			if !tagStopwords[word] && len(word) > 3 {
				tags = append(tags, word)
				if len(tags) >= 3 {
					break
				}
			}
		}
	}

	return tags
}

// FallbackCategory scores the text against the keyword lexicon and returns
// the best category name title-cased, or "" when no category reaches the
// minimum score of 2. Each keyword scores its substring occurrence count
// plus a bonus of 2 for an exact word match; ties go to the category
// listed first in the lexicon.
func FallbackCategory(text string) string {
	textLower := strings.ToLower(text)
	textWords := wordSetOf(textLower)

	bestName := ""
	bestScore := 0
	for _, entry := range categoryLexicon {
		score := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(textLower, keyword) {
				score += strings.Count(textLower, keyword)
			}
			if textWords[keyword] {
				score += 2
			}
		}
		if score > bestScore {
			bestScore = score
			bestName = entry.Name
		}
	}

	if bestScore >= 2 {
		return titleCaser.String(bestName)
	}
	return ""
}

// FrequentWord returns the most frequent non-stopword of 4+ letters,
// title-cased, or "" when the text has none. Used as the last-resort
// source for a synthesized category name.
func FrequentWord(text string) string {
	words := word4Re.FindAllString(text, -1)
	freq := make(map[string]int)
	order := make(map[string]int) // first-occurrence index for tie-breaking
	for i, word := range words {
		lower := strings.ToLower(word)
		if frequentWordStopwords[lower] {
			continue
		}
		if _, seen := freq[lower]; !seen {
			order[lower] = i
		}
		freq[lower]++
	}

	best := ""
	for word, count := range freq {
		if best == "" || count > freq[best] || (count == freq[best] && order[word] < order[best]) {
			best = word
		}
	}
	if best == "" {
		return ""
	}
	return titleCaser.String(best)
}

// ExtractiveSummary builds a summary from the first substantial sentences
// of the text, capped around 280 characters. Falls back to the first 300
// characters when the text has no usable sentences.
func ExtractiveSummary(text string) string {
	var sentences []string
	for _, s := range sentenceRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > 20 {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 {
		return strings.TrimSpace(truncateRunes(text, 300))
	}

	var parts []string
	charCount := 0
	limit := len(sentences)
	if limit > 3 {
		limit = 3
	}
	for _, sentence := range sentences[:limit] {
		if charCount+len([]rune(sentence)) > 280 {
			break
		}
		parts = append(parts, sentence)
		charCount += len([]rune(sentence))
	}

	if len(parts) == 0 {
		return strings.TrimSpace(truncateRunes(text, 300))
	}
	return strings.Join(parts, ". ") + "."
}

// wordSetOf tokenizes text into a membership set of its words.
func wordSetOf(text string) map[string]bool {
	words := anyWordRe.FindAllString(text, -1)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
