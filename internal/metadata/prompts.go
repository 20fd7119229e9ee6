package metadata

import "fmt"

// Prompt templates for metadata refinement. Input text is preprocessed and
// truncated before substitution so prompts stay within model context.

const (
	titlePromptWindow   = 1200
	tagsPromptWindow    = 1200
	summaryPromptWindow = 2000
)

func titlePrompt(text string) string {
	return fmt.Sprintf("Generate a short, descriptive title for this text (maximum 10 words):\n\n%s\n\nTitle:", Preprocess(text, titlePromptWindow))
}

func tagsPrompt(text string) string {
	return fmt.Sprintf("Generate 3-5 relevant tags for this text (one word each, comma separated):\n\n%s\n\nTags:", Preprocess(text, tagsPromptWindow))
}

func summaryPrompt(text string) string {
	return fmt.Sprintf("Summarize this text in 50-70 words, focusing on key points and main ideas:\n\n%s\n\nSummary:", Preprocess(text, summaryPromptWindow))
}
