package metadata

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

// lexiconEntry maps a category name to the keywords that signal it.
type lexiconEntry struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type lexiconFile struct {
	Categories []lexiconEntry `yaml:"categories"`
}

// categoryLexicon is the ordered keyword-to-category lexicon. Entries are
// scored in order, so earlier categories win score ties.
var categoryLexicon = mustLoadLexicon()

func mustLoadLexicon() []lexiconEntry {
	var f lexiconFile
	if err := yaml.Unmarshal(lexiconYAML, &f); err != nil {
		panic(fmt.Sprintf("metadata: embedded lexicon is malformed: %v", err))
	}
	if len(f.Categories) == 0 {
		panic("metadata: embedded lexicon has no categories")
	}
	return f.Categories
}
