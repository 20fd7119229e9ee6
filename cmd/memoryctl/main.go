// Command memoryctl is the command-line interface to the memory assistant:
// add content, search it, list and inspect items, manage categories.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitanshu-2004/memory-assistant/internal/category"
	"github.com/mitanshu-2004/memory-assistant/internal/config"
	"github.com/mitanshu-2004/memory-assistant/internal/engine"
	"github.com/mitanshu-2004/memory-assistant/internal/extract"
	"github.com/mitanshu-2004/memory-assistant/internal/index"
	"github.com/mitanshu-2004/memory-assistant/internal/llm"
	"github.com/mitanshu-2004/memory-assistant/internal/metadata"
	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/internal/storage/sqlite"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

const usage = `Usage: memoryctl <command> [flags]

Commands:
  add         Store new content (from -text, -file, or stdin)
  get         Show one item by id
  list        List stored items
  search      Search stored items
  delete      Delete an item
  summarize   Regenerate an item's summary
  categories  List categories
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("memoryctl: %v", err)
	}
	defer cleanup()

	switch os.Args[1] {
	case "add":
		err = cmdAdd(ctx, eng, cfg, os.Args[2:])
	case "get":
		err = cmdGet(ctx, eng, os.Args[2:])
	case "list":
		err = cmdList(ctx, eng, os.Args[2:])
	case "search":
		err = cmdSearch(ctx, eng, os.Args[2:])
	case "delete":
		err = cmdDelete(ctx, eng, os.Args[2:])
	case "summarize":
		err = cmdSummarize(ctx, eng, os.Args[2:])
	case "categories":
		err = cmdCategories(ctx, eng, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("memoryctl: %v", err)
	}
}

// buildEngine assembles the pipeline from configuration.
func buildEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	if dir := filepath.Dir(cfg.Storage.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := sqlite.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	gen, embedder, err := llm.NewProvider(llm.ProviderConfig{
		Provider:          cfg.LLM.Provider,
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		EmbeddingModel:    cfg.LLM.EmbeddingModel,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	var indexer *index.Indexer
	var vectorIndex index.VectorIndex
	if embedder != nil {
		switch cfg.Index.Backend {
		case "pgvector":
			vectorIndex, err = index.OpenPgVectorIndex(cfg.Index.PostgresDSN, cfg.Index.Dimension)
			if err != nil {
				store.Close()
				return nil, nil, err
			}
		case "memory", "":
			vectorIndex = index.NewMemoryIndex()
		default:
			store.Close()
			return nil, nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
		}
		indexer = index.NewIndexer(embedder, vectorIndex)
	}

	eng := engine.New(store, extract.NewPlain(), metadata.NewGenerator(gen), category.NewResolver(store, gen), indexer, nil)

	cleanup := func() {
		if vectorIndex != nil {
			vectorIndex.Close()
		}
		store.Close()
	}
	return eng, cleanup, nil
}

func cmdAdd(ctx context.Context, eng *engine.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	text := fs.String("text", "", "Content text (reads stdin when empty and no -file)")
	file := fs.String("file", "", "Read content from this file")
	url := fs.String("url", "", "Source URL for the content")
	title := fs.String("title", "", "Explicit title (skips generation)")
	tags := fs.String("tags", "", "Comma-separated tags (skips generation)")
	categoryID := fs.Int64("category", 0, "Existing category id (skips auto-categorization)")
	fs.Parse(args)

	req := engine.IngestRequest{
		Content:      *text,
		SourceType:   types.SourceText,
		Title:        *title,
		CategoryID:   *categoryID,
		AutoCategory: cfg.Features.AutoCategory,
	}
	if *tags != "" {
		for _, tag := range strings.Split(*tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	switch {
	case *file != "":
		data, err := os.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", *file, err)
		}
		req.Content = ""
		req.Data = data
		req.SourceType = types.SourceFile
		req.SourceLocator = *file
		req.FilePath = *file
	case *url != "":
		req.SourceType = types.SourceURL
		req.SourceLocator = *url
	}

	if req.Content == "" && req.Data == nil {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		req.Data = data
	}

	item, err := eng.Ingest(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("stored %s\n", item.ID)
	printItem(item)
	return nil
}

func cmdGet(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memoryctl get <id>")
	}

	item, err := eng.Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	printItem(item)
	fmt.Printf("  content:\n%s\n", item.Content)
	return nil
}

func cmdList(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	sourceType := fs.String("source", "", "Filter by source type (text, file, url)")
	favorites := fs.Bool("favorites", false, "Only favorites")
	categoryID := fs.Int64("category", 0, "Filter by category id")
	limit := fs.Int("limit", 20, "Maximum items to show")
	offset := fs.Int("offset", 0, "Items to skip")
	fs.Parse(args)

	items, err := eng.List(ctx, storage.ListOptions{
		SourceType:    types.SourceType(*sourceType),
		FavoritesOnly: *favorites,
		CategoryID:    *categoryID,
		Limit:         *limit,
		Offset:        *offset,
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		fmt.Printf("%s  %s  %s\n", item.ID, item.CreatedAt.Format("2006-01-02 15:04"), item.Title)
	}
	fmt.Printf("%d item(s)\n", len(items))
	return nil
}

func cmdSearch(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	mode := fs.String("mode", "hybrid", "Search mode: hybrid, semantic, keyword")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: memoryctl search [-mode hybrid] <query>")
	}

	results, err := eng.Search(ctx, strings.Join(fs.Args(), " "), types.SearchMode(*mode))
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("%.3f  %s  %s\n", r.Score, r.Item.ID, r.Item.Title)
	}
	fmt.Printf("%d result(s)\n", len(results))
	return nil
}

func cmdDelete(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memoryctl delete <id>")
	}

	if err := eng.Delete(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", fs.Arg(0))
	return nil
}

func cmdSummarize(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memoryctl summarize <id>")
	}

	summary, err := eng.Summarize(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Println(summary)
	return nil
}

func cmdCategories(ctx context.Context, eng *engine.Engine, args []string) error {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	create := fs.String("create", "", "Create a category with this name")
	remove := fs.Int64("delete", 0, "Delete the category with this id")
	fs.Parse(args)

	if *create != "" {
		cat, err := eng.CreateCategory(ctx, *create)
		if err != nil {
			return err
		}
		fmt.Printf("created %d  %s\n", cat.ID, cat.Name)
		return nil
	}
	if *remove != 0 {
		if err := eng.DeleteCategory(ctx, *remove); err != nil {
			return err
		}
		fmt.Printf("deleted category %d\n", *remove)
		return nil
	}

	categories, err := eng.Categories(ctx)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		fmt.Printf("%4d  %-24s %d item(s)\n", cat.ID, cat.Name, cat.MemoryCount)
	}
	return nil
}

func printItem(item *types.MemoryItem) {
	fmt.Printf("  title:    %s\n", item.Title)
	if item.Summary != "" {
		fmt.Printf("  summary:  %s\n", item.Summary)
	}
	if len(item.Tags) > 0 {
		names := make([]string, len(item.Tags))
		for i, tag := range item.Tags {
			names[i] = tag.Name
		}
		fmt.Printf("  tags:     %s\n", strings.Join(names, ", "))
	}
	if item.Category != nil {
		fmt.Printf("  category: %s\n", item.Category.Name)
	}
	fmt.Printf("  source:   %s", item.SourceType)
	if item.SourceLocator != "" {
		fmt.Printf(" (%s)", item.SourceLocator)
	}
	fmt.Println()
}
