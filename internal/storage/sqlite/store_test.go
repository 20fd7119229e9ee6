package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mitanshu-2004/memory-assistant/internal/fingerprint"
	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestItem(content string) *types.MemoryItem {
	return &types.MemoryItem{
		ID:          uuid.NewString(),
		Title:       "Test Item",
		Content:     content,
		ContentHash: fingerprint.Content(content),
		SourceType:  types.SourceText,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := newTestItem("remember this")
	item.Summary = "a summary"
	item.SourceLocator = "https://example.com/page"
	item.MimeType = "text/plain"

	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	got, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Content != item.Content || got.Title != item.Title {
		t.Errorf("roundtrip mismatch: got %+v", got)
	}
	if got.Summary != "a summary" || got.SourceLocator != item.SourceLocator {
		t.Errorf("optional fields lost: %+v", got)
	}
	if got.AccessedAt != nil {
		t.Error("new item should have nil AccessedAt")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestCreateItemDuplicateHash(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := newTestItem("identical content")
	if err := store.CreateItem(ctx, first); err != nil {
		t.Fatalf("first CreateItem failed: %v", err)
	}

	second := newTestItem("identical content")
	err := store.CreateItem(ctx, second)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate hash error = %v, want ErrConflict", err)
	}
}

func TestDeleteFreesContentHash(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := newTestItem("ephemeral content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	exists, err := store.ContentHashExists(ctx, item.ContentHash)
	if err != nil || !exists {
		t.Fatalf("ContentHashExists = (%v, %v), want (true, nil)", exists, err)
	}

	if err := store.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	exists, err = store.ContentHashExists(ctx, item.ContentHash)
	if err != nil || exists {
		t.Fatalf("hash still taken after delete: (%v, %v)", exists, err)
	}

	// Re-adding the same content must now succeed.
	if err := store.CreateItem(ctx, newTestItem("ephemeral content")); err != nil {
		t.Errorf("re-create after delete failed: %v", err)
	}
}

func TestNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetItem(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetItem error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteItem(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteItem error = %v, want ErrNotFound", err)
	}
	if err := store.TouchAccess(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("TouchAccess error = %v, want ErrNotFound", err)
	}
	ghost := newTestItem("ghost")
	ghost.ID = "missing"
	if err := store.UpdateItem(ctx, ghost); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateItem error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetCategory(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCategory error = %v, want ErrNotFound", err)
	}
}

func TestTouchAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := newTestItem("touched content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.TouchAccess(ctx, item.ID); err != nil {
			t.Fatalf("TouchAccess failed: %v", err)
		}
	}

	got, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.AccessCount != 3 {
		t.Errorf("AccessCount = %d, want 3", got.AccessCount)
	}
	if got.AccessedAt == nil {
		t.Error("AccessedAt not stamped")
	}
}

func TestListItemsFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	older := newTestItem("older text note")
	older.CreatedAt = time.Now().Add(-time.Hour)
	older.UpdatedAt = older.CreatedAt
	newer := newTestItem("newer favorite file note")
	newer.SourceType = types.SourceFile
	newer.IsFavorite = true
	archived := newTestItem("archived note")
	archived.IsArchived = true

	for _, item := range []*types.MemoryItem{older, newer, archived} {
		if err := store.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}

	items, err := store.ListItems(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (archived excluded)", len(items))
	}
	if items[0].ID != newer.ID || items[1].ID != older.ID {
		t.Error("items not in newest-first order")
	}

	favs, err := store.ListItems(ctx, storage.ListOptions{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("ListItems favorites failed: %v", err)
	}
	if len(favs) != 1 || favs[0].ID != newer.ID {
		t.Errorf("favorites filter wrong: %d items", len(favs))
	}

	files, err := store.ListItems(ctx, storage.ListOptions{SourceType: types.SourceFile})
	if err != nil {
		t.Fatalf("ListItems by source failed: %v", err)
	}
	if len(files) != 1 || files[0].ID != newer.ID {
		t.Errorf("source filter wrong: %d items", len(files))
	}
}

func TestGetItemsByIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	live := newTestItem("live note")
	archived := newTestItem("archived note")
	archived.IsArchived = true
	for _, item := range []*types.MemoryItem{live, archived} {
		if err := store.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}

	got, err := store.GetItemsByIDs(ctx, []string{live.ID, archived.ID, "missing"}, false)
	if err != nil {
		t.Fatalf("GetItemsByIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d items, want 2", len(got))
	}

	got, err = store.GetItemsByIDs(ctx, []string{live.ID, archived.ID}, true)
	if err != nil {
		t.Fatalf("GetItemsByIDs failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d items with excludeArchived, want 1", len(got))
	}
	if _, ok := got[archived.ID]; ok {
		t.Error("archived item returned despite excludeArchived")
	}
}

func TestTagLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := newTestItem("tagged content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	tags, err := store.GetOrCreateTags(ctx, []string{" Go ", "DATABASES", "go", ""})
	if err != nil {
		t.Fatalf("GetOrCreateTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tags, want 2 (lowercased, deduped, blanks dropped)", len(tags))
	}

	ids := []int64{tags[0].ID, tags[1].ID}
	if err := store.ReplaceItemTags(ctx, item.ID, ids); err != nil {
		t.Fatalf("ReplaceItemTags failed: %v", err)
	}

	got, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("item carries %d tags, want 2", len(got.Tags))
	}
	for _, tag := range got.Tags {
		if tag.UsageCount != 1 {
			t.Errorf("tag %s usage count = %d, want 1", tag.Name, tag.UsageCount)
		}
	}

	// Replacement, not append: the old links must go away and the dropped
	// tag's usage count must fall back to zero.
	if err := store.ReplaceItemTags(ctx, item.ID, ids[:1]); err != nil {
		t.Fatalf("ReplaceItemTags failed: %v", err)
	}
	got, err = store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if len(got.Tags) != 1 {
		t.Errorf("item carries %d tags after replacement, want 1", len(got.Tags))
	}

	refetched, err := store.GetOrCreateTags(ctx, []string{"databases"})
	if err != nil {
		t.Fatalf("GetOrCreateTags failed: %v", err)
	}
	if refetched[0].UsageCount != 0 {
		t.Errorf("dropped tag usage count = %d, want 0", refetched[0].UsageCount)
	}
}

func TestCategoryCaseInsensitiveConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.CreateCategory(ctx, "Work"); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if _, err := store.CreateCategory(ctx, "work"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("case-variant create error = %v, want ErrConflict", err)
	}
	if _, err := store.CreateCategory(ctx, "WORK"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("case-variant create error = %v, want ErrConflict", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	work, err := store.CreateCategory(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	travel, err := store.CreateCategory(ctx, "Travel")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	item := newTestItem("categorized content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if err := store.SetItemCategory(ctx, item.ID, work.ID); err != nil {
		t.Fatalf("SetItemCategory failed: %v", err)
	}

	// Setting a new category replaces the link rather than adding one.
	if err := store.SetItemCategory(ctx, item.ID, travel.ID); err != nil {
		t.Fatalf("SetItemCategory failed: %v", err)
	}
	got, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Category == nil || got.Category.Name != "Travel" {
		t.Errorf("category = %+v, want Travel", got.Category)
	}

	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	counts := map[string]int{}
	for _, cat := range categories {
		counts[cat.Name] = cat.MemoryCount
	}
	if counts["Travel"] != 1 || counts["Work"] != 0 {
		t.Errorf("memory counts = %v", counts)
	}

	// Clearing with a zero id.
	if err := store.SetItemCategory(ctx, item.ID, 0); err != nil {
		t.Fatalf("SetItemCategory(0) failed: %v", err)
	}
	got, _ = store.GetItem(ctx, item.ID)
	if got.Category != nil {
		t.Errorf("category not cleared: %+v", got.Category)
	}

	if err := store.RenameCategory(ctx, work.ID, "Office"); err != nil {
		t.Fatalf("RenameCategory failed: %v", err)
	}
	renamed, err := store.GetCategory(ctx, work.ID)
	if err != nil || renamed.Name != "Office" {
		t.Errorf("rename not applied: %+v, %v", renamed, err)
	}

	if err := store.DeleteCategory(ctx, work.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	if _, err := store.GetCategory(ctx, work.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted category still present: %v", err)
	}
}

func TestDeleteItemCascadesLinks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cat, err := store.CreateCategory(ctx, "Work")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	item := newTestItem("linked content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	tags, err := store.GetOrCreateTags(ctx, []string{"linked"})
	if err != nil {
		t.Fatalf("GetOrCreateTags failed: %v", err)
	}
	if err := store.ReplaceItemTags(ctx, item.ID, []int64{tags[0].ID}); err != nil {
		t.Fatalf("ReplaceItemTags failed: %v", err)
	}
	if err := store.SetItemCategory(ctx, item.ID, cat.ID); err != nil {
		t.Fatalf("SetItemCategory failed: %v", err)
	}

	if err := store.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}

	// The tag and category themselves survive; only the links go.
	categories, err := store.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].MemoryCount != 0 {
		t.Errorf("category state after cascade: %+v", categories)
	}
}

func TestKeywordSearch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	note := newTestItem("the quick brown fox jumps over the lazy dog")
	note.Title = "Fox Facts"
	other := newTestItem("an unrelated note about databases")
	other.Title = "DB Notes"
	for _, item := range []*types.MemoryItem{note, other} {
		if err := store.CreateItem(ctx, item); err != nil {
			t.Fatalf("CreateItem failed: %v", err)
		}
	}

	hits, err := store.KeywordSearch(ctx, "FOX", 100)
	if err != nil {
		t.Fatalf("KeywordSearch failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != note.ID {
		t.Fatalf("case-insensitive search wrong: %+v", hits)
	}
	if hits[0].Title != "Fox Facts" {
		t.Errorf("hit title = %q", hits[0].Title)
	}

	hits, err = store.KeywordSearch(ctx, "   ", 100)
	if err != nil {
		t.Fatalf("KeywordSearch failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("blank query returned %d hits, want 0", len(hits))
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	item := newTestItem("initial content")
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	item.Title = "Renamed"
	item.Content = "revised content"
	item.ContentHash = fingerprint.Content(item.Content)
	item.IsFavorite = true
	if err := store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	got, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got.Title != "Renamed" || got.Content != "revised content" || !got.IsFavorite {
		t.Errorf("update not applied: %+v", got)
	}

	// Updating to another item's content hash collides.
	other := newTestItem("other content")
	if err := store.CreateItem(ctx, other); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	other.ContentHash = fingerprint.Content("revised content")
	if err := store.UpdateItem(ctx, other); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("hash collision on update = %v, want ErrConflict", err)
	}
}
