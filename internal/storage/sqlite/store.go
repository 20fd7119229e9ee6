// Package sqlite implements the relational storage layer on SQLite via
// modernc.org/sqlite. A single open connection serializes writes; WAL mode
// keeps readers unblocked.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mitanshu-2004/memory-assistant/internal/storage"
	"github.com/mitanshu-2004/memory-assistant/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database, configures WAL mode, and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent
	// load; WAL mode lets readers proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a SQLite uniqueness violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ---------------------------------------------------------------------------
// Items
// ---------------------------------------------------------------------------

// CreateItem inserts a new memory item. A duplicate content hash loses to
// the UNIQUE constraint and surfaces as ErrConflict, including when two
// ingestions race.
func (s *Store) CreateItem(ctx context.Context, item *types.MemoryItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}
	if item.Content == "" {
		return fmt.Errorf("%w: item content is required", storage.ErrInvalidInput)
	}
	if item.ContentHash == "" {
		return fmt.Errorf("%w: item content hash is required", storage.ErrInvalidInput)
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	if item.SourceType == "" {
		item.SourceType = types.SourceText
	}

	query := `
		INSERT INTO memories (
			id, title, content, summary, content_hash,
			source_type, source_locator, file_path, preview_image_path, mime_type,
			created_at, updated_at, accessed_at,
			access_count, is_favorite, is_archived
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Title,
		item.Content,
		nullableString(item.Summary),
		item.ContentHash,
		string(item.SourceType),
		nullableString(item.SourceLocator),
		nullableString(item.FilePath),
		nullableString(item.PreviewImagePath),
		nullableString(item.MimeType),
		item.CreatedAt,
		item.UpdatedAt,
		nullableTime(item.AccessedAt),
		item.AccessCount,
		item.IsFavorite,
		item.IsArchived,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: content already exists", storage.ErrConflict)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

const itemColumns = `
	id, title, content, summary, content_hash,
	source_type, source_locator, file_path, preview_image_path, mime_type,
	created_at, updated_at, accessed_at,
	access_count, is_favorite, is_archived
`

// scanItem scans one memories row from a row scanner.
func scanItem(scan func(dest ...any) error) (*types.MemoryItem, error) {
	var item types.MemoryItem
	var summary, sourceLocator, filePath, previewPath, mimeType sql.NullString
	var sourceType string
	var accessedAt sql.NullTime

	err := scan(
		&item.ID,
		&item.Title,
		&item.Content,
		&summary,
		&item.ContentHash,
		&sourceType,
		&sourceLocator,
		&filePath,
		&previewPath,
		&mimeType,
		&item.CreatedAt,
		&item.UpdatedAt,
		&accessedAt,
		&item.AccessCount,
		&item.IsFavorite,
		&item.IsArchived,
	)
	if err != nil {
		return nil, err
	}

	item.Summary = summary.String
	item.SourceType = types.SourceType(sourceType)
	item.SourceLocator = sourceLocator.String
	item.FilePath = filePath.String
	item.PreviewImagePath = previewPath.String
	item.MimeType = mimeType.String
	if accessedAt.Valid {
		item.AccessedAt = &accessedAt.Time
	}

	return &item, nil
}

// GetItem retrieves an item by ID with tags and category loaded.
func (s *Store) GetItem(ctx context.Context, id string) (*types.MemoryItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM memories WHERE id = ?", id)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if err := s.loadAssociations(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemsByIDs retrieves full records keyed by ID. Missing IDs are absent
// from the result.
func (s *Store) GetItemsByIDs(ctx context.Context, ids []string, excludeArchived bool) (map[string]*types.MemoryItem, error) {
	result := make(map[string]*types.MemoryItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := "SELECT " + itemColumns + " FROM memories WHERE id IN (" + placeholders + ")"
	if excludeArchived {
		query += " AND is_archived = 0"
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		result[item.ID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	for _, item := range result {
		if err := s.loadAssociations(ctx, item); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ListItems retrieves items newest-first. Archived items are always excluded.
func (s *Store) ListItems(ctx context.Context, opts storage.ListOptions) ([]types.MemoryItem, error) {
	opts.Normalize()

	query := "SELECT " + itemColumns + " FROM memories WHERE is_archived = 0"
	var args []any

	if opts.SourceType != "" {
		query += " AND source_type = ?"
		args = append(args, string(opts.SourceType))
	}
	if opts.FavoritesOnly {
		query += " AND is_favorite = 1"
	}
	if opts.CategoryID != 0 {
		query += " AND id IN (SELECT item_id FROM item_categories WHERE category_id = ?)"
		args = append(args, opts.CategoryID)
	}

	query += " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []types.MemoryItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	for i := range items {
		if err := s.loadAssociations(ctx, &items[i]); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// UpdateItem persists the scalar fields of an existing item.
func (s *Store) UpdateItem(ctx context.Context, item *types.MemoryItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}

	item.UpdatedAt = time.Now()

	query := `
		UPDATE memories SET
			title = ?, content = ?, summary = ?, content_hash = ?,
			source_type = ?, source_locator = ?, file_path = ?, preview_image_path = ?, mime_type = ?,
			updated_at = ?, is_favorite = ?, is_archived = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		item.Title,
		item.Content,
		nullableString(item.Summary),
		item.ContentHash,
		string(item.SourceType),
		nullableString(item.SourceLocator),
		nullableString(item.FilePath),
		nullableString(item.PreviewImagePath),
		nullableString(item.MimeType),
		item.UpdatedAt,
		item.IsFavorite,
		item.IsArchived,
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: content already exists", storage.ErrConflict)
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteItem removes an item. Association rows cascade via foreign keys.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM memories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ContentHashExists reports whether any item carries the given fingerprint.
func (s *Store) ContentHashExists(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM memories WHERE content_hash = ?", hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}
	return true, nil
}

// TouchAccess atomically bumps access_count and stamps accessed_at.
func (s *Store) TouchAccess(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE memories SET access_count = access_count + 1, accessed_at = ? WHERE id = ?",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch access: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// loadAssociations populates Tags and Category for an item.
func (s *Store) loadAssociations(ctx context.Context, item *types.MemoryItem) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.usage_count
		FROM tags t
		JOIN item_tags it ON it.tag_id = t.id
		WHERE it.item_id = ?
		ORDER BY t.name
	`, item.ID)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	item.Tags = nil
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.UsageCount); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		item.Tags = append(item.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tag iteration failed: %w", err)
	}

	var cat types.Category
	err = s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name
		FROM categories c
		JOIN item_categories ic ON ic.category_id = c.id
		WHERE ic.item_id = ?
		LIMIT 1
	`, item.ID).Scan(&cat.ID, &cat.Name)
	switch {
	case err == sql.ErrNoRows:
		item.Category = nil
	case err != nil:
		return fmt.Errorf("failed to load category: %w", err)
	default:
		item.Category = &cat
	}

	return nil
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

// GetOrCreateTags canonicalizes names to lowercase and creates missing tags.
func (s *Store) GetOrCreateTags(ctx context.Context, names []string) ([]types.Tag, error) {
	var tags []types.Tag
	seen := make(map[string]bool)

	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.getOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

func (s *Store) getOrCreateTag(ctx context.Context, name string) (*types.Tag, error) {
	var tag types.Tag
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, usage_count FROM tags WHERE name = ?", name,
	).Scan(&tag.ID, &tag.Name, &tag.UsageCount)
	if err == nil {
		return &tag, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up tag: %w", err)
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a creation race; the row exists now.
			return s.getOrCreateTag(ctx, name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag id: %w", err)
	}
	return &types.Tag{ID: id, Name: name}, nil
}

// ReplaceItemTags removes all tag links for the item and inserts the given
// ones, then refreshes usage counts for every tag touched.
func (s *Store) ReplaceItemTags(ctx context.Context, itemID string, tagIDs []int64) error {
	if itemID == "" {
		return fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Collect previously linked tags so their counts can be refreshed too.
	touched := make(map[int64]bool, len(tagIDs))
	rows, err := tx.QueryContext(ctx, "SELECT tag_id FROM item_tags WHERE item_id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to load existing tag links: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan tag link: %w", err)
		}
		touched[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tag link iteration failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_tags WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear tag links: %w", err)
	}

	for _, tagID := range tagIDs {
		touched[tagID] = true
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_tags (item_id, tag_id) VALUES (?, ?)", itemID, tagID,
		); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tagID, err)
		}
	}

	for tagID := range touched {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tags SET usage_count = (SELECT COUNT(*) FROM item_tags WHERE tag_id = ?)
			WHERE id = ?
		`, tagID, tagID); err != nil {
			return fmt.Errorf("failed to refresh tag usage count: %w", err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// ListCategories returns all categories ordered by name with item counts.
func (s *Store) ListCategories(ctx context.Context) ([]types.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COUNT(ic.item_id)
		FROM categories c
		LEFT JOIN item_categories ic ON ic.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []types.Category
	for rows.Next() {
		var cat types.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.MemoryCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category iteration failed: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(ctx context.Context, id int64) (*types.Category, error) {
	var cat types.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name FROM categories WHERE id = ?", id,
	).Scan(&cat.ID, &cat.Name)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// CreateCategory inserts a new category. The name column collates
// case-insensitively, so "work" conflicts with an existing "Work"; racing
// duplicate creations lose with ErrConflict.
func (s *Store) CreateCategory(ctx context.Context, name string) (*types.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", storage.ErrConflict, name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return &types.Category{ID: id, Name: name}, nil
}

// RenameCategory changes a category's name.
func (s *Store) RenameCategory(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", storage.ErrInvalidInput)
	}

	result, err := s.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q already exists", storage.ErrConflict, name)
		}
		return fmt.Errorf("failed to rename category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category; item links cascade.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetItemCategory replaces the item's category link. Old links are removed
// first, never appended to; a zero categoryID just clears.
func (s *Store) SetItemCategory(ctx context.Context, itemID string, categoryID int64) error {
	if itemID == "" {
		return fmt.Errorf("%w: item ID is required", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_categories WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear category link: %w", err)
	}

	if categoryID != 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_categories (item_id, category_id) VALUES (?, ?)", itemID, categoryID,
		); err != nil {
			return fmt.Errorf("failed to link category: %w", err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Keyword search
// ---------------------------------------------------------------------------

// KeywordSearch returns items whose title or content contains the query,
// case-insensitively, capped at limit rows. Archived items are included
// here; the search engine excludes them at the fetch step so that
// exclusion is unconditional across modes.
func (s *Store) KeywordSearch(ctx context.Context, query string, limit int) ([]storage.KeywordHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content
		FROM memories
		WHERE LOWER(title) LIKE ? OR LOWER(content) LIKE ?
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	var hits []storage.KeywordHit
	for rows.Next() {
		var hit storage.KeywordHit
		if err := rows.Scan(&hit.ID, &hit.Title, &hit.Content); err != nil {
			return nil, fmt.Errorf("failed to scan keyword hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keyword iteration failed: %w", err)
	}

	return hits, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

var _ storage.Store = (*Store)(nil)
