package sqlite

// Schema defines the relational model: memory items, tags, categories,
// and the two association tables. Association rows cascade with their
// item; tags and categories are independently addressable and outlive any
// single item.
const Schema = `
CREATE TABLE IF NOT EXISTS memories (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL DEFAULT 'Content',
	content            TEXT NOT NULL,
	summary            TEXT,
	content_hash       TEXT NOT NULL UNIQUE,
	source_type        TEXT NOT NULL DEFAULT 'text',
	source_locator     TEXT,
	file_path          TEXT,
	preview_image_path TEXT,
	mime_type          TEXT,
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	accessed_at        TIMESTAMP,
	access_count       INTEGER NOT NULL DEFAULT 0,
	is_favorite        INTEGER NOT NULL DEFAULT 0,
	is_archived        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_memories_created_at   ON memories(created_at);
CREATE INDEX IF NOT EXISTS idx_memories_source_type  ON memories(source_type);
CREATE INDEX IF NOT EXISTS idx_memories_is_favorite  ON memories(is_favorite);
CREATE INDEX IF NOT EXISTS idx_memories_is_archived  ON memories(is_archived);
CREATE INDEX IF NOT EXISTS idx_memories_content_hash ON memories(content_hash);

CREATE TABLE IF NOT EXISTS tags (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	usage_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS item_tags (
	item_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, tag_id)
);

CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE
);

CREATE TABLE IF NOT EXISTS item_categories (
	item_id     TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (item_id, category_id)
);
`
