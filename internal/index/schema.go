package index

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	title_lc TEXT NOT NULL,
	body_lc TEXT NOT NULL,
	hash TEXT NOT NULL,
	mtime_unix INTEGER NOT NULL,
	size INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
`
