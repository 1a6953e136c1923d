// Package index keeps a SQLite search index over the notes directory.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	notefs "mdnotes/internal/storage/fs"
)

const defaultLockTimeout = 5 * time.Second

type Index struct {
	db          *sql.DB
	lockTimeout time.Duration
}

type OpenOptions struct {
	LockTimeout time.Duration
}

type fileRecord struct {
	Hash      string
	MTimeUnix int64
	Size      int64
}

func Open(path string) (*Index, error) {
	return OpenWithOptions(path, OpenOptions{})
}

func OpenWithOptions(path string, opts OpenOptions) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	timeout := opts.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", path, timeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	return &Index{db: db, lockTimeout: timeout}, nil
}

func (i *Index) Close() error {
	if i.db == nil {
		return nil
	}
	return i.db.Close()
}

// Init creates the schema and brings the index in line with root. A schema
// version change drops every row first.
func (i *Index) Init(ctx context.Context, root string) error {
	if _, err := i.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	version, err := i.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := i.db.ExecContext(ctx, "DELETE FROM notes"); err != nil {
			return err
		}
		if err := i.setSchemaVersion(ctx, schemaVersion); err != nil {
			return err
		}
	}
	return i.RecheckFromFS(ctx, root)
}

func (i *Index) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := i.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (i *Index) setSchemaVersion(ctx context.Context, v int) error {
	return i.withTx(ctx, "schema-version", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", v)
		return err
	})
}

// RecheckFromFS indexes new and changed notes under root and drops rows whose
// file is gone. Files with unchanged mtime and size are not read.
func (i *Index) RecheckFromFS(ctx context.Context, root string) error {
	records, err := i.loadFileRecords(ctx)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read notes dir: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() || !notefs.IsNoteFile(e.Name()) {
			continue
		}
		id := e.Name()
		seen[id] = true
		info, err := e.Info()
		if err != nil {
			return err
		}
		rec, ok := records[id]
		if ok && rec.MTimeUnix == info.ModTime().Unix() && rec.Size == info.Size() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(root, id))
		if err != nil {
			return err
		}
		if err := i.indexRecord(ctx, id, content, info.ModTime(), info.Size(), rec, ok); err != nil {
			return err
		}
	}
	return i.removeMissingRecords(ctx, records, seen)
}

// IndexFile indexes the note stored at path, removing it when the file no
// longer exists.
func (i *Index) IndexFile(ctx context.Context, path string) error {
	id := filepath.Base(path)
	if !notefs.IsNoteFile(id) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return i.RemoveNote(ctx, id)
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return i.IndexNoteIfChanged(ctx, id, content, info.ModTime(), info.Size())
}

func (i *Index) IndexNote(ctx context.Context, id string, content []byte, mtime time.Time, size int64) error {
	title := notefs.TitleFromID(id)
	body := string(content)
	checksum := ContentHash(content)
	return i.withTx(ctx, "index-note", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notes(id, title, body, title_lc, body_lc, hash, mtime_unix, size, updated_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, body=excluded.body,
				title_lc=excluded.title_lc, body_lc=excluded.body_lc,
				hash=excluded.hash, mtime_unix=excluded.mtime_unix,
				size=excluded.size, updated_at=excluded.updated_at
		`, id, title, body, strings.ToLower(title), strings.ToLower(body), checksum, mtime.Unix(), size, time.Now().Unix())
		return err
	})
}

func (i *Index) IndexNoteIfChanged(ctx context.Context, id string, content []byte, mtime time.Time, size int64) error {
	var rec fileRecord
	err := i.db.QueryRowContext(ctx, "SELECT hash, mtime_unix, size FROM notes WHERE id=?", id).
		Scan(&rec.Hash, &rec.MTimeUnix, &rec.Size)
	if errors.Is(err, sql.ErrNoRows) {
		return i.IndexNote(ctx, id, content, mtime, size)
	}
	if err != nil {
		return err
	}
	if rec.MTimeUnix == mtime.Unix() && rec.Size == size {
		return nil
	}
	return i.indexRecord(ctx, id, content, mtime, size, rec, true)
}

func (i *Index) indexRecord(ctx context.Context, id string, content []byte, mtime time.Time, size int64, rec fileRecord, known bool) error {
	if known && ContentHash(content) == rec.Hash {
		_, err := i.db.ExecContext(ctx, "UPDATE notes SET mtime_unix=?, size=? WHERE id=?", mtime.Unix(), size, id)
		return err
	}
	return i.IndexNote(ctx, id, content, mtime, size)
}

func (i *Index) RemoveNote(ctx context.Context, id string) error {
	return i.withTx(ctx, "remove-note", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id=?", id)
		return err
	})
}

// RenameNote moves the row for oldID to newID, replacing any row already
// stored under newID.
func (i *Index) RenameNote(ctx context.Context, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	title := notefs.TitleFromID(newID)
	return i.withTx(ctx, "rename-note", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id=?", newID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "UPDATE notes SET id=?, title=?, title_lc=? WHERE id=?", newID, title, strings.ToLower(title), oldID)
		return err
	})
}

func (i *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := i.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n)
	return n, err
}

func (i *Index) loadFileRecords(ctx context.Context) (map[string]fileRecord, error) {
	rows, err := i.db.QueryContext(ctx, "SELECT id, hash, mtime_unix, size FROM notes")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := map[string]fileRecord{}
	for rows.Next() {
		var id string
		var rec fileRecord
		if err := rows.Scan(&id, &rec.Hash, &rec.MTimeUnix, &rec.Size); err != nil {
			return nil, err
		}
		records[id] = rec
	}
	return records, rows.Err()
}

func (i *Index) removeMissingRecords(ctx context.Context, records map[string]fileRecord, seen map[string]bool) error {
	var missing []string
	for id := range records {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return i.withTx(ctx, "remove-missing", func(tx *sql.Tx) error {
		for _, id := range missing {
			if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id=?", id); err != nil {
				return err
			}
		}
		return nil
	})
}
