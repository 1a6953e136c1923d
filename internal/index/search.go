package index

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	defaultSearchLimit = 50
	snippetRadius      = 40
)

type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search returns notes where every whitespace separated term occurs in the
// title or the body, ignoring case. Notes matching more terms in the title
// come first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	where := make([]string, 0, len(terms))
	rank := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*3+1)
	for _, term := range terms {
		where = append(where, "(instr(title_lc, ?) > 0 OR instr(body_lc, ?) > 0)")
		args = append(args, term, term)
	}
	for _, term := range terms {
		rank = append(rank, "(instr(title_lc, ?) > 0)")
		args = append(args, term)
	}
	args = append(args, limit)

	q := "SELECT id, title, body FROM notes WHERE " + strings.Join(where, " AND ") +
		" ORDER BY (" + strings.Join(rank, " + ") + ") DESC, id ASC LIMIT ?"
	rows, err := i.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var body string
		if err := rows.Scan(&r.ID, &r.Title, &body); err != nil {
			return nil, err
		}
		r.Snippet = snippet(body, terms)
		results = append(results, r)
	}
	return results, rows.Err()
}

// snippet cuts a window of the body around the first term found in it.
func snippet(body string, terms []string) string {
	lower := strings.ToLower(body)
	at := -1
	for _, term := range terms {
		if idx := strings.Index(lower, term); idx >= 0 {
			at = utf8.RuneCountInString(lower[:idx])
			break
		}
	}
	runes := []rune(body)
	if at < 0 {
		at = 0
	}
	start := at - snippetRadius
	if start < 0 {
		start = 0
	}
	end := at + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	out := strings.Join(strings.Fields(string(runes[start:end])), " ")
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}
