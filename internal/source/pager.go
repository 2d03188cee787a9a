package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/lazylist/internal/loader"
)

// Pager loads records pageSize at a time in (seq, id) order.
//
// It remembers the last (seq, id) it returned and asks for rows after it, so
// records inserted behind the cursor are not returned twice and a failed
// page is retried from the same place. Remaining is an exact count of the
// rows after the page.
//
// Thread-safety: Pager is safe for concurrent use.
type Pager struct {
	db       *SQLite
	pageSize int

	mu      sync.Mutex
	started bool
	lastSeq int64
	lastID  string
}

// Pager returns a new pager positioned before the first record. A pageSize
// below 1 is treated as 1.
func (s *SQLite) Pager(pageSize int) *Pager {
	return &Pager{db: s, pageSize: max(1, pageSize)}
}

func (p *Pager) Load(ctx context.Context) (loader.Result[Record], error) {
	p.mu.Lock()
	started, lastSeq, lastID := p.started, p.lastSeq, p.lastID
	p.mu.Unlock()

	page, err := p.page(ctx, started, lastSeq, lastID)
	if err != nil {
		return loader.Result[Record]{}, err
	}
	if len(page) > 0 {
		last := page[len(page)-1]
		started, lastSeq, lastID = true, last.Seq, last.ID
	}

	remaining, err := p.remaining(ctx, started, lastSeq, lastID)
	if err != nil {
		return loader.Result[Record]{}, err
	}

	// Commit the cursor only once the whole increment succeeded.
	p.mu.Lock()
	p.started, p.lastSeq, p.lastID = started, lastSeq, lastID
	p.mu.Unlock()

	return loader.NewResult(page, remaining), nil
}

// Both queries order and compare by (seq, id COLLATE BINARY), matching the
// index, so the keyset predicate and the page order agree.
func (p *Pager) page(ctx context.Context, started bool, lastSeq int64, lastID string) ([]Record, error) {
	rows, err := p.db.db.QueryContext(ctx, `
		SELECT id, seq, title, body
		FROM records
		WHERE ? = 0 OR seq > ? OR (seq = ? AND id > ? COLLATE BINARY)
		ORDER BY seq ASC, id COLLATE BINARY ASC
		LIMIT ?
	`, started, lastSeq, lastSeq, lastID, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, p.pageSize)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Seq, &r.Title, &r.Body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

func (p *Pager) remaining(ctx context.Context, started bool, lastSeq int64, lastID string) (int, error) {
	var n int
	err := p.db.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM records
		WHERE ? = 0 OR seq > ? OR (seq = ? AND id > ? COLLATE BINARY)
	`, started, lastSeq, lastSeq, lastID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count remaining: %w", err)
	}
	return n, nil
}

// OnClear rewinds the pager.
func (p *Pager) OnClear() { p.rewind() }

// OnLoadBegin rewinds the pager.
func (p *Pager) OnLoadBegin() { p.rewind() }

func (p *Pager) rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.started, p.lastSeq, p.lastID = false, 0, ""
}
