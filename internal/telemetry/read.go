package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Len returns the number of retained entries.
func (l *Log) Len(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count telemetry: %w", err)
	}
	return n, nil
}

// Empty reports whether the log holds no entries.
func (l *Log) Empty(ctx context.Context) (bool, error) {
	n, err := l.Len(ctx)
	return n == 0, err
}

// All returns every retained entry, oldest first.
// Returns an empty slice (not nil) for an empty log.
func (l *Log) All(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, at_ns, category, subject, detail
		FROM entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: %w", err)
	}
	return scanEntries(rows)
}

// Recent returns the newest n entries, oldest first. n is clamped to the
// number of retained entries.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, at_ns, category, subject, detail FROM (
			SELECT seq, at_ns, category, subject, detail
			FROM entries
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent telemetry: %w", err)
	}
	return scanEntries(rows)
}

// ByCategory returns the newest n entries of one category, oldest first.
func (l *Log) ByCategory(ctx context.Context, cat Category, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, at_ns, category, subject, detail FROM (
			SELECT seq, at_ns, category, subject, detail
			FROM entries
			WHERE category = ?
			ORDER BY seq DESC
			LIMIT ?
		) ORDER BY seq ASC
	`, string(cat), n)
	if err != nil {
		return nil, fmt.Errorf("query telemetry by category: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e   Entry
			at  int64
			cat string
		)
		if err := rows.Scan(&e.Seq, &at, &cat, &e.Subject, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan telemetry entry: %w", err)
		}
		e.At = time.Unix(0, at)
		e.Category = Category(cat)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry: %w", err)
	}
	return entries, nil
}

// FormatTail renders the newest n entries, one per line:
//
//	[+12ms] ENABLED IMU: enabled
//
// Offsets are relative to the first rendered entry. The detail and its
// separator are omitted when the detail is empty.
func (l *Log) FormatTail(ctx context.Context, n int) (string, error) {
	entries, err := l.Recent(ctx, n)
	if err != nil {
		return "", err
	}
	return Format(entries), nil
}

// Format renders entries as FormatTail does.
func Format(entries []Entry) string {
	if len(entries) == 0 {
		return "(no telemetry entries)\n"
	}

	first := entries[0].At
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "[+%dms] %s %s", e.At.Sub(first).Milliseconds(), e.Category, e.Subject)
		if e.Detail != "" {
			b.WriteString(": ")
			b.WriteString(e.Detail)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
