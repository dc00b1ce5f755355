package store

import (
	"fmt"
	"strings"
	"time"
)

// RecordEvent appends a ledger mutation to the journal.
func (s *Store) RecordEvent(category, action string, delta int, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO ledger_events (category, action, delta, at) VALUES (?, ?, ?, ?)`,
		category, action, delta, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record %s event: %w", action, err)
	}
	return nil
}

// ListEvents returns journaled events, newest first.
func (s *Store) ListEvents(f EventFilter) ([]LedgerEvent, error) {
	var where []string
	var args []any

	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *f.Category)
	}
	if f.From != nil {
		where = append(where, "at >= ?")
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		where = append(where, "at < ?")
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}

	q := `SELECT id, category, action, delta, at FROM ledger_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY at DESC, id DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []LedgerEvent
	for rows.Next() {
		var e LedgerEvent
		var at string
		if err := rows.Scan(&e.ID, &e.Category, &e.Action, &e.Delta, &at); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetDailyTotals sums add/remove deltas per local day and category in
// [from, to). Resets are history, not negative work, so they are excluded.
func (s *Store) GetDailyTotals(from, to time.Time, loc *time.Location) ([]DailyTotal, error) {
	if loc == nil {
		loc = time.Local
	}
	events, err := s.ListEvents(EventFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	type dayCat struct{ date, cat string }
	sums := make(map[dayCat]int)
	var order []dayCat
	// events arrive newest first; walk backwards so output is chronological
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Action == ActionReset {
			continue
		}
		k := dayCat{date: e.At.In(loc).Format("2006-01-02"), cat: e.Category}
		if _, ok := sums[k]; !ok {
			order = append(order, k)
		}
		sums[k] += e.Delta
	}

	var totals []DailyTotal
	for _, k := range order {
		totals = append(totals, DailyTotal{Date: k.date, Category: k.cat, Count: sums[k]})
	}
	return totals, nil
}
