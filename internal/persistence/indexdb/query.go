package indexdb

import (
	"context"
	"database/sql"
	"fmt"
)

// RoundSummary is what the index knows about one session.
type RoundSummary struct {
	SessionID   string
	Transitions int
	Served      int
	Rejected    int
	Vomits      int
	Deposits    int
	Tips        int
	Withdrawals int
}

// Summarize reads a round summary from an index opened read-only by path.
func Summarize(ctx context.Context, path, sessionID string) (RoundSummary, error) {
	out := RoundSummary{SessionID: sessionID}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return out, err
	}
	defer db.Close()

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transitions WHERE session_id=?`, sessionID).Scan(&out.Transitions); err != nil {
		return out, fmt.Errorf("transitions: %w", err)
	}
	rows, err := db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM notes WHERE session_id=? GROUP BY kind`, sessionID)
	if err != nil {
		return out, fmt.Errorf("notes: %w", err)
	}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			rows.Close()
			return out, err
		}
		switch kind {
		case "served":
			out.Served = n
		case "rejected":
			out.Rejected = n
		case "vomit":
			out.Vomits = n
		}
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, `SELECT kind, COALESCE(SUM(amount),0) FROM ledger WHERE session_id=? GROUP BY kind`, sessionID)
	if err != nil {
		return out, fmt.Errorf("ledger: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var sum int
		if err := rows.Scan(&kind, &sum); err != nil {
			return out, err
		}
		switch kind {
		case "deposit":
			out.Deposits = sum
		case "tip":
			out.Tips = sum
		case "withdraw":
			out.Withdrawals = sum
		}
	}
	return out, rows.Err()
}
