// pkg/store/queries.go
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TotalRoomsAbove sums total_rooms over the rows with more than minRooms
// rooms. No matching row sums to 0.
func (s *TargetStore) TotalRoomsAbove(ctx context.Context, minRooms int64) (int64, error) {
	var total sql.NullInt64
	err := s.conn.GetWithTimeout(ctx, &total,
		`SELECT SUM(total_rooms) FROM housing WHERE total_rooms > ?`, s.timeout, minRooms)
	if err != nil {
		return 0, fmt.Errorf("failed to sum total rooms: %w", err)
	}
	return total.Int64, nil
}

// AverageIncomeForZip returns the rounded average median income of a ZIP
// code. found is false when the ZIP has no rows.
func (s *TargetStore) AverageIncomeForZip(ctx context.Context, zip string) (avg int64, found bool, err error) {
	var income sql.NullFloat64
	err = s.conn.GetWithTimeout(ctx, &income,
		`SELECT ROUND(AVG(median_income)) FROM housing WHERE zip_code = ?`, s.timeout, zip)
	if err != nil {
		return 0, false, fmt.Errorf("failed to average income for ZIP %s: %w", zip, err)
	}
	if !income.Valid {
		return 0, false, nil
	}
	return int64(income.Float64), true, nil
}

// RowCounts returns the number of target rows per guid
func (s *TargetStore) RowCounts(ctx context.Context) (map[string]int, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(queryCtx, `SELECT guid, COUNT(*) FROM housing GROUP BY guid`)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows per guid: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			guid  string
			count int
		)
		if err := rows.Scan(&guid, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row count: %w", err)
		}
		counts[guid] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating row counts: %w", err)
	}
	return counts, nil
}
