// pkg/store/runs.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Run statuses recorded in ingress_runs
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// RunStats are the per-run totals written when a run finishes
type RunStats struct {
	HousingRows        int
	IncomeRows         int
	ZipRows            int
	CleaningOperations int
}

// RunRecord is one row of the ingress_runs journal
type RunRecord struct {
	RunID              string
	Status             string
	HousingRows        int
	IncomeRows         int
	ZipRows            int
	CleaningOperations int
	ErrorMessage       sql.NullString
}

// StartRun opens a journal entry for runID
func (s *TargetStore) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.conn.ExecWithTimeout(ctx,
		`INSERT INTO ingress_runs (run_id, started_at, status) VALUES (?, ?, ?)`,
		s.timeout, runID, startedAt.UTC(), RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to start run %s: %w", runID, err)
	}
	s.logger.Debug("Run started", zap.String("run_id", runID))
	return nil
}

// FinishRun closes a journal entry as succeeded
func (s *TargetStore) FinishRun(ctx context.Context, runID string, stats RunStats) error {
	_, err := s.conn.ExecWithTimeout(ctx, `
		UPDATE ingress_runs
		SET finished_at = ?, status = ?, housing_rows = ?, income_rows = ?, zip_rows = ?, cleaning_operations = ?
		WHERE run_id = ?`,
		s.timeout,
		time.Now().UTC(), RunStatusSucceeded,
		stats.HousingRows, stats.IncomeRows, stats.ZipRows, stats.CleaningOperations,
		runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// FailRun closes a journal entry as failed, keeping the error message
func (s *TargetStore) FailRun(ctx context.Context, runID string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	_, err := s.conn.ExecWithTimeout(ctx,
		`UPDATE ingress_runs SET finished_at = ?, status = ?, error_message = ? WHERE run_id = ?`,
		s.timeout, time.Now().UTC(), RunStatusFailed, message, runID)
	if err != nil {
		return fmt.Errorf("failed to mark run %s as failed: %w", runID, err)
	}
	return nil
}

// GetRun reads a journal entry
func (s *TargetStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var run RunRecord
	err := s.db.QueryRowxContext(queryCtx, s.db.Rebind(`
		SELECT run_id, status, housing_rows, income_rows, zip_rows, cleaning_operations, error_message
		FROM ingress_runs WHERE run_id = ?`), runID).Scan(
		&run.RunID, &run.Status, &run.HousingRows, &run.IncomeRows, &run.ZipRows,
		&run.CleaningOperations, &run.ErrorMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	return &run, nil
}
