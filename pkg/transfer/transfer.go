package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
	"github.com/David-Botos/housing-ingress/pkg/model"
	"github.com/David-Botos/housing-ingress/pkg/store"
)

// Loader writes cleaned records into the housing table, one phase at a time
type Loader struct {
	store      *store.TargetStore
	logger     *zap.Logger
	commitMode string
}

// NewLoader creates a new loader
func NewLoader(st *store.TargetStore, logger *zap.Logger, commitMode string) (*Loader, error) {
	if st == nil {
		return nil, errors.New("target store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	switch commitMode {
	case config.CommitModePhase, config.CommitModeRow:
	default:
		return nil, fmt.Errorf("unknown load commit mode %q", commitMode)
	}

	return &Loader{
		store:      st,
		logger:     logger.Named("loader"),
		commitMode: commitMode,
	}, nil
}

// writeFunc writes record i through ext and reports whether a default row was inserted
type writeFunc func(ctx context.Context, ext sqlx.ExtContext, i int) (inserted bool, err error)

// LoadHousing inserts one row per housing record
func (l *Loader) LoadHousing(ctx context.Context, records []model.HousingRecord) (*PhaseResult, error) {
	return l.runPhase(ctx, PhaseHousing, len(records),
		func(i int) string { return records[i].GUID },
		func(ctx context.Context, ext sqlx.ExtContext, i int) (bool, error) {
			return false, l.store.InsertHousing(ctx, ext, records[i])
		})
}

// LoadIncome updates zip code and median income by guid
func (l *Loader) LoadIncome(ctx context.Context, records []model.IncomeRecord) (*PhaseResult, error) {
	return l.runPhase(ctx, PhaseIncome, len(records),
		func(i int) string { return records[i].GUID },
		func(ctx context.Context, ext sqlx.ExtContext, i int) (bool, error) {
			return l.store.UpsertIncome(ctx, ext, records[i])
		})
}

// LoadZip updates zip code and place names by guid
func (l *Loader) LoadZip(ctx context.Context, records []model.ZipRecord) (*PhaseResult, error) {
	return l.runPhase(ctx, PhaseZip, len(records),
		func(i int) string { return records[i].GUID },
		func(ctx context.Context, ext sqlx.ExtContext, i int) (bool, error) {
			return l.store.UpsertZip(ctx, ext, records[i])
		})
}

// runPhase writes n records. In phase mode all writes share one transaction
// that is rolled back on the first failure; in row mode every statement
// commits on its own and earlier rows stay written.
func (l *Loader) runPhase(ctx context.Context, phase string, n int, guidOf func(int) string, write writeFunc) (*PhaseResult, error) {
	result := NewPhaseResult(phase, l.commitMode, n)

	l.logger.Info("Loading phase",
		zap.String("phase", phase),
		zap.Int("rows", n),
		zap.String("commitMode", l.commitMode))

	var (
		ext sqlx.ExtContext = l.store.DB()
		tx  *sqlx.Tx
	)
	if l.commitMode == config.CommitModePhase {
		var err error
		tx, err = l.store.BeginTx(ctx)
		if err != nil {
			perr := NewPhaseError(ErrorCategoryLoad, phase, err)
			result.Complete(perr)
			return result, perr
		}
		ext = tx
	}

	for i := 0; i < n; i++ {
		inserted, err := write(ctx, ext, i)
		if err != nil {
			if tx != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					l.logger.Error("Failed to rollback transaction",
						zap.String("phase", phase),
						zap.Error(rbErr))
				}
				result.RowsWritten = 0
				result.RowsInserted = 0
			}
			perr := NewPhaseError(ErrorCategoryLoad, phase, err).WithRow(guidOf(i))
			result.Complete(perr)
			l.logger.Error("Load phase failed",
				zap.String("phase", phase),
				zap.String("guid", guidOf(i)),
				zap.Int("row", i),
				zap.Error(err))
			return result, perr
		}
		result.RowsWritten++
		if inserted {
			result.RowsInserted++
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			perr := NewPhaseError(ErrorCategoryLoad, phase, fmt.Errorf("failed to commit transaction: %w", err))
			result.RowsWritten = 0
			result.RowsInserted = 0
			result.Complete(perr)
			return result, perr
		}
	}

	result.Complete(nil)
	if result.RowsInserted > 0 {
		l.logger.Warn("Guids missing from the housing file got default rows",
			zap.String("phase", phase),
			zap.Int("rows", result.RowsInserted))
	}
	l.logger.Info("Phase loaded",
		zap.String("phase", phase),
		zap.Int("rowsWritten", result.RowsWritten),
		zap.Duration("duration", result.Duration))

	return result, nil
}
