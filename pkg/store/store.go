// pkg/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/connector"
	"github.com/David-Botos/housing-ingress/pkg/model"
)

const defaultTimeout = 30 * time.Second

// Statements against the denormalized housing table. Named parameters are
// bound per driver by sqlx.
const (
	insertHousingSQL = `
		INSERT INTO housing
		(guid, zip_code, city, state, county, median_age, total_rooms, total_bedrooms,
		 population, households, median_income, median_house_value)
		VALUES (:guid, :zip_code, :city, :state, :county, :median_age, :total_rooms, :total_bedrooms,
		 :population, :households, :median_income, :median_house_value)`

	updateIncomeSQL = `
		UPDATE housing SET zip_code = :zip_code, median_income = :median_income
		WHERE guid = :guid`

	updateZipSQL = `
		UPDATE housing SET zip_code = :zip_code, city = :city, state = :state, county = :county
		WHERE guid = :guid`
)

// TargetStore reads and writes the target database
type TargetStore struct {
	conn    connector.DatabaseConnector
	db      *sqlx.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewTargetStore creates a store over conn. timeout bounds every statement.
func NewTargetStore(conn connector.DatabaseConnector, logger *zap.Logger, timeout time.Duration) (*TargetStore, error) {
	if conn == nil {
		return nil, errors.New("database connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &TargetStore{
		conn:    conn,
		db:      conn.X(),
		logger:  logger.Named("store"),
		timeout: timeout,
	}, nil
}

// DB returns the autocommit handle. Statements run through it commit one by one.
func (s *TargetStore) DB() sqlx.ExtContext {
	return s.db
}

// BeginTx starts a transaction. Statements run through it commit together.
func (s *TargetStore) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// InsertHousing creates the target row for a housing record. Place names
// and income stay empty until the later passes fill them in.
func (s *TargetStore) InsertHousing(ctx context.Context, ext sqlx.ExtContext, rec model.HousingRecord) error {
	return s.insertTarget(ctx, ext, model.TargetRowFromHousing(rec))
}

// UpsertIncome sets zip code and median income on the rows of rec's guid.
// When no row exists yet a default row is inserted. inserted reports which
// of the two happened.
func (s *TargetStore) UpsertIncome(ctx context.Context, ext sqlx.ExtContext, rec model.IncomeRecord) (inserted bool, err error) {
	affected, err := s.namedExec(ctx, ext, updateIncomeSQL, rec)
	if err != nil {
		return false, fmt.Errorf("failed to update income for guid %s: %w", rec.GUID, err)
	}
	if affected > 0 {
		return false, nil
	}
	return true, s.insertTarget(ctx, ext, model.TargetRowFromIncome(rec))
}

// UpsertZip sets zip code and place names on the rows of rec's guid,
// inserting a default row when none exists
func (s *TargetStore) UpsertZip(ctx context.Context, ext sqlx.ExtContext, rec model.ZipRecord) (inserted bool, err error) {
	affected, err := s.namedExec(ctx, ext, updateZipSQL, rec)
	if err != nil {
		return false, fmt.Errorf("failed to update ZIP data for guid %s: %w", rec.GUID, err)
	}
	if affected > 0 {
		return false, nil
	}
	return true, s.insertTarget(ctx, ext, model.TargetRowFromZip(rec))
}

func (s *TargetStore) insertTarget(ctx context.Context, ext sqlx.ExtContext, row model.TargetRow) error {
	if _, err := s.namedExec(ctx, ext, insertHousingSQL, row); err != nil {
		return fmt.Errorf("failed to insert row for guid %s: %w", row.GUID, err)
	}
	return nil
}

// namedExec runs a named statement with the store's timeout and returns the
// number of matched rows
func (s *TargetStore) namedExec(ctx context.Context, ext sqlx.ExtContext, query string, arg interface{}) (int64, error) {
	execCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := sqlx.NamedExecContext(execCtx, ext, query, arg)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("couldn't get rows affected: %w", err)
	}
	return affected, nil
}
