package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/cleaner"
	"github.com/David-Botos/housing-ingress/pkg/config"
	"github.com/David-Botos/housing-ingress/pkg/connector"
	"github.com/David-Botos/housing-ingress/pkg/model"
	"github.com/David-Botos/housing-ingress/pkg/source"
	"github.com/David-Botos/housing-ingress/pkg/store"
)

// Sources holds the three raw input files
type Sources struct {
	Housing *model.RawTable
	Income  *model.RawTable
	Zip     *model.RawTable
}

// GUIDs returns every distinct guid across the three files, first seen first
func (s *Sources) GUIDs() []string {
	seen := make(map[string]struct{})
	var guids []string
	for _, table := range []*model.RawTable{s.Housing, s.Income, s.Zip} {
		if table == nil {
			continue
		}
		for _, row := range table.Rows {
			guid := row.GUID()
			if _, ok := seen[guid]; ok || guid == "" {
				continue
			}
			seen[guid] = struct{}{}
			guids = append(guids, guid)
		}
	}
	return guids
}

// Runner orchestrates one ingress run: read, clean, load, verify
type Runner struct {
	cfg     *config.Config
	console io.Writer // progress lines for the operator
	report  io.Writer // run summary table
	reader  *source.CSVReader
	logger  *zap.Logger
}

// NewRunner creates a new runner
func NewRunner(cfg *config.Config, console, report io.Writer, logger *zap.Logger) (*Runner, error) {
	if cfg == nil || cfg.Database == nil {
		return nil, errors.New("configuration cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if console == nil {
		console = io.Discard
	}
	if report == nil {
		report = io.Discard
	}

	return &Runner{
		cfg:     cfg,
		console: console,
		report:  report,
		reader:  source.NewCSVReader(logger),
		logger:  logger.Named("runner"),
	}, nil
}

// Import reads the three source files
func (r *Runner) Import() (*Sources, error) {
	r.say("Beginning import")

	files := []struct {
		path   string
		layout *model.TableLayout
	}{
		{r.cfg.Files.Housing, &model.HousingLayout},
		{r.cfg.Files.Income, &model.IncomeLayout},
		{r.cfg.Files.Zip, &model.ZipLayout},
	}

	tables := make([]*model.RawTable, len(files))
	for i, f := range files {
		table, err := r.reader.ReadFile(f.path, f.layout)
		if err != nil {
			return nil, NewPhaseError(ErrorCategoryInitialization, "import", err)
		}
		tables[i] = table
	}

	return &Sources{Housing: tables[0], Income: tables[1], Zip: tables[2]}, nil
}

// Load cleans the sources and writes them through conn in three phases:
// housing inserts, then income and ZIP updates keyed by guid. The first
// failing phase aborts the run; phases already loaded stay loaded.
func (r *Runner) Load(ctx context.Context, conn connector.DatabaseConnector, src *Sources) (summary *RunSummary, err error) {
	st, err := store.NewTargetStore(conn, r.logger, r.cfg.Database.StatementTimeout)
	if err != nil {
		return nil, NewPhaseError(ErrorCategoryInitialization, "store", err)
	}

	if r.cfg.RunMigrations {
		if err := store.Migrate(ctx, conn, r.logger); err != nil {
			return nil, NewPhaseError(ErrorCategoryInitialization, "migrate", err)
		}
	}

	dc, err := cleaner.NewDataCleaner(r.logger, cleaner.WithSeed(r.cfg.RandomSeed))
	if err != nil {
		return nil, NewPhaseError(ErrorCategoryInitialization, "cleaner", err)
	}
	loader, err := NewLoader(st, r.logger, r.cfg.CommitMode)
	if err != nil {
		return nil, NewPhaseError(ErrorCategoryInitialization, "loader", err)
	}

	summary = NewRunSummary(uuid.NewString())
	if err := st.StartRun(ctx, summary.RunID, summary.StartTime); err != nil {
		return nil, NewPhaseError(ErrorCategoryInitialization, "journal", err)
	}
	r.logger.Info("Starting ingress run",
		zap.String("runID", summary.RunID),
		zap.String("driver", conn.Driver()),
		zap.String("commitMode", r.cfg.CommitMode))

	defer func() {
		summary.Complete()
		RenderSummary(r.report, summary)
		LogSummary(r.logger, summary)
		if err != nil {
			if ferr := st.FailRun(context.WithoutCancel(ctx), summary.RunID, err); ferr != nil {
				r.logger.Warn("Failed to record run failure", zap.Error(ferr))
			}
		}
	}()

	lookup := cleaner.NewZipLookup()
	var operations []model.CleaningOperation

	phases := []struct {
		name    string
		message string
		run     func() (*PhaseResult, []model.CleaningOperation, error)
	}{
		{PhaseHousing, "Cleaning Housing File data", func() (*PhaseResult, []model.CleaningOperation, error) {
			recs, ops, err := dc.CleanHousing(src.Housing, src.Zip, lookup)
			if err != nil {
				return nil, nil, err
			}
			res, err := loader.LoadHousing(ctx, recs)
			return res, ops, err
		}},
		{PhaseIncome, "Cleaning Income File data", func() (*PhaseResult, []model.CleaningOperation, error) {
			recs, ops, err := dc.CleanIncome(src.Income, src.Zip, lookup)
			if err != nil {
				return nil, nil, err
			}
			res, err := loader.LoadIncome(ctx, recs)
			return res, ops, err
		}},
		{PhaseZip, "Cleaning ZIP File data", func() (*PhaseResult, []model.CleaningOperation, error) {
			recs, ops, err := dc.CleanZip(src.Zip, lookup)
			if err != nil {
				return nil, nil, err
			}
			res, err := loader.LoadZip(ctx, recs)
			return res, ops, err
		}},
	}

	for _, phase := range phases {
		r.say(phase.message)

		result, ops, err := phase.run()
		if result == nil {
			return summary, NewPhaseError(ErrorCategoryInitialization, phase.name, err)
		}
		result.CleaningOperations = len(ops)
		summary.AddPhaseResult(result)
		if err != nil {
			return summary, err
		}

		for i := range ops {
			ops[i].RunID = summary.RunID
		}
		operations = append(operations, ops...)
		r.say(fmt.Sprintf("%d records imported into the database", result.RowsWritten))
	}
	summary.SynthesizedZips = lookup.Len()

	if r.cfg.RecordCleaningOperations && len(operations) > 0 {
		if err := st.RecordCleaningOperations(ctx, summary.RunID, operations); err != nil {
			return summary, NewPhaseError(ErrorCategoryLoad, "audit", err)
		}
	}

	coverage, verr := NewVerifier(st, r.logger).VerifyCoverage(ctx, src.GUIDs())
	if verr != nil {
		r.logger.Warn("Coverage verification skipped", zap.Error(verr))
	}
	summary.Coverage = coverage

	if err := st.FinishRun(ctx, summary.RunID, summary.Stats()); err != nil {
		r.logger.Warn("Failed to close run journal entry", zap.Error(err))
	}

	return summary, nil
}

func (r *Runner) say(line string) {
	_, _ = fmt.Fprintln(r.console, line)
}
