package transfer

import (
	"time"

	"github.com/David-Botos/housing-ingress/pkg/store"
)

// Load phases, in the order they run
const (
	PhaseHousing = "housing"
	PhaseIncome  = "income"
	PhaseZip     = "zip"
)

// PhaseResult represents the outcome of one clean-and-load phase
type PhaseResult struct {
	Phase              string
	CommitMode         string
	Success            bool
	RowsRead           int // Rows in the source file
	RowsWritten        int // Statements that succeeded
	RowsInserted       int // Default rows created by an update that matched nothing
	CleaningOperations int
	Err                error
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewPhaseResult initializes a result for phase
func NewPhaseResult(phase, commitMode string, rowsRead int) *PhaseResult {
	return &PhaseResult{
		Phase:      phase,
		CommitMode: commitMode,
		RowsRead:   rowsRead,
		StartTime:  time.Now(),
	}
}

// Complete marks the phase as complete and calculates duration
func (r *PhaseResult) Complete(err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	r.Err = err
}

// RunSummary represents the final summary of an ingress run
type RunSummary struct {
	RunID            string
	Phases           []*PhaseResult
	TotalRowsWritten int
	TotalCleaningOps int
	SynthesizedZips  int
	Coverage         *CoverageReport
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// NewRunSummary initializes a new run summary
func NewRunSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:     runID,
		StartTime: time.Now(),
	}
}

// AddPhaseResult incorporates a phase result into the summary
func (s *RunSummary) AddPhaseResult(result *PhaseResult) {
	s.Phases = append(s.Phases, result)
	s.TotalRowsWritten += result.RowsWritten
	s.TotalCleaningOps += result.CleaningOperations
}

// Phase returns the result of the named phase, or nil
func (s *RunSummary) Phase(name string) *PhaseResult {
	for _, p := range s.Phases {
		if p.Phase == name {
			return p
		}
	}
	return nil
}

// Complete marks the run as complete
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Stats converts the summary into the totals kept in the run journal
func (s *RunSummary) Stats() store.RunStats {
	stats := store.RunStats{CleaningOperations: s.TotalCleaningOps}
	if p := s.Phase(PhaseHousing); p != nil {
		stats.HousingRows = p.RowsWritten
	}
	if p := s.Phase(PhaseIncome); p != nil {
		stats.IncomeRows = p.RowsWritten
	}
	if p := s.Phase(PhaseZip); p != nil {
		stats.ZipRows = p.RowsWritten
	}
	return stats
}
