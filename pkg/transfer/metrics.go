package transfer

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"
)

// Throughput returns rows written per second over the run
func (s *RunSummary) Throughput() float64 {
	seconds := s.Duration.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(s.TotalRowsWritten) / seconds
}

// CleaningRate returns cleaning operations per hundred rows read
func (r *PhaseResult) CleaningRate() float64 {
	return getPercentage(float64(r.CleaningOperations), float64(r.RowsRead))
}

// RenderSummary writes the per-phase table of the run to w
func RenderSummary(w io.Writer, s *RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle("Ingress run %s", s.RunID)

	t.AppendHeader(table.Row{"Phase", "Commit", "Read", "Written", "Defaults", "Cleaned", "Per 100 rows", "Duration", "Status"})
	for _, p := range s.Phases {
		status := "ok"
		if !p.Success {
			status = "failed"
		}
		t.AppendRow(table.Row{
			p.Phase,
			p.CommitMode,
			p.RowsRead,
			p.RowsWritten,
			p.RowsInserted,
			p.CleaningOperations,
			fmt.Sprintf("%.1f", p.CleaningRate()),
			formatDuration(p.Duration),
			status,
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"Total", "", "", s.TotalRowsWritten, "", s.TotalCleaningOps, "", formatDuration(s.Duration), coverageStatus(s.Coverage)})
	t.Render()

	_, _ = fmt.Fprintf(w, "Synthesized ZIP codes: %d, throughput: %.1f rows/s\n", s.SynthesizedZips, s.Throughput())
}

// LogSummary writes the run totals to the logger
func LogSummary(logger *zap.Logger, s *RunSummary) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fields := []zap.Field{
		zap.String("runID", s.RunID),
		zap.Int("rowsWritten", s.TotalRowsWritten),
		zap.Int("cleaningOperations", s.TotalCleaningOps),
		zap.Int("synthesizedZips", s.SynthesizedZips),
		zap.String("duration", formatDuration(s.Duration)),
		zap.Float64("rowsPerSecond", s.Throughput()),
		zap.String("heapInUse", formatBytes(int64(mem.HeapInuse))),
	}
	if s.Coverage != nil {
		fields = append(fields,
			zap.Bool("coverageComplete", s.Coverage.Complete),
			zap.Int("missingGuids", len(s.Coverage.Missing)))
	}
	logger.Info("Ingress run summary", fields...)
}

func coverageStatus(c *CoverageReport) string {
	switch {
	case c == nil:
		return "unverified"
	case c.Complete:
		return "complete"
	default:
		return fmt.Sprintf("%d missing, %d duplicated", len(c.Missing), len(c.Duplicates))
	}
}

// getPercentage calculates a percentage safely
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

// formatBytes formats bytes to a human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
