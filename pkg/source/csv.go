// pkg/source/csv.go
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/model"
)

// ErrTooFewColumns is returned when a file cannot hold the layout's columns
var ErrTooFewColumns = errors.New("too few columns")

// CSVReader loads the raw source files
type CSVReader struct {
	logger *zap.Logger
}

// NewCSVReader creates a new CSV reader
func NewCSVReader(logger *zap.Logger) *CSVReader {
	return &CSVReader{logger: logger.Named("source")}
}

// ReadFile reads a CSV file laid out as layout. Cell contents are kept
// verbatim; validating them is the cleaner's job.
func (r *CSVReader) ReadFile(path string, layout *model.TableLayout) (*model.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	table, err := r.Read(file, path, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return table, nil
}

// Read parses CSV content from rd. The first record is the header.
func (r *CSVReader) Read(rd io.Reader, source string, layout *model.TableLayout) (*model.RawTable, error) {
	if layout == nil {
		return nil, fmt.Errorf("no layout given for %s", source)
	}

	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	positions, err := r.columnPositions(header, layout, source)
	if err != nil {
		return nil, err
	}

	table := &model.RawTable{
		Layout: layout,
		Source: source,
	}

	line := 1
	short := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("malformed record near line %d: %w", line, err)
		}

		row := make(model.RawRow, len(layout.Columns))
		for _, col := range layout.Columns {
			idx := positions[col.Name]
			if idx < len(record) {
				row[col.Name] = record[idx]
			} else {
				row[col.Name] = ""
			}
		}
		if len(record) < len(layout.Columns) {
			short++
		}
		table.Rows = append(table.Rows, row)
	}

	if short > 0 {
		r.logger.Warn("Records with missing cells, treating them as empty",
			zap.String("file", source),
			zap.Int("records", short))
	}

	r.logger.Info("Read source file",
		zap.String("file", source),
		zap.String("table", layout.Table),
		zap.Int("rows", table.Len()))

	return table, nil
}

// columnPositions maps each layout column to its index in the file. Named
// matching is used when every column is present in the header, otherwise the
// file is read positionally.
func (r *CSVReader) columnPositions(header []string, layout *model.TableLayout, source string) (map[string]int, error) {
	positions := make(map[string]int, len(layout.Columns))
	for i, cell := range header {
		if col := layout.GetColumnByName(cell); col != nil {
			if _, seen := positions[col.Name]; !seen {
				positions[col.Name] = i
			}
		}
	}
	if len(positions) == len(layout.Columns) {
		return positions, nil
	}

	if len(header) < len(layout.Columns) {
		return nil, fmt.Errorf("header has %d columns, %s needs %d (%s): %w",
			len(header), layout.Table, len(layout.Columns),
			strings.Join(layout.ColumnNames(), ", "), ErrTooFewColumns)
	}

	r.logger.Warn("Header does not name every column, reading positionally",
		zap.String("file", source),
		zap.Strings("header", header),
		zap.Strings("expected", layout.ColumnNames()))

	for i, col := range layout.Columns {
		positions[col.Name] = i
	}
	return positions, nil
}
