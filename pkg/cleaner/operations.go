// pkg/cleaner/operations.go
package cleaner

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/converter"
	"github.com/David-Botos/housing-ingress/pkg/model"
)

// UnknownPlace replaces a place name when no valid name exists to sample from
const UnknownPlace = "Unknown"

// pass holds the state of one cleaning pass over a table
type pass struct {
	c          *DataCleaner
	table      string
	lookup     *ZipLookup
	domain     []string
	rows       *model.RawTable
	observed   map[string]FieldRange
	operations []model.CleaningOperation
	started    time.Time
}

// cell is a parsed numeric field
type cell struct {
	raw    string
	value  int64
	valid  bool
	reason string
}

// bound optionally narrows a replacement range
type bound struct {
	v  int64
	ok bool
}

var noBound = bound{}

// known bounds a replacement by a neighbouring value, if that value is valid
func known(c *cell) bound { return bound{v: c.value, ok: c.valid} }

func (c *DataCleaner) newPass(table, zips *model.RawTable, lookup *ZipLookup) *pass {
	return &pass{
		c:        c,
		table:    table.Layout.Table,
		lookup:   lookup,
		domain:   zipDomain(c.converter, zips),
		rows:     table,
		observed: make(map[string]FieldRange),
		started:  time.Now(),
	}
}

// observe derives the replacement range of a numeric column
func (p *pass) observe(col string) {
	hard := p.c.ranges[col]
	p.observed[col] = observedRange(p.c.converter, p.rows, col, hard)
}

// parseNumeric parses and range checks the given columns of a row
func (p *pass) parseNumeric(row model.RawRow, cols []string) map[string]*cell {
	values := make(map[string]*cell, len(cols))
	for _, col := range cols {
		raw := row[col]
		v, err := p.c.converter.ToInt(raw)
		switch {
		case err != nil:
			values[col] = &cell{raw: raw, reason: reasonFor(err)}
		case !p.c.ranges[col].Contains(v):
			values[col] = &cell{raw: raw, value: v, reason: model.ReasonOutOfRange}
		default:
			values[col] = &cell{raw: raw, value: v, valid: true}
		}
	}
	return values
}

// repair replaces an invalid numeric cell with a uniform draw from the
// column's replacement range, narrowed by lo and hi when possible
func (p *pass) repair(values map[string]*cell, col, guid string, lo, hi bound) {
	target := values[col]
	if target.valid {
		return
	}

	r := clamp(p.observed[col], lo, hi)
	if r.Empty() {
		r = clamp(p.c.ranges[col], lo, hi)
	}
	if r.Empty() {
		r = p.c.ranges[col]
	}

	target.value = p.c.randomIn(r)
	target.valid = true
	p.record(col, guid, target.raw, strconv.FormatInt(target.value, 10), model.OpRandomGeneration, target.reason)
}

func clamp(r FieldRange, lo, hi bound) FieldRange {
	if lo.ok && lo.v > r.Min {
		r.Min = lo.v
	}
	if hi.ok && hi.v < r.Max {
		r.Max = hi.v
	}
	return r
}

// zip returns the row's ZIP code, resolving an invalid one through the
// shared lookup so a guid keeps a single synthesized code across passes
func (p *pass) zip(row model.RawRow) string {
	raw := row[model.ColZipCode]
	zip, err := p.c.converter.ToZip(raw)
	if err == nil {
		return zip
	}

	guid := row.GUID()
	operation := model.OpDomainSample
	if guid == "" {
		zip = p.randomZip()
	} else {
		var reused bool
		zip, reused = p.lookup.Resolve(guid, p.randomZip)
		if reused {
			operation = model.OpLookupReuse
		}
	}

	p.record(model.ColZipCode, guid, raw, zip, operation, reasonFor(err))
	return zip
}

func (p *pass) randomZip() string {
	if len(p.domain) > 0 {
		return p.domain[p.c.rng.IntN(len(p.domain))]
	}
	return converter.FormatZip(p.c.randomIn(FieldRange{Min: converter.MinZip, Max: converter.MaxZip}))
}

// text returns a valid place name for col, sampling a replacement when the
// cell is invalid
func (p *pass) text(row model.RawRow, col, zip string, pools *textPools) string {
	raw := row[col]
	v, err := p.c.converter.ToText(raw)
	if err == nil {
		return v
	}

	replacement := pools.sample(col, zip, p.c)
	p.record(col, row.GUID(), raw, replacement, model.OpValueSample, reasonFor(err))
	return replacement
}

func (p *pass) record(col, guid, raw, newValue, operation, reason string) {
	var original interface{}
	if strings.TrimSpace(raw) != "" {
		original = raw
	}

	p.operations = append(p.operations, model.CleaningOperation{
		TableName:         p.table,
		ColumnName:        col,
		OriginalValue:     original,
		NewValue:          newValue,
		RowIdentifier:     guid,
		CleaningOperation: operation,
		CleaningReason:    reason,
		CleanedAt:         p.c.now(),
	})

	p.c.logger.Debug("Cleaned value",
		zap.String("table", p.table),
		zap.String("column", col),
		zap.String("guid", guid),
		zap.String("original", raw),
		zap.String("new", newValue),
		zap.String("operation", operation),
		zap.String("reason", reason))
}

func (p *pass) done(rows int) {
	p.c.logger.Info("Cleaned table",
		zap.String("table", p.table),
		zap.Int("rows", rows),
		zap.Int("operations", len(p.operations)),
		zap.Int("synthesizedZips", p.lookup.Len()),
		zap.Duration("duration", time.Since(p.started)))
}

// randomIn draws uniformly from the inclusive range r
func (c *DataCleaner) randomIn(r FieldRange) int64 {
	return r.Min + c.rng.Int64N(r.Max-r.Min+1)
}

// textPools collects the valid place names of a ZIP table
type textPools struct {
	byZip map[string]map[string][]string
	all   map[string][]string
}

func newTextPools(cols []string) *textPools {
	tp := &textPools{
		byZip: make(map[string]map[string][]string, len(cols)),
		all:   make(map[string][]string, len(cols)),
	}
	for _, col := range cols {
		tp.byZip[col] = make(map[string][]string)
	}
	return tp
}

func (tp *textPools) add(col, zip, value string) {
	tp.byZip[col][zip] = append(tp.byZip[col][zip], value)
	tp.all[col] = append(tp.all[col], value)
}

func (tp *textPools) sample(col, zip string, c *DataCleaner) string {
	if candidates := tp.byZip[col][zip]; len(candidates) > 0 {
		return candidates[c.rng.IntN(len(candidates))]
	}
	if candidates := tp.all[col]; len(candidates) > 0 {
		return candidates[c.rng.IntN(len(candidates))]
	}
	return UnknownPlace
}

// reasonFor maps a conversion failure onto a cleaning reason
func reasonFor(err error) string {
	switch {
	case errors.Is(err, converter.ErrNullValue):
		return model.ReasonMissingValue
	case errors.Is(err, converter.ErrOutOfRange):
		return model.ReasonOutOfRange
	case errors.Is(err, converter.ErrInvalidText):
		return model.ReasonInvalidText
	default:
		return model.ReasonUnparseableValue
	}
}
