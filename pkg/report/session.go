// pkg/report/session.go
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Labels shown for the two questions
const (
	RoomsPrompt = "Total Rooms: "
	ZipPrompt   = "ZIP code: "
)

// Validation messages
const (
	msgInvalidRooms   = "Invalid number of rooms. Input must be a non-negative integer."
	msgZipNotInteger  = "Invalid ZIP code. Zip code must be an integer value."
	msgZipWrongLength = "Invalid ZIP code. ZIP code must be exactly 5 integers long."
	requiredZipDigits = 5
)

// InputError is a rejected answer. The question is skipped, the session goes on.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Querier runs the two report queries
type Querier interface {
	TotalRoomsAbove(ctx context.Context, minRooms int64) (int64, error)
	AverageIncomeForZip(ctx context.Context, zip string) (avg int64, found bool, err error)
}

// Session asks the report questions against the loaded housing table
type Session struct {
	querier  Querier
	prompter Prompter
	out      io.Writer
	printer  *message.Printer
	logger   *zap.Logger
}

// NewSession creates a session printing answers to out
func NewSession(querier Querier, prompter Prompter, out io.Writer, logger *zap.Logger) *Session {
	return &Session{
		querier:  querier,
		prompter: prompter,
		out:      out,
		printer:  message.NewPrinter(language.English),
		logger:   logger.Named("report"),
	}
}

// Run asks the rooms question and then the ZIP question. A rejected answer
// only skips its own question. Prompt and query failures end the session and
// are returned.
func (s *Session) Run(ctx context.Context) error {
	if err := s.AskRooms(ctx); err != nil && !isInputError(err) {
		return err
	}
	if err := s.AskZip(ctx); err != nil && !isInputError(err) {
		return err
	}
	return nil
}

// AskRooms prompts for a room threshold and prints the total rooms above it
func (s *Session) AskRooms(ctx context.Context) error {
	answer, err := s.prompter.Prompt(RoomsPrompt)
	if err != nil {
		return err
	}

	minRooms, err := ParseRooms(answer)
	if err != nil {
		s.println(err.Error())
		return err
	}

	total, err := s.querier.TotalRoomsAbove(ctx, minRooms)
	if err != nil {
		return fmt.Errorf("total rooms query failed: %w", err)
	}
	s.logger.Debug("Rooms query answered",
		zap.Int64("minRooms", minRooms),
		zap.Int64("totalRooms", total))

	_, _ = fmt.Fprintf(s.out, "For locations with more than %s rooms, there are a total of %d rooms.\n\n", answer, total)
	return nil
}

// AskZip prompts for a ZIP code and prints its rounded average median income
func (s *Session) AskZip(ctx context.Context) error {
	answer, err := s.prompter.Prompt(ZipPrompt)
	if err != nil {
		return err
	}

	if err := ValidateZip(answer); err != nil {
		s.println(err.Error())
		return err
	}

	avg, found, err := s.querier.AverageIncomeForZip(ctx, answer)
	if err != nil {
		return fmt.Errorf("median income query failed: %w", err)
	}
	if !found {
		_, _ = fmt.Fprintf(s.out, "No ZIP code corresponding to %s in database.\n", answer)
		return nil
	}

	s.println(s.printer.Sprintf("The median household income for ZIP code %s is %d.", answer, avg))
	return nil
}

func (s *Session) println(line string) {
	_, _ = fmt.Fprintln(s.out, line)
}

// ParseRooms accepts ASCII digits only. Thresholds past the int64 range
// select nothing, so they are clamped to math.MaxInt64.
func ParseRooms(answer string) (int64, error) {
	if !isDigits(answer) {
		return 0, &InputError{Message: msgInvalidRooms}
	}
	n, err := strconv.ParseInt(answer, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return math.MaxInt64, nil
		}
		return 0, &InputError{Message: msgInvalidRooms}
	}
	return n, nil
}

// ValidateZip accepts exactly five ASCII digits
func ValidateZip(answer string) error {
	if !isDigits(answer) {
		return &InputError{Message: msgZipNotInteger}
	}
	if len(answer) != requiredZipDigits {
		return &InputError{Message: msgZipWrongLength}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
