// Command housing-ingress cleans the housing, income and ZIP files, loads
// them into the housing table and answers two questions about the result.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/David-Botos/housing-ingress/pkg/config"
	"github.com/David-Botos/housing-ingress/pkg/connector"
	"github.com/David-Botos/housing-ingress/pkg/report"
	"github.com/David-Botos/housing-ingress/pkg/store"
	"github.com/David-Botos/housing-ingress/pkg/transfer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one ingress and report session and returns the exit code.
// Console text goes to stdout, the run summary to stderr.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		printError(stdout, err)
		return 1
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		printError(stdout, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	runner, err := transfer.NewRunner(cfg, stdout, stderr, logger)
	if err != nil {
		printError(stdout, err)
		return 1
	}

	sources, err := runner.Import()
	if err != nil {
		logger.Error("Import failed", zap.Error(err))
		printError(stdout, err)
		return 1
	}

	conn, err := connector.NewConnectorFactory(cfg.Database, logger).CreateConnector(ctx)
	if err != nil {
		err = transfer.NewPhaseError(transfer.ErrorCategoryConnection, "connect", err)
		logger.Error("Connection failed", zap.Error(err))
		printError(stdout, err)
		return 1
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	if _, err := runner.Load(ctx, conn, sources); err != nil {
		logger.Error("Ingress run failed",
			zap.String("category", transfer.CategoryOf(err).String()),
			zap.Error(err))
		printError(stdout, err)
		return 1
	}

	_, _ = fmt.Fprint(stdout, "\nBeginning validation\n\n")

	st, err := store.NewTargetStore(conn, logger, cfg.Database.StatementTimeout)
	if err != nil {
		printError(stdout, err)
		return 1
	}

	prompter := newPrompter(stdin, stdout, logger)
	defer func() { _ = prompter.Close() }()

	session := report.NewSession(st, prompter, stdout, logger)
	if err := session.Run(ctx); err != nil {
		logger.Error("Report session ended with an error",
			zap.String("category", transfer.ErrorCategoryQuery.String()),
			zap.Error(err))
		printError(stdout, err)
	}

	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintln(stdout, "Program exiting.")
	return 0
}

// newPrompter uses line editing when stdin is a terminal
func newPrompter(stdin io.Reader, stdout io.Writer, logger *zap.Logger) report.Prompter {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p, err := report.NewReadlinePrompter()
		if err == nil {
			return p
		}
		logger.Warn("Falling back to plain prompts", zap.Error(err))
	}
	return report.NewLinePrompter(stdin, stdout)
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "An error has occurred.  Exiting: %v\n\n", err)
}
