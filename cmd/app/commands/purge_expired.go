package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/privacy/internal/app"
	"github.com/allisson/privacy/internal/config"
	privacyUseCase "github.com/allisson/privacy/internal/privacy/usecase"
)

// RunPurgeExpired deletes pending privacy requests whose confirmation token is
// older than the configured expiration. Supports text and JSON output formats.
func RunPurgeExpired(
	ctx context.Context,
	useCase privacyUseCase.UseCase,
	logger *slog.Logger,
	out io.Writer,
	format string,
) error {
	logger.Info("purging expired privacy requests")

	count, err := useCase.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired requests: %w", err)
	}

	if format == "json" {
		outputPurgeExpiredJSON(out, count)
	} else {
		outputPurgeExpiredText(out, count)
	}

	logger.Info("purge completed", slog.Int64("count", count))

	return nil
}

// RunPurgeExpiredCommand loads the configuration, wires the container, and runs the purge.
//
// Requirements: Database must be migrated and accessible.
func RunPurgeExpiredCommand(ctx context.Context, format string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer closeContainer(container, logger)

	requestUseCase, err := container.RequestUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize request use case: %w", err)
	}

	return RunPurgeExpired(ctx, requestUseCase, logger, os.Stdout, format)
}

// outputPurgeExpiredText outputs the result in human-readable text format.
func outputPurgeExpiredText(out io.Writer, count int64) {
	fmt.Fprintf(out, "Successfully deleted %d expired request(s)\n", count)
}

// outputPurgeExpiredJSON outputs the result in JSON format for machine consumption.
func outputPurgeExpiredJSON(out io.Writer, count int64) {
	result := map[string]interface{}{
		"count": count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
