package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goinsight/insight"
	"github.com/goinsight/insight/storage"
)

var errMissingCommand = errors.New("missing command")

// run executes the command under a root span and returns its exit code.
// Tracing problems never stop the command: they degrade to a no-op tracer
// with a warning.
func run(command string, args []string) int {
	// A .env file is optional
	_ = insight.LoadEnv(".")

	provider, store := setupTracing()
	if provider != nil {
		defer provider.Shutdown(context.Background())
	}
	if store != nil {
		defer store.Close()
	}

	tracer := otel.Tracer("insight/cmd")
	if provider != nil {
		tracer = provider.Tracer()
	}

	ctx, span := tracer.Start(context.Background(), "manage/"+command,
		trace.WithAttributes(insight.String("process.command", command)),
	)
	defer span.End()

	code, err := execute(ctx, command, args)
	span.SetAttributes(insight.Int("process.exit_code", code))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return code
}

// setupTracing resolves connection options and builds the provider and the
// local telemetry buffer. Any failure leaves tracing off.
func setupTracing() (*insight.Provider, *storage.Store) {
	opts, err := insight.NewOptions()
	if err != nil {
		color.Yellow("Tracing disabled: %v", err)
		return nil, nil
	}

	cfg := insight.Config{
		ServiceName: "insight-cli",
		Exporter:    insight.ExporterNone,
		Connection:  opts,
	}
	if endpoint := os.Getenv("INSIGHT_COLLECTOR_ENDPOINT"); endpoint != "" {
		cfg.Exporter = insight.ExporterOTLP
		cfg.Endpoint = endpoint
		cfg.Insecure = os.Getenv("INSIGHT_COLLECTOR_INSECURE") == "true"
	}

	provider, err := insight.New(cfg)
	if err != nil {
		color.Yellow("Tracing disabled: %v", err)
		return nil, nil
	}

	store, err := storage.New(opts, slog.Default())
	if err != nil {
		color.Yellow("Telemetry buffer unavailable: %v", err)
		store = nil
	}

	return provider, store
}

// execute runs the wrapped command with stdio passed through.
func execute(ctx context.Context, command string, args []string) (int, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), err
		}
		return 1, err
	}
	return 0, nil
}
