package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"voxwave-backend/internal/telemetry"
	"voxwave-backend/lib/serviceutil"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	tel, err := telemetry.SetupFromEnv(ctx, "wave-server")
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("telemetry.json5 not found, traces and metrics will not be exported")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)
}
