package main

import (
	"flag"
	"log/slog"
	"voxwave-backend/internal/api"
	"voxwave-backend/internal/app"
	"voxwave-backend/internal/config"
	"voxwave-backend/internal/telemetry"
	"voxwave-backend/lib/serviceutil"

	"github.com/gin-gonic/gin"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the config file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)
	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	components, err := app.New(cfg, *verbose, telemetry.SlogAPI{})
	if err != nil {
		serviceutil.Fatal("init app", err)
	}
	defer components.Close()

	// the portal may be down at startup, requests will log in lazily.
	if components.Auth.Login(ctx) {
		slog.Info("logged into portal", "origin", cfg.Portal.Origin)
	} else {
		slog.Warn("initial login failed, retrying on first request", "origin", cfg.Portal.Origin)
	}

	router := api.NewRouter(components.Service, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	err = serviceutil.StartHttpServer(ctx, cfg.Server.Port, router)
	if err != nil {
		slog.Error("http server", "err", err)
	}
}
