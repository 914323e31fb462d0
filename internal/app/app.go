package app

import (
	"fmt"
	"voxwave-backend/internal/archive"
	"voxwave-backend/internal/config"
	"voxwave-backend/internal/portal"
	"voxwave-backend/internal/service"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"
)

// App holds every long lived component, built once from the config and
// shared by the server and the cli.
type App struct {
	Config  config.Config
	Store   *session.Store
	Auth    *portal.Authenticator
	Fetcher *portal.Fetcher
	Service *service.Service
	// Archive is nil when disabled.
	Archive *archive.Archive
}

func New(cfg config.Config, verbose bool, tel telemetry.API) (*App, error) {
	endpoints, err := portal.NewEndpoints(cfg.Portal.Origin)
	if err != nil {
		return nil, err
	}

	var output telemetry.HttpOutput
	if verbose {
		dump, err := telemetry.NewFilesystemOutput(cfg.Portal.DumpDirectory)
		if err != nil {
			return nil, fmt.Errorf("create http dump directory: %w", err)
		}
		output = dump
	}

	store := session.NewStore()
	driver := portal.NewPlaywrightDriver(portal.PlaywrightOptions{
		Headless:  *cfg.Browser.Headless,
		Args:      cfg.Browser.Args,
		UserAgent: cfg.Portal.UserAgent,
		Timeout:   cfg.BrowserTimeout(),
	})
	auth := portal.NewAuthenticator(
		driver,
		store,
		portal.Credentials{
			Email:    cfg.Portal.Email,
			Password: cfg.Portal.Password,
		},
		endpoints,
		cfg.Schema.Login,
		tel,
	)
	fetcher := portal.NewFetcher(endpoints, store, portal.FetcherOptions{
		UserAgent:         cfg.Portal.UserAgent,
		Timeout:           cfg.PortalTimeout(),
		RequestsPerSecond: cfg.Portal.RequestsPerSecond,
		BypassCloudflare:  cfg.Portal.BypassCloudflare,
		Output:            output,
	}, tel)

	out := &App{
		Config:  cfg,
		Store:   store,
		Auth:    auth,
		Fetcher: fetcher,
	}

	opts := service.Options{
		Store:     store,
		Auth:      auth,
		Fetcher:   fetcher,
		Endpoints: endpoints,
		Schema:    cfg.Schema,
		Tel:       tel,
	}
	if !cfg.Archive.Disabled {
		vouchers, err := archive.Open(cfg.Archive.Directory, cfg.Archive.Database)
		if err != nil {
			return nil, fmt.Errorf("open voucher archive: %w", err)
		}
		out.Archive = vouchers
		opts.Archive = vouchers
	}
	out.Service = service.NewService(opts)

	return out, nil
}

func (a *App) Close() error {
	if a.Archive != nil {
		return a.Archive.Close()
	}
	return nil
}
