package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"voxwave-backend/internal/session"

	"dario.cat/mergo"
	"github.com/playwright-community/playwright-go"
)

// Page is one scoped browser automation run, it must be closed on every
// path so no browser process is leaked.
type Page interface {
	// Goto navigates and waits for the network to settle.
	Goto(url string) error
	Fill(selector, value string) error
	// Click clicks and waits for the navigation it triggers to settle, the
	// click failing to navigate is an error.
	Click(selector string) error
	Exists(selector string) (bool, error)
	// Cookies returns every cookie of the browser context in the order the
	// browser reports them.
	Cookies() ([]session.Cookie, error)
	Close() error
}

type Driver interface {
	Open(ctx context.Context) (Page, error)
}

type PlaywrightOptions struct {
	Headless  bool
	Args      []string
	UserAgent string
	// Timeout applies to every navigation and action.
	Timeout time.Duration
}

var DefaultBrowserArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
}

// PlaywrightDriver launches a fresh chromium for every Open.
type PlaywrightDriver struct {
	opts PlaywrightOptions
}

// NewPlaywrightDriver fills the zero Args and Timeout of opts with
// DefaultBrowserArgs and 30 seconds.
func NewPlaywrightDriver(opts PlaywrightOptions) PlaywrightDriver {
	err := mergo.Merge(&opts, PlaywrightOptions{
		Args:    DefaultBrowserArgs,
		Timeout: 30 * time.Second,
	})
	if err != nil {
		slog.Warn("failed to apply default browser options", "err", err)
	}
	return PlaywrightDriver{opts: opts}
}

// InstallBrowsers downloads the playwright driver and chromium.
func InstallBrowsers() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

func (d PlaywrightDriver) Open(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
		Args:     d.opts.Args,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("launch chromium: %w", err), pw.Stop())
	}

	p := &playwrightPage{
		pw:      pw,
		browser: browser,
		done:    make(chan struct{}),
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if d.opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(d.opts.UserAgent)
	}
	p.context, err = browser.NewContext(contextOpts)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("new browser context: %w", err), p.Close())
	}
	p.page, err = p.context.NewPage()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("new page: %w", err), p.Close())
	}
	if d.opts.Timeout > 0 {
		ms := float64(d.opts.Timeout.Milliseconds())
		p.page.SetDefaultTimeout(ms)
		p.page.SetDefaultNavigationTimeout(ms)
	}

	// playwright calls do not take a context, closing the browser makes any
	// pending call return.
	go func() {
		select {
		case <-ctx.Done():
			p.Close()
		case <-p.done:
		}
	}()

	return p, nil
}

type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	return err
}

func (p *playwrightPage) Fill(selector, value string) error {
	return p.page.Locator(selector).First().Fill(value)
}

// Click starts waiting for the navigation before clicking, so a navigation
// that commits while the click is still returning is not missed.
func (p *playwrightPage) Click(selector string) error {
	_, err := p.page.ExpectNavigation(func() error {
		return p.page.Locator(selector).First().Click()
	}, playwright.PageExpectNavigationOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	return err
}

func (p *playwrightPage) Exists(selector string) (bool, error) {
	count, err := p.page.Locator(selector).Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *playwrightPage) Cookies() ([]session.Cookie, error) {
	cookies, err := p.context.Cookies()
	if err != nil {
		return nil, err
	}
	out := make([]session.Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = session.Cookie{Name: c.Name, Value: c.Value}
	}
	return out, nil
}

func (p *playwrightPage) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
		var errs []error
		if err := p.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := p.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}
