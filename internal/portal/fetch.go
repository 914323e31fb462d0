package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const report_fetcher_fetch = "fetcher.fetch"

var (
	// ErrUpstream wraps every transport or status failure of the portal.
	ErrUpstream = errors.New("portal request failed")
	// ErrSessionExpired means the portal no longer accepts the session.
	ErrSessionExpired = fmt.Errorf("%w: session expired", ErrUpstream)
	ErrNoSession      = fmt.Errorf("%w: no session", ErrSessionExpired)
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// FetcherOptions left zero take their value from defaultFetcherOptions.
type FetcherOptions struct {
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	BypassCloudflare  bool
	// Output receives a dump of every request, it can be nil.
	Output telemetry.HttpOutput
}

var defaultFetcherOptions = FetcherOptions{
	UserAgent: DefaultUserAgent,
	Timeout:   30 * time.Second,
}

// Fetcher makes requests to the portal carrying the current session.
type Fetcher struct {
	http      *resty.Client
	store     *session.Store
	endpoints Endpoints
	tel       telemetry.API
}

func NewFetcher(endpoints Endpoints, store *session.Store, opts FetcherOptions, tel telemetry.API) *Fetcher {
	tel = telemetry.NewScopedAPI("portal", tel)

	err := mergo.Merge(&opts, defaultFetcherOptions)
	if err != nil {
		tel.ReportBroken(report_fetcher_fetch, fmt.Errorf("apply default options: %w", err))
	}

	client := resty.New()
	client.SetBaseURL(endpoints.Origin.String())
	// the session store is the only source of cookies.
	client.SetCookieJar(nil)
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(endpoints.Origin.Hostname()))
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel, "voxwave.portal.http", opts.Output)

	return &Fetcher{
		http:      client,
		store:     store,
		endpoints: endpoints,
		tel:       tel,
	}
}

// Fetch GETs endpoint (absolute or relative to the origin) with the
// session's cookies and returns the raw body.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	current, ok := f.store.Get()
	if !ok {
		return nil, ErrNoSession
	}

	req := f.http.R().
		SetContext(ctx).
		SetHeader("Cookie", current.CookieHeader())
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	res, err := req.Get(endpoint)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_fetch, err, endpoint)
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}

	if f.sessionRejected(res) {
		f.tel.ReportWarning(report_fetcher_fetch, "session rejected", endpoint, res.Status())
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, endpoint)
	}
	if res.IsError() {
		f.tel.ReportBroken(report_fetcher_fetch, fmt.Errorf("unexpected status %s", res.Status()), endpoint)
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstream, endpoint, res.Status())
	}

	return res.Body(), nil
}

// sessionRejected is true when the portal refused the cookies, either with
// an auth status or by redirecting to the login page.
func (f *Fetcher) sessionRejected(res *resty.Response) bool {
	switch res.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	if res.RawResponse == nil || res.RawResponse.Request == nil {
		return false
	}
	final := res.RawResponse.Request.URL
	return final.Host == f.endpoints.Origin.Host && final.Path == loginPath
}
