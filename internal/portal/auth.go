package portal

import (
	"context"
	"errors"
	"fmt"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"
)

const (
	report_authenticator_login = "authenticator.login"
	report_authenticator_close = "authenticator.close"
)

var ErrLoginFailed = errors.New("login failed")

type Credentials struct {
	Email    string
	Password string
}

// Authenticator logs into the portal like a human would and stores the
// resulting cookies as the current session.
type Authenticator struct {
	driver    Driver
	store     *session.Store
	creds     Credentials
	endpoints Endpoints
	schema    LoginSchema
	tel       telemetry.API
}

func NewAuthenticator(
	driver Driver,
	store *session.Store,
	creds Credentials,
	endpoints Endpoints,
	schema LoginSchema,
	tel telemetry.API,
) *Authenticator {
	return &Authenticator{
		driver:    driver,
		store:     store,
		creds:     creds,
		endpoints: endpoints,
		schema:    schema,
		tel:       telemetry.NewScopedAPI("portal", tel),
	}
}

// Login returns true if the login succeeded and the session store now holds
// the new session. On failure the store is cleared so a stale session is
// never reused.
func (a *Authenticator) Login(ctx context.Context) bool {
	cookies, err := a.login(ctx)
	if err != nil {
		a.tel.ReportWarning(report_authenticator_login, err)
		a.store.Clear()
		return false
	}
	a.store.Set(session.New(cookies))
	a.tel.ReportCount(report_authenticator_login, int64(len(cookies)))
	return true
}

func (a *Authenticator) login(ctx context.Context) ([]session.Cookie, error) {
	page, err := a.driver.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		err := page.Close()
		if err != nil {
			a.tel.ReportWarning(report_authenticator_close, err)
		}
	}()

	loginUrl := a.endpoints.Login()
	err = page.Goto(loginUrl)
	if err != nil {
		return nil, fmt.Errorf("open login page %s: %w", loginUrl, err)
	}
	a.tel.ReportDebug("opened login page", loginUrl)

	err = page.Fill(a.schema.Email, a.creds.Email)
	if err != nil {
		return nil, fmt.Errorf("fill email: %w", err)
	}
	err = page.Fill(a.schema.Password, a.creds.Password)
	if err != nil {
		return nil, fmt.Errorf("fill password: %w", err)
	}
	err = page.Click(a.schema.Submit)
	if err != nil {
		return nil, fmt.Errorf("submit login form: %w", err)
	}
	a.tel.ReportDebug("login form submitted")

	loggedIn, err := page.Exists(a.schema.LoggedIn)
	if err != nil {
		return nil, fmt.Errorf("check login marker %s: %w", a.schema.LoggedIn, err)
	}
	if !loggedIn {
		return nil, fmt.Errorf("%w: could not find %s", ErrLoginFailed, a.schema.LoggedIn)
	}

	cookies, err := page.Cookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no cookies were set", ErrLoginFailed)
	}
	return cookies, nil
}
