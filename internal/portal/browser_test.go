package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"

	"github.com/stretchr/testify/require"
)

// newTestBrowser skips the test when chromium has not been installed with
// `wave-cli install-browser`.
func newTestBrowser(t *testing.T) PlaywrightDriver {
	t.Helper()
	if testing.Short() {
		t.Skip("launches chromium")
	}

	driver := NewPlaywrightDriver(PlaywrightOptions{
		Headless: true,
		Args:     DefaultBrowserArgs,
		Timeout:  15 * time.Second,
	})
	page, err := driver.Open(context.Background())
	if err != nil {
		t.Skipf("chromium is not available: %s", err)
	}
	page.Close()
	return driver
}

const loginForm = `<html><body>
<form action="/users/log_in" method="post">
	<input name="user[email]" type="email">
	<input name="user[password]" type="password">
	<button type="submit">Log in</button>
</form>
</body></html>`

func TestPlaywrightLoginWaitsForSlowNavigation(t *testing.T) {
	driver := newTestBrowser(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/log_in", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Write([]byte(loginForm))
			return
		}
		r.ParseForm()
		if r.PostForm.Get("user[email]") != "ops@example.com" || r.PostForm.Get("user[password]") != "hunter2" {
			w.Write([]byte(loginForm))
			return
		}
		// the portal commits the navigation well after the click returns
		time.Sleep(500 * time.Millisecond)
		http.SetCookie(w, &http.Cookie{Name: "_wave_key", Value: "SFMyNTY", Path: "/"})
		http.Redirect(w, r, "/book/forecast", http.StatusFound)
	})
	mux.HandleFunc("/book/forecast", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/users/log_out">Log out</a></body></html>`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	endpoints, err := NewEndpoints(server.URL)
	require.NoError(t, err)
	store := session.NewStore()
	auth := NewAuthenticator(
		driver,
		store,
		Credentials{Email: "ops@example.com", Password: "hunter2"},
		endpoints,
		DefaultSchema().Login,
		telemetry.NewTestAPI(),
	)

	require.True(t, auth.Login(context.Background()))
	current, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, "_wave_key=SFMyNTY", current.CookieHeader())
}

func TestPlaywrightLoginWrongPassword(t *testing.T) {
	driver := newTestBrowser(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loginForm))
	}))
	defer server.Close()

	endpoints, err := NewEndpoints(server.URL)
	require.NoError(t, err)
	store := session.NewStore()
	store.Set(session.New([]session.Cookie{{Name: "_wave_key", Value: "stale"}}))
	auth := NewAuthenticator(
		driver,
		store,
		Credentials{Email: "ops@example.com", Password: "wrong"},
		endpoints,
		DefaultSchema().Login,
		telemetry.NewTestAPI(),
	)

	require.False(t, auth.Login(context.Background()))
	_, ok := store.Get()
	require.False(t, ok)
}

func TestPlaywrightOptionDefaults(t *testing.T) {
	driver := NewPlaywrightDriver(PlaywrightOptions{Headless: true})
	require.Equal(t, DefaultBrowserArgs, driver.opts.Args)
	require.Equal(t, 30*time.Second, driver.opts.Timeout)
	require.True(t, driver.opts.Headless)

	driver = NewPlaywrightDriver(PlaywrightOptions{Args: []string{"--no-sandbox"}, Timeout: time.Second})
	require.Equal(t, []string{"--no-sandbox"}, driver.opts.Args)
	require.Equal(t, time.Second, driver.opts.Timeout)
}
