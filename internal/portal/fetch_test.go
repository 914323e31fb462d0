package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"voxwave-backend/internal/session"
	"voxwave-backend/internal/telemetry"

	_ "embed"

	"github.com/stretchr/testify/require"
)

//go:embed testdata/login_redirect.html
var loginPage []byte

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *session.Store, *telemetry.TestAPI) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	endpoints, err := NewEndpoints(server.URL)
	require.NoError(t, err)
	store := session.NewStore()
	tel := telemetry.NewTestAPI()
	return NewFetcher(endpoints, store, FetcherOptions{}, tel), store, tel
}

func TestFetchSendsCookiesInOrder(t *testing.T) {
	var gotCookie, gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/book/forecast/detail", func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotQuery = r.URL.RawQuery
		w.Write([]byte("<html>ok</html>"))
	})
	fetcher, store, _ := newTestFetcher(t, mux)

	store.Set(session.New([]session.Cookie{
		{Name: "z", Value: "26"},
		{Name: "_wave_key", Value: "abc"},
		{Name: "a", Value: "1"},
	}))

	body, err := fetcher.Fetch(
		context.Background(),
		customerDetailPath,
		CustomerDetailQuery("2024-05-01", "31"),
	)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(body))
	require.Equal(t, "z=26; _wave_key=abc; a=1", gotCookie)
	require.Equal(t, "date=2024-05-01&option_id=31", gotQuery)
}

func TestFetchBinaryBody(t *testing.T) {
	pdf := []byte("%PDF-1.4\x00\x01\x02\xff")
	mux := http.NewServeMux()
	mux.HandleFunc("/support/bookings/48702/print_voucher", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	})
	fetcher, store, _ := newTestFetcher(t, mux)
	store.Set(session.New(waveCookies))

	body, err := fetcher.Fetch(context.Background(), fetcher.endpoints.Voucher(48702), nil)
	require.NoError(t, err)
	require.Equal(t, pdf, body)
}

func TestFetchWithoutSession(t *testing.T) {
	fetcher, _, _ := newTestFetcher(t, http.NewServeMux())

	_, err := fetcher.Fetch(context.Background(), forecastPath, nil)
	require.ErrorIs(t, err, ErrNoSession)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestFetchUpstreamStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/book/forecast", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	fetcher, store, tel := newTestFetcher(t, mux)
	store.Set(session.New(waveCookies))

	_, err := fetcher.Fetch(context.Background(), forecastPath, nil)
	require.ErrorIs(t, err, ErrUpstream)
	require.NotErrorIs(t, err, ErrSessionExpired)
	require.True(t, tel.Has("broken", report_fetcher_fetch))
}

func TestFetchDetectsRejectedSession(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "redirect to login",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, loginPath, http.StatusFound)
			},
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.Handle("/book/forecast", test.handler)
			mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
				w.Write(loginPage)
			})
			fetcher, store, _ := newTestFetcher(t, mux)
			store.Set(session.New(waveCookies))

			_, err := fetcher.Fetch(context.Background(), forecastPath, nil)
			require.ErrorIs(t, err, ErrSessionExpired)
			require.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	endpoints, err := NewEndpoints(server.URL)
	require.NoError(t, err)
	server.Close()

	store := session.NewStore()
	store.Set(session.New(waveCookies))
	fetcher := NewFetcher(endpoints, store, FetcherOptions{}, telemetry.NewTestAPI())

	_, err = fetcher.Fetch(context.Background(), forecastPath, nil)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestEndpoints(t *testing.T) {
	endpoints, err := NewEndpoints(DefaultOrigin)
	require.NoError(t, err)

	require.Equal(t, "https://wave.live/users/log_in", endpoints.Login())
	require.Equal(t, "https://wave.live/book/forecast", endpoints.Forecast())
	require.Equal(t, "https://wave.live/book/forecast/detail", endpoints.CustomerDetail())
	require.Equal(t, "https://wave.live/support/bookings/479232/print_voucher", endpoints.Voucher(479232))
	require.Equal(t, "https://wave.live/support/bookings/-658/print_voucher", endpoints.Voucher(-658))

	_, err = NewEndpoints("wave.live")
	require.Error(t, err)
}

func TestFetchIgnoresPortalSetCookie(t *testing.T) {
	var cookies []string
	mux := http.NewServeMux()
	mux.HandleFunc("/book/forecast", func(w http.ResponseWriter, r *http.Request) {
		cookies = append(cookies, r.Header.Get("Cookie"))
		http.SetCookie(w, &http.Cookie{Name: "tracker", Value: "1", Path: "/"})
		w.Write([]byte("<html></html>"))
	})
	fetcher, store, _ := newTestFetcher(t, mux)
	store.Set(session.New([]session.Cookie{{Name: "_wave_key", Value: "abc"}}))

	for i := 0; i < 2; i++ {
		_, err := fetcher.Fetch(context.Background(), forecastPath, nil)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"_wave_key=abc", "_wave_key=abc"}, cookies)
}

func TestFetcherOptionDefaults(t *testing.T) {
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	endpoints, err := NewEndpoints(server.URL)
	require.NoError(t, err)
	store := session.NewStore()
	store.Set(session.New([]session.Cookie{{Name: "_wave_key", Value: "abc"}}))

	defaulted := NewFetcher(endpoints, store, FetcherOptions{}, telemetry.NewTestAPI())
	require.Equal(t, defaultFetcherOptions.Timeout, defaulted.http.GetClient().Timeout)
	_, err = defaulted.Fetch(context.Background(), forecastPath, nil)
	require.NoError(t, err)

	custom := NewFetcher(endpoints, store, FetcherOptions{UserAgent: "wave-cli"}, telemetry.NewTestAPI())
	_, err = custom.Fetch(context.Background(), forecastPath, nil)
	require.NoError(t, err)

	require.Equal(t, []string{DefaultUserAgent, "wave-cli"}, agents)
}
