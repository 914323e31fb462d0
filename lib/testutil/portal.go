package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

const DefaultSessionCookie = "_wave_key=valid"

type FakePortalOptions struct {
	// SessionCookie is the only Cookie header the portal accepts, it
	// defaults to DefaultSessionCookie.
	SessionCookie string
	// Vouchers maps booking numbers to pdf bodies.
	Vouchers map[int][]byte
	// Forecast is the html of the forecast index.
	Forecast string
	// Customers maps "<date>/<option_id>" to the html of a detail page.
	Customers map[string]string
}

// FakePortal serves the authenticated pages of the booking portal and
// redirects to the login page like the real one when the session is not
// accepted.
type FakePortal struct {
	*httptest.Server
	// Rejected counts requests redirected to the login page.
	Rejected atomic.Int64
}

func NewFakePortal(t testing.TB, opts FakePortalOptions) *FakePortal {
	t.Helper()
	if opts.SessionCookie == "" {
		opts.SessionCookie = DefaultSessionCookie
	}

	portal := &FakePortal{}
	requireSession := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") != opts.SessionCookie {
				portal.Rejected.Add(1)
				http.Redirect(w, r, "/users/log_in", http.StatusFound)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/log_in", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<form action="/users/log_in" method="post"></form>`))
	})
	mux.HandleFunc("/support/bookings/", requireSession(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/support/bookings/")
		number, err := strconv.Atoi(strings.TrimSuffix(rest, "/print_voucher"))
		if err != nil || !strings.HasSuffix(rest, "/print_voucher") {
			http.NotFound(w, r)
			return
		}
		pdf, ok := opts.Vouchers[number]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	mux.HandleFunc("/book/forecast/detail", requireSession(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("%s/%s", r.URL.Query().Get("date"), r.URL.Query().Get("option_id"))
		page, ok := opts.Customers[key]
		if !ok {
			http.Error(w, "unknown forecast option", http.StatusBadRequest)
			return
		}
		w.Write([]byte(page))
	}))
	mux.HandleFunc("/book/forecast", requireSession(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(opts.Forecast))
	}))

	portal.Server = httptest.NewServer(mux)
	t.Cleanup(portal.Close)
	return portal
}
