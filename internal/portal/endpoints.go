package portal

import (
	"fmt"
	"net/url"
)

const DefaultOrigin = "https://wave.live"

const (
	loginPath          = "/users/log_in"
	forecastPath       = "/book/forecast"
	customerDetailPath = "/book/forecast/detail"
)

// Endpoints are the pages of the portal, all of them live under one origin.
type Endpoints struct {
	Origin *url.URL
}

func NewEndpoints(origin string) (Endpoints, error) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return Endpoints{}, err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return Endpoints{}, fmt.Errorf("portal origin must be absolute, got %q", origin)
	}
	return Endpoints{Origin: parsed}, nil
}

func (e Endpoints) resolve(path string) string {
	return e.Origin.ResolveReference(&url.URL{Path: path}).String()
}

func (e Endpoints) Login() string {
	return e.resolve(loginPath)
}

func (e Endpoints) Forecast() string {
	return e.resolve(forecastPath)
}

func (e Endpoints) CustomerDetail() string {
	return e.resolve(customerDetailPath)
}

func (e Endpoints) Voucher(bookingNumber int) string {
	return e.resolve(fmt.Sprintf("/support/bookings/%d/print_voucher", bookingNumber))
}

// CustomerDetailQuery is the query string the customer detail page is
// selected by.
func CustomerDetailQuery(date, optionID string) url.Values {
	return url.Values{
		"date":      {date},
		"option_id": {optionID},
	}
}
