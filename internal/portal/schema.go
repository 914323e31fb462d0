package portal

// LoginSchema holds the selectors of the login form.
type LoginSchema struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Submit   string `json:"submit"`
	// LoggedIn only matches on pages shown to a logged in user.
	LoggedIn string `json:"logged_in"`
}

// CustomerSchema describes the customer table of a forecast detail page.
// Column fields are indexes into the cells of a row.
type CustomerSchema struct {
	Rows  string `json:"rows"`
	Cells string `json:"cells"`

	BookingIDColumn int `json:"booking_id_column"`
	ProviderColumn  int `json:"provider_column"`
	DateTimeColumn  int `json:"date_time_column"`
	GuestColumn     int `json:"guest_column"`
	PaxColumn       int `json:"pax_column"`

	// Email and Phone are looked up inside the guest cell.
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ForecastSchema describes the forecast index page.
type ForecastSchema struct {
	Blocks        string `json:"blocks"`
	Date          string `json:"date"`
	Day           string `json:"day"`
	Products      string `json:"products"`
	ProductName   string `json:"product_name"`
	BookingsCount string `json:"bookings_count"`
	DetailLink    string `json:"detail_link"`
}

// Schema maps the portal's markup to output fields, so a markup change on
// the portal is a config change here.
type Schema struct {
	Login     LoginSchema    `json:"login"`
	Customers CustomerSchema `json:"customers"`
	Forecast  ForecastSchema `json:"forecast"`
}

func DefaultSchema() Schema {
	return Schema{
		Login: LoginSchema{
			Email:    `input[name="user[email]"]`,
			Password: `input[name="user[password]"]`,
			Submit:   `button[type="submit"]`,
			LoggedIn: `a[href="/users/log_out"]`,
		},
		Customers: CustomerSchema{
			Rows:            "table.table-striped tbody tr",
			Cells:           "td",
			BookingIDColumn: 0,
			ProviderColumn:  1,
			DateTimeColumn:  2,
			GuestColumn:     3,
			PaxColumn:       4,
			Email:           ".text-primary",
			Phone:           ".text-success",
		},
		Forecast: ForecastSchema{
			Blocks:        ".block-content .row",
			Date:          ".font-size-h5 strong",
			Day:           ".font-size-h5 .text-muted",
			Products:      "table tbody tr",
			ProductName:   "td",
			BookingsCount: "td.text-right",
			DetailLink:    "td a",
		},
	}
}
