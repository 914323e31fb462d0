package portal

import (
	"bytes"
	"net/url"
	"voxwave-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

type CustomerRecord struct {
	BookingID string `json:"bookingId"`
	Provider  string `json:"provider"`
	DateTime  string `json:"dateTime"`
	GuestName string `json:"guestName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Pax       string `json:"pax"`
}

type ProductForecast struct {
	ProductName   string `json:"productName"`
	BookingsCount string `json:"bookingsCount"`
	DetailLink    string `json:"detailLink"`
}

type ForecastEntry struct {
	Date     string            `json:"date"`
	Day      string            `json:"day"`
	Products []ProductForecast `json:"products"`
}

func parseHtml(page []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(page))
}

// ScrapeCustomers reads one record per row of the customer table, in row
// order.
func ScrapeCustomers(page []byte, schema CustomerSchema) ([]CustomerRecord, error) {
	doc, err := parseHtml(page)
	if err != nil {
		return nil, err
	}

	customers := []CustomerRecord{}
	doc.Find(schema.Rows).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find(schema.Cells)
		guest := cells.Eq(schema.GuestColumn)

		customers = append(customers, CustomerRecord{
			BookingID: htmlutil.Text(cells.Eq(schema.BookingIDColumn)),
			Provider:  htmlutil.Text(cells.Eq(schema.ProviderColumn)),
			DateTime:  htmlutil.Text(cells.Eq(schema.DateTimeColumn)),
			GuestName: htmlutil.LeadingText(guest),
			Email:     htmlutil.Text(guest.Find(schema.Email)),
			Phone:     htmlutil.Text(guest.Find(schema.Phone)),
			Pax:       htmlutil.Text(cells.Eq(schema.PaxColumn)),
		})
	})

	return customers, nil
}

// ScrapeForecast reads one entry per forecast block. Products without a
// detail link are left out, relative links are resolved against origin.
func ScrapeForecast(page []byte, origin *url.URL, schema ForecastSchema) ([]ForecastEntry, error) {
	doc, err := parseHtml(page)
	if err != nil {
		return nil, err
	}

	bookings := []ForecastEntry{}
	doc.Find(schema.Blocks).Each(func(_ int, block *goquery.Selection) {
		entry := ForecastEntry{
			Date:     htmlutil.Text(block.Find(schema.Date)),
			Day:      htmlutil.Text(block.Find(schema.Day)),
			Products: []ProductForecast{},
		}

		block.Find(schema.Products).Each(func(_ int, row *goquery.Selection) {
			link, ok := htmlutil.ResolveHref(origin, row.Find(schema.DetailLink).First())
			if !ok {
				return
			}
			entry.Products = append(entry.Products, ProductForecast{
				ProductName:   htmlutil.Text(row.Find(schema.ProductName).First()),
				BookingsCount: htmlutil.Text(row.Find(schema.BookingsCount).First()),
				DetailLink:    link,
			})
		})

		bookings = append(bookings, entry)
	})

	return bookings, nil
}
