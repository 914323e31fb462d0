package commands

import (
	"fmt"
	"log/slog"
	"os"
	"voxwave-backend/internal/portal"
	"voxwave-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var voucherOutput string

func init() {
	voucherCmd.Flags().StringVarP(&voucherOutput, "output", "o", "voucher.pdf", "Where to write the voucher pdf.")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(voucherCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(installBrowserCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs into the portal with the configured credentials and prints the captured cookie names.",
	Run: func(cmd *cobra.Command, args []string) {
		components, err := loadApp()
		if err != nil {
			serviceutil.Fatal("init app", err)
		}
		defer components.Close()

		if !components.Auth.Login(cmd.Context()) {
			serviceutil.Fatal("login", portal.ErrLoginFailed)
		}
		current, _ := components.Store.Get()

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Cookie", "Length"})
		for _, c := range current.Cookies {
			t.AppendRow(table.Row{c.Name, len(c.Value)})
		}
		t.Render()
	},
}

var voucherCmd = &cobra.Command{
	Use:   "voucher <booking code> [-o <path/to/voucher.pdf>]",
	Short: "Downloads the voucher pdf of a booking.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		components, err := loadApp()
		if err != nil {
			serviceutil.Fatal("init app", err)
		}
		defer components.Close()

		voucher, err := components.Service.DownloadVoucher(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("download voucher", err)
		}
		err = os.WriteFile(voucherOutput, voucher.PDF, 0644)
		if err != nil {
			serviceutil.Fatal("write voucher", err)
		}
		slog.Info(
			"voucher downloaded",
			"booking_number", voucher.BookingNumber,
			"path", voucherOutput,
			"size", len(voucher.PDF),
		)
	},
}

var customersCmd = &cobra.Command{
	Use:   "customers <date> <option id>",
	Short: "Lists the customers booked on a forecast option.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		components, err := loadApp()
		if err != nil {
			serviceutil.Fatal("init app", err)
		}
		defer components.Close()

		customers, err := components.Service.CustomerDetails(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("fetch customer details", err)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Booking", "Provider", "Time", "Guest", "Email", "Phone", "Pax"})
		for _, c := range customers {
			t.AppendRow(table.Row{c.BookingID, c.Provider, c.DateTime, c.GuestName, c.Email, c.Phone, c.Pax})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(customers)})
		t.Render()
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Lists the booking forecast per day and product.",
	Run: func(cmd *cobra.Command, args []string) {
		components, err := loadApp()
		if err != nil {
			serviceutil.Fatal("init app", err)
		}
		defer components.Close()

		bookings, err := components.Service.BookingForecast(cmd.Context())
		if err != nil {
			serviceutil.Fatal("fetch booking forecast", err)
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Date", "Day", "Product", "Bookings", "Detail"})
		for _, entry := range bookings {
			if len(entry.Products) == 0 {
				t.AppendRow(table.Row{entry.Date, entry.Day, "-", "-", ""})
				continue
			}
			for _, p := range entry.Products {
				t.AppendRow(table.Row{entry.Date, entry.Day, p.ProductName, p.BookingsCount, p.DetailLink})
			}
		}
		t.Render()
	},
}

var installBrowserCmd = &cobra.Command{
	Use:   "install-browser",
	Short: "Downloads the playwright driver and chromium used to log in.",
	Run: func(cmd *cobra.Command, args []string) {
		err := portal.InstallBrowsers()
		if err != nil {
			serviceutil.Fatal("install browser", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "chromium installed")
	},
}
