package commands

import (
	"errors"
	"voxwave-backend/internal/archive"
	"voxwave-backend/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var vouchersLimit int

func init() {
	vouchersCmd.Flags().IntVar(&vouchersLimit, "limit", 20, "How many downloads to list.")
	rootCmd.AddCommand(vouchersCmd)
}

var vouchersCmd = &cobra.Command{
	Use:   "vouchers [--limit <n>]",
	Short: "Lists the latest voucher downloads recorded in the archive.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Read(configPath)
		if err != nil {
			return err
		}
		if cfg.Archive.Disabled {
			return errors.New("the voucher archive is disabled")
		}

		vouchers, err := archive.Open(cfg.Archive.Directory, cfg.Archive.Database)
		if err != nil {
			return err
		}
		defer vouchers.Close()

		downloads, err := vouchers.List(cmd.Context(), vouchersLimit)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Downloaded", "Booking code", "Booking number", "Size", "Path"})
		for _, d := range downloads {
			t.AppendRow(table.Row{
				d.DownloadedAt.Format("2006-01-02 15:04:05"),
				d.BookingCode,
				d.BookingNumber,
				d.Size,
				d.Path,
			})
		}
		t.Render()
		return nil
	},
}
