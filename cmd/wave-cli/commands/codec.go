package commands

import (
	"fmt"
	"strconv"
	"voxwave-backend/lib/bookingcode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <booking code>...",
	Short: "Prints the booking number of each booking code.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Booking code", "Booking number"})

		for _, code := range args {
			number, err := bookingcode.Decode(code)
			if err != nil {
				return fmt.Errorf("%s: %w", code, err)
			}
			t.AppendRow(table.Row{code, number})
		}

		t.Render()
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode <booking number>...",
	Short: "Prints the shortest booking code of each booking number.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Booking number", "Booking code"})

		for _, arg := range args {
			number, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("%s is not a number: %w", arg, err)
			}
			code, err := bookingcode.Encode(number)
			if err != nil {
				return fmt.Errorf("%d: %w", number, err)
			}
			t.AppendRow(table.Row{number, code})
		}

		t.Render()
		return nil
	},
}
