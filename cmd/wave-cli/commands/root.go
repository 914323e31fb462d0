package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"voxwave-backend/internal/app"
	"voxwave-backend/internal/config"
	"voxwave-backend/internal/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "wave-cli",
	Short: "wave-cli is a CLI for the wave booking portal: booking codes, vouchers and forecasts.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "Path to the config file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging and dump http messages.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadApp builds the same components the server uses, the caller must
// Close it.
func loadApp() (*app.App, error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, verbose, telemetry.SlogAPI{})
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}
