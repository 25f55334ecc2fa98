package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/format"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/rileyhilliard/pidash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print container counts, system usage and Pi hardware stats",
	Long: `Fetch the global and Raspberry Pi stats once and print them.

Examples:
  pidash stats
  pidash stats --json | jq .data.global.system.cpu_percent`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(statsCmd)
}

// statsSource is the part of the API client stats needs.
type statsSource interface {
	GlobalStats(ctx context.Context) (api.GlobalStats, error)
	RpiStats(ctx context.Context) (api.RpiStats, error)
}

// StatsReport is the --json payload. Rpi is nil when hardware stats are
// unavailable; RpiError then says why.
type StatsReport struct {
	Global   api.GlobalStats `json:"global"`
	Rpi      *api.RpiStats   `json:"rpi,omitempty"`
	RpiError string          `json:"rpi_error,omitempty"`
}

// collectStats fetches both stats endpoints concurrently. Only the global
// stats are required.
func collectStats(ctx context.Context, src statsSource) (StatsReport, error) {
	var report StatsReport
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		global, err := src.GlobalStats(ctx)
		if err != nil {
			return err
		}
		report.Global = global
		return nil
	})
	g.Go(func() error {
		rpi, err := src.RpiStats(ctx)
		if err != nil {
			report.RpiError = err.Error()
			return nil
		}
		report.Rpi = &rpi
		return nil
	})
	if err := g.Wait(); err != nil {
		return StatsReport{}, err
	}
	return report, nil
}

func statsCommand(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return reportError(out, statsJSON, err)
	}
	conn, err := connect(cfg, logger.NewEnvLogger("[api]"))
	if err != nil {
		return reportError(out, statsJSON, err)
	}
	defer conn.Close()

	report, err := collectStats(ctx, conn.client)
	if err != nil {
		return reportError(out, statsJSON, err)
	}
	if statsJSON {
		return WriteJSONSuccess(out, report)
	}
	_, err = io.WriteString(out, renderStats(conn.client.Host(), report))
	return err
}

// reportError writes err as a JSON envelope in --json mode and returns an
// exit error so it is not printed twice. Otherwise err is returned as is.
func reportError(out io.Writer, asJSON bool, err error) error {
	if !asJSON {
		return err
	}
	if werr := WriteJSONFromError(out, err); werr != nil {
		return werr
	}
	return errors.NewExitError(1)
}

// renderStats formats report for the terminal.
func renderStats(host string, r StatsReport) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", ui.LabelStyle.Render(label), value)
	}
	sys := r.Global.System
	c := r.Global.Containers

	b.WriteString(ui.HeaderStyle.Render("pidash stats"))
	if host != "" {
		b.WriteString(ui.MutedStyle.Render(" " + host))
	}
	b.WriteString("\n\n")

	b.WriteString(ui.HeaderStyle.Render("CONTAINERS") + "\n")
	row("Running", ui.SuccessStyle.Render(fmt.Sprintf("%d", c.Running)))
	row("Stopped", fmt.Sprintf("%d", c.Stopped))
	row("Total", fmt.Sprintf("%d", c.Total))
	b.WriteString("\n")

	b.WriteString(ui.HeaderStyle.Render("SYSTEM") + "\n")
	row("CPU", usage(sys.CPUPercent, ""))
	row("Memory", usage(format.Ratio(sys.MemoryUsed, sys.MemoryTotal),
		format.BytesDefault(sys.MemoryUsed)+" / "+format.BytesDefault(sys.MemoryTotal)))
	row("Disk", usage(format.Ratio(sys.DiskUsed, sys.DiskTotal),
		format.BytesDefault(sys.DiskUsed)+" / "+format.BytesDefault(sys.DiskTotal)))
	row("Network", fmt.Sprintf("%s rx / %s tx", format.BytesDefault(sys.NetworkRx), format.BytesDefault(sys.NetworkTx)))
	b.WriteString("\n")

	b.WriteString(ui.HeaderStyle.Render("RASPBERRY PI") + "\n")
	if r.Rpi == nil {
		row("Hardware", ui.MutedStyle.Render("unavailable"))
		if r.RpiError != "" {
			row("", ui.MutedStyle.Render(r.RpiError))
		}
		return b.String()
	}
	row("CPU temp", fmt.Sprintf("%.1f°C", r.Rpi.CPUTemperature))
	gpu := "n/a"
	if r.Rpi.GPUTemperature != nil {
		gpu = fmt.Sprintf("%.1f°C", *r.Rpi.GPUTemperature)
	}
	row("GPU temp", gpu)
	row("Frequency", fmt.Sprintf("%.0f MHz", r.Rpi.CPUFrequencyMHz))
	row("Voltage", fmt.Sprintf("%.2f V", r.Rpi.CoreVoltage))
	if warnings := r.Rpi.Throttling.Warnings(); len(warnings) > 0 {
		for i, w := range warnings {
			label := ""
			if i == 0 {
				label = "Throttling"
			}
			row(label, ui.WarningStyle.Render(ui.SymbolWarning+" "+w))
		}
	} else {
		row("Throttling", ui.SuccessStyle.Render(ui.SymbolSuccess+" none"))
	}
	return b.String()
}

// usage renders a percentage coloured by threshold, with optional detail.
func usage(percent float64, detail string) string {
	s := lipgloss.NewStyle().Foreground(ui.ThresholdColor(percent)).Render(format.Percent(percent))
	if detail != "" {
		s += ui.MutedStyle.Render("  " + detail)
	}
	return s
}
