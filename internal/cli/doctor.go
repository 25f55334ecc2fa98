package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/rileyhilliard/pidash/internal/doctor"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/rileyhilliard/pidash/internal/ui"
	"github.com/rileyhilliard/pidash/pkg/sshutil"
	"github.com/spf13/cobra"
)

var (
	doctorJSON bool
	doctorFix  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, network and API problems",
	Long: `Run diagnostic checks against the config, the SSH tunnel (if any),
the network path to the Pi and the management API.

Examples:
  pidash doctor
  pidash doctor --fix
  pidash doctor --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCommand(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	checks, cleanup := collectChecks(cfgFile)
	defer cleanup()

	results := doctor.RunAll(ctx, checks)
	if doctorFix {
		var fixed int
		results, fixed = doctor.FixAll(ctx, checks, results)
		logger.NewEnvLogger("[doctor]").Debug("applied %d fixes", fixed)
	}

	report := doctor.BuildReport(checks, results)
	if doctorJSON {
		if err := WriteJSONSuccess(out, report); err != nil {
			return err
		}
	} else {
		renderDoctorReport(out, report, doctorFix)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// collectChecks builds the check list for the config at path. Network and
// API checks are skipped when the config can't be loaded; the config
// checks report why.
func collectChecks(path string) ([]doctor.Check, func()) {
	checks := doctor.NewConfigChecks(path)
	noop := func() {}

	cfg, err := loadConfig()
	if err != nil {
		return checks, noop
	}
	conn, err := connect(cfg, logger.NewEnvLogger("[api]"))
	if err != nil {
		return checks, noop
	}

	pingHost := conn.client.Host()
	if conn.tunnel != nil {
		checks = append(checks, &doctor.SSHTunnelCheck{
			Host:   cfg.API.SSH,
			Tunnel: conn.tunnel,
			Addr:   apiAddr(cfg.API.URL),
		})
		pingHost = sshutil.Hostname(cfg.API.SSH)
	}
	checks = append(checks,
		&doctor.PingCheck{Host: pingHost},
		&doctor.APICheck{Client: conn.client, URL: cfg.API.URL},
		&doctor.HardwareCheck{Client: conn.client},
	)
	return checks, conn.Close
}

// apiAddr is the host:port the API URL points at.
func apiAddr(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// renderDoctorReport prints the report grouped by category.
func renderDoctorReport(out io.Writer, report doctor.Report, fixed bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.HeaderStyle.Render("pidash Diagnostic Report"))
	fmt.Fprintln(out)

	for _, cat := range report.Categories {
		fmt.Fprintln(out, ui.HeaderStyle.Render(cat.Name))
		for _, r := range cat.Results {
			renderCheckResult(out, r)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)

	s := report.Summary
	if s.AllClear {
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), "Everything looks good")
	} else {
		issues := s.Fail + s.Warn
		fmt.Fprintf(out, "%s %d issue%s found\n",
			ui.ErrorStyle.Render(ui.SymbolFail), issues, pluralSuffix(issues))
		if s.Fixable > 0 && !fixed {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Run with %s to attempt automatic fixes where possible.\n",
				ui.MutedStyle.Render("--fix"))
		}
	}
	fmt.Fprintln(out)
}

func renderCheckResult(out io.Writer, r doctor.CheckResult) {
	symbol, style := ui.SymbolSuccess, ui.SuccessStyle
	switch r.Status {
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, ui.ErrorStyle
	}
	fmt.Fprintf(out, "  %s %s\n", style.Render(symbol), r.Message)

	if r.Suggestion != "" && r.Status != doctor.StatusPass {
		for _, line := range strings.Split(r.Suggestion, "\n") {
			fmt.Fprintf(out, "    %s\n", ui.MutedStyle.Render(line))
		}
	}
}

func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

