package cli

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pidash/internal/config"
	"github.com/rileyhilliard/pidash/internal/dashboard"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/spf13/cobra"
)

// dashboardFlags are shared by the root command and "pidash dashboard".
type dashboardFlags struct {
	Tab     string
	NoMouse bool
	LogFile string
}

var dashFlags dashboardFlags

// defaultLogFile receives log output while the TUI runs with PIDASH_DEBUG set.
const defaultLogFile = "pidash-debug.log"

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "ui"},
	Short:   "Open the interactive dashboard",
	Long: `Open the tabbed dashboard. This is also what plain 'pidash' does.

Keys: 1-6 or Tab switch tabs, Enter opens details, s/t/R start/stop/restart,
l shows logs, space toggles a GPIO pin, S scans the network, ? shows help.

Examples:
  pidash dashboard
  pidash dashboard --tab gpio
  pidash dashboard --no-mouse --log-file /tmp/pidash.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(dashFlags)
	},
}

func init() {
	addDashboardFlags(dashboardCmd, &dashFlags)
	rootCmd.AddCommand(dashboardCmd)
}

func addDashboardFlags(cmd *cobra.Command, f *dashboardFlags) {
	cmd.Flags().StringVar(&f.Tab, "tab", "", "tab to open on start (containers, system, gpio, projects, network, services)")
	cmd.Flags().BoolVar(&f.NoMouse, "no-mouse", false, "disable mouse support")
	cmd.Flags().StringVar(&f.LogFile, "log-file", "", "write logs to this file while the dashboard runs")
}

// dashboardOptions maps config and flags onto dashboard options.
func dashboardOptions(cfg *config.Config, host string, f dashboardFlags) (dashboard.Options, error) {
	opts := dashboard.OptionsFromConfig(cfg, host)
	if f.Tab != "" {
		tab, ok := dashboard.ParseTab(f.Tab)
		if !ok {
			return opts, errors.New(errors.ErrConfig,
				"Unknown tab '"+f.Tab+"'",
				"Pick one of: containers, system, gpio, projects, network, services")
		}
		opts.DefaultTab = tab
	}
	if f.NoMouse {
		opts.Mouse = false
	}
	return opts, nil
}

// programOptions builds the bubbletea options for the dashboard.
func programOptions(opts dashboard.Options) []tea.ProgramOption {
	p := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Mouse {
		p = append(p, tea.WithMouseCellMotion())
	}
	return p
}

// redirectLogs keeps log output off the screen while the TUI owns it. Logs
// go to path, to the default file when debugging, or nowhere.
func redirectLogs(path string) (io.Closer, error) {
	if path == "" && logger.DebugEnabled() {
		path = defaultLogFile
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := tea.LogToFile(path, "pidash")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open log file "+path,
			"Check the directory exists and is writable")
	}
	return f, nil
}

func runDashboard(f dashboardFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logs, err := redirectLogs(f.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logs.Close()
		log.SetOutput(os.Stderr)
	}()

	conn, err := connect(cfg, logger.NewEnvLogger("[api]"))
	if err != nil {
		return err
	}
	defer conn.Close()

	opts, err := dashboardOptions(cfg, hostLabel(cfg, conn.client), f)
	if err != nil {
		return err
	}
	opts.Logger = logger.NewEnvLogger("[dashboard]")

	model := dashboard.New(conn.client, opts)
	final, err := tea.NewProgram(model, programOptions(opts)...).Run()
	if m, ok := final.(dashboard.Model); ok {
		m.Shutdown()
	} else {
		model.Shutdown()
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Dashboard exited with an error",
			"Run with --log-file to capture details")
	}
	return nil
}
