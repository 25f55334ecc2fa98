package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/config"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/rileyhilliard/pidash/internal/ui"
	"github.com/rileyhilliard/pidash/pkg/sshutil"
	"github.com/spf13/cobra"
)

// Global flags.
var (
	cfgFile string
	apiURL  string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "pidash",
	Short: "Terminal dashboard for a Raspberry Pi home server",
	Long: `pidash talks to the Pi management API and shows containers, system
health, GPIO pins, projects, network and services in a tabbed terminal
dashboard. Run without a subcommand to open the dashboard.

Examples:
  pidash
  pidash --api http://raspberrypi.local:5000 --tab system
  pidash stats
  pidash container restart web
  pidash doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupGlobals(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(dashFlags)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./.pidash.yaml, then ~/.config/pidash/config.yaml)")
	pf.StringVar(&apiURL, "api", "", "management API base URL (overrides api.url)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log debug output (same as PIDASH_DEBUG=1)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	addDashboardFlags(rootCmd, &dashFlags)
	rootCmd.AddCommand(completionCmd)
}

// setupGlobals applies the global flags before any command runs.
func setupGlobals(cmd *cobra.Command) {
	if verbose {
		_ = os.Setenv(logger.DebugEnv, "1")
	}
	ui.ConfigureColors(noColor, cmd.OutOrStdout())
	log := logger.NewEnvLogger("[ssh]")
	sshutil.WarningHandler = func(message string) { log.Warn("%s", message) }
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// loadConfig finds and validates the effective config. --api overrides the
// configured URL.
func loadConfig() (*config.Config, error) {
	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.URL = config.Expand(strings.TrimSpace(apiURL))
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connection is an API client plus the SSH tunnel it may ride on.
type connection struct {
	client *api.Client
	tunnel *sshutil.Tunnel
}

// connect builds the API client for cfg, tunnelling through api.ssh when
// set. The tunnel is dialled lazily on the first request.
func connect(cfg *config.Config, log logger.Logger) (*connection, error) {
	opts := []api.Option{api.WithTimeout(cfg.API.Timeout), api.WithLogger(log)}
	conn := &connection{}
	if cfg.API.SSH != "" {
		conn.tunnel = sshutil.NewTunnel(cfg.API.SSH, cfg.API.Timeout, cfg.API.StrictHostKeyChecking)
		opts = append(opts, api.WithTransport(conn.tunnel.Transport()))
	}

	client, err := api.New(cfg.API.URL, opts...)
	if err != nil {
		conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid API URL: "+cfg.API.URL,
			"Use something like http://raspberrypi.local:5000")
	}
	conn.client = client
	return conn, nil
}

// Close tears down the tunnel, if any.
func (c *connection) Close() {
	if c.tunnel != nil {
		_ = c.tunnel.Close()
	}
	sshutil.CloseAgent()
}

// hostLabel is what the dashboard header shows for cfg.
func hostLabel(cfg *config.Config, client *api.Client) string {
	if cfg.API.SSH != "" {
		return client.Host() + " via " + cfg.API.SSH
	}
	return client.Host()
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for pidash.

Examples:
  pidash completion bash > /etc/bash_completion.d/pidash
  pidash completion zsh > "${fpath[1]}/_pidash"
  pidash completion fish > ~/.config/fish/completions/pidash.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenPowerShellCompletion(out)
		}
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}
	fmt.Fprint(os.Stderr, formatError(err))
	os.Exit(1)
}

// formatError renders err for the terminal. Structured errors carry their
// own layout.
func formatError(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Error()
	}
	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			return fmt.Sprintf("%s Unknown command %q\n\n  Run 'pidash --help' to see available commands.\n", ui.SymbolFail, name)
		}
	}
	return fmt.Sprintf("%s %v\n", ui.SymbolFail, err)
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "pidash"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
