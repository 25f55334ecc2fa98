package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pidash/internal/config"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/rileyhilliard/pidash/internal/ui"
	"github.com/rileyhilliard/pidash/pkg/sshutil"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	URL            string // Pre-specified API URL
	SSH            string // Pre-specified SSH tunnel host
	Tab            string // Pre-specified default tab
	Global         bool   // Write ~/.config/pidash/config.yaml instead of ./.pidash.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a pidash config file",
	Long: `Create a config file pointing at your Pi's management API.

Writes ./.pidash.yaml, or ~/.config/pidash/config.yaml with --global.

Examples:
  pidash init
  pidash init --global
  pidash init --api http://raspberrypi.local:5000 --non-interactive
  pidash init --api http://localhost:5000 --ssh pi@garage --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if opts.URL == "" {
			opts.URL = apiURL
		}
		return Init(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVar(&initOpts.SSH, "ssh", "", "tunnel API traffic through this SSH host")
	f.StringVar(&initOpts.Tab, "default-tab", "", "tab the dashboard opens on")
	f.BoolVar(&initOpts.Global, "global", false, "write the global config instead of ./"+config.ConfigFileName)
	f.BoolVar(&initOpts.Overwrite, "force", false, "overwrite an existing config file")
	f.BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")
	rootCmd.AddCommand(initCmd)
}

// initTarget is the file init writes.
func initTarget(global bool) (string, error) {
	if !global {
		return config.ConfigFileName, nil
	}
	path := config.GlobalConfigPath()
	if path == "" {
		return "", errors.New(errors.ErrConfig,
			"Can't find your home directory",
			"Set $HOME, or run init without --global")
	}
	return path, nil
}

// probeAPI checks the URL answers before the config is saved. Replaced in
// tests.
var probeAPI = func(ctx context.Context, cfg *config.Config) error {
	conn, err := connect(cfg, logger.NewEnvLogger("[api]"))
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.client.GlobalStats(ctx)
	return err
}

// Init creates a config file from flags and interactive prompts.
func Init(ctx context.Context, out io.Writer, opts InitOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, err := initTarget(opts.Global)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.URL != "" {
		cfg.API.URL = strings.TrimSpace(opts.URL)
	}
	cfg.API.SSH = opts.SSH
	if opts.Tab != "" {
		cfg.UI.DefaultTab = opts.Tab
	}

	if !opts.NonInteractive {
		if err := promptInit(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
	}
	cfg.API.URL = config.Expand(cfg.API.URL)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintln(out)
	spin := ui.NewSpinner(out, "Testing connection to "+cfg.API.URL)
	spin.Start()
	if err := probeAPI(ctx, cfg); err != nil {
		spin.Fail("")
		if opts.NonInteractive {
			fmt.Fprintf(out, "  %s\n", ui.MutedStyle.Render(err.Error()))
		} else if !confirmSaveAnyway(out, cfg.API.URL, err) {
			return errors.WrapWithCode(err, errors.ErrAPI,
				fmt.Sprintf("Couldn't reach %s", cfg.API.URL),
				"Check the API server is running, then try again")
		}
	} else {
		spin.Success("")
	}

	if err := config.Save(path, cfg, true); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s Created %s\n\n", ui.SymbolSuccess, path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  pidash         - Open the dashboard")
	fmt.Fprintln(out, "  pidash stats   - Print a one-shot summary")
	fmt.Fprintln(out, "  pidash doctor  - Check configuration")
	return nil
}

// promptInit asks for the API URL, an optional SSH tunnel host and the
// default tab.
func promptInit(cfg *config.Config) error {
	tunnel := cfg.API.SSH
	sshOptions := []huh.Option[string]{huh.NewOption("No tunnel, connect directly", "")}
	if hosts, err := sshutil.ListHosts(); err == nil {
		for _, h := range hosts {
			sshOptions = append(sshOptions, huh.NewOption(h.Description(), h.Alias))
		}
	}

	tabOptions := make([]huh.Option[string], 0, len(config.TabNames))
	for _, t := range config.TabNames {
		tabOptions = append(tabOptions, huh.NewOption(t, t))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Management API URL").
				Description("Where the Pi's API listens (supports ${HOME} and env vars)").
				Placeholder("http://raspberrypi.local:5000").
				Value(&cfg.API.URL).
				Validate(func(s string) error {
					return config.ValidateURL(config.Expand(strings.TrimSpace(s)))
				}),
		),
	}
	if len(sshOptions) > 1 {
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("SSH tunnel").
				Description("Reach the API through one of your ~/.ssh/config hosts").
				Options(sshOptions...).
				Value(&tunnel),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Default tab").
			Options(tabOptions...).
			Value(&cfg.UI.DefaultTab),
	))

	if err := huh.NewForm(groups...).Run(); err != nil {
		return err
	}
	cfg.API.SSH = tunnel
	cfg.API.URL = strings.TrimSpace(cfg.API.URL)
	return nil
}

func confirmSaveAnyway(out io.Writer, url string, err error) bool {
	fmt.Fprintf(out, "\n%s Connection to '%s' failed: %v\n\n", ui.SymbolFail, url, err)
	var save bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save config anyway? (You can fix the connection later)").
			Value(&save),
	))
	if formErr := form.Run(); formErr != nil {
		return false
	}
	return save
}
