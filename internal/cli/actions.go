package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/dashboard"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/rileyhilliard/pidash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// actionFlags are shared by every resource action command.
type actionFlags struct {
	Yes  bool
	JSON bool
}

var actFlags actionFlags

// resourceClient is the part of the API client the resource commands use.
type resourceClient interface {
	action.Doer
	Containers(ctx context.Context) ([]api.ContainerSummary, error)
	GPIOStatus(ctx context.Context) (map[int]api.GPIOPin, error)
	Projects(ctx context.Context) ([]api.Project, error)
	Services(ctx context.Context) ([]api.Service, error)
}

// confirmAction asks before a disruptive action. Replaced in tests.
var confirmAction = func(desc action.Descriptor) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New(errors.ErrAction,
			"Refusing to "+string(desc.Action)+" "+desc.Ref.Name()+" without confirmation",
			"Run in a terminal, or pass --yes to skip the prompt")
	}
	var ok bool
	err := huh.NewConfirm().
		Title(desc.ConfirmTitle()).
		Description(action.Warning(desc.Action)).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

var kindDescriptions = map[action.Kind]string{
	action.KindContainer: "Manage Docker containers",
	action.KindService:   "Manage systemd services",
	action.KindProject:   "Inspect and update git projects",
	action.KindGPIO:      "Read and toggle GPIO pins",
}

var kindExamples = map[action.Kind]string{
	action.KindContainer: "  pidash container list\n  pidash container restart web\n  pidash container logs web",
	action.KindService:   "  pidash service list\n  pidash service restart nginx --yes",
	action.KindProject:   "  pidash project list\n  pidash project status site\n  pidash project pull site",
	action.KindGPIO:      "  pidash gpio list\n  pidash gpio toggle 17",
}

func init() {
	for _, kind := range action.Kinds {
		rootCmd.AddCommand(newResourceCmd(kind))
	}
}

// newResourceCmd builds "pidash <kind>" with a list subcommand and one
// subcommand per action the dispatch table supports for kind.
func newResourceCmd(kind action.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: kindDescriptions[kind],
		Long:  kindDescriptions[kind] + ".\n\nExamples:\n" + kindExamples[kind],
	}
	cmd.PersistentFlags().BoolVar(&actFlags.JSON, "json", false, "output in JSON format")

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + string(kind) + "s",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return withClient(c.OutOrStdout(), func(client resourceClient) error {
				return listResources(c.Context(), c.OutOrStdout(), client, kind, actFlags.JSON)
			})
		},
	})

	for _, act := range action.Supported(kind) {
		act := act
		sub := &cobra.Command{
			Use:   string(act) + " <" + refArgName(kind) + ">",
			Short: actionShort(kind, act),
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return withClient(c.OutOrStdout(), func(client resourceClient) error {
					return runAction(c.Context(), c.OutOrStdout(), client, kind, act, args[0], actFlags)
				})
			},
		}
		if action.NeedsConfirm(act) {
			sub.Flags().BoolVarP(&actFlags.Yes, "yes", "y", false, "skip the confirmation prompt")
		}
		cmd.AddCommand(sub)
	}
	return cmd
}

func refArgName(kind action.Kind) string {
	switch kind {
	case action.KindContainer:
		return "name|id"
	case action.KindGPIO:
		return "pin"
	default:
		return "name"
	}
}

func actionShort(kind action.Kind, act action.Action) string {
	switch act {
	case action.Info:
		return "Show container details"
	case action.Logs:
		return "Print the last 100 log lines"
	case action.Stats:
		return "Show live CPU and memory usage"
	case action.Status:
		return "Show git status"
	case action.Toggle:
		return "Invert an output pin"
	}
	return strings.ToUpper(string(act[:1])) + string(act[1:]) + " a " + string(kind)
}

// withClient loads config, connects and runs fn.
func withClient(out io.Writer, fn func(resourceClient) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return reportError(out, actFlags.JSON, err)
	}
	conn, err := connect(cfg, logger.NewEnvLogger("[api]"))
	if err != nil {
		return reportError(out, actFlags.JSON, err)
	}
	defer conn.Close()
	return fn(conn.client)
}

// resolveRef finds the resource arg names. Containers match by name, then
// by id prefix; GPIO pins must exist in the current pin map.
func resolveRef(ctx context.Context, client resourceClient, kind action.Kind, arg string) (action.Ref, *api.GPIOPin, error) {
	switch kind {
	case action.KindContainer:
		list, err := client.Containers(ctx)
		if err != nil {
			return action.Ref{}, nil, err
		}
		var byID []api.ContainerSummary
		for _, c := range list {
			if c.Name == arg {
				return action.Ref{Kind: kind, ID: c.ID, Label: c.Name}, nil, nil
			}
			if strings.HasPrefix(c.ID, arg) {
				byID = append(byID, c)
			}
		}
		switch len(byID) {
		case 1:
			return action.Ref{Kind: kind, ID: byID[0].ID, Label: byID[0].Name}, nil, nil
		case 0:
			return action.Ref{}, nil, errors.New(errors.ErrAction,
				fmt.Sprintf("No container named %q", arg),
				"Run 'pidash container list' to see containers")
		default:
			return action.Ref{}, nil, errors.New(errors.ErrAction,
				fmt.Sprintf("%q matches %d containers", arg, len(byID)),
				"Use more of the id, or the container name")
		}

	case action.KindGPIO:
		n, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(arg), "GPIO"))
		if err != nil {
			return action.Ref{}, nil, errors.New(errors.ErrAction,
				fmt.Sprintf("%q isn't a pin number", arg),
				"Use the BCM pin number, e.g. 17")
		}
		pins, err := client.GPIOStatus(ctx)
		if err != nil {
			return action.Ref{}, nil, err
		}
		pin, ok := pins[n]
		if !ok {
			return action.Ref{}, nil, errors.New(errors.ErrAction,
				fmt.Sprintf("GPIO %d isn't available", n),
				"Run 'pidash gpio list' to see pins")
		}
		return action.PinRef(n), &pin, nil
	}
	return action.Ref{Kind: kind, ID: arg}, nil, nil
}

// runAction resolves, confirms and performs one action, then prints the
// outcome.
func runAction(ctx context.Context, out io.Writer, client resourceClient, kind action.Kind, act action.Action, arg string, f actionFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ref, pin, err := resolveRef(ctx, client, kind, arg)
	if err != nil {
		return reportError(out, f.JSON, err)
	}
	desc, err := action.Lookup(ref, act)
	if err != nil {
		return reportError(out, f.JSON, errors.WrapWithCode(err, errors.ErrAction, err.Error(), ""))
	}
	if pin != nil && act == action.Toggle {
		if !pin.IsOutput() {
			return reportError(out, f.JSON, errors.New(errors.ErrAction,
				fmt.Sprintf("GPIO %s isn't an output pin (mode: %s)", ref.ID, pin.Mode),
				"Only output pins can be toggled"))
		}
		desc = desc.WithToggle(pin.Value)
	}

	if desc.NeedsConfirm() && !f.Yes {
		ok, err := confirmAction(desc)
		if err != nil {
			return reportError(out, f.JSON, err)
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	d := action.NewDispatcher(client, logger.NewEnvLogger("[action]"))
	var spin *ui.Spinner
	if desc.IsMutating() && !f.JSON {
		spin = ui.NewSpinner(out, progressLabel(desc))
		spin.Start()
	}
	outcome, err := d.Perform(ctx, desc)
	if err != nil {
		if spin != nil {
			spin.Fail(actionFailure(err))
			return errors.NewExitError(1)
		}
		return reportError(out, f.JSON, actionError(err))
	}
	if spin != nil {
		spin.Success(outcome.Message())
	}

	if f.JSON {
		return WriteJSONSuccess(out, outcomeJSON(outcome))
	}
	return printOutcome(ctx, out, d, outcome)
}

func progressLabel(d action.Descriptor) string {
	verb := strings.ToUpper(string(d.Action[:1])) + string(d.Action[1:])
	switch d.Action {
	case action.Stop:
		verb = "Stopping"
	case action.Toggle:
		verb = "Toggling"
	default:
		verb = strings.TrimSuffix(verb, "e") + "ing"
	}
	return verb + " " + d.Ref.Name()
}

// actionFailure is the one-line failure text. Server messages are shown
// verbatim.
func actionFailure(err error) string {
	var ae *action.ActionError
	if stderrors.As(err, &ae) {
		if ae.Kind == action.ErrApplication {
			return ae.Err.Error()
		}
		return ae.Error()
	}
	return err.Error()
}

// actionError wraps a failed read for the root error printer.
func actionError(err error) error {
	var ae *action.ActionError
	if stderrors.As(err, &ae) && ae.Kind == action.ErrApplication {
		return errors.WrapWithCode(err, errors.ErrAction, ae.Err.Error(), "")
	}
	return err
}

// outcomeJSON is the --json payload for an outcome.
func outcomeJSON(o action.Outcome) map[string]interface{} {
	data := map[string]interface{}{
		"kind":    o.Desc.Ref.Kind,
		"id":      o.Desc.Ref.ID,
		"action":  o.Desc.Action,
		"message": o.Message(),
	}
	if o.Result.Output != "" {
		data["output"] = o.Result.Output
	}
	if o.Info != nil {
		data["info"] = o.Info
	}
	if o.Logs != nil {
		data["logs"] = *o.Logs
	}
	if o.Stats != nil {
		data["stats"] = o.Stats
	}
	return data
}

// printOutcome prints the payload of a read action.
func printOutcome(ctx context.Context, out io.Writer, d *action.Dispatcher, o action.Outcome) error {
	width := terminalWidth(out)
	switch {
	case o.Info != nil:
		var stats *api.ContainerStats
		if o.Info.IsRunning() {
			if desc, err := action.Lookup(o.Desc.Ref, action.Stats); err == nil {
				if so, err := d.Perform(ctx, desc); err == nil {
					stats = so.Stats
				}
			}
		}
		fmt.Fprintln(out, dashboard.RenderDetails(o.Info, stats, nil, nil, width))
	case o.Stats != nil:
		fmt.Fprintln(out, dashboard.RenderStats(o.Stats, width))
	case o.Logs != nil:
		fmt.Fprintln(out, dashboard.RenderLogs(*o.Logs, 0))
	case o.Desc.Action == action.Status:
		fmt.Fprintln(out, strings.TrimRight(o.Result.Output, "\n"))
	case o.Result.Output != "":
		fmt.Fprintln(out, ui.MutedStyle.Render(strings.TrimRight(o.Result.Output, "\n")))
	}
	return nil
}

// terminalWidth is out's width, or 80 when it isn't a terminal.
func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// listResources prints every resource of kind as a table.
func listResources(ctx context.Context, out io.Writer, client resourceClient, kind action.Kind, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		data    interface{}
		headers []string
		rows    [][]string
		err     error
	)
	switch kind {
	case action.KindContainer:
		var list []api.ContainerSummary
		list, err = client.Containers(ctx)
		data = list
		headers = []string{"NAME", "ID", "STATUS", "IMAGE", "PORT"}
		for _, c := range list {
			rows = append(rows, []string{c.Name, c.ShortID(), c.Status, c.Image, c.HostPort})
		}
	case action.KindService:
		var list []api.Service
		list, err = client.Services(ctx)
		data = list
		headers = []string{"NAME", "ACTIVE", "DESCRIPTION"}
		for _, s := range list {
			rows = append(rows, []string{s.Name, s.Active, s.Description})
		}
	case action.KindProject:
		var list []api.Project
		list, err = client.Projects(ctx)
		data = list
		headers = []string{"NAME", "BRANCH", "COMMIT", "STATE"}
		for _, p := range list {
			rows = append(rows, projectRow(p))
		}
	case action.KindGPIO:
		var pins map[int]api.GPIOPin
		pins, err = client.GPIOStatus(ctx)
		data = pins
		headers = []string{"PIN", "MODE", "VALUE"}
		for _, n := range api.SortedPins(pins) {
			p := pins[n]
			value := "LOW"
			if p.IsHigh() {
				value = "HIGH"
			}
			rows = append(rows, []string{"GPIO " + strconv.Itoa(n), p.Mode, value})
		}
	}
	if err != nil {
		return reportError(out, asJSON, err)
	}
	if asJSON {
		return WriteJSONSuccess(out, data)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, ui.MutedStyle.Render("No "+string(kind)+"s found"))
		return nil
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return kind != action.KindGPIO && rows[i][0] < rows[j][0]
	})
	fmt.Fprintln(out, ui.RenderTable(headers, rows))
	return nil
}

func projectRow(p api.Project) []string {
	if !p.IsGit || p.GitInfo == nil {
		return []string{p.Name, "", "", "not a git repository"}
	}
	commit := p.GitInfo.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	state := "clean"
	if p.GitInfo.Dirty {
		state = "modified"
	}
	return []string{p.Name, p.GitInfo.Branch, commit, state}
}
