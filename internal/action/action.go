// Package action maps resource actions onto management API requests.
//
// One table, keyed by resource kind and action, decides the HTTP method and
// path for every action the dashboard and the CLI can perform. Both surfaces
// build requests from it so they can never disagree about an endpoint.
package action

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/pidash/internal/api"
)

// Kind is the type of resource an action targets.
type Kind string

const (
	KindContainer Kind = "container"
	KindService   Kind = "service"
	KindProject   Kind = "project"
	KindGPIO      Kind = "gpio"
)

// Kinds lists every resource kind in display order.
var Kinds = []Kind{KindContainer, KindService, KindProject, KindGPIO}

// ParseKind converts a user-supplied kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// Action is an operation on a resource.
type Action string

const (
	Start   Action = "start"
	Stop    Action = "stop"
	Restart Action = "restart"
	Info    Action = "info"
	Logs    Action = "logs"
	Stats   Action = "stats"
	Pull    Action = "pull"
	Status  Action = "status"
	Toggle  Action = "toggle"
)

// ErrUnsupportedAction is returned for (kind, action) pairs with no endpoint.
var ErrUnsupportedAction = errors.New("unsupported action")

// Ref identifies one resource. ID is the container id, service or project
// name, or GPIO pin number. Label is what the user sees.
type Ref struct {
	Kind  Kind
	ID    string
	Label string
}

// Name returns the label, falling back to the id.
func (r Ref) Name() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

func (r Ref) String() string {
	return string(r.Kind) + " " + r.Name()
}

// Descriptor is a fully resolved request for an action.
type Descriptor struct {
	Ref    Ref
	Action Action
	Method string
	Path   string
	// Body is sent as JSON when non-nil.
	Body any
}

type route struct {
	method   string
	mutating bool
	path     func(id string, a Action) string
}

type key struct {
	kind   Kind
	action Action
}

func containerRoute(id string, a Action) string {
	return "/container/" + url.PathEscape(id) + "/" + string(a)
}

func serviceRoute(id string, a Action) string {
	return "/api/services/" + url.PathEscape(id) + "/" + string(a)
}

func projectRoute(id string, a Action) string {
	return "/api/projects/" + url.PathEscape(id) + "/git/" + string(a)
}

func gpioRoute(id string, _ Action) string {
	return "/api/gpio/pin/" + url.PathEscape(id) + "/set"
}

var table = map[key]route{
	{KindContainer, Start}:   {http.MethodPost, true, containerRoute},
	{KindContainer, Stop}:    {http.MethodPost, true, containerRoute},
	{KindContainer, Restart}: {http.MethodPost, true, containerRoute},
	{KindContainer, Info}:    {http.MethodGet, false, containerRoute},
	{KindContainer, Logs}:    {http.MethodGet, false, containerRoute},
	{KindContainer, Stats}:   {http.MethodGet, false, containerRoute},
	{KindService, Start}:     {http.MethodPost, true, serviceRoute},
	{KindService, Stop}:      {http.MethodPost, true, serviceRoute},
	{KindService, Restart}:   {http.MethodPost, true, serviceRoute},
	// status is a git read even though the endpoint takes POST.
	{KindProject, Pull}:   {http.MethodPost, true, projectRoute},
	{KindProject, Status}: {http.MethodPost, false, projectRoute},
	{KindGPIO, Toggle}:    {http.MethodPost, true, gpioRoute},
}

// Lookup resolves the request for an action on ref.
func Lookup(ref Ref, a Action) (Descriptor, error) {
	r, ok := table[key{ref.Kind, a}]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s %s", ErrUnsupportedAction, ref.Kind, a)
	}
	if strings.TrimSpace(ref.ID) == "" {
		return Descriptor{}, fmt.Errorf("%s %s: missing resource id", ref.Kind, a)
	}
	return Descriptor{
		Ref:    ref,
		Action: a,
		Method: r.method,
		Path:   r.path(ref.ID, a),
	}, nil
}

// Supported lists the actions available for a kind, sorted by name.
func Supported(k Kind) []Action {
	var out []Action
	for key := range table {
		if key.kind == k {
			out = append(out, key.action)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsMutating reports whether the action changes server state.
func (d Descriptor) IsMutating() bool {
	return table[key{d.Ref.Kind, d.Action}].mutating
}

// NeedsConfirm reports whether the user must confirm before sending.
func (d Descriptor) NeedsConfirm() bool {
	return NeedsConfirm(d.Action)
}

// NeedsConfirm reports whether a disruptive action requires confirmation.
func NeedsConfirm(a Action) bool {
	return a == Stop || a == Restart
}

// Warning returns the one-line consequence shown in confirm prompts.
func Warning(a Action) string {
	switch a {
	case Stop:
		return "This may disrupt services."
	case Restart:
		return "This will cause a brief service interruption."
	default:
		return ""
	}
}

// ConfirmTitle is the confirm prompt headline.
func (d Descriptor) ConfirmTitle() string {
	return fmt.Sprintf("%s %s %q?", titleCase(string(d.Action)), d.Ref.Kind, d.Ref.Name())
}

// ConfirmMessage is the full confirmation text: headline plus warning.
func (d Descriptor) ConfirmMessage() string {
	if w := Warning(d.Action); w != "" {
		return d.ConfirmTitle() + "\n" + w
	}
	return d.ConfirmTitle()
}

// WithToggle attaches the GPIO set body that inverts the current value.
func (d Descriptor) WithToggle(current int) Descriptor {
	next := 1
	if current != 0 {
		next = 0
	}
	d.Body = api.GPIOSetRequest{Value: next, Mode: "output"}
	return d
}

// PinRef builds a GPIO reference for a BCM pin number.
func PinRef(pin int) Ref {
	s := strconv.Itoa(pin)
	return Ref{Kind: KindGPIO, ID: s, Label: "GPIO " + s}
}

// PastTense renders the action for success messages.
func PastTense(a Action) string {
	switch a {
	case Start:
		return "started"
	case Stop:
		return "stopped"
	case Restart:
		return "restarted"
	case Pull:
		return "pulled"
	case Toggle:
		return "toggled"
	default:
		return string(a)
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
