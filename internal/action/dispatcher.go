package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/logger"
)

// ErrorKind classifies why an action failed.
type ErrorKind string

const (
	// ErrTransport means no response arrived; the action is treated as not applied.
	ErrTransport ErrorKind = "transport"
	// ErrApplication means the server refused; its text is shown verbatim.
	ErrApplication ErrorKind = "application"
	// ErrMalformed means the response could not be decoded.
	ErrMalformed ErrorKind = "malformed"
)

// ActionError is the only error type Perform returns.
type ActionError struct {
	Kind ErrorKind
	Desc Descriptor
	Err  error
}

func (e *ActionError) Error() string {
	if e.Kind == ErrApplication {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s failed: %v", e.Desc.Action, e.Desc.Ref.Name(), e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Classify maps a client error onto an ErrorKind.
func Classify(err error) ErrorKind {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		return ErrApplication
	case errors.Is(err, api.ErrMalformed):
		return ErrMalformed
	default:
		return ErrTransport
	}
}

// Doer is the subset of the API client the dispatcher needs.
type Doer interface {
	Do(ctx context.Context, method, path string, body, v any) error
}

// Outcome is the decoded result of a successful action.
type Outcome struct {
	Desc   Descriptor
	Result api.ActionResult
	// Read payloads; only the one matching Desc.Action is set.
	Info  *api.ContainerInfo
	Logs  *string
	Stats *api.ContainerStats
}

// Message is the text for the success toast.
func (o Outcome) Message() string {
	if o.Result.Message != "" {
		return o.Result.Message
	}
	return fmt.Sprintf("%s %s %s", titleCase(string(o.Desc.Ref.Kind)), o.Desc.Ref.Name(), PastTense(o.Desc.Action))
}

type payload struct {
	api.ActionResult
	Info  *api.ContainerInfo  `json:"info"`
	Logs  *string             `json:"logs"`
	Stats *api.ContainerStats `json:"stats"`
}

// Dispatcher sends resolved action requests.
type Dispatcher struct {
	client Doer
	log    logger.Logger
}

// NewDispatcher creates a dispatcher over client.
func NewDispatcher(client Doer, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Noop()
	}
	return &Dispatcher{client: client, log: log}
}

// Perform sends desc and decodes the response. Every failure is returned as
// an *ActionError.
func (d *Dispatcher) Perform(ctx context.Context, desc Descriptor) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{}
			err = &ActionError{Kind: ErrMalformed, Desc: desc, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if d == nil || d.client == nil {
		return Outcome{}, &ActionError{Kind: ErrTransport, Desc: desc, Err: errors.New("no api client configured")}
	}

	var p payload
	if err := d.client.Do(ctx, desc.Method, desc.Path, desc.Body, &p); err != nil {
		kind := Classify(err)
		d.log.Debug("%s %s %s: %s error: %v", desc.Method, desc.Path, desc.Ref, kind, err)
		return Outcome{}, &ActionError{Kind: kind, Desc: desc, Err: err}
	}

	out = Outcome{Desc: desc, Result: p.ActionResult}
	switch {
	case desc.Ref.Kind != KindContainer:
	case desc.Action == Info:
		if p.Info == nil {
			return Outcome{}, &ActionError{Kind: ErrMalformed, Desc: desc, Err: fmt.Errorf("%w: missing info", api.ErrMalformed)}
		}
		out.Info = p.Info
	case desc.Action == Logs:
		logs := ""
		if p.Logs != nil {
			logs = *p.Logs
		}
		out.Logs = &logs
	case desc.Action == Stats:
		if p.Stats == nil {
			return Outcome{}, &ActionError{Kind: ErrMalformed, Desc: desc, Err: fmt.Errorf("%w: missing stats", api.ErrMalformed)}
		}
		out.Stats = p.Stats
	}
	return out, nil
}
