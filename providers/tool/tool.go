package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/core/parse"
	"github.com/leofalp/calcagent/internal/jsonschema"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/observability"
)

// GenericTool is what the agent loop dispatches to: a description for the
// model and a JSON-in, text-out call.
type GenericTool interface {
	ToolInfo() ai.ToolDescription

	// Call runs the tool with the model-supplied JSON arguments.
	Call(ctx context.Context, inputJson string) (string, error)

	// GetMetrics returns the per-call cost, or nil.
	GetMetrics() *cost.ToolMetrics
}

// Handler answers one invocation. When err is non-nil, text must already
// describe the failure in words the model can relay to the user.
type Handler func(ctx context.Context, input string) (text string, err error)

// Capability is a named, described operation taking one string argument and
// answering with text. It is immutable once built.
type Capability struct {
	name        string
	description string
	param       string
	parameters  *jsonschema.Schema
	handler     Handler
	metrics     *cost.ToolMetrics
	status      func() Status
}

var _ GenericTool = (*Capability)(nil)

type capabilityOptions struct {
	Description string
	Metrics     *cost.ToolMetrics
	Status      func() Status
}

// Option configures a Capability built by [NewCapability].
type Option func(*capabilityOptions)

// WithDescription sets the text the model reads to decide when to use the
// capability.
func WithDescription(description string) Option {
	return func(o *capabilityOptions) {
		o.Description = description
	}
}

// WithMetrics declares what one call costs.
func WithMetrics(metrics cost.ToolMetrics) Option {
	return func(o *capabilityOptions) {
		o.Metrics = &metrics
	}
}

// WithStatus attaches the adapter's configuration report.
func WithStatus(status func() Status) Option {
	return func(o *capabilityOptions) {
		o.Status = status
	}
}

// NewCapability builds a capability whose parameter schema is generated from
// I, a struct with exactly one field (the argument). It panics when I does not
// have that shape; argument types are fixed at compile time.
//
// Example:
//
//	type Input struct {
//	    Expression string `json:"expresion" jsonschema:"description=Expresión aritmética"`
//	}
//	calc := tool.NewCapability[Input]("calculadora", handler,
//	    tool.WithDescription("Evalúa expresiones aritméticas."),
//	)
func NewCapability[I any](name string, handler Handler, options ...Option) *Capability {
	opts := &capabilityOptions{}
	for _, option := range options {
		option(opts)
	}

	schema, err := jsonschema.GenerateJSONSchema[I]()
	if err != nil {
		panic(fmt.Sprintf("tool %s: %v", name, err))
	}
	if len(schema.Properties) != 1 {
		panic(fmt.Sprintf("tool %s: argument struct must have exactly one field, has %d", name, len(schema.Properties)))
	}

	var param string
	for key := range schema.Properties {
		param = key
	}

	return &Capability{
		name:        name,
		description: opts.Description,
		param:       param,
		parameters:  schema,
		handler:     handler,
		metrics:     opts.Metrics,
		status:      opts.Status,
	}
}

func (c *Capability) Name() string {
	return c.name
}

func (c *Capability) Description() string {
	return c.description
}

// Parameter is the name of the single argument, e.g. "expresion".
func (c *Capability) Parameter() string {
	return c.param
}

func (c *Capability) Parameters() *jsonschema.Schema {
	return c.parameters
}

// Status reports the adapter configuration. Capabilities without external
// dependencies are always configured.
func (c *Capability) Status() Status {
	if c.status == nil {
		return Status{Configured: true}
	}
	return c.status()
}

// Invoke runs the capability on a raw string argument. It always returns text;
// faults are reported in the text and recorded on the span in ctx, if any.
func (c *Capability) Invoke(ctx context.Context, input string) string {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventToolExecutionStart,
			observability.String(observability.AttrToolName, c.name),
			observability.String(observability.AttrToolInput, input),
		)
	}

	start := time.Now()
	text, err := c.handler(ctx, input)
	duration := time.Since(start)

	if span != nil {
		span.AddEvent(observability.EventToolExecutionEnd,
			observability.String(observability.AttrToolName, c.name),
			observability.String(observability.AttrToolOutput, utils.TruncateString(text, 300)),
			observability.Duration(observability.AttrToolDuration, duration),
			observability.Bool(observability.AttrToolFailed, err != nil),
		)
		if err != nil {
			span.RecordError(err)
		}
	}
	if observer != nil {
		name := observability.String(observability.AttrToolName, c.name)
		observer.Counter(observability.MetricToolCalls).Add(ctx, 1, name)
		observer.Histogram(observability.MetricToolDuration).Record(ctx, duration.Seconds(), name)
		if err != nil {
			observer.Counter(observability.MetricToolFailures).Add(ctx, 1, name, observability.Error(err))
		}
	}

	return text
}

// Call decodes the model's arguments leniently and invokes the capability.
// Arguments that are not JSON are used verbatim as the input. The returned
// error is always nil: faults travel in the text.
func (c *Capability) Call(ctx context.Context, inputJson string) (string, error) {
	input, _ := parse.ExtractArgument(inputJson, c.param)
	return c.Invoke(ctx, input), nil
}

func (c *Capability) ToolInfo() ai.ToolDescription {
	return ai.ToolDescription{
		Name:        c.name,
		Description: c.description,
		Parameters:  c.parameters,
	}
}

func (c *Capability) GetMetrics() *cost.ToolMetrics {
	return c.metrics
}
