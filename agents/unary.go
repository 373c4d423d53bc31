package agents

import (
	"context"
	"log/slog"

	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/pkg/slogx"
	"github.com/fogfish/opts"
)

var (
	_ dataflow.Agent      = (*Unary)(nil)
	_ dataflow.Identifier = (*Unary)(nil)
	_ dataflow.Rebinder   = (*Unary)(nil)
)

// UnaryLogger sets the logger a Unary reports publish failures to.
var UnaryLogger = opts.ForName[Unary, *slog.Logger]("logger")

// Unary publishes fn(x) for every numeric message arriving on its input.
type Unary struct {
	id     string
	name   string
	fn     func(float64) float64
	input  string
	ports  *ports
	logger *slog.Logger
}

// NewUnary creates the agent and registers it on input and output.
func NewUnary(topics *dataflow.TopicManager, name, input, output string, fn func(float64) float64, options ...opts.Option[Unary]) *Unary {
	u := &Unary{
		id:     dataflow.NewAgentID(),
		name:   name,
		fn:     fn,
		input:  input,
		ports:  newPorts(topics, []string{input}, []string{output}),
		logger: slog.Default(),
	}
	if err := opts.Apply(u, options); err != nil {
		panic(err)
	}
	u.ports.bind(u)
	return u
}

// Inc publishes x + 1.
func Inc(topics *dataflow.TopicManager, input, output string, options ...opts.Option[Unary]) *Unary {
	return NewUnary(topics, "inc", input, output, func(x float64) float64 { return x + 1 }, options...)
}

func (u *Unary) Name() string { return u.name }

func (u *Unary) ID() string { return u.id }

// Reset is a no-op; a Unary keeps no operands.
func (u *Unary) Reset() {}

func (u *Unary) Callback(ctx context.Context, topic string, msg dataflow.Message) {
	if topic != u.input {
		return
	}
	if !msg.IsNumber() {
		return
	}
	if err := u.ports.publish(ctx, dataflow.FromFloat(u.fn(msg.Float()))); err != nil {
		u.logger.ErrorContext(ctx, "publish failed", slogx.Agent(u.name), slogx.Error(err))
	}
}

func (u *Unary) Rebind(self dataflow.Agent) {
	u.ports.bind(self)
}

func (u *Unary) Close() error {
	u.ports.unbind()
	return nil
}
