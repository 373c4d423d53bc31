package agents

import (
	"context"
	"log/slog"
	"sync"

	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/pkg/slogx"
	"github.com/fogfish/opts"
)

var (
	_ dataflow.Agent      = (*BinOp)(nil)
	_ dataflow.Identifier = (*BinOp)(nil)
	_ dataflow.Rebinder   = (*BinOp)(nil)
)

// Operator combines two operands.
type Operator func(a, b float64) float64

// BinOpLogger sets the logger a BinOp reports publish failures to.
var BinOpLogger = opts.ForName[BinOp, *slog.Logger]("logger")

// BinOp publishes op(left, right) to its output topic whenever a message
// arrives on either input and both inputs have been seen at least once.
//
// The latest message per input is kept. If either latest message is not a
// number nothing is published.
type BinOp struct {
	id     string
	name   string
	op     Operator
	left   string
	right  string
	ports  *ports
	logger *slog.Logger

	mu  sync.Mutex
	lhs *dataflow.Message
	rhs *dataflow.Message
}

// NewBinOp creates the agent and registers it as a subscriber of left and
// right and as a publisher of output. When left and right name the same topic
// the agent subscribes once and each message feeds both operands.
func NewBinOp(topics *dataflow.TopicManager, name, left, right, output string, op Operator, options ...opts.Option[BinOp]) *BinOp {
	b := &BinOp{
		id:     dataflow.NewAgentID(),
		name:   name,
		op:     op,
		left:   left,
		right:  right,
		ports:  newPorts(topics, []string{left, right}, []string{output}),
		logger: slog.Default(),
	}
	if err := opts.Apply(b, options); err != nil {
		panic(err)
	}
	b.ports.bind(b)
	return b
}

// Plus publishes a + b.
func Plus(topics *dataflow.TopicManager, left, right, output string, options ...opts.Option[BinOp]) *BinOp {
	return NewBinOp(topics, "plus", left, right, output, func(a, b float64) float64 { return a + b }, options...)
}

// Minus publishes a - b.
func Minus(topics *dataflow.TopicManager, left, right, output string, options ...opts.Option[BinOp]) *BinOp {
	return NewBinOp(topics, "minus", left, right, output, func(a, b float64) float64 { return a - b }, options...)
}

// Mul publishes a * b.
func Mul(topics *dataflow.TopicManager, left, right, output string, options ...opts.Option[BinOp]) *BinOp {
	return NewBinOp(topics, "mul", left, right, output, func(a, b float64) float64 { return a * b }, options...)
}

// Div publishes a / b. Division by zero follows IEEE 754.
func Div(topics *dataflow.TopicManager, left, right, output string, options ...opts.Option[BinOp]) *BinOp {
	return NewBinOp(topics, "div", left, right, output, func(a, b float64) float64 { return a / b }, options...)
}

func (b *BinOp) Name() string {
	return b.name
}

func (b *BinOp) ID() string {
	return b.id
}

// Reset forgets both operands.
func (b *BinOp) Reset() {
	b.mu.Lock()
	b.lhs, b.rhs = nil, nil
	b.mu.Unlock()
}

func (b *BinOp) Callback(ctx context.Context, topic string, msg dataflow.Message) {
	b.mu.Lock()
	if topic == b.left {
		b.lhs = &msg
	}
	if topic == b.right {
		b.rhs = &msg
	}
	if b.lhs == nil || b.rhs == nil {
		b.mu.Unlock()
		return
	}
	lhs, rhs := *b.lhs, *b.rhs
	b.mu.Unlock()

	if !lhs.IsNumber() || !rhs.IsNumber() {
		return
	}
	result := dataflow.FromFloat(b.op(lhs.Float(), rhs.Float()))
	if err := b.ports.publish(ctx, result); err != nil {
		b.logger.ErrorContext(ctx, "publish failed", slogx.Agent(b.name), slogx.Error(err))
	}
}

// Rebind moves the agent's registrations to self.
func (b *BinOp) Rebind(self dataflow.Agent) {
	b.ports.bind(self)
}

// Close unsubscribes from both inputs and stops being a publisher of the
// output.
func (b *BinOp) Close() error {
	b.ports.unbind()
	return nil
}
