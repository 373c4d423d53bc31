package agents

import (
	"github.com/casualjim/dataflow"
	"github.com/casualjim/dataflow/config"
	"github.com/fogfish/opts"
)

// binaryOperators maps type tags to the constructors of the builtin binary
// operators.
var binaryOperators = map[string]func(*dataflow.TopicManager, string, string, string, ...opts.Option[BinOp]) *BinOp{
	"PlusAgent":  Plus,
	"MinusAgent": Minus,
	"MulAgent":   Mul,
	"DivAgent":   Div,
}

// Register adds the builtin agent types to f: PlusAgent, MinusAgent,
// MulAgent and DivAgent read two inputs, IncAgent reads one, and all write the
// first output.
func Register(f *config.Factories) {
	for tag, ctor := range binaryOperators {
		f.Register(tag, func(topics *dataflow.TopicManager, spec config.AgentSpec) (dataflow.Agent, error) {
			if err := config.Arity(spec, 2, 1); err != nil {
				return nil, err
			}
			return ctor(topics, spec.Inputs[0], spec.Inputs[1], spec.Outputs[0]), nil
		})
	}
	f.Register("IncAgent", func(topics *dataflow.TopicManager, spec config.AgentSpec) (dataflow.Agent, error) {
		if err := config.Arity(spec, 1, 1); err != nil {
			return nil, err
		}
		return Inc(topics, spec.Inputs[0], spec.Outputs[0]), nil
	})
}

// Builtin returns a Factories registry holding the builtin agent types.
func Builtin() *config.Factories {
	f := config.NewFactories()
	Register(f)
	return f
}
