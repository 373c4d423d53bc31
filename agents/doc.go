// Package agents implements the operator agents used in computation graphs.
//
// Every arithmetic agent is a parameterisation of one of two shapes: BinOp
// combines the latest numbers seen on two input topics, Unary maps the latest
// number on one input topic. Both publish to a single output topic and stay
// silent when an operand is not a number.
//
// The agents register themselves on their topics when constructed. Wrapping
// one in a dataflow.ParallelAgent moves those registrations to the wrapper.
package agents
