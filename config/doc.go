// Package config loads agent networks from declarative documents.
//
// A document lists agents by type tag together with the topics each one reads
// from and writes to. Two encodings are accepted. The block format carries
// three lines per agent:
//
//	configs.PlusAgent
//	A,B
//	R1
//
// and the YAML (or JSON) format mirrors Document:
//
//	name: math
//	queue_capacity: 10
//	agents:
//	  - type: PlusAgent
//	    inputs: [A, B]
//	    outputs: [R1]
//
// Type tags are resolved through a Factories registry; the agents package
// registers the builtin operators. Every created agent is wrapped in a
// dataflow.ParallelAgent and only the wrapper is kept.
package config
