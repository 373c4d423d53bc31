// Package graph builds a snapshot of the topic/agent topology and checks it
// for cycles.
//
// Nodes live in an arena and are addressed by Handle. A snapshot is derived
// from the registry on demand and never written back; rebuild it whenever the
// topology may have changed.
package graph
