// Package graph provides the core graph execution engine for Flowgraph.
//
// A Flowgraph program is a directed graph of typed nodes connected by
// handle-routed edges. The compiler (Build) turns a declarative Spec plus
// an initial user message into an executable Graph; the Executor then
// drives that Graph, streaming content and debug events to the caller
// while enforcing data dependencies, conditional bypass, loop expansion,
// and nested sub-graph execution.
package graph
