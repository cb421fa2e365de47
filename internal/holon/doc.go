// Package holon provides the core domain types for holarchic particle
// simulation.
//
// The package defines the data model shared by every stage of the tick
// pipeline:
//
//   - [Particle]: a point mass in extended phase space with a holarchy level
//   - [Node]: a decaying memory summary of one level's particle cluster
//   - [Snapshot]: the immutable per-tick output handed to metrics and hosts
//   - [Sequence]: deterministic id generator for particles and nodes
//   - [Metric], [Observer]: read-only hooks into the tick stream
//
// # Determinism
//
// All ids come from an injected [Sequence]; two runs with the same
// configuration, seed, and tick deltas produce byte-identical id streams.
// Nothing in this package reads the clock or global random state.
//
// # Thread Safety
//
// Types here are plain values. A simulation engine owns its Sequence and
// collections; share them across goroutines only by copying.
package holon
