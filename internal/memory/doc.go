// Package memory maintains the holarchic memory layer: decaying centroid
// summaries of each level's particle cluster and the queries and coupling
// forces defined over them.
//
//   - [Build]: one node per populated level, linked by nearest-lower-level
//     parentage
//   - [Updater]: per-tick decay, reinforcement and positional adaptation
//   - [SyncForces]: pairwise attraction between same-level nodes
//   - [ConstraintForces]: top-down pull from higher-level nodes onto
//     particles
//   - [Recognize], [Coherence]: read-only pattern queries
//
// # Matching
//
// A node matches a particle when the particle id is among its children OR
// the particle sits at the node's level. The union is deliberate: particles
// that appear after the node was built still reinforce it. Tests pin this
// down; do not narrow it to children-only.
package memory
