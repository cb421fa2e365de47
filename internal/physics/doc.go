// Package physics computes forces and energies for the holarchic particle
// system.
//
//   - [Coefficients]: the interaction constants supplied each tick
//   - [Field]: net force on one particle given the whole population
//   - [Attractor]: optional external influence point with a mode tag
//
// The force law combines a central spring, linear damping, pairwise gravity,
// and a level-modulated charge coupling. Pair terms are silently skipped
// below [MinPairSeparation]; there is no error path in force evaluation.
package physics
