// Package spawn builds initial particle populations.
//
// Scenarios are registered by name and looked up by the CLI and by
// batch scripts:
//
//   - two_body: an orbiting charge pair, ignores n
//   - random: uniform cube with jittered masses
//   - lattice: regular cubic grid, alternating charges
//   - shell: golden-spiral sphere with a slow spin
//   - cloud: Perlin-density blob
//
// All spawners are deterministic for a given (n, seed) pair and hand
// out ids from the caller's sequence, so two runs with the same inputs
// produce identical populations.
package spawn
