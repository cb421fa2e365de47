// Package viz provides terminal-based visualization for running holarchies.
//
// The package implements a live TUI using the Bubble Tea framework:
//
//   - [Model]: live view of an engine, one tick per frame
//   - [Canvas]: Braille-based pixel canvas with per-cell level colors
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Respawn and restart
//	Tab   - Cycle force coefficients
//	Up/Dn - Tune the selected coefficient
//	A     - Drop/lift a manual attractor at the origin
//	M     - Flip the attractor between attract and repel
//	?     - Show help overlay
//
// # Config Watching
//
// When started with a config path, the model watches the file and applies
// coefficient changes to the running engine on save.
package viz
