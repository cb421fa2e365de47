// Package drive provides scripted attractor drivers.
//
// Drivers shape the external attractor over simulated time:
//
//   - [Static]: fixed attractor at a point
//   - [Orbit]: attractor circling the origin in the xy plane
//   - [Pulse]: attractor toggling on and off with a duty cycle
//   - [Manual]: attractor set interactively, for live views
//   - [None]: no attractor
//
// # Usage
//
//	drv, err := drive.New(drive.Spec{Kind: "orbit", Radius: 4, Omega: 0.5})
//	att := drv.At(t) // nil when idle
//
// At returns a fresh value each call, so callers may hold the result
// across ticks without aliasing the driver's state.
package drive
