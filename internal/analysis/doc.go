// Package analysis characterizes simulation runs.
//
// Three probes are provided:
//
//   - [PowerSpectrum]: magnitude spectrum of an energy or coherence series
//   - [EstimateDivergence]: separation growth between a run and a perturbed twin
//   - [TraceOrbit]: single-particle trace through a position or phase plane
//
// A positive divergence rate indicates sensitive dependence on initial
// conditions:
//
//	div, err := analysis.EstimateDivergence(ctx, ps, opts, 2000, 0.016, 1e-6)
//	if err == nil && div.Rate > 0 {
//	    // nearby states pull apart
//	}
package analysis
