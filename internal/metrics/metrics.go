package metrics

import "github.com/nvasani/holonsim/internal/holon"

// Standard returns the default metric set attached to every run.
func Standard(syncCoef float64) []holon.Metric {
	return []holon.Metric{
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewCoherence(),
		NewMaxLevel(),
		NewMergeCount(),
		NewSyncPressure(syncCoef),
		NewContainment(50),
	}
}
