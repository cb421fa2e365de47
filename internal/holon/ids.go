package holon

import "fmt"

// Sequence issues monotonically increasing ids for particles and nodes in
// separate namespaces. It replaces clock- or randomness-based id schemes so
// merge products and memory nodes are reproducible run to run. Not safe for
// concurrent use; every engine owns exactly one.
type Sequence struct {
	particles uint64
	nodes     uint64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

// NextParticle returns the next particle id, e.g. "p-000007".
func (s *Sequence) NextParticle() string {
	s.particles++
	return fmt.Sprintf("p-%06d", s.particles)
}

// NextNode returns the next node id, e.g. "n-000002".
func (s *Sequence) NextNode() string {
	s.nodes++
	return fmt.Sprintf("n-%06d", s.nodes)
}
