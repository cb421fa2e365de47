package memory_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/memory"
)

var _ = Describe("Recognize", func() {
	It("picks the node maximizing strength times proximity", func() {
		ps := []holon.Particle{
			{ID: "a", Mass: 1, Level: 0, Position: r3.Vec{X: -1}},
			{ID: "b", Mass: 1, Level: 0, Position: r3.Vec{X: 1}},
		}
		nodes := []holon.Node{
			{ID: "near", Level: 0, Strength: 0.5},
			{ID: "far", Level: 0, Strength: 1, Position: r3.Vec{X: 5}},
		}

		got, ok := memory.Recognize(ps, nodes, 0)

		Expect(ok).To(BeTrue())
		Expect(got.ID).To(Equal("near"))
	})

	It("ignores nodes at other levels", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "wrong", Level: 1, Strength: 1}}

		_, ok := memory.Recognize(ps, nodes, 0)

		Expect(ok).To(BeFalse())
	})

	It("returns nothing below the score floor", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "weak", Level: 0, Strength: 0.05}}

		_, ok := memory.Recognize(ps, nodes, 0)

		Expect(ok).To(BeFalse())
	})

	It("returns nothing when the level has no particles", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 1}}
		nodes := []holon.Node{{ID: "n", Level: 0, Strength: 1}}

		_, ok := memory.Recognize(ps, nodes, 0)

		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Coherence", func() {
	It("averages over same-level pairs", func() {
		ps := []holon.Particle{
			{ID: "a", Mass: 1, Level: 0, Position: r3.Vec{X: 1}},
			{ID: "off", Mass: 1, Level: 1},
		}
		nodes := []holon.Node{{ID: "n", Level: 0, Strength: 0.8}}

		want := math.Exp(-1) * 0.8
		Expect(memory.Coherence(ps, nodes)).To(BeNumerically("~", want, 1e-12))
	})

	It("is zero for empty inputs", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "n", Level: 0, Strength: 1}}

		Expect(memory.Coherence(nil, nodes)).To(BeZero())
		Expect(memory.Coherence(ps, nil)).To(BeZero())
	})

	It("is zero when no levels overlap", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 2}}
		nodes := []holon.Node{{ID: "n", Level: 0, Strength: 1}}

		Expect(memory.Coherence(ps, nodes)).To(BeZero())
	})

	It("is the plain score for one perfect pair", func() {
		ps := []holon.Particle{{ID: "a", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "n", Level: 0, Strength: 0.6}}

		Expect(memory.Coherence(ps, nodes)).To(BeNumerically("~", 0.6, 1e-12))
	})
})

var _ = Describe("SyncForces", func() {
	It("pulls same-level nodes toward each other", func() {
		nodes := []holon.Node{
			{ID: "a", Level: 0, Strength: 0.5},
			{ID: "b", Level: 0, Strength: 0.8, Position: r3.Vec{X: 2}},
		}

		forces := memory.SyncForces(nodes, 2)

		// strength * Sa * Sb / d = 2*0.5*0.8/2 = 0.4
		Expect(forces["a"].X).To(BeNumerically("~", 0.4, 1e-12))
		Expect(forces["b"].X).To(BeNumerically("~", -0.4, 1e-12))
	})

	It("skips lone nodes and cross-level pairs", func() {
		nodes := []holon.Node{
			{ID: "a", Level: 0, Strength: 1},
			{ID: "b", Level: 1, Strength: 1, Position: r3.Vec{X: 1}},
		}

		Expect(memory.SyncForces(nodes, 1)).To(BeEmpty())
	})

	It("guards near-coincident nodes", func() {
		nodes := []holon.Node{
			{ID: "a", Level: 0, Strength: 1},
			{ID: "b", Level: 0, Strength: 1, Position: r3.Vec{X: 0.005}},
		}

		Expect(memory.SyncForces(nodes, 1)).To(BeEmpty())
	})
})

var _ = Describe("ConstraintForces", func() {
	It("pulls particles toward strictly higher nodes, scaled by level gap", func() {
		ps := []holon.Particle{{ID: "p", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "n", Level: 2, Strength: 0.9, Position: r3.Vec{Y: 3}}}

		forces := memory.ConstraintForces(ps, nodes, 1.5)

		// 1.5 * 0.9 / (1 + 2) = 0.45 along +y
		Expect(forces["p"].Y).To(BeNumerically("~", 0.45, 1e-12))
		Expect(forces["p"].X).To(BeZero())
	})

	It("ignores same-level and lower nodes", func() {
		ps := []holon.Particle{{ID: "p", Mass: 1, Level: 1}}
		nodes := []holon.Node{
			{ID: "same", Level: 1, Strength: 1, Position: r3.Vec{X: 1}},
			{ID: "below", Level: 0, Strength: 1, Position: r3.Vec{Y: 1}},
		}

		Expect(memory.ConstraintForces(ps, nodes, 1)).To(BeEmpty())
	})

	It("guards near-coincident geometry", func() {
		ps := []holon.Particle{{ID: "p", Mass: 1, Level: 0}}
		nodes := []holon.Node{{ID: "n", Level: 1, Strength: 1, Position: r3.Vec{X: 0.001}}}

		Expect(memory.ConstraintForces(ps, nodes, 1)).To(BeEmpty())
	})

	It("sums contributions from several higher levels", func() {
		ps := []holon.Particle{{ID: "p", Mass: 1, Level: 0}}
		nodes := []holon.Node{
			{ID: "n1", Level: 1, Strength: 1, Position: r3.Vec{X: 2}},
			{ID: "n2", Level: 2, Strength: 1, Position: r3.Vec{X: -2}},
		}

		forces := memory.ConstraintForces(ps, nodes, 1)

		// +1*1/2 toward +x, then 1/3 toward -x
		Expect(forces["p"].X).To(BeNumerically("~", 0.5-1.0/3.0, 1e-12))
	})
})
