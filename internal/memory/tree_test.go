package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/memory"
)

var _ = Describe("Build", func() {
	Context("with particles on levels 0, 0 and 1", func() {
		var nodes []holon.Node

		BeforeEach(func() {
			ps := []holon.Particle{
				{ID: "a", Mass: 1, Level: 0, Position: r3.Vec{}, Energy: 0.5},
				{ID: "b", Mass: 1, Level: 0, Position: r3.Vec{X: 2}, Energy: 0.25},
				{ID: "c", Mass: 1, Level: 1, Position: r3.Vec{X: 1, Y: 1}},
			}
			nodes = memory.Build(ps, 4, holon.NewSequence())
		})

		It("creates one node per populated level", func() {
			Expect(nodes).To(HaveLen(2))
			Expect(nodes[0].Level).To(Equal(0))
			Expect(nodes[1].Level).To(Equal(1))
		})

		It("positions each node at the level centroid", func() {
			Expect(nodes[0].Position.X).To(BeNumerically("~", 1.0, 1e-12))
			Expect(nodes[0].Position.Y).To(BeNumerically("~", 0.0, 1e-12))
			Expect(nodes[1].Position.Y).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("parents the level-1 node to the level-0 node", func() {
			Expect(nodes[1].Parent).To(Equal(nodes[0].ID))
		})

		It("registers the reverse child link", func() {
			Expect(nodes[0].Children).To(ContainElement(nodes[1].ID))
		})

		It("keeps the level-0 node a root", func() {
			Expect(nodes[0].Parent).To(BeEmpty())
		})

		It("records the level particles as children", func() {
			Expect(nodes[0].Children).To(ContainElements("a", "b"))
			Expect(nodes[1].Children).To(ContainElement("c"))
		})

		It("sums the level energy into activation", func() {
			Expect(nodes[0].Activation).To(BeNumerically("~", 0.75, 1e-12))
		})

		It("starts every node at full strength", func() {
			for _, n := range nodes {
				Expect(n.Strength).To(Equal(1.0))
			}
		})
	})

	Context("with a level gap", func() {
		It("parents across the gap to the nearest lower level", func() {
			ps := []holon.Particle{
				{ID: "a", Mass: 1, Level: 0},
				{ID: "b", Mass: 1, Level: 2, Position: r3.Vec{X: 1}},
			}
			nodes := memory.Build(ps, 4, holon.NewSequence())

			Expect(nodes).To(HaveLen(2))
			Expect(nodes[1].Parent).To(Equal(nodes[0].ID))
		})
	})

	Context("with a mass-skewed level", func() {
		It("weights the centroid by mass", func() {
			ps := []holon.Particle{
				{ID: "a", Mass: 1, Level: 0, Position: r3.Vec{}},
				{ID: "b", Mass: 3, Level: 0, Position: r3.Vec{X: 4}},
			}
			nodes := memory.Build(ps, 4, holon.NewSequence())

			Expect(nodes).To(HaveLen(1))
			Expect(nodes[0].Position.X).To(BeNumerically("~", 3.0, 1e-12))
		})
	})

	Context("with particles beyond the depth", func() {
		It("ignores them", func() {
			ps := []holon.Particle{
				{ID: "a", Mass: 1, Level: 0},
				{ID: "deep", Mass: 1, Level: 7},
			}
			nodes := memory.Build(ps, 4, holon.NewSequence())

			Expect(nodes).To(HaveLen(1))
			Expect(nodes[0].Level).To(Equal(0))
		})
	})

	Context("with no particles", func() {
		It("returns no nodes", func() {
			Expect(memory.Build(nil, 4, holon.NewSequence())).To(BeEmpty())
		})
	})

	It("issues node ids from the sequence in order", func() {
		ps := []holon.Particle{
			{ID: "a", Mass: 1, Level: 0},
			{ID: "b", Mass: 1, Level: 1, Position: r3.Vec{X: 1}},
		}
		nodes := memory.Build(ps, 4, holon.NewSequence())

		Expect(nodes[0].ID).To(Equal("n-000001"))
		Expect(nodes[1].ID).To(Equal("n-000002"))
	})
})
