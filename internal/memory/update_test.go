package memory_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/memory"
)

var _ = Describe("Updater", func() {
	Context("with no matching particles", func() {
		It("decays strictly every tick until pruned", func() {
			u := memory.Updater{Decay: 0.5}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 1}}

			prev := nodes[0].Strength
			for i := 0; i < 200 && len(nodes) > 0; i++ {
				nodes = u.Update(nodes, nil, 0.1)
				if len(nodes) > 0 {
					Expect(nodes[0].Strength).To(BeNumerically("<", prev))
					prev = nodes[0].Strength
				}
			}
			Expect(nodes).To(BeEmpty())
		})

		It("leaves position and activation alone", func() {
			u := memory.Updater{Decay: 0.1}
			nodes := []holon.Node{{
				ID: "n-000001", Level: 3,
				Position:   r3.Vec{X: 1},
				Activation: 0.7,
				Strength:   1,
			}}
			ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0, Position: r3.Vec{X: 9}}}

			out := u.Update(nodes, ps, 0.1)

			Expect(out).To(HaveLen(1))
			Expect(out[0].Position.X).To(Equal(1.0))
			Expect(out[0].Activation).To(Equal(0.7))
		})

		It("prunes at the threshold boundary", func() {
			u := memory.Updater{Decay: 0.5}
			nodes := []holon.Node{{ID: "n-000001", Strength: 0.0105}}

			out := u.Update(nodes, nil, 0.1)

			Expect(out).To(BeEmpty())
		})
	})

	Context("with matching particles", func() {
		It("reinforces by similarity", func() {
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 0.5}}
			ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0}}

			out := u.Update(nodes, ps, 0.1)

			// similarity exp(0) = 1 at zero distance
			Expect(out[0].Strength).To(BeNumerically("~", 0.6, 1e-12))
		})

		It("caps strength at one", func() {
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 0.95}}
			ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0}}

			out := u.Update(nodes, ps, 0.1)

			Expect(out[0].Strength).To(Equal(1.0))
		})

		It("reinforces from a same-level particle that was never a child", func() {
			// The matching rule is children OR same level; a later-spawned
			// particle must still feed the node.
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{
				ID: "n-000001", Level: 0, Strength: 0.5,
				Children: []string{"p-000001"},
			}}
			stranger := holon.Particle{ID: "p-000099", Mass: 1, Level: 0}

			out := u.Update(nodes, []holon.Particle{stranger}, 0.1)

			Expect(out[0].Strength).To(BeNumerically("~", 0.6, 1e-12))
		})

		It("matches a registered child on another level", func() {
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{
				ID: "n-000001", Level: 0, Strength: 0.5,
				Children: []string{"n-000002"},
			}}
			child := holon.Particle{ID: "n-000002", Mass: 1, Level: 1, Position: r3.Vec{}}

			out := u.Update(nodes, []holon.Particle{child}, 0.1)

			Expect(out[0].Strength).To(BeNumerically(">", 0.5))
		})

		It("adapts position one percent toward the match centroid", func() {
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 0.5}}
			ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0, Position: r3.Vec{X: 1}}}

			out := u.Update(nodes, ps, 0.1)

			Expect(out[0].Position.X).To(BeNumerically("~", 0.01, 1e-12))
		})

		It("refreshes activation from match energy", func() {
			u := memory.Updater{Decay: 0}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 0.5, Activation: 42}}
			ps := []holon.Particle{
				{ID: "p-000001", Mass: 1, Level: 0, Energy: 0.25},
				{ID: "p-000002", Mass: 1, Level: 0, Energy: 0.5},
			}

			out := u.Update(nodes, ps, 0.1)

			Expect(out[0].Activation).To(BeNumerically("~", 0.75, 1e-12))
		})

		It("applies decay before reinforcement", func() {
			u := memory.Updater{Decay: 0.5}
			nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 0.8}}
			ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0, Position: r3.Vec{X: 2}}}

			out := u.Update(nodes, ps, 0.1)

			want := 0.8*0.95 + 0.1*math.Exp(-2)
			Expect(out[0].Strength).To(BeNumerically("~", want, 1e-12))
		})
	})

	It("does not mutate the input nodes", func() {
		u := memory.Updater{Decay: 0.5}
		nodes := []holon.Node{{ID: "n-000001", Level: 0, Strength: 1, Children: []string{"a"}}}
		ps := []holon.Particle{{ID: "p-000001", Mass: 1, Level: 0, Position: r3.Vec{X: 1}}}

		u.Update(nodes, ps, 0.1)

		Expect(nodes[0].Strength).To(Equal(1.0))
		Expect(nodes[0].Position.X).To(Equal(0.0))
	})
})
