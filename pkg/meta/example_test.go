package meta_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/modelsketch/pkg/construction"
	"github.com/matzehuels/modelsketch/pkg/geom"
	"github.com/matzehuels/modelsketch/pkg/meta"
)

func Example() {
	cg := construction.New(construction.DefaultTuning())
	a := cg.CreateNode(geom.Pt(0, 0))
	b := cg.CreateNode(geom.Pt(40, 0))
	cg.AddSpring(construction.NewAffix(a, geom.Pt(0, 0)))

	g := meta.New(cg)
	ab := g.AddDistance(a, b, meta.Value(100), meta.Value(100))

	g.Settle(time.Second/60, 1000, 1e-6)
	fmt.Printf("|AB| = %.1f\n", g.Quantity(ab))
	// Output: |AB| = 100.0
}

func ExampleRef() {
	cg := construction.New(construction.Tuning{})
	a := cg.CreateNode(geom.Pt(0, 0))
	b := cg.CreateNode(geom.Pt(120, 0))
	c := cg.CreateNode(geom.Pt(0, 50))
	d := cg.CreateNode(geom.Pt(10, 50))

	g := meta.New(cg)
	ab := g.AddDistance(a, b, meta.Bound{}, meta.Bound{})
	cd := g.AddDistance(c, d, meta.Ref(ab), meta.Ref(ab))
	g.Update()

	s := cg.Spring(g.MustNode(cd).Springs()[0])
	lo, _ := s.Min()
	fmt.Println(lo)
	// Output: 120
}
