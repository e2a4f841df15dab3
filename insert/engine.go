/*package insert builds candidate fractures and places them in the domain.

A single insertion attempt draws a family and radius, builds the canonical
polygon, rotates it in-plane and then onto a sampled normal, translates it to
a uniformly sampled point, and asks an Acceptor whether it can join the
network. Accepted fractures receive the next dense ID and are handed to the
cluster tracker and the property assigner. Rejected ones only increment a
per-family counter. Retry policy belongs to the caller.
*/
package insert

import (
	"fmt"

	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/geom"
	"github.com/phil-mansfield/dfngen/props"
	"github.com/phil-mansfield/dfngen/rand"
)

// Engine performs insertion attempts. It is not safe for concurrent use.
type Engine struct {
	sampler  *family.Sampler
	domain   Domain
	acceptor Acceptor
	tracker  *cluster.Tracker
	assigner *props.Assigner
	rng      *rand.Generator

	accepted []*fracture.Polygon
	records  []cluster.Record
	rejected []int
	attempts int
}

// NewEngine creates an Engine. A nil assigner leaves fracture properties
// unset.
func NewEngine(
	sampler *family.Sampler, domain Domain, acceptor Acceptor,
	tracker *cluster.Tracker, assigner *props.Assigner, rng *rand.Generator,
) (*Engine, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		sampler:  sampler,
		domain:   domain,
		acceptor: acceptor,
		tracker:  tracker,
		assigner: assigner,
		rng:      rng,
		rejected: make([]int, len(sampler.Families())),
	}, nil
}

// Intersections lists the accepted fractures p intersects, if the Acceptor
// is an Intersector. Otherwise it returns nil.
func (e *Engine) Intersections(p *fracture.Polygon) []int {
	if in, ok := e.acceptor.(Intersector); ok {
		return in.Intersections(p, e.accepted)
	}
	return nil
}

// Domain returns the domain fractures are placed in.
func (e *Engine) Domain() Domain { return e.domain }

// Accepted returns the accepted fractures. The fracture with ID i is at
// index i.
func (e *Engine) Accepted() []*fracture.Polygon { return e.accepted }

// Records returns every intersection recorded so far.
func (e *Engine) Records() []cluster.Record { return e.records }

// Rejected returns the number of rejected placements for each family.
func (e *Engine) Rejected() []int { return append([]int{}, e.rejected...) }

// Attempts returns the number of placements which have been tested.
func (e *Engine) Attempts() int { return e.attempts }

// Candidate draws a family and radius and returns the oriented, translated
// polygon. It fails with family.ErrExhaustedPool when no family is left.
func (e *Engine) Candidate() (*fracture.Polygon, error) {
	d, err := e.sampler.Sample()
	if err != nil {
		return nil, err
	}

	p := fracture.NewCanonical(d.Shape, d.Radius)
	p.Family = d.Family
	fracture.Orient(p, e.sampler.SampleAngle(), e.sampler.SampleNormal(d.Family))
	fracture.MoveTo(p, e.domain.SamplePoint(e.rng))
	return p, nil
}

// Retranslate moves a rejected candidate to a new random point without
// changing its size or orientation.
func (e *Engine) Retranslate(c *fracture.Polygon) {
	fracture.MoveTo(c, e.domain.SamplePoint(e.rng))
}

// Place tests a candidate and commits it if it is accepted.
func (e *Engine) Place(c *fracture.Polygon) (Verdict, error) {
	e.attempts++
	v := e.acceptor.Accept(c, e.domain, e.accepted)
	if !v.Accepted {
		if c.Family >= 0 {
			e.rejected[c.Family]++
		}
		return v, nil
	}
	return v, e.Commit(c, v.Intersections)
}

// Attempt is a single end-to-end insertion attempt. The returned polygon is
// the candidate, whether or not it was accepted.
func (e *Engine) Attempt() (*fracture.Polygon, Verdict, error) {
	c, err := e.Candidate()
	if err != nil {
		return nil, Verdict{}, err
	}
	v, err := e.Place(c)
	return c, v, err
}

// Commit adds p to the network without consulting the Acceptor. It assigns
// the next ID, registers the intersections with the tracker, and assigns
// properties. Repeated IDs in intersections are recorded once. Nothing is
// modified if an error is returned.
func (e *Engine) Commit(p *fracture.Polygon, intersections []int) error {
	if p.ID >= 0 {
		return fmt.Errorf("Fracture %d has already been accepted.", p.ID)
	}
	if e.assigner != nil {
		if err := e.assigner.Assign(p); err != nil {
			return err
		}
	}

	id := len(e.accepted)
	intersections = cluster.Unique(intersections)
	group, err := e.tracker.AssignGroup(id, intersections)
	if err != nil {
		p.Aperture, p.Permeability = 0, 0
		e.tracker.Moved()
		return err
	}

	p.ID, p.Group = id, group
	p.Faces = e.domain.Faces(p, geom.Eps)
	e.accepted = append(e.accepted, p)
	for _, other := range intersections {
		e.records = append(e.records, cluster.Record{A: other, B: id})
	}
	e.relabel(group)

	if p.Family >= 0 {
		e.sampler.Family(p.Family).Record(p.Area, e.domain.Volume())
	}
	return nil
}

// Link records an intersection between two accepted fractures which was
// found after both were placed. Pairs which are already linked are ignored.
func (e *Engine) Link(a, b int) error {
	if e.tracker.Linked(a, b) {
		return nil
	}
	if err := e.tracker.Link(a, b); err != nil {
		return err
	}
	e.records = append(e.records, cluster.Record{A: a, B: b})
	e.relabel(e.tracker.Group(a))
	return nil
}

// relabel moves the fractures of absorbed groups into group.
func (e *Engine) relabel(group int) {
	for _, id := range e.tracker.Moved() {
		e.accepted[id].Group = group
	}
}
