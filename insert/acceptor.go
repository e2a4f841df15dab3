package insert

import (
	"github.com/golang/geo/r3"

	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/geom"
)

// Reason explains why a candidate was rejected.
type Reason int

const (
	NoReason Reason = iota
	TooSmall
	OutsideDomain
	Excluded
	Overlap
	EndReason
)

var reasonNames = [EndReason]string{
	"None", "TooSmall", "OutsideDomain", "Excluded", "Overlap",
}

func (r Reason) String() string {
	if r < 0 || r >= EndReason {
		return "Unknown"
	}
	return reasonNames[r]
}

// Verdict is the outcome of an acceptance test. Intersections lists the IDs
// of the accepted fractures which an accepted candidate intersects.
type Verdict struct {
	Accepted      bool
	Intersections []int
	Reason        Reason
}

// Acceptor decides whether a candidate fracture can join the network.
type Acceptor interface {
	Accept(candidate *fracture.Polygon, domain Domain, existing []*fracture.Polygon) Verdict
}

// Intersector is implemented by Acceptors which can list the accepted
// fractures a polygon intersects without judging it. It is used for fractures
// which are added to the network unconditionally.
type Intersector interface {
	Intersections(p *fracture.Polygon, existing []*fracture.Polygon) []int
}

// IntersectFunc compares a candidate with one accepted fracture. It reports
// whether the two intersect and whether the intersection is bad enough that
// the candidate must be rejected.
type IntersectFunc func(candidate, other *fracture.Polygon) (intersects, reject bool)

// DomainAcceptor accepts candidates which are large enough, lie within the
// domain grown by Margin, and whose centers lie outside of every exclusion
// box. If Intersect is set, it is called for every accepted fracture whose
// bounding sphere overlaps the candidate's.
type DomainAcceptor struct {
	MinRadius  float64
	Margin     float64
	Exclusions []Domain
	Intersect  IntersectFunc
}

func (a *DomainAcceptor) Accept(
	c *fracture.Polygon, d Domain, existing []*fracture.Polygon,
) Verdict {
	if c.Radius() < a.MinRadius {
		return Verdict{Reason: TooSmall}
	}

	box := d.Grow(a.Margin)
	for _, v := range c.Vertices {
		if !box.Contains(v) {
			return Verdict{Reason: OutsideDomain}
		}
	}

	for _, ex := range a.Exclusions {
		if ex.Contains(c.Center) {
			return Verdict{Reason: Excluded}
		}
	}

	if a.Intersect == nil {
		return Verdict{Accepted: true}
	}

	hits, ok := a.intersect(c, existing, true)
	if !ok {
		return Verdict{Reason: Overlap}
	}
	return Verdict{Accepted: true, Intersections: hits}
}

// Intersections returns the IDs of the fractures in existing which c
// intersects, ignoring any reason Intersect gives for rejecting c. It returns
// nil if Intersect is not set.
func (a *DomainAcceptor) Intersections(c *fracture.Polygon, existing []*fracture.Polygon) []int {
	if a.Intersect == nil {
		return nil
	}
	hits, _ := a.intersect(c, existing, false)
	return hits
}

// intersect runs Intersect against every fracture whose bounding sphere
// overlaps c's. If strict is set it stops at the first rejection and returns
// false.
func (a *DomainAcceptor) intersect(
	c *fracture.Polygon, existing []*fracture.Polygon, strict bool,
) ([]int, bool) {
	hits := []int{}
	rc := fracture.BoundingRadius(c)
	for _, p := range existing {
		if p.Center.Sub(c.Center).Norm() > rc+fracture.BoundingRadius(p) {
			continue
		}
		intersects, reject := a.Intersect(c, p)
		if reject && strict {
			return nil, false
		} else if intersects {
			hits = append(hits, p.ID)
		}
	}
	return hits, true
}

// RecordIntersections is an IntersectFunc which reports every crossing
// between convex fractures and never rejects.
func RecordIntersections(c, other *fracture.Polygon) (bool, bool) {
	return ConvexIntersect(c, other), false
}

// ConvexIntersect returns true if two planar convex polygons cross each
// other. Coplanar polygons are never considered to intersect.
func ConvexIntersect(a, b *fracture.Polygon) bool {
	return pierces(a, b) || pierces(b, a)
}

// pierces returns true if an edge of a passes through b.
func pierces(a, b *fracture.Polygon) bool {
	n := len(a.Vertices)
	for i := 0; i < n; i++ {
		p, q := a.Vertices[i], a.Vertices[(i+1)%n]
		dp := b.Normal.Dot(p.Sub(b.Center))
		dq := b.Normal.Dot(q.Sub(b.Center))
		if (dp > 0 && dq > 0) || (dp < 0 && dq < 0) || dp == dq {
			continue
		}

		x := p.Add(q.Sub(p).Mul(dp / (dp - dq)))
		if inside(b, x) {
			return true
		}
	}
	return false
}

// inside returns true if x, which lies in the plane of p, is inside of p.
// Vertices are counter-clockwise about the normal.
func inside(p *fracture.Polygon, x r3.Vector) bool {
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		v0, v1 := p.Vertices[i], p.Vertices[(i+1)%n]
		if v1.Sub(v0).Cross(x.Sub(v0)).Dot(p.Normal) < -geom.Eps {
			return false
		}
	}
	return true
}
