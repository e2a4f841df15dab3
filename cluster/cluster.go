/*package cluster tracks which accepted fractures are connected to each other
through chains of intersections.

Every fracture belongs to exactly one group. Groups are identified by the
smallest group ID of anything merged into them, so merging is independent of
the order in which intersections are reported. Groups merge but never split.
*/
package cluster

import (
	"fmt"
	"sort"
)

// FirstGroup is the identifier given to the first group.
const FirstGroup = 1

// Record is a pair of accepted fractures known to intersect.
type Record struct {
	A, B int
}

// Tracker maintains group membership with a union-find structure over group
// IDs. Fracture IDs are expected to be small non-negative integers, as
// handed out by the insertion engine.
type Tracker struct {
	// fracGroup[id] is the group the fracture was first assigned to.
	fracGroup []int
	// degree[id] is the number of intersections recorded for the fracture.
	degree []int
	// parent is indexed by group ID - FirstGroup.
	parent  []int
	members map[int][]int
	edges   map[Record]struct{}
	// moved holds the fractures whose group changed since the last call to
	// Moved.
	moved []int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{members: map[int][]int{}, edges: map[Record]struct{}{}}
}

func edge(a, b int) Record {
	if b < a {
		a, b = b, a
	}
	return Record{a, b}
}

// Unique returns the distinct values of ids in their first-seen order.
func Unique(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func (t *Tracker) find(g int) int {
	i := g - FirstGroup
	for t.parent[i] != i {
		t.parent[i] = t.parent[t.parent[i]]
		i = t.parent[i]
	}
	return i + FirstGroup
}

// union merges the groups containing g1 and g2 and returns the surviving
// group, which is always the one with the smaller ID. The members of the
// absorbed group are added to t.moved.
func (t *Tracker) union(g1, g2 int) int {
	r1, r2 := t.find(g1), t.find(g2)
	if r1 == r2 {
		return r1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}

	t.parent[r2-FirstGroup] = r1 - FirstGroup

	absorbed := t.members[r2]
	t.moved = append(t.moved, absorbed...)

	// Append the smaller list to the larger one to keep merging cheap.
	m1, m2 := t.members[r1], absorbed
	if len(m1) < len(m2) {
		m1, m2 = m2, m1
	}
	t.members[r1] = append(m1, m2...)
	delete(t.members, r2)

	return r1
}

// Moved returns the fractures whose group changed through a merge since the
// previous call and resets the list. A fracture can appear more than once.
// Only absorbed groups are listed, so a fracture joining an existing group
// moves at most itself.
func (t *Tracker) Moved() []int {
	out := t.moved
	t.moved = nil
	return out
}

// Linked returns true if an intersection between a and b has been recorded.
func (t *Tracker) Linked(a, b int) bool {
	_, ok := t.edges[edge(a, b)]
	return ok
}

func (t *Tracker) addEdge(a, b int) {
	e := edge(a, b)
	if _, ok := t.edges[e]; ok {
		return
	}
	t.edges[e] = struct{}{}
	t.degree[a]++
	t.degree[b]++
}

func (t *Tracker) known(id int) bool {
	return id >= 0 && id < len(t.fracGroup) && t.fracGroup[id] != 0
}

// AssignGroup registers a newly accepted fracture and the already accepted
// fractures it intersects. Without intersections the fracture starts a new
// group. Otherwise it joins the smallest group among the fractures it
// touches, and all of those groups are merged. Repeated IDs in
// intersections are counted once. The fracture's group is returned.
func (t *Tracker) AssignGroup(id int, intersections []int) (int, error) {
	if id < 0 {
		return 0, fmt.Errorf("Fracture ID %d is negative.", id)
	} else if t.known(id) {
		return 0, fmt.Errorf("Fracture %d has already been assigned a group.", id)
	}
	for _, other := range intersections {
		if !t.known(other) {
			return 0, fmt.Errorf(
				"Fracture %d intersects fracture %d, which has not been accepted.",
				id, other,
			)
		}
	}

	for len(t.fracGroup) <= id {
		t.fracGroup = append(t.fracGroup, 0)
		t.degree = append(t.degree, 0)
	}

	g := len(t.parent) + FirstGroup
	t.parent = append(t.parent, g-FirstGroup)
	t.fracGroup[id] = g
	t.members[g] = []int{id}

	for _, other := range Unique(intersections) {
		g = t.union(g, t.fracGroup[other])
		t.addEdge(id, other)
	}
	return g, nil
}

// Link records an intersection between two accepted fractures which was
// discovered after both were assigned, merging their groups. Linking an
// already linked pair does nothing.
func (t *Tracker) Link(a, b int) error {
	if !t.known(a) || !t.known(b) {
		return fmt.Errorf("Cannot link fractures %d and %d: both must be accepted.", a, b)
	} else if a == b {
		return fmt.Errorf("Cannot link fracture %d to itself.", a)
	}
	t.union(t.fracGroup[a], t.fracGroup[b])
	t.addEdge(a, b)
	return nil
}

// Group returns the current group of a fracture, or 0 if the fracture is
// unknown.
func (t *Tracker) Group(id int) int {
	if !t.known(id) {
		return 0
	}
	return t.find(t.fracGroup[id])
}

// Degree returns the number of intersections recorded for a fracture.
func (t *Tracker) Degree(id int) int {
	if !t.known(id) {
		return 0
	}
	return t.degree[id]
}

// Members returns the sorted IDs of the fractures in a group.
func (t *Tracker) Members(group int) []int {
	m := append([]int{}, t.members[group]...)
	sort.Ints(m)
	return m
}

// Size returns the number of fractures in a group.
func (t *Tracker) Size(group int) int { return len(t.members[group]) }

// Groups returns the IDs of every group, in increasing order.
func (t *Tracker) Groups() []int {
	out := make([]int, 0, len(t.members))
	for g := range t.members {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Largest returns the group with the most fractures, preferring smaller IDs
// on ties. It returns 0 for an empty tracker.
func (t *Tracker) Largest() int {
	best, bestSize := 0, 0
	for _, g := range t.Groups() {
		if n := t.Size(g); n > bestSize {
			best, bestSize = g, n
		}
	}
	return best
}

// Fractures returns the number of fractures which have been assigned.
func (t *Tracker) Fractures() int {
	n := 0
	for _, m := range t.members {
		n += len(m)
	}
	return n
}
