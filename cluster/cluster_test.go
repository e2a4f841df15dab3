package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"
)

func TestAssignGroup(t *testing.T) {
	tr := NewTracker()

	table := []struct {
		id            int
		intersections []int
		group         int
	}{
		{0, nil, 1},
		{1, nil, 2},
		{2, []int{1}, 2},
		{3, nil, 4},
		{4, []int{3, 2}, 2},
		{5, []int{0, 4}, 1},
	}

	for i, test := range table {
		g, err := tr.AssignGroup(test.id, test.intersections)
		require.NoError(t, err)
		if g != test.group {
			t.Errorf("%d) AssignGroup(%d, %v) = %d instead of %d",
				i+1, test.id, test.intersections, g, test.group)
		}
	}

	for id := 0; id <= 5; id++ {
		assert.Equal(t, 1, tr.Group(id))
	}
	assert.Equal(t, []int{1}, tr.Groups())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, tr.Members(1))
	assert.Equal(t, 6, tr.Size(1))
	assert.Equal(t, 3, tr.Degree(4))
	assert.Equal(t, 6, tr.Fractures())
}

func TestAssignGroupErrors(t *testing.T) {
	tr := NewTracker()
	_, err := tr.AssignGroup(0, nil)
	require.NoError(t, err)

	_, err = tr.AssignGroup(0, nil)
	assert.Error(t, err)
	_, err = tr.AssignGroup(-1, nil)
	assert.Error(t, err)
	_, err = tr.AssignGroup(1, []int{7})
	assert.Error(t, err)
	assert.Equal(t, 0, tr.Group(1))

	assert.Error(t, tr.Link(0, 3))
}

func TestMovedOnlyAbsorbed(t *testing.T) {
	tr := NewTracker()
	_, err := tr.AssignGroup(0, nil)
	require.NoError(t, err)
	assert.Empty(t, tr.Moved())

	// Joining an existing group only moves the new fracture, however large
	// the group is.
	for id := 1; id < 2000; id++ {
		_, err := tr.AssignGroup(id, []int{id - 1, 0})
		require.NoError(t, err)
		if moved := tr.Moved(); len(moved) != 1 || moved[0] != id {
			t.Fatalf("%d) Moved() = %v instead of [%d]", id, moved, id)
		}
	}

	// Merging moves the members of the group with the larger ID.
	tr.AssignGroup(2000, nil)
	tr.AssignGroup(2001, []int{2000})
	tr.Moved()
	require.NoError(t, tr.Link(2001, 5))
	moved := tr.Moved()
	assert.ElementsMatch(t, []int{2000, 2001}, moved)
	assert.Equal(t, 1, tr.Group(2001))

	require.NoError(t, tr.Link(3, 7))
	assert.Empty(t, tr.Moved())
}

func TestRepeatedIntersections(t *testing.T) {
	tr := NewTracker()
	tr.AssignGroup(0, nil)
	tr.AssignGroup(1, nil)
	g, err := tr.AssignGroup(2, []int{0, 1, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, g)
	assert.Equal(t, 2, tr.Degree(2))
	assert.Equal(t, 1, tr.Degree(0))

	require.NoError(t, tr.Link(0, 2))
	require.NoError(t, tr.Link(1, 0))
	require.NoError(t, tr.Link(0, 1))
	assert.Equal(t, 2, tr.Degree(0))
	assert.Equal(t, 2, tr.Degree(1))
	assert.True(t, tr.Linked(1, 0))
	assert.True(t, tr.Linked(2, 1))

	assert.Error(t, tr.Link(1, 1))
	assert.Equal(t, 2, tr.Degree(1))

	assert.Equal(t, []int{3, 1, 2}, Unique([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Unique(nil))
}

func TestLargest(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0, tr.Largest())

	tr.AssignGroup(0, nil)
	tr.AssignGroup(1, nil)
	tr.AssignGroup(2, []int{1})
	tr.AssignGroup(3, nil)
	assert.Equal(t, 2, tr.Largest())
	assert.Equal(t, []int{1, 2, 4}, tr.Groups())

	require.NoError(t, tr.Link(0, 3))
	// Tie between groups 1 and 2.
	assert.Equal(t, 1, tr.Largest())
	assert.Equal(t, []int{1, 2}, tr.Groups())
	assert.Equal(t, []int{0, 3}, tr.Members(1))
}

func partition(tr *Tracker, n int) []int {
	out := make([]int, n)
	for id := range out {
		out[id] = tr.Group(id)
	}
	return out
}

func TestLinkOrderIndependent(t *testing.T) {
	r := xrand.New(xrand.NewSource(11))
	const n = 60

	pairs := [][2]int{}
	for i := 0; i < 45; i++ {
		pairs = append(pairs, [2]int{r.Intn(n), r.Intn(n)})
	}

	var want []int
	for trial := 0; trial < 50; trial++ {
		tr := NewTracker()
		for id := 0; id < n; id++ {
			_, err := tr.AssignGroup(id, nil)
			require.NoError(t, err)
		}

		order := r.Perm(len(pairs))
		for _, k := range order {
			a, b := pairs[k][0], pairs[k][1]
			if r.Intn(2) == 0 {
				a, b = b, a
			}
			require.NoError(t, tr.Link(a, b))
		}

		got := partition(tr, n)
		if want == nil {
			want = got
			continue
		}
		require.Equal(t, want, got)
	}

	// Every fracture is in exactly one group.
	tr := NewTracker()
	for id := 0; id < n; id++ {
		tr.AssignGroup(id, nil)
	}
	for _, p := range pairs {
		tr.Link(p[0], p[1])
	}
	seen := map[int]bool{}
	for _, g := range tr.Groups() {
		for _, id := range tr.Members(g) {
			assert.False(t, seen[id])
			seen[id] = true
			assert.Equal(t, g, tr.Group(id))
		}
	}
	assert.Len(t, seen, n)
}

func TestIncrementalMatchesLinks(t *testing.T) {
	// Reporting intersections on acceptance gives the same partition as
	// linking them afterwards.
	edges := map[int][]int{2: {0}, 3: {1}, 5: {3, 2}, 6: {4}}
	const n = 7

	inc := NewTracker()
	for id := 0; id < n; id++ {
		_, err := inc.AssignGroup(id, edges[id])
		require.NoError(t, err)
	}

	late := NewTracker()
	for id := 0; id < n; id++ {
		late.AssignGroup(id, nil)
	}
	for id := n - 1; id >= 0; id-- {
		for _, other := range edges[id] {
			late.Link(id, other)
		}
	}

	assert.Equal(t, partition(inc, n), partition(late, n))
	assert.Equal(t, []int{1, 5}, inc.Groups())
}
