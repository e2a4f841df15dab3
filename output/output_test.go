package output

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xrand "golang.org/x/exp/rand"

	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/fracture"
)

var square = fracture.Shape{Kind: fracture.Rectangle, Aspect: 1}

// network builds n unit squares with the given intersections, reporting each
// intersection when the later fracture is accepted.
func network(t *testing.T, n int, records []cluster.Record) ([]*fracture.Polygon, *cluster.Tracker) {
	tr := cluster.NewTracker()
	polys := make([]*fracture.Polygon, n)
	for id := range polys {
		polys[id] = fracture.NewCanonical(square, 1)
		polys[id].ID = id
		polys[id].Family = id % 2

		hits := []int{}
		for _, r := range records {
			if r.B == id {
				hits = append(hits, r.A)
			}
		}
		g, err := tr.AssignGroup(id, hits)
		require.NoError(t, err)
		polys[id].Group = g
	}
	return polys, tr
}

func TestSelectFinal(t *testing.T) {
	records := []cluster.Record{{A: 0, B: 2}, {A: 2, B: 3}, {A: 1, B: 4}}
	polys, tr := network(t, 6, records)
	polys[5].Family = fracture.UserDefined
	polys[3].XRadius = 0.1

	table := []struct {
		opts  SelectOptions
		final []int
	}{
		{SelectOptions{}, []int{0, 1, 2, 3, 4}},
		{SelectOptions{KeepIsolated: true}, []int{0, 1, 2, 3, 4, 5}},
		{SelectOptions{LargestOnly: true}, []int{0, 2, 3}},
		{SelectOptions{LargestOnly: true, KeepUserDefined: true}, []int{0, 2, 3, 5}},
		{SelectOptions{KeepUserDefined: true, MinRadius: 0.5}, []int{0, 1, 2, 4, 5}},
	}

	for i, test := range table {
		final, err := SelectFinal(polys, tr, test.opts)
		require.NoError(t, err)
		assert.Equal(t, test.final, final, "%d) SelectFinal(%+v)", i+1, test.opts)
	}

	_, err := SelectFinal(polys, tr, SelectOptions{KeepIsolated: true, MinRadius: 5})
	assert.True(t, errors.Is(err, ErrNoFractures))
}

func TestSelectBoundaryFaces(t *testing.T) {
	records := []cluster.Record{{A: 0, B: 2}, {A: 2, B: 3}, {A: 1, B: 4}}
	polys, tr := network(t, 6, records)
	polys[0].Faces = fracture.FaceNegX
	polys[3].Faces = fracture.FacePosX
	polys[1].Faces = fracture.FaceNegX | fracture.FaceNegZ
	polys[4].Faces = fracture.FacePosZ
	polys[5].Faces = fracture.FaceNegY | fracture.FacePosY

	x := fracture.FaceNegX | fracture.FacePosX
	z := fracture.FaceNegZ | fracture.FacePosZ
	y := fracture.FaceNegY | fracture.FacePosY
	table := []struct {
		opts    SelectOptions
		final   []int
		warning bool
	}{
		{SelectOptions{BoundaryFaces: x}, []int{0, 2, 3}, false},
		{SelectOptions{BoundaryFaces: z}, []int{1, 4}, false},
		{SelectOptions{BoundaryFaces: fracture.FaceNegX}, []int{0, 1, 2, 3, 4}, false},
		{SelectOptions{BoundaryFaces: fracture.FaceNegX, LargestOnly: true}, []int{0, 2, 3}, false},
		{SelectOptions{BoundaryFaces: z, LargestOnly: true}, []int{1, 4}, false},
		{SelectOptions{BoundaryFaces: y, KeepIsolated: true}, []int{5}, false},
		{SelectOptions{BoundaryFaces: y}, []int{0, 1, 2, 3, 4}, true},
		{SelectOptions{BoundaryFaces: x | z}, []int{0, 1, 2, 3, 4}, true},
	}

	for i, test := range table {
		buf := &bytes.Buffer{}
		test.opts.Logger = log.New(buf, "", 0)
		final, err := SelectFinal(polys, tr, test.opts)
		require.NoError(t, err)
		assert.Equal(t, test.final, final, "%d) SelectFinal(%+v)", i+1, test.opts)
		if warned := strings.Contains(buf.String(), "Warning"); warned != test.warning {
			t.Errorf("%d) logged %q", i+1, buf.String())
		}
	}

	faces := GroupFaces(polys, tr)
	assert.Equal(t, x, faces[1])
	assert.Equal(t, fracture.FaceNegX|z, faces[2])
}

func TestParseFaces(t *testing.T) {
	table := []struct {
		s     string
		faces uint8
		ok    bool
	}{
		{"", 0, true},
		{"-x", fracture.FaceNegX, true},
		{" +X  -z ", fracture.FacePosX | fracture.FaceNegZ, true},
		{"-x +x -y +y -z +z", 63, true},
		{"x", 0, false},
		{"-x top", 0, false},
	}

	for i, test := range table {
		faces, err := ParseFaces(test.s)
		if (err == nil) != test.ok || faces != test.faces {
			t.Errorf("%d) ParseFaces(%q) = %d, %v", i+1, test.s, faces, err)
		}
	}
	assert.Equal(t, "[+x -z]", FaceNames(fracture.FacePosX|fracture.FaceNegZ))
	assert.Equal(t, "[]", FaceNames(0))
}

func TestAdjustIntFractIDs(t *testing.T) {
	records := []cluster.Record{{A: 0, B: 2}, {A: 2, B: 5}, {A: 1, B: 5}, {A: 3, B: 4}}
	polys, _ := network(t, 6, records)

	out, outRecords := AdjustIntFractIDs([]int{0, 2, 5}, polys, records, 1)
	require.Len(t, out, 3)
	for i, p := range out {
		assert.Equal(t, i+1, p.ID)
	}
	assert.Equal(t, []cluster.Record{{A: 1, B: 2}, {A: 2, B: 3}}, outRecords)
	// The inputs are untouched.
	assert.Equal(t, 5, polys[5].ID)
}

func TestAdjustIntFractIDsDense(t *testing.T) {
	r := xrand.New(xrand.NewSource(3))
	for trial := 0; trial < 100; trial++ {
		n := 1 + r.Intn(40)
		records := []cluster.Record{}
		for i := 0; i < n; i++ {
			a, b := r.Intn(n), r.Intn(n)
			if a < b {
				records = append(records, cluster.Record{A: a, B: b})
			}
		}
		polys, tr := network(t, n, records)

		final, err := SelectFinal(polys, tr, SelectOptions{})
		if err != nil {
			require.True(t, errors.Is(err, ErrNoFractures))
			continue
		}
		base := trial % 2
		out, outRecords := AdjustIntFractIDs(final, polys, records, base)

		seen := map[int]bool{}
		for i, p := range out {
			require.Equal(t, base+i, p.ID)
			seen[p.ID] = true
			if i > 0 {
				// Relative order is preserved.
				require.Less(t, final[i-1], final[i])
			}
		}
		for _, rec := range outRecords {
			require.True(t, seen[rec.A] && seen[rec.B])
		}

		kept := 0
		for _, rec := range records {
			if contains(final, rec.A) && contains(final, rec.B) {
				kept++
			}
		}
		require.Equal(t, kept, len(outRecords))
	}
}

func contains(xs []int, x int) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}

func TestWriteRadii(t *testing.T) {
	p := fracture.NewCanonical(fracture.Shape{Kind: fracture.Ellipse, Sides: 8, Aspect: 0.5}, 3)
	p.Family = 2
	q := fracture.NewCanonical(square, 1.5)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteRadii(buf, []*fracture.Polygon{p, q}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"# xRadius yRadius Family", "3 1.5 2", "1.5 1.5 -1"}, lines)

	buf.Reset()
	require.NoError(t, WriteIntersections(buf, []cluster.Record{{A: 0, B: 3}}))
	assert.Equal(t, "# A B\n0 3\n", buf.String())

	p.ID, p.Group, p.Aperture, p.Permeability = 4, 1, 1e-3, 1e-3*1e-3/12
	buf.Reset()
	require.NoError(t, WriteProperties(buf, []*fracture.Polygon{p}))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "4 2 1 0.001 8.3333333e-08 8.3333333e-11", lines[1])
}

func TestReport(t *testing.T) {
	polys, _ := network(t, 4, nil)
	in := Measure(polys, 100)
	assert.Equal(t, 4, in.Count)
	assert.InDelta(t, 16, in.Area, 1e-12)
	assert.InDelta(t, 0.04, in.P30, 1e-12)
	assert.InDelta(t, 0.32, in.P32, 1e-12)

	fams := FamilyIntensities(polys, 2, 100)
	assert.Equal(t, 2, fams[0].Count)
	assert.Equal(t, 2, fams[1].Count)

	r := &Report{
		Session: "abc", Seed: 12, Generator: "pcg64", Attempts: 10,
		Accepted: in, Final: in,
		Families: []FamilyReport{{Name: "a", Accepted: 2, Rejected: 3, Final: fams[0]}},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, WriteReport(buf, r))
	assert.Contains(t, buf.String(), "session: abc")
	assert.Contains(t, buf.String(), "rejected: 3")

	read, err := ReadReport(buf)
	require.NoError(t, err)
	assert.Equal(t, r, read)
}
