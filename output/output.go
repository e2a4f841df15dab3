/*package output prepares a generated network for export: it selects the
fractures which make up the final network, renumbers them densely along with
their intersection records, and writes summary files.
*/
package output

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/props"
)

// ErrNoFractures is returned when no fracture survives selection.
var ErrNoFractures = errors.New("output: no fractures in final network")

// SelectOptions controls which fractures make up the final network.
type SelectOptions struct {
	// KeepIsolated keeps fractures which intersect nothing.
	KeepIsolated bool
	// LargestOnly keeps only the largest cluster.
	LargestOnly bool
	// KeepUserDefined keeps user-defined fractures even when they are
	// isolated.
	KeepUserDefined bool
	// MinRadius drops fractures smaller than this after selection.
	MinRadius float64
	// BoundaryFaces is a mask of fracture.Face* flags. When it is non-zero
	// only clusters which touch every listed face are kept. If no cluster
	// does, the faces are ignored and a warning is logged.
	BoundaryFaces uint8
	// Logger receives warnings. Nil discards them.
	Logger *log.Logger
}

// SelectFinal returns the IDs, in increasing order, of the fractures which
// belong in the final network. polys must be indexed by ID.
func SelectFinal(
	polys []*fracture.Polygon, tracker *cluster.Tracker, opts SelectOptions,
) ([]int, error) {
	final := selectFaces(polys, tracker, opts, opts.BoundaryFaces)
	if len(final) == 0 && opts.BoundaryFaces != 0 {
		if opts.Logger != nil {
			opts.Logger.Printf(
				"Warning: no cluster connects boundary faces %s, "+
					"ignoring boundary faces.", FaceNames(opts.BoundaryFaces),
			)
		}
		final = selectFaces(polys, tracker, opts, 0)
	}

	if len(final) == 0 {
		return nil, ErrNoFractures
	}
	return final, nil
}

func selectFaces(
	polys []*fracture.Polygon, tracker *cluster.Tracker,
	opts SelectOptions, faces uint8,
) []int {
	groupFaces := GroupFaces(polys, tracker)
	connects := func(g int) bool { return groupFaces[g]&faces == faces }

	largest := tracker.Largest()
	if faces != 0 {
		largest = 0
		for _, g := range tracker.Groups() {
			if connects(g) && (largest == 0 || tracker.Size(g) > tracker.Size(largest)) {
				largest = g
			}
		}
	}

	final := []int{}
	for _, p := range polys {
		g := tracker.Group(p.ID)
		isolated := tracker.Size(g) < 2
		required := opts.KeepUserDefined && p.Family < 0

		switch {
		case required:
		case !connects(g):
			continue
		case opts.LargestOnly && g != largest:
			continue
		case isolated && !opts.KeepIsolated:
			continue
		}
		final = append(final, p.ID)
	}

	return RemoveSmallFractures(polys, final, opts.MinRadius)
}

// GroupFaces returns the union of the domain faces touched by the fractures
// of each group.
func GroupFaces(polys []*fracture.Polygon, tracker *cluster.Tracker) map[int]uint8 {
	out := map[int]uint8{}
	for _, p := range polys {
		out[tracker.Group(p.ID)] |= p.Faces
	}
	return out
}

var faceNames = []string{"-x", "+x", "-y", "+y", "-z", "+z"}

// ParseFaces converts a whitespace-separated list of face names such as
// "-x +z" into a face mask. The empty string gives an empty mask.
func ParseFaces(s string) (uint8, error) {
	var mask uint8
	for _, tok := range strings.Fields(s) {
		i := 0
		for i < len(faceNames) && faceNames[i] != strings.ToLower(tok) {
			i++
		}
		if i == len(faceNames) {
			return 0, fmt.Errorf(
				"Face '%s' is not one of %s.", tok, strings.Join(faceNames, " "),
			)
		}
		mask |= 1 << uint(i)
	}
	return mask, nil
}

// FaceNames returns a readable list of the faces in a face mask.
func FaceNames(faces uint8) string {
	names := []string{}
	for i, name := range faceNames {
		if faces&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

// RemoveSmallFractures filters out the IDs of fractures with radii below
// minRadius.
func RemoveSmallFractures(polys []*fracture.Polygon, ids []int, minRadius float64) []int {
	out := ids[:0:0]
	for _, id := range ids {
		if polys[id].Radius() >= minRadius {
			out = append(out, id)
		}
	}
	return out
}

// AdjustIntFractIDs renumbers the fractures listed in final so that they
// have consecutive IDs starting at base, preserving their order. It returns
// renumbered copies of the surviving fractures and of the intersection
// records between them. Records which reference a dropped fracture are
// dropped.
func AdjustIntFractIDs(
	final []int, polys []*fracture.Polygon, records []cluster.Record, base int,
) ([]*fracture.Polygon, []cluster.Record) {
	ids := append([]int{}, final...)
	sort.Ints(ids)

	newID := make(map[int]int, len(ids))
	out := make([]*fracture.Polygon, len(ids))
	for i, id := range ids {
		newID[id] = base + i
		out[i] = fracture.Clone(polys[id])
		out[i].ID = base + i
	}

	outRecords := []cluster.Record{}
	for _, r := range records {
		a, okA := newID[r.A]
		b, okB := newID[r.B]
		if okA && okB {
			outRecords = append(outRecords, cluster.Record{A: a, B: b})
		}
	}
	return out, outRecords
}

// WriteRadii writes one "xRadius yRadius family" line per fracture.
func WriteRadii(w io.Writer, polys []*fracture.Polygon) error {
	if _, err := fmt.Fprintln(w, "# xRadius yRadius Family"); err != nil {
		return err
	}
	for _, p := range polys {
		_, err := fmt.Fprintf(w, "%.8g %.8g %d\n", p.XRadius, p.YRadius, p.Family)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteProperties writes one "ID Family Group aperture permeability
// transmissivity" line per fracture. Transmissivity follows the cubic law.
func WriteProperties(w io.Writer, polys []*fracture.Polygon) error {
	_, err := fmt.Fprintln(w,
		"# ID Family Group Aperture Permeability Transmissivity")
	if err != nil {
		return err
	}
	for _, p := range polys {
		_, err := fmt.Fprintf(w, "%d %d %d %.8g %.8g %.8g\n",
			p.ID, p.Family, p.Group, p.Aperture, p.Permeability,
			props.Transmissivity(p.Aperture))
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteIntersections writes one "A B" line per intersection record.
func WriteIntersections(w io.Writer, records []cluster.Record) error {
	if _, err := fmt.Fprintln(w, "# A B"); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%d %d\n", r.A, r.B); err != nil {
			return err
		}
	}
	return nil
}
