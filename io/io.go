/*package io reads generation configuration files and the whitespace-separated
column files which accompany them, and writes finished networks to disk.
*/
package io

import (
	"fmt"
	"math"
	"os"
	"path"
	"sort"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/dfngen"
	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/output"
)

const (
	ReportFile        = "report.yaml"
	RadiiFile         = "radii_Final.dat"
	IntersectionsFile = "intersections.dat"
	PropertiesFile    = "properties.dat"
)

func toInt(x float64) (int, bool) {
	i := int(math.Round(x))
	return i, float64(i) == x
}

// ReadRadii reads a file of "family radius" rows and adds each radius to the
// pool of the family with that index. Pools are left sorted from largest to
// smallest.
func ReadRadii(fname string, fams []*family.Family) error {
	cols, err := table.ReadTable(fname, []int{0, 1}, nil)
	if err != nil {
		return err
	}

	idxs, radii := cols[0], cols[1]
	for i := range idxs {
		idx, ok := toInt(idxs[i])
		if !ok || idx < 0 || idx >= len(fams) {
			return fmt.Errorf(
				"%w: row %d of %s names family %g, but there are %d families.",
				family.ErrConfiguration, i+1, fname, idxs[i], len(fams),
			)
		} else if radii[i] <= 0 {
			return fmt.Errorf(
				"%w: row %d of %s has non-positive radius %g.",
				family.ErrConfiguration, i+1, fname, radii[i],
			)
		}
		fams[idx].Radii = append(fams[idx].Radii, radii[i])
	}

	for _, f := range fams {
		sort.Sort(sort.Reverse(sort.Float64Slice(f.Radii)))
	}
	return nil
}

// ReadIntersections reads a file of "A B" rows of intersecting fracture IDs.
func ReadIntersections(fname string) ([]cluster.Record, error) {
	cols, err := table.ReadTable(fname, []int{0, 1}, nil)
	if err != nil {
		return nil, err
	}

	records := make([]cluster.Record, len(cols[0]))
	for i := range records {
		a, okA := toInt(cols[0][i])
		b, okB := toInt(cols[1][i])
		if !okA || !okB || a < 0 || b < 0 {
			return nil, fmt.Errorf(
				"Row %d of %s is not a pair of fracture IDs.", i+1, fname,
			)
		}
		records[i] = cluster.Record{A: a, B: b}
	}
	return records, nil
}

// WriteNetwork writes the report, radii, intersections and hydraulic
// properties of a finished network to dir.
func WriteNetwork(dir string, net *dfngen.Network) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{ReportFile, func(f *os.File) error { return output.WriteReport(f, net.Report) }},
		{RadiiFile, func(f *os.File) error { return output.WriteRadii(f, net.Fractures) }},
		{IntersectionsFile, func(f *os.File) error {
			return output.WriteIntersections(f, net.Intersections)
		}},
		{PropertiesFile, func(f *os.File) error {
			return output.WriteProperties(f, net.Fractures)
		}},
	}

	for _, w := range writers {
		f, err := os.Create(path.Join(dir, w.name))
		if err != nil {
			return err
		}
		if err := w.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
