package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/dfngen/fracture"
)

// Intensity summarizes the size of a set of fractures in a domain. P32
// counts both faces of every fracture.
type Intensity struct {
	Count int     `yaml:"count"`
	Area  float64 `yaml:"area"`
	P30   float64 `yaml:"p30"`
	P32   float64 `yaml:"p32"`
}

// Measure computes the intensity of polys in a domain of the given volume.
func Measure(polys []*fracture.Polygon, volume float64) Intensity {
	in := Intensity{Count: len(polys)}
	for _, p := range polys {
		in.Area += p.Area
	}
	if volume > 0 {
		in.P30 = float64(in.Count) / volume
		in.P32 = 2 * in.Area / volume
	}
	return in
}

// FamilyReport holds the statistics of a single family.
type FamilyReport struct {
	Name     string    `yaml:"name"`
	Index    int       `yaml:"index"`
	Target   int       `yaml:"target,omitempty"`
	Accepted int       `yaml:"accepted"`
	Rejected int       `yaml:"rejected"`
	Clamped  int       `yaml:"clamped,omitempty"`
	Demoted  bool      `yaml:"demoted,omitempty"`
	Final    Intensity `yaml:"final"`
}

// Report describes a finished generation run.
type Report struct {
	Session   string `yaml:"session"`
	Seed      uint64 `yaml:"seed"`
	Generator string `yaml:"generator"`

	Attempts    int `yaml:"attempts"`
	UserDefined int `yaml:"user_defined"`
	Groups      int `yaml:"groups"`
	// Isolated counts accepted fractures with no recorded intersections.
	Isolated    int `yaml:"isolated"`

	// Accepted covers every accepted fracture, Final only those which
	// survived selection.
	Accepted Intensity `yaml:"accepted"`
	Final    Intensity `yaml:"final"`

	Families []FamilyReport `yaml:"families"`
}

// FamilyIntensities splits polys by family index. User-defined fractures are
// skipped.
func FamilyIntensities(polys []*fracture.Polygon, families int, volume float64) []Intensity {
	split := make([][]*fracture.Polygon, families)
	for _, p := range polys {
		if p.Family >= 0 && p.Family < families {
			split[p.Family] = append(split[p.Family], p)
		}
	}

	out := make([]Intensity, families)
	for i := range out {
		out[i] = Measure(split[i], volume)
	}
	return out
}

// WriteReport writes r to w as YAML.
func WriteReport(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// ReadReport reads a report written by WriteReport.
func ReadReport(r io.Reader) (*Report, error) {
	rep := &Report{}
	if err := yaml.NewDecoder(r).Decode(rep); err != nil {
		return nil, err
	}
	return rep, nil
}
