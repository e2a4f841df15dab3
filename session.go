/*package dfngen generates stochastic discrete fracture networks.

A Session owns everything one generation run mutates: the family sampler and
its selection CDF, the insertion engine, and the cluster tracker. Sessions
share no state, so independent runs can proceed side by side, but a single
Session must only be used from one goroutine.

	sess, err := dfngen.NewSession(fams, opts, acceptor, assigner, rng)
	if err != nil { log.Fatal(err.Error()) }
	if err := sess.Run(ctx); err != nil { log.Fatal(err.Error()) }
	net, err := sess.Finalize(dfngen.FinalizeOptions{})
*/
package dfngen

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/phil-mansfield/dfngen/cluster"
	"github.com/phil-mansfield/dfngen/family"
	"github.com/phil-mansfield/dfngen/fracture"
	"github.com/phil-mansfield/dfngen/insert"
	"github.com/phil-mansfield/dfngen/output"
	"github.com/phil-mansfield/dfngen/props"
	"github.com/phil-mansfield/dfngen/rand"
)

const (
	DefaultRejectsPerFracture    = 10
	DefaultMaxConsecutiveRejects = 1000
	DefaultRadiiListIncrease     = 0.1
	// DefaultMaxEstimateDraws bounds the number of radii drawn per family
	// when estimating the fracture count needed to reach a P32 target.
	DefaultMaxEstimateDraws = 1000000
)

// StopCondition decides when a family has placed enough fractures.
type StopCondition int

const (
	// StopCount stops each family once it reaches its fracture count.
	StopCount StopCondition = iota
	// StopP32 stops each family once it reaches its fracture intensity.
	StopP32
	EndStopCondition
)

var stopNames = [EndStopCondition]string{"Count", "P32"}

func (sc StopCondition) String() string {
	if sc < 0 || sc >= EndStopCondition {
		return "Unknown"
	}
	return stopNames[sc]
}

// ParseStopCondition converts a (case-insensitive) configuration string into
// a StopCondition.
func ParseStopCondition(s string) (StopCondition, error) {
	for sc := StopCondition(0); sc < EndStopCondition; sc++ {
		if strings.EqualFold(stopNames[sc], strings.TrimSpace(s)) {
			return sc, nil
		}
	}
	return EndStopCondition, fmt.Errorf(
		"StopCondition must be one of [%s], '%s' is not recognized.",
		strings.Join(stopNames[:], " | "), s,
	)
}

// Options configures a Session.
type Options struct {
	Domain        insert.Domain
	StopCondition StopCondition
	// Count is the total number of stochastic fractures under StopCount. It
	// is split between families by weight. Zero uses each family's Target.
	Count int
	// MinFractures is the number of accepted fractures below which running
	// out of families is an error.
	MinFractures int
	// RejectsPerFracture is the number of times a rejected candidate is
	// moved to a new location before it is discarded.
	RejectsPerFracture int
	// MaxConsecutiveRejects is the number of discarded candidates in a row
	// after which a family is demoted.
	MaxConsecutiveRejects int
	// DemotionResets makes demotion last only until the next call to Run.
	// Otherwise demoted families are removed for good.
	DemotionResets bool
	// RadiiListIncrease is the fraction of extra radii added to each
	// family's pool before generation starts.
	RadiiListIncrease float64
	ClampRetries      int
	// Logger receives progress messages and warnings. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns Options with every tunable set to its default.
func DefaultOptions(domain insert.Domain) Options {
	return Options{
		Domain:                domain,
		StopCondition:         StopCount,
		RejectsPerFracture:    DefaultRejectsPerFracture,
		MaxConsecutiveRejects: DefaultMaxConsecutiveRejects,
		RadiiListIncrease:     DefaultRadiiListIncrease,
		ClampRetries:          family.DefaultClampRetries,
	}
}

func (opts *Options) validate(fams []*family.Family) error {
	switch {
	case opts.StopCondition < 0 || opts.StopCondition >= EndStopCondition:
		return fmt.Errorf("%w: unrecognized stop condition %d.",
			family.ErrConfiguration, opts.StopCondition)
	case opts.Count < 0:
		return fmt.Errorf("%w: Count must be non-negative, but is %d.",
			family.ErrConfiguration, opts.Count)
	case opts.MinFractures < 0:
		return fmt.Errorf("%w: MinFractures must be non-negative, but is %d.",
			family.ErrConfiguration, opts.MinFractures)
	case opts.RejectsPerFracture < 0:
		return fmt.Errorf("%w: RejectsPerFracture must be non-negative, but is %d.",
			family.ErrConfiguration, opts.RejectsPerFracture)
	case opts.MaxConsecutiveRejects <= 0:
		return fmt.Errorf("%w: MaxConsecutiveRejects must be positive, but is %d.",
			family.ErrConfiguration, opts.MaxConsecutiveRejects)
	case opts.RadiiListIncrease < 0:
		return fmt.Errorf("%w: RadiiListIncrease must be non-negative, but is %g.",
			family.ErrConfiguration, opts.RadiiListIncrease)
	}

	for _, f := range fams {
		if f.Weight == 0 {
			continue
		}
		if opts.StopCondition == StopCount && opts.Count == 0 && f.Target == 0 {
			return fmt.Errorf("%w: family '%s' has no Target and no total Count is set.",
				family.ErrConfiguration, f.Name)
		} else if opts.StopCondition == StopP32 && f.P32Target == 0 {
			return fmt.Errorf("%w: family '%s' has no P32Target.",
				family.ErrConfiguration, f.Name)
		}
	}
	return nil
}

// Session is a single generation run.
type Session struct {
	// ID identifies the session in logs and reports.
	ID string

	opts    Options
	fams    []*family.Family
	rng     *rand.Generator
	sampler *family.Sampler
	tracker *cluster.Tracker
	engine  *insert.Engine
	log     *log.Logger

	consecutive []int
	demoted     []bool
	prepared    bool
	userDefined int
}

// Network is the final output of a session.
type Network struct {
	Fractures     []*fracture.Polygon
	Intersections []cluster.Record
	Report        *output.Report
}

// FinalizeOptions controls how the final network is selected and numbered.
type FinalizeOptions struct {
	Select output.SelectOptions
	// Base is the ID of the first fracture in the final network.
	Base int
}

// NewSession validates the families and options and sets up a Session. The
// session takes ownership of fams. A nil assigner leaves fracture properties
// unset.
func NewSession(
	fams []*family.Family, opts Options, acceptor insert.Acceptor,
	assigner *props.Assigner, rng *rand.Generator,
) (*Session, error) {
	if err := opts.validate(fams); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	out := ioutil.Discard
	flags := 0
	if opts.Logger != nil {
		out, flags = opts.Logger.Writer(), opts.Logger.Flags()
	}
	logger := log.New(out, fmt.Sprintf("[%s] ", id[:8]), flags)

	sampler, err := family.NewSampler(fams, rng, family.Options{
		ClampRetries: opts.ClampRetries, Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	tracker := cluster.NewTracker()
	engine, err := insert.NewEngine(sampler, opts.Domain, acceptor, tracker, assigner, rng)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:          id,
		opts:        opts,
		fams:        fams,
		rng:         rng,
		sampler:     sampler,
		tracker:     tracker,
		engine:      engine,
		log:         logger,
		consecutive: make([]int, len(fams)),
		demoted:     make([]bool, len(fams)),
	}, nil
}

// Families returns the session's families.
func (s *Session) Families() []*family.Family { return s.fams }

// Sampler returns the session's family sampler.
func (s *Session) Sampler() *family.Sampler { return s.sampler }

// Tracker returns the session's cluster tracker.
func (s *Session) Tracker() *cluster.Tracker { return s.tracker }

// Accepted returns every accepted fracture, indexed by ID.
func (s *Session) Accepted() []*fracture.Polygon { return s.engine.Accepted() }

// Insert adds a user-defined fracture which intersects the given accepted
// fractures. It bypasses the acceptance test.
func (s *Session) Insert(p *fracture.Polygon, intersections []int) error {
	p.Family = fracture.UserDefined
	if err := s.engine.Commit(p, intersections); err != nil {
		return err
	}
	s.userDefined++
	return nil
}

// InsertForced adds a user-defined fracture without an acceptance test. Its
// intersections with the accepted fractures are still found, so it joins
// their groups.
func (s *Session) InsertForced(p *fracture.Polygon) error {
	return s.Insert(p, s.engine.Intersections(p))
}

// InsertChecked adds a user-defined fracture if the session's acceptance
// test allows it.
func (s *Session) InsertChecked(p *fracture.Polygon) (insert.Verdict, error) {
	p.Family = fracture.UserDefined
	v, err := s.engine.Place(p)
	if err == nil && v.Accepted {
		s.userDefined++
	} else if err == nil {
		s.log.Printf("Warning: user-defined fracture rejected (%s).", v.Reason)
	}
	return v, err
}

// Link records an intersection between two accepted fractures.
func (s *Session) Link(a, b int) error { return s.engine.Link(a, b) }

// prepare fills the radius pools the first time Run is called.
func (s *Session) prepare() {
	switch s.opts.StopCondition {
	case StopCount:
		if s.opts.Count > 0 {
			s.sampler.EstimateCounts(s.opts.Count)
		} else {
			for i, f := range s.fams {
				if n := f.Target - len(f.Radii); n > 0 {
					s.sampler.AddRadii(i, n)
				}
			}
		}
	case StopP32:
		s.sampler.EstimateP32Counts(s.opts.Domain.Volume(), DefaultMaxEstimateDraws)
	}
	s.sampler.AddRadiiToLists(s.opts.RadiiListIncrease)

	for _, f := range s.fams {
		lo, hi := f.Radius.Bounds()
		s.log.Printf(
			"Family '%s': %d radii pooled, target %d fractures, mean radius "+
				"%.4g in [%.4g, %.4g].",
			f.Name, len(f.Radii), f.Target, f.Radius.Expected(), lo, hi,
		)
	}
	s.prepared = true
}

// Run places fractures until every family is finished or demoted. It checks
// ctx between insertion attempts and returns ctx.Err() if it was cancelled;
// everything accepted up to that point remains valid. Run can be called
// again to continue. It fails with family.ErrExhaustedPool if fewer than
// MinFractures fractures were accepted.
func (s *Session) Run(ctx context.Context) error {
	if !s.prepared {
		s.prepare()
	} else if s.opts.DemotionResets {
		if n := s.sampler.Restore(); n > 0 {
			s.log.Printf("Restored %d demoted families.", n)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := s.engine.Candidate()
		if errors.Is(err, family.ErrExhaustedPool) {
			break
		} else if err != nil {
			return err
		}

		accepted, err := s.place(c)
		if err != nil {
			return err
		}
		s.update(c.Family, accepted)
	}

	n := len(s.engine.Accepted())
	s.log.Printf("Accepted %d fractures after %d attempts.", n, s.engine.Attempts())
	if n < s.opts.MinFractures {
		return fmt.Errorf(
			"%w: only %d of the required %d fractures were accepted.",
			family.ErrExhaustedPool, n, s.opts.MinFractures,
		)
	}
	return nil
}

// place tries a candidate at up to RejectsPerFracture + 1 locations.
func (s *Session) place(c *fracture.Polygon) (bool, error) {
	for try := 0; ; try++ {
		v, err := s.engine.Place(c)
		if err != nil {
			return false, err
		} else if v.Accepted {
			return true, nil
		} else if try >= s.opts.RejectsPerFracture {
			return false, nil
		}
		s.engine.Retranslate(c)
	}
}

func (s *Session) update(idx int, accepted bool) {
	f := s.fams[idx]
	if !accepted {
		s.consecutive[idx]++
		if s.consecutive[idx] >= s.opts.MaxConsecutiveRejects {
			s.demote(idx)
		}
		return
	}

	s.consecutive[idx] = 0
	done := f.QuotaMet()
	if s.opts.StopCondition == StopP32 {
		done = f.P32Met()
	}
	if done {
		s.sampler.Remove(idx)
		s.log.Printf("Family '%s' finished with %d fractures, P32 = %.4g.",
			f.Name, f.Accepted, f.CurrentP32)
	}
}

func (s *Session) demote(idx int) {
	f := s.fams[idx]
	s.consecutive[idx] = 0
	s.demoted[idx] = true

	state := "removed"
	if s.opts.DemotionResets {
		s.sampler.Suspend(idx)
		state = "suspended"
	} else {
		s.sampler.Remove(idx)
	}
	s.log.Printf(
		"Warning: family '%s' had %d candidates rejected in a row and has "+
			"been %s with %d fractures placed.",
		f.Name, s.opts.MaxConsecutiveRejects, state, f.Accepted,
	)
}

// Finalize selects the final network, renumbers it, and summarizes the run.
// The session's own fractures are not modified.
func (s *Session) Finalize(opts FinalizeOptions) (*Network, error) {
	polys := s.engine.Accepted()
	if opts.Select.Logger == nil {
		opts.Select.Logger = s.log
	}
	final, err := output.SelectFinal(polys, s.tracker, opts.Select)
	if err != nil {
		return nil, err
	}

	fracs, records := output.AdjustIntFractIDs(final, polys, s.engine.Records(), opts.Base)
	return &Network{
		Fractures:     fracs,
		Intersections: records,
		Report:        s.report(polys, fracs),
	}, nil
}

func (s *Session) report(accepted, final []*fracture.Polygon) *output.Report {
	vol := s.opts.Domain.Volume()
	r := &output.Report{
		Session:     s.ID,
		Seed:        s.rng.Seed(),
		Generator:   s.rng.Type().String(),
		Attempts:    s.engine.Attempts(),
		UserDefined: s.userDefined,
		Groups:      len(s.tracker.Groups()),
		Accepted:    output.Measure(accepted, vol),
		Final:       output.Measure(final, vol),
	}

	for _, p := range accepted {
		if s.tracker.Degree(p.ID) == 0 {
			r.Isolated++
		}
	}

	rejected := s.engine.Rejected()
	finalFams := output.FamilyIntensities(final, len(s.fams), vol)
	for i, f := range s.fams {
		r.Families = append(r.Families, output.FamilyReport{
			Name:     f.Name,
			Index:    f.Index,
			Target:   f.Target,
			Accepted: f.Accepted,
			Rejected: rejected[i],
			Clamped:  f.Clamped,
			Demoted:  s.demoted[i],
			Final:    finalFams[i],
		})
	}
	return r
}
