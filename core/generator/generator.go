// Package generator produces random instances for batch experiments. Every
// job is released at 0 with a deadline and a processing time drawn
// uniformly from inclusive ranges.
package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kilianp07/plb/core/model"
)

// Params controls instance generation.
type Params struct {
	N int `json:"n" yaml:"n"`
	// Period is the planning parameter written with the instance. Zero
	// selects DefaultPeriod(N).
	Period model.Time `json:"period" yaml:"period"`
	PMin   model.Time `json:"p_min" yaml:"p_min"`
	PMax   model.Time `json:"p_max" yaml:"p_max"`
	// DRatio stretches the deadline range relative to the expected total work.
	DRatio float64 `json:"d_ratio" yaml:"d_ratio"`
	Seed   uint64  `json:"seed" yaml:"seed"`
}

// DefaultParams mirrors the experiment campaign settings.
func DefaultParams(n int) Params {
	return Params{N: n, PMin: 1, PMax: 100, DRatio: 1.5}
}

// DefaultPeriod returns ceil(log2 n), the segment length used by the
// experiments, and at least 1.
func DefaultPeriod(n int) model.Time {
	if n <= 2 {
		return 1
	}
	return model.Time(math.Ceil(math.Log2(float64(n))))
}

// DeadlineRange returns the inclusive deadline bounds for p: twice the
// largest processing time up to the expected total work scaled by DRatio,
// rounded half to even.
func (p Params) DeadlineRange() (lo, hi model.Time) {
	lo = 2 * p.PMax
	hi = model.Time(math.RoundToEven(float64(p.N) * float64(p.PMin+p.PMax) / 2 * p.DRatio))
	return lo, hi
}

// Validate reports parameters that cannot produce an instance.
func (p Params) Validate() error {
	if p.N < 0 {
		return fmt.Errorf("n must not be negative, got %d", p.N)
	}
	if p.PMin < 0 || p.PMax < p.PMin {
		return fmt.Errorf("invalid processing range [%d, %d]", p.PMin, p.PMax)
	}
	if p.DRatio <= 0 {
		return errors.New("d_ratio must be positive")
	}
	if lo, hi := p.DeadlineRange(); hi < lo && p.N > 0 {
		return fmt.Errorf("empty deadline range [%d, %d]", lo, hi)
	}
	return nil
}

// Generator draws instances from a seeded source, so a given seed always
// yields the same sequence of instances.
type Generator struct {
	params Params
	rnd    *rand.Rand
}

// New returns a Generator for params.
func New(params Params) (*Generator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Period == 0 {
		params.Period = DefaultPeriod(params.N)
	}
	return &Generator{params: params, rnd: rand.New(rand.NewPCG(params.Seed, params.Seed^0x9e3779b97f4a7c15))}, nil
}

// Next returns a new instance with ids 1..N.
func (g *Generator) Next() model.Instance {
	lo, hi := g.params.DeadlineRange()
	in := model.Instance{Period: g.params.Period, Jobs: make([]model.JobSpec, g.params.N)}
	for i := range in.Jobs {
		in.Jobs[i] = model.JobSpec{
			ID:         model.JobID(i + 1),
			Deadline:   g.between(lo, hi),
			Processing: g.between(g.params.PMin, g.params.PMax),
		}
	}
	return in
}

// Batch returns k consecutive instances.
func (g *Generator) Batch(k int) []model.Instance {
	out := make([]model.Instance, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, g.Next())
	}
	return out
}

func (g *Generator) between(lo, hi model.Time) model.Time {
	return lo + g.rnd.Int64N(hi-lo+1)
}
